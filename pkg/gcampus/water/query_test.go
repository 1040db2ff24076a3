package water

import (
	"errors"
	"testing"
)

func TestLookupQuery(t *testing.T) {
	tests := []struct {
		source   Source
		lng, lat float64
		expected string
	}{
		{SourceDB, 8.675, 49.41, "/api/v1/waterlookup?geo_center=POINT+%288.67500+49.41000%29&geo_size=800"},
		{SourceOSM, -0.123456789, 51.5, "/api/v1/overpasslookup/?geo_center=POINT+%28-0.12346+51.50000%29&geo_size=800"},
	}
	for _, tt := range tests {
		got, err := LookupQuery(tt.source, tt.lng, tt.lat)
		if err != nil {
			t.Fatalf("LookupQuery(%s) failed: %v", tt.source, err)
		}
		if got != tt.expected {
			t.Errorf("LookupQuery(%s) = %q, expected %q", tt.source, got, tt.expected)
		}
	}
}

func TestLookupQueryUnknownSource(t *testing.T) {
	_, err := LookupQuery("wiki", 0, 0)
	var use *UnknownSourceError
	if !errors.As(err, &use) {
		t.Fatalf("expected UnknownSourceError, got %v", err)
	}
	if use.Source != "wiki" {
		t.Errorf("expected source 'wiki', got %q", use.Source)
	}
	if err.Error() != "unknown source 'wiki', can be either 'osm' or 'db'" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range []string{"db", "osm"} {
		if got, err := ParseSource(s); err != nil || string(got) != s {
			t.Errorf("ParseSource(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseSource("DB"); err == nil {
		t.Error("ParseSource(\"DB\") expected error")
	}
}
