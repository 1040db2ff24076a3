// Package water looks up water bodies near a map location and maintains the
// suggestion list shown next to the map.
package water

import (
	"fmt"
	"net/url"
	"strconv"
)

// Source selects the lookup backend.
type Source string

const (
	// SourceDB queries the water database.
	SourceDB Source = "db"
	// SourceOSM queries OpenStreetMap through the Overpass proxy.
	SourceOSM Source = "osm"
)

// DefaultGeoSize is the edge length in meters of the lookup bounding box.
const DefaultGeoSize = 800

const (
	dbLookupPath  = "/api/v1/waterlookup"
	osmLookupPath = "/api/v1/overpasslookup/"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceDB, SourceOSM:
		return Source(s), nil
	}
	return "", &UnknownSourceError{Source: s}
}

// LookupQuery returns the path and query of a lookup around (lng, lat) with
// the default bounding box.
func LookupQuery(source Source, lng, lat float64) (string, error) {
	return LookupQuerySize(source, lng, lat, DefaultGeoSize)
}

// LookupQuerySize is LookupQuery with an explicit bounding box size.
// Coordinates are rounded to five decimals.
func LookupQuerySize(source Source, lng, lat float64, size int) (string, error) {
	var path string
	switch source {
	case SourceOSM:
		path = osmLookupPath
	case SourceDB:
		path = dbLookupPath
	default:
		return "", &UnknownSourceError{Source: string(source)}
	}
	params := url.Values{}
	params.Set("geo_center", fmt.Sprintf("POINT (%.5f %.5f)", lng, lat))
	params.Set("geo_size", strconv.Itoa(size))
	return path + "?" + params.Encode(), nil
}
