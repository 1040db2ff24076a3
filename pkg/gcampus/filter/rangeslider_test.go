package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeks(n int) []time.Time {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

func TestClosestIndex(t *testing.T) {
	iv := weeks(4)
	tests := []struct {
		name     string
		t        time.Time
		expected int
	}{
		{"exact", iv[2], 2},
		{"before", iv[0].AddDate(-1, 0, 0), 0},
		{"after", iv[3].AddDate(1, 0, 0), 3},
		{"nearer next", iv[1].AddDate(0, 0, 4), 2},
		{"tie", iv[1].AddDate(0, 0, 3).Add(12 * time.Hour), 1},
	}
	for _, tt := range tests {
		if got := ClosestIndex(tt.t, iv); got != tt.expected {
			t.Errorf("ClosestIndex(%s) = %d, expected %d", tt.name, got, tt.expected)
		}
	}
	if got := ClosestIndex(time.Now(), nil); got != -1 {
		t.Errorf("ClosestIndex(empty) = %d, expected -1", got)
	}
}

func TestRangeSliderDefault(t *testing.T) {
	r, err := NewRangeSlider(weeks(5), "", "2021-03-08")
	require.NoError(t, err)

	s := r.Selection()
	assert.Equal(t, 0, s.FromIndex)
	assert.Equal(t, 4, s.ToIndex)
	assert.Equal(t, "2021-03-01", s.FromValue())
	assert.Equal(t, "2021-03-29", s.ToValue())
	assert.Equal(t, []bool{true, true, true, true}, s.Bars)
}

func TestRangeSliderRestore(t *testing.T) {
	r, err := NewRangeSlider(weeks(5), "2021-03-09", "2021-03-21")
	require.NoError(t, err)

	s := r.Selection()
	assert.Equal(t, 1, s.FromIndex)
	assert.Equal(t, 3, s.ToIndex)
	assert.Equal(t, []bool{false, true, true, true}, s.Bars)
}

func TestRangeSliderSlideSwaps(t *testing.T) {
	r, err := NewRangeSlider(weeks(6), "", "")
	require.NoError(t, err)

	s, err := r.Slide(4, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.FromIndex)
	assert.Equal(t, 4, s.ToIndex)
	assert.Equal(t, "2021-03-08", s.FromValue())
	assert.Equal(t, []bool{false, true, true, true, true}, s.Bars)

	s, err = r.Slide(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true, false, false}, s.Bars)
}

func TestRangeSliderErrors(t *testing.T) {
	_, err := NewRangeSlider(nil, "", "")
	assert.ErrorIs(t, err, ErrNoIntervals)

	_, err = NewRangeSlider(weeks(2), "yesterday", "2021-03-01")
	assert.Error(t, err)

	r, err := NewRangeSlider(weeks(3), "", "")
	require.NoError(t, err)
	_, err = r.Slide(0, 3)
	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 3, ie.Index)

	// A rejected slide keeps the handles.
	assert.Equal(t, 2, r.Selection().ToIndex)

	s, err := r.SetDates("2021-03-15", "2021-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, s.FromIndex)
	assert.Equal(t, 2, s.ToIndex)
}
