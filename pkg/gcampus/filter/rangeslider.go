// Package filter implements the date range slider of the measurement
// filter: two handles over a list of interval start dates with a bar per
// interval.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the value format of date inputs.
const DateLayout = "2006-01-02"

// ErrNoIntervals indicates a slider without intervals.
var ErrNoIntervals = errors.New("range slider needs at least one interval")

// IndexError reports a handle position outside the interval list.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("slider index %d out of range [0, %d)", e.Index, e.Len)
}

// ClosestIndex returns the index of the interval closest to t. Ties resolve
// to the lowest index; an empty list yields -1.
func ClosestIndex(t time.Time, intervals []time.Time) int {
	if len(intervals) == 0 {
		return -1
	}
	best, diff := 0, absDuration(t.Sub(intervals[0]))
	for i, iv := range intervals[1:] {
		if d := absDuration(t.Sub(iv)); d < diff {
			best, diff = i+1, d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Selection is the range between the two handles.
type Selection struct {
	FromIndex int
	ToIndex   int
	From      time.Time
	To        time.Time
	// Bars marks, per interval bar, whether it lies inside the selection.
	// There is one bar less than intervals.
	Bars []bool
}

// FromValue formats From for a date input.
func (s Selection) FromValue() string {
	return s.From.Format(DateLayout)
}

// ToValue formats To for a date input.
func (s Selection) ToValue() string {
	return s.To.Format(DateLayout)
}

// RangeSlider holds the handle positions.
type RangeSlider struct {
	intervals   []time.Time
	left, right int
}

// NewRangeSlider creates a slider spanning all intervals. When both from and
// to hold a date, as after a submitted filter, the handles snap to the
// closest intervals.
func NewRangeSlider(intervals []time.Time, from, to string) (*RangeSlider, error) {
	if len(intervals) == 0 {
		return nil, ErrNoIntervals
	}
	r := &RangeSlider{
		intervals: append([]time.Time(nil), intervals...),
		right:     len(intervals) - 1,
	}
	if strings.TrimSpace(from) != "" && strings.TrimSpace(to) != "" {
		if err := r.setDates(from, to); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Slide moves the handles to a and b in either order.
func (r *RangeSlider) Slide(a, b int) (Selection, error) {
	for _, i := range []int{a, b} {
		if i < 0 || i >= len(r.intervals) {
			return Selection{}, &IndexError{Index: i, Len: len(r.intervals)}
		}
	}
	r.left, r.right = a, b
	return r.Selection(), nil
}

// SetDates moves the handles to the intervals closest to the given input
// values.
func (r *RangeSlider) SetDates(from, to string) (Selection, error) {
	if err := r.setDates(from, to); err != nil {
		return Selection{}, err
	}
	return r.Selection(), nil
}

func (r *RangeSlider) setDates(from, to string) error {
	f, err := time.Parse(DateLayout, strings.TrimSpace(from))
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(to))
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	r.left, r.right = ClosestIndex(f, r.intervals), ClosestIndex(t, r.intervals)
	return nil
}

// Selection returns the current range with the handles ordered.
func (r *RangeSlider) Selection() Selection {
	lo, hi := r.left, r.right
	if lo > hi {
		lo, hi = hi, lo
	}
	s := Selection{
		FromIndex: lo,
		ToIndex:   hi,
		From:      r.intervals[lo],
		To:        r.intervals[hi],
		Bars:      make([]bool, len(r.intervals)-1),
	}
	for i := range s.Bars {
		s.Bars[i] = i >= lo && i <= hi
	}
	return s
}
