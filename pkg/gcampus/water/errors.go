package water

import (
	"fmt"
)

// UnknownSourceError indicates a source other than "osm" or "db".
type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source '%s', can be either 'osm' or 'db'", e.Source)
}

// UnknownFeatureError indicates a feature id matching zero or several
// features of the list.
type UnknownFeatureError struct {
	ID      string
	Matches int
}

func (e *UnknownFeatureError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no feature with id %s", e.ID)
	}
	return fmt.Sprintf("feature id %s matches %d features", e.ID, e.Matches)
}

// StatusError reports a lookup answered with a non-success status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lookup %s: unexpected status %d", e.URL, e.Code)
}
