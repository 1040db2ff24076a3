package water

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoCoordinates indicates a point value without coordinates.
var ErrNoCoordinates = errors.New("point value has no coordinates")

// EditFunc is called after the point of a widget changed.
type EditFunc func(w *PointWidget)

// PointWidget holds the location picked on the map. Its value is a GeoJSON
// Point geometry, serialised into the form input.
type PointWidget struct {
	mu        sync.Mutex
	point     orb.Point
	set       bool
	listeners []EditFunc
}

// NewPointWidget creates a widget from the current input value. An empty
// value leaves the widget without a location.
func NewPointWidget(value string) (*PointWidget, error) {
	w := &PointWidget{}
	if strings.TrimSpace(value) == "" {
		return w, nil
	}
	g, err := geojson.UnmarshalGeometry([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("parse point: %w", err)
	}
	p, ok := g.Geometry().(orb.Point)
	if !ok {
		if g.Geometry() == nil {
			return nil, ErrNoCoordinates
		}
		return nil, fmt.Errorf("parse point: unexpected geometry %s", g.Geometry().GeoJSONType())
	}
	w.point, w.set = p, true
	return w, nil
}

// OnEdit registers fn to be called after every change.
func (w *PointWidget) OnEdit(fn EditFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// LngLat returns the location. ok is false when none is set.
func (w *PointWidget) LngLat() (lng, lat float64, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.point.Lon(), w.point.Lat(), w.set
}

// SetLngLat moves the point and notifies listeners.
func (w *PointWidget) SetLngLat(lng, lat float64) {
	w.mu.Lock()
	w.point, w.set = orb.Point{lng, lat}, true
	listeners := append([]EditFunc(nil), w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(w)
	}
}

// Clear removes the point and notifies listeners.
func (w *PointWidget) Clear() {
	w.mu.Lock()
	w.point, w.set = orb.Point{}, false
	listeners := append([]EditFunc(nil), w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(w)
	}
}

// Value returns the form input value. It is empty without a location.
func (w *PointWidget) Value() (string, error) {
	w.mu.Lock()
	p, set := w.point, w.set
	w.mu.Unlock()
	if !set {
		return "", nil
	}
	data, err := geojson.NewGeometry(p).MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
