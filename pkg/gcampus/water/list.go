package water

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// State is the data behind the suggestion list.
type State struct {
	Features    []*geojson.Feature
	HasDatabase bool
	HasOsm      bool
	Loading     bool
	Error       bool
}

// ListItem is one suggestion as shown to the user.
type ListItem struct {
	ID          string `json:"id"`
	InputID     string `json:"input_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Icon is "standing" or "running", empty for other flow types.
	Icon    string `json:"icon,omitempty"`
	Checked bool   `json:"checked"`
}

// View is the rendered form of a State.
type View struct {
	// Revision increases with every transition; a renderer may drop views
	// older than the last one it displayed.
	Revision    uint64
	Items       []ListItem
	ShowLoading bool
	ShowOsm     bool
	ShowCustom  bool
	Error       bool
}

// RenderFunc displays a view. It is called after every state transition
// and never while the list holds its lock.
type RenderFunc func(View)

// MapLayer is the map source showing the suggested waters.
type MapLayer interface {
	SetData(fc *geojson.FeatureCollection)
	// ClearFeatureState removes the highlight of id, or of every feature
	// when id is empty.
	ClearFeatureState(id string)
	SetHighlight(id string)
}

type nopLayer struct{}

func (nopLayer) SetData(*geojson.FeatureCollection) {}
func (nopLayer) ClearFeatureState(string)           {}
func (nopLayer) SetHighlight(string)                {}

// ListOptions configures a List.
type ListOptions struct {
	// Delay debounces MapUpdate (default DefaultLookupDelay).
	Delay time.Duration
	// Timeout bounds a debounced database lookup. Zero means no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// List keeps the water suggestions for the location picked on the map.
// Database lookups follow map edits after a debounce delay; OpenStreetMap
// lookups are requested explicitly and appended.
type List struct {
	lookup    Lookuper
	layer     MapLayer
	render    RenderFunc
	debouncer *Debouncer
	delay     time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	revision    uint64
	generation  uint64
	lng, lat    float64
	hasLocation bool
	highlight   string
	permanent   string
}

// NewList creates an empty list. layer and render may be nil.
func NewList(lookup Lookuper, layer MapLayer, render RenderFunc, opts ListOptions) *List {
	if layer == nil {
		layer = nopLayer{}
	}
	if render == nil {
		render = func(View) {}
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultLookupDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &List{
		lookup:    lookup,
		layer:     layer,
		render:    render,
		debouncer: NewDebouncer(),
		delay:     opts.Delay,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// Connect makes edits of w trigger MapUpdate.
func (l *List) Connect(w *PointWidget) {
	w.OnEdit(func(w *PointWidget) {
		if lng, lat, ok := w.LngLat(); ok {
			l.MapUpdate(lng, lat)
		}
	})
}

// MapUpdate clears the list for a new location and schedules a database
// lookup. A lookup scheduled by an earlier call is cancelled, or its result
// discarded if it is already in flight.
func (l *List) MapUpdate(lng, lat float64) {
	l.mu.Lock()
	l.lng, l.lat, l.hasLocation = lng, lat, true
	l.generation++
	gen := l.generation
	l.state = State{Loading: true}
	l.layer.SetData(geojson.NewFeatureCollection())
	l.highlight = ""
	view := l.viewLocked()
	l.mu.Unlock()
	l.render(view)

	l.debouncer.Schedule(l.delay, func(tok Token) {
		ctx := context.Background()
		if l.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}
		fc, err := l.lookup.Lookup(ctx, SourceDB, lng, lat)
		if !l.debouncer.Current(tok) {
			l.logger.Debug("discarding stale water lookup", zap.Uint64("token", uint64(tok)))
			return
		}
		l.applyResult(gen, fc, err, SourceDB)
	})
}

// OsmUpdate appends the OpenStreetMap waters around the current location.
// It does nothing before the first MapUpdate. The result is discarded if
// the location changes while the lookup runs.
func (l *List) OsmUpdate(ctx context.Context) {
	l.mu.Lock()
	if !l.hasLocation {
		l.mu.Unlock()
		return
	}
	lng, lat, gen := l.lng, l.lat, l.generation
	l.state.Loading = true
	view := l.viewLocked()
	l.mu.Unlock()
	l.render(view)

	fc, err := l.lookup.Lookup(ctx, SourceOSM, lng, lat)
	l.applyResult(gen, fc, err, SourceOSM)
}

// applyResult applies a lookup result unless the location changed after the
// lookup was started. The check and the update share one critical section.
func (l *List) applyResult(gen uint64, fc *geojson.FeatureCollection, err error, source Source) {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.logger.Debug("discarding stale water lookup", zap.String("source", string(source)))
		return
	}
	if err == nil {
		err = l.setFeaturesLocked(fc.Features, source)
	}
	if err != nil {
		l.state.Loading = false
		l.state.Error = true
	}
	view := l.viewLocked()
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("water lookup failed", zap.String("source", string(source)), zap.Error(err))
	}
	l.render(view)
}

// SetFeatures applies a lookup result. OpenStreetMap features are appended,
// database features replace the list. The permanent highlight survives only
// if exactly one new feature carries its id.
func (l *List) SetFeatures(features []*geojson.Feature, source Source) error {
	l.mu.Lock()
	if err := l.setFeaturesLocked(features, source); err != nil {
		l.mu.Unlock()
		return err
	}
	view := l.viewLocked()
	l.mu.Unlock()
	l.render(view)
	return nil
}

func (l *List) setFeaturesLocked(features []*geojson.Feature, source Source) error {
	switch source {
	case SourceOSM:
		features = append(append([]*geojson.Feature(nil), l.state.Features...), features...)
	case SourceDB:
		features = append([]*geojson.Feature(nil), features...)
	default:
		return &UnknownSourceError{Source: string(source)}
	}

	fc := geojson.NewFeatureCollection()
	fc.Features = features
	l.layer.SetData(fc)
	l.layer.ClearFeatureState("")
	l.highlight = ""

	if l.permanent != "" && countID(features, l.permanent) != 1 {
		l.permanent = ""
	}
	l.highlightLocked(l.permanent)

	l.state.Loading = false
	l.state.Features = features
	if source == SourceOSM {
		l.state.HasOsm = true
	} else {
		l.state.HasDatabase = true
	}
	return nil
}

// HighlightFeature highlights id on the map, e.g. while hovering its list
// entry. An empty id removes the highlight.
func (l *List) HighlightFeature(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.highlightLocked(id)
}

// HighlightPermanent selects id. The map returns to this highlight when a
// temporary one ends.
func (l *List) HighlightPermanent(id string) {
	l.mu.Lock()
	l.permanent = id
	l.highlightLocked(id)
	view := l.viewLocked()
	l.mu.Unlock()
	l.render(view)
}

// ResetHighlight returns to the permanent highlight.
func (l *List) ResetHighlight() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.highlightLocked(l.permanent)
}

func (l *List) highlightLocked(id string) {
	if l.highlight == id {
		return
	}
	if l.highlight != "" {
		l.layer.ClearFeatureState(l.highlight)
	}
	l.highlight = id
	if id != "" {
		l.layer.SetHighlight(id)
	}
}

// Feature returns the feature with the given id.
func (l *List) Feature(id string) (*geojson.Feature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var found *geojson.Feature
	n := 0
	for _, f := range l.state.Features {
		if FeatureID(f) == id {
			found = f
			n++
		}
	}
	if n != 1 {
		return nil, &UnknownFeatureError{ID: id, Matches: n}
	}
	return found, nil
}

// State returns a copy of the current state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Features = append([]*geojson.Feature(nil), s.Features...)
	return s
}

// Highlighted returns the highlighted and the permanently highlighted id.
func (l *List) Highlighted() (current, permanent string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.highlight, l.permanent
}

// Close cancels a pending lookup.
func (l *List) Close() {
	l.debouncer.Stop()
}

func (l *List) viewLocked() View {
	l.revision++
	s := l.state
	v := View{Revision: l.revision, Error: s.Error}
	for _, f := range s.Features {
		v.Items = append(v.Items, newListItem(f, l.permanent))
	}
	switch {
	case s.Loading:
		v.ShowLoading = true
	case s.HasDatabase && s.HasOsm:
		v.ShowCustom = true
	case s.HasDatabase:
		v.ShowOsm = true
	}
	return v
}

func newListItem(f *geojson.Feature, permanent string) ListItem {
	id := FeatureID(f)
	item := ListItem{
		ID:          id,
		InputID:     "waterSuggestion" + id,
		Name:        f.Properties.MustString("display_name", ""),
		Description: capitalize(f.Properties.MustString("display_flow_type", "")),
		Checked:     id != "" && id == permanent,
	}
	switch ft := f.Properties.MustString("flow_type", ""); ft {
	case "standing", "running":
		item.Icon = ft
	}
	return item
}

// FeatureID returns the id of f as a string. Numeric ids are formatted
// without a fraction.
func FeatureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func countID(features []*geojson.Feature, id string) int {
	n := 0
	for _, f := range features {
		if FeatureID(f) == id {
			n++
		}
	}
	return n
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
