package gcampus

import (
	"sort"
	"sync"

	"github.com/desklab/gcampus-go/pkg/gcampus/curve"
	"github.com/desklab/gcampus-go/pkg/gcampus/formula"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Registry maps parameter keys to compiled formulas. Formulas are compiled
// once on registration and reused by every evaluation. A Registry is safe
// for concurrent use and may be shared between widgets.
type Registry struct {
	mu       sync.RWMutex
	formulas map[string]*formula.Formula
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formulas: make(map[string]*formula.Formula)}
}

// Register compiles spec and stores it under spec.Key, replacing any
// previous formula. Compilation errors are returned immediately and leave
// the registry unchanged.
func (r *Registry) Register(spec models.FormulaSpec) (*formula.Formula, error) {
	f, err := formula.CompileSpec(spec)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.formulas[spec.Key] = f
	r.mu.Unlock()
	return f, nil
}

// Lookup returns the compiled formula for key.
func (r *Registry) Lookup(key string) (*formula.Formula, error) {
	r.mu.RLock()
	f, ok := r.formulas[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotInitializedError{Key: key}
	}
	return f, nil
}

// Evaluate runs the formula registered under key and rounds the result to
// two decimals.
func (r *Registry) Evaluate(key string, value float64) (float64, error) {
	f, err := r.Lookup(key)
	if err != nil {
		return 0, err
	}
	return curve.Round(f.Eval(value), curve.Precision), nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.formulas))
	for k := range r.formulas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
