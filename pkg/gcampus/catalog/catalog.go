// Package catalog loads calibration catalogs from YAML files or workbook
// sheets and validates them.
package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/desklab/gcampus-go/pkg/gcampus/formula"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Catalog is an ordered set of calibrations with unique ids.
type Catalog struct {
	Calibrations []models.Calibration `yaml:"calibrations"`
	// Variable is the formula variable used by Validate. Empty means
	// models.DefaultVariable.
	Variable string `yaml:"-"`
}

// LoadOption configures the catalog loaders.
type LoadOption func(*Catalog)

// WithVariable validates formulas in the given variable instead of
// models.DefaultVariable.
func WithVariable(name string) LoadOption {
	return func(c *Catalog) {
		c.Variable = name
	}
}

func newCatalog(opts []LoadOption) *Catalog {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entry mirrors models.Calibration with optional bounds, so omitted bounds
// can be told apart from zero.
type entry struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Parameter string   `yaml:"parameter"`
	Unit      string   `yaml:"unit"`
	Formula   string   `yaml:"formula"`
	XMin      *float64 `yaml:"x_min"`
	XMax      *float64 `yaml:"x_max"`
	Kit       string   `yaml:"kit"`
}

func (e entry) calibration() models.Calibration {
	return models.Calibration{
		ID:        e.ID,
		Name:      e.Name,
		Parameter: e.Parameter,
		Unit:      e.Unit,
		Formula:   e.Formula,
		XMin:      boundOrAuto(e.XMin),
		XMax:      boundOrAuto(e.XMax),
		Kit:       e.Kit,
	}
}

func boundOrAuto(v *float64) float64 {
	if v == nil {
		return models.AutoBound
	}
	return *v
}

// LoadFile reads a catalog from a .yaml/.yml file or from the first sheet
// of an .xlsx workbook.
func LoadFile(path string, opts ...LoadOption) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadWorkbookFile(path, "", opts...)
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadYAML(f, opts...)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// LoadYAML decodes and validates a catalog document.
func LoadYAML(r io.Reader, opts ...LoadOption) (*Catalog, error) {
	var doc struct {
		Calibrations []entry `yaml:"calibrations"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c := newCatalog(opts)
	for _, e := range doc.Calibrations {
		c.Calibrations = append(c.Calibrations, e.calibration())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field constraints, id uniqueness and that every formula
// compiles in the catalog's variable.
func (c *Catalog) Validate() error {
	v := validator.New()
	seen := make(map[string]bool, len(c.Calibrations))
	for i, cal := range c.Calibrations {
		if err := v.Struct(cal); err != nil {
			return &ValidationError{Index: i, ID: cal.ID, Err: err}
		}
		if seen[cal.ID] {
			return &ValidationError{Index: i, ID: cal.ID, Err: ErrDuplicateID}
		}
		seen[cal.ID] = true
		if _, err := formula.CompileSpec(cal.SpecFor(c.Variable)); err != nil {
			return &ValidationError{Index: i, ID: cal.ID, Err: err}
		}
	}
	return nil
}

// Get returns the calibration with the given id.
func (c *Catalog) Get(id string) (models.Calibration, bool) {
	for _, cal := range c.Calibrations {
		if cal.ID == id {
			return cal, true
		}
	}
	return models.Calibration{}, false
}

// IDs returns all ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Calibrations))
	for _, cal := range c.Calibrations {
		ids = append(ids, cal.ID)
	}
	sort.Strings(ids)
	return ids
}
