package gcampus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/desklab/gcampus-go/pkg/gcampus/catalog"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
	"github.com/desklab/gcampus-go/pkg/gcampus/render"
)

// CatalogSheet is the worksheet holding the exported catalog.
const CatalogSheet = "Calibrations"

// Export writes cat to an xlsx workbook at path: the catalog itself on one
// sheet and one curve sheet with a chart per calibration. Calibrations with
// an entry in measurements get the measurement marked on their chart.
func Export(cat *catalog.Catalog, path string, measurements map[string]float64, opts Options) error {
	opts = opts.withDefaults()
	r := render.NewWorkbookRenderer(nil)
	defer r.Close()

	reg := NewRegistry()
	for _, cal := range cat.Calibrations {
		w := NewWidget(cal.ID, reg, r, opts)
		if err := w.Init(ChartSpecFor(cal)); err != nil {
			return err
		}
		if v, ok := measurements[cal.ID]; ok {
			if _, err := w.Measure(v); err != nil {
				return err
			}
		}
	}
	if err := cat.WriteSheet(r.File(), CatalogSheet); err != nil {
		return fmt.Errorf("write catalog sheet: %w", err)
	}
	if err := r.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	opts.Logger.Info("exported calibration workbook",
		zap.String("path", path),
		zap.Int("calibrations", len(cat.Calibrations)))
	return nil
}

// ImageJob configures RenderImages.
type ImageJob struct {
	Dir    string
	Width  int
	Height int
	Format render.Format
	// Concurrency bounds parallel renders. Zero means unbounded.
	Concurrency int
}

// RenderImages renders the curve of every calibration to Dir, one file per
// calibration named after its id. Ids that map to the same file name get a
// numeric suffix. It returns the written paths in catalog order. The first
// failure cancels the remaining renders.
func RenderImages(ctx context.Context, cat *catalog.Catalog, job ImageJob, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	if job.Format == "" {
		job.Format = render.FormatPNG
	}
	if err := os.MkdirAll(job.Dir, 0755); err != nil {
		return nil, err
	}
	renderer := render.NewImageRenderer(job.Width, job.Height, job.Format)
	reg := NewRegistry()
	names := fileNames(cat.Calibrations)
	paths := make([]string, len(cat.Calibrations))

	g, gCtx := errgroup.WithContext(ctx)
	if job.Concurrency > 0 {
		g.SetLimit(job.Concurrency)
	}
	for i, cal := range cat.Calibrations {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			w := NewWidget(cal.ID, reg, renderer, opts)
			if err := w.Init(ChartSpecFor(cal)); err != nil {
				return err
			}
			path := filepath.Join(job.Dir, names[i]+"."+string(job.Format))
			if err := writeImage(w.Chart().(*render.ImageChart), path); err != nil {
				return newWidgetError(cal.ID, "render", err)
			}
			paths[i] = path
			opts.Logger.Debug("rendered calibration", zap.String("key", cal.ID), zap.String("path", path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeImage(c *render.ImageChart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fileNames assigns every calibration a distinct file name. Names are
// compared case-insensitively.
func fileNames(cals []models.Calibration) []string {
	used := make(map[string]bool, len(cals))
	names := make([]string, len(cals))
	for i, cal := range cals {
		base := fileName(cal.ID)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func fileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, id)
}
