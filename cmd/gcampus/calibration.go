package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/desklab/gcampus-go/pkg/gcampus"
	"github.com/desklab/gcampus-go/pkg/gcampus/catalog"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
	"github.com/desklab/gcampus-go/pkg/gcampus/render"
)

var (
	formulaExpr  string
	catalogPath  string
	calibration  string
	title        string
	xMin, xMax   string
	measureValue float64
	measure      bool
	imageFormat  string
	measurements map[string]string
	imageDir     string
	jobs         int
)

func addCalibrationFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&formulaExpr, "formula", "f", "", "Calibration formula in the variable od")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (.yaml or .xlsx)")
	cmd.Flags().StringVar(&calibration, "id", "", "Calibration id in the catalog")
}

// resolveCalibration builds the calibration from --formula or --catalog/--id.
func resolveCalibration() (models.Calibration, error) {
	switch {
	case catalogPath != "":
		cat, err := catalog.LoadFile(catalogPath, catalog.WithVariable(cfg.Calibration.Variable))
		if err != nil {
			return models.Calibration{}, err
		}
		cal, ok := cat.Get(calibration)
		if !ok {
			return models.Calibration{}, fmt.Errorf("calibration %q not found in %s (available: %v)", calibration, catalogPath, cat.IDs())
		}
		return cal, nil
	case formulaExpr != "":
		lo, err := gcampus.ParseBound(xMin)
		if err != nil {
			return models.Calibration{}, fmt.Errorf("invalid --x-min: %w", err)
		}
		hi, err := gcampus.ParseBound(xMax)
		if err != nil {
			return models.Calibration{}, fmt.Errorf("invalid --x-max: %w", err)
		}
		return models.Calibration{
			ID:        "cli",
			Name:      title,
			Parameter: "Concentration",
			Formula:   formulaExpr,
			XMin:      lo,
			XMax:      hi,
		}, nil
	default:
		return models.Calibration{}, fmt.Errorf("either --formula or --catalog is required")
	}
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [od...]",
		Short: "Convert optical density readings with a calibration formula",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := resolveCalibration()
			if err != nil {
				return err
			}
			reg := gcampus.NewRegistry()
			if _, err := reg.Register(cal.SpecFor(cfg.Calibration.Variable)); err != nil {
				return err
			}
			for _, arg := range args {
				od, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid reading %q: %w", arg, err)
				}
				v, err := reg.Evaluate(cal.ID, od)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", arg, gcampus.FormatValue(v))
			}
			return nil
		},
	}
	addCalibrationFlags(cmd)
	return cmd
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw a calibration curve as PNG or SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := resolveCalibration()
			if err != nil {
				return err
			}
			format := render.Format(imageFormat)
			if imageFormat == "" {
				format = render.Format(cfg.Chart.Format)
			}
			r := render.NewImageRenderer(cfg.Chart.Width, cfg.Chart.Height, format)
			w := gcampus.NewWidget(cal.ID, nil, r, cfg.Options(logger))
			if err := w.Init(gcampus.ChartSpecFor(cal)); err != nil {
				return err
			}
			if measure {
				res, err := w.Measure(measureValue)
				if err != nil {
					return err
				}
				logger.Info("measurement", zap.Float64("od", measureValue), zap.String("value", res.Formatted))
			}

			path := outputPath
			if path == "" {
				path = cal.ID + "." + string(format)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if _, err := w.Chart().(*render.ImageChart).WriteTo(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	addCalibrationFlags(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Chart title")
	cmd.Flags().StringVar(&xMin, "x-min", "auto", "Lower concentration bound or auto")
	cmd.Flags().StringVar(&xMax, "x-max", "auto", "Upper concentration bound or auto")
	cmd.Flags().Float64Var(&measureValue, "measure", 0, "Mark the measurement at this reading")
	cmd.Flags().StringVar(&imageFormat, "format", "", "Image format: png or svg (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: <id>.<format>)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		measure = cmd.Flags().Changed("measure")
	}
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [catalog]",
		Short: "Write a catalog with one curve chart per calibration to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0], catalog.WithVariable(cfg.Calibration.Variable))
			if err != nil {
				return err
			}
			values := make(map[string]float64, len(measurements))
			for id, raw := range measurements {
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("invalid measurement for %s: %w", id, err)
				}
				values[id] = v
			}
			path := outputPath
			if path == "" {
				path = "calibrations.xlsx"
			}
			return gcampus.Export(cat, path, values, cfg.Options(logger))
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook (default: calibrations.xlsx)")
	cmd.Flags().StringToStringVar(&measurements, "measure", nil, "Readings to mark, as id=od")
	return cmd
}

func newRenderCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render-catalog [catalog]",
		Short: "Render every calibration curve of a catalog to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0], catalog.WithVariable(cfg.Calibration.Variable))
			if err != nil {
				return err
			}
			format := render.Format(imageFormat)
			if imageFormat == "" {
				format = render.Format(cfg.Chart.Format)
			}
			paths, err := gcampus.RenderImages(context.Background(), cat, gcampus.ImageJob{
				Dir:         imageDir,
				Width:       cfg.Chart.Width,
				Height:      cfg.Chart.Height,
				Format:      format,
				Concurrency: jobs,
			}, cfg.Options(logger))
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&imageDir, "dir", "curves", "Output directory")
	cmd.Flags().StringVar(&imageFormat, "format", "", "Image format: png or svg (default from config)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Parallel renders")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "List the charts of a workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			charts, err := render.Inspect(args[0])
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}
			if charts == nil {
				charts = []models.ChartInfo{}
			}
			return writeJSON(charts)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}
