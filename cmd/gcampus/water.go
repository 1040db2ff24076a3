package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklab/gcampus-go/pkg/gcampus/water"
)

var (
	lng, lat float64
	withOsm  bool
)

type waterResult struct {
	Items []water.ListItem `json:"items"`
	Error bool             `json:"error"`
}

func newWaterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "water",
		Short: "Look up water bodies near a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.GetTimeout())
			defer cancel()

			client := water.NewClient(cfg.Water.APIURL,
				water.WithGeoSize(cfg.Water.GeoSize),
				water.WithOverpassLimit(cfg.Water.OverpassRPS, cfg.Water.Burst),
				water.WithLogger(logger))

			views := make(chan water.View, 16)
			list := water.NewList(client, nil, func(v water.View) { views <- v }, water.ListOptions{
				Delay:   cfg.GetLookupDelay(),
				Timeout: cfg.GetTimeout(),
				Logger:  logger,
			})
			defer list.Close()

			list.MapUpdate(lng, lat)
			v, err := settled(ctx, views)
			if err != nil {
				return err
			}
			if withOsm && !v.Error {
				list.OsmUpdate(ctx)
				if v, err = settled(ctx, views); err != nil {
					return err
				}
			}
			return writeJSON(waterResult{Items: v.Items, Error: v.Error})
		},
	}
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().BoolVar(&withOsm, "osm", false, "Also query OpenStreetMap")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

// settled waits for the first view that is no longer loading.
func settled(ctx context.Context, views <-chan water.View) (water.View, error) {
	for {
		select {
		case v := <-views:
			if !v.ShowLoading {
				return v, nil
			}
		case <-ctx.Done():
			return water.View{}, fmt.Errorf("water lookup: %w", ctx.Err())
		}
	}
}
