package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/geo"
)

var (
	estimateMunicipality string
	estimateLat          float64
	estimateLon          float64
	estimateLV95         string
	estimatePollutant    string
	estimateYear         int
	estimateK            int
	estimatePower        float64
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Interpolate a pollutant value at a location",
	Long: "Estimates a yearly pollutant value at a municipality, a WGS84 " +
		"coordinate, or an LV95 coordinate pair using inverse distance " +
		"weighting over the enriched station table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		stations, err := loadEnrichedStations()
		if err != nil {
			return err
		}

		var target geo.Point
		switch {
		case estimateMunicipality != "":
			client := newGeoClient()
			target, err = newCachedLocator(client).ResolveMunicipality(ctx, estimateMunicipality)
			if err != nil {
				return fmt.Errorf("resolve municipality: %w", err)
			}
		case estimateLV95 != "":
			easting, northing, ok := geo.ParseCoordinatePair(estimateLV95, "")
			if !ok {
				return fmt.Errorf("invalid LV95 coordinates %q", estimateLV95)
			}
			target, err = newGeoClient().ConvertLV95(ctx, easting, northing)
			if err != nil {
				return fmt.Errorf("convert coordinates: %w", err)
			}
		case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
			target = geo.Point{Lat: estimateLat, Lon: estimateLon}
		default:
			return fmt.Errorf("one of --municipality, --lv95 or --lat/--lon is required")
		}

		estimator := airquality.NewEstimator(airquality.EstimatorConfig{
			K:     estimateK,
			Power: estimatePower,
		})
		value := estimator.Estimate(stations, target,
			airquality.ValueKey(airquality.Pollutant(estimatePollutant), estimateYear))

		out := struct {
			Municipality string   `json:"municipality,omitempty"`
			Lat          float64  `json:"lat"`
			Lon          float64  `json:"lon"`
			Pollutant    string   `json:"pollutant"`
			Year         int      `json:"year"`
			Estimate     *float64 `json:"estimate"`
		}{
			Municipality: estimateMunicipality,
			Lat:          target.Lat,
			Lon:          target.Lon,
			Pollutant:    estimatePollutant,
			Year:         estimateYear,
		}
		if !math.IsNaN(value) {
			out.Estimate = &value
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateMunicipality, "municipality", "", "municipality name")
	estimateCmd.Flags().Float64Var(&estimateLat, "lat", 0, "WGS84 latitude")
	estimateCmd.Flags().Float64Var(&estimateLon, "lon", 0, "WGS84 longitude")
	estimateCmd.Flags().StringVar(&estimateLV95, "lv95", "", `LV95 coordinates, "easting/northing"`)
	estimateCmd.Flags().StringVar(&estimatePollutant, "pollutant", "", "pollutant name, e.g. PM2.5 (required)")
	estimateCmd.Flags().IntVar(&estimateYear, "year", 0, "measurement year (required)")
	estimateCmd.Flags().IntVar(&estimateK, "k", 0, "number of nearest stations (default 4)")
	estimateCmd.Flags().Float64Var(&estimatePower, "power", 0, "distance weighting exponent (default 2)")
	_ = estimateCmd.MarkFlagRequired("pollutant")
	_ = estimateCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(estimateCmd)
}
