package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/airquality/openweathermap"
	"github.com/luftpraemie/luftpraemie/internal/geo"
)

var (
	currentMunicipality string
	currentLat          float64
	currentLon          float64
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Fetch the current air pollution snapshot for a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.OpenWeatherMap.Key == "" {
			return fmt.Errorf("OpenWeatherMap key is required (LUFTPRAEMIE_OPENWEATHERMAP_KEY)")
		}

		var target geo.Point
		switch {
		case currentMunicipality != "":
			var err error
			target, err = newCachedLocator(newGeoClient()).ResolveMunicipality(ctx, currentMunicipality)
			if err != nil {
				return fmt.Errorf("resolve municipality: %w", err)
			}
		case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
			target = geo.Point{Lat: currentLat, Lon: currentLon}
		default:
			return fmt.Errorf("either --municipality or --lat/--lon is required")
		}

		client, err := openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey: cfg.OpenWeatherMap.Key,
		})
		if err != nil {
			return fmt.Errorf("openweathermap client: %w", err)
		}

		snapshot, err := client.CurrentAirPollution(ctx, target.Lat, target.Lon)
		if err != nil {
			return fmt.Errorf("fetch snapshot: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	},
}

func init() {
	currentCmd.Flags().StringVar(&currentMunicipality, "municipality", "", "municipality name")
	currentCmd.Flags().Float64Var(&currentLat, "lat", 0, "WGS84 latitude")
	currentCmd.Flags().Float64Var(&currentLon, "lon", 0, "WGS84 longitude")
	rootCmd.AddCommand(currentCmd)
}
