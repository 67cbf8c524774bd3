package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Manage the measurement station table",
}

var (
	enrichIn  string
	enrichOut string
)

var stationsEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Convert LV95 station coordinates to WGS84 via geo.admin.ch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := enrichIn
		if in == "" {
			in = cfg.Data.StationsFile
		}
		out := enrichOut
		if out == "" {
			out = cfg.Data.EnrichedStationsFile
		}

		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("open stations: %w", err)
		}
		defer f.Close()

		raw, err := airquality.ReadRawStations(f)
		if err != nil {
			return fmt.Errorf("read stations: %w", err)
		}

		records, err := airquality.EnrichCoordinates(cmd.Context(), raw, airquality.EnrichmentConfig{
			Converter: newGeoClient(),
			Logger:    log,
		})
		if err != nil {
			return fmt.Errorf("enrich stations: %w", err)
		}

		dst, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer dst.Close()

		if err := airquality.WriteEnrichedStations(dst, records); err != nil {
			return fmt.Errorf("write stations: %w", err)
		}

		located := 0
		for _, r := range records {
			if r.Located() {
				located++
			}
		}
		log.Info().Int("stations", len(records)).Int("located", located).
			Str("out", out).Msg("stations enriched")
		return nil
	},
}

var (
	mergeHistory   string
	mergePollutant string
	mergeYears     []string
)

var stationsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge yearly medians from a NABEL history export into the station table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stations, err := loadEnrichedStations()
		if err != nil {
			return err
		}

		f, err := os.Open(mergeHistory)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer f.Close()

		history, err := airquality.ReadHistory(f)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}

		years := make([]int, 0, len(mergeYears))
		for _, y := range mergeYears {
			year, err := strconv.Atoi(strings.TrimSpace(y))
			if err != nil {
				return fmt.Errorf("invalid year %q", y)
			}
			years = append(years, year)
		}

		airquality.MergeYearlyMedians(stations, history, airquality.Pollutant(mergePollutant), years)

		dst, err := os.Create(cfg.Data.EnrichedStationsFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer dst.Close()

		if err := airquality.WriteEnrichedStations(dst, stations); err != nil {
			return fmt.Errorf("write stations: %w", err)
		}

		log.Info().Str("pollutant", mergePollutant).Ints("years", years).
			Msg("history merged")
		return nil
	},
}

func init() {
	stationsEnrichCmd.Flags().StringVar(&enrichIn, "in", "", "raw station CSV (default from config)")
	stationsEnrichCmd.Flags().StringVar(&enrichOut, "out", "", "enriched station CSV (default from config)")

	stationsMergeCmd.Flags().StringVar(&mergeHistory, "history", "", "NABEL history export (required)")
	stationsMergeCmd.Flags().StringVar(&mergePollutant, "pollutant", "", "pollutant name, e.g. PM2.5 (required)")
	stationsMergeCmd.Flags().StringSliceVar(&mergeYears, "years", nil, "years to aggregate (required)")
	_ = stationsMergeCmd.MarkFlagRequired("history")
	_ = stationsMergeCmd.MarkFlagRequired("pollutant")
	_ = stationsMergeCmd.MarkFlagRequired("years")

	stationsCmd.AddCommand(stationsEnrichCmd)
	stationsCmd.AddCommand(stationsMergeCmd)
	rootCmd.AddCommand(stationsCmd)
}
