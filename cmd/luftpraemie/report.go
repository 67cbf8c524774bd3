package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

var (
	reportCantons    []string
	reportPollutant  string
	reportYear       int
	reportAgeClass   string
	reportAccident   string
	reportTariffType string
	reportDeductible string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Cross-reference canton air pollution with premium medians",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		stations, err := loadEnrichedStations()
		if err != nil {
			return err
		}

		premiums, err := healthinsurance.LoadPremiums(cfg.Data.PremiumsFile)
		if err != nil {
			return fmt.Errorf("load premiums: %w", err)
		}

		regions, err := healthinsurance.LoadRegionRegistry(cfg.Data.RegionsWorkbook)
		if err != nil {
			return fmt.Errorf("load regions: %w", err)
		}

		reporter := report.NewReporter(report.Config{
			Resolver:    newCachedLocator(newGeoClient()),
			Stations:    stations,
			Premiums:    premiums,
			Regions:     regions,
			Concurrency: cfg.Report.Concurrency,
			Logger:      log,
		})

		cantons := report.Cantons()
		if len(reportCantons) > 0 {
			cantons = make([]string, len(reportCantons))
			for i, c := range reportCantons {
				cantons[i] = strings.ToUpper(strings.TrimSpace(c))
			}
		}

		summaries, err := reporter.CrossReference(ctx, cantons,
			airquality.Pollutant(reportPollutant), reportYear,
			healthinsurance.Filter{
				AgeClass:   reportAgeClass,
				Accident:   reportAccident,
				TariffType: reportTariffType,
				Deductible: reportDeductible,
			})
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	},
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportCantons, "cantons", nil, "canton abbreviations (default all)")
	reportCmd.Flags().StringVar(&reportPollutant, "pollutant", "", "pollutant name, e.g. PM2.5 (required)")
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "measurement year (required)")
	reportCmd.Flags().StringVar(&reportAgeClass, "age-class", healthinsurance.AgeClassAdult, "age class filter")
	reportCmd.Flags().StringVar(&reportAccident, "accident", healthinsurance.WithoutAccident, "accident coverage filter")
	reportCmd.Flags().StringVar(&reportTariffType, "tariff", healthinsurance.TariffBase, "tariff type filter")
	reportCmd.Flags().StringVar(&reportDeductible, "deductible", "300", "deductible filter")
	_ = reportCmd.MarkFlagRequired("pollutant")
	_ = reportCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(reportCmd)
}
