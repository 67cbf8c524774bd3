package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
)

var premiumsCmd = &cobra.Command{
	Use:   "premiums",
	Short: "Query the BAG premium filing",
}

var (
	feesCanton     string
	feesRegion     string
	feesAgeClass   string
	feesSubgroup   string
	feesAccident   string
	feesTariffType string
	feesDeductible string
)

var premiumsFeesCmd = &cobra.Command{
	Use:   "fees",
	Short: "List filed premiums matching a filter",
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := healthinsurance.LoadPremiums(cfg.Data.PremiumsFile)
		if err != nil {
			return fmt.Errorf("load premiums: %w", err)
		}

		fees := healthinsurance.FeesByParameters(records, healthinsurance.Filter{
			Canton:      feesCanton,
			Region:      feesRegion,
			AgeClass:    feesAgeClass,
			AgeSubgroup: feesSubgroup,
			Accident:    feesAccident,
			TariffType:  feesTariffType,
			Deductible:  feesDeductible,
		})

		out := struct {
			Fees   []healthinsurance.PremiumRecord `json:"fees"`
			Median float64                         `json:"median"`
		}{
			Fees:   fees,
			Median: healthinsurance.MedianPremium(fees),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var premiumsSubgroupsCmd = &cobra.Command{
	Use:   "subgroups",
	Short: "List age subgroups filed per insurer",
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := healthinsurance.LoadPremiums(cfg.Data.PremiumsFile)
		if err != nil {
			return fmt.Errorf("load premiums: %w", err)
		}

		subgroups := healthinsurance.AgeSubgroupsPerInsurer(records, healthinsurance.Filter{
			Canton:   feesCanton,
			Region:   feesRegion,
			AgeClass: feesAgeClass,
		})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(subgroups)
	},
}

var insurerNumber int

var premiumsInsurerCmd = &cobra.Command{
	Use:   "insurer",
	Short: "Resolve a BAG insurer number to its name",
	RunE: func(_ *cobra.Command, _ []string) error {
		name, err := healthinsurance.InsurerName(cfg.Data.InsurersWorkbook, insurerNumber)
		if err != nil {
			return fmt.Errorf("resolve insurer: %w", err)
		}
		fmt.Println(name)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{premiumsFeesCmd, premiumsSubgroupsCmd} {
		c.Flags().StringVar(&feesCanton, "canton", "", "canton abbreviation")
		c.Flags().StringVar(&feesRegion, "region", "", `fee region, e.g. "PR-REG CH1"`)
		c.Flags().StringVar(&feesAgeClass, "age-class", "", "age class (AKL-KIN, AKL-JUG, AKL-ERW)")
	}
	premiumsFeesCmd.Flags().StringVar(&feesSubgroup, "subgroup", "", "age subgroup (children only)")
	premiumsFeesCmd.Flags().StringVar(&feesAccident, "accident", "", "accident coverage (MIT-UNF, OHN-UNF)")
	premiumsFeesCmd.Flags().StringVar(&feesTariffType, "tariff", "", "tariff type (TAR-BASE, TAR-DIV, TAR-HMO, TAR-HAM)")
	premiumsFeesCmd.Flags().StringVar(&feesDeductible, "deductible", "", "deductible, e.g. 300")

	premiumsInsurerCmd.Flags().IntVar(&insurerNumber, "number", 0, "BAG insurer number (required)")
	_ = premiumsInsurerCmd.MarkFlagRequired("number")

	premiumsCmd.AddCommand(premiumsFeesCmd)
	premiumsCmd.AddCommand(premiumsSubgroupsCmd)
	premiumsCmd.AddCommand(premiumsInsurerCmd)
	rootCmd.AddCommand(premiumsCmd)
}
