package healthinsurance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Premium CSV column names, as published by the BAG.
const (
	colCanton      = "Kanton"
	colRegion      = "Region"
	colAgeClass    = "Altersklasse"
	colAgeSubgroup = "Altersuntergruppe"
	colAccident    = "Unfalleinschluss"
	colDeductible  = "Franchise"
	colTariffType  = "Tariftyp"
	colInsurer     = "Versicherer"
	colPremium     = "Prämie"
)

// ReadPremiums parses the BAG premium filing: semicolon separated, Latin-1
// encoded.
func ReadPremiums(r io.Reader) ([]PremiumRecord, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int)
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{colCanton, colRegion, colAgeClass, colAccident, colDeductible, colTariffType, colInsurer, colPremium} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []PremiumRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		premium, err := strconv.ParseFloat(strings.ReplaceAll(field(row, colPremium), ",", "."), 64)
		if err != nil {
			premium = math.NaN()
		}

		records = append(records, PremiumRecord{
			Insurer:     field(row, colInsurer),
			Canton:      field(row, colCanton),
			Region:      field(row, colRegion),
			AgeClass:    field(row, colAgeClass),
			AgeSubgroup: field(row, colAgeSubgroup),
			Accident:    field(row, colAccident),
			Deductible:  field(row, colDeductible),
			TariffType:  field(row, colTariffType),
			Premium:     premium,
		})
	}
	return records, nil
}

// LoadPremiums reads the premium filing from disk.
func LoadPremiums(path string) ([]PremiumRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open premium filing: %w", err)
	}
	defer f.Close()
	return ReadPremiums(f)
}

// Regions returns the distinct fee regions filed for a canton, sorted.
func Regions(records []PremiumRecord, canton string) []string {
	seen := map[string]bool{}
	for _, r := range records {
		if r.Canton == canton && r.Region != "" {
			seen[r.Region] = true
		}
	}
	regions := make([]string, 0, len(seen))
	for region := range seen {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// FeesByParameters returns all records matching the filter, preserving the
// filing order.
func FeesByParameters(records []PremiumRecord, f Filter) []PremiumRecord {
	var out []PremiumRecord
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// AgeSubgroupsPerInsurer maps each insurer to its sorted distinct age
// subgroups among the records matching the filter. For children the subgroup
// encodes the sibling count variant of the tariff.
func AgeSubgroupsPerInsurer(records []PremiumRecord, f Filter) map[string][]string {
	perInsurer := map[string]map[string]bool{}
	for _, r := range records {
		if !f.Matches(r) {
			continue
		}
		if perInsurer[r.Insurer] == nil {
			perInsurer[r.Insurer] = map[string]bool{}
		}
		perInsurer[r.Insurer][r.AgeSubgroup] = true
	}

	out := make(map[string][]string, len(perInsurer))
	for insurer, set := range perInsurer {
		groups := make([]string, 0, len(set))
		for g := range set {
			groups = append(groups, g)
		}
		sort.Strings(groups)
		out[insurer] = groups
	}
	return out
}

// MedianPremium returns the median premium among the given records, skipping
// rows whose premium failed to parse. Returns NaN when nothing is usable.
func MedianPremium(records []PremiumRecord) float64 {
	var premiums []float64
	for _, r := range records {
		if !math.IsNaN(r.Premium) {
			premiums = append(premiums, r.Premium)
		}
	}
	if len(premiums) == 0 {
		return math.NaN()
	}
	sort.Float64s(premiums)
	n := len(premiums)
	if n%2 == 1 {
		return premiums[n/2]
	}
	return (premiums[n/2-1] + premiums[n/2]) / 2
}
