package healthinsurance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v2"
)

// regionSheet is the sheet of the EDI fee-region workbook that lists which
// municipality belongs to which fee region.
const regionSheet = "Anhang EDI Ver. über die PR"

// insurerSheets are the sheet name variants of the BAG insurer registry.
var insurerSheets = []string{
	"Zugelassene Krankenversicherer",
	"zugelassene krankenversicherer",
}

// RegionRegistry answers municipality/fee-region membership questions from
// the EDI workbook (praemienregionen-ab-YYYY.xlsx).
type RegionRegistry struct {
	rows []regionRow
}

type regionRow struct {
	canton       string
	region       int
	municipality string
}

// LoadRegionRegistry reads the EDI fee-region workbook from disk.
func LoadRegionRegistry(path string) (*RegionRegistry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open region workbook: %w", err)
	}

	sheet, ok := f.Sheet[regionSheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", ErrNotFound, regionSheet)
	}

	idx := map[string]int{}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet %q", ErrNotFound, regionSheet)
	}
	for i, c := range sheet.Rows[0].Cells {
		idx[strings.TrimSpace(c.String())] = i
	}
	for _, name := range []string{"Kanton", "Region", "Gemeinde"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	reg := &RegionRegistry{}
	for _, row := range sheet.Rows[1:] {
		get := func(name string) string {
			i := idx[name]
			if i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}

		municipality := get("Gemeinde")
		if municipality == "" {
			continue
		}
		region, err := strconv.Atoi(strings.TrimSuffix(get("Region"), ".0"))
		if err != nil {
			continue
		}
		reg.rows = append(reg.rows, regionRow{
			canton:       get("Kanton"),
			region:       region,
			municipality: municipality,
		})
	}
	return reg, nil
}

// MunicipalitiesForFeeRegion returns the distinct municipalities of a fee
// region, in workbook order. The region is given in the filing notation
// ("PR-REG CH1"); only its trailing digit selects the workbook region.
func (r *RegionRegistry) MunicipalitiesForFeeRegion(canton, region string) ([]string, error) {
	regionNum, err := regionNumber(region)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var municipalities []string
	for _, row := range r.rows {
		if row.canton != canton || row.region != regionNum {
			continue
		}
		if seen[row.municipality] {
			continue
		}
		seen[row.municipality] = true
		municipalities = append(municipalities, row.municipality)
	}
	if len(municipalities) == 0 {
		return nil, fmt.Errorf("municipalities for %s region %s: %w", canton, region, ErrNotFound)
	}
	return municipalities, nil
}

// CantonRegionForMunicipality returns the canton and fee-region number of a
// municipality. Matching is case-insensitive on the trimmed name.
func (r *RegionRegistry) CantonRegionForMunicipality(name string) (canton string, region int, err error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, row := range r.rows {
		if strings.ToLower(row.municipality) == needle {
			return row.canton, row.region, nil
		}
	}
	return "", 0, fmt.Errorf("municipality %q: %w", name, ErrNotFound)
}

// regionNumber extracts the region digit from the "PR-REG CHn" notation; a
// bare digit is accepted too.
func regionNumber(region string) (int, error) {
	trimmed := strings.TrimSpace(region)
	if trimmed == "" {
		return 0, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}
	n, err := strconv.Atoi(trimmed[len(trimmed)-1:])
	if err != nil {
		return 0, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}
	return n, nil
}

// InsurerName resolves a BAG number to the insurer's name using the BAG
// registry workbook.
func InsurerName(path string, bagNumber int) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open insurer workbook: %w", err)
	}

	for _, sheetName := range insurerSheets {
		sheet, ok := f.Sheet[sheetName]
		if !ok || len(sheet.Rows) == 0 {
			continue
		}

		idx := map[string]int{}
		for i, c := range sheet.Rows[0].Cells {
			idx[strings.TrimSpace(c.String())] = i
		}
		numIdx, okNum := idx["Nummer"]
		nameIdx, okName := idx["Name"]
		if !okNum || !okName {
			continue
		}

		for _, row := range sheet.Rows[1:] {
			if numIdx >= len(row.Cells) || nameIdx >= len(row.Cells) {
				continue
			}
			num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(row.Cells[numIdx].String()), ".0"))
			if err != nil || num != bagNumber {
				continue
			}
			return strings.TrimSpace(row.Cells[nameIdx].String()), nil
		}
	}
	return "", fmt.Errorf("BAG number %d: %w", bagNumber, ErrNotFound)
}
