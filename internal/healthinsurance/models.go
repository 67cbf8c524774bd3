// Package healthinsurance loads and filters the BAG health-insurance premium
// filings and the fee-region municipality registry.
package healthinsurance

import "errors"

// Data errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNotFound      = errors.New("not found")
)

// Age classes of the Swiss basic insurance.
const (
	AgeClassChild      = "AKL-KIN"
	AgeClassYoungAdult = "AKL-JUG"
	AgeClassAdult      = "AKL-ERW"
)

// Accident coverage variants.
const (
	WithAccident    = "MIT-UNF"
	WithoutAccident = "OHN-UNF"
)

// Tariff types of the basic insurance models.
const (
	TariffBase         = "TAR-BASE" // free choice of physician
	TariffTelemedicine = "TAR-DIV"
	TariffHMO          = "TAR-HMO"
	TariffFamilyDoctor = "TAR-HAM"
)

// PremiumRecord is one row of the BAG premium filing.
type PremiumRecord struct {
	// Insurer is the BAG number identifying the insurance company.
	Insurer string

	Canton      string
	Region      string
	AgeClass    string
	AgeSubgroup string
	Accident    string
	Deductible  string
	TariffType  string

	// Premium is the monthly fee in CHF.
	Premium float64
}

// Filter selects premium records by exact match on every non-empty field.
// AgeSubgroup is only applied for the child age class, mirroring how the
// filing uses subgroups.
type Filter struct {
	Canton      string
	Region      string
	AgeClass    string
	AgeSubgroup string
	Accident    string
	Deductible  string
	TariffType  string
}

// Matches reports whether r satisfies the filter.
func (f Filter) Matches(r PremiumRecord) bool {
	if f.Canton != "" && r.Canton != f.Canton {
		return false
	}
	if f.Region != "" && r.Region != f.Region {
		return false
	}
	if f.AgeClass != "" && r.AgeClass != f.AgeClass {
		return false
	}
	if f.Accident != "" && r.Accident != f.Accident {
		return false
	}
	if f.Deductible != "" && r.Deductible != f.Deductible {
		return false
	}
	if f.TariffType != "" && r.TariffType != f.TariffType {
		return false
	}
	if f.AgeClass == AgeClassChild && f.AgeSubgroup != "" && r.AgeSubgroup != f.AgeSubgroup {
		return false
	}
	return true
}
