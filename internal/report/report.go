// Package report cross-references interpolated air pollution with
// health-insurance premiums at canton granularity.
package report

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
)

// cantonNames maps canton abbreviations to their German names.
var cantonNames = map[string]string{
	"AG": "Aargau",
	"AR": "Appenzell Ausserrhoden",
	"AI": "Appenzell Innerrhoden",
	"BL": "Basel-Landschaft",
	"BS": "Basel-Stadt",
	"BE": "Bern",
	"FR": "Freiburg",
	"GE": "Genf",
	"GL": "Glarus",
	"GR": "Graubünden",
	"JU": "Jura",
	"LU": "Luzern",
	"NE": "Neuenburg",
	"NW": "Nidwalden",
	"OW": "Obwalden",
	"SH": "Schaffhausen",
	"SZ": "Schwyz",
	"SO": "Solothurn",
	"SG": "St. Gallen",
	"TI": "Tessin",
	"TG": "Thurgau",
	"UR": "Uri",
	"VD": "Waadt",
	"VS": "Wallis",
	"ZG": "Zug",
	"ZH": "Zürich",
}

// Cantons returns all canton abbreviations, sorted.
func Cantons() []string {
	cantons := make([]string, 0, len(cantonNames))
	for abbr := range cantonNames {
		cantons = append(cantons, abbr)
	}
	sort.Strings(cantons)
	return cantons
}

// CantonName returns the German name for a canton abbreviation, or the
// abbreviation itself when unknown.
func CantonName(abbr string) string {
	if name, ok := cantonNames[abbr]; ok {
		return name
	}
	return abbr
}

// MunicipalityResolver resolves a municipality name to WGS84 coordinates.
// Batch runs should pass a geo.CachedLocator: municipality lists across fee
// regions overlap heavily.
type MunicipalityResolver interface {
	ResolveMunicipality(ctx context.Context, name string) (geo.Point, error)
}

// Config holds the inputs of a report run.
type Config struct {
	// Resolver maps municipality names to coordinates.
	Resolver MunicipalityResolver

	// Stations is the enriched station table used for interpolation.
	Stations []airquality.StationRecord

	// Estimator performs the IDW interpolation. Defaults apply when nil.
	Estimator *airquality.Estimator

	// Premiums is the loaded BAG premium filing.
	Premiums []healthinsurance.PremiumRecord

	// Regions is the fee-region municipality registry.
	Regions *healthinsurance.RegionRegistry

	// Concurrency bounds parallel municipality lookups. Default: 4.
	Concurrency int

	// Logger for per-municipality outcomes.
	Logger zerolog.Logger
}

// Reporter computes canton-level pollution and premium summaries.
type Reporter struct {
	resolver    MunicipalityResolver
	stations    []airquality.StationRecord
	estimator   *airquality.Estimator
	premiums    []healthinsurance.PremiumRecord
	regions     *healthinsurance.RegionRegistry
	concurrency int
	logger      zerolog.Logger
}

// NewReporter creates a Reporter.
func NewReporter(cfg Config) *Reporter {
	estimator := cfg.Estimator
	if estimator == nil {
		estimator = airquality.NewEstimator(airquality.DefaultEstimatorConfig())
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Reporter{
		resolver:    cfg.Resolver,
		stations:    cfg.Stations,
		estimator:   estimator,
		premiums:    cfg.Premiums,
		regions:     cfg.Regions,
		concurrency: concurrency,
		logger:      cfg.Logger,
	}
}

// CantonSummary is one canton's cross-referenced result.
type CantonSummary struct {
	Canton string `json:"canton"`
	Name   string `json:"name"`

	// Pollution is the canton median of the interpolated municipality
	// estimates; NaN when no municipality produced a usable estimate.
	Pollution float64 `json:"pollution"`

	// MedianPremium is the median monthly premium among the filing rows
	// matching the report's premium filter; NaN when nothing matched.
	MedianPremium float64 `json:"median_premium"`

	// Municipalities is the number of municipalities that contributed a
	// usable pollution estimate.
	Municipalities int `json:"municipalities"`
}

// CantonPollution interpolates the pollutant at every municipality of the
// canton's fee regions and returns the median, along with the count of
// municipalities that produced a usable value. Municipalities that cannot be
// resolved or carry no station data nearby are skipped; an all-skip run
// yields NaN. Lookups run concurrently up to the configured bound.
func (r *Reporter) CantonPollution(ctx context.Context, canton string, pollutant airquality.Pollutant, year int) (float64, int, error) {
	municipalities := r.cantonMunicipalities(canton)
	if len(municipalities) == 0 {
		r.logger.Warn().Str("canton", canton).Msg("no municipalities for canton")
		return math.NaN(), 0, nil
	}

	valueKey := airquality.ValueKey(pollutant, year)

	var (
		mu     sync.Mutex
		usable []float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, municipality := range municipalities {
		g.Go(func() error {
			target, err := r.resolver.ResolveMunicipality(gctx, municipality)
			if err != nil {
				// Skip, don't abort: partial coverage still yields a median.
				r.logger.Debug().Str("municipality", municipality).Err(err).
					Msg("skipping unresolvable municipality")
				return nil
			}

			estimate := r.estimator.Estimate(r.stations, target, valueKey)
			if math.IsNaN(estimate) {
				r.logger.Debug().Str("municipality", municipality).Str("value", valueKey).
					Msg("no usable station data for municipality")
				return nil
			}

			mu.Lock()
			usable = append(usable, estimate)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return math.NaN(), 0, err
	}

	if len(usable) == 0 {
		return math.NaN(), 0, nil
	}
	return median(usable), len(usable), nil
}

// CrossReference computes the canton pollution medians for the given cantons
// and joins them with the median premium per canton under the given filter.
// The filter's Canton field is set per canton.
func (r *Reporter) CrossReference(ctx context.Context, cantons []string, pollutant airquality.Pollutant, year int, feeFilter healthinsurance.Filter) ([]CantonSummary, error) {
	summaries := make([]CantonSummary, 0, len(cantons))
	for _, canton := range cantons {
		pollution, count, err := r.CantonPollution(ctx, canton, pollutant, year)
		if err != nil {
			return nil, err
		}

		feeFilter.Canton = canton
		fees := healthinsurance.FeesByParameters(r.premiums, feeFilter)

		summaries = append(summaries, CantonSummary{
			Canton:         canton,
			Name:           CantonName(canton),
			Pollution:      pollution,
			MedianPremium:  healthinsurance.MedianPremium(fees),
			Municipalities: count,
		})

		r.logger.Info().
			Str("canton", canton).
			Float64("pollution", pollution).
			Int("municipalities", count).
			Msg("canton summarized")
	}
	return summaries, nil
}

// cantonMunicipalities returns the distinct municipalities across all fee
// regions the canton filed, preserving first-seen order.
func (r *Reporter) cantonMunicipalities(canton string) []string {
	seen := map[string]bool{}
	var municipalities []string
	for _, region := range healthinsurance.Regions(r.premiums, canton) {
		names, err := r.regions.MunicipalitiesForFeeRegion(canton, region)
		if err != nil {
			continue
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			municipalities = append(municipalities, name)
		}
	}
	return municipalities
}

func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
