package airquality

import (
	"math"
	"sort"

	"github.com/luftpraemie/luftpraemie/internal/geo"
)

// EstimatorConfig holds configuration for the IDW estimator.
type EstimatorConfig struct {
	// K is the number of nearest stations to use. Default: 4.
	K int

	// Power is the inverse-distance exponent. Higher values make nearer
	// stations dominate more. Default: 2 (classic IDW). Not validated;
	// zero or negative values are the caller's responsibility.
	Power float64
}

// DefaultEstimatorConfig returns the defaults used by the canton reports.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		K:     4,
		Power: 2,
	}
}

// Estimator performs inverse-distance-weighted interpolation of station
// values. It holds no state beyond its configuration; every estimate is a
// pure function of its inputs.
type Estimator struct {
	config EstimatorConfig
}

// NewEstimator creates an Estimator, filling unset config fields with the
// defaults.
func NewEstimator(config EstimatorConfig) *Estimator {
	if config.K <= 0 {
		config.K = DefaultEstimatorConfig().K
	}
	if config.Power == 0 {
		config.Power = DefaultEstimatorConfig().Power
	}
	return &Estimator{config: config}
}

// Estimate interpolates the valueKey column at target using the configured
// K and Power.
func (e *Estimator) Estimate(stations []StationRecord, target geo.Point, valueKey string) float64 {
	return Interpolate(stations, target, valueKey, e.config.K, e.config.Power)
}

// candidate pairs a station's value with its distance from the target.
type candidate struct {
	distance float64
	value    float64
}

// Interpolate estimates the valueKey column at target by inverse distance
// weighting over the k nearest stations. The result is NaN when no station in
// the selection carries a usable value; the function never panics.
//
// Distances are planar Euclidean in raw degree space. Over a single country
// the degree grid is close enough to isometric for ranking and weighting;
// switching to a geodesic formula would change every numeric result and is
// deliberately not done.
func Interpolate(stations []StationRecord, target geo.Point, valueKey string, k int, power float64) float64 {
	candidates := make([]candidate, 0, len(stations))

	for i := range stations {
		s := &stations[i]
		if !s.Located() {
			continue
		}
		dLat := s.Position.Lat - target.Lat
		dLon := s.Position.Lon - target.Lon
		d := math.Sqrt(dLat*dLat + dLon*dLon)

		// A station exactly at the target answers for it outright: weighting
		// would divide by zero, and the station's own reading is the right
		// estimate. This intentionally returns the stored value even when it
		// is NaN, matching the long-standing behavior of the analysis.
		if d == 0 {
			return s.Value(valueKey)
		}

		candidates = append(candidates, candidate{distance: d, value: s.Value(valueKey)})
	}

	// Stable sort keeps the original input order among equal distances, so a
	// fixed input ordering always yields the same selection.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].distance < candidates[b].distance
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}

	var weightSum, weighted float64
	usable := 0
	for _, c := range candidates {
		if math.IsNaN(c.value) {
			continue
		}
		w := 1 / math.Pow(c.distance, power)
		weightSum += w
		weighted += w * c.value
		usable++
	}

	if usable == 0 {
		return math.NaN()
	}

	// Dividing by the weight sum normalizes the weights to 1, so the result
	// is a convex combination of the surviving station values.
	return weighted / weightSum
}
