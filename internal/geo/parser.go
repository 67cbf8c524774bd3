package geo

import (
	"math"
	"strconv"
	"strings"
)

// ParseCoordinatePair normalizes the raw station coordinate encodings found in
// the NABEL exports into an LV95 easting/northing pair.
//
// Two encodings are accepted: both fields carrying numeric values, or the
// primary field carrying a combined "easting/northing" string with the
// secondary field empty. A coordinate pair is atomic: if only one half parses,
// the whole pair fails. Returns ok=false on any conversion failure.
func ParseCoordinatePair(primary, secondary string) (easting, northing float64, ok bool) {
	if e, n, ok := parseBoth(primary, secondary); ok {
		return e, n, true
	}

	if secondary == "" && strings.Contains(primary, "/") {
		parts := strings.SplitN(primary, "/", 2)
		return parseBoth(parts[0], parts[1])
	}

	return 0, 0, false
}

func parseBoth(first, second string) (float64, float64, bool) {
	e, ok := parseFinite(first)
	if !ok {
		return 0, 0, false
	}
	n, ok := parseFinite(second)
	if !ok {
		return 0, 0, false
	}
	return e, n, true
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
