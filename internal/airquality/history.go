package airquality

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// ErrNoDataHeader is returned when a historical export has no data table.
var ErrNoDataHeader = errors.New("no Datum/Zeit header found")

// historyDateLayout is the day format of the NABEL exports.
const historyDateLayout = "02.01.2006"

// History is the parsed daily table of one pollutant's historical export:
// one column per station, one row per day, blanks meaning no measurement.
type History struct {
	// Stations holds the station display names, in file column order.
	Stations []string

	days []historyDay
}

type historyDay struct {
	date   time.Time
	values []float64 // aligned with Stations; NaN when blank
}

// ReadHistory parses a NABEL historical export. The files are Latin-1 encoded
// and start with free-form metadata lines; the data table begins at the line
// whose first field is "Datum/Zeit" and is semicolon separated.
func ReadHistory(r io.Reader) (*History, error) {
	br := bufio.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	// Skip the metadata preamble.
	var headerLine string
	for {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(line, "Datum/Zeit") {
			headerLine = line
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoDataHeader
			}
			return nil, fmt.Errorf("scan preamble: %w", err)
		}
	}

	header := splitHistoryLine(headerLine)
	h := &History{Stations: header[1:]}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read data row: %w", err)
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		date, err := time.Parse(historyDateLayout, strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}

		values := make([]float64, len(h.Stations))
		empty := true
		for i := range values {
			values[i] = math.NaN()
			if i+1 < len(row) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64); err == nil {
					values[i] = v
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		h.days = append(h.days, historyDay{date: date, values: values})
	}

	return h, nil
}

// LoadHistory reads a historical export from disk.
func LoadHistory(path string) (*History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	return ReadHistory(f)
}

// YearlyMedian computes the median of each station's daily values within the
// given year. Stations with no measurements that year are absent from the
// result.
func (h *History) YearlyMedian(year int) map[string]float64 {
	perStation := make(map[string][]float64)
	for _, day := range h.days {
		if day.date.Year() != year {
			continue
		}
		for i, v := range day.values {
			if math.IsNaN(v) {
				continue
			}
			name := h.Stations[i]
			perStation[name] = append(perStation[name], v)
		}
	}

	medians := make(map[string]float64, len(perStation))
	for name, values := range perStation {
		medians[name] = median(values)
	}
	return medians
}

// MergeYearlyMedians computes the yearly medians for the given years and
// stores them on the matching station records under ValueKey(pollutant, year).
// Stations are matched by display name, mirroring the historical export's
// column headers.
func MergeYearlyMedians(records []StationRecord, h *History, pollutant Pollutant, years []int) {
	for _, year := range years {
		medians := h.YearlyMedian(year)
		key := ValueKey(pollutant, year)
		for i := range records {
			if v, ok := medians[records[i].Name]; ok {
				records[i].SetValue(key, v)
			}
		}
	}
}

// median returns the middle value, averaging the two central values for even
// counts. values is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func splitHistoryLine(line string) []string {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
