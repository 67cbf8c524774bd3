package airquality

import (
	"context"
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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luftpraemie/luftpraemie/internal/geo"
)

// Station table errors.
var (
	ErrMissingColumn = errors.New("missing required column")
)

// Raw station CSV column names.
const (
	colStation   = "Station"
	colEasting   = "Easting"
	colNorthing  = "Northing"
	colLatitude  = "WGS84_Latitude"
	colLongitude = "WGS84_Longitude"
)

// displayNames maps the uppercase station identifiers of the station table to
// the display names used as column headers in the historical exports.
var displayNames = map[string]string{
	"BASEL-BINNINGEN":     "Basel-Binningen",
	"BERN-BOLLWERK":       "Bern-Bollwerk",
	"BEROMÜNSTER":         "Beromünster",
	"CHAUMONT":            "Chaumont",
	"DAVOS-SEEHORNWALD":   "Davos-Seehornwald",
	"DÜBENDORF-EMPA":      "Dübendorf-Empa",
	"HÄRKINGEN-A1":        "Härkingen-A1",
	"JUNGFRAUJOCH":        "Jungfraujoch",
	"LAUSANNE-CÉSAR-ROUX": "Lausanne-César-Roux",
	"LUGANO-UNIVERSITA":   "Lugano-Università",
	"MAGADINO-CADENAZZO":  "Magadino-Cadenazzo",
	"PAYERNE":             "Payerne",
	"RIGI-SEEBODENALP":    "Rigi-Seebodenalp",
	"SION-AÉROPORT-A9":    "Sion-Aéroport-A9",
	"TÄNIKON":             "Tänikon",
	"ZÜRICH-KASERNE":      "Zürich-Kaserne",
}

// DisplayName returns the historical-export column name for a station
// identifier, falling back to the identifier itself.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return id
}

// RawStation is one unconverted row of the NABEL station table.
type RawStation struct {
	ID       string
	Easting  string
	Northing string
}

// ReadRawStations parses the NABEL station CSV (comma separated, UTF-8).
func ReadRawStations(r io.Reader) ([]RawStation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header, colStation, colEasting, colNorthing)
	if err != nil {
		return nil, err
	}

	var stations []RawStation
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		stations = append(stations, RawStation{
			ID:       cell(row, idx[colStation]),
			Easting:  cell(row, idx[colEasting]),
			Northing: cell(row, idx[colNorthing]),
		})
	}
	return stations, nil
}

// EnrichmentConfig holds configuration for the coordinate enrichment pass.
type EnrichmentConfig struct {
	// Converter performs the LV95 to WGS84 conversion.
	Converter geo.Service

	// Limiter throttles conversion requests. The reference service is shared
	// infrastructure; the pipeline spaces requests rather than bursting.
	// Default: one request per 300ms.
	Limiter *rate.Limiter

	// Logger for per-station outcomes.
	Logger zerolog.Logger
}

// EnrichCoordinates converts every raw station's coordinates to WGS84,
// producing one StationRecord per input row. Rows whose coordinates fail to
// parse or convert yield a record without a position; they are kept so the
// table stays aligned with the source, but interpolation skips them.
func EnrichCoordinates(ctx context.Context, raw []RawStation, cfg EnrichmentConfig) ([]StationRecord, error) {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(300*time.Millisecond), 1)
	}

	records := make([]StationRecord, 0, len(raw))
	for _, rs := range raw {
		record := StationRecord{ID: rs.ID, Name: DisplayName(rs.ID)}

		easting, northing, ok := geo.ParseCoordinatePair(rs.Easting, rs.Northing)
		if !ok {
			cfg.Logger.Warn().Str("station", rs.ID).
				Str("easting", rs.Easting).Str("northing", rs.Northing).
				Msg("unparseable station coordinates")
			records = append(records, record)
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("enrich coordinates: %w", err)
		}

		p, err := cfg.Converter.ConvertLV95(ctx, easting, northing)
		if err != nil {
			// Already logged by the converter with the offending input.
			records = append(records, record)
			continue
		}

		record.Position = &geo.Point{Lat: p.Lat, Lon: p.Lon}
		records = append(records, record)
	}
	return records, nil
}

// ReadEnrichedStations parses a station CSV that already carries WGS84
// coordinates and any number of {pollutant}_{year} value columns. Blank
// coordinate cells leave the record unpositioned; blank value cells are
// simply absent (reading them yields NaN).
func ReadEnrichedStations(r io.Reader) ([]StationRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header, colStation, colLatitude, colLongitude)
	if err != nil {
		return nil, err
	}

	reserved := map[int]bool{
		idx[colStation]:   true,
		idx[colLatitude]:  true,
		idx[colLongitude]: true,
	}
	if i, ok := find(header, colEasting); ok {
		reserved[i] = true
	}
	if i, ok := find(header, colNorthing); ok {
		reserved[i] = true
	}

	var records []StationRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		record := StationRecord{ID: cell(row, idx[colStation])}
		record.Name = DisplayName(record.ID)

		lat, latErr := strconv.ParseFloat(cell(row, idx[colLatitude]), 64)
		lon, lonErr := strconv.ParseFloat(cell(row, idx[colLongitude]), 64)
		if latErr == nil && lonErr == nil {
			record.Position = &geo.Point{Lat: lat, Lon: lon}
		}

		for i, name := range header {
			if reserved[i] || name == "" {
				continue
			}
			raw := cell(row, i)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			record.SetValue(name, v)
		}
		records = append(records, record)
	}
	return records, nil
}

// WriteEnrichedStations writes records back out in the enriched CSV layout.
// Value columns are the union of all keys, in sorted order for a stable file.
func WriteEnrichedStations(w io.Writer, records []StationRecord) error {
	keySet := map[string]bool{}
	for i := range records {
		for k := range records[i].Values {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cw := csv.NewWriter(w)
	header := append([]string{colStation, colLatitude, colLongitude}, keys...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		s := &records[i]
		row := make([]string, 0, len(header))
		row = append(row, s.ID)
		if s.Located() {
			row = append(row,
				strconv.FormatFloat(s.Position.Lat, 'f', -1, 64),
				strconv.FormatFloat(s.Position.Lon, 'f', -1, 64))
		} else {
			row = append(row, "", "")
		}
		for _, k := range keys {
			v := s.Value(k)
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// LoadEnrichedStations reads an enriched station table from disk.
func LoadEnrichedStations(path string) ([]StationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()
	return ReadEnrichedStations(f)
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := find(header, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[name] = i
	}
	return idx, nil
}

func find(header []string, name string) (int, bool) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return 0, false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
