package airquality_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/geo"
)

type fakeConverter struct {
	calls int
	fail  map[float64]bool
}

func (f *fakeConverter) ConvertLV95(_ context.Context, easting, northing float64) (geo.Point, error) {
	f.calls++
	if f.fail[easting] {
		return geo.Point{}, geo.ErrNoResult
	}
	// Offset encoding keeps the fake trivially invertible in assertions.
	return geo.Point{Lat: northing / 100000, Lon: easting / 100000}, nil
}

func (f *fakeConverter) SearchLocations(context.Context, string, int) ([]geo.PlaceCandidate, error) {
	return nil, geo.ErrNoResult
}

func TestReadRawStations(t *testing.T) {
	csv := strings.Join([]string{
		"Station,Easting,Northing",
		"BERN-BOLLWERK,2600390,1199905",
		`PAYERNE,2562285/1184775,`,
	}, "\n")

	stations, err := airquality.ReadRawStations(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, "BERN-BOLLWERK", stations[0].ID)
	assert.Equal(t, "2600390", stations[0].Easting)
	assert.Equal(t, "1199905", stations[0].Northing)
	assert.Equal(t, "2562285/1184775", stations[1].Easting)
	assert.Empty(t, stations[1].Northing)
}

func TestReadRawStations_MissingColumn(t *testing.T) {
	csv := "Station,Easting\nBERN-BOLLWERK,2600390"

	_, err := airquality.ReadRawStations(strings.NewReader(csv))
	assert.ErrorIs(t, err, airquality.ErrMissingColumn)
}

func TestEnrichCoordinates(t *testing.T) {
	raw := []airquality.RawStation{
		{ID: "BERN-BOLLWERK", Easting: "2600390", Northing: "1199905"},
		{ID: "PAYERNE", Easting: "2562285/1184775"},
		{ID: "BROKEN", Easting: "not-a-number", Northing: ""},
	}

	conv := &fakeConverter{}
	records, err := airquality.EnrichCoordinates(context.Background(), raw, airquality.EnrichmentConfig{
		Converter: conv,
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 2, conv.calls)

	require.True(t, records[0].Located())
	assert.InDelta(t, 11.99905, records[0].Position.Lat, 1e-9)
	assert.InDelta(t, 26.0039, records[0].Position.Lon, 1e-9)
	assert.Equal(t, "Bern-Bollwerk", records[0].Name)

	assert.True(t, records[1].Located())

	// Unparseable coordinates keep the row, without a position.
	assert.False(t, records[2].Located())
}

func TestEnrichCoordinates_ConversionFailureKeepsRecord(t *testing.T) {
	raw := []airquality.RawStation{
		{ID: "A", Easting: "2600000", Northing: "1200000"},
		{ID: "B", Easting: "2500000", Northing: "1100000"},
	}

	conv := &fakeConverter{fail: map[float64]bool{2600000: true}}
	records, err := airquality.EnrichCoordinates(context.Background(), raw, airquality.EnrichmentConfig{
		Converter: conv,
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.False(t, records[0].Located())
	assert.True(t, records[1].Located())
}

func TestEnrichedStationsRoundTrip(t *testing.T) {
	in := strings.Join([]string{
		"Station,WGS84_Latitude,WGS84_Longitude,NO2_2022,PM2.5_2023",
		"BERN-BOLLWERK,46.95,7.44,25.5,",
		"ZÜRICH-KASERNE,47.38,8.53,,11.2",
		"UNLOCATED,,,5.5,",
	}, "\n")

	records, err := airquality.ReadEnrichedStations(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.True(t, records[0].Located())
	assert.InDelta(t, 46.95, records[0].Position.Lat, 1e-9)
	assert.Equal(t, 25.5, records[0].Value("NO2_2022"))
	assert.True(t, records[0].Value("PM2.5_2023") != records[0].Value("PM2.5_2023"), "blank cell reads as NaN")

	assert.Equal(t, 11.2, records[1].Value("PM2.5_2023"))
	assert.False(t, records[2].Located())
	assert.Equal(t, 5.5, records[2].Value("NO2_2022"))

	var buf bytes.Buffer
	require.NoError(t, airquality.WriteEnrichedStations(&buf, records))

	again, err := airquality.ReadEnrichedStations(&buf)
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, 25.5, again[0].Value("NO2_2022"))
	assert.Equal(t, 11.2, again[1].Value("PM2.5_2023"))
	assert.False(t, again[2].Located())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Zürich-Kaserne", airquality.DisplayName("ZÜRICH-KASERNE"))
	assert.Equal(t, "SOMEWHERE-ELSE", airquality.DisplayName("SOMEWHERE-ELSE"))
}
