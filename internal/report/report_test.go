package report_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

const valueKey = "PM2.5_2023"

type staticResolver struct {
	points map[string]geo.Point
}

func (r *staticResolver) ResolveMunicipality(_ context.Context, name string) (geo.Point, error) {
	if p, ok := r.points[name]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrNoResult
}

func testRegistry(t *testing.T) *healthinsurance.RegionRegistry {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Anhang EDI Ver. über die PR")
	require.NoError(t, err)

	rows := [][]string{
		{"Kanton", "Region", "Gemeinde"},
		{"BE", "1", "Bern"},
		{"BE", "1", "Ostermundigen"},
		{"BE", "2", "Thun"},
		{"GL", "1", "Glarus"},
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().Value = value
		}
	}

	path := filepath.Join(t.TempDir(), "regions.xlsx")
	require.NoError(t, f.Save(path))

	reg, err := healthinsurance.LoadRegionRegistry(path)
	require.NoError(t, err)
	return reg
}

func station(id string, lat, lon, value float64) airquality.StationRecord {
	s := airquality.StationRecord{
		ID:       id,
		Name:     id,
		Position: &geo.Point{Lat: lat, Lon: lon},
	}
	s.SetValue(valueKey, value)
	return s
}

func testPremiums() []healthinsurance.PremiumRecord {
	return []healthinsurance.PremiumRecord{
		{Canton: "BE", Region: "PR-REG CH1", AgeClass: "AKL-ERW", Premium: 400},
		{Canton: "BE", Region: "PR-REG CH1", AgeClass: "AKL-ERW", Premium: 420},
		{Canton: "BE", Region: "PR-REG CH2", AgeClass: "AKL-ERW", Premium: 380},
		{Canton: "GL", Region: "PR-REG CH1", AgeClass: "AKL-ERW", Premium: 350},
	}
}

func newTestReporter(t *testing.T, resolver report.MunicipalityResolver) *report.Reporter {
	t.Helper()
	return report.NewReporter(report.Config{
		Resolver: resolver,
		Stations: []airquality.StationRecord{
			station("A", 47.0, 8.0, 10),
			station("B", 47.0, 9.0, 20),
		},
		Premiums: testPremiums(),
		Regions:  testRegistry(t),
		Logger:   zerolog.Nop(),
	})
}

func TestReporter_CantonPollution(t *testing.T) {
	resolver := &staticResolver{points: map[string]geo.Point{
		"Bern":          {Lat: 47.0, Lon: 8.0}, // exactly on station A
		"Ostermundigen": {Lat: 47.0, Lon: 9.0}, // exactly on station B
		"Thun":          {Lat: 47.0, Lon: 8.5}, // midpoint
	}}
	reporter := newTestReporter(t, resolver)

	pollution, count, err := reporter.CantonPollution(context.Background(), "BE", airquality.PollutantPM25, 2023)
	require.NoError(t, err)

	// Estimates are 10, 20 and 15; the median is 15.
	assert.Equal(t, 3, count)
	assert.InDelta(t, 15.0, pollution, 1e-9)
}

func TestReporter_CantonPollution_SkipsUnresolvable(t *testing.T) {
	resolver := &staticResolver{points: map[string]geo.Point{
		"Bern": {Lat: 47.0, Lon: 8.0},
	}}
	reporter := newTestReporter(t, resolver)

	pollution, count, err := reporter.CantonPollution(context.Background(), "BE", airquality.PollutantPM25, 2023)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.InDelta(t, 10.0, pollution, 1e-9)
}

func TestReporter_CantonPollution_NothingUsable(t *testing.T) {
	resolver := &staticResolver{}
	reporter := newTestReporter(t, resolver)

	pollution, count, err := reporter.CantonPollution(context.Background(), "BE", airquality.PollutantPM25, 2023)
	require.NoError(t, err)

	assert.Zero(t, count)
	assert.True(t, math.IsNaN(pollution))
}

func TestReporter_CantonPollution_UnknownCanton(t *testing.T) {
	reporter := newTestReporter(t, &staticResolver{})

	pollution, count, err := reporter.CantonPollution(context.Background(), "XX", airquality.PollutantPM25, 2023)
	require.NoError(t, err)

	assert.Zero(t, count)
	assert.True(t, math.IsNaN(pollution))
}

func TestReporter_CrossReference(t *testing.T) {
	resolver := &staticResolver{points: map[string]geo.Point{
		"Bern":          {Lat: 47.0, Lon: 8.0},
		"Ostermundigen": {Lat: 47.0, Lon: 9.0},
		"Thun":          {Lat: 47.0, Lon: 8.5},
		"Glarus":        {Lat: 47.0, Lon: 9.0},
	}}
	reporter := newTestReporter(t, resolver)

	summaries, err := reporter.CrossReference(context.Background(), []string{"BE", "GL"},
		airquality.PollutantPM25, 2023, healthinsurance.Filter{AgeClass: "AKL-ERW"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	be := summaries[0]
	assert.Equal(t, "BE", be.Canton)
	assert.Equal(t, "Bern", be.Name)
	assert.InDelta(t, 15.0, be.Pollution, 1e-9)
	assert.InDelta(t, 400.0, be.MedianPremium, 1e-9)
	assert.Equal(t, 3, be.Municipalities)

	gl := summaries[1]
	assert.Equal(t, "Glarus", gl.Name)
	assert.InDelta(t, 20.0, gl.Pollution, 1e-9)
	assert.InDelta(t, 350.0, gl.MedianPremium, 1e-9)
}

func TestCantons(t *testing.T) {
	cantons := report.Cantons()
	assert.Len(t, cantons, 26)
	assert.Contains(t, cantons, "ZH")
	assert.Contains(t, cantons, "JU")
}

func TestCantonName(t *testing.T) {
	assert.Equal(t, "Zürich", report.CantonName("ZH"))
	assert.Equal(t, "XX", report.CantonName("XX"))
}
