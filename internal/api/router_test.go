package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/api"
	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

type staticResolver struct {
	points map[string]geo.Point
}

func (r *staticResolver) ResolveMunicipality(_ context.Context, name string) (geo.Point, error) {
	if p, ok := r.points[name]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrNoResult
}

func testStations() []airquality.StationRecord {
	a := airquality.StationRecord{ID: "A", Name: "A", Position: &geo.Point{Lat: 47.0, Lon: 8.0}}
	a.SetValue("PM2.5_2023", 10)
	b := airquality.StationRecord{ID: "B", Name: "B", Position: &geo.Point{Lat: 47.0, Lon: 9.0}}
	b.SetValue("PM2.5_2023", 20)
	unlocated := airquality.StationRecord{ID: "C", Name: "C"}
	return []airquality.StationRecord{a, b, unlocated}
}

func testRouter(t *testing.T) *httptest.Server {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Anhang EDI Ver. über die PR")
	require.NoError(t, err)
	for _, cells := range [][]string{
		{"Kanton", "Region", "Gemeinde"},
		{"BE", "1", "Bern"},
	} {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().Value = value
		}
	}
	path := filepath.Join(t.TempDir(), "regions.xlsx")
	require.NoError(t, f.Save(path))

	registry, err := healthinsurance.LoadRegionRegistry(path)
	require.NoError(t, err)

	resolver := &staticResolver{points: map[string]geo.Point{
		"Bern": {Lat: 47.0, Lon: 8.5},
	}}
	stations := testStations()

	reporter := report.NewReporter(report.Config{
		Resolver: resolver,
		Stations: stations,
		Premiums: []healthinsurance.PremiumRecord{
			{Canton: "BE", Region: "PR-REG CH1", AgeClass: "AKL-ERW", Accident: "OHN-UNF", Deductible: "300", TariffType: "TAR-BASE", Premium: 400},
		},
		Regions: registry,
		Logger:  zerolog.Nop(),
	})

	router := api.NewRouter(api.RouterConfig{
		Version:  "test",
		Logger:   zerolog.Nop(),
		Stations: stations,
		Resolver: resolver,
		Reporter: reporter,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRouter_Health(t *testing.T) {
	server := testRouter(t)

	var health map[string]any
	resp := getJSON(t, server.URL+"/v1/ops/health", &health)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRouter_ListStations(t *testing.T) {
	server := testRouter(t)

	var list struct {
		Items []struct {
			StationID string   `json:"stationId"`
			Lat       float64  `json:"lat"`
			Values    []string `json:"values"`
		} `json:"items"`
	}
	resp := getJSON(t, server.URL+"/v1/stations", &list)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// The unlocated station is omitted.
	require.Len(t, list.Items, 2)
	assert.Equal(t, "A", list.Items[0].StationID)
	assert.Equal(t, []string{"PM2.5_2023"}, list.Items[0].Values)
}

func TestRouter_Estimate_ByCoordinates(t *testing.T) {
	server := testRouter(t)

	var estimate struct {
		Estimate *float64 `json:"estimate"`
	}
	resp := getJSON(t, server.URL+"/v1/estimate?lat=47.0&lon=8.5&pollutant=PM2.5&year=2023", &estimate)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, estimate.Estimate)
	assert.InDelta(t, 15.0, *estimate.Estimate, 1e-9)
}

func TestRouter_Estimate_ByMunicipality(t *testing.T) {
	server := testRouter(t)

	var estimate struct {
		Municipality string   `json:"municipality"`
		Lat          float64  `json:"lat"`
		Estimate     *float64 `json:"estimate"`
	}
	resp := getJSON(t, server.URL+"/v1/estimate?municipality=Bern&pollutant=PM2.5&year=2023", &estimate)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bern", estimate.Municipality)
	assert.Equal(t, 47.0, estimate.Lat)
	require.NotNil(t, estimate.Estimate)
	assert.InDelta(t, 15.0, *estimate.Estimate, 1e-9)
}

func TestRouter_Estimate_NoData(t *testing.T) {
	server := testRouter(t)

	var estimate struct {
		Estimate *float64 `json:"estimate"`
	}
	resp := getJSON(t, server.URL+"/v1/estimate?municipality=Bern&pollutant=NO2&year=1990", &estimate)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, estimate.Estimate)
}

func TestRouter_Estimate_Validation(t *testing.T) {
	server := testRouter(t)

	cases := []struct {
		name  string
		query string
		code  int
	}{
		{"missing pollutant", "?municipality=Bern&year=2023", http.StatusBadRequest},
		{"bad year", "?municipality=Bern&pollutant=PM2.5&year=abc", http.StatusBadRequest},
		{"missing target", "?pollutant=PM2.5&year=2023", http.StatusBadRequest},
		{"bad k", "?municipality=Bern&pollutant=PM2.5&year=2023&k=0", http.StatusBadRequest},
		{"unknown municipality", "?municipality=Atlantis&pollutant=PM2.5&year=2023", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/v1/estimate" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
		})
	}
}

func TestRouter_Report(t *testing.T) {
	server := testRouter(t)

	var out struct {
		Pollutant string `json:"pollutant"`
		Items     []struct {
			Canton         string   `json:"canton"`
			Pollution      *float64 `json:"pollution"`
			MedianPremium  *float64 `json:"medianPremium"`
			Municipalities int      `json:"municipalities"`
		} `json:"items"`
	}
	resp := getJSON(t, server.URL+"/v1/report?cantons=BE&pollutant=PM2.5&year=2023", &out)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Items, 1)

	be := out.Items[0]
	assert.Equal(t, "BE", be.Canton)
	assert.Equal(t, 1, be.Municipalities)
	require.NotNil(t, be.Pollution)
	assert.InDelta(t, 15.0, *be.Pollution, 1e-9)
	require.NotNil(t, be.MedianPremium)
	assert.InDelta(t, 400.0, *be.MedianPremium, 1e-9)
}
