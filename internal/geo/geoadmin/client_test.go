package geoadmin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/geo/geoadmin"
)

func TestClient_ConvertLV95(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lv95towgs84", r.URL.Path)
		assert.Equal(t, "2600390", r.URL.Query().Get("easting"))
		assert.Equal(t, "1199905", r.URL.Query().Get("northing"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		// The service reuses the input field names for the converted
		// coordinates: easting carries the longitude, northing the latitude.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"easting": "7.438632", "northing": "46.951082"}`))
	}))
	defer server.Close()

	client := geoadmin.NewClient(geoadmin.ClientConfig{
		ReframeBaseURL: server.URL,
		Logger:         zerolog.Nop(),
	})

	p, err := client.ConvertLV95(context.Background(), 2600390, 1199905)
	require.NoError(t, err)

	assert.InDelta(t, 46.951082, p.Lat, 1e-9)
	assert.InDelta(t, 7.438632, p.Lon, 1e-9)
}

func TestClient_ConvertLV95_NumericPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"easting": 7.438632, "northing": 46.951082}`))
	}))
	defer server.Close()

	client := geoadmin.NewClient(geoadmin.ClientConfig{
		ReframeBaseURL: server.URL,
		Logger:         zerolog.Nop(),
	})

	p, err := client.ConvertLV95(context.Background(), 2600390, 1199905)
	require.NoError(t, err)
	assert.InDelta(t, 46.951082, p.Lat, 1e-9)
}

func TestClient_ConvertLV95_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed payload", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"easting": "out of bounds"}`))
		}},
		{"missing coordinates", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := geoadmin.NewClient(geoadmin.ClientConfig{
				ReframeBaseURL: server.URL,
				Logger:         zerolog.Nop(),
			})

			_, err := client.ConvertLV95(context.Background(), 2600390, 1199905)
			assert.ErrorIs(t, err, geo.ErrNoResult)
		})
	}
}

func TestClient_ConvertLV95_SingleAttempt(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := geoadmin.NewClient(geoadmin.ClientConfig{
		ReframeBaseURL: server.URL,
		Logger:         zerolog.Nop(),
	})

	_, err := client.ConvertLV95(context.Background(), 2600390, 1199905)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_SearchLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bern", r.URL.Query().Get("searchText"))
		assert.Equal(t, "locations", r.URL.Query().Get("type"))
		assert.Equal(t, "gg25", r.URL.Query().Get("origins"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`{"results": [
			{"attrs": {"featureId": null, "lat": 46.0, "lon": 7.0}},
			{"attrs": {"featureId": 351, "lat": "46.948", "lon": "7.447"}},
			{"attrs": {"featureId": "0351", "lat": 46.5, "lon": 7.5}}
		]}`))
	}))
	defer server.Close()

	client := geoadmin.NewClient(geoadmin.ClientConfig{
		SearchBaseURL: server.URL,
		Logger:        zerolog.Nop(),
	})

	candidates, err := client.SearchLocations(context.Background(), "Bern", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Null feature IDs normalize to empty, numbers and strings to text.
	assert.Empty(t, candidates[0].FeatureID)
	assert.Equal(t, "351", candidates[1].FeatureID)
	assert.Equal(t, "0351", candidates[2].FeatureID)

	assert.InDelta(t, 46.948, candidates[1].Lat, 1e-9)
	assert.InDelta(t, 7.447, candidates[1].Lon, 1e-9)
}

func TestClient_SearchLocations_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := geoadmin.NewClient(geoadmin.ClientConfig{
		SearchBaseURL: server.URL,
		Logger:        zerolog.Nop(),
	})

	_, err := client.SearchLocations(context.Background(), "Bern", 5)
	assert.Error(t, err)
}
