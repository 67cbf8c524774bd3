package openweathermap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luftpraemie/luftpraemie/internal/airquality/openweathermap"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := openweathermap.NewClient(openweathermap.ClientConfig{})
	assert.ErrorIs(t, err, openweathermap.ErrMissingAPIKey)
}

func TestClient_CurrentAirPollution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/air_pollution", r.URL.Path)
		assert.Equal(t, "46.948", r.URL.Query().Get("lat"))
		assert.Equal(t, "7.447", r.URL.Query().Get("lon"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list": [{
			"main": {"aqi": 2},
			"components": {"pm2_5": 8.4, "no2": 14.2, "o3": 61.0},
			"dt": 1700000000
		}]}`))
	}))
	defer server.Close()

	client, err := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	snapshot, err := client.CurrentAirPollution(context.Background(), 46.948, 7.447)
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.AQI)
	assert.Equal(t, 8.4, snapshot.Components["pm2_5"])
	assert.Equal(t, 14.2, snapshot.Components["no2"])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snapshot.ObservedAt)
}

func TestClient_CurrentAirPollution_EmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"list": []}`))
	}))
	defer server.Close()

	client, err := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = client.CurrentAirPollution(context.Background(), 46.948, 7.447)
	assert.Error(t, err)
}

func TestClient_CurrentAirPollution_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  "bad-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = client.CurrentAirPollution(context.Background(), 46.948, 7.447)
	assert.Error(t, err)
}
