// Package openweathermap provides a client for the OpenWeatherMap air
// pollution API, used for current (non-historical) pollutant snapshots.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/luftpraemie/luftpraemie/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL of the OpenWeatherMap API.
	DefaultBaseURL = "https://api.openweathermap.org"

	// ProviderName identifies this provider.
	ProviderName = "openweathermap"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("openweathermap: API key required")

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenWeatherMap client. The API key
// is passed in explicitly; the client never reads process environment.
type ClientConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the default resilient client.
	HTTPClient HTTPDoer

	// Timeout for individual requests when HTTPClient is nil (default: 10s).
	Timeout time.Duration
}

// Client is an OpenWeatherMap air pollution client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates an OpenWeatherMap client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: cfg.Timeout,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Snapshot is a current air pollution reading at one coordinate.
type Snapshot struct {
	// AQI is the air quality index, 1 (good) through 5 (very poor).
	AQI int

	// Components maps pollutant codes (co, no2, o3, pm2_5, ...) to
	// concentrations in µg/m³.
	Components map[string]float64

	// ObservedAt is the measurement timestamp.
	ObservedAt time.Time
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components map[string]float64 `json:"components"`
		Dt         int64              `json:"dt"`
	} `json:"list"`
}

// CurrentAirPollution fetches the current pollution snapshot for a WGS84
// coordinate.
func (c *Client) CurrentAirPollution(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)

	reqURL := c.baseURL + "/data/2.5/air_pollution?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch air pollution: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from air pollution endpoint", resp.StatusCode)
	}

	var result airPollutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode air pollution response: %w", err)
	}
	if len(result.List) == 0 {
		return nil, fmt.Errorf("empty air pollution response")
	}

	entry := result.List[0]
	return &Snapshot{
		AQI:        entry.Main.AQI,
		Components: entry.Components,
		ObservedAt: time.Unix(entry.Dt, 0).UTC(),
	}, nil
}
