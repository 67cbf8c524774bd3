// Package geoadmin provides a client for the geo.admin.ch reference services:
// the REFRAME coordinate transformation API and the SearchServer location API.
package geoadmin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luftpraemie/luftpraemie/internal/geo"
)

const (
	// DefaultReframeBaseURL is the base URL of the REFRAME transformation service.
	DefaultReframeBaseURL = "https://geodesy.geo.admin.ch/reframe"

	// DefaultSearchBaseURL is the base URL of the SearchServer API.
	DefaultSearchBaseURL = "https://api3.geo.admin.ch/rest/services/api/SearchServer"

	// defaultTimeout bounds each request. Both services answer fast; anything
	// slower is treated as a failed lookup rather than waited out.
	defaultTimeout = 5 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the geo.admin.ch client.
type ClientConfig struct {
	// ReframeBaseURL overrides DefaultReframeBaseURL.
	ReframeBaseURL string

	// SearchBaseURL overrides DefaultSearchBaseURL.
	SearchBaseURL string

	// HTTPClient overrides the default client. Requests are deliberately
	// single-attempt: both services are queried once per call and failures
	// degrade to an error, so no retrying transport belongs here.
	HTTPClient HTTPDoer

	// Timeout for individual requests when HTTPClient is nil (default: 5s).
	Timeout time.Duration

	// Logger for failed lookups.
	Logger zerolog.Logger
}

// Client talks to the geo.admin.ch services. It implements geo.Service.
type Client struct {
	reframeBaseURL string
	searchBaseURL  string
	httpClient     HTTPDoer
	logger         zerolog.Logger
}

// NewClient creates a geo.admin.ch client.
func NewClient(cfg ClientConfig) *Client {
	reframeBaseURL := cfg.ReframeBaseURL
	if reframeBaseURL == "" {
		reframeBaseURL = DefaultReframeBaseURL
	}

	searchBaseURL := cfg.SearchBaseURL
	if searchBaseURL == "" {
		searchBaseURL = DefaultSearchBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		reframeBaseURL: strings.TrimSuffix(reframeBaseURL, "/"),
		searchBaseURL:  strings.TrimSuffix(searchBaseURL, "/"),
		httpClient:     httpClient,
		logger:         cfg.Logger,
	}
}

// reframeResponse is the REFRAME lv95towgs84 payload. The field names are
// artifacts of the upstream service: after conversion "easting" carries the
// WGS84 longitude and "northing" the latitude. They are mapped by position,
// never by trusting the names.
type reframeResponse struct {
	Easting  flexFloat `json:"easting"`
	Northing flexFloat `json:"northing"`
}

// ConvertLV95 converts an LV95 easting/northing pair to WGS84. The input is
// passed through unvalidated; the service owns the domain check. Exactly one
// request is issued, and every failure mode (transport error, non-2xx status,
// malformed payload) is logged with the offending input and returned as an
// error wrapping geo.ErrNoResult.
func (c *Client) ConvertLV95(ctx context.Context, easting, northing float64) (geo.Point, error) {
	q := url.Values{}
	q.Set("easting", strconv.FormatFloat(easting, 'f', -1, 64))
	q.Set("northing", strconv.FormatFloat(northing, 'f', -1, 64))
	q.Set("format", "json")

	var result reframeResponse
	if err := c.getJSON(ctx, c.reframeBaseURL+"/lv95towgs84?"+q.Encode(), &result); err != nil {
		c.logger.Warn().Err(err).
			Float64("easting", easting).
			Float64("northing", northing).
			Msg("lv95 to wgs84 conversion failed")
		return geo.Point{}, fmt.Errorf("convert lv95 (%v, %v): %w", easting, northing, geo.ErrNoResult)
	}

	if !result.Easting.set || !result.Northing.set {
		c.logger.Warn().
			Float64("easting", easting).
			Float64("northing", northing).
			Msg("conversion response missing coordinates")
		return geo.Point{}, fmt.Errorf("convert lv95 (%v, %v): %w", easting, northing, geo.ErrNoResult)
	}

	return geo.Point{Lat: result.Northing.value, Lon: result.Easting.value}, nil
}

// searchResponse is the SearchServer payload.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Attrs searchAttrs `json:"attrs"`
}

// searchAttrs carries the fields we use. featureId may be null, a number, or
// a string; lat/lon arrive as strings or numbers depending on the layer.
type searchAttrs struct {
	FeatureID json.RawMessage `json:"featureId"`
	Lat       flexFloat       `json:"lat"`
	Lon       flexFloat       `json:"lon"`
}

// SearchLocations queries the SearchServer for place-type results.
func (c *Client) SearchLocations(ctx context.Context, text string, limit int) ([]geo.PlaceCandidate, error) {
	q := url.Values{}
	q.Set("searchText", text)
	q.Set("type", "locations")
	q.Set("origins", "gg25")
	q.Set("limit", strconv.Itoa(limit))

	var result searchResponse
	if err := c.getJSON(ctx, c.searchBaseURL+"?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search locations %q: %w", text, err)
	}

	candidates := make([]geo.PlaceCandidate, 0, len(result.Results))
	for _, r := range result.Results {
		candidates = append(candidates, geo.PlaceCandidate{
			FeatureID: featureID(r.Attrs.FeatureID),
			Lat:       r.Attrs.Lat.value,
			Lon:       r.Attrs.Lon.value,
		})
	}
	return candidates, nil
}

// getJSON issues a single GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// featureID normalizes the raw featureId value: null and absent become the
// empty string, numbers and strings become their textual form.
func featureID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// flexFloat decodes a JSON value that may be a number or a numeric string.
type flexFloat struct {
	value float64
	set   bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("parse numeric value %q: %w", s, err)
	}
	f.value = v
	f.set = true
	return nil
}
