package geo

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// searchLimit is the number of candidates requested per municipality lookup.
const searchLimit = 5

// Locator resolves a municipality name to WGS84 coordinates via the location
// search service. Every call issues a fresh request; batch callers should wrap
// it in a CachedLocator since municipality names are finite and stable.
type Locator struct {
	svc    Service
	logger zerolog.Logger
}

// NewLocator creates a Locator backed by the given service.
func NewLocator(svc Service, logger zerolog.Logger) *Locator {
	return &Locator{svc: svc, logger: logger}
}

// ResolveMunicipality returns the coordinates of the first candidate that
// carries an authoritative feature identifier, scanning candidates in the
// order the service returned them. Lookup failures of any kind degrade to
// ErrNoResult; this method never panics.
func (l *Locator) ResolveMunicipality(ctx context.Context, name string) (Point, error) {
	candidates, err := l.svc.SearchLocations(ctx, name, searchLimit)
	if err != nil {
		l.logger.Warn().Err(err).Str("municipality", name).Msg("municipality lookup failed")
		return Point{}, fmt.Errorf("resolve %q: %w", name, ErrNoResult)
	}

	for _, c := range candidates {
		if c.FeatureID == "" {
			continue
		}
		return Point{Lat: c.Lat, Lon: c.Lon}, nil
	}

	l.logger.Warn().Str("municipality", name).Int("candidates", len(candidates)).
		Msg("no authoritative match for municipality")
	return Point{}, fmt.Errorf("resolve %q: %w", name, ErrNoResult)
}

// CachedLocator memoizes ResolveMunicipality results by name, including
// negative results. Safe for concurrent use.
type CachedLocator struct {
	inner *Locator

	mu     sync.RWMutex
	hits   map[string]Point
	misses map[string]struct{}
}

// NewCachedLocator wraps a Locator with a name-keyed cache.
func NewCachedLocator(inner *Locator) *CachedLocator {
	return &CachedLocator{
		inner:  inner,
		hits:   make(map[string]Point),
		misses: make(map[string]struct{}),
	}
}

// ResolveMunicipality returns the cached coordinate when present, otherwise
// delegates to the wrapped Locator and records the outcome.
func (c *CachedLocator) ResolveMunicipality(ctx context.Context, name string) (Point, error) {
	c.mu.RLock()
	if p, ok := c.hits[name]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	if _, ok := c.misses[name]; ok {
		c.mu.RUnlock()
		return Point{}, fmt.Errorf("resolve %q: %w", name, ErrNoResult)
	}
	c.mu.RUnlock()

	p, err := c.inner.ResolveMunicipality(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.misses[name] = struct{}{}
		return Point{}, err
	}
	c.hits[name] = p
	return p, nil
}
