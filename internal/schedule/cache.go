package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/logger"
)

// DefaultThrottle is the minimum interval between two successful fetches.
const DefaultThrottle = 24 * time.Hour

// Cache owns the current schedule for one address. It is the only writer of
// the event list; sensors and calendars read from it.
type Cache struct {
	fetcher  Fetcher
	city     string
	street   string
	throttle time.Duration
	location *time.Location
	now      func() time.Time
	log      logger.Logger

	// fetchMu serializes fetches so readers never wait on the network
	fetchMu sync.Mutex

	mu        sync.RWMutex
	events    []WasteEvent
	lastFetch time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithThrottle overrides DefaultThrottle.
func WithThrottle(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.throttle = d
		}
	}
}

// WithLocation sets the schedule time zone used for "today".
func WithLocation(loc *time.Location) CacheOption {
	return func(c *Cache) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCache creates an empty cache for the given address.
func NewCache(f Fetcher, city, street string, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher:  f,
		city:     city,
		street:   street,
		throttle: DefaultThrottle,
		location: time.Local,
		now:      time.Now,
		log:      logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update fetches the schedule unless the last successful fetch is younger
// than the throttle interval. On failure the previous events are kept and
// the error is returned after being logged.
func (c *Cache) Update(ctx context.Context) error {
	return c.update(ctx, false)
}

// ForceUpdate fetches regardless of the throttle.
func (c *Cache) ForceUpdate(ctx context.Context) error {
	return c.update(ctx, true)
}

func (c *Cache) update(ctx context.Context, force bool) error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	now := c.now()
	if !force && c.throttled(now) {
		return nil
	}

	started := time.Now()
	events, err := c.fetcher.Fetch(ctx, c.city, c.street)
	fetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		c.log.Error("Failed to fetch schedule for %s, %s (keeping %d cached events): %v",
			c.city, c.street, len(c.Events()), err)
		return err
	}

	// The list handed to readers is never mutated again.
	events = append([]WasteEvent(nil), events...)
	SortEventsByDate(events)

	c.mu.Lock()
	c.events = events
	c.lastFetch = now
	c.mu.Unlock()

	fetchesTotal.WithLabelValues("success").Inc()
	eventsCached.Set(float64(len(events)))
	lastFetchTimestamp.Set(float64(now.Unix()))
	c.log.Info("Schedule refreshed for %s, %s: %d events", c.city, c.street, len(events))
	return nil
}

func (c *Cache) throttled(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.lastFetch.IsZero() && now.Sub(c.lastFetch) < c.throttle
}

// Events returns the cached events sorted by date. The slice is shared and
// must not be modified.
func (c *Cache) Events() []WasteEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events
}

// LastFetch returns the time of the last successful fetch (zero if none).
func (c *Cache) LastFetch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch
}

// Now returns the current time in the schedule location.
func (c *Cache) Now() time.Time {
	return c.now().In(c.location)
}

// Location returns the schedule time zone.
func (c *Cache) Location() *time.Location {
	return c.location
}

// City returns the city sent as form field ort.
func (c *Cache) City() string { return c.city }

// Street returns the street sent as form field strasse.
func (c *Cache) Street() string { return c.street }
