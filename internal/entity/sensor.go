// Package entity adapts the shared schedule cache to the sensor and calendar
// contracts of the host automation platform.
package entity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Sensor states and static properties
const (
	StateOn      = "on"
	StateOff     = "off"
	StateUnknown = "unknown"

	SensorIcon        = "mdi:delete"
	SensorDeviceClass = "ISO8601"

	// DefaultOffset is the lead time before a collection at which the
	// sensor switches on.
	DefaultOffset = 12 * time.Hour

	dateLayout = "2006-01-02"
)

// Entity is anything the host refreshes on its update cycle.
type Entity interface {
	EntityID() string
	Name() string
	Update(ctx context.Context)
}

// Sensor reports "on" while the next collection of its category is imminent.
type Sensor struct {
	category schedule.Category
	offset   time.Duration
	cache    *schedule.Cache

	mu          sync.RWMutex
	state       string
	nextDate    time.Time
	hasNext     bool
	lastUpdated time.Time
}

// NewSensor creates the sensor for one category. A negative offset is
// treated as zero.
func NewSensor(c schedule.Category, cache *schedule.Cache, offset time.Duration) *Sensor {
	if offset < 0 {
		offset = 0
	}
	return &Sensor{
		category: c,
		offset:   offset,
		cache:    cache,
		state:    StateUnknown,
	}
}

func (s *Sensor) EntityID() string            { return fmt.Sprintf("sensor.%s_waste", s.category) }
func (s *Sensor) Name() string                { return s.category.DisplayName() }
func (s *Sensor) Category() schedule.Category { return s.category }
func (s *Sensor) Icon() string                { return SensorIcon }
func (s *Sensor) DeviceClass() string         { return SensorDeviceClass }
func (s *Sensor) Offset() time.Duration       { return s.offset }

// State returns "on", "off", or "unknown" before the first update.
func (s *Sensor) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// NextDate returns the next collection date of the category.
func (s *Sensor) NextDate() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextDate, s.hasNext
}

// LastUpdated returns when the state was last computed.
func (s *Sensor) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Attributes returns the extra state attributes. next_date is omitted while
// no future collection is known.
func (s *Sensor) Attributes() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attrs := map[string]string{}
	if s.hasNext {
		attrs["next_date"] = s.nextDate.Format(dateLayout)
	}
	return attrs
}

// Update refreshes the shared schedule (throttled) and recomputes the state.
// Fetch failures are logged by the cache; the state is derived from whatever
// schedule is cached.
func (s *Sensor) Update(ctx context.Context) {
	_ = s.cache.Update(ctx)
	s.Refresh()
}

// Refresh recomputes the state from the cached schedule without fetching.
func (s *Sensor) Refresh() {
	now := s.cache.Now()
	next, ok := schedule.NextEvent(s.cache.Events(), s.category, now)

	state := StateOff
	if ok && schedule.Imminent(next.Date, now, s.offset) {
		state = StateOn
	}

	s.mu.Lock()
	s.state = state
	s.nextDate = next.Date
	s.hasNext = ok
	s.lastUpdated = now
	s.mu.Unlock()

	recordSensor(s.category, state == StateOn, next.Date, ok)
}
