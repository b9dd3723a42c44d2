package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Registry holds one sensor and one calendar per category, all backed by
// the same cache.
type Registry struct {
	cache     *schedule.Cache
	sensors   map[schedule.Category]*Sensor
	calendars map[schedule.Category]*Calendar
}

// NewRegistry creates the entities for every category.
func NewRegistry(cache *schedule.Cache, offset time.Duration) *Registry {
	r := &Registry{
		cache:     cache,
		sensors:   make(map[schedule.Category]*Sensor),
		calendars: make(map[schedule.Category]*Calendar),
	}
	for _, c := range schedule.Categories {
		r.sensors[c] = NewSensor(c, cache, offset)
		r.calendars[c] = NewCalendar(c, cache)
	}
	return r
}

// Cache returns the shared schedule cache.
func (r *Registry) Cache() *schedule.Cache {
	return r.cache
}

// Sensor returns the sensor of category c.
func (r *Registry) Sensor(c schedule.Category) (*Sensor, error) {
	s, ok := r.sensors[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schedule.ErrUnknownCategory, c)
	}
	return s, nil
}

// Calendar returns the calendar of category c.
func (r *Registry) Calendar(c schedule.Category) (*Calendar, error) {
	cal, ok := r.calendars[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schedule.ErrUnknownCategory, c)
	}
	return cal, nil
}

// Sensors returns all sensors in category order.
func (r *Registry) Sensors() []*Sensor {
	out := make([]*Sensor, 0, len(schedule.Categories))
	for _, c := range schedule.Categories {
		out = append(out, r.sensors[c])
	}
	return out
}

// Entities returns every entity, sensors first.
func (r *Registry) Entities() []Entity {
	var out []Entity
	for _, c := range schedule.Categories {
		out = append(out, r.sensors[c])
	}
	for _, c := range schedule.Categories {
		out = append(out, r.calendars[c])
	}
	return out
}

// UpdateAll runs one host update cycle: a single throttled cache update,
// then every entity is recomputed. At most one request is issued, even when
// the fetch fails.
func (r *Registry) UpdateAll(ctx context.Context) {
	_ = r.cache.Update(ctx)
	r.RefreshAll()
}

// RefreshAll recomputes every entity from the cache without fetching.
func (r *Registry) RefreshAll() {
	for _, c := range schedule.Categories {
		r.sensors[c].Refresh()
		r.calendars[c].Refresh()
	}
}
