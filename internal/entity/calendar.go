package entity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Calendar exposes the collection dates of one category as all-day events.
type Calendar struct {
	category schedule.Category
	cache    *schedule.Cache

	mu    sync.RWMutex
	event *schedule.CalendarEvent
}

// NewCalendar creates the calendar for one category.
func NewCalendar(c schedule.Category, cache *schedule.Cache) *Calendar {
	return &Calendar{category: c, cache: cache}
}

func (c *Calendar) EntityID() string            { return fmt.Sprintf("calendar.%s_waste", c.category) }
func (c *Calendar) Name() string                { return c.category.DisplayName() }
func (c *Calendar) Category() schedule.Category { return c.category }

// Event returns the next upcoming collection.
func (c *Calendar) Event() (schedule.CalendarEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.event == nil {
		return schedule.CalendarEvent{}, false
	}
	return *c.event, true
}

// Events returns all collections within [start, end].
func (c *Calendar) Events(start, end time.Time) []schedule.CalendarEvent {
	return schedule.EventsBetween(c.cache.Events(), c.category, start, end, c.Name())
}

// Update refreshes the shared schedule (throttled) and the next event.
func (c *Calendar) Update(ctx context.Context) {
	_ = c.cache.Update(ctx)
	c.Refresh()
}

// Refresh recomputes the next event from the cached schedule.
func (c *Calendar) Refresh() {
	var event *schedule.CalendarEvent
	if next, ok := schedule.NextEvent(c.cache.Events(), c.category, c.cache.Now()); ok {
		projected := schedule.Project(next, c.Name())
		event = &projected
	}

	c.mu.Lock()
	c.event = event
	c.mu.Unlock()
}
