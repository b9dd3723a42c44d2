package app

import (
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/entity"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Entry is a single collection of one category on one date. Exports work on
// entries, so a date serving two categories yields two entries.
type Entry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Entries flattens events into per-category entries, keeping date order.
func Entries(events []schedule.WasteEvent, categories []schedule.Category) []Entry {
	var out []Entry
	for _, e := range events {
		for _, c := range categories {
			if !e.Has(c) {
				continue
			}
			out = append(out, Entry{
				ID:          e.ID,
				Date:        e.Date.Format(dateLayout),
				Type:        string(c),
				Description: c.DisplayName(),
			})
		}
	}
	return out
}

// SensorState is a sensor entity in Home Assistant REST shape.
type SensorState struct {
	EntityID    string           `json:"entity_id"`
	State       string           `json:"state"`
	Attributes  SensorAttributes `json:"attributes"`
	LastUpdated string           `json:"last_updated,omitempty"`
}

type SensorAttributes struct {
	FriendlyName string `json:"friendly_name"`
	Icon         string `json:"icon"`
	DeviceClass  string `json:"device_class"`
	NextDate     string `json:"next_date,omitempty"`
	Offset       string `json:"offset"`
}

// NewSensorState snapshots a sensor.
func NewSensorState(s *entity.Sensor) SensorState {
	state := SensorState{
		EntityID: s.EntityID(),
		State:    s.State(),
		Attributes: SensorAttributes{
			FriendlyName: s.Name(),
			Icon:         s.Icon(),
			DeviceClass:  s.DeviceClass(),
			NextDate:     s.Attributes()["next_date"],
			Offset:       s.Offset().String(),
		},
	}
	if updated := s.LastUpdated(); !updated.IsZero() {
		state.LastUpdated = updated.Format(time.RFC3339)
	}
	return state
}

// HassDate is an all-day date as calendar consumers expect it.
type HassDate struct {
	Date string `json:"date"`
}

// CalendarEventResponse is one calendar entry.
type CalendarEventResponse struct {
	UID         string   `json:"uid"`
	Summary     string   `json:"summary"`
	Start       HassDate `json:"start"`
	End         HassDate `json:"end"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
}

// NewCalendarEventResponse converts a projected calendar event.
func NewCalendarEventResponse(ev schedule.CalendarEvent) CalendarEventResponse {
	return CalendarEventResponse{
		UID:         ev.UID,
		Summary:     ev.Title,
		Start:       HassDate{Date: ev.Start.Format(dateLayout)},
		End:         HassDate{Date: ev.End.Format(dateLayout)},
		Location:    ev.Location,
		Description: ev.Description,
	}
}

// ScheduleEvent is one cached collection date.
type ScheduleEvent struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"`
	Categories []string `json:"categories"`
}

// ScheduleResponse describes the whole cache.
type ScheduleResponse struct {
	City      string          `json:"city"`
	Street    string          `json:"street"`
	LastFetch string          `json:"last_fetch,omitempty"`
	Events    []ScheduleEvent `json:"events"`
}

// NewScheduleResponse snapshots the cache.
func NewScheduleResponse(cache *schedule.Cache) ScheduleResponse {
	resp := ScheduleResponse{
		City:   cache.City(),
		Street: cache.Street(),
		Events: []ScheduleEvent{},
	}
	if last := cache.LastFetch(); !last.IsZero() {
		resp.LastFetch = last.Format(time.RFC3339)
	}
	for _, e := range cache.Events() {
		item := ScheduleEvent{ID: e.ID, Date: e.Date.Format(dateLayout), Categories: []string{}}
		for _, c := range e.Categories() {
			item.Categories = append(item.Categories, string(c))
		}
		resp.Events = append(resp.Events, item)
	}
	return resp
}
