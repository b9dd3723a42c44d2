package schedule

import (
	"sort"
	"time"
)

// SortEventsByDate sorts events by date in ascending order. Events on the
// same date keep their relative order.
func SortEventsByDate(events []WasteEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextEvent returns the first event on or after today that collects c.
// events must be sorted by date.
func NextEvent(events []WasteEvent, c Category, now time.Time) (WasteEvent, bool) {
	today := StartOfDay(now)
	for _, e := range events {
		if e.Has(c) && !e.Date.Before(today) {
			return e, true
		}
	}
	return WasteEvent{}, false
}

// Imminent reports whether now lies within [date-offset, date+1 day].
func Imminent(date, now time.Time, offset time.Duration) bool {
	return !now.Before(date.Add(-offset)) && !now.After(date.AddDate(0, 0, 1))
}

// Project turns an event into an all-day calendar entry.
func Project(e WasteEvent, title string) CalendarEvent {
	return CalendarEvent{
		UID:   e.ID,
		Title: title,
		Start: e.Date,
		End:   e.Date.AddDate(0, 0, 1),
	}
}

// EventsBetween returns the calendar entries of category c whose date lies
// within [start, end].
func EventsBetween(events []WasteEvent, c Category, start, end time.Time, title string) []CalendarEvent {
	out := []CalendarEvent{}
	for _, e := range events {
		if !e.Has(c) {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, Project(e, title))
	}
	return out
}

// Filter returns the events collecting at least one of the given categories.
func Filter(events []WasteEvent, categories []Category) []WasteEvent {
	var out []WasteEvent
	for _, e := range events {
		for _, c := range categories {
			if e.Has(c) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
