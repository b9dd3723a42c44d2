package schedule

import (
	"testing"
	"time"
)

var berlin = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, berlin)
}

func TestNextEvent(t *testing.T) {
	events := []WasteEvent{
		{ID: "1", Date: day(2024, 3, 5), Black: true},
		{ID: "2", Date: day(2024, 3, 8), Blue: true},
		{ID: "3", Date: day(2024, 3, 12), Black: true, Brown: true},
		{ID: "4", Date: day(2024, 3, 19), Black: true},
	}

	tests := []struct {
		name     string
		category Category
		now      time.Time
		wantID   string
		wantOK   bool
	}{
		{"skips past black event", Black, time.Date(2024, 3, 6, 9, 0, 0, 0, berlin), "3", true},
		{"today counts as future", Black, time.Date(2024, 3, 5, 23, 59, 0, 0, berlin), "1", true},
		{"shared date serves brown", Brown, day(2024, 3, 1), "3", true},
		{"blue", Blue, day(2024, 3, 1), "2", true},
		{"nothing left for blue", Blue, day(2024, 3, 9), "", false},
		{"no yellow at all", Yellow, day(2024, 1, 1), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextEvent(events, tt.category, tt.now)
			if ok != tt.wantOK {
				t.Fatalf("NextEvent() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.ID != tt.wantID {
				t.Errorf("NextEvent() ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestNextEventIsMinimumFutureDate(t *testing.T) {
	events := []WasteEvent{
		{ID: "a", Date: day(2024, 1, 2), Yellow: true},
		{ID: "b", Date: day(2024, 1, 9), Brown: true},
		{ID: "c", Date: day(2024, 1, 16), Yellow: true},
		{ID: "d", Date: day(2024, 1, 23), Yellow: true, Blue: true},
		{ID: "e", Date: day(2024, 1, 30), Blue: true},
	}
	now := day(2024, 1, 10)

	for _, c := range Categories {
		got, ok := NextEvent(events, c, now)

		var want *WasteEvent
		for i := range events {
			e := events[i]
			if e.Has(c) && !e.Date.Before(now) && (want == nil || e.Date.Before(want.Date)) {
				want = &events[i]
			}
		}

		if want == nil {
			if ok {
				t.Errorf("%s: expected no event, got %q", c, got.ID)
			}
			continue
		}
		if !ok || got.ID != want.ID {
			t.Errorf("%s: NextEvent() = %q (ok=%v), want %q", c, got.ID, ok, want.ID)
		}
	}
}

func TestImminentBoundaries(t *testing.T) {
	date := day(2024, 3, 12)
	offset := 12 * time.Hour
	lower := date.Add(-offset)
	upper := date.AddDate(0, 0, 1)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before", date.AddDate(0, 0, -2), false},
		{"just before lower bound", lower.Add(-time.Nanosecond), false},
		{"exactly lower bound", lower, true},
		{"collection day morning", date.Add(7 * time.Hour), true},
		{"exactly upper bound", upper, true},
		{"just after upper bound", upper.Add(time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Imminent(date, tt.now, offset); got != tt.want {
				t.Errorf("Imminent(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestImminentAcrossDSTChange(t *testing.T) {
	// Clocks go forward in Berlin on 2024-03-31; the day is 23h long.
	date := day(2024, 3, 31)
	end := day(2024, 4, 1)

	if !Imminent(date, end, 0) {
		t.Error("midnight after the collection day should still be imminent")
	}
	if Imminent(date, end.Add(time.Second), 0) {
		t.Error("one second past the next midnight should not be imminent")
	}
}

func TestEventsBetween(t *testing.T) {
	events := []WasteEvent{
		{ID: "1", Date: day(2024, 3, 1), Black: true},
		{ID: "2", Date: day(2024, 3, 5), Black: true},
		{ID: "3", Date: day(2024, 3, 8), Blue: true},
		{ID: "4", Date: day(2024, 3, 12), Black: true},
		{ID: "5", Date: day(2024, 3, 20), Black: true},
	}

	got := EventsBetween(events, Black, day(2024, 3, 5), day(2024, 3, 12), "Restmüll")
	if len(got) != 2 {
		t.Fatalf("EventsBetween() returned %d events, want 2", len(got))
	}
	if got[0].UID != "2" || got[1].UID != "4" {
		t.Errorf("unexpected UIDs %q, %q", got[0].UID, got[1].UID)
	}

	for _, ev := range got {
		if ev.Title != "Restmüll" {
			t.Errorf("Title = %q, want Restmüll", ev.Title)
		}
		if !ev.End.Equal(ev.Start.AddDate(0, 0, 1)) {
			t.Errorf("End = %v, want Start + 1 day", ev.End)
		}
		if ev.Location != "" || ev.Description != "" {
			t.Error("Location and Description should be empty")
		}
	}
}

func TestEventsBetweenEmptyWindow(t *testing.T) {
	events := []WasteEvent{{ID: "1", Date: day(2024, 3, 1), Black: true}}

	got := EventsBetween(events, Black, day(2024, 4, 1), day(2024, 4, 30), "Restmüll")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestSortEventsByDateIsStable(t *testing.T) {
	events := []WasteEvent{
		{ID: "late", Date: day(2024, 5, 1)},
		{ID: "first", Date: day(2024, 4, 1)},
		{ID: "second", Date: day(2024, 4, 1)},
	}
	SortEventsByDate(events)

	want := []string{"first", "second", "late"}
	for i, id := range want {
		if events[i].ID != id {
			t.Errorf("events[%d] = %q, want %q", i, events[i].ID, id)
		}
	}
}

func TestFilter(t *testing.T) {
	events := []WasteEvent{
		{ID: "1", Black: true},
		{ID: "2", Blue: true},
		{ID: "3", Brown: true, Blue: true},
	}

	got := Filter(events, []Category{Blue})
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("Filter() = %+v", got)
	}
}
