package schedule

import "time"

// Category is one of the four waste streams AWB collects.
type Category string

const (
	Black  Category = "black"  // Restmüll
	Brown  Category = "brown"  // Biomüll
	Yellow Category = "yellow" // Kunststoffmüll / Gelber Sack
	Blue   Category = "blue"   // Papiermüll
)

// Categories lists all categories in display order.
var Categories = []Category{Black, Brown, Yellow, Blue}

// DisplayNames maps categories to their German display names
var DisplayNames = map[Category]string{
	Black:  "Restmüll",
	Brown:  "Biomüll",
	Yellow: "Kunststoffmüll",
	Blue:   "Papiermüll",
}

// DisplayName returns the German name used for entity names and calendar titles.
func (c Category) DisplayName() string {
	if name, ok := DisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := DisplayNames[c]
	return ok
}

// WasteEvent is a single collection date. A date may serve several
// categories at once.
type WasteEvent struct {
	ID   string
	Date time.Time // midnight in the schedule location
	// Collection flags
	Black  bool
	Brown  bool
	Yellow bool
	Blue   bool
}

// Has reports whether the event collects category c.
func (e WasteEvent) Has(c Category) bool {
	switch c {
	case Black:
		return e.Black
	case Brown:
		return e.Brown
	case Yellow:
		return e.Yellow
	case Blue:
		return e.Blue
	}
	return false
}

// Categories returns the categories collected on this date.
func (e WasteEvent) Categories() []Category {
	var out []Category
	for _, c := range Categories {
		if e.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// CalendarEvent is the all-day projection of a WasteEvent handed to calendar
// consumers.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}
