package app

import (
	"strings"
	"time"

	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// parseDateParam parses a query date as YYYY-MM-DD in loc, falling back to
// RFC 3339 timestamps.
func parseDateParam(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// address renders city and street for calendar names and locations.
func address(cache *schedule.Cache) string {
	return cache.City() + ", " + cache.Street()
}
