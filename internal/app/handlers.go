package app

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klabast/wb-services/awb-kalender/internal/entity"
	"github.com/klabast/wb-services/awb-kalender/internal/logger"
	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

// Handler serves the entity registry over HTTP. Reads never trigger a fetch;
// the poller keeps the cache current.
type Handler struct {
	registry *entity.Registry
	log      logger.Logger
}

func NewHandler(registry *entity.Registry, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Handler{registry: registry, log: log}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

// ListSensors returns all four sensor entities.
func (h *Handler) ListSensors(c *gin.Context) {
	sensors := h.registry.Sensors()
	states := make([]SensorState, 0, len(sensors))
	for _, s := range sensors {
		states = append(states, NewSensorState(s))
	}
	respondOK(c, states)
}

// GetSensor returns one sensor entity.
// URL: /api/sensors/:category
func (h *Handler) GetSensor(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}
	sensor, err := h.registry.Sensor(category)
	if err != nil {
		respondError(c, http.StatusNotFound, ErrUnknownCategory)
		return
	}
	respondOK(c, NewSensorState(sensor))
}

// GetNextEvent returns the next calendar event of a category, or null.
// URL: /api/calendars/:category
func (h *Handler) GetNextEvent(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}
	cal, err := h.registry.Calendar(category)
	if err != nil {
		respondError(c, http.StatusNotFound, ErrUnknownCategory)
		return
	}
	ev, found := cal.Event()
	if !found {
		respondOK(c, nil)
		return
	}
	respondOK(c, NewCalendarEventResponse(ev))
}

// GetEvents returns the calendar events of a category inside [start, end].
// URL: /api/calendars/:category/events?start=2024-03-01&end=2024-03-31
func (h *Handler) GetEvents(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}
	cal, err := h.registry.Calendar(category)
	if err != nil {
		respondError(c, http.StatusNotFound, ErrUnknownCategory)
		return
	}

	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr == "" || endStr == "" {
		respondError(c, http.StatusBadRequest, ErrMissingWindow)
		return
	}
	loc := h.registry.Cache().Location()
	start, err := parseDateParam(startStr, loc)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrInvalidDateFormat)
		return
	}
	end, err := parseDateParam(endStr, loc)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrInvalidDateFormat)
		return
	}
	if end.Before(start) {
		respondError(c, http.StatusBadRequest, ErrInvalidWindow)
		return
	}

	events := cal.Events(start, end)
	out := make([]CalendarEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, NewCalendarEventResponse(ev))
	}
	respondOK(c, out)
}

// GetSchedule returns the whole cached schedule.
func (h *Handler) GetSchedule(c *gin.Context) {
	respondOK(c, NewScheduleResponse(h.registry.Cache()))
}

// Download exports the cached schedule.
// Query: format=ics|csv|json, categories=black,blue (optional), year (optional)
func (h *Handler) Download(c *gin.Context) {
	categories, err := schedule.ParseCategories(c.Query("categories"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrUnknownCategory)
		return
	}

	cache := h.registry.Cache()
	entries := Entries(cache.Events(), categories)

	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, ErrInvalidYear)
			return
		}
		entries = filterEntries(entries, func(e Entry) bool {
			return strings.HasPrefix(e.Date, strconv.Itoa(year)+"-")
		})
	}

	switch c.Query("format") {
	case "ics":
		err = GenerateICS(c.Writer, c.Request, address(cache), entries)
	case "csv":
		err = GenerateCSV(c.Writer, address(cache), entries)
	case "json":
		err = GenerateJSON(c.Writer, cache.City(), cache.Street(), entries)
	default:
		respondError(c, http.StatusBadRequest, ErrInvalidFormat)
		return
	}
	if err != nil {
		h.log.Error("Error writing %s export: %v", c.Query("format"), err)
	}
}

// Subscribe serves an ICS feed for calendar subscriptions. Events from the
// previous year onwards are included.
// URL: /api/subscribe/:category ("all" for every category)
func (h *Handler) Subscribe(c *gin.Context) {
	categories := schedule.Categories
	if raw := c.Param("category"); raw != subscribeAll {
		category, err := schedule.ParseCategory(raw)
		if err != nil {
			respondError(c, http.StatusNotFound, ErrUnknownCategory)
			return
		}
		categories = []schedule.Category{category}
	}

	cache := h.registry.Cache()
	minYear := cache.Now().Year() - 1
	entries := filterEntries(Entries(cache.Events(), categories), func(e Entry) bool {
		year, err := strconv.Atoi(e.Date[:4])
		return err == nil && year >= minYear
	})

	if err := GenerateSubscriptionICS(c.Writer, address(cache), entries); err != nil {
		h.log.Error("Error writing subscription feed: %v", err)
	}
}

// Refresh fetches the schedule bypassing the throttle and recomputes every entity.
func (h *Handler) Refresh(c *gin.Context) {
	cache := h.registry.Cache()
	if err := cache.ForceUpdate(c.Request.Context()); err != nil {
		h.log.Error("Manual refresh failed: %v", err)
		respondError(c, http.StatusBadGateway, ErrRefreshFailed)
		return
	}
	h.registry.RefreshAll()

	respondOK(c, gin.H{
		"events":     len(cache.Events()),
		"last_fetch": cache.LastFetch().Format(time.RFC3339),
	})
}

// category resolves the :category path parameter, answering 404 itself when
// the name is unknown.
func (h *Handler) category(c *gin.Context) (schedule.Category, bool) {
	category, err := schedule.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, http.StatusNotFound, ErrUnknownCategory)
		return "", false
	}
	return category, true
}

func filterEntries(entries []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
