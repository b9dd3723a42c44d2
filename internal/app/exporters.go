package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	ics "github.com/arran4/golang-ical"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Reminder is one VALARM request: alert at Time (HH:MM) DaysBefore the pickup.
type Reminder struct {
	DaysBefore int
	Time       string
}

// ParseReminders reads the reminder2Days/reminder1Day/reminderSameDay flags
// and their time2Days/time1Day/timeSameDay companions from a query.
func ParseReminders(q url.Values) []Reminder {
	var reminders []Reminder
	for _, opt := range []struct {
		flag, time string
		days       int
	}{
		{"reminder2Days", "time2Days", 2},
		{"reminder1Day", "time1Day", 1},
		{"reminderSameDay", "timeSameDay", 0},
	} {
		if q.Get(opt.flag) == "true" && q.Get(opt.time) != "" {
			reminders = append(reminders, Reminder{DaysBefore: opt.days, Time: q.Get(opt.time)})
		}
	}
	return reminders
}

// FormatTrigger returns the ISO 8601 duration between the start of an all-day
// event and the reminder time. ok is false when alarmTime is not HH:MM.
func FormatTrigger(eventDate time.Time, daysBefore int, alarmTime string) (trigger string, ok bool) {
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return "", false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	// Computed in UTC so DST transitions do not skew the offset.
	alarmDate := eventDate.AddDate(0, 0, -daysBefore)
	alarmAt := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)

	totalMinutes := int(alarmAt.Sub(eventStart).Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	days := totalMinutes / (24 * 60)
	rest := totalMinutes % (24 * 60)
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, rest/60, rest%60), true
}

func newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ICSProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(ICSTimezone)
	return cal
}

// entryUID must stay stable across fetches so subscribed calendars update in place.
func entryUID(e Entry) string {
	return fmt.Sprintf("%s-%s-%s@%s", e.Date, e.Type, e.ID, ICSUIDDomain)
}

// addEntry appends an all-day VEVENT. Entries with unparsable dates are skipped.
func addEntry(cal *ics.Calendar, e Entry, location string, stamp time.Time) (*ics.VEvent, bool) {
	date, err := time.Parse(dateLayout, e.Date)
	if err != nil {
		return nil, false
	}
	event := cal.AddEvent(entryUID(e))
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(date)
	event.SetAllDayEndAt(date.AddDate(0, 0, 1))
	event.SetSummary(e.Description)
	event.SetDescription(fmt.Sprintf("Abfuhr %s in %s", e.Description, location))
	event.SetLocation(location)
	return event, true
}

// GenerateICS writes an ICS attachment with optional reminders taken from the query.
func GenerateICS(w http.ResponseWriter, r *http.Request, location string, entries []Entry) error {
	reminders := ParseReminders(r.URL.Query())
	cal := newCalendar("Abfallkalender " + location)
	stamp := time.Now()

	for _, e := range entries {
		event, ok := addEntry(cal, e, location, stamp)
		if !ok {
			continue
		}
		date, _ := time.Parse(dateLayout, e.Date)
		for _, rem := range reminders {
			trigger, ok := FormatTrigger(date, rem.DaysBefore, rem.Time)
			if !ok {
				continue
			}
			alarm := event.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(trigger)
			alarm.SetProperty(ics.ComponentPropertyDescription, "Erinnerung: "+e.Description)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", exportName(location)))
	return cal.SerializeTo(w)
}

// GenerateSubscriptionICS writes an inline subscription feed. It carries
// METHOD:PUBLISH and a refresh hint but no VALARM blocks.
func GenerateSubscriptionICS(w http.ResponseWriter, location string, entries []Entry) error {
	cal := newCalendar("Abfallkalender " + location)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXPublishedTTL(ICSTTL)
	stamp := time.Now()

	for _, e := range entries {
		addEntry(cal, e, location, stamp)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	return cal.SerializeTo(w)
}

// GenerateCSV writes entries as a CSV attachment.
func GenerateCSV(w http.ResponseWriter, location string, entries []Entry) error {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", exportName(location)))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Datum", "Abfalltyp", "Beschreibung"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date, e.Type, e.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateJSON writes entries as a JSON attachment.
func GenerateJSON(w http.ResponseWriter, city, street string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data := map[string]interface{}{
		"city":   city,
		"street": street,
		"events": entries,
	}
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", exportName(city+" "+street)))
	_, err = w.Write(body)
	return err
}

// germanDigraphs spells umlauts the German way before accents are stripped.
var germanDigraphs = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// asciiFold strips the remaining diacritics (é -> e).
func asciiFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return res
}

// exportName turns a location into a filename stem such as
// abfallkalender_bad_kreuznach_salinenstrasse.
func exportName(location string) string {
	var b strings.Builder
	b.WriteString("abfallkalender_")
	underscore := false
	for _, r := range asciiFold(germanDigraphs.Replace(strings.ToLower(location))) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
