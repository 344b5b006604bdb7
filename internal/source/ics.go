package source

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/calgrid/internal/item"
)

// decodeICS maps each VEVENT to an item with id, title, start, end, and
// rrule/exdate when present. Events without a usable DTSTART are skipped.
func decodeICS(r io.Reader) ([]item.Item, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("decoding ics: %w", err)
	}

	var out []item.Item
	for _, ve := range cal.Events() {
		it, ok := eventItem(ve)
		if !ok {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func eventItem(ve *ical.VEvent) (item.Item, bool) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return nil, false
	}

	it := item.Item{}
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		it["id"] = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		it["title"] = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil && p.Value != "" {
		it["location"] = p.Value
	}

	if allDay(dtStart) {
		start, err := time.ParseInLocation("20060102", dtStart.Value, time.Local)
		if err != nil {
			return nil, false
		}
		// DTEND of an all-day event is exclusive; items end on their last day.
		end := start
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			if e, err := time.ParseInLocation("20060102", p.Value, time.Local); err == nil && e.After(start) {
				end = e.AddDate(0, 0, -1)
			}
		}
		it["start"] = start.Format(time.DateOnly)
		it["end"] = end.Format(time.DateOnly)
		it[item.AllDayField] = true
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return nil, false
		}
		it["start"] = start.Format(time.RFC3339)
		if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
			it["end"] = end.Format(time.RFC3339)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		it["rrule"] = p.Value
	}
	var exdates []string
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part)); err == nil {
				exdates = append(exdates, t.Format(time.RFC3339))
			}
		}
	}
	if len(exdates) > 0 {
		it["exdate"] = strings.Join(exdates, ",")
	}
	return it, true
}

func allDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime handles the basic DATE and DATE-TIME forms used by EXDATE.
func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
