// Package recurrence materializes virtual occurrences of recurring events for
// a single (year, month) rendering context.
package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"gameplanAPI/internal/types/event"
)

// Expander evaluates recurrence rules against the days of one month. Rules
// are compiled once per event and reused across days, so a full month render
// costs one rule compilation per recurring event.
type Expander struct {
	year    int
	month   time.Month
	loc     *time.Location
	lastDay int
	rules   map[uuid.UUID]*rrule.RRule
}

func NewExpander(year int, month time.Month, loc *time.Location) *Expander {
	if loc == nil {
		loc = time.UTC
	}
	return &Expander{
		year:    year,
		month:   month,
		loc:     loc,
		lastDay: DaysIn(year, month),
		rules:   make(map[uuid.UUID]*rrule.RRule),
	}
}

// OccurrencesOn returns the events out of the candidate set that recur onto
// the given day of the expander's month. Events without a recurrence rule are
// ignored (direct hits are the renderer's job). The result carries no
// duplicates and the call has no side effects beyond the rule cache, so
// repeated calls with identical input return identical results.
//
// Day 0 (and anything else outside [1, last day of month]) is the grid's
// padding sentinel for cells belonging to adjacent months; it yields nothing.
func (x *Expander) OccurrencesOn(day int, events []*event.Event) []*event.Event {
	if day < 1 || day > x.lastDay {
		return nil
	}

	current := time.Date(x.year, x.month, day, 0, 0, 0, 0, x.loc)
	dayEnd := current.Add(24*time.Hour - time.Nanosecond)

	var matched []*event.Event
	seen := make(map[uuid.UUID]bool)

	for _, ev := range events {
		if ev.Recurrence == event.RecurrenceNone || !ev.Recurrence.Valid() {
			continue
		}
		if seen[ev.ID] {
			continue
		}

		startDate := dateOf(ev.StartTime, x.loc)
		if current.Before(startDate) {
			continue
		}
		// No explicit end means the series runs indefinitely: any queried
		// date at or after the start stays in range.
		if ev.RecurrenceEnd != nil && current.After(endDate(*ev.RecurrenceEnd, x.loc)) {
			continue
		}

		rule := x.ruleFor(ev, startDate)
		if rule == nil {
			continue
		}
		if len(rule.Between(current, dayEnd, true)) > 0 {
			matched = append(matched, ev)
			seen[ev.ID] = true
		}
	}

	return matched
}

// ruleFor compiles the event's rule, caching it for the expander's lifetime.
func (x *Expander) ruleFor(ev *event.Event, startDate time.Time) *rrule.RRule {
	if r, ok := x.rules[ev.ID]; ok {
		return r
	}

	var freq rrule.Frequency
	switch ev.Recurrence {
	case event.RecurrenceDaily:
		freq = rrule.DAILY
	case event.RecurrenceWeekly:
		freq = rrule.WEEKLY
	case event.RecurrenceMonthly:
		// Anchored on the start's day-of-month; RFC 5545 semantics drop the
		// occurrence entirely in months where that day does not exist.
		freq = rrule.MONTHLY
	default:
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: startDate,
	})
	if err != nil {
		return nil
	}
	x.rules[ev.ID] = r
	return r
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// endDate reads a stored recurrence-end as a plain calendar date. The column
// is a DATE, so the wall-clock fields are taken as-is instead of converting
// the instant between zones.
func endDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
