package services

import (
	"context"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"gameplanAPI/internal/recurrence"
	"gameplanAPI/internal/types/calendar"
	"gameplanAPI/internal/types/event"
	"gameplanAPI/internal/types/game"
)

// EventMonthSource is what the renderer needs from the event store.
type EventMonthSource interface {
	EventsForMonth(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) ([]*event.Event, error)
	AllEvents(ctx context.Context, ownerID uuid.UUID) ([]*event.Event, error)
}

// CalendarService renders month grids. It is a pure read path: nothing is
// cached and nothing is mutated, so it is safe for any number of concurrent
// callers.
type CalendarService struct {
	events EventMonthSource
	loc    *time.Location
}

func NewCalendarService(events EventMonthSource, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{events: events, loc: loc}
}

// GetMonth fetches the month's candidate events and renders the grid. Access
// must already have been granted by the caller; the grant only rides along
// for the presentation layer.
func (s *CalendarService) GetMonth(ctx context.Context, ownerID uuid.UUID, year int, month time.Month, grant Grant) (*calendar.MonthResponse, error) {
	events, err := s.events.EventsForMonth(ctx, ownerID, year, month)
	if err != nil {
		return nil, err
	}

	return &calendar.MonthResponse{
		Grid:      BuildMonthGrid(year, month, s.loc, events),
		OwnerID:   ownerID,
		Grant:     string(grant),
		PrevMonth: PrevMonth(year, month),
		NextMonth: NextMonth(year, month),
	}, nil
}

// BuildMonthGrid lays out a Monday-first month: leading and trailing cells of
// adjacent months are day-0 padding. Each real day merges direct hits (events
// starting that day) with virtual hits from the recurrence engine, dedupes by
// event identity and orders by priority high-first, start ascending, then id
// for a stable tiebreak.
func BuildMonthGrid(year int, month time.Month, loc *time.Location, events []*event.Event) *calendar.MonthGrid {
	if loc == nil {
		loc = time.UTC
	}
	exp := recurrence.NewExpander(year, month, loc)
	lastDay := recurrence.DaysIn(year, month)

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Monday-first offset: Monday -> 0 ... Sunday -> 6.
	offset := (int(firstOfMonth.Weekday()) + 6) % 7

	grid := &calendar.MonthGrid{Year: year, Month: int(month)}

	var week calendar.Week
	cell := 0
	push := func(d calendar.DayCell) {
		week[cell] = d
		cell++
		if cell == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = calendar.Week{}
			cell = 0
		}
	}

	for i := 0; i < offset; i++ {
		push(calendar.DayCell{Day: 0, Events: []calendar.EventView{}})
	}
	for day := 1; day <= lastDay; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		push(calendar.DayCell{Day: day, Date: &date, Events: dayEvents(date, day, events, exp)})
	}
	for cell != 0 {
		push(calendar.DayCell{Day: 0, Events: []calendar.EventView{}})
	}

	return grid
}

func dayEvents(date time.Time, day int, events []*event.Event, exp *recurrence.Expander) []calendar.EventView {
	merged := []*event.Event{}
	seen := map[uuid.UUID]bool{}

	for _, ev := range events {
		if sameDay(ev.StartTime, date) && !seen[ev.ID] {
			merged = append(merged, ev)
			seen[ev.ID] = true
		}
	}
	for _, ev := range exp.OccurrencesOn(day, events) {
		if !seen[ev.ID] {
			merged = append(merged, ev)
			seen[ev.ID] = true
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID.String() < b.ID.String()
	})

	views := make([]calendar.EventView, 0, len(merged))
	for _, ev := range merged {
		color := ev.GameColor
		if color == "" {
			color = game.DefaultColor
		}
		views = append(views, calendar.EventView{
			EventID:  ev.ID,
			Title:    ev.Title,
			Color:    color,
			Priority: ev.Priority,
			Start:    ev.StartTime,
			End:      ev.EndTime,
			URL:      "/api/v1/events/" + ev.ID.String(),
		})
	}
	return views
}

func sameDay(t, date time.Time) bool {
	t = t.In(date.Location())
	return t.Year() == date.Year() && t.Month() == date.Month() && t.Day() == date.Day()
}

// PrevMonth and NextMonth handle the year rollover at the 1/12 boundaries.
func PrevMonth(year int, month time.Month) calendar.YearMonth {
	if month == time.January {
		return calendar.YearMonth{Year: year - 1, Month: 12}
	}
	return calendar.YearMonth{Year: year, Month: int(month) - 1}
}

func NextMonth(year int, month time.Month) calendar.YearMonth {
	if month == time.December {
		return calendar.YearMonth{Year: year + 1, Month: 1}
	}
	return calendar.YearMonth{Year: year, Month: int(month) + 1}
}

// ExportICS serializes every event of the owner as an iCalendar feed.
func (s *CalendarService) ExportICS(ctx context.Context, ownerID uuid.UUID) (string, error) {
	events, err := s.events.AllEvents(ctx, ownerID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//gameplan//calendar//EN")

	for _, ev := range events {
		e := cal.AddEvent(ev.ID.String())
		e.SetCreatedTime(ev.CreatedAt)
		e.SetDtStampTime(ev.CreatedAt)
		e.SetStartAt(ev.StartTime)
		e.SetEndAt(ev.EndTime)
		e.SetSummary(ev.Title)
		if ev.Description != "" {
			e.SetDescription(ev.Description)
		}
	}

	return cal.Serialize(), nil
}

// GameGroup is one section of the today list: a game (nil for ungrouped
// events) and its events, ordered as fetched.
type GameGroup struct {
	GameName string         `json:"game_name"`
	Color    string         `json:"color"`
	Events   []*event.Event `json:"events"`

	earliestStart   time.Time
	highestPriority int
}

// GroupTodayEvents folds a day's events (already ordered by game name, start,
// priority) into per-game groups, then orders the groups by earliest start
// and, on ties, highest priority first.
func GroupTodayEvents(events []*event.Event) []*GameGroup {
	byName := map[string]*GameGroup{}
	var order []string

	for _, ev := range events {
		name := ev.GameName
		if name == "" {
			name = "No Game"
		}
		color := game.DefaultColor
		if ev.GameColor != "" {
			color = ev.GameColor
		}
		g, ok := byName[name]
		if !ok {
			g = &GameGroup{
				GameName:        name,
				Color:           color,
				earliestStart:   ev.StartTime,
				highestPriority: ev.Priority,
			}
			byName[name] = g
			order = append(order, name)
		}
		g.Events = append(g.Events, ev)
		if ev.StartTime.Before(g.earliestStart) {
			g.earliestStart = ev.StartTime
		}
		if ev.Priority > g.highestPriority {
			g.highestPriority = ev.Priority
		}
	}

	groups := make([]*GameGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, byName[name])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].earliestStart.Equal(groups[j].earliestStart) {
			return groups[i].earliestStart.Before(groups[j].earliestStart)
		}
		return groups[i].highestPriority > groups[j].highestPriority
	})
	return groups
}
