package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameplanAPI/internal/types/calendar"
	"gameplanAPI/internal/types/event"
)

func testEvent(title string, start time.Time, priority int) *event.Event {
	return &event.Event{
		ID:         uuid.New(),
		Title:      title,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Priority:   priority,
		Recurrence: event.RecurrenceNone,
	}
}

func findCell(t *testing.T, grid *calendar.MonthGrid, day int) calendar.DayCell {
	t.Helper()
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if cell.Day == day {
				return cell
			}
		}
	}
	t.Fatalf("day %d not found in grid", day)
	return calendar.DayCell{}
}

func TestBuildMonthGridShape(t *testing.T) {
	// July 2025 starts on a Tuesday: one leading pad, 31 days, 3 trailing pads.
	grid := BuildMonthGrid(2025, time.July, time.UTC, nil)

	require.Len(t, grid.Weeks, 5)
	assert.Equal(t, 0, grid.Weeks[0][0].Day, "Monday slot before the 1st is padding")
	assert.Equal(t, 1, grid.Weeks[0][1].Day, "the 1st lands on Tuesday")
	assert.Equal(t, 31, grid.Weeks[4][3].Day)
	assert.Equal(t, 0, grid.Weeks[4][4].Day)
	assert.Equal(t, 0, grid.Weeks[4][6].Day)
}

func TestBuildMonthGridMondayFirst(t *testing.T) {
	// September 2025 starts on a Monday: no leading padding at all.
	grid := BuildMonthGrid(2025, time.September, time.UTC, nil)

	require.Len(t, grid.Weeks, 5)
	assert.Equal(t, 1, grid.Weeks[0][0].Day)
	assert.Equal(t, 30, grid.Weeks[4][1].Day)
	assert.Equal(t, 0, grid.Weeks[4][2].Day)
}

func TestBuildMonthGridPaddingCellsAreEmpty(t *testing.T) {
	ev := testEvent("raid", time.Date(2025, time.July, 1, 18, 0, 0, 0, time.UTC), event.PriorityHigh)
	grid := BuildMonthGrid(2025, time.July, time.UTC, []*event.Event{ev})

	pad := grid.Weeks[0][0]
	assert.Equal(t, 0, pad.Day)
	assert.Nil(t, pad.Date)
	assert.Empty(t, pad.Events)
}

func TestBuildMonthGridDirectHit(t *testing.T) {
	ev := testEvent("ranked night", time.Date(2025, time.July, 12, 19, 0, 0, 0, time.UTC), event.PriorityHigh)
	ev.GameColor = "#3357FF"
	grid := BuildMonthGrid(2025, time.July, time.UTC, []*event.Event{ev})

	cell := findCell(t, grid, 12)
	require.Len(t, cell.Events, 1)
	view := cell.Events[0]
	assert.Equal(t, ev.ID, view.EventID)
	assert.Equal(t, "ranked night", view.Title)
	assert.Equal(t, "#3357FF", view.Color)
	assert.Equal(t, "/api/v1/events/"+ev.ID.String(), view.URL)

	assert.Empty(t, findCell(t, grid, 11).Events)
	assert.Empty(t, findCell(t, grid, 13).Events)
}

func TestBuildMonthGridDefaultColor(t *testing.T) {
	ev := testEvent("no game attached", time.Date(2025, time.July, 5, 10, 0, 0, 0, time.UTC), event.PriorityLow)
	grid := BuildMonthGrid(2025, time.July, time.UTC, []*event.Event{ev})

	cell := findCell(t, grid, 5)
	require.Len(t, cell.Events, 1)
	assert.Equal(t, "#FFFFFF", cell.Events[0].Color)
}

func TestBuildMonthGridOrdering(t *testing.T) {
	day := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	low := testEvent("low", day.Add(8*time.Hour), event.PriorityLow)
	highLate := testEvent("high late", day.Add(20*time.Hour), event.PriorityHigh)
	highEarly := testEvent("high early", day.Add(9*time.Hour), event.PriorityHigh)

	grid := BuildMonthGrid(2025, time.July, time.UTC, []*event.Event{low, highLate, highEarly})

	cell := findCell(t, grid, 20)
	require.Len(t, cell.Events, 3)
	assert.Equal(t, "high early", cell.Events[0].Title, "priority first, then start time")
	assert.Equal(t, "high late", cell.Events[1].Title)
	assert.Equal(t, "low", cell.Events[2].Title)
}

func TestBuildMonthGridRecurringNotDoubleCounted(t *testing.T) {
	ev := testEvent("daily grind", time.Date(2025, time.July, 10, 18, 0, 0, 0, time.UTC), event.PriorityMedium)
	ev.Recurrence = event.RecurrenceDaily

	grid := BuildMonthGrid(2025, time.July, time.UTC, []*event.Event{ev})

	// Start day is both a direct hit and a rule hit; it must render once.
	assert.Len(t, findCell(t, grid, 10).Events, 1)
	assert.Len(t, findCell(t, grid, 11).Events, 1)
	assert.Empty(t, findCell(t, grid, 9).Events)
}

func TestPrevNextMonthRollover(t *testing.T) {
	assert.Equal(t, calendar.YearMonth{Year: 2024, Month: 12}, PrevMonth(2025, time.January))
	assert.Equal(t, calendar.YearMonth{Year: 2026, Month: 1}, NextMonth(2025, time.December))
	assert.Equal(t, calendar.YearMonth{Year: 2025, Month: 6}, PrevMonth(2025, time.July))
	assert.Equal(t, calendar.YearMonth{Year: 2025, Month: 8}, NextMonth(2025, time.July))
}

func TestGroupTodayEvents(t *testing.T) {
	morning := time.Date(2025, time.July, 20, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.July, 20, 19, 0, 0, 0, time.UTC)

	a := testEvent("scrims", evening, event.PriorityHigh)
	a.GameName = "Valorant"
	a.GameColor = "#FF5733"
	b := testEvent("dailies", morning, event.PriorityLow)
	b.GameName = "Genshin"
	b.GameColor = "#FFA500"
	c := testEvent("errand", morning.Add(time.Hour), event.PriorityMedium)

	groups := GroupTodayEvents([]*event.Event{a, b, c})

	require.Len(t, groups, 3)
	assert.Equal(t, "Genshin", groups[0].GameName, "earliest start leads")
	assert.Equal(t, "No Game", groups[1].GameName)
	assert.Equal(t, "#FFFFFF", groups[1].Color)
	assert.Equal(t, "Valorant", groups[2].GameName)
	assert.Equal(t, "#FF5733", groups[2].Color)
}

func TestGroupTodayEventsMergesSameGame(t *testing.T) {
	start := time.Date(2025, time.July, 20, 9, 0, 0, 0, time.UTC)
	a := testEvent("first", start, event.PriorityLow)
	a.GameName = "Elden Ring"
	b := testEvent("second", start.Add(3*time.Hour), event.PriorityHigh)
	b.GameName = "Elden Ring"

	groups := GroupTodayEvents([]*event.Event{a, b})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Events, 2)
}

func TestGroupTodayEventsEmpty(t *testing.T) {
	assert.Empty(t, GroupTodayEvents(nil))
}
