package recurrence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameplanAPI/internal/types/event"
)

func mkEvent(rec event.Recurrence, start time.Time, recEnd *time.Time) *event.Event {
	return &event.Event{
		ID:            uuid.New(),
		Title:         "session",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Priority:      event.PriorityMedium,
		Recurrence:    rec,
		RecurrenceEnd: recEnd,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyRecurrence(t *testing.T) {
	ev := mkEvent(event.RecurrenceDaily, time.Date(2025, time.July, 10, 18, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	assert.Empty(t, x.OccurrencesOn(9, []*event.Event{ev}), "day before the start must not match")
	for day := 10; day <= 31; day++ {
		got := x.OccurrencesOn(day, []*event.Event{ev})
		require.Len(t, got, 1, "day %d", day)
		assert.Equal(t, ev.ID, got[0].ID)
	}
}

func TestDailyRecurrenceEndIsInclusive(t *testing.T) {
	end := date(2025, time.July, 15)
	ev := mkEvent(event.RecurrenceDaily, time.Date(2025, time.July, 10, 18, 0, 0, 0, time.UTC), &end)
	x := NewExpander(2025, time.July, time.UTC)

	assert.Len(t, x.OccurrencesOn(15, []*event.Event{ev}), 1, "the end day itself still occurs")
	assert.Empty(t, x.OccurrencesOn(16, []*event.Event{ev}))
}

func TestWeeklyRecurrence(t *testing.T) {
	// 2025-07-02 is a Wednesday.
	ev := mkEvent(event.RecurrenceWeekly, time.Date(2025, time.July, 2, 20, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	wednesdays := map[int]bool{2: true, 9: true, 16: true, 23: true, 30: true}
	for day := 1; day <= 31; day++ {
		got := x.OccurrencesOn(day, []*event.Event{ev})
		if wednesdays[day] {
			assert.Len(t, got, 1, "day %d should match", day)
		} else {
			assert.Empty(t, got, "day %d should not match", day)
		}
	}
}

func TestMonthlySkipsShortMonths(t *testing.T) {
	ev := mkEvent(event.RecurrenceMonthly, time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC), nil)

	feb := NewExpander(2025, time.February, time.UTC)
	for day := 1; day <= 28; day++ {
		assert.Empty(t, feb.OccurrencesOn(day, []*event.Event{ev}), "February has no 31st")
	}

	mar := NewExpander(2025, time.March, time.UTC)
	assert.Len(t, mar.OccurrencesOn(31, []*event.Event{ev}), 1, "the series resumes in March")
	assert.Empty(t, mar.OccurrencesOn(30, []*event.Event{ev}))

	apr := NewExpander(2025, time.April, time.UTC)
	assert.Empty(t, apr.OccurrencesOn(30, []*event.Event{ev}), "April has no 31st either")
}

func TestMonthlyOnAnchorDay(t *testing.T) {
	ev := mkEvent(event.RecurrenceMonthly, time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.June, time.UTC)

	assert.Len(t, x.OccurrencesOn(15, []*event.Event{ev}), 1)
	assert.Empty(t, x.OccurrencesOn(14, []*event.Event{ev}))
	assert.Empty(t, x.OccurrencesOn(16, []*event.Event{ev}))
}

func TestNonRecurringIgnored(t *testing.T) {
	ev := mkEvent(event.RecurrenceNone, time.Date(2025, time.July, 10, 18, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	assert.Empty(t, x.OccurrencesOn(10, []*event.Event{ev}), "direct hits are the renderer's job")
}

func TestPaddingDaysYieldNothing(t *testing.T) {
	ev := mkEvent(event.RecurrenceDaily, time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	assert.Nil(t, x.OccurrencesOn(0, []*event.Event{ev}))
	assert.Nil(t, x.OccurrencesOn(-3, []*event.Event{ev}))
	assert.Nil(t, x.OccurrencesOn(32, []*event.Event{ev}))
}

func TestRepeatedCallsAreDeterministic(t *testing.T) {
	ev := mkEvent(event.RecurrenceWeekly, time.Date(2025, time.July, 2, 20, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	first := x.OccurrencesOn(9, []*event.Event{ev})
	second := x.OccurrencesOn(9, []*event.Event{ev})
	assert.Equal(t, first, second)
}

func TestDuplicateCandidatesDeduped(t *testing.T) {
	ev := mkEvent(event.RecurrenceDaily, time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC), nil)
	x := NewExpander(2025, time.July, time.UTC)

	got := x.OccurrencesOn(10, []*event.Event{ev, ev})
	assert.Len(t, got, 1)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2025, time.July))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 30, DaysIn(2025, time.September))
}
