package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameplanAPI/internal/types/event"
)

func TestOccurrenceSlotsDaily(t *testing.T) {
	start := time.Date(2025, time.July, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	recEnd := time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC)

	slots := occurrenceSlots(start, end, event.RecurrenceDaily, recEnd, time.UTC)

	require.Len(t, slots, 5, "July 1 through July 5 inclusive")
	for i, s := range slots {
		assert.Equal(t, start.AddDate(0, 0, i), s.Start)
		assert.Equal(t, time.Hour, s.End.Sub(s.Start), "duration preserved")
	}
}

func TestOccurrenceSlotsWeekly(t *testing.T) {
	start := time.Date(2025, time.July, 7, 20, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	recEnd := time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC)

	slots := occurrenceSlots(start, end, event.RecurrenceWeekly, recEnd, time.UTC)

	require.Len(t, slots, 4)
	days := []int{7, 14, 21, 28}
	for i, s := range slots {
		assert.Equal(t, days[i], s.Start.Day())
		assert.Equal(t, time.July, s.Start.Month())
		assert.Equal(t, 20, s.Start.Hour(), "time of day preserved")
	}
}

func TestOccurrenceSlotsMonthlyClampsToAnchor(t *testing.T) {
	start := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	recEnd := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)

	slots := occurrenceSlots(start, end, event.RecurrenceMonthly, recEnd, time.UTC)

	require.Len(t, slots, 4)
	assert.Equal(t, time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC), slots[1].Start, "clamped to the short month's last day")
	assert.Equal(t, time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC), slots[2].Start, "back on the anchor day, no drift")
	assert.Equal(t, time.Date(2025, time.April, 30, 10, 0, 0, 0, time.UTC), slots[3].Start)
}

func TestOccurrenceSlotsMonthlyYearRollover(t *testing.T) {
	start := time.Date(2025, time.December, 15, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	recEnd := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	slots := occurrenceSlots(start, end, event.RecurrenceMonthly, recEnd, time.UTC)

	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC), slots[1].Start)
}

func TestOccurrenceSlotsEndDayInclusive(t *testing.T) {
	start := time.Date(2025, time.July, 1, 23, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	recEnd := time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)

	slots := occurrenceSlots(start, end, event.RecurrenceDaily, recEnd, time.UTC)

	require.Len(t, slots, 3, "the end day itself still carries an occurrence")
	assert.Equal(t, 3, slots[2].Start.Day())
}

func TestOccurrenceSlotsNonRecurring(t *testing.T) {
	start := time.Date(2025, time.July, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	slots := occurrenceSlots(start, end, event.RecurrenceNone, start, time.UTC)

	require.Len(t, slots, 1)
	assert.Equal(t, start, slots[0].Start)
	assert.Equal(t, end, slots[0].End)
}
