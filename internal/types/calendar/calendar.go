package calendar

import (
	"time"

	"github.com/google/uuid"
)

// EventView is one occurrence as a day cell displays it: title, the color of
// the attached game (default white) and a link target to the detail page.
type EventView struct {
	EventID  uuid.UUID `json:"event_id"`
	Title    string    `json:"title"`
	Color    string    `json:"color"`
	Priority int       `json:"priority"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	URL      string    `json:"url"`
}

// DayCell is a single grid cell. Day 0 marks padding cells belonging to the
// adjacent month; those render empty and never reach the recurrence engine.
type DayCell struct {
	Day    int         `json:"day"`
	Date   *time.Time  `json:"date,omitempty"`
	Events []EventView `json:"events"`
}

// Week is Monday-first.
type Week [7]DayCell

type MonthGrid struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Weeks []Week `json:"weeks"`
}

// YearMonth is what the prev/next navigation links carry ("month=YYYY-M").
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthResponse struct {
	Grid      *MonthGrid `json:"grid"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Grant     string     `json:"grant"`
	PrevMonth YearMonth  `json:"prev_month"`
	NextMonth YearMonth  `json:"next_month"`
}
