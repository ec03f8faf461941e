package event

import (
	"time"

	"github.com/google/uuid"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

type Event struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	GameID      *uuid.UUID `json:"game_id,omitempty" db:"game_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	StartTime   time.Time  `json:"start_time" db:"start_time"`
	EndTime     time.Time  `json:"end_time" db:"end_time"`
	Priority    int        `json:"priority" db:"priority"`
	Recurrence  Recurrence `json:"recurrence" db:"recurrence"`
	// Recurrence end is inclusive: the end day itself may still carry an occurrence.
	RecurrenceEnd *time.Time `json:"recurrence_end,omitempty" db:"recurrence_end"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// GameColor and GameName are joined in for rendering; empty when no game
	// is attached.
	GameColor string `json:"game_color,omitempty" db:"-"`
	GameName  string `json:"game_name,omitempty" db:"-"`
}

type CreateEventRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Priority      int        `json:"priority"`
	Recurrence    Recurrence `json:"recurrence"`
	RecurrenceEnd *time.Time `json:"recurrence_end,omitempty"`
	GameID        *string    `json:"game_id,omitempty"`
}

type EventDetailResponse struct {
	Event    *Event `json:"event"`
	IsFriend bool   `json:"is_friend"`
	OwnerID  string `json:"owner_id"`
}
