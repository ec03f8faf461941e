package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gameplanAPI/internal/types/event"
)

// EventService owns event CRUD and the creation-time materializer: a
// recurring draft is expanded into one stored row per occurrence, and the
// stored rows carry no live rule afterwards. The render path therefore never
// double-counts a series, while the recurrence engine still honors any rows
// that do carry a rule (imported data).
type EventService struct {
	db  *pgxpool.Pool
	loc *time.Location
}

func NewEventService(db *pgxpool.Pool, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{db: db, loc: loc}
}

type CreateEventResult struct {
	Event *event.Event `json:"event"`
	// Materialized counts the sibling rows written for a recurring draft,
	// not including the original.
	Materialized int `json:"materialized"`
}

// CreateEvent validates the draft, persists the original row and, for a
// recurring draft, materializes every further occurrence up to the inclusive
// recurrence end. Candidate occurrences that would overlap an existing event
// of the same owner are skipped silently. The whole check-then-insert loop
// runs in one transaction so two concurrent creations for the same user
// cannot interleave half-checked inserts.
func (s *EventService) CreateEvent(ctx context.Context, userID uuid.UUID, req *event.CreateEventRequest) (*CreateEventResult, error) {
	if req.Title == "" {
		return nil, validationErr("title", "title is required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, validationErr("end_time", "end time must be after start time")
	}
	if req.Priority == 0 {
		req.Priority = event.PriorityMedium
	}
	if req.Priority < event.PriorityLow || req.Priority > event.PriorityHigh {
		return nil, validationErr("priority", "priority must be 1 (low), 2 (medium) or 3 (high)")
	}
	if req.Recurrence == "" {
		req.Recurrence = event.RecurrenceNone
	}
	if !req.Recurrence.Valid() {
		return nil, validationErr("recurrence", "recurrence must be none, daily, weekly or monthly")
	}
	if req.Recurrence != event.RecurrenceNone {
		if req.RecurrenceEnd == nil {
			return nil, validationErr("recurrence_end", "recurrence end date is required for recurring events")
		}
		startDay := dateInLoc(req.StartTime, s.loc)
		if dateInLoc(*req.RecurrenceEnd, s.loc).Before(startDay) {
			return nil, validationErr("recurrence_end", "recurrence end date cannot be before the start date")
		}
	}

	var gameID *uuid.UUID
	if req.GameID != nil && *req.GameID != "" {
		parsed, err := uuid.Parse(*req.GameID)
		if err != nil {
			return nil, validationErr("game_id", "invalid game id")
		}
		var ownedBy uuid.UUID
		err = s.db.QueryRow(ctx, `SELECT user_id FROM games WHERE id = $1`, parsed).Scan(&ownedBy)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, validationErr("game_id", "game not found")
			}
			return nil, fmt.Errorf("failed to look up game: %w", err)
		}
		if ownedBy != userID {
			return nil, validationErr("game_id", "game belongs to another user")
		}
		gameID = &parsed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	overlap, err := overlapExists(ctx, tx, userID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, validationErr("", "this time slot is already booked")
	}

	original := &event.Event{
		ID:          uuid.New(),
		UserID:      userID,
		GameID:      gameID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Priority:    req.Priority,
		Recurrence:  event.RecurrenceNone,
		CreatedAt:   time.Now(),
	}
	if err := insertEvent(ctx, tx, original); err != nil {
		return nil, err
	}

	materialized := 0
	if req.Recurrence != event.RecurrenceNone {
		slots := occurrenceSlots(req.StartTime.In(s.loc), req.EndTime.In(s.loc), req.Recurrence, *req.RecurrenceEnd, s.loc)
		// slots[0] is the original; only the siblings get inserted.
		for _, sl := range slots[1:] {
			taken, err := overlapExists(ctx, tx, userID, sl.Start, sl.End)
			if err != nil {
				return nil, err
			}
			if taken {
				continue
			}
			sibling := &event.Event{
				ID:          uuid.New(),
				UserID:      userID,
				GameID:      gameID,
				Title:       req.Title,
				Description: req.Description,
				StartTime:   sl.Start,
				EndTime:     sl.End,
				Priority:    req.Priority,
				Recurrence:  event.RecurrenceNone,
				CreatedAt:   time.Now(),
			}
			if err := insertEvent(ctx, tx, sibling); err != nil {
				return nil, err
			}
			materialized++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit event creation: %w", err)
	}

	log.Printf("CreateEvent: %s created %q (%s, %d materialized)", userID, req.Title, req.Recurrence, materialized)
	return &CreateEventResult{Event: original, Materialized: materialized}, nil
}

// Slot is one concrete occurrence interval of a recurring draft.
type Slot struct {
	Start time.Time
	End   time.Time
}

// occurrenceSlots expands a recurring draft into its occurrence intervals,
// original included, stepping until the inclusive recurrence end day.
// Monthly steps land on the anchor day-of-month of the submitted start,
// clamped to the last day of months where it does not exist (Jan 31 ->
// Feb 28 -> Mar 31).
func occurrenceSlots(start, end time.Time, rec event.Recurrence, recEnd time.Time, loc *time.Location) []Slot {
	// recurrence_end is a date; the whole end day is still in range.
	bound := time.Date(recEnd.Year(), recEnd.Month(), recEnd.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	dur := end.Sub(start)
	anchorDay := start.Day()

	var slots []Slot
	cur := start
	for cur.Before(bound) {
		slots = append(slots, Slot{Start: cur, End: cur.Add(dur)})

		switch rec {
		case event.RecurrenceDaily:
			cur = cur.AddDate(0, 0, 1)
		case event.RecurrenceWeekly:
			cur = cur.AddDate(0, 0, 7)
		case event.RecurrenceMonthly:
			year, month := cur.Year(), cur.Month()+1
			if month > time.December {
				month = time.January
				year++
			}
			day := anchorDay
			if last := daysInMonth(year, month); day > last {
				day = last
			}
			cur = time.Date(year, month, day, cur.Hour(), cur.Minute(), cur.Second(), cur.Nanosecond(), loc)
		default:
			return slots
		}
	}
	return slots
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// overlapExists uses strict interval overlap: existing.start < new.end AND
// existing.end > new.start. Back-to-back events do not collide.
func overlapExists(ctx context.Context, tx pgx.Tx, userID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM events
			WHERE user_id = $1 AND start_time < $3 AND end_time > $2
		)`, userID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for overlapping events: %w", err)
	}
	return exists, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, ev *event.Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO events (id, user_id, game_id, title, description, start_time, end_time, priority, recurrence, recurrence_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ev.ID, ev.UserID, ev.GameID, ev.Title, ev.Description,
		ev.StartTime, ev.EndTime, ev.Priority, ev.Recurrence, ev.RecurrenceEnd, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

const eventColumns = `
	e.id, e.user_id, e.game_id, e.title, e.description, e.start_time, e.end_time,
	e.priority, e.recurrence, e.recurrence_end, e.created_at, COALESCE(g.color, '')`

func scanEvent(row pgx.Row) (*event.Event, error) {
	ev := &event.Event{}
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.GameID, &ev.Title, &ev.Description,
		&ev.StartTime, &ev.EndTime, &ev.Priority, &ev.Recurrence,
		&ev.RecurrenceEnd, &ev.CreatedAt, &ev.GameColor)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events e LEFT JOIN games g ON g.id = e.game_id
		WHERE e.id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return ev, nil
}

// DeleteEvent removes a single row. Materialized siblings are independent
// events and are untouched.
func (s *EventService) DeleteEvent(ctx context.Context, id, requesterID uuid.UUID) error {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM events WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch event: %w", err)
	}
	if ownerID != requesterID {
		return fmt.Errorf("only the owner may delete an event: %w", ErrForbidden)
	}

	_, err = s.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// EventsForMonth fetches the candidate set for a month render: rows starting
// inside the month, plus any row still carrying a live rule that started on
// or before the month's end (a series from months ago can recur into view).
func (s *EventService) EventsForMonth(ctx context.Context, ownerID uuid.UUID, year int, month time.Month) ([]*event.Event, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events e LEFT JOIN games g ON g.id = e.game_id
		WHERE e.user_id = $1
		  AND ((e.start_time >= $2 AND e.start_time < $3)
		       OR (e.recurrence <> 'none' AND e.start_time < $3))
		ORDER BY e.start_time`, ownerID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for month: %w", err)
	}
	defer rows.Close()

	events := []*event.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventsOn returns a user's events starting on the given calendar day,
// ordered for the today list: game name, then start time, then priority high
// first.
func (s *EventService) EventsOn(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]*event.Event, error) {
	dayStart := dateInLoc(day, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`, COALESCE(g.name, '')
		FROM events e LEFT JOIN games g ON g.id = e.game_id
		WHERE e.user_id = $1 AND e.start_time >= $2 AND e.start_time < $3
		ORDER BY COALESCE(g.name, ''), e.start_time, e.priority DESC`, ownerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's events: %w", err)
	}
	defer rows.Close()

	events := []*event.Event{}
	for rows.Next() {
		ev := &event.Event{}
		err := rows.Scan(
			&ev.ID, &ev.UserID, &ev.GameID, &ev.Title, &ev.Description,
			&ev.StartTime, &ev.EndTime, &ev.Priority, &ev.Recurrence,
			&ev.RecurrenceEnd, &ev.CreatedAt, &ev.GameColor, &ev.GameName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AllEvents returns every event of an owner, oldest first (ICS export).
func (s *EventService) AllEvents(ctx context.Context, ownerID uuid.UUID) ([]*event.Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events e LEFT JOIN games g ON g.id = e.game_id
		WHERE e.user_id = $1
		ORDER BY e.start_time`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer rows.Close()

	events := []*event.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func dateInLoc(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
