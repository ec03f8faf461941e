package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gameplanAPI/internal/types/notification"
)

// PushProvider sends a push message to a user's registered devices.
// The FCM implementation lives in internal/notification; a nil provider
// means reminders are stored in-app only.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// ReminderService runs the daily reminder scan: every event that starts
// today produces one notification for its owner, fanned out through a
// small worker pool so a slow push call never blocks the scan.
type ReminderService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
	loc           *time.Location
	pushProvider  PushProvider
	workers       int
	jobQueue      chan *reminderJob
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

type reminderJob struct {
	userID  uuid.UUID
	eventID uuid.UUID
	title   string
	start   time.Time
}

func NewReminderService(db *pgxpool.Pool, notifications *NotificationService, loc *time.Location) *ReminderService {
	s := &ReminderService{
		db:            db,
		notifications: notifications,
		loc:           loc,
		workers:       5, // 5 workers is plenty for now
		jobQueue:      make(chan *reminderJob, 100),
		stopChan:      make(chan struct{}),
	}
	s.startWorkers()
	return s
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *ReminderService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *ReminderService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *ReminderService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobQueue:
			s.processJob(job)
		case <-s.stopChan:
			return
		}
	}
}

func (s *ReminderService) processJob(job *reminderJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := fmt.Sprintf("%s starts at %s", job.title, job.start.In(s.loc).Format("15:04"))
	notif, err := s.notifications.CreateNotification(ctx, job.userID, "Today's session", body)
	if err != nil {
		log.Printf("Failed to store reminder for event %s: %v", job.eventID, err)
		return
	}

	if s.pushProvider == nil {
		return
	}

	tokens, err := s.notifications.DeviceTokens(ctx, job.userID)
	if err != nil {
		log.Printf("Failed to load device tokens for user %s: %v", job.userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]any{"event_id": job.eventID.String()}
	if err := s.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Body, data); err != nil {
		log.Printf("Push failed for user %s: %v", job.userID, err)
	}
}

// ScanToday finds every event starting today (in the service timezone) and
// queues a reminder for it, returning how many were queued. Wired to a
// daily cron in main.go, but safe to call by hand.
func (s *ReminderService) ScanToday(ctx context.Context) (int, error) {
	now := time.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, start_time
		FROM events
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time`, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to scan today's events: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		job := &reminderJob{}
		if err := rows.Scan(&job.eventID, &job.userID, &job.title, &job.start); err != nil {
			return count, fmt.Errorf("failed to scan event row: %w", err)
		}
		s.enqueue(job)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("failed reading today's events: %w", err)
	}

	if count > 0 {
		log.Printf("Queued %d reminders for %s", count, dayStart.Format("2006-01-02"))
	}
	return count, nil
}

func (s *ReminderService) enqueue(job *reminderJob) {
	select {
	case s.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue reminder for event %s: queue full", job.eventID)
	}
}

// Stop drains the worker pool gracefully.
func (s *ReminderService) Stop() {
	log.Println("Stopping reminder service...")
	close(s.stopChan)
	s.wg.Wait()
	log.Println("Reminder service stopped")
}
