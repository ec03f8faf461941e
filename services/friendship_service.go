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

	"gameplanAPI/internal/types/friendship"
)

// FriendshipService manages the directed request/accept edges. Friendship is
// never stored as its own row: it is derived as "an accepted request exists
// in either direction".
type FriendshipService struct {
	db *pgxpool.Pool
}

func NewFriendshipService(db *pgxpool.Pool) *FriendshipService {
	return &FriendshipService{db: db}
}

func (s *FriendshipService) SendRequest(ctx context.Context, fromUser, toUser uuid.UUID) (*friendship.FriendRequest, error) {
	if fromUser == toUser {
		return nil, validationErr("to_user", "cannot send a friend request to yourself")
	}

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, toUser).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", toUser, ErrNotFound)
	}

	// At most one pending request per ordered (from, to) pair.
	var pending bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE from_user = $1 AND to_user = $2 AND accepted = FALSE
		)`, fromUser, toUser).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("friend request already sent: %w", ErrConflict)
	}

	already, err := s.AreFriends(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("already friends: %w", ErrConflict)
	}

	req := &friendship.FriendRequest{
		ID:        uuid.New(),
		FromUser:  fromUser,
		ToUser:    toUser,
		CreatedAt: time.Now(),
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO friend_requests (id, from_user, to_user, accepted, created_at)
		VALUES ($1, $2, $3, FALSE, $4)`,
		req.ID, req.FromUser, req.ToUser, req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	log.Printf("SendRequest: %s -> %s", fromUser, toUser)
	return req, nil
}

// PendingRequests lists the viewer's unaccepted incoming requests.
func (s *FriendshipService) PendingRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.PendingRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT fr.id, fr.from_user, u.username, fr.created_at
		FROM friend_requests fr
		JOIN users u ON u.id = fr.from_user
		WHERE fr.to_user = $1 AND fr.accepted = FALSE
		ORDER BY fr.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friend requests: %w", err)
	}
	defer rows.Close()

	requests := []*friendship.PendingRequest{}
	for rows.Next() {
		pr := &friendship.PendingRequest{}
		if err := rows.Scan(&pr.RequestID, &pr.FromUserID, &pr.FromUsername, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}

// Accept marks the request accepted. Only the recipient may accept, and
// acceptance is the only mechanism that ever creates a friendship.
func (s *FriendshipService) Accept(ctx context.Context, requestID, userID uuid.UUID) error {
	var toUser uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT to_user FROM friend_requests WHERE id = $1`, requestID).Scan(&toUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("friend request %s: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch friend request: %w", err)
	}
	if toUser != userID {
		return fmt.Errorf("not the recipient of this request: %w", ErrForbidden)
	}

	_, err = s.db.Exec(ctx, `UPDATE friend_requests SET accepted = TRUE WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	log.Printf("Accept: request %s accepted by %s", requestID, userID)
	return nil
}

// Decline deletes the request outright; nothing is recorded.
func (s *FriendshipService) Decline(ctx context.Context, requestID, userID uuid.UUID) error {
	var toUser uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT to_user FROM friend_requests WHERE id = $1`, requestID).Scan(&toUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("friend request %s: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch friend request: %w", err)
	}
	if toUser != userID {
		return fmt.Errorf("not the recipient of this request: %w", ErrForbidden)
	}

	_, err = s.db.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// Friends lists the symmetric closure: everyone who shares an accepted edge
// with the user, whichever direction it was sent in.
func (s *FriendshipService) Friends(ctx context.Context, userID uuid.UUID) ([]*friendship.Friend, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT u.id, u.username
		FROM friend_requests fr
		JOIN users u ON u.id = CASE WHEN fr.from_user = $1 THEN fr.to_user ELSE fr.from_user END
		WHERE (fr.from_user = $1 OR fr.to_user = $1) AND fr.accepted = TRUE
		ORDER BY u.username`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friends: %w", err)
	}
	defer rows.Close()

	friends := []*friendship.Friend{}
	for rows.Next() {
		f := &friendship.Friend{}
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// RemoveFriend severs the friendship by deleting accepted edges in both
// directions.
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
		DELETE FROM friend_requests
		WHERE ((from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1))
		  AND accepted = TRUE`, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no friendship found: %w", ErrNotFound)
	}
	log.Printf("RemoveFriend: %s removed %s", userID, friendID)
	return nil
}

func (s *FriendshipService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE ((from_user = $1 AND to_user = $2) OR (from_user = $2 AND to_user = $1))
			  AND accepted = TRUE
		)`, a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return ok, nil
}
