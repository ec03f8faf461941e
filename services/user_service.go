package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"gameplanAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// Register creates an account. Usernames are stored lowercased; both
// username and email must be unique.
func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(username) < 5 {
		return nil, validationErr("username", "username must be at least 5 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationErr("email", "a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, validationErr("password", "password must be at least 8 characters")
	}

	var taken bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("username already exists: %w", ErrConflict)
	}
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("email already exists: %w", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, string(hash), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Register: created user %s (%s)", u.Username, u.ID)
	return u, nil
}

// Authenticate verifies username + password and returns the account.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	u := &user.User{}
	var hash string
	err := s.db.QueryRow(ctx, `
		SELECT id, username, email, first_name, last_name, password_hash, created_at, updated_at
		FROM users WHERE username = $1`, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &hash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u := &user.User{}
	err := s.db.QueryRow(ctx, `
		SELECT id, username, email, first_name, last_name, created_at, updated_at
		FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		u.Username = strings.ToLower(strings.TrimSpace(*req.Username))
		if len(u.Username) < 5 {
			return nil, validationErr("username", "username must be at least 5 characters")
		}
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	u.UpdatedAt = time.Now()

	_, err = s.db.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, first_name = $4, last_name = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ChangePassword requires the current password to match before rehashing.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, req *user.ChangePasswordRequest) error {
	var hash string
	err := s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < 8 {
		return validationErr("new_password", "password must be at least 8 characters")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, string(newHash))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SearchUsers matches usernames by substring and annotates each hit with its
// friendship status relative to the viewer, which is what the social page
// renders its buttons from.
func (s *UserService) SearchUsers(ctx context.Context, viewerID uuid.UUID, query string) ([]*user.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*user.SearchResult{}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username,
			EXISTS(
				SELECT 1 FROM friend_requests fr
				WHERE ((fr.from_user = $1 AND fr.to_user = u.id) OR (fr.from_user = u.id AND fr.to_user = $1))
				  AND fr.accepted = TRUE
			) AS is_friend,
			EXISTS(
				SELECT 1 FROM friend_requests fr
				WHERE ((fr.from_user = $1 AND fr.to_user = u.id) OR (fr.from_user = u.id AND fr.to_user = $1))
				  AND fr.accepted = FALSE
			) AS has_pending
		FROM users u
		WHERE u.username ILIKE '%' || $2 || '%' AND u.id <> $1
		ORDER BY u.username
		LIMIT 50`, viewerID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []*user.SearchResult{}
	for rows.Next() {
		r := &user.SearchResult{}
		var isFriend, hasPending bool
		if err := rows.Scan(&r.ID, &r.Username, &isFriend, &hasPending); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		switch {
		case isFriend:
			r.Status = user.StatusFriends
		case hasPending:
			r.Status = user.StatusPending
		default:
			r.Status = user.StatusNone
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
