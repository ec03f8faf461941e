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

	"gameplanAPI/internal/types/share"
)

// ShareService issues and resolves calendar share tokens. Tokens are plain
// uuid capabilities with no expiry; issuing a new link never invalidates the
// old ones.
type ShareService struct {
	db *pgxpool.Pool
}

func NewShareService(db *pgxpool.Pool) *ShareService {
	return &ShareService{db: db}
}

// CreateShareLink mints a fresh token for the owner and returns the URL a
// bearer follows to pick up the capability.
func (s *ShareService) CreateShareLink(ctx context.Context, ownerID uuid.UUID, baseURL string) (*share.CalendarAccessToken, string, error) {
	tok := &share.CalendarAccessToken{
		ID:        uuid.New(),
		UserID:    ownerID,
		Token:     uuid.New(),
		CreatedAt: time.Now(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO calendar_access_tokens (id, user_id, token, created_at)
		VALUES ($1, $2, $3, $4)`,
		tok.ID, tok.UserID, tok.Token, tok.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create share token: %w", err)
	}

	link := fmt.Sprintf("%s/calendar/access?token=%s", baseURL, tok.Token)
	log.Printf("CreateShareLink: issued token for %s", ownerID)
	return tok, link, nil
}

// ResolveToken returns the owner a token grants access to.
func (s *ShareService) ResolveToken(ctx context.Context, token uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT user_id FROM calendar_access_tokens WHERE token = $1`, token).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("unknown share token: %w", ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve share token: %w", err)
	}
	return ownerID, nil
}
