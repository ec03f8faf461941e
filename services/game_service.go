package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gameplanAPI/internal/types/game"
)

type GameService struct {
	db *pgxpool.Pool
}

func NewGameService(db *pgxpool.Pool) *GameService {
	return &GameService{db: db}
}

func validateGame(req *game.UpsertGameRequest) error {
	if req.Name == "" {
		return validationErr("name", "name is required")
	}
	if req.Color == "" {
		req.Color = game.DefaultColor
	}
	if !game.ValidColor(req.Color) {
		return validationErr("color", "color must be one of the palette colors")
	}
	return nil
}

func (s *GameService) CreateGame(ctx context.Context, userID uuid.UUID, req *game.UpsertGameRequest) (*game.Game, error) {
	if err := validateGame(req); err != nil {
		return nil, err
	}

	g := &game.Game{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Genre:       req.Genre,
		Platform:    req.Platform,
		Developer:   req.Developer,
		ReleaseDate: req.ReleaseDate,
		Color:       req.Color,
		PictureLink: req.PictureLink,
		CreatedAt:   time.Now(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO games (id, user_id, name, genre, platform, developer, release_date, color, picture_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.UserID, g.Name, g.Genre, g.Platform, g.Developer, g.ReleaseDate, g.Color, g.PictureLink, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

func (s *GameService) UpdateGame(ctx context.Context, gameID, userID uuid.UUID, req *game.UpsertGameRequest) (*game.Game, error) {
	if err := validateGame(req); err != nil {
		return nil, err
	}

	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, fmt.Errorf("only the owner may edit a game: %w", ErrForbidden)
	}

	g.Name = req.Name
	g.Genre = req.Genre
	g.Platform = req.Platform
	g.Developer = req.Developer
	g.ReleaseDate = req.ReleaseDate
	g.Color = req.Color
	g.PictureLink = req.PictureLink

	_, err = s.db.Exec(ctx, `
		UPDATE games
		SET name = $2, genre = $3, platform = $4, developer = $5, release_date = $6, color = $7, picture_link = $8
		WHERE id = $1`,
		g.ID, g.Name, g.Genre, g.Platform, g.Developer, g.ReleaseDate, g.Color, g.PictureLink)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return g, nil
}

func (s *GameService) GetGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	g := &game.Game{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, genre, platform, developer, release_date, color, picture_link, created_at
		FROM games WHERE id = $1`, id).Scan(
		&g.ID, &g.UserID, &g.Name, &g.Genre, &g.Platform, &g.Developer,
		&g.ReleaseDate, &g.Color, &g.PictureLink, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch game: %w", err)
	}
	return g, nil
}

func (s *GameService) ListGames(ctx context.Context, userID uuid.UUID) ([]*game.Game, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, genre, platform, developer, release_date, color, picture_link, created_at
		FROM games WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []*game.Game{}
	for rows.Next() {
		g := &game.Game{}
		err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Genre, &g.Platform, &g.Developer,
			&g.ReleaseDate, &g.Color, &g.PictureLink, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// DeleteGame removes a game; events pointing at it keep rendering with the
// default color (the FK nulls out).
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID uuid.UUID) error {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.UserID != userID {
		return fmt.Errorf("only the owner may delete a game: %w", ErrForbidden)
	}

	_, err = s.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// CurrentlyPlaying lists the distinct games that have at least one event,
// which is what the home page shows.
func (s *GameService) CurrentlyPlaying(ctx context.Context, userID uuid.UUID) ([]*game.Game, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT g.id, g.user_id, g.name, g.genre, g.platform, g.developer, g.release_date, g.color, g.picture_link, g.created_at
		FROM games g
		JOIN events e ON e.game_id = g.id
		WHERE e.user_id = $1
		ORDER BY g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list currently playing games: %w", err)
	}
	defer rows.Close()

	games := []*game.Game{}
	for rows.Next() {
		g := &game.Game{}
		err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Genre, &g.Platform, &g.Developer,
			&g.ReleaseDate, &g.Color, &g.PictureLink, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
