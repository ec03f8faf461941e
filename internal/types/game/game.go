package game

import (
	"time"

	"github.com/google/uuid"
)

// DefaultColor is used for events that have no game attached (or whose game
// was deleted).
const DefaultColor = "#FFFFFF"

// Palette is the fixed set of colors a game may be assigned.
var Palette = []string{
	"#FF5733", // red
	"#FFA500", // orange
	"#FFFF33", // yellow
	"#33FF57", // green
	"#3357FF", // blue
	"#FF33FF", // pink
	"#800080", // purple
}

func ValidColor(c string) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return c == DefaultColor
}

type Game struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Genre       *string    `json:"genre,omitempty" db:"genre"`
	Platform    *string    `json:"platform,omitempty" db:"platform"`
	Developer   *string    `json:"developer,omitempty" db:"developer"`
	ReleaseDate *time.Time `json:"release_date,omitempty" db:"release_date"`
	Color       string     `json:"color" db:"color"`
	PictureLink *string    `json:"picture_link,omitempty" db:"picture_link"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type UpsertGameRequest struct {
	Name        string     `json:"name"`
	Genre       *string    `json:"genre,omitempty"`
	Platform    *string    `json:"platform,omitempty"`
	Developer   *string    `json:"developer,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Color       string     `json:"color"`
	PictureLink *string    `json:"picture_link,omitempty"`
}
