package friendship

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest is a directed edge in the friend graph. Friendship itself is
// never stored: two users are friends iff an accepted request exists between
// them in either direction.
type FriendRequest struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FromUser  uuid.UUID `json:"from_user" db:"from_user"`
	ToUser    uuid.UUID `json:"to_user" db:"to_user"`
	Accepted  bool      `json:"accepted" db:"accepted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PendingRequest is what the requests inbox shows.
type PendingRequest struct {
	RequestID    uuid.UUID `json:"request_id"`
	FromUserID   uuid.UUID `json:"from_user_id"`
	FromUsername string    `json:"from_user"`
	CreatedAt    time.Time `json:"created_at"`
}

type Friend struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
