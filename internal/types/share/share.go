package share

import (
	"time"

	"github.com/google/uuid"
)

// CalendarAccessToken is a capability: its bearer may view the owner's
// calendar as if a friend. Tokens never expire and issuing a new one does not
// invalidate older ones.
type CalendarAccessToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     uuid.UUID `json:"token" db:"token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ShareLinkResponse struct {
	ShareLink string `json:"share_link"`
}

// Capability is the request-scoped grant minted after a share token has been
// presented. It lives in a signed cookie for the rest of the browser session
// and is never re-validated against the token store.
type Capability struct {
	SharedOwnerID uuid.UUID `json:"shared_owner_id"`
}
