package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gameplanAPI/internal/types/share"
)

// Grant is the outcome of an access check. Shared is deliberately distinct
// from Friend so the frontend can hide owner-only controls on token-shared
// views even though both render identically.
type Grant string

const (
	GrantDenied Grant = "denied"
	GrantOwner  Grant = "owner"
	GrantShared Grant = "shared"
	GrantFriend Grant = "friend"
)

func (g Grant) Allowed() bool { return g != GrantDenied }

// FriendChecker is the one question the gate asks of the friend graph.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// AccessService decides calendar and event visibility: owner-self, accepted
// friend, or a valid share capability. Every render and detail view goes
// through here before any event data is exposed.
type AccessService struct {
	friends FriendChecker
}

func NewAccessService(friends FriendChecker) *AccessService {
	return &AccessService{friends: friends}
}

// CanViewCalendar evaluates the visibility rules in order, first match wins.
// An anonymous viewer is uuid.Nil; cap is nil when no share capability was
// presented this session.
func (s *AccessService) CanViewCalendar(ctx context.Context, viewer, owner uuid.UUID, cap *share.Capability) (Grant, error) {
	capMatches := cap != nil && cap.SharedOwnerID == owner

	if viewer == uuid.Nil && !capMatches {
		return GrantDenied, nil
	}
	if viewer == owner {
		return GrantOwner, nil
	}
	if capMatches {
		return GrantShared, nil
	}
	if viewer != uuid.Nil {
		ok, err := s.friends.AreFriends(ctx, viewer, owner)
		if err != nil {
			return GrantDenied, fmt.Errorf("failed to check friendship: %w", err)
		}
		if ok {
			return GrantFriend, nil
		}
	}
	return GrantDenied, nil
}

// CanViewEvent applies the calendar rules against the event's owner. The
// original per-event permission grant collapsed into the owner check here.
func (s *AccessService) CanViewEvent(ctx context.Context, viewer, eventOwner uuid.UUID, cap *share.Capability) (Grant, error) {
	return s.CanViewCalendar(ctx, viewer, eventOwner, cap)
}
