package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameplanAPI/internal/types/share"
)

// stubFriends holds undirected edges, like the real graph derives them.
type stubFriends struct {
	edges map[[2]uuid.UUID]bool
}

func newStubFriends() *stubFriends {
	return &stubFriends{edges: map[[2]uuid.UUID]bool{}}
}

func (s *stubFriends) befriend(a, b uuid.UUID) {
	s.edges[edgeKey(a, b)] = true
}

func (s *stubFriends) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.edges[edgeKey(a, b)], nil
}

func edgeKey(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}

func TestOwnerAlwaysAllowed(t *testing.T) {
	owner := uuid.New()
	svc := NewAccessService(newStubFriends())

	grant, err := svc.CanViewCalendar(context.Background(), owner, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, GrantOwner, grant)
	assert.True(t, grant.Allowed())
}

func TestOwnerBeatsCapability(t *testing.T) {
	owner := uuid.New()
	svc := NewAccessService(newStubFriends())
	cap := &share.Capability{SharedOwnerID: owner}

	grant, err := svc.CanViewCalendar(context.Background(), owner, owner, cap)
	require.NoError(t, err)
	assert.Equal(t, GrantOwner, grant, "self view reports owner even with a capability present")
}

func TestAnonymousDenied(t *testing.T) {
	svc := NewAccessService(newStubFriends())

	grant, err := svc.CanViewCalendar(context.Background(), uuid.Nil, uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, GrantDenied, grant)
	assert.False(t, grant.Allowed())
}

func TestAnonymousWithMatchingCapability(t *testing.T) {
	owner := uuid.New()
	svc := NewAccessService(newStubFriends())
	cap := &share.Capability{SharedOwnerID: owner}

	grant, err := svc.CanViewCalendar(context.Background(), uuid.Nil, owner, cap)
	require.NoError(t, err)
	assert.Equal(t, GrantShared, grant)
}

func TestCapabilityScopedToOneOwner(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	svc := NewAccessService(newStubFriends())
	cap := &share.Capability{SharedOwnerID: owner}

	grant, err := svc.CanViewCalendar(context.Background(), uuid.Nil, other, cap)
	require.NoError(t, err)
	assert.Equal(t, GrantDenied, grant, "a capability opens exactly one calendar")
}

func TestFriendshipIsSymmetric(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	friends := newStubFriends()
	friends.befriend(alice, bob)
	svc := NewAccessService(friends)

	grant, err := svc.CanViewCalendar(context.Background(), alice, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, GrantFriend, grant)

	grant, err = svc.CanViewCalendar(context.Background(), bob, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, GrantFriend, grant, "who sent the original request must not matter")
}

func TestAuthenticatedStrangerDenied(t *testing.T) {
	svc := NewAccessService(newStubFriends())

	grant, err := svc.CanViewCalendar(context.Background(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, GrantDenied, grant)
}

func TestAuthenticatedStrangerWithCapability(t *testing.T) {
	owner := uuid.New()
	svc := NewAccessService(newStubFriends())
	cap := &share.Capability{SharedOwnerID: owner}

	grant, err := svc.CanViewCalendar(context.Background(), uuid.New(), owner, cap)
	require.NoError(t, err)
	assert.Equal(t, GrantShared, grant, "the capability works for logged-in visitors too")
}

func TestCanViewEventFollowsCalendarRules(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	friends := newStubFriends()
	friends.befriend(owner, viewer)
	svc := NewAccessService(friends)

	grant, err := svc.CanViewEvent(context.Background(), viewer, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, GrantFriend, grant)

	grant, err = svc.CanViewEvent(context.Background(), uuid.New(), owner, nil)
	require.NoError(t, err)
	assert.Equal(t, GrantDenied, grant)
}
