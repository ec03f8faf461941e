package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityCookieRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	ownerID := uuid.New()

	rr := httptest.NewRecorder()
	require.NoError(t, SetCapabilityCookie(rr, ownerID))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CapabilityCookie, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	handler := CapabilityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap := GetCapability(r.Context())
		require.NotNil(t, cap)
		assert.Equal(t, ownerID, cap.SharedOwnerID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/"+ownerID.String(), nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCapabilityMiddlewareIgnoresMissingCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := CapabilityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetCapability(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCapabilityMiddlewareIgnoresTamperedCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed, err := MintCapability(uuid.New())
	require.NoError(t, err)

	handler := CapabilityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetCapability(r.Context()), "a modified cookie carries no grant")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CapabilityCookie, Value: signed + "x"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestCapabilityForgedWithOtherSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "attacker-secret")
	signed, err := MintCapability(uuid.New())
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "server-secret")
	handler := CapabilityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetCapability(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CapabilityCookie, Value: signed})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
