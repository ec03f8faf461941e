package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gameplanAPI/internal/types/share"
)

const CapabilityKey contextKey = "capability"

// CapabilityCookie carries the signed "may view this calendar" grant a
// visitor earns by following a share link.
const CapabilityCookie = "calendar_access"

const capabilityTTL = 30 * 24 * time.Hour

type capabilityClaims struct {
	SharedOwnerID string `json:"shared_owner_id"`
	jwt.RegisteredClaims
}

// MintCapability signs a capability granting view access to ownerID's calendar.
func MintCapability(ownerID uuid.UUID) (string, error) {
	claims := capabilityClaims{
		SharedOwnerID: ownerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(capabilityTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign capability: %w", err)
	}
	return signed, nil
}

func verifyCapability(tokenStr string) (*share.Capability, error) {
	claims := &capabilityClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	ownerID, err := uuid.Parse(claims.SharedOwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner in capability: %w", err)
	}
	return &share.Capability{SharedOwnerID: ownerID}, nil
}

// SetCapabilityCookie attaches the signed capability to the response.
func SetCapabilityCookie(w http.ResponseWriter, ownerID uuid.UUID) error {
	signed, err := MintCapability(ownerID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CapabilityCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(capabilityTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CapabilityMiddleware reads the capability cookie, if any, and puts the
// parsed grant in context. Invalid or missing cookies are simply ignored.
func CapabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CapabilityCookie); err == nil {
			if cap, err := verifyCapability(cookie.Value); err == nil {
				ctx := context.WithValue(r.Context(), CapabilityKey, cap)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetCapability extracts the share capability from context, if present.
func GetCapability(ctx context.Context) *share.Capability {
	cap, _ := ctx.Value(CapabilityKey).(*share.Capability)
	return cap
}
