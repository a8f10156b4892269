package auth

import (
	"errors"
	"time"

	autherrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims carry the user id only. Role, tenant and factory are resolved from
// the store on every request so a demotion takes effect immediately.
type Claims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) Issue(userID, kind string) (string, error) {
	ttl := m.accessTTL
	if kind == TokenRefresh {
		ttl = m.refreshTTL
	}
	now := m.now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature, expiry and kind, and returns the user id.
func (m *TokenManager) Parse(token, kind string) (string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", autherrors.ErrTokenExpired
		}
		return "", autherrors.ErrInvalidToken
	}
	if !parsed.Valid || claims.Kind != kind || claims.UserID == "" {
		return "", autherrors.ErrInvalidToken
	}
	return claims.UserID, nil
}
