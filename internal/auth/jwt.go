package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SachyamKarki/Karki-Scrapper/config"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the session payload carried in the cookie token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates the session cookie tokens used by both
// the HTTP layer and the websocket handshake.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(cfg config.SessionConfig) *SessionManager {
	return &SessionManager{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
	}
}

func (m *SessionManager) Issue(userID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL is the cookie lifetime matching the token expiry.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}
