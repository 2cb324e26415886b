// Package session implements the cookie-backed session: a signed JWT carrying
// the user id, created on login or registration and destroyed on logout.
// The user id is looked up fresh from storage on every request, never cached.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

type userKeeper interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

// Claims represents the JWT claims carried by the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// ErrInvalidTokenOrJwtParsing is returned when the session token fails
// signature verification or cannot be parsed at all.
var ErrInvalidTokenOrJwtParsing = errors.New("invalid token or JWT parsing error")

// Manager creates, reads and destroys session cookies.
type Manager struct {
	// db is the interface to the user data storage.
	db userKeeper

	// cookieName is the name of the cookie used to store the JWT.
	cookieName string

	// signingSecretKey is the key used to sign JWTs.
	signingSecretKey []byte

	// ttl is the session lifetime.
	ttl time.Duration
}

// New creates a Manager with the given user data access layer,
// cookie name, JWT signing secret and session lifetime.
func New(
	db userKeeper,
	cookieName string,
	signingSecretKey []byte,
	ttl time.Duration,
) *Manager {
	return &Manager{
		db:               db,
		cookieName:       cookieName,
		signingSecretKey: signingSecretKey,
		ttl:              ttl,
	}
}

// UserID extracts the user id from the request's session token, read from
// the Authorization header or the session cookie. An absent or invalid
// token yields an empty id and ErrInvalidTokenOrJwtParsing.
func (m *Manager) UserID(request *http.Request) (string, error) {
	tokenString := m.tokenFromAuthorizationHeaderOrCookie(request)

	return m.UserIDFromToken(tokenString)
}

// UserIDFromToken parses and verifies the raw token string.
func (m *Manager) UserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidTokenOrJwtParsing
	}

	return claims.UserID, nil
}

// Set starts a session for the given user id: it signs a JWT and writes it
// as the session cookie and the Authorization response header.
func (m *Manager) Set(response http.ResponseWriter, userID string) error {
	JWTString, err := m.BuildJWTString(&Claims{UserID: userID})
	if err != nil {
		return err
	}

	response.Header().Set("Authorization", JWTString)
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    JWTString,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int(m.ttl.Seconds()),
		},
	)

	return nil
}

// Destroy ends the session by expiring the cookie; no session state survives.
func (m *Manager) Destroy(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		},
	)
}

// BuildJWTString signs the given claims, stamping them with the session expiry.
func (m *Manager) BuildJWTString(claims *Claims) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(m.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(m.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// RequireUser is an HTTP middleware that resolves the session to a stored
// user and adds the user id to the request context. Requests without a
// resolvable user are rejected with 401.
func (m *Manager) RequireUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := m.UserID(request)
		if err != nil && !errors.Is(err, ErrInvalidTokenOrJwtParsing) {
			logger.Log.Debugln("Error calling the `m.UserID()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if userID == "" {
			response.WriteHeader(http.StatusUnauthorized)
			return
		}

		usr, found, err := m.db.GetUserByID(request.Context(), userID)
		if err != nil {
			logger.Log.Debugln("Error calling the `m.db.GetUserByID()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !found {
			response.WriteHeader(http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, usr.ID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

func (m *Manager) tokenFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(m.cookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}
