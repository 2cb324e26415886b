// Package models contains the request and response shapes of the JSON API
// and shared constants used for storage selection.
package models

// RegisterRequest is the body of POST /api/user/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by the register and login endpoints.
type AuthResponse struct {
	UserID string `json:"user_id"`
}

// ShortenRequest is the body of POST /api/user/urls.
type ShortenRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ShortenResponse carries the resulting short URL.
type ShortenResponse struct {
	Result string `json:"result"`
}

// EditURLRequest is the body of PUT /api/user/urls/{short}.
type EditURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// OwnedURL is a single entry of the authenticated user's collection.
type OwnedURL struct {
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
	LongURL   string `json:"long_url"`
}

// OwnedURLs is the response of GET /api/user/urls.
type OwnedURLs []OwnedURL

// InternalStatsResponse is the response of GET /api/internal/stats.
type InternalStatsResponse struct {
	URLs  int64 `json:"urls"`
	Users int64 `json:"users"`
}

// Storage backend kinds, selected from configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
