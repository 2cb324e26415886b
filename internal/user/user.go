// Package user defines the user model used throughout the application,
// particularly for authentication and the per-user collection of shortened URLs.
package user

import "golang.org/x/crypto/bcrypt"

// URLRecord is a single shortened URL owned by a user.
type URLRecord struct {
	// ShortCode is the token identifying the URL within the owning user's collection.
	ShortCode string `json:"short_code"`

	// LongURL is the destination the short code redirects to.
	LongURL string `json:"long_url"`
}

// User represents a system user.
// URLs are keyed by short code and belong exclusively to this user.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id"`

	// Email is stored lowercased; uniqueness across users is case-insensitive.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext password is never stored.
	PasswordHash string `json:"password_hash"`

	// URLs maps short code to the owned URL record.
	URLs map[string]URLRecord `json:"urls"`
}

// SetPassword hashes the given plaintext password with bcrypt
// and stores the hash on the user.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)

	return nil
}

// CheckPassword compares the given plaintext password against the stored hash.
// It reports false when no hash is stored at all.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
