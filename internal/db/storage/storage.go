// Package storage declares the interface every storage backend implements.
package storage

import (
	"context"

	"github.com/OnyinyeO/Tinyapp/internal/user"
)

// UserKeeper manages user records.
type UserKeeper interface {
	InsertUser(ctx context.Context, usr *user.User) error

	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	// FindUserByEmail does an exact match; callers normalize case beforehand.
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

// UserURLsKeeper manages the per-user URL collections.
type UserURLsKeeper interface {
	GetUserURLs(ctx context.Context, userID string) (map[string]user.URLRecord, error)

	FindUserURL(ctx context.Context, userID, short string) (user.URLRecord, bool, error)

	// SaveUserURL inserts the record or overwrites the one under the same short code.
	SaveUserURL(ctx context.Context, userID string, record user.URLRecord) error

	// DeleteUserURL is a no-op when the short code is absent.
	DeleteUserURL(ctx context.Context, userID, short string) error
}

// StatsKeeper counts users and shortened URLs for the internal stats endpoint.
type StatsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfShortenedURLs(ctx context.Context) (int64, error)
}

// Storage is the full contract the services consume.
type Storage interface {
	UserKeeper
	UserURLsKeeper
	StatsKeeper

	// Persist flushes the in-memory state to the backing medium.
	// Backends with durable writes implement it as a no-op.
	Persist(ctx context.Context) error

	Ping(ctx context.Context) error

	Close() error
}
