package service

import (
	"context"
	"strings"

	"github.com/OnyinyeO/Tinyapp/internal/models"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

type urlsKeeper interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
	GetUserURLs(ctx context.Context, userID string) (map[string]user.URLRecord, error)
	FindUserURL(ctx context.Context, userID, short string) (user.URLRecord, bool, error)
	SaveUserURL(ctx context.Context, userID string, record user.URLRecord) error
	DeleteUserURL(ctx context.Context, userID, short string) error
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfShortenedURLs(ctx context.Context) (int64, error)
	Persist(ctx context.Context) error
	Ping(ctx context.Context) error
}

// URLs is the ownership-gated URL service. Every operation takes the user id
// resolved from the session; lookups are scoped to that user's own collection,
// so records of other users are unreachable even with a guessed short code.
type URLs struct {
	db           urlsKeeper
	keys         keyGenerator
	shortURLBase string
}

// NewURLs creates the URL service.
func NewURLs(db urlsKeeper, keys keyGenerator, shortURLBase string) *URLs {
	return &URLs{
		db:           db,
		keys:         keys,
		shortURLBase: shortURLBase,
	}
}

// List returns the user's whole URL collection.
func (s *URLs) List(ctx context.Context, userID string) (map[string]user.URLRecord, error) {
	if err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.db.GetUserURLs(ctx, userID)
}

// Create generates a short code for the given long URL and stores it in the
// user's collection. There is no collision check: should the generator repeat
// a code, the prior record under it is overwritten.
func (s *URLs) Create(ctx context.Context, userID, longURL string) (string, error) {
	if err := s.resolveUser(ctx, userID); err != nil {
		return "", err
	}

	short := s.keys.Generate()
	record := user.URLRecord{
		ShortCode: short,
		LongURL:   longURL,
	}
	if err := s.db.SaveUserURL(ctx, userID, record); err != nil {
		return "", err
	}

	persist(ctx, s.db)

	return short, nil
}

// Get returns the record under the short code from the user's own collection.
func (s *URLs) Get(ctx context.Context, userID, short string) (user.URLRecord, error) {
	if err := s.resolveUser(ctx, userID); err != nil {
		return user.URLRecord{}, err
	}

	record, found, err := s.db.FindUserURL(ctx, userID, short)
	if err != nil {
		return user.URLRecord{}, err
	}
	if !found {
		return user.URLRecord{}, ErrNotFound
	}

	return record, nil
}

// Edit overwrites the long URL of an existing record. An absent short code is
// an ErrNotFound, same as Get and redirects.
func (s *URLs) Edit(ctx context.Context, userID, short, newLongURL string) error {
	if err := s.resolveUser(ctx, userID); err != nil {
		return err
	}

	record, found, err := s.db.FindUserURL(ctx, userID, short)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	record.LongURL = newLongURL
	if err := s.db.SaveUserURL(ctx, userID, record); err != nil {
		return err
	}

	persist(ctx, s.db)

	return nil
}

// Delete removes the short code from the user's collection.
// Deleting an absent code is a silent no-op.
func (s *URLs) Delete(ctx context.Context, userID, short string) error {
	if err := s.resolveUser(ctx, userID); err != nil {
		return err
	}

	if err := s.db.DeleteUserURL(ctx, userID, short); err != nil {
		return err
	}

	persist(ctx, s.db)

	return nil
}

// GetInternalStats returns totals of shortened URLs and users.
func (s *URLs) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	urls, err := s.db.GetNumberOfShortenedURLs(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		URLs:  urls,
		Users: users,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *URLs) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetShortURL renders the public form of a short code.
func (s *URLs) GetShortURL(shortKey string) string {
	return strings.TrimRight(s.shortURLBase, "/") + "/" + shortKey
}

func (s *URLs) resolveUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}

	_, found, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnauthorized
	}

	return nil
}
