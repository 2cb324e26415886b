// Package mockstorage provides a testify-based mock implementation
// of the storage interface consumed by the services.
// It is used for unit testing without a real backing store.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/OnyinyeO/Tinyapp/internal/user"
)

// StorageMock is a testify mock that implements the full storage contract.
type StorageMock struct {
	mock.Mock
}

// InsertUser mocks storing a new user record.
func (m *StorageMock) InsertUser(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// FindUserByEmail mocks looking a user up by exact email match.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserURLs mocks fetching a user's URL collection.
func (m *StorageMock) GetUserURLs(ctx context.Context, userID string) (map[string]user.URLRecord, error) {
	args := m.Called(ctx, userID)
	urls, _ := args.Get(0).(map[string]user.URLRecord)
	return urls, args.Error(1)
}

// FindUserURL mocks looking a short code up in a user's collection.
func (m *StorageMock) FindUserURL(ctx context.Context, userID, short string) (user.URLRecord, bool, error) {
	args := m.Called(ctx, userID, short)
	record, _ := args.Get(0).(user.URLRecord)
	return record, args.Bool(1), args.Error(2)
}

// SaveUserURL mocks inserting or overwriting a URL record.
func (m *StorageMock) SaveUserURL(ctx context.Context, userID string, record user.URLRecord) error {
	args := m.Called(ctx, userID, record)
	return args.Error(0)
}

// DeleteUserURL mocks removing a URL record.
func (m *StorageMock) DeleteUserURL(ctx context.Context, userID, short string) error {
	args := m.Called(ctx, userID, short)
	return args.Error(0)
}

// GetNumberOfUsers mocks counting registered users.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfShortenedURLs mocks counting shortened URLs.
func (m *StorageMock) GetNumberOfShortenedURLs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Persist mocks flushing the store to its backing medium.
func (m *StorageMock) Persist(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
