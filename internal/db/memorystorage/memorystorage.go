// Package memorystorage keeps the users cache purely in memory,
// reusing the jsondb cache without a backing file.
package memorystorage

import (
	"context"

	"github.com/OnyinyeO/Tinyapp/internal/db/jsondb"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

// MemoryStorage is a jsondb cache with persistence stubbed out.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory store.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users: map[string]*user.User{},
			},
		},
	}, nil
}

// Persist does nothing; there is no backing medium.
func (theStorage *MemoryStorage) Persist(ctx context.Context) error {
	return nil
}

// Close does nothing.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
