// Package jsondb is a file-backed storage: the whole users map is kept
// in memory and overwritten to a single JSON file on Persist and Close.
// There is no internal locking; a single active writer process is assumed.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

// JSONDB holds the in-memory users cache and the name of the backing file.
type JSONDB struct {
	fileName string
	Cache    CacheStruct
}

// CacheStruct is the serialized shape of the store.
type CacheStruct struct {
	Users map[string]*user.User
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New reads the persisted file into memory. A missing file is the expected
// first-run state: it is initialized empty. Any other read or parse error
// is logged as a warning and leaves the store empty; the file itself is not
// touched until the next Persist.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Warnln("Error reading the users store, starting empty:", err)
			db.Cache = CacheStruct{}
		} else {
			err := initDBFile(fileName)
			if err != nil {
				return nil, err
			}
			err = parseJSONFile(db.fileName, &db.Cache)
			if err != nil {
				return nil, err
			}
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*user.User{}
	}

	return &db, nil
}

// Persist serializes the whole store and overwrites the backing file.
// The in-memory state is not rolled back when the write fails, so memory
// and disk can diverge after a failure.
func (db *JSONDB) Persist(ctx context.Context) error {
	return writeToJSONFile(db.fileName, db.Cache)
}

// Ping reports the store as healthy; there is no connection to check.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close persists the store a final time.
func (db *JSONDB) Close() error {
	return db.Persist(context.Background())
}

// InsertUser places the user into the store under its ID.
func (db *JSONDB) InsertUser(ctx context.Context, usr *user.User) error {
	if usr.URLs == nil {
		usr.URLs = map[string]user.URLRecord{}
	}
	db.Cache.Users[usr.ID] = usr

	return nil
}

// GetUserByID looks the user up by ID.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	return usr, true, nil
}

// FindUserByEmail scans all users for an exact email match.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	for _, usr := range db.Cache.Users {
		if usr.Email == email {
			return usr, true, nil
		}
	}

	return nil, false, nil
}

// GetUserURLs returns the user's whole collection.
func (db *JSONDB) GetUserURLs(ctx context.Context, userID string) (map[string]user.URLRecord, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return map[string]user.URLRecord{}, nil
	}

	return usr.URLs, nil
}

// FindUserURL looks a short code up within the user's own collection only.
func (db *JSONDB) FindUserURL(ctx context.Context, userID, short string) (user.URLRecord, bool, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return user.URLRecord{}, false, nil
	}

	record, found := usr.URLs[short]

	return record, found, nil
}

// SaveUserURL inserts the record into the user's collection, overwriting
// any prior record under the same short code.
func (db *JSONDB) SaveUserURL(ctx context.Context, userID string, record user.URLRecord) error {
	usr, found := db.Cache.Users[userID]
	if !found {
		return fmt.Errorf("unknown user %q", userID)
	}

	if usr.URLs == nil {
		usr.URLs = map[string]user.URLRecord{}
	}
	usr.URLs[record.ShortCode] = record

	return nil
}

// DeleteUserURL removes the short code from the user's collection if present.
func (db *JSONDB) DeleteUserURL(ctx context.Context, userID, short string) error {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil
	}

	delete(usr.URLs, short)

	return nil
}

// GetNumberOfUsers returns the total amount of registered users.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return int64(len(db.Cache.Users)), nil
}

// GetNumberOfShortenedURLs returns the total amount of URLs over all users.
func (db *JSONDB) GetNumberOfShortenedURLs(ctx context.Context) (int64, error) {
	var total int64
	for _, usr := range db.Cache.Users {
		total += int64(len(usr.URLs))
	}

	return total, nil
}
