// Package service contains the business logic: registration and login,
// and the ownership-gated operations over each user's URL collection.
package service

import (
	"context"
	"strings"

	"github.com/OnyinyeO/Tinyapp/internal/logger"
	"github.com/OnyinyeO/Tinyapp/internal/user"
)

type userKeeper interface {
	InsertUser(ctx context.Context, usr *user.User) error
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	Persist(ctx context.Context) error
}

type keyGenerator interface {
	Generate() string
}

// triesToGenerateUniqueUserID bounds the retry loop for user id collisions.
const triesToGenerateUniqueUserID = 10

// Auth validates credentials and creates or locates user records.
// The caller is responsible for starting a session with the returned id.
type Auth struct {
	db   userKeeper
	keys keyGenerator
}

// NewAuth creates an Auth service over the given storage and id generator.
func NewAuth(db userKeeper, keys keyGenerator) *Auth {
	return &Auth{
		db:   db,
		keys: keys,
	}
}

// Register creates a new user with a bcrypt-hashed password and an empty URL
// collection. The email uniqueness check is case-insensitive: the email is
// lowercased before both the lookup and the stored record.
func (a *Auth) Register(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrEmptyCredentials
	}

	email = strings.ToLower(email)

	_, found, err := a.db.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if found {
		return "", ErrEmailTaken
	}

	usr := &user.User{
		Email: email,
		URLs:  map[string]user.URLRecord{},
	}
	if err := usr.SetPassword(password); err != nil {
		return "", err
	}

	usr.ID, err = a.generateUserID(ctx)
	if err != nil {
		return "", err
	}

	if err := a.db.InsertUser(ctx, usr); err != nil {
		return "", err
	}

	persist(ctx, a.db)

	return usr.ID, nil
}

// Login checks the credentials and returns the user's id.
// Any failure yields ErrInvalidCredentials; the password comparison happens
// inside the hashing library, never as plain string equality.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(email)

	usr, found, err := a.db.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvalidCredentials
	}

	if !usr.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}

	return usr.ID, nil
}

func (a *Auth) generateUserID(ctx context.Context) (string, error) {
	var userID string
	for i := 0; i < triesToGenerateUniqueUserID; i++ {
		userID = a.keys.Generate()
		_, found, err := a.db.GetUserByID(ctx, userID)
		if err != nil {
			return "", err
		}
		if !found {
			return userID, nil
		}
	}

	// The id space is large enough that this is effectively unreachable.
	return userID, nil
}

// persist flushes the store. Failures are logged and the in-memory state is
// kept as is, so memory and disk can diverge after repeated failures.
func persist(ctx context.Context, db interface {
	Persist(ctx context.Context) error
}) {
	if err := db.Persist(ctx); err != nil {
		logger.Log.Errorln("Error persisting the users store:", err)
	}
}
