package service

import "errors"

// The error taxonomy of the core. All of these are recoverable at the
// request boundary; the router maps them to HTTP status codes.
var (
	// ErrEmptyCredentials is returned when the email or the password is empty.
	ErrEmptyCredentials = errors.New("email and password cannot be empty")

	// ErrEmailTaken is returned when a user with the same email already exists.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials is returned on any login failure: unknown email,
	// missing stored hash or wrong password. The message never reveals which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned when the session user id resolves to no stored user.
	ErrUnauthorized = errors.New("no user resolves from the session")

	// ErrNotFound is returned when a short code is absent
	// from the requesting user's own collection.
	ErrNotFound = errors.New("short code not found")
)
