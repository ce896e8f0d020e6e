package services

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email and for
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("email or password is invalid")
	// ErrInvalidToken is returned when a session token is malformed, expired
	// or no longer held by any account.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// Ownership mismatches are reported as not found so that callers cannot
	// probe for resources owned by somebody else.
	ErrPostNotFound    = errors.New("post is not found")
	ErrCommentNotFound = errors.New("comment is not found")
)
