// Package storage defines auth persistence contracts.
package storage

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/services/auth/user"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrEmailTaken indicates the email unique constraint was violated.
var ErrEmailTaken = errors.New(errors.CodeDuplicateEmail, "email is already registered")

// Credential pairs a user identity with its stored password hash.
//
// The hash only ever travels between the store and the credential verifier.
type Credential struct {
	User         user.User
	PasswordHash string
}

// UserStore persists auth user records.
type UserStore interface {
	// PutUser inserts a new user with its password hash. Returns ErrEmailTaken
	// when the normalized email already exists.
	PutUser(ctx context.Context, u user.User, passwordHash string) error
	// GetUser fetches a user record by id. Returns ErrNotFound when absent.
	GetUser(ctx context.Context, userID string) (user.User, error)
	// GetCredential fetches a user and its password hash by normalized email.
	// Returns ErrNotFound when the email is unknown.
	GetCredential(ctx context.Context, email string) (Credential, error)
	// DeleteUser removes a user; owned tasks cascade at the schema level.
	// Returns ErrNotFound when no row matched.
	DeleteUser(ctx context.Context, userID string) error
	// CountUsers reports the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}
