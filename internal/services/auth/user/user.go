// Package user provides the auth user model.
package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/id"
)

var (
	// ErrEmptyEmail indicates a missing email address.
	ErrEmptyEmail = apperrors.New(apperrors.CodeValidation, "email is required")
	// ErrInvalidEmail indicates an email that does not match the required format.
	ErrInvalidEmail = apperrors.New(apperrors.CodeValidation, "email is not a valid address")
	// ErrPasswordTooShort indicates a password below the minimum length.
	ErrPasswordTooShort = apperrors.New(apperrors.CodeValidation, "password must be at least 8 characters")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// MinPasswordLength is the smallest accepted password length.
const MinPasswordLength = 8

// User represents an authenticated identity record.
//
// The password hash is deliberately absent: it never leaves the storage
// layer.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration describes the input needed to create a user.
type Registration struct {
	Email    string
	Password string
	Name     string
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail enforces the canonical email format.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeRegistration trims and normalizes input before validation.
func NormalizeRegistration(input Registration) (Registration, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := ValidateEmail(input.Email); err != nil {
		return Registration{}, err
	}
	if len(input.Password) < MinPasswordLength {
		return Registration{}, ErrPasswordTooShort
	}
	input.Name = strings.TrimSpace(input.Name)
	return input, nil
}

// NewUser creates a durable user identity from validated input.
//
// This is the canonical point where untrusted registration data becomes a
// stable identity; ownership of every task refers back to the id minted here.
func NewUser(input Registration, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeRegistration(input)
	if err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:        userID,
		Email:     normalized.Email,
		Name:      normalized.Name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}
