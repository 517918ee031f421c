// Package app orchestrates credential registration, verification, and
// identity lookup.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/id"
	"github.com/taskdeck/taskdeck/internal/services/auth/storage"
	"github.com/taskdeck/taskdeck/internal/services/auth/token"
	"github.com/taskdeck/taskdeck/internal/services/auth/user"
)

// ErrInvalidCredential indicates login failed.
//
// Unknown email and wrong password share this one error so responses carry no
// account-enumeration signal.
var ErrInvalidCredential = apperrors.New(apperrors.CodeInvalidCredential, "invalid email or password")

// Config defines the inputs for the auth service.
type Config struct {
	Store  storage.UserStore
	Tokens *token.Service
	// BcryptCost tunes the password hashing work factor; bcrypt.DefaultCost
	// when zero.
	BcryptCost int
	// Now overrides the clock for tests.
	Now func() time.Time
	// NewID overrides id generation for tests.
	NewID func() (string, error)
}

// Service implements registration, login, and identity lookup.
type Service struct {
	store      storage.UserStore
	tokens     *token.Service
	bcryptCost int
	dummyHash  []byte
	now        func() time.Time
	newID      func() (string, error)
}

// New builds an auth service from config.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// The dummy hash keeps the unknown-email login path as expensive as a
	// real compare, closing the timing oracle between the two failures.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("taskdeck-no-such-credential"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:      cfg.Store,
		tokens:     cfg.Tokens,
		bcryptCost: cost,
		dummyHash:  dummyHash,
		now:        now,
		newID:      newID,
	}, nil
}

// Register creates a new user from untrusted registration input.
//
// The returned identity never includes the password hash.
func (s *Service) Register(ctx context.Context, input user.Registration) (user.User, error) {
	created, err := user.NewUser(input, s.now, s.newID)
	if err != nil {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.PutUser(ctx, created, string(hash)); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return user.User{}, storage.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("persist user: %w", err)
	}
	return created, nil
}

// Login verifies a credential pair and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, user.User, error) {
	email = user.NormalizeEmail(email)
	if err := user.ValidateEmail(email); err != nil {
		return "", user.User{}, err
	}
	if password == "" {
		return "", user.User{}, apperrors.New(apperrors.CodeValidation, "password is required")
	}

	credential, err := s.store.GetCredential(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a compare against the dummy hash so this path costs the
			// same as a wrong password.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", user.User{}, ErrInvalidCredential
		}
		return "", user.User{}, fmt.Errorf("look up credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return "", user.User{}, ErrInvalidCredential
	}

	signed, err := s.tokens.Issue(credential.User.ID, credential.User.Email)
	if err != nil {
		return "", user.User{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, credential.User, nil
}

// Identity fetches the identity for a verified user id.
func (s *Service) Identity(ctx context.Context, userID string) (user.User, error) {
	found, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return found, nil
}

// DeleteAccount removes a user; owned tasks cascade at the schema level.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
