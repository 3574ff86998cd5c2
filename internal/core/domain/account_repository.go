package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateEmail is returned by AccountRepository.Insert when another
// account already owns the email.
var ErrDuplicateEmail = errors.New("duplicate email")

// Account is a registered user. PasswordHash holds the hasher output; the
// plaintext password never reaches this layer.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository defines the data-access contract for accounts.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type AccountRepository interface {
	// FindByEmail returns the account with exactly this email.
	// Returns (nil, nil) when no account is found.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Insert creates an account and returns it with its assigned ID.
	// The uniqueness check and the write are a single atomic step;
	// a taken email yields ErrDuplicateEmail.
	Insert(ctx context.Context, name, email, passwordHash string) (*Account, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
