package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
)

// pgxPool is the subset of *pgxpool.Pool used by the repository. It is
// satisfied by pgxmock pools in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT accounts_email_key UNIQUE (email)
)`

// emailUniqueConstraint names the constraint whose violation means the email
// is taken. Other unique violations (a primary key collision) are plain errors.
const emailUniqueConstraint = "accounts_email_key"

// PgxAccountRepository implements domain.AccountRepository using pgx.
// Email uniqueness is enforced by the accounts.email UNIQUE constraint.
type PgxAccountRepository struct {
	pool pgxPool
}

// NewAccountRepository creates a new PgxAccountRepository.
func NewAccountRepository(pool pgxPool) *PgxAccountRepository {
	return &PgxAccountRepository{pool: pool}
}

// EnsureSchema creates the accounts table when it does not exist.
func (r *PgxAccountRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, accountsSchema); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

// FindByEmail returns the account matching the given email.
// Returns (nil, nil) when no account is found.
func (r *PgxAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT id::text, name, email, password_hash, created_at FROM accounts WHERE email = $1`

	var (
		id      string
		account domain.Account
	)
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&id, &account.Name, &account.Email, &account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select account: %w", err)
	}

	account.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse account id %q: %w", id, err)
	}
	account.CreatedAt = account.CreatedAt.UTC()

	return &account, nil
}

// Insert creates a new account. A unique violation on email is reported as
// domain.ErrDuplicateEmail.
func (r *PgxAccountRepository) Insert(ctx context.Context, name, email, passwordHash string) (*domain.Account, error) {
	query := `INSERT INTO accounts (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`

	account := &domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := r.pool.Exec(ctx, query,
		account.ID.String(), account.Name, account.Email, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation &&
			pgErr.ConstraintName == emailUniqueConstraint {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

// Ping checks database connectivity.
func (r *PgxAccountRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
