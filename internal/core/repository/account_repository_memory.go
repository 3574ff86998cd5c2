package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
)

// MemoryAccountRepository is an in-process domain.AccountRepository used
// when no database is configured. Data is lost on restart.
type MemoryAccountRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
}

// NewMemoryAccountRepository creates an empty MemoryAccountRepository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{byEmail: make(map[string]domain.Account)}
}

// FindByEmail returns a copy of the stored account, or (nil, nil).
func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

// Insert checks and writes under one lock.
func (r *MemoryAccountRepository) Insert(_ context.Context, name, email, passwordHash string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrDuplicateEmail
	}

	account := domain.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byEmail[email] = account

	return &account, nil
}

// Ping always succeeds.
func (r *MemoryAccountRepository) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored accounts.
func (r *MemoryAccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
