package v1_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/internal/core/repository"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
)

func newAuthService(accounts domain.AccountRepository) (*logicv1.AuthService, *logicv1.TokenService) {
	tokens := logicv1.NewTokenService(testSecret, testIssuer)
	return logicv1.NewAuthService(accounts, logicv1.NewBcryptHasher(bcrypt.MinCost), tokens), tokens
}

func TestAuthService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(repository.NewMemoryAccountRepository())

	resp, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	assert.ErrorIs(t, err, logicv1.ErrEmailAlreadyRegistered)

	tok, err := svc.Authenticate(ctx, "ana@x.com", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)

	account, err := svc.ResolveIdentity(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Ana", account.Name)
	assert.Equal(t, "ana@x.com", account.Email)

	_, err = svc.Authenticate(ctx, "ana@x.com", "wrong")
	assert.ErrorIs(t, err, logicv1.ErrInvalidCredentials)
}

func TestAuthService_Register_StoresHashNotPlaintext(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAccountRepository()
	svc, _ := newAuthService(repo)

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	require.NoError(t, err)

	stored, err := repo.FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p1")))
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc, _ := newAuthService(repository.NewMemoryAccountRepository())

	for _, req := range []domain.RegisterRequest{
		{Name: "", Email: "a@x.com", Password: "p"},
		{Name: "A", Email: " ", Password: "p"},
		{Name: "A", Email: "a@x.com", Password: ""},
	} {
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, logicv1.ErrInvalidInput, "%+v", req)
	}
}

func TestAuthService_Register_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newAuthService(repository.NewMemoryAccountRepository())
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, logicv1.ErrEmailAlreadyRegistered) {
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)
}

// racyRepo passes the lookup for every caller, as two requests racing past
// FindByEmail would, and relies on Insert to reject the duplicate.
type racyRepo struct {
	*repository.MemoryAccountRepository
}

func (racyRepo) FindByEmail(context.Context, string) (*domain.Account, error) { return nil, nil }

func TestAuthService_Register_DuplicateCaughtByStore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(racyRepo{repository.NewMemoryAccountRepository()})

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	assert.ErrorIs(t, err, logicv1.ErrEmailAlreadyRegistered)
}

func TestAuthService_Authenticate_NoEnumeration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(repository.NewMemoryAccountRepository())
	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(ctx, "ana@x.com", "nope")
	_, unknownEmail := svc.Authenticate(ctx, "ghost@x.com", "p1")

	require.ErrorIs(t, wrongPassword, logicv1.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, logicv1.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

type stubRepo struct {
	account *domain.Account
	findErr error
}

func (s stubRepo) FindByEmail(context.Context, string) (*domain.Account, error) {
	return s.account, s.findErr
}

func (s stubRepo) Insert(context.Context, string, string, string) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func (s stubRepo) Ping(context.Context) error { return nil }

func TestAuthService_Authenticate_CorruptHash(t *testing.T) {
	svc, _ := newAuthService(stubRepo{account: &domain.Account{Name: "Ana", Email: "ana@x.com", PasswordHash: "garbage"}})

	_, err := svc.Authenticate(context.Background(), "ana@x.com", "p1")
	assert.ErrorIs(t, err, logicv1.ErrInvalidCredentials)
}

func TestAuthService_StoreErrorsAreNotCredentialErrors(t *testing.T) {
	svc, _ := newAuthService(stubRepo{findErr: errors.New("db down")})

	_, err := svc.Authenticate(context.Background(), "ana@x.com", "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, logicv1.ErrInvalidCredentials)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "p1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, logicv1.ErrEmailAlreadyRegistered)
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("account missing for valid token", func(t *testing.T) {
		svc, tokens := newAuthService(repository.NewMemoryAccountRepository())
		tok, err := tokens.Issue("deleted@x.com", time.Minute)
		require.NoError(t, err)

		_, err = svc.ResolveIdentity(ctx, tok)
		assert.ErrorIs(t, err, logicv1.ErrUnauthorized)
	})

	t.Run("token failures propagate their kind", func(t *testing.T) {
		repo := repository.NewMemoryAccountRepository()
		svc, _ := newAuthService(repo)

		_, err := svc.ResolveIdentity(ctx, "garbage")
		assert.ErrorIs(t, err, logicv1.ErrTokenMalformed)

		foreign := logicv1.NewTokenService([]byte("other"), testIssuer)
		tok, err := foreign.Issue("ana@x.com", time.Minute)
		require.NoError(t, err)
		_, err = svc.ResolveIdentity(ctx, tok)
		assert.ErrorIs(t, err, logicv1.ErrTokenInvalidSignature)

		past := &fakeClock{now: time.Now().Add(-time.Hour)}
		stale := logicv1.NewTokenService(testSecret, testIssuer, logicv1.WithClock(past.Now))
		tok, err = stale.Issue("ana@x.com", time.Minute)
		require.NoError(t, err)
		_, err = svc.ResolveIdentity(ctx, tok)
		assert.ErrorIs(t, err, logicv1.ErrTokenExpired)
	})
}
