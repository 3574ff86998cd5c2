package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/internal/logger"
	"github.com/duynhne/moodtunes-service/middleware"
)

// AuthService implements registration, authentication and identity
// resolution. It depends on the account repository, the password hasher and
// the token manager (all injected via constructor) and MUST NOT access the
// database directly.
type AuthService struct {
	accounts domain.AccountRepository
	hasher   PasswordHasher
	tokens   TokenManager
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(accounts domain.AccountRepository, hasher PasswordHasher, tokens TokenManager) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates an account. It does not issue a token.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		recordAuth("register", "invalid_input")
		return nil, fmt.Errorf("register: name, email and password are required: %w", ErrInvalidInput)
	}

	existing, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		recordAuth("register", "error")
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("registration.success", false))
		recordAuth("register", "duplicate")
		return nil, fmt.Errorf("register %q: %w", req.Email, ErrEmailAlreadyRegistered)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) || errors.Is(err, ErrPasswordTooLong) {
			recordAuth("register", "invalid_input")
			return nil, fmt.Errorf("register: %w: %w", ErrInvalidInput, err)
		}
		span.RecordError(err)
		recordAuth("register", "error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The store enforces uniqueness atomically, so a concurrent registration
	// that passed the lookup above still fails here.
	account, err := s.accounts.Insert(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			span.SetAttributes(attribute.Bool("registration.success", false))
			recordAuth("register", "duplicate")
			return nil, fmt.Errorf("register %q: %w", req.Email, ErrEmailAlreadyRegistered)
		}
		span.RecordError(err)
		recordAuth("register", "error")
		return nil, fmt.Errorf("insert account: %w", err)
	}

	span.SetAttributes(
		attribute.String("account.id", account.ID.String()),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("account.registered")
	recordAuth("register", "success")

	return &domain.RegisterResponse{Message: "Account registered successfully"}, nil
}

// Authenticate verifies credentials and issues a session token. An unknown
// email and a wrong password produce the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.authenticate", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		recordAuth("authenticate", "error")
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		recordAuth("authenticate", "invalid_credentials")
		return nil, fmt.Errorf("authenticate: %w", ErrInvalidCredentials)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		// A corrupt stored hash must look like any other failed login.
		logger.FromContext(ctx).Error().Err(err).
			Str("account_id", account.ID.String()).
			Msg("Stored password hash is unreadable")
		span.RecordError(err)
	}
	if !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		recordAuth("authenticate", "invalid_credentials")
		return nil, fmt.Errorf("authenticate: %w", ErrInvalidCredentials)
	}

	token, err := s.tokens.IssueDefault(account.Email)
	if err != nil {
		span.RecordError(err)
		recordAuth("authenticate", "error")
		return nil, fmt.Errorf("issue token: %w", err)
	}

	span.SetAttributes(
		attribute.String("account.id", account.ID.String()),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("account.authenticated")
	recordAuth("authenticate", "success")

	return &domain.TokenResponse{AccessToken: token, TokenType: TokenType}, nil
}

// ResolveIdentity returns the account a session token belongs to. Token
// failures keep their kind (malformed, invalid signature, expired).
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.Account, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.resolve_identity", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	subject, err := s.tokens.Verify(token)
	if err != nil {
		span.SetAttributes(attribute.Bool("token.valid", false))
		recordAuth("resolve_identity", "invalid_token")
		return nil, fmt.Errorf("verify token: %w", err)
	}

	account, err := s.accounts.FindByEmail(ctx, subject)
	if err != nil {
		span.RecordError(err)
		recordAuth("resolve_identity", "error")
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil {
		span.SetAttributes(attribute.Bool("token.valid", true), attribute.Bool("account.found", false))
		recordAuth("resolve_identity", "unauthorized")
		return nil, fmt.Errorf("resolve subject: %w", ErrUnauthorized)
	}

	span.SetAttributes(
		attribute.String("account.id", account.ID.String()),
		attribute.Bool("token.valid", true),
	)
	recordAuth("resolve_identity", "success")

	return account, nil
}
