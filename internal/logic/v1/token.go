package v1

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the token_type returned alongside every access token.
const TokenType = "bearer"

// DefaultTokenTTL applies when no lifetime is configured.
const DefaultTokenTTL = 30 * time.Minute

var signingMethod = jwt.SigningMethodHS256

// TokenManager issues and verifies session tokens.
type TokenManager interface {
	Issue(subject string, ttl time.Duration) (string, error)
	IssueDefault(subject string) (string, error)
	Verify(token string) (string, error)
}

// TokenService issues and verifies HS256-signed JWTs. The secret, issuer and
// clock are fixed at construction.
type TokenService struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
	now        func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for iat, exp and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithDefaultTTL overrides DefaultTokenTTL. Non-positive values are ignored.
func WithDefaultTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret []byte, issuer string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:     secret,
		issuer:     issuer,
		defaultTTL: DefaultTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for subject that expires ttl from now.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("issue token: %w", ErrInvalidTTL)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueDefault signs a token with the default lifetime.
func (s *TokenService) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, s.defaultTTL)
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// subject claim unchanged.
func (s *TokenService) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", classifyTokenError(err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("missing subject: %w", ErrTokenMalformed)
	}
	return claims.Subject, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		// A foreign issuer parses fine but is not ours to trust.
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
