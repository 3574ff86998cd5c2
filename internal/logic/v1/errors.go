// Package v1 provides the account, session-token and playlist business logic
// for API version 1.
//
// Error Handling:
// This package defines sentinel errors for every failure a caller can act on.
// They are wrapped with context using fmt.Errorf("%w") when returned from
// business logic methods, and classified with errors.Is in handlers.
//
// Example Usage:
//
//	if account == nil {
//	    return nil, fmt.Errorf("authenticate %q: %w", email, ErrInvalidCredentials)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	case errors.Is(err, logicv1.ErrTokenExpired):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Account errors.
var (
	// ErrInvalidInput indicates a required field is empty.
	// HTTP Status: 400 Bad Request
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmailAlreadyRegistered indicates another account owns the email.
	// HTTP Status: 400 Bad Request
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates a valid token whose account no longer resolves.
	// HTTP Status: 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")
)

// Password hasher errors.
var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// ErrInvalidHash indicates a stored hash that cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")
)

// Token errors. All map to 401 Unauthorized.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")

	// ErrInvalidTTL is returned by Issue for a non-positive lifetime.
	ErrInvalidTTL = errors.New("token ttl must be positive")
)

// Playlist errors.
var (
	// ErrUpstreamUnavailable indicates the catalog could not be reached, timed
	// out, or answered with an error.
	// HTTP Status: 502 Bad Gateway
	ErrUpstreamUnavailable = errors.New("upstream catalog unavailable")

	// ErrNoResultsFound indicates the catalog returned no usable playlists.
	// HTTP Status: 404 Not Found
	ErrNoResultsFound = errors.New("no playlists found")
)
