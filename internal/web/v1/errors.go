package v1

import "github.com/gin-gonic/gin"

// Stable, machine-readable error kinds returned in the "kind" field of every
// error response.
const (
	KindInvalidRequest         = "InvalidRequest"
	KindEmailAlreadyRegistered = "EmailAlreadyRegistered"
	KindInvalidCredentials     = "InvalidCredentials"
	KindInvalidSignature       = "InvalidSignature"
	KindExpired                = "Expired"
	KindMalformed              = "Malformed"
	KindUnauthorized           = "Unauthorized"
	KindUpstreamUnavailable    = "UpstreamUnavailable"
	KindNoResultsFound         = "NoResultsFound"
	KindInternal               = "Internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func respondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, ErrorResponse{Error: message, Kind: kind})
}

func abortError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Kind: kind})
}
