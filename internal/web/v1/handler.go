package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/internal/logger"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
	"github.com/duynhne/moodtunes-service/middleware"
)

// accountKey is the gin context key under which Authenticated stores the
// resolved *domain.Account.
const accountKey = "account"

// Handler groups HTTP handlers for the v1 API.
// Dependencies are injected via the constructor.
type Handler struct {
	auth      *logicv1.AuthService
	playlists *logicv1.PlaylistService
	sentiment *logicv1.SentimentService
}

// NewHandler creates a new Handler.
func NewHandler(auth *logicv1.AuthService, playlists *logicv1.PlaylistService, sentiment *logicv1.SentimentService) *Handler {
	return &Handler{auth: auth, playlists: playlists, sentiment: sentiment}
}

// RegisterRoutes registers all v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/token", h.Token)
	rg.GET("/me", h.Authenticated(), h.GetMe)
	rg.GET("/playlist/:mood", h.GetPlaylist)
	rg.GET("/playlists", h.SearchPlaylists)
	rg.POST("/sentiment", h.AnalyzeSentiment)
}

// startRequestSpan starts the web-layer span and rebinds the request context
// to it so the logic layer spans nest underneath.
func startRequestSpan(c *gin.Context) trace.Span {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
	c.Request = c.Request.WithContext(ctx)
	return span
}

// Register handles POST /register.
func (h *Handler) Register(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		log.Warn().Err(err).Msg("Invalid register request")
		respondError(c, http.StatusBadRequest, KindInvalidRequest, "Invalid request body")
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, logicv1.ErrEmailAlreadyRegistered):
			log.Info().Msg("Registration rejected: email already registered")
			respondError(c, http.StatusBadRequest, KindEmailAlreadyRegistered, "Email already registered")
		case errors.Is(err, logicv1.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, KindInvalidRequest, "Name, email and password are required")
		default:
			log.Error().Err(err).Msg("Registration failed")
			respondError(c, http.StatusInternalServerError, KindInternal, "Internal server error")
		}
		return
	}

	log.Info().Msg("Registration successful")
	c.JSON(http.StatusCreated, response)
}

// Token handles POST /token (login). The body is form-encoded with the email
// in the username field.
func (h *Handler) Token(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.TokenRequest
	if err := c.ShouldBindWith(&req, binding.FormPost); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		respondError(c, http.StatusBadRequest, KindInvalidRequest, "username and password form fields are required")
		return
	}

	response, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, logicv1.ErrInvalidCredentials) {
			log.Info().Msg("Login rejected")
			c.Header("WWW-Authenticate", "Bearer")
			respondError(c, http.StatusUnauthorized, KindInvalidCredentials, "Invalid credentials")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		respondError(c, http.StatusInternalServerError, KindInternal, "Internal server error")
		return
	}

	log.Info().Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Authenticated resolves the bearer token into an account and aborts with
// 401 when that fails.
func (h *Handler) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			abortError(c, http.StatusUnauthorized, KindUnauthorized, "Bearer token required")
			return
		}

		account, err := h.auth.ResolveIdentity(ctx, token)
		if err != nil {
			kind, known := tokenErrorKind(err)
			if known {
				logger.FromContext(ctx).Warn().Str("kind", kind).Msg("Token rejected")
			} else {
				logger.FromContext(ctx).Error().Err(err).Msg("Identity lookup failed")
			}
			c.Header("WWW-Authenticate", "Bearer")
			abortError(c, http.StatusUnauthorized, kind, "Could not validate credentials")
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// GetMe handles GET /me.
func (h *Handler) GetMe(c *gin.Context) {
	account, ok := c.MustGet(accountKey).(*domain.Account)
	if !ok {
		respondError(c, http.StatusUnauthorized, KindUnauthorized, "Could not validate credentials")
		return
	}
	c.JSON(http.StatusOK, domain.MeResponse{Name: account.Name, Email: account.Email})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// tokenErrorKind maps an identity failure to its error kind. Unknown
// failures (store errors) are reported as Unauthorized with known=false.
func tokenErrorKind(err error) (kind string, known bool) {
	switch {
	case errors.Is(err, logicv1.ErrTokenExpired):
		return KindExpired, true
	case errors.Is(err, logicv1.ErrTokenInvalidSignature):
		return KindInvalidSignature, true
	case errors.Is(err, logicv1.ErrTokenMalformed):
		return KindMalformed, true
	case errors.Is(err, logicv1.ErrUnauthorized):
		return KindUnauthorized, true
	default:
		return KindUnauthorized, false
	}
}
