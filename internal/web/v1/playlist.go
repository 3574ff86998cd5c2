package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/moodtunes-service/internal/logger"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
)

// GetPlaylist handles GET /playlist/:mood with an optional ?limit=1..50.
func (h *Handler) GetPlaylist(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()

	limit, ok := playlistLimit(c, span)
	if !ok {
		return
	}

	response, err := h.playlists.ForMood(c.Request.Context(), c.Param("mood"), limit)
	if err != nil {
		respondPlaylistError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// SearchPlaylists handles GET /playlists?query=<text> with an optional
// ?limit=1..50.
func (h *Handler) SearchPlaylists(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()

	limit, ok := playlistLimit(c, span)
	if !ok {
		return
	}

	response, err := h.playlists.Search(c.Request.Context(), c.Query("query"), limit)
	if err != nil {
		if errors.Is(err, logicv1.ErrInvalidInput) {
			span.SetAttributes(attribute.Bool("request.valid", false))
			respondError(c, http.StatusBadRequest, KindInvalidRequest, "query parameter is required")
			return
		}
		respondPlaylistError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// playlistLimit reads ?limit. Zero means the service default. It writes a 400
// and returns false when the value is not an integer in 1..50.
func playlistLimit(c *gin.Context, span trace.Span) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > logicv1.MaxPlaylistLimit {
		span.SetAttributes(attribute.Bool("request.valid", false))
		respondError(c, http.StatusBadRequest, KindInvalidRequest, "limit must be an integer between 1 and 50")
		return 0, false
	}
	return n, true
}

func respondPlaylistError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	log := logger.FromContext(c.Request.Context())
	switch {
	case errors.Is(err, logicv1.ErrNoResultsFound):
		respondError(c, http.StatusNotFound, KindNoResultsFound, "No playlists found")
	case errors.Is(err, logicv1.ErrUpstreamUnavailable):
		log.Warn().Err(err).Msg("Catalog unavailable")
		respondError(c, http.StatusBadGateway, KindUpstreamUnavailable, "Music catalog unavailable, try again later")
	default:
		log.Error().Err(err).Msg("Playlist lookup failed")
		respondError(c, http.StatusInternalServerError, KindInternal, "Internal server error")
	}
}
