package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/internal/logger"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
)

// AnalyzeSentiment handles POST /sentiment. The returned mood can be passed
// straight to GET /playlist/:mood.
func (h *Handler) AnalyzeSentiment(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()

	var req domain.SentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		respondError(c, http.StatusBadRequest, KindInvalidRequest, "text is required")
		return
	}

	response, err := h.sentiment.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, logicv1.ErrInvalidInput) {
			respondError(c, http.StatusBadRequest, KindInvalidRequest, "text is required")
			return
		}
		span.RecordError(err)
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Sentiment analysis failed")
		respondError(c, http.StatusInternalServerError, KindInternal, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, response)
}
