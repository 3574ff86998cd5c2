package v1

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonreiter/govader"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/middleware"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Compound scores inside (-sentimentThreshold, sentimentThreshold) are neutral.
// 0.05 is the cut-off the VADER authors recommend.
const sentimentThreshold = 0.05

var sentimentMoods = map[string]string{
	SentimentPositive: "happy",
	SentimentNegative: "sad",
	SentimentNeutral:  "relax",
}

// SentimentService scores the polarity of free text with the VADER lexicon
// and maps the result onto a mood of the playlist table. Safe for concurrent
// use: the analyzer only reads its lexicon after construction.
type SentimentService struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewSentimentService loads the lexicon. Call once at startup.
func NewSentimentService() *SentimentService {
	return &SentimentService{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze returns the compound polarity in [-1, 1], its label and the mood.
func (s *SentimentService) Analyze(ctx context.Context, text string) (*domain.SentimentResponse, error) {
	_, span := middleware.StartSpan(ctx, "sentiment.analyze", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if strings.TrimSpace(text) == "" {
		recordSentiment("invalid_input")
		return nil, fmt.Errorf("analyze: text is required: %w", ErrInvalidInput)
	}

	polarity := s.analyzer.PolarityScores(text).Compound
	label := sentimentLabel(polarity)

	span.SetAttributes(
		attribute.Float64("sentiment.polarity", polarity),
		attribute.String("sentiment.label", label),
	)
	recordSentiment(label)

	return &domain.SentimentResponse{
		Polarity:  polarity,
		Sentiment: label,
		Mood:      sentimentMoods[label],
	}, nil
}

func sentimentLabel(polarity float64) string {
	switch {
	case polarity >= sentimentThreshold:
		return SentimentPositive
	case polarity <= -sentimentThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
