package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/moodtunes-service/internal/catalog"
	"github.com/duynhne/moodtunes-service/internal/core/domain"
	"github.com/duynhne/moodtunes-service/middleware"
)

const (
	// DefaultMoodQuery is searched for moods missing from the table.
	DefaultMoodQuery = "Pop Up"

	// MaxPlaylistLimit is the largest page the catalog search accepts.
	MaxPlaylistLimit = 50

	defaultPlaylistLimit = 5
)

var moodQueries = map[string]string{
	"happy": "good vibes",
	"sad":   "melancolic songs",
	"party": "Nostalgic",
	"relax": "Relaxing Music",
}

// QueryForMood maps a mood keyword to its catalog search query. Matching
// ignores case and surrounding whitespace.
func QueryForMood(mood string) string {
	if q, ok := moodQueries[normalizeMood(mood)]; ok {
		return q
	}
	return DefaultMoodQuery
}

func normalizeMood(mood string) string {
	return strings.ToLower(strings.TrimSpace(mood))
}

// PlaylistCatalog searches a music catalog for playlists.
type PlaylistCatalog interface {
	SearchPlaylists(ctx context.Context, query string, limit int) ([]*catalog.PlaylistItem, error)
}

// PlaylistService resolves moods to catalog playlists.
type PlaylistService struct {
	catalog      PlaylistCatalog
	defaultLimit int
}

// NewPlaylistService creates a PlaylistService. A defaultLimit outside
// 1..MaxPlaylistLimit falls back to 5.
func NewPlaylistService(c PlaylistCatalog, defaultLimit int) *PlaylistService {
	if defaultLimit < 1 || defaultLimit > MaxPlaylistLimit {
		defaultLimit = defaultPlaylistLimit
	}
	return &PlaylistService{catalog: c, defaultLimit: defaultLimit}
}

// ForMood searches playlists for mood. A limit of 0 uses the service default.
func (s *PlaylistService) ForMood(ctx context.Context, mood string, limit int) (*domain.PlaylistResponse, error) {
	query := QueryForMood(mood)
	label := normalizeMood(mood)
	if _, ok := moodQueries[label]; !ok {
		label = "other"
	}

	ctx, span := middleware.StartSpan(ctx, "playlist.for_mood", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("mood", label),
		attribute.String("catalog.query", query),
	))
	defer span.End()

	playlists, err := s.search(ctx, span, label, query, limit)
	if err != nil {
		return nil, err
	}
	return &domain.PlaylistResponse{
		Mood:      normalizeMood(mood),
		Query:     query,
		Playlists: playlists,
	}, nil
}

// Search runs a free-text playlist search. A limit of 0 uses the service
// default.
func (s *PlaylistService) Search(ctx context.Context, query string, limit int) (*domain.PlaylistSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: query is required: %w", ErrInvalidInput)
	}

	ctx, span := middleware.StartSpan(ctx, "playlist.search", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("catalog.query", query),
	))
	defer span.End()

	playlists, err := s.search(ctx, span, "search", query, limit)
	if err != nil {
		return nil, err
	}
	return &domain.PlaylistSearchResponse{Query: query, Playlists: playlists}, nil
}

func (s *PlaylistService) search(ctx context.Context, span trace.Span, label, query string, limit int) ([]domain.Playlist, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxPlaylistLimit {
		limit = MaxPlaylistLimit
	}

	items, err := s.catalog.SearchPlaylists(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		recordPlaylist(label, "upstream_unavailable")
		if errors.Is(err, catalog.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search %q: %w: %w", query, ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("search %q: %w: %v", query, ErrUpstreamUnavailable, err)
	}

	playlists := reshapePlaylists(items)
	span.SetAttributes(attribute.Int("playlists.count", len(playlists)))
	if len(playlists) == 0 {
		recordPlaylist(label, "no_results")
		return nil, fmt.Errorf("search %q: %w", query, ErrNoResultsFound)
	}

	recordPlaylist(label, "success")
	return playlists, nil
}

// reshapePlaylists drops null and incomplete items and keeps the first image.
// The owner name is empty when the catalog omits it.
func reshapePlaylists(items []*catalog.PlaylistItem) []domain.Playlist {
	out := make([]domain.Playlist, 0, len(items))
	for _, item := range items {
		if item == nil || item.Name == "" {
			continue
		}
		link := item.ExternalURLs["spotify"]
		if link == "" {
			continue
		}

		var image string
		if len(item.Images) > 0 {
			image = item.Images[0].URL
		}
		var owner string
		if item.Owner != nil {
			owner = item.Owner.DisplayName
		}
		out = append(out, domain.Playlist{
			Name:        item.Name,
			ExternalURL: link,
			ImageURL:    image,
			Owner:       owner,
		})
	}
	return out
}
