package v1_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/moodtunes-service/internal/catalog"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
)

type stubCatalog struct {
	items    []*catalog.PlaylistItem
	err      error
	gotQuery string
	gotLimit int
}

func (s *stubCatalog) SearchPlaylists(_ context.Context, query string, limit int) ([]*catalog.PlaylistItem, error) {
	s.gotQuery, s.gotLimit = query, limit
	return s.items, s.err
}

func TestQueryForMood(t *testing.T) {
	tests := map[string]string{
		"happy":   "good vibes",
		"sad":     "melancolic songs",
		"party":   "Nostalgic",
		"relax":   "Relaxing Music",
		"HAPPY":   "good vibes",
		" relax ": "Relaxing Music",
		"angry":   "Pop Up",
		"":        "Pop Up",
	}
	for mood, want := range tests {
		assert.Equal(t, want, logicv1.QueryForMood(mood), "mood %q", mood)
	}
}

func TestPlaylistService_ForMood(t *testing.T) {
	stub := &stubCatalog{items: []*catalog.PlaylistItem{
		{
			Name:         "Good Vibes",
			ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/1"},
			Images:       []catalog.Image{{URL: "https://img/1"}, {URL: "https://img/1-small"}},
		},
		nil,
		{Name: "", ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/2"}},
		{Name: "No link"},
		{Name: "No image", ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/3"}},
	}}
	svc := logicv1.NewPlaylistService(stub, 5)

	resp, err := svc.ForMood(context.Background(), "Happy", 0)
	require.NoError(t, err)

	assert.Equal(t, "good vibes", stub.gotQuery)
	assert.Equal(t, 5, stub.gotLimit)
	assert.Equal(t, "happy", resp.Mood)
	assert.Equal(t, "good vibes", resp.Query)
	require.Len(t, resp.Playlists, 2)
	assert.Equal(t, "Good Vibes", resp.Playlists[0].Name)
	assert.Equal(t, "https://img/1", resp.Playlists[0].ImageURL)
	assert.Equal(t, "No image", resp.Playlists[1].Name)
	assert.Empty(t, resp.Playlists[1].ImageURL)
}

func TestPlaylistService_Limit(t *testing.T) {
	stub := &stubCatalog{items: []*catalog.PlaylistItem{
		{Name: "x", ExternalURLs: map[string]string{"spotify": "u"}},
	}}

	_, err := logicv1.NewPlaylistService(stub, 0).ForMood(context.Background(), "sad", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, stub.gotLimit, "invalid default falls back to 5")

	_, err = logicv1.NewPlaylistService(stub, 5).ForMood(context.Background(), "sad", 500)
	require.NoError(t, err)
	assert.Equal(t, logicv1.MaxPlaylistLimit, stub.gotLimit)
}

func TestPlaylistService_Errors(t *testing.T) {
	t.Run("zero results", func(t *testing.T) {
		svc := logicv1.NewPlaylistService(&stubCatalog{}, 5)
		_, err := svc.ForMood(context.Background(), "happy", 0)
		assert.ErrorIs(t, err, logicv1.ErrNoResultsFound)
	})

	t.Run("only unusable items", func(t *testing.T) {
		svc := logicv1.NewPlaylistService(&stubCatalog{items: []*catalog.PlaylistItem{nil, {Name: "x"}}}, 5)
		_, err := svc.ForMood(context.Background(), "happy", 0)
		assert.ErrorIs(t, err, logicv1.ErrNoResultsFound)
	})

	t.Run("catalog timeout", func(t *testing.T) {
		upstream := fmt.Errorf("%w: search: %w", catalog.ErrUnavailable, context.DeadlineExceeded)
		svc := logicv1.NewPlaylistService(&stubCatalog{err: upstream}, 5)
		_, err := svc.ForMood(context.Background(), "happy", 0)
		assert.ErrorIs(t, err, logicv1.ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("unknown catalog error", func(t *testing.T) {
		svc := logicv1.NewPlaylistService(&stubCatalog{err: errors.New("weird")}, 5)
		_, err := svc.ForMood(context.Background(), "happy", 0)
		assert.ErrorIs(t, err, logicv1.ErrUpstreamUnavailable)
	})
}

func TestPlaylistService_Search(t *testing.T) {
	stub := &stubCatalog{items: []*catalog.PlaylistItem{
		{
			Name:         "Lo-fi Beats",
			ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/9"},
			Owner:        &catalog.Owner{DisplayName: "chillhop"},
		},
		{Name: "Anonymous", ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/playlist/10"}},
	}}
	svc := logicv1.NewPlaylistService(stub, 5)

	resp, err := svc.Search(context.Background(), "  lofi  ", 0)
	require.NoError(t, err)
	assert.Equal(t, "lofi", stub.gotQuery)
	assert.Equal(t, 5, stub.gotLimit)
	assert.Equal(t, "lofi", resp.Query)
	require.Len(t, resp.Playlists, 2)
	assert.Equal(t, "chillhop", resp.Playlists[0].Owner)
	assert.Empty(t, resp.Playlists[1].Owner)

	t.Run("blank query", func(t *testing.T) {
		stub := &stubCatalog{}
		_, err := logicv1.NewPlaylistService(stub, 5).Search(context.Background(), "   ", 0)
		assert.ErrorIs(t, err, logicv1.ErrInvalidInput)
		assert.Empty(t, stub.gotQuery, "catalog must not be called")
	})

	t.Run("errors map like mood lookups", func(t *testing.T) {
		_, err := logicv1.NewPlaylistService(&stubCatalog{}, 5).Search(context.Background(), "x", 0)
		assert.ErrorIs(t, err, logicv1.ErrNoResultsFound)

		_, err = logicv1.NewPlaylistService(&stubCatalog{err: catalog.ErrUnavailable}, 5).Search(context.Background(), "x", 0)
		assert.ErrorIs(t, err, logicv1.ErrUpstreamUnavailable)
	})
}
