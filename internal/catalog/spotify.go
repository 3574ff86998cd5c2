// Package catalog is a minimal Spotify Web API client: app-only
// (client-credentials) authentication and playlist search.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnavailable wraps every failure to reach or understand the catalog.
	ErrUnavailable = errors.New("catalog unavailable")

	// ErrMissingCredentials is returned when no client id/secret is configured.
	ErrMissingCredentials = errors.New("catalog client credentials not configured")
)

// Tokens are refreshed this long before the catalog says they expire.
const tokenExpirySkew = 30 * time.Second

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	AccountsURL  string
	APIURL       string
	Timeout      time.Duration
}

// Client talks to the Spotify accounts and Web API endpoints. Every outbound
// call is bounded by Config.Timeout and attempted once.
type Client struct {
	clientID     string
	clientSecret string
	accountsURL  string
	apiURL       string
	httpDo       *http.Client
	now          func() time.Time

	// tokenFetch collapses concurrent token requests into one outbound call.
	tokenFetch singleflight.Group

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = "https://accounts.spotify.com"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.spotify.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		accountsURL:  strings.TrimRight(cfg.AccountsURL, "/"),
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		httpDo:       &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
	}
}

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type Owner struct {
	DisplayName string `json:"display_name"`
}

// PlaylistItem is a playlist as returned by the search endpoint. Spotify may
// return null entries in the items array, so callers receive pointers.
type PlaylistItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ExternalURLs map[string]string `json:"external_urls"`
	Images       []Image           `json:"images"`
	Owner        *Owner            `json:"owner"`
}

type searchResponse struct {
	Playlists struct {
		Items []*PlaylistItem `json:"items"`
	} `json:"playlists"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SearchPlaylists runs a playlist search for query.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]*PlaylistItem, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "playlist")
	params.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/v1/search?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: search http %d: %s", ErrUnavailable, resp.StatusCode, readSnippet(resp.Body))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrUnavailable, err)
	}
	return out.Playlists.Items, nil
}

// accessToken returns a cached app token, fetching a new one when the cache
// is empty or about to expire. Concurrent callers share a single fetch, and
// each stops waiting when its own ctx is done.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ErrMissingCredentials)
	}

	if token, ok := c.cachedToken(); ok {
		return token, nil
	}

	// The shared fetch must not die with whichever caller started it; it is
	// bounded by the http.Client timeout instead.
	fetchCtx := context.WithoutCancel(ctx)
	result := c.tokenFetch.DoChan("token", func() (any, error) {
		return c.fetchToken(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: token: %w", ErrUnavailable, ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, true
	}
	return "", false
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token http %d: %s", ErrUnavailable, resp.StatusCode, readSnippet(resp.Body))
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", ErrUnavailable, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: token response without access_token", ErrUnavailable)
	}

	c.mu.Lock()
	c.token = out.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(out.ExpiresIn)*time.Second - tokenExpirySkew)
	c.mu.Unlock()
	return out.AccessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
