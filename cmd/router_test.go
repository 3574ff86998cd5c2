package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/moodtunes-service/internal/catalog"
	"github.com/duynhne/moodtunes-service/internal/core/repository"
	logicv1 "github.com/duynhne/moodtunes-service/internal/logic/v1"
	v1 "github.com/duynhne/moodtunes-service/internal/web/v1"
)

type fakeStore struct{ err error }

func (f fakeStore) Ping(context.Context) error { return f.err }

func testHandler() *v1.Handler {
	auth := logicv1.NewAuthService(
		repository.NewMemoryAccountRepository(),
		logicv1.NewBcryptHasher(bcrypt.MinCost),
		logicv1.NewTokenService([]byte("secret"), "test"),
	)
	return v1.NewHandler(auth, logicv1.NewPlaylistService(catalog.New(catalog.Config{}), 5), logicv1.NewSentimentService())
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Probes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var draining atomic.Bool
	r := newRouter("moodtunes-test", testHandler(), fakeStore{}, &draining)

	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ready").Code)

	metrics := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "http_requests_total")

	t.Run("v1 routes mounted at root", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me").Code)
		assert.Equal(t, http.StatusBadGateway, get(r, "/playlist/happy").Code)
	})

	t.Run("draining", func(t *testing.T) {
		draining.Store(true)
		defer draining.Store(false)
		assert.Equal(t, http.StatusServiceUnavailable, get(r, "/ready").Code)
		assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	})

	t.Run("store down", func(t *testing.T) {
		r := newRouter("moodtunes-test", testHandler(), fakeStore{err: errors.New("down")}, &atomic.Bool{})
		assert.Equal(t, http.StatusServiceUnavailable, get(r, "/ready").Code)
	})
}
