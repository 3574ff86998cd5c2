package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duynhne/moodtunes-service/internal/logger"
	v1 "github.com/duynhne/moodtunes-service/internal/web/v1"
	"github.com/duynhne/moodtunes-service/middleware"
)

const readinessProbeTimeout = 2 * time.Second

// pinger is the readiness dependency: the credential store.
type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter wires middlewares, probes and the v1 routes. Readiness fails once
// draining is set or when the store does not answer a ping.
func newRouter(serviceName string, handler *v1.Handler, store pinger, draining *atomic.Bool) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.TracingMiddleware(serviceName),
		middleware.LoggingMiddleware(),
		middleware.PrometheusMiddleware(),
	)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "MoodTunes backend is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if draining.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessProbeTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Store not ready")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(r.Group(""))
	return r
}
