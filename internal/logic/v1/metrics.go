package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Auth operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	playlistLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_lookups_total",
			Help: "Playlist lookups by mood and outcome.",
		},
		[]string{"mood", "result"},
	)

	sentimentAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_analyses_total",
			Help: "Sentiment analyses by resulting label.",
		},
		[]string{"result"},
	)
)

func recordAuth(operation, result string) {
	authOperationsTotal.WithLabelValues(operation, result).Inc()
}

func recordPlaylist(mood, result string) {
	playlistLookupsTotal.WithLabelValues(mood, result).Inc()
}

func recordSentiment(result string) {
	sentimentAnalysesTotal.WithLabelValues(result).Inc()
}
