// Package metrics provides Prometheus metrics for the article store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a single ingested record.
const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
)

var (
	// IngestedArticles counts ingested records by outcome.
	IngestedArticles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsstand",
			Name:      "ingested_articles_total",
			Help:      "Total number of article records submitted for ingestion",
		},
		[]string{"outcome"},
	)

	// IngestBatchSize observes the number of records per ingestion batch.
	IngestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsstand",
			Name:      "ingest_batch_size",
			Help:      "Distribution of ingestion batch sizes",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// SearchDuration measures how long text searches take.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsstand",
			Name:      "search_duration_seconds",
			Help:      "Duration of text searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
