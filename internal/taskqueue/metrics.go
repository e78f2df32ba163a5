package taskqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirage_taskqueue",
			Name:      "submissions_total",
			Help:      "Jobs accepted into a shard queue.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirage_taskqueue",
			Name:      "queue_full_total",
			Help:      "Submissions rejected because a shard stayed full past the enqueue timeout.",
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mirage_taskqueue",
			Name:      "queue_depth",
			Help:      "Current number of queued jobs per shard.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirage_taskqueue",
			Name:      "run_duration_seconds",
			Help:      "Wall time of individual job executions.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)
)

func labelFor(shard int) string { return strconv.Itoa(shard) }
