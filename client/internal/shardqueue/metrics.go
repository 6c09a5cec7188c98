package shardqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth has a single writer per shard: the worker goroutine.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "mutation_queue",
			Name:      "submissions_total",
			Help:      "Mutations accepted for execution.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "mutation_queue",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts rejected because the shard stayed full.",
		},
		[]string{"shard"},
	)

	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "mutation_queue",
			Name:      "attempts_total",
			Help:      "Mutation attempts by result (ok, retry, failed, canceled).",
		},
		[]string{"shard", "result"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "mutation_queue",
			Name:      "run_duration_seconds",
			Help:      "Latency of a single mutation attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "mutation_queue",
			Name:      "queue_depth",
			Help:      "Pending mutations per shard.",
		},
		[]string{"shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
