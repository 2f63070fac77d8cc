package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assistant-API Metrics
var (
	// Provider call counters
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "provider_calls_total",
			Help:      "Total generative-text provider invocations",
		},
		[]string{"provider", "status"},
	)

	// Provider call duration
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "provider_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)

	// Reply cache counters
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "reply_cache_lookups_total",
			Help:      "Reply cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// Generated replies by source (generated vs fallback)
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "replies_total",
			Help:      "Assistant replies produced, by source",
		},
		[]string{"source"},
	)

	// Handoff flags raised
	HandoffFlagsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "handoff_flags_total",
			Help:      "Handoff indicator flags raised by the engagement analyzer",
		},
		[]string{"reason"},
	)

	// Follow-up tasks by outcome (scheduled, executed, skipped, failed)
	FollowupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "followups_total",
			Help:      "Follow-up tasks by lifecycle outcome",
		},
		[]string{"kind", "outcome"},
	)

	// Pipeline duration end to end
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "pipeline_duration_seconds",
			Help:      "Inbound message pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)

	// Pipeline queue depth gauge
	PipelineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "homematch",
			Subsystem: "assistant_api",
			Name:      "pipeline_queue_depth",
			Help:      "Inbound pipeline queue depth",
		},
	)
)
