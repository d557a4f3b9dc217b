// Package metrics defines and registers all custom Prometheus metrics for the
// shipment tracker API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed by the echoprometheus handler at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shipping"

// ── History metrics ───────────────────────────────────────────────────────────

// HistoryAppendedTotal counts history events appended to a shipment trail.
// Label:
//   - status: the status carried by the event (e.g. "IN_TRANSIT")
var HistoryAppendedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_appended_total",
		Help:      "Total number of history events appended.",
	},
	[]string{"status"},
)

// HistoryErrorsTotal counts rejected history submissions.
// Label:
//   - reason: "invalid_payload", "invalid_transition", "invalid_status", "duplicate", "not_found" or "internal"
var HistoryErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_errors_total",
		Help:      "Total number of history submissions that were rejected.",
	},
	[]string{"reason"},
)

// ── Shipment metrics ──────────────────────────────────────────────────────────

// ShipmentsCreatedTotal counts newly created shipments.
// Label:
//   - product_type: free-form product category submitted with the shipment
var ShipmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_created_total",
		Help:      "Total number of shipments created, by product type.",
	},
	[]string{"product_type"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// PushQueueDepth tracks the number of jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PushQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_queue_depth",
		Help:      "Current number of push jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PushPublishDuration measures how long publishing one job to the bus takes.
// Label:
//   - result: "ok" or "error"
var PushPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "push_publish_duration_seconds",
		Help:      "Duration of publishing a push job to the realtime bus.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// RealtimeConnections is the number of open websocket connections on this instance.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Number of open realtime websocket connections.",
	},
)

// RealtimeFramesSentTotal counts frames written to sockets.
// Label:
//   - event: "history" or "message"
var RealtimeFramesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_frames_sent_total",
		Help:      "Total number of realtime frames written to clients.",
	},
	[]string{"event"},
)
