// Package metrics defines and registers the custom Prometheus metrics for the
// Musha Views session module. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default registry at import time via
// promauto; expose them wherever the host application already serves
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mushaviews"

// SessionActionsTotal counts session store actions by outcome.
// Labels:
//   - action: the store action invoked (e.g. "login", "signup", "logout")
//   - result: "success" or "failure"
var SessionActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_actions_total",
		Help:      "Total number of session store actions, by action and result.",
	},
	[]string{"action", "result"},
)

// SessionActionDuration measures how long a single store action takes,
// including its remote calls.
// Label:
//   - action: the store action invoked
var SessionActionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_action_duration_seconds",
		Help:      "Duration of session store actions from entry to state commit.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)

// SnapshotWritesTotal counts projection writes to local persistence.
// Label:
//   - result: "success" or "failure"
var SnapshotWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_writes_total",
		Help:      "Total number of session snapshot writes to local persistence.",
	},
	[]string{"result"},
)

// ListenerNotificationsTotal counts session-change notifications handled by
// the standing listener.
// Label:
//   - kind: "session", "session_orphaned", or "signed_out"
var ListenerNotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listener_notifications_total",
		Help:      "Total number of session-change notifications handled, by kind.",
	},
	[]string{"kind"},
)
