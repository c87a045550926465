// Package metrics defines and registers all custom Prometheus metrics for the
// aniwa server. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aniwa"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts completed account registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created.",
	},
)

// TokenVerificationsTotal counts access token checks in the auth middleware.
// Label:
//   - result: "ok", "expired", "wrong_audience", or "malformed"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// RoleChangesTotal counts applied role changes.
// Label:
//   - new_role: the role that was granted
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of role changes applied, by granted role.",
	},
	[]string{"new_role"},
)

// ── Sync metrics ──────────────────────────────────────────────────────────────

// SyncJobsEnqueuedTotal counts metadata sync jobs accepted for processing.
var SyncJobsEnqueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_jobs_enqueued_total",
		Help:      "Total number of metadata sync jobs enqueued.",
	},
)

// SyncDuration measures how long one metadata sync takes end-to-end.
// Label:
//   - result: "ok" or "error"
var SyncDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of one metadata sync from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
