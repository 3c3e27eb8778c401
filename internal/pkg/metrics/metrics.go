// Package metrics defines and registers all custom Prometheus metrics for the
// job board API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default registry on package init via promauto;
// HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-in and sign-up attempts.
// Labels:
//   - method: "password", "federated", "signup", "restore", "refresh"
//   - result: "ok" or the auth error code (e.g. "invalid-credential", "offline")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// SessionTransitionsTotal counts session state changes.
// Label:
//   - to: the new state ("authenticating", "authenticated", "unauthenticated")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"to"},
)

// ConnectivityOnline is 1 while the backing store is reachable.
var ConnectivityOnline = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connectivity_online",
		Help:      "1 when the document store is reachable, 0 while offline.",
	},
)

// ── View metrics ──────────────────────────────────────────────────────────────

// ViewAssemblyDuration measures how long a derived view takes to build.
// Label:
//   - view: "job_list", "job_detail", "job_applicants", "my_applications", "companies"
var ViewAssemblyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "view_assembly_duration_seconds",
		Help:      "Duration of derived view assembly including all joined lookups.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"view"},
)

// PlaceholderJoinsTotal counts joins that fell back to placeholder data.
// Labels:
//   - view: the view being assembled
//   - missing: "employer", "job", "company", "applicant"
var PlaceholderJoinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "placeholder_joins_total",
		Help:      "Total number of joined records that could not be resolved.",
	},
	[]string{"view", "missing"},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// UploadAttemptsTotal counts blob store upload attempts.
// Labels:
//   - kind: "resume", "avatar", "company_logo"
//   - result: "ok", "retry", "failed", "rejected"
var UploadAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_attempts_total",
		Help:      "Total number of upload attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ApplicationsSubmittedTotal counts application submissions.
// Label:
//   - result: "ok", "duplicate", "rejected"
var ApplicationsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of job application submissions, by result.",
	},
	[]string{"result"},
)

// StatusTransitionsTotal counts status change requests.
// Labels:
//   - entity: "application" or "job"
//   - result: "ok" or "invalid"
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of status transitions, by entity and result.",
	},
	[]string{"entity", "result"},
)

// PartialFailuresTotal counts best-effort secondary writes that failed.
// Label:
//   - operation: e.g. "company_upsert", "job_counter", "view_increment", "notify"
var PartialFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partial_failures_total",
		Help:      "Total number of failed best-effort secondary writes.",
	},
	[]string{"operation"},
)

// SideEffectQueueDepth tracks pending follow-ups in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SideEffectQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "side_effect_queue_depth",
		Help:      "Current number of follow-ups pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
