// Package metrics defines and registers the custom Prometheus metrics of the
// API platform. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric of the service, including the HTTP
// metrics registered by the router.
const Namespace = "platform"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication decisions made by the middleware chain.
// Labels:
//   - method: "session" or "api_key"
//   - result: "ok", "rejected"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential checks, by method and result.",
	},
	[]string{"method", "result"},
)

// OAuthResolutionsTotal counts OAuth callback outcomes.
// Labels:
//   - provider: "github" or "gitee"
//   - outcome: "logged_in", "registered", "bound" or "error"
var OAuthResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "oauth_resolutions_total",
		Help:      "Total number of OAuth callbacks, by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// APIKeysCreatedTotal counts issued API keys.
var APIKeysCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_keys_created_total",
		Help:      "Total number of API keys created.",
	},
)

// ── Completion metrics ────────────────────────────────────────────────────────

// ChatCompletionsTotal counts completions served on /v1.
// Label:
//   - model: resolved model id
var ChatCompletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "chat_completions_total",
		Help:      "Total number of chat completions served, by model.",
	},
	[]string{"model"},
)

// ChatTokensTotal counts tokens reported in completion usage.
// Label:
//   - kind: "prompt" or "completion"
var ChatTokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "chat_tokens_total",
		Help:      "Total number of tokens reported, by kind.",
	},
	[]string{"kind"},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - scope: "api_key" or "public"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429, by limiter scope.",
	},
	[]string{"scope"},
)

// ── Usage dispatcher metrics ──────────────────────────────────────────────────

// UsageQueueDepth tracks the number of usage reports waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var UsageQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "usage_queue_depth",
		Help:      "Current number of usage reports pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// UsageDroppedTotal counts usage reports dropped because a worker channel was full.
var UsageDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "usage_dropped_total",
		Help:      "Total number of usage reports dropped on a full queue.",
	},
)

// UsageErrorsTotal counts usage reports that failed to persist.
var UsageErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "usage_errors_total",
		Help:      "Total number of usage reports that failed to persist.",
	},
)
