// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// WebhookEventsTotal counts provider webhook deliveries by outcome.
// Labels:
//   - kind: the event type as received (e.g. "user.created", "org.created")
//   - result: "processed", "skipped" (unknown kind or duplicate), or "error"
var WebhookEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Total number of provider webhook deliveries, by kind and result.",
	},
	[]string{"kind", "result"},
)

// WebhookRejectedTotal counts deliveries rejected before decoding.
// Label:
//   - reason: "signature" or "payload"
var WebhookRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_rejected_total",
		Help:      "Total number of webhook deliveries rejected before processing.",
	},
	[]string{"reason"},
)

// MailSentTotal counts outbound email deliveries.
// Label:
//   - result: "ok" or "error"
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of outbound emails, by result.",
	},
	[]string{"result"},
)

// SalesRecordedTotal counts completed marketplace sales.
var SalesRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_recorded_total",
		Help:      "Total number of sales recorded.",
	},
)
