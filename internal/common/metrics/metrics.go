// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_actions_completed_total",
			Help: "Total number of user actions that completed",
		},
		[]string{"action"},
	)

	ActionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_action_errors_total",
			Help: "Total number of user actions that surfaced an error",
		},
		[]string{"action", "error_code", "category"},
	)

	CheckoutSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_submissions_total",
			Help: "Order submissions by outcome",
		},
		[]string{"outcome"},
	)

	ReceiptVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_receipt_verifications_total",
			Help: "Receipt verifications by outcome",
		},
		[]string{"outcome"},
	)

	DestructiveActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_destructive_actions_total",
			Help: "Confirmed or cancelled delete-class actions by target kind",
		},
		[]string{"kind", "outcome"},
	)

	CartItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Number of pizzas in the current draft",
		},
	)

	DuplicateRequestsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_duplicate_requests_dropped_total",
			Help: "Actions ignored because the same action was already in flight",
		},
		[]string{"action"},
	)
)
