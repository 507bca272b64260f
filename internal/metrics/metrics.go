// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesTotal counts purchase attempts.
	// Labels:
	//   - outcome: "created", "rejected", "failed"
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_purchases_total",
			Help: "Total number of purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	PurchasesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_purchases_cancelled_total",
		Help: "Total number of purchases cancelled",
	})

	PurchasesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_purchases_expired_total",
		Help: "Total number of purchases moved to Expired by the sweeper",
	})

	TicketsAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_tickets_allocated_total",
		Help: "Total number of seats turned into tickets",
	})

	// QRValidations counts validation outcomes.
	// Labels:
	//   - outcome: "valid", "invalid_token", "not_found", "cancelled", "error"
	QRValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_qr_validations_total",
			Help: "Total number of QR validations by outcome",
		},
		[]string{"outcome"},
	)

	ScheduleConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_schedule_conflicts_total",
			Help: "Show or event writes rejected for overlapping another slot",
		},
		[]string{"kind"},
	)

	RemindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinema_show_reminders_total",
		Help: "Total number of show reminders published",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)
