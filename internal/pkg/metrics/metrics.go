package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentCallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnfox_payment_callbacks_total",
			Help: "Payment gateway callbacks by outcome",
		},
		[]string{"outcome"},
	)

	PaymentCallbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learnfox_payment_callback_duration_seconds",
			Help:    "Time taken to reconcile a payment callback",
			Buckets: prometheus.DefBuckets,
		},
	)

	Enrollments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnfox_enrollments_total",
			Help: "Enrollments created from paid orders by item type",
		},
		[]string{"item_type"},
	)

	Checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnfox_checkouts_total",
			Help: "Charge requests sent to the payment gateway by result",
		},
		[]string{"result"},
	)

	QuizSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnfox_quiz_submissions_total",
			Help: "Quiz submissions by result",
		},
		[]string{"result"},
	)

	Jobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnfox_jobs_total",
			Help: "Background jobs finished by type and final status",
		},
		[]string{"type", "status"},
	)

	JobQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learnfox_job_queue_depth",
			Help: "Jobs waiting or in flight in the Redis job queue",
		},
		[]string{"list"},
	)

	registerOnce sync.Once
)

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PaymentCallbacks, PaymentCallbackDuration, Enrollments, Checkouts, QuizSubmissions, Jobs, JobQueueDepth)
	})
}
