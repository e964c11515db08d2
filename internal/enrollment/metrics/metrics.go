package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the enrollment flow counters.
type Metrics struct {
	EnrollmentsCreated prometheus.Counter
	EnrollmentsUpdated prometheus.Counter
	IdentityMismatches prometheus.Counter
	ReceiptsRendered   prometheus.Counter
}

// New creates and registers all enrollment metrics.
func New() *Metrics {
	return &Metrics{
		EnrollmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_enrollments_created_total",
			Help: "Total enrollments created (first submission for a token+term)",
		}),
		EnrollmentsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_enrollments_updated_total",
			Help: "Total enrollment updates (resubmission for an existing token+term)",
		}),
		IdentityMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_identity_mismatches_total",
			Help: "Total score validations rejected because the exam name did not match",
		}),
		ReceiptsRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_receipts_rendered_total",
			Help: "Total PDF receipts rendered",
		}),
	}
}
