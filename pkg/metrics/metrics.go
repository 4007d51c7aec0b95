package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Registry metrics
	PatientsRegistered prometheus.Counter
	LocationsCreated   prometheus.Counter
	HealthRecordsAdded prometheus.Counter
	SamplesCollected   prometheus.Counter
	SampleTransitions  *prometheus.CounterVec

	// Notification metrics
	NotificationSends   *prometheus.CounterVec
	NotificationLatency prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PatientsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_registered_total",
			Help:      "Total number of patients registered",
		}),
		LocationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_created_total",
			Help:      "Total number of care locations created",
		}),
		HealthRecordsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_records_added_total",
			Help:      "Total number of health records added",
		}),
		SamplesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blood_samples_collected_total",
			Help:      "Total number of blood samples collected",
		}),
		SampleTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_transitions_total",
			Help:      "Total number of blood sample status transitions",
		}, []string{"to"}),

		NotificationSends: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_sends_total",
			Help:      "Total number of outbound result notifications",
		}, []string{"status"}),
		NotificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_send_duration_seconds",
			Help:      "Time spent sending outbound result notifications",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
