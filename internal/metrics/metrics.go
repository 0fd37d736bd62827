// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "beacon_"

var (
	// AlertActivations counts fired alerts by mode and action.
	AlertActivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "alert_activations_total",
			Help: "Total alert activations by mode and action",
		},
		[]string{"mode", "action"},
	)

	// ChannelFailures counts failed channel sends by channel name.
	ChannelFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "channel_failures_total",
			Help: "Total failed notification channel sends by channel",
		},
		[]string{"channel"},
	)

	// DrillsFired counts scheduler-originated activations.
	DrillsFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "scheduled_drills_fired_total",
			Help: "Total drills fired by the background scheduler",
		},
	)

	// Acknowledgments counts station acknowledgments received.
	Acknowledgments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "acknowledgments_total",
			Help: "Total station acknowledgments received",
		},
	)
)

func init() {
	prometheus.MustRegister(AlertActivations, ChannelFailures, DrillsFired, Acknowledgments)
}
