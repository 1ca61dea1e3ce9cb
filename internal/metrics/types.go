package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	ResultsApplied      prometheus.Counter
	GoalCorrections     prometheus.Counter
	Reversals           prometheus.Counter
	Resumes             prometheus.Counter
	PlayerWriteFailures prometheus.Counter
	ApplyDuration       prometheus.Histogram
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
