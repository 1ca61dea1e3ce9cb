package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ResultsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_results_applied_total",
			Help: "The total number of match results whose rating effects were committed.",
		}),
		GoalCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_goal_corrections_total",
			Help: "The total number of scorer corrections on already applied matches.",
		}),
		Reversals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_reversals_total",
			Help: "The total number of matches whose effects were reversed.",
		}),
		Resumes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_resumes_total",
			Help: "The total number of interrupted result applications that were resumed.",
		}),
		PlayerWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_player_write_failures_total",
			Help: "The total number of player updates rejected by the document store.",
		}),
		ApplyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bondiola_apply_duration_seconds",
			Help:    "The duration of applying or reversing a match result.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bondiola_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bondiola_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ResultsApplied,
		s.GoalCorrections,
		s.Reversals,
		s.Resumes,
		s.PlayerWriteFailures,
		s.ApplyDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncResultsApplied() {
	s.ResultsApplied.Inc()
}

func (s *Service) IncGoalCorrections() {
	s.GoalCorrections.Inc()
}

func (s *Service) IncReversals() {
	s.Reversals.Inc()
}

func (s *Service) IncResumes() {
	s.Resumes.Inc()
}

func (s *Service) IncPlayerWriteFailures(n int) {
	s.PlayerWriteFailures.Add(float64(n))
}

func (s *Service) ObserveApplyDuration(duration float64) {
	s.ApplyDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
