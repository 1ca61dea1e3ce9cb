package http

import (
	"net/http"

	"github.com/egarcia91/BondiolaFC/internal/league"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

func NewServer(svc *league.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		League:         svc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		PubSub:         pubsub,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with the common middleware chain.
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", withMiddleware(s.HealthCheckHandler()))
	s.Router.Handle("GET /players", withMiddleware(s.ListPlayersHandler()))
	s.Router.Handle("POST /players", withMiddleware(s.CreatePlayerHandler()))
	s.Router.Handle("POST /leaderboard", withMiddleware(s.LeaderboardHandler()))
	s.Router.Handle("GET /matches", withMiddleware(s.ListMatchesHandler()))
	s.Router.Handle("POST /matches", withMiddleware(s.CreateMatchHandler()))
	s.Router.Handle("POST /matches/parse", withMiddleware(s.ParseMatchHandler()))
	s.Router.Handle("GET /matches/{id}", withMiddleware(s.GetMatchHandler()))
	s.Router.Handle("PUT /matches/{id}/roster", withMiddleware(s.EditRosterHandler()))
	s.Router.Handle("POST /matches/{id}/result", withMiddleware(s.RecordResultHandler()))
	s.Router.Handle("POST /matches/{id}/resume", withMiddleware(s.ResumeResultHandler()))
	s.Router.Handle("DELETE /matches/{id}", withMiddleware(s.DeleteMatchHandler()))
	s.Router.Handle("POST /pubsub/match-concluded", withMiddleware(s.MatchConcludedPushHandler()))
	s.Router.Handle("POST /pubsub/goals-corrected", withMiddleware(s.MatchConcludedPushHandler()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
