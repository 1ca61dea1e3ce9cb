package http

import (
	"net/http"

	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/league"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

type Server struct {
	League         *league.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	PubSub         pubsub.PubSubClient
	Router         *http.ServeMux
}

type errorResponse struct {
	Error  string          `json:"error"`
	Report *effects.Report `json:"report,omitempty"`
}

type rosterRequest struct {
	Local   league.TeamInput `json:"local"`
	Visitor league.TeamInput `json:"visitor"`
}

// pushRequest is the body Pub/Sub sends to push subscriptions.
type pushRequest struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}
