package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/league"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

const maxBodyBytes = 1 << 20

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.League.ListPlayers(r.Context())
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile players.Profile
		if !decodeJSON(w, r, &profile) {
			return
		}
		p, err := s.League.CreatePlayer(r.Context(), profile)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.League.SendLeaderboard(r.Context(), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.League.ListMatches(r.Context())
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.League.GetMatch(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in league.FixtureInput
		if !decodeJSON(w, r, &in) {
			return
		}
		isDryRun := isDryRunFromContext(r)
		m, err := s.League.CreateFixture(r.Context(), in, isDryRun)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, createdUnlessDryRun(isDryRun), m)
	}
}

// ParseMatchHandler creates a match from the announcement message in the
// request body.
func (s *Server) ParseMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		isDryRun := isDryRunFromContext(r)
		m, err := s.League.CreateFixtureFromMessage(r.Context(), string(body), isDryRun)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, createdUnlessDryRun(isDryRun), m)
	}
}

func (s *Server) EditRosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rosterRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		m, err := s.League.EditRoster(r.Context(), r.PathValue("id"), in.Local, in.Visitor)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in league.ResultInput
		if !decodeJSON(w, r, &in) {
			return
		}
		report, err := s.League.RecordResult(r.Context(), r.PathValue("id"), in, isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) ResumeResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.League.ResumeResult(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.League.DeleteMatch(r.Context(), r.PathValue("id"), isDryRunFromContext(r))
		if err != nil {
			writeError(w, err, report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// MatchConcludedPushHandler receives match-concluded and goals-corrected
// events from a Pub/Sub push subscription and completes any player updates
// still pending. A failed
// resume answers 500 so that Pub/Sub redelivers the event.
func (s *Server) MatchConcludedPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match concluded message", "body", string(bodyBytes))

		var pubsubMsg pushRequest
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var event pubsub.MatchEvent
		if err := s.PubSub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message data", http.StatusBadRequest)
			return
		}
		if event.MatchID == "" {
			http.Error(w, "Event without match id", http.StatusBadRequest)
			return
		}

		report, err := s.League.ResumeResult(r.Context(), event.MatchID)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				// The match is gone; redelivering will not help.
				log.Warn("Match of event not found", "matchID", event.MatchID)
				w.Write([]byte("OK"))
				return
			}
			writeError(w, err, report)
			return
		}
		log.Info("Processed match concluded event", "matchID", event.MatchID, "path", report.Path, "players", len(report.PlayersWritten))
		w.Write([]byte("OK"))
	}
}

func createdUnlessDryRun(dryRun bool) int {
	if dryRun {
		return http.StatusOK
	}
	return http.StatusCreated
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		log.Debug("Invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError answers with the status matching err. A partial report, when
// present, is included so callers can see which players are pending.
func writeError(w http.ResponseWriter, err error, report *effects.Report) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	} else {
		log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Report: report})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, effects.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrAlreadyConcluded),
		errors.Is(err, league.ErrPlayerExists),
		errors.Is(err, league.ErrNotEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
