package notifier

import (
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
)

// Notifier defines a high-level interface for sending notifications about club events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For newly scheduled matches
	SendFixtureNotification(match matches.Match, roster map[string]players.Player, dryRun bool) error
	// For recorded results, goal corrections and resumes
	SendResultNotification(report *effects.Report, dryRun bool) error
	// For deleted matches whose effects were undone
	SendReversalNotification(report *effects.Report, dryRun bool) error
	// Ranking by rating
	SendLeaderboard(list []players.Player, dryRun bool) error
}

// Nop is used when no notification provider is configured.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) SendFixtureNotification(matches.Match, map[string]players.Player, bool) error {
	return nil
}
func (Nop) SendResultNotification(*effects.Report, bool) error   { return nil }
func (Nop) SendReversalNotification(*effects.Report, bool) error { return nil }
func (Nop) SendLeaderboard([]players.Player, bool) error         { return nil }
