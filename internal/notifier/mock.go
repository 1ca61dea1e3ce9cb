package notifier

import (
	"sync"

	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendFixtureNotificationFunc  func(match matches.Match, roster map[string]players.Player, dryRun bool) error
	SendResultNotificationFunc   func(report *effects.Report, dryRun bool) error
	SendReversalNotificationFunc func(report *effects.Report, dryRun bool) error
	SendLeaderboardFunc          func(list []players.Player, dryRun bool) error

	// Call records
	SendFixtureNotificationCalls  []matches.Match
	SendResultNotificationCalls   []*effects.Report
	SendReversalNotificationCalls []*effects.Report
	SendLeaderboardCalls          [][]players.Player
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFixtureNotificationCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendReversalNotificationCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendFixtureNotification(match matches.Match, roster map[string]players.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFixtureNotificationCalls = append(m.SendFixtureNotificationCalls, match)
	if m.SendFixtureNotificationFunc != nil {
		return m.SendFixtureNotificationFunc(match, roster, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(report *effects.Report, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, report)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(report, dryRun)
	}
	return nil
}

func (m *Mock) SendReversalNotification(report *effects.Report, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendReversalNotificationCalls = append(m.SendReversalNotificationCalls, report)
	if m.SendReversalNotificationFunc != nil {
		return m.SendReversalNotificationFunc(report, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(list []players.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, list)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(list, dryRun)
	}
	return nil
}

// Calls returns how many notifications of any kind were sent.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendFixtureNotificationCalls) + len(m.SendResultNotificationCalls) +
		len(m.SendReversalNotificationCalls) + len(m.SendLeaderboardCalls)
}
