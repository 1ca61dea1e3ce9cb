package effects

import (
	"errors"
	"fmt"

	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/rating"
)

var (
	// ErrInvalidInput marks requests rejected before any write.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutcomeLocked is returned when a correction would change who won a
	// match whose effects are already applied.
	ErrOutcomeLocked = fmt.Errorf("%w: the outcome of an applied match cannot change", ErrInvalidInput)

	// ErrReversed is returned when applying a result to a reversed match.
	ErrReversed = fmt.Errorf("%w: match effects were reversed", ErrInvalidInput)
)

// Path is the kind of work an operation did.
type Path string

const (
	PathFirstApplication Path = "first_application"
	PathGoalCorrection   Path = "goal_correction"
	PathResume           Path = "resume"
	PathReversal         Path = "reversal"
	PathNoop             Path = "noop"
)

// PlayerChange describes what an operation does to one player.
type PlayerChange struct {
	PlayerID     string         `json:"player_id"`
	Name         string         `json:"name"`
	Side         matches.Side   `json:"side"`
	Result       matches.Result `json:"result,omitempty"`
	RatingBefore int            `json:"rating_before"`
	RatingAfter  int            `json:"rating_after"`
	Goals        int            `json:"goals"`
}

// Report summarizes an apply, resume or reversal. Pending lists the players
// whose write failed; for first applications and reversals a later Resume or
// Reverse completes them.
type Report struct {
	MatchID        string         `json:"match_id"`
	Path           Path           `json:"path"`
	DryRun         bool           `json:"dry_run"`
	Match          matches.Match  `json:"match"`
	Rating         *rating.Result `json:"rating,omitempty"`
	Changes        []PlayerChange `json:"changes"`
	PlayersWritten []string       `json:"players_written"`
	Pending        []string       `json:"pending,omitempty"`
	// Names holds the display name of every rostered player.
	Names map[string]string `json:"names,omitempty"`
}

// Name returns the display name of a rostered player, or its id.
func (r *Report) Name(playerID string) string {
	if n, ok := r.Names[playerID]; ok {
		return n
	}
	return playerID
}
