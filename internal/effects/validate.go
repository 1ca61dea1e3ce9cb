package effects

import (
	"fmt"

	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/egarcia91/BondiolaFC/internal/rating"
)

// validate checks a match result before anything is written.
func validate(m matches.Match, byID map[string]players.Player) error {
	for _, side := range matches.Sides {
		team := m.Team(side)
		if team.Goals < 0 {
			return fmt.Errorf("%w: %s goals cannot be negative", ErrInvalidInput, side)
		}
		if len(team.Scorers) != team.Goals {
			return fmt.Errorf("%w: %s has %d goals but %d scorers", ErrInvalidInput, side, team.Goals, len(team.Scorers))
		}

		onRoster := make(map[string]bool)
		for _, e := range team.Roster {
			if e.IsGuest() {
				if e.GuestName == "" {
					return fmt.Errorf("%w: %s roster entry without player or name", ErrInvalidInput, side)
				}
				continue
			}
			if _, ok := byID[e.PlayerID]; !ok {
				return fmt.Errorf("%w: %w: %s", ErrInvalidInput, rating.ErrUnknownPlayer, e.PlayerID)
			}
			if onRoster[e.PlayerID] {
				return fmt.Errorf("%w: player %s is listed twice on the %s roster", ErrInvalidInput, e.PlayerID, side)
			}
			onRoster[e.PlayerID] = true
		}
		for _, s := range team.Scorers {
			if id := s.PlayerID(); id != "" && !onRoster[id] {
				return fmt.Errorf("%w: scorer %s is not on the %s roster", ErrInvalidInput, id, side)
			}
		}
	}
	return nil
}
