package effects

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/hashicorp/go-multierror"
)

// credit is what one match contributes to one player.
type credit struct {
	playerID string
	side     matches.Side
	result   matches.Result
	delta    int
	goals    int
	// prior is the player's goal count on the match before a correction. It
	// stands in for players without a per-match goal record.
	prior int
}

// credits lists the contribution of match m to each named player, using the
// rating changes recorded on the match.
func credits(m matches.Match) []credit {
	goals := m.GoalsByPlayer()
	outcome := m.Outcome()
	var out []credit
	for _, side := range matches.Sides {
		team := m.Team(side)
		for i, e := range team.Roster {
			if e.IsGuest() {
				continue
			}
			out = append(out, credit{
				playerID: e.PlayerID,
				side:     side,
				result:   outcome.ResultFor(side),
				delta:    team.DeltaAt(i),
				goals:    goals[e.PlayerID],
				prior:    goals[e.PlayerID],
			})
		}
	}
	return out
}

// applyCredit adds the match to p. A player already carrying the match
// marker is returned unchanged.
func applyCredit(p players.Player, matchID string, c credit) (players.Player, bool) {
	if p.HasApplied(matchID) {
		return p, false
	}
	history := slices.Clone(p.RatingHistory)
	if len(history) == 0 {
		history = []int{p.Rating}
	}
	p.Rating = max(0, p.Rating+c.delta)
	p.RatingHistory = append(history, p.Rating)
	p.Matches++
	switch c.result {
	case matches.Win:
		p.Wins++
	case matches.Draw:
		p.Draws++
	case matches.Loss:
		p.Losses++
	}
	p.Goals += c.goals
	p.AppliedMatches = append(slices.Clone(p.AppliedMatches), matchID)
	p.AppliedGoals = withGoals(p.AppliedGoals, matchID, c.goals)
	return p, true
}

// revertCredit undoes applyCredit. Counters floor at zero.
func revertCredit(p players.Player, matchID string, c credit) (players.Player, bool) {
	if !p.HasApplied(matchID) {
		return p, false
	}
	p.Rating = max(0, p.Rating-c.delta)
	if n := len(p.RatingHistory); n > 0 {
		p.RatingHistory = slices.Clone(p.RatingHistory[:n-1])
	}
	p.Matches = max(0, p.Matches-1)
	switch c.result {
	case matches.Win:
		p.Wins = max(0, p.Wins-1)
	case matches.Draw:
		p.Draws = max(0, p.Draws-1)
	case matches.Loss:
		p.Losses = max(0, p.Losses-1)
	}
	credited, ok := p.CreditedGoals(matchID)
	if !ok {
		credited = c.goals
	}
	p.Goals = max(0, p.Goals-credited)
	p.AppliedMatches = slices.DeleteFunc(slices.Clone(p.AppliedMatches), func(id string) bool {
		return id == matchID
	})
	p.AppliedGoals = maps.Clone(p.AppliedGoals)
	delete(p.AppliedGoals, matchID)
	return p, true
}

// correctGoals brings the goals p has credited for the match to c.goals.
// Running it again with the same target changes nothing.
func correctGoals(p players.Player, matchID string, c credit) (players.Player, bool) {
	if !p.HasApplied(matchID) {
		return p, false
	}
	credited, ok := p.CreditedGoals(matchID)
	if !ok {
		credited = c.prior
	}
	if credited == c.goals {
		return p, false
	}
	p.Goals = max(0, p.Goals+c.goals-credited)
	p.AppliedGoals = withGoals(p.AppliedGoals, matchID, c.goals)
	return p, true
}

// settleCredit applies the match to players still missing it and brings the
// goals of the others up to date.
func settleCredit(p players.Player, matchID string, c credit) (players.Player, bool) {
	if p.HasApplied(matchID) {
		return correctGoals(p, matchID, c)
	}
	return applyCredit(p, matchID, c)
}

func withGoals(in map[string]int, matchID string, goals int) map[string]int {
	out := maps.Clone(in)
	if out == nil {
		out = make(map[string]int, 1)
	}
	out[matchID] = goals
	return out
}

type step func(p players.Player, matchID string, c credit) (players.Player, bool)

// writePlayers re-reads each player and persists the result of fn. Writes run
// in parallel and all of them settle before returning; failures are
// aggregated.
func (a *Applier) writePlayers(ctx context.Context, matchID string, cs []credit, fn step) (written, pending []string, err error) {
	var (
		g  multierror.Group
		mu sync.Mutex
	)
	for _, c := range cs {
		g.Go(func() error {
			rec, err := a.store.Get(ctx, docstore.Players, c.playerID)
			if err != nil {
				mu.Lock()
				pending = append(pending, c.playerID)
				mu.Unlock()
				return fmt.Errorf("failed to read player %s: %w", c.playerID, err)
			}
			next, changed := fn(players.FromRecord(rec), matchID, c)
			if !changed {
				log.Debug("Player already up to date", "matchID", matchID, "playerID", c.playerID)
				return nil
			}
			if err := a.store.Update(ctx, docstore.Players, c.playerID, next.StatsDocument()); err != nil {
				mu.Lock()
				pending = append(pending, c.playerID)
				mu.Unlock()
				return fmt.Errorf("failed to update player %s: %w", c.playerID, err)
			}
			mu.Lock()
			written = append(written, c.playerID)
			mu.Unlock()
			return nil
		})
	}
	merr := g.Wait()
	slices.Sort(written)
	slices.Sort(pending)
	if merr.ErrorOrNil() != nil {
		a.metrics.IncPlayerWriteFailures(len(merr.Errors))
		log.Error("Player writes failed", "matchID", matchID, "failed", len(merr.Errors), "written", len(written))
		return written, pending, merr
	}
	return written, pending, nil
}
