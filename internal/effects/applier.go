package effects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/egarcia91/BondiolaFC/internal/rating"
)

// Applier commits match results to player statistics and reverses them.
//
// A result is committed in two phases. The match is written first, already
// marked as applied and carrying the per-player rating deltas; then every
// player is written. Each player records the matches counted in its stats,
// so replaying the player phase never counts a match twice. Resume replays
// it for a match whose player phase was interrupted.
type Applier struct {
	store   docstore.Store
	metrics metrics.Metrics
}

// New creates an Applier over the given store.
func New(store docstore.Store, m metrics.Metrics) *Applier {
	return &Applier{store: store, metrics: m}
}

type plan struct {
	report *Report
	// match is what gets persisted.
	match   matches.Match
	credits []credit
	step    step
}

// Plan computes what Apply would do with edited without writing anything.
func (a *Applier) Plan(ctx context.Context, edited matches.Match) (*Report, error) {
	p, err := a.prepare(ctx, edited)
	if err != nil {
		return nil, err
	}
	p.report.DryRun = true
	return p.report, nil
}

// Apply records the result carried by edited, the canonical match with its
// final rosters, goals and scorers. The first time a match is applied its
// rating and stat effects are committed; afterwards only goal attribution
// can change.
func (a *Applier) Apply(ctx context.Context, edited matches.Match) (*Report, error) {
	start := time.Now()
	defer func() { a.metrics.ObserveApplyDuration(time.Since(start).Seconds()) }()

	p, err := a.prepare(ctx, edited)
	if err != nil {
		return nil, err
	}
	report := p.report

	if err := a.store.Update(ctx, docstore.Matches, p.match.ID, p.match.Document()); err != nil {
		return nil, fmt.Errorf("failed to update match %s: %w", p.match.ID, err)
	}

	written, pending, err := a.writePlayers(ctx, p.match.ID, p.credits, p.step)
	report.PlayersWritten, report.Pending = written, pending
	if err != nil {
		return report, fmt.Errorf("match %s saved but %d player updates failed: %w", p.match.ID, len(pending), err)
	}

	switch report.Path {
	case PathFirstApplication:
		a.metrics.IncResultsApplied()
	case PathGoalCorrection:
		a.metrics.IncGoalCorrections()
	}
	log.Info("Applied match result", "matchID", p.match.ID, "path", report.Path, "players", len(written))
	return report, nil
}

func (a *Applier) prepare(ctx context.Context, edited matches.Match) (*plan, error) {
	if edited.ID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	stored, list, err := a.load(ctx, edited.ID)
	if err != nil {
		return nil, err
	}
	byID := players.ByID(list)

	switch stored.State {
	case matches.StateReversed:
		return nil, fmt.Errorf("match %s: %w", edited.ID, ErrReversed)
	case matches.StateConcluded:
		return a.prepareCorrection(stored, edited, byID)
	default:
		return a.prepareFirstApplication(edited, byID)
	}
}

func (a *Applier) prepareFirstApplication(edited matches.Match, byID map[string]players.Player) (*plan, error) {
	if err := validate(edited, byID); err != nil {
		return nil, err
	}

	res, err := rating.Compute(rating.Input{
		Local:        edited.Local.Roster,
		Visitor:      edited.Visitor.Roster,
		LocalGoals:   edited.Local.Goals,
		VisitorGoals: edited.Visitor.Goals,
		Players:      byID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m := edited
	m.Concluded = true
	m.Winner = m.WinnerName(res.Outcome)
	m.EffectsApplied = true
	m.State = matches.StateConcluded
	m.Local.Deltas = res.LocalDeltas
	m.Visitor.Deltas = res.VisitorDeltas

	cs := credits(m)
	report := &Report{
		MatchID: m.ID,
		Path:    PathFirstApplication,
		Match:   m,
		Rating:  &res,
		Changes: changes(cs, byID, m.ID, applyCredit),
		Names:   rosterNames(m, byID),
	}
	return &plan{report: report, match: m, credits: cs, step: applyCredit}, nil
}

func (a *Applier) prepareCorrection(stored, edited matches.Match, byID map[string]players.Player) (*plan, error) {
	outcome := matches.OutcomeFromGoals(edited.Local.Goals, edited.Visitor.Goals)
	if outcome != stored.Outcome() {
		return nil, fmt.Errorf("match %s was %s, got %s: %w", stored.ID, stored.Outcome(), outcome, ErrOutcomeLocked)
	}

	m := stored
	for _, side := range matches.Sides {
		m.Team(side).Goals = edited.Team(side).Goals
		m.Team(side).Scorers = edited.Team(side).Scorers
	}
	if err := validate(m, byID); err != nil {
		return nil, err
	}

	previous := stored.GoalsByPlayer()
	log.Debug("Correcting goal attribution", "matchID", m.ID, "diff", matches.GoalDiff(previous, m.GoalsByPlayer()))
	cs := credits(m)
	for i := range cs {
		cs[i].prior = previous[cs[i].playerID]
	}
	report := &Report{
		MatchID: m.ID,
		Path:    PathGoalCorrection,
		Match:   m,
		Changes: changes(cs, byID, m.ID, correctGoals),
		Names:   rosterNames(m, byID),
	}
	return &plan{report: report, match: m, credits: cs, step: correctGoals}, nil
}

// Resume completes the player phase of an applied match. Players missing the
// match get its full effects; the others only have their goals brought in
// line with the stored scorers, which also finishes an interrupted goal
// correction.
func (a *Applier) Resume(ctx context.Context, matchID string) (*Report, error) {
	stored, list, err := a.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	byID := players.ByID(list)
	report := &Report{MatchID: matchID, Path: PathNoop, Match: stored, Names: rosterNames(stored, byID)}
	if !stored.EffectsApplied {
		log.Info("Nothing to resume", "matchID", matchID, "state", stored.State)
		return report, nil
	}

	cs := credits(stored)
	report.Path = PathResume
	report.Changes = changes(cs, byID, matchID, settleCredit)

	written, pending, err := a.writePlayers(ctx, matchID, cs, settleCredit)
	report.PlayersWritten, report.Pending = written, pending
	if err != nil {
		return report, fmt.Errorf("resume of match %s incomplete: %w", matchID, err)
	}
	if len(written) > 0 {
		a.metrics.IncResumes()
	}
	log.Info("Resumed match result", "matchID", matchID, "players", len(written))
	return report, nil
}

// PlanReversal computes what Reverse would do without writing anything.
func (a *Applier) PlanReversal(ctx context.Context, matchID string) (*Report, error) {
	stored, list, err := a.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	report, _ := reversal(stored, list)
	report.DryRun = true
	return report, nil
}

// Reverse undoes the effects of an applied match: players first, then the
// match is marked reversed. It does nothing for a match that was never
// applied. A failed reversal can be retried.
func (a *Applier) Reverse(ctx context.Context, matchID string) (*Report, error) {
	start := time.Now()
	defer func() { a.metrics.ObserveApplyDuration(time.Since(start).Seconds()) }()

	stored, list, err := a.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	report, cs := reversal(stored, list)
	if report.Path == PathNoop {
		log.Info("Match has no effects to reverse", "matchID", matchID)
		return report, nil
	}

	written, pending, err := a.writePlayers(ctx, matchID, cs, revertCredit)
	report.PlayersWritten, report.Pending = written, pending
	if err != nil {
		return report, fmt.Errorf("reversal of match %s incomplete: %w", matchID, err)
	}

	m := report.Match
	update := m.SidesDocument()
	update[matches.FieldEffectsApplied] = false
	update[matches.FieldState] = string(matches.StateReversed)
	if err := a.store.Update(ctx, docstore.Matches, matchID, update); err != nil {
		return report, fmt.Errorf("players reverted but match %s not updated: %w", matchID, err)
	}

	a.metrics.IncReversals()
	log.Info("Reversed match result", "matchID", matchID, "players", len(written))
	return report, nil
}

func reversal(stored matches.Match, list []players.Player) (*Report, []credit) {
	byID := players.ByID(list)
	if !stored.EffectsApplied {
		return &Report{MatchID: stored.ID, Path: PathNoop, Match: stored, Names: rosterNames(stored, byID)}, nil
	}
	cs := credits(stored)

	m := stored
	m.EffectsApplied = false
	m.State = matches.StateReversed
	m.Local.Deltas = nil
	m.Visitor.Deltas = nil

	return &Report{
		MatchID: stored.ID,
		Path:    PathReversal,
		Match:   m,
		Changes: changes(cs, byID, stored.ID, revertCredit),
		Names:   rosterNames(stored, byID),
	}, cs
}

// load reads the players and the normalized match.
func (a *Applier) load(ctx context.Context, matchID string) (matches.Match, []players.Player, error) {
	if matchID == "" {
		return matches.Match{}, nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	recs, err := a.store.List(ctx, docstore.Players)
	if err != nil {
		return matches.Match{}, nil, fmt.Errorf("failed to list players: %w", err)
	}
	list := players.FromRecords(recs)

	rec, err := a.store.Get(ctx, docstore.Matches, matchID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return matches.Match{}, nil, fmt.Errorf("match %s: %w", matchID, err)
		}
		return matches.Match{}, nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return matches.Normalize(rec, list), list, nil
}

// changes previews fn for every credit against the players as last read.
func changes(cs []credit, byID map[string]players.Player, matchID string, fn step) []PlayerChange {
	out := make([]PlayerChange, 0, len(cs))
	for _, c := range cs {
		before := byID[c.playerID]
		after, changed := fn(before, matchID, c)
		if !changed {
			continue
		}
		out = append(out, PlayerChange{
			PlayerID:     c.playerID,
			Name:         before.DisplayName(),
			Side:         c.side,
			Result:       c.result,
			RatingBefore: before.Rating,
			RatingAfter:  after.Rating,
			Goals:        after.Goals - before.Goals,
		})
	}
	return out
}

// rosterNames maps the players on both rosters to their display names.
func rosterNames(m matches.Match, byID map[string]players.Player) map[string]string {
	out := make(map[string]string)
	for _, side := range matches.Sides {
		for _, id := range m.Team(side).PlayerIDs() {
			if p, ok := byID[id]; ok {
				out[id] = p.DisplayName()
			}
		}
	}
	return out
}
