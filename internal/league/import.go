package league

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
)

// ImportLegacy loads players and matches exported from the previous store.
// It only runs against an empty store. Legacy ids are replaced by new ones
// everywhere they appear, and players of matches whose effects were already
// applied are marked so that those matches can be reversed later.
func (s *Service) ImportLegacy(ctx context.Context, legacyPlayers, legacyMatches []LegacyRecord) (ImportSummary, error) {
	for _, c := range []string{docstore.Players, docstore.Matches} {
		recs, err := s.store.List(ctx, c)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("failed to list %s: %w", c, err)
		}
		if len(recs) > 0 {
			return ImportSummary{}, fmt.Errorf("%s has %d documents: %w", c, len(recs), ErrNotEmpty)
		}
	}

	summary := ImportSummary{IDs: make(map[string]string)}
	var list []players.Player
	for _, lp := range legacyPlayers {
		p := players.FromRecord(docstore.Record{Data: lp.Data})
		id, err := s.store.Create(ctx, docstore.Players, p.Document())
		if err != nil {
			return summary, fmt.Errorf("failed to import player %s: %w", lp.ID, err)
		}
		p.ID = id
		if lp.ID != "" {
			summary.IDs[lp.ID] = id
		}
		list = append(list, p)
		summary.Players++
	}

	applied := make(map[string][]string)
	credited := make(map[string]map[string]int)
	for _, lm := range legacyMatches {
		raw := cloneDocument(lm.Data)
		for _, side := range matches.Sides {
			field := matches.SideField(side)
			if team, ok := docstore.Map(raw[field]); ok {
				raw[field] = remapTeam(team, summary.IDs)
			}
		}
		m := matches.Normalize(docstore.Record{Data: raw}, list)
		id, err := s.store.Create(ctx, docstore.Matches, m.Document())
		if err != nil {
			return summary, fmt.Errorf("failed to import match %s: %w", lm.ID, err)
		}
		if lm.ID != "" {
			summary.IDs[lm.ID] = id
		}
		summary.Matches++
		if m.EffectsApplied {
			goals := m.GoalsByPlayer()
			for _, side := range matches.Sides {
				for _, pid := range m.Team(side).PlayerIDs() {
					applied[pid] = append(applied[pid], id)
					if credited[pid] == nil {
						credited[pid] = make(map[string]int)
					}
					credited[pid][id] = goals[pid]
				}
			}
		}
	}

	for _, p := range list {
		ids := applied[p.ID]
		if len(ids) == 0 {
			continue
		}
		marks := slices.Clone(p.AppliedMatches)
		for _, id := range ids {
			if !slices.Contains(marks, id) {
				marks = append(marks, id)
			}
		}
		p.AppliedMatches = marks
		p.AppliedGoals = credited[p.ID]
		stats := p.StatsDocument()
		update := docstore.Document{
			players.FieldAppliedMatches: stats[players.FieldAppliedMatches],
			players.FieldAppliedGoals:   stats[players.FieldAppliedGoals],
		}
		if err := s.store.Update(ctx, docstore.Players, p.ID, update); err != nil {
			return summary, fmt.Errorf("failed to mark applied matches of player %s: %w", p.ID, err)
		}
	}

	log.Info("Imported legacy data", "players", summary.Players, "matches", summary.Matches)
	return summary, nil
}

// remapTeam rewrites legacy player ids in a side's roster and scorers. Names
// are left for the normalizer to resolve.
func remapTeam(team map[string]any, ids map[string]string) map[string]any {
	out := copyMap(team)
	remap := func(v any) any {
		if entry, ok := docstore.Map(v); ok {
			if id, ok := ids[docstore.String(entry[matches.FieldEntryID])]; ok {
				entry = copyMap(entry)
				entry[matches.FieldEntryID] = id
				return entry
			}
			return entry
		}
		if str, ok := v.(string); ok {
			if id, ok := ids[str]; ok {
				return map[string]any{matches.FieldEntryID: id}
			}
		}
		return v
	}
	for _, field := range []string{matches.FieldTeamRoster, matches.FieldTeamScorers} {
		if _, ok := out[field]; !ok {
			continue
		}
		items := docstore.List(out[field])
		remapped := make([]any, len(items))
		for i, v := range items {
			remapped[i] = remap(v)
		}
		out[field] = remapped
	}
	return out
}
