package matches

import (
	"strings"

	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/players"
)

// Normalize converts a stored match, including the legacy shape where
// rosters are plain name strings, into canonical form. Unreadable values are
// coerced rather than rejected. Normalizing a canonical match returns an
// equal match.
func Normalize(rec docstore.Record, list []players.Player) Match {
	d := rec.Data
	m := Match{
		ID:             rec.ID,
		Date:           docstore.String(d[FieldDate]),
		Time:           docstore.String(d[FieldTime]),
		Venue:          docstore.String(d[FieldVenue]),
		Concluded:      docstore.Bool(d[FieldConcluded]),
		Winner:         docstore.String(d[FieldWinner]),
		EffectsApplied: docstore.Bool(d[FieldEffectsApplied]),
	}
	if m.Winner == LegacyDraw {
		m.Winner = WinnerDraw
	}
	m.State = deriveState(docstore.String(d[FieldState]), m.EffectsApplied)

	known := make(map[string]bool, len(list))
	for _, p := range list {
		known[p.ID] = true
	}
	m.Local = normalizeTeam(d[FieldLocal], DefaultLocalName, list, known)
	m.Visitor = normalizeTeam(d[FieldVisitor], DefaultVisitorName, list, known)
	return m
}

func deriveState(stored string, applied bool) State {
	if applied {
		return StateConcluded
	}
	if State(stored) == StateReversed {
		return StateReversed
	}
	return StateScheduled
}

func normalizeTeam(raw any, defaultName string, list []players.Player, known map[string]bool) Team {
	doc, _ := docstore.Map(raw)
	t := Team{
		Name:  strings.TrimSpace(docstore.String(doc[FieldTeamName])),
		Goals: max(0, docstore.Int(doc[FieldTeamGoals])),
	}
	if t.Name == "" {
		t.Name = defaultName
	}

	seen := make(map[string]bool)
	rosterIDs := make(map[string]bool)
	for _, raw := range docstore.List(doc[FieldTeamRoster]) {
		entry, ok := normalizeEntry(raw, list)
		if !ok {
			continue
		}
		if !entry.IsGuest() {
			if seen[entry.PlayerID] {
				continue
			}
			seen[entry.PlayerID] = true
			rosterIDs[entry.PlayerID] = true
		}
		t.Roster = append(t.Roster, entry)
	}

	for _, raw := range docstore.List(doc[FieldTeamScorers]) {
		t.Scorers = append(t.Scorers, normalizeMarker(raw, list, known, rosterIDs))
	}
	for len(t.Scorers) < t.Goals {
		t.Scorers = append(t.Scorers, GeneralMarker)
	}

	if deltas := docstore.Ints(doc[FieldTeamDeltas]); len(deltas) > 0 {
		t.Deltas = deltas
	}
	return t
}

// normalizeEntry reads one roster entry. Plain strings are legacy names and
// go through the resolver; structured entries are kept as they are.
func normalizeEntry(raw any, list []players.Player) (RosterEntry, bool) {
	if m, ok := docstore.Map(raw); ok {
		if id := strings.TrimSpace(docstore.String(m[FieldEntryID])); id != "" {
			return PlayerEntry(id), true
		}
		name := strings.TrimSpace(docstore.String(m[FieldEntryName]))
		if name == "" {
			name = DefaultGuestName
		}
		return GuestEntry(name), true
	}

	res := players.Resolve(docstore.String(raw), list)
	switch {
	case res.IsEmpty():
		return RosterEntry{}, false
	case res.IsGuest():
		return GuestEntry(res.GuestName), true
	default:
		return PlayerEntry(res.PlayerID), true
	}
}

func normalizeMarker(raw any, list []players.Player, known, rosterIDs map[string]bool) Marker {
	if m, ok := docstore.Map(raw); ok {
		raw = m[FieldEntryID]
		if docstore.String(raw) == "" {
			raw = m[FieldEntryName]
		}
	}
	trimmed := strings.TrimSpace(docstore.String(raw))

	switch {
	case trimmed == "" || trimmed == LegacyGeneralLabel || Marker(trimmed) == GeneralMarker:
		return GeneralMarker
	case Marker(trimmed).IsGuest():
		return Marker(trimmed)
	case known[trimmed] || rosterIDs[trimmed]:
		return Marker(trimmed)
	}

	res := players.Resolve(trimmed, list)
	switch {
	case res.PlayerID != "":
		return Marker(res.PlayerID)
	case res.GuestName != "":
		return GuestMarker(res.GuestName)
	default:
		return GeneralMarker
	}
}
