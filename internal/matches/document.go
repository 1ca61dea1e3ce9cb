package matches

import "github.com/egarcia91/BondiolaFC/internal/docstore"

// Document field names.
const (
	FieldDate           = "fecha"
	FieldTime           = "hora"
	FieldVenue          = "lugar"
	FieldLocal          = "equipoLocal"
	FieldVisitor        = "equipoVisitante"
	FieldConcluded      = "concluido"
	FieldWinner         = "ganador"
	FieldEffectsApplied = "efectosAplicados"
	FieldState          = "estado"

	FieldTeamName    = "nombre"
	FieldTeamRoster  = "jugadores"
	FieldTeamGoals   = "goles"
	FieldTeamScorers = "golesAnotadores"
	FieldTeamDeltas  = "eloDeltas"

	FieldEntryID   = "id"
	FieldEntryName = "nombre"
)

// SideField returns the document field holding side.
func SideField(side Side) string {
	if side == Visitor {
		return FieldVisitor
	}
	return FieldLocal
}

// Document encodes the whole match in canonical form.
func (m Match) Document() docstore.Document {
	doc := docstore.Document{
		FieldDate:           m.Date,
		FieldTime:           m.Time,
		FieldVenue:          m.Venue,
		FieldConcluded:      m.Concluded,
		FieldWinner:         m.Winner,
		FieldEffectsApplied: m.EffectsApplied,
		FieldState:          string(m.State),
	}
	for k, v := range m.SidesDocument() {
		doc[k] = v
	}
	return doc
}

// SidesDocument encodes both teams, for partial updates.
func (m Match) SidesDocument() docstore.Document {
	return docstore.Document{
		FieldLocal:   m.Local.document(),
		FieldVisitor: m.Visitor.document(),
	}
}

func (t Team) document() map[string]any {
	roster := make([]any, len(t.Roster))
	for i, e := range t.Roster {
		if e.IsGuest() {
			roster[i] = map[string]any{FieldEntryName: e.GuestName}
		} else {
			roster[i] = map[string]any{FieldEntryID: e.PlayerID}
		}
	}
	scorers := make([]string, len(t.Scorers))
	for i, s := range t.Scorers {
		scorers[i] = string(s)
	}
	doc := map[string]any{
		FieldTeamName:    t.Name,
		FieldTeamRoster:  roster,
		FieldTeamGoals:   t.Goals,
		FieldTeamScorers: scorers,
	}
	if len(t.Deltas) > 0 {
		doc[FieldTeamDeltas] = append([]int(nil), t.Deltas...)
	}
	return doc
}
