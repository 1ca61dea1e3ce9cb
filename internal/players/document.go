package players

import "github.com/egarcia91/BondiolaFC/internal/docstore"

// Document field names.
const (
	FieldNickname       = "apodo"
	FieldName           = "nombre"
	FieldPosition       = "posicion"
	FieldBirthDate      = "fechaNacimiento"
	FieldFavoriteSide   = "equipoFavorito"
	FieldDescription    = "descripcion"
	FieldMail           = "mail"
	FieldRegistered     = "registrado"
	FieldAdmin          = "admin"
	FieldRating         = "elo"
	FieldRatingHistory  = "eloHistorial"
	FieldMatches        = "partidos"
	FieldWins           = "victorias"
	FieldDraws          = "partidosEmpatados"
	FieldLosses         = "partidosPerdidos"
	FieldGoals          = "goles"
	FieldAppliedMatches = "partidosAplicados"
	FieldAppliedGoals   = "golesAplicados"
)

// FromRecord reads a stored player. Documents written before ratings existed
// get the default rating, and an empty history is seeded with the current
// rating so that reverting a match can always restore it.
func FromRecord(rec docstore.Record) Player {
	d := rec.Data
	p := Player{
		ID:             rec.ID,
		Nickname:       docstore.String(d[FieldNickname]),
		Name:           docstore.String(d[FieldName]),
		Position:       docstore.String(d[FieldPosition]),
		BirthDate:      docstore.String(d[FieldBirthDate]),
		FavoriteSide:   docstore.String(d[FieldFavoriteSide]),
		Description:    docstore.String(d[FieldDescription]),
		Mail:           docstore.String(d[FieldMail]),
		Registered:     docstore.Bool(d[FieldRegistered]),
		Admin:          docstore.Bool(d[FieldAdmin]),
		Rating:         DefaultRating,
		RatingHistory:  docstore.Ints(d[FieldRatingHistory]),
		Matches:        docstore.Int(d[FieldMatches]),
		Wins:           docstore.Int(d[FieldWins]),
		Draws:          docstore.Int(d[FieldDraws]),
		Losses:         docstore.Int(d[FieldLosses]),
		Goals:          docstore.Int(d[FieldGoals]),
		AppliedMatches: docstore.Strings(d[FieldAppliedMatches]),
		AppliedGoals:   appliedGoals(d[FieldAppliedGoals]),
	}
	if v, ok := d[FieldRating]; ok && v != nil {
		p.Rating = max(0, docstore.Int(v))
	}
	if len(p.RatingHistory) == 0 {
		p.RatingHistory = []int{p.Rating}
	}
	return p
}

func appliedGoals(v any) map[string]int {
	m, ok := docstore.Map(v)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for id, g := range m {
		out[id] = max(0, docstore.Int(g))
	}
	return out
}

// FromRecords converts a list of stored players, preserving order.
func FromRecords(recs []docstore.Record) []Player {
	out := make([]Player, len(recs))
	for i, r := range recs {
		out[i] = FromRecord(r)
	}
	return out
}

// Document encodes the full player for creation.
func (p Player) Document() docstore.Document {
	doc := docstore.Document{
		FieldNickname:     p.Nickname,
		FieldName:         p.Name,
		FieldPosition:     p.Position,
		FieldBirthDate:    p.BirthDate,
		FieldFavoriteSide: p.FavoriteSide,
		FieldDescription:  p.Description,
		FieldMail:         p.Mail,
		FieldRegistered:   p.Registered,
		FieldAdmin:        p.Admin,
	}
	for k, v := range p.StatsDocument() {
		doc[k] = v
	}
	return doc
}

// StatsDocument encodes only the fields owned by the rating engine, for
// partial updates.
func (p Player) StatsDocument() docstore.Document {
	history := p.RatingHistory
	if history == nil {
		history = []int{}
	}
	applied := p.AppliedMatches
	if applied == nil {
		applied = []string{}
	}
	goals := make(map[string]any, len(p.AppliedGoals))
	for id, g := range p.AppliedGoals {
		goals[id] = g
	}
	return docstore.Document{
		FieldRating:         p.Rating,
		FieldRatingHistory:  history,
		FieldMatches:        p.Matches,
		FieldWins:           p.Wins,
		FieldDraws:          p.Draws,
		FieldLosses:         p.Losses,
		FieldGoals:          p.Goals,
		FieldAppliedMatches: applied,
		FieldAppliedGoals:   goals,
	}
}
