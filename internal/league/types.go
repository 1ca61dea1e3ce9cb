package league

import (
	"errors"

	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/matches"
)

var (
	// ErrAlreadyConcluded is returned when editing the roster of a match
	// whose result is already recorded.
	ErrAlreadyConcluded = errors.New("match already concluded")

	// ErrPlayerExists is returned when creating a player with a mail that is
	// already registered.
	ErrPlayerExists = errors.New("player already exists")

	// ErrNotEmpty is returned when importing into a store that already holds
	// players or matches.
	ErrNotEmpty = errors.New("store already has data")
)

// EntryInput is one roster entry. ID names a club player; a Name alone is
// resolved against the players and kept as a guest when nobody matches.
type EntryInput struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TeamInput describes one side when creating or editing a match.
type TeamInput struct {
	Name   string       `json:"name,omitempty"`
	Roster []EntryInput `json:"roster"`
}

// FixtureInput describes a match to schedule.
type FixtureInput struct {
	Date    string    `json:"date"`
	Time    string    `json:"time"`
	Venue   string    `json:"venue,omitempty"`
	Local   TeamInput `json:"local"`
	Visitor TeamInput `json:"visitor"`
}

// SideResult is the final score of one side. Scorers hold one entry per goal:
// a player id or name, "guest:<name>" for a guest, or empty when the scorer
// is unknown. A non-nil Roster replaces the side's roster before the first
// application and is ignored afterwards.
type SideResult struct {
	Goals   int          `json:"goals"`
	Scorers []string     `json:"scorers"`
	Roster  []EntryInput `json:"roster,omitempty"`
}

// ResultInput is the result of a match.
type ResultInput struct {
	Local   SideResult `json:"local"`
	Visitor SideResult `json:"visitor"`
}

func (r ResultInput) side(s matches.Side) SideResult {
	if s == matches.Visitor {
		return r.Visitor
	}
	return r.Local
}

// LegacyRecord is a document exported from the previous store, with its id.
type LegacyRecord struct {
	ID   string            `json:"id"`
	Data docstore.Document `json:"data"`
}

// ImportSummary reports what ImportLegacy created. IDs maps legacy ids to
// the ids assigned by the store.
type ImportSummary struct {
	Players int               `json:"players"`
	Matches int               `json:"matches"`
	IDs     map[string]string `json:"ids"`
}
