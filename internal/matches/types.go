package matches

import "strings"

// Side identifies one of the two teams of a match.
type Side string

const (
	Local   Side = "local"
	Visitor Side = "visitor"
)

// Sides lists both sides in document order.
var Sides = []Side{Local, Visitor}

// State is the lifecycle of a match with respect to rating effects.
// Effects exist only while a match is concluded, and it is entered once.
type State string

const (
	StateScheduled State = "scheduled"
	StateConcluded State = "concluded"
	StateReversed  State = "reversed"
)

// Default names used by the club for each side.
const (
	DefaultLocalName   = "Rojo"
	DefaultVisitorName = "Azul"
	DefaultGuestName   = "Invitado"
	DefaultVenue       = "Por definir"
)

// Winner values with special meaning.
const (
	WinnerDraw = "Draw"
	LegacyDraw = "Empate"
)

// RosterEntry is one participant of a side: a club player or a guest known
// only by name. Exactly one field is set.
type RosterEntry struct {
	PlayerID  string `json:"player_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
}

// PlayerEntry references a club player.
func PlayerEntry(id string) RosterEntry { return RosterEntry{PlayerID: id} }

// GuestEntry references a guest.
func GuestEntry(name string) RosterEntry { return RosterEntry{GuestName: name} }

func (e RosterEntry) IsGuest() bool { return e.PlayerID == "" }

// Marker attributes one goal: a player id, a guest marker or the general
// (unattributed) marker.
type Marker string

const (
	GeneralMarker      Marker = "__general__"
	LegacyGeneralLabel        = "Anotador general"
	guestPrefix               = "guest:"
)

// GuestMarker attributes a goal to a guest.
func GuestMarker(name string) Marker { return Marker(guestPrefix + name) }

func (m Marker) IsGeneral() bool { return m == GeneralMarker }

func (m Marker) IsGuest() bool { return strings.HasPrefix(string(m), guestPrefix) }

// GuestName returns the guest's name for guest markers, "" otherwise.
func (m Marker) GuestName() string {
	if !m.IsGuest() {
		return ""
	}
	return strings.TrimPrefix(string(m), guestPrefix)
}

// PlayerID returns the player id for player markers, "" otherwise.
func (m Marker) PlayerID() string {
	if m.IsGeneral() || m.IsGuest() || m == "" {
		return ""
	}
	return string(m)
}

// Team is one side of a match.
type Team struct {
	Name    string        `json:"name"`
	Roster  []RosterEntry `json:"roster"`
	Goals   int           `json:"goals"`
	Scorers []Marker      `json:"scorers"`

	// Deltas holds the rating change of each roster entry, aligned by index,
	// once effects have been applied.
	Deltas []int `json:"deltas,omitempty"`
}

// PlayerIDs returns the ids of the club players on the roster, in order.
func (t Team) PlayerIDs() []string {
	var ids []string
	for _, e := range t.Roster {
		if !e.IsGuest() {
			ids = append(ids, e.PlayerID)
		}
	}
	return ids
}

// DeltaAt returns the recorded rating change of roster entry i, or 0.
func (t Team) DeltaAt(i int) int {
	if i < 0 || i >= len(t.Deltas) {
		return 0
	}
	return t.Deltas[i]
}

// Match is the canonical form of a stored match.
type Match struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Venue          string `json:"venue"`
	Local          Team   `json:"local"`
	Visitor        Team   `json:"visitor"`
	Concluded      bool   `json:"concluded"`
	Winner         string `json:"winner"`
	EffectsApplied bool   `json:"effects_applied"`
	State          State  `json:"state"`
}

// Team returns the team playing on side.
func (m *Match) Team(side Side) *Team {
	if side == Visitor {
		return &m.Visitor
	}
	return &m.Local
}

// SideOf reports which side a player is on.
func (m Match) SideOf(playerID string) (Side, bool) {
	for _, side := range Sides {
		for _, id := range m.Team(side).PlayerIDs() {
			if id == playerID {
				return side, true
			}
		}
	}
	return "", false
}

// Outcome is how a match ended. The zero value means not yet known.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeDraw
	OutcomeLocalWin
	OutcomeVisitorWin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDraw:
		return "draw"
	case OutcomeLocalWin:
		return "local_win"
	case OutcomeVisitorWin:
		return "visitor_win"
	}
	return "unknown"
}

// OutcomeFromGoals derives the outcome from the final score.
func OutcomeFromGoals(local, visitor int) Outcome {
	switch {
	case local > visitor:
		return OutcomeLocalWin
	case visitor > local:
		return OutcomeVisitorWin
	default:
		return OutcomeDraw
	}
}

// Outcome reads the recorded winner, falling back to the score when the
// winner is missing or ambiguous.
func (m Match) Outcome() Outcome {
	switch {
	case m.Winner == WinnerDraw || m.Winner == LegacyDraw:
		return OutcomeDraw
	case m.Winner != "" && m.Local.Name != m.Visitor.Name && m.Winner == m.Local.Name:
		return OutcomeLocalWin
	case m.Winner != "" && m.Local.Name != m.Visitor.Name && m.Winner == m.Visitor.Name:
		return OutcomeVisitorWin
	}
	return OutcomeFromGoals(m.Local.Goals, m.Visitor.Goals)
}

// WinnerName is the value stored as the winner for outcome o.
func (m Match) WinnerName(o Outcome) string {
	switch o {
	case OutcomeLocalWin:
		return m.Local.Name
	case OutcomeVisitorWin:
		return m.Visitor.Name
	}
	return WinnerDraw
}

// Result is a single side's view of an outcome.
type Result string

const (
	Win  Result = "win"
	Draw Result = "draw"
	Loss Result = "loss"
)

// ResultFor returns the result of side under outcome o.
func (o Outcome) ResultFor(side Side) Result {
	switch o {
	case OutcomeLocalWin:
		if side == Local {
			return Win
		}
		return Loss
	case OutcomeVisitorWin:
		if side == Visitor {
			return Win
		}
		return Loss
	}
	return Draw
}

// Winner returns the winning side of a decisive outcome.
func (o Outcome) Winner() (Side, bool) {
	switch o {
	case OutcomeLocalWin:
		return Local, true
	case OutcomeVisitorWin:
		return Visitor, true
	}
	return "", false
}
