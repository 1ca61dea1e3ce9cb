package rating

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/players"
)

// Tension factors applied to the rating gap in a decisive match.
const (
	ExpectedWinFactor = 0.25
	UpsetFactor       = 0.75
)

var (
	ErrDuplicatePlayer = errors.New("player appears on both sides")
	ErrUnknownPlayer   = errors.New("player not found")
)

// Input is everything the engine needs about one concluded match.
type Input struct {
	Local   []matches.RosterEntry
	Visitor []matches.RosterEntry

	// Outcome may be left unknown, in which case it is taken from the goals.
	Outcome      matches.Outcome
	LocalGoals   int
	VisitorGoals int

	// Players holds the current state of every player on either roster.
	Players map[string]players.Player
}

// Update is the new state of one player after the match.
type Update struct {
	PlayerID string
	Side     matches.Side
	Result   matches.Result

	// Delta is the change actually applied, after flooring at zero.
	Delta   int
	Rating  int
	History []int
	Matches int
	Wins    int
	Draws   int
	Losses  int
}

// Result is the outcome of a rating computation.
type Result struct {
	Outcome          matches.Outcome
	LocalAverage     int
	VisitorAverage   int
	Diff             int
	LocalSideDelta   int
	VisitorSideDelta int

	Updates []Update

	// LocalDeltas and VisitorDeltas are aligned with the input rosters and
	// hold 0 for guests.
	LocalDeltas   []int
	VisitorDeltas []int
}

// Compute rates a concluded match. It does not modify its input.
func Compute(in Input) (Result, error) {
	outcome := in.Outcome
	if outcome == matches.OutcomeUnknown {
		outcome = matches.OutcomeFromGoals(in.LocalGoals, in.VisitorGoals)
	}

	onLocal := make(map[string]bool)
	for _, e := range in.Local {
		if !e.IsGuest() {
			onLocal[e.PlayerID] = true
		}
	}
	for _, e := range in.Visitor {
		if !e.IsGuest() && onLocal[e.PlayerID] {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicatePlayer, e.PlayerID)
		}
	}

	localAvg, err := average(in.Local, in.Players)
	if err != nil {
		return Result{}, err
	}
	visitorAvg, err := average(in.Visitor, in.Players)
	if err != nil {
		return Result{}, err
	}
	if len(playerIDs(in.Local)) == 0 || len(playerIDs(in.Visitor)) == 0 {
		log.Warn("Rating a match with a side made only of guests", "localAverage", localAvg, "visitorAverage", visitorAvg)
	}

	res := Result{
		Outcome:        outcome,
		LocalAverage:   localAvg,
		VisitorAverage: visitorAvg,
		Diff:           abs(localAvg - visitorAvg),
	}
	res.LocalSideDelta, res.VisitorSideDelta = sideDeltas(outcome, localAvg, visitorAvg)

	res.LocalDeltas = apply(&res, in.Local, matches.Local, res.LocalSideDelta, in.Players)
	res.VisitorDeltas = apply(&res, in.Visitor, matches.Visitor, res.VisitorSideDelta, in.Players)
	return res, nil
}

// sideDeltas returns the rating change shared by every member of each side.
func sideDeltas(outcome matches.Outcome, localAvg, visitorAvg int) (int, int) {
	diff := abs(localAvg - visitorAvg)
	if diff == 0 {
		return 0, 0
	}

	winner, decisive := outcome.Winner()
	if !decisive {
		// A draw moves both sides half the gap toward each other.
		shift := round(float64(diff) / 2)
		if localAvg < visitorAvg {
			return shift, -shift
		}
		return -shift, shift
	}

	winnerAvg, loserAvg := localAvg, visitorAvg
	if winner == matches.Visitor {
		winnerAvg, loserAvg = visitorAvg, localAvg
	}
	factor := ExpectedWinFactor
	if winnerAvg < loserAvg {
		factor = UpsetFactor
	}
	delta := round(float64(diff) * factor)
	if winner == matches.Local {
		return delta, -delta
	}
	return -delta, delta
}

func apply(res *Result, roster []matches.RosterEntry, side matches.Side, sideDelta int, current map[string]players.Player) []int {
	result := res.Outcome.ResultFor(side)
	deltas := make([]int, len(roster))
	for i, e := range roster {
		if e.IsGuest() {
			continue
		}
		p := current[e.PlayerID]

		history := append([]int(nil), p.RatingHistory...)
		if len(history) == 0 {
			history = []int{p.Rating}
		}
		newRating := max(0, p.Rating+sideDelta)
		history = append(history, newRating)

		u := Update{
			PlayerID: e.PlayerID,
			Side:     side,
			Result:   result,
			Delta:    newRating - p.Rating,
			Rating:   newRating,
			History:  history,
			Matches:  p.Matches + 1,
			Wins:     p.Wins,
			Draws:    p.Draws,
			Losses:   p.Losses,
		}
		switch result {
		case matches.Win:
			u.Wins++
		case matches.Draw:
			u.Draws++
		case matches.Loss:
			u.Losses++
		}
		deltas[i] = u.Delta
		res.Updates = append(res.Updates, u)
	}
	return deltas
}

// average is the rounded mean rating of the named players of a roster, or 0
// when there are none.
func average(roster []matches.RosterEntry, current map[string]players.Player) (int, error) {
	ids := playerIDs(roster)
	if len(ids) == 0 {
		return 0, nil
	}
	sum := 0
	for _, id := range ids {
		p, ok := current[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
		}
		sum += p.Rating
	}
	return round(float64(sum) / float64(len(ids))), nil
}

func playerIDs(roster []matches.RosterEntry) []string {
	var ids []string
	for _, e := range roster {
		if !e.IsGuest() {
			ids = append(ids, e.PlayerID)
		}
	}
	return ids
}

// round rounds half up, so -2.5 becomes -2.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
