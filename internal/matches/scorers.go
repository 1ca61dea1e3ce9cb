package matches

// Tally is the breakdown of a scorer list.
type Tally struct {
	Players map[string]int
	Guests  int
	General int
}

// Total is the number of goals the tally accounts for.
func (t Tally) Total() int {
	n := t.Guests + t.General
	for _, c := range t.Players {
		n += c
	}
	return n
}

// TallyScorers counts goals per player id, and separately the goals of
// guests and unattributed goals.
func TallyScorers(markers []Marker) Tally {
	t := Tally{Players: make(map[string]int)}
	for _, m := range markers {
		switch {
		case m.IsGeneral() || m == "":
			t.General++
		case m.IsGuest():
			t.Guests++
		default:
			t.Players[string(m)]++
		}
	}
	return t
}

// Aggregate returns the goals per player id. Guest and unattributed goals
// never count toward a player.
func Aggregate(markers []Marker) map[string]int {
	return TallyScorers(markers).Players
}

// GoalsByPlayer aggregates the scorers of both sides.
func (m Match) GoalsByPlayer() map[string]int {
	out := Aggregate(m.Local.Scorers)
	for id, n := range Aggregate(m.Visitor.Scorers) {
		out[id] += n
	}
	return out
}

// GoalDiff returns, per player, how many goals after has over before.
// Players whose count did not change are omitted.
func GoalDiff(before, after map[string]int) map[string]int {
	diff := make(map[string]int)
	for id, n := range after {
		if d := n - before[id]; d != 0 {
			diff[id] = d
		}
	}
	for id, n := range before {
		if _, ok := after[id]; !ok && n != 0 {
			diff[id] = -n
		}
	}
	return diff
}
