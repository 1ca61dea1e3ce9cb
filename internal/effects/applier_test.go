package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails player updates a set number of times per player.
type flakyStore struct {
	docstore.Store
	mu          sync.Mutex
	failUpdates map[string]int
	updates     []string
}

func (f *flakyStore) Update(ctx context.Context, collection, id string, data docstore.Document) error {
	f.mu.Lock()
	f.updates = append(f.updates, collection+"/"+id)
	if collection == docstore.Players && f.failUpdates[id] > 0 {
		f.failUpdates[id]--
		f.mu.Unlock()
		return errors.New("store unavailable")
	}
	f.mu.Unlock()
	return f.Store.Update(ctx, collection, id, data)
}

func (f *flakyStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func seedPlayer(t *testing.T, mem *docstore.Memory, id, nick string, rating int) {
	t.Helper()
	p := players.New(players.Profile{Nickname: nick})
	p.Rating = rating
	p.RatingHistory = []int{rating}
	require.NoError(t, mem.Seed(docstore.Players, id, p.Document()))
}

func seedFixture(t *testing.T, mem *docstore.Memory, m matches.Match) {
	t.Helper()
	m.State = matches.StateScheduled
	m.Winner = matches.WinnerDraw
	require.NoError(t, mem.Seed(docstore.Matches, m.ID, m.Document()))
}

func getPlayer(t *testing.T, store docstore.Store, id string) players.Player {
	t.Helper()
	rec, err := store.Get(context.Background(), docstore.Players, id)
	require.NoError(t, err)
	return players.FromRecord(rec)
}

func getMatch(t *testing.T, store docstore.Store, id string) matches.Match {
	t.Helper()
	rec, err := store.Get(context.Background(), docstore.Matches, id)
	require.NoError(t, err)
	return matches.Normalize(rec, nil)
}

func snapshot(t *testing.T, store docstore.Store) []players.Player {
	t.Helper()
	recs, err := store.List(context.Background(), docstore.Players)
	require.NoError(t, err)
	return players.FromRecords(recs)
}

// scenarioMatch is A and B (1000 each) against C (800), 2-1.
func scenarioMatch() matches.Match {
	return matches.Match{
		ID:    "m1",
		Date:  "2025-03-17",
		Time:  "21:00",
		Venue: "Village",
		Local: matches.Team{
			Name:    "Rojo",
			Roster:  []matches.RosterEntry{matches.PlayerEntry("A"), matches.PlayerEntry("B"), matches.GuestEntry("Primo")},
			Goals:   2,
			Scorers: []matches.Marker{"A", matches.GuestMarker("Primo")},
		},
		Visitor: matches.Team{
			Name:    "Azul",
			Roster:  []matches.RosterEntry{matches.PlayerEntry("C")},
			Goals:   1,
			Scorers: []matches.Marker{"C"},
		},
	}
}

func setupScenario(t *testing.T) (*docstore.Memory, *Applier, *metrics.Mock) {
	t.Helper()
	mem := docstore.NewMemory()
	seedPlayer(t, mem, "A", "Chino", 1000)
	seedPlayer(t, mem, "B", "Pipa", 1000)
	seedPlayer(t, mem, "C", "Tano", 800)
	seedFixture(t, mem, scenarioMatch())
	m := metrics.NewMock()
	return mem, New(mem, m), m
}

func TestApply_FirstApplication(t *testing.T) {
	ctx := context.Background()
	mem, applier, mock := setupScenario(t)

	report, err := applier.Apply(ctx, scenarioMatch())
	require.NoError(t, err)
	assert.Equal(t, PathFirstApplication, report.Path)
	assert.Equal(t, []string{"A", "B", "C"}, report.PlayersWritten)
	assert.Empty(t, report.Pending)
	require.NotNil(t, report.Rating)
	assert.Equal(t, 200, report.Rating.Diff)

	a := getPlayer(t, mem, "A")
	assert.Equal(t, 1050, a.Rating)
	assert.Equal(t, []int{1000, 1050}, a.RatingHistory)
	assert.Equal(t, 1, a.Matches)
	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, 1, a.Goals)
	assert.Equal(t, []string{"m1"}, a.AppliedMatches)
	assert.Equal(t, map[string]int{"m1": 1}, a.AppliedGoals)

	b := getPlayer(t, mem, "B")
	assert.Equal(t, 1050, b.Rating)
	assert.Equal(t, 0, b.Goals)

	c := getPlayer(t, mem, "C")
	assert.Equal(t, 750, c.Rating)
	assert.Equal(t, 1, c.Losses)
	assert.Equal(t, 1, c.Goals)

	m := getMatch(t, mem, "m1")
	assert.True(t, m.EffectsApplied)
	assert.True(t, m.Concluded)
	assert.Equal(t, matches.StateConcluded, m.State)
	assert.Equal(t, "Rojo", m.Winner)
	assert.Equal(t, []int{50, 50, 0}, m.Local.Deltas)
	assert.Equal(t, []int{-50}, m.Visitor.Deltas)

	assert.Equal(t, 1, mock.ResultsApplied())
	assert.Len(t, mock.ApplyDurations(), 1)

	require.Len(t, report.Changes, 3)
	assert.Equal(t, PlayerChange{
		PlayerID: "A", Name: "Chino", Side: matches.Local, Result: matches.Win,
		RatingBefore: 1000, RatingAfter: 1050, Goals: 1,
	}, report.Changes[0])
}

func TestApply_DrawScenario(t *testing.T) {
	ctx := context.Background()
	mem, applier, _ := setupScenario(t)

	draw := scenarioMatch()
	draw.Local.Goals = 1
	draw.Local.Scorers = []matches.Marker{"B"}

	_, err := applier.Apply(ctx, draw)
	require.NoError(t, err)

	for _, id := range []string{"A", "B", "C"} {
		p := getPlayer(t, mem, id)
		assert.Equal(t, 900, p.Rating, id)
		assert.Equal(t, 1, p.Draws, id)
	}
	assert.Equal(t, matches.WinnerDraw, getMatch(t, mem, "m1").Winner)
}

func TestApply_ReapplyingDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	mem, applier, mock := setupScenario(t)

	_, err := applier.Apply(ctx, scenarioMatch())
	require.NoError(t, err)
	before := snapshot(t, mem)

	report, err := applier.Apply(ctx, scenarioMatch())
	require.NoError(t, err)
	assert.Equal(t, PathGoalCorrection, report.Path)
	assert.Empty(t, report.PlayersWritten)

	if diff := cmp.Diff(before, snapshot(t, mem)); diff != "" {
		t.Errorf("re-applying changed players (-before +after):\n%s", diff)
	}
	assert.Equal(t, 1, mock.ResultsApplied())
}

func TestApply_GoalCorrection(t *testing.T) {
	ctx := context.Background()
	mem, applier, mock := setupScenario(t)

	_, err := applier.Apply(ctx, scenarioMatch())
	require.NoError(t, err)

	corrected := scenarioMatch()
	corrected.Local.Scorers = []matches.Marker{"B", "B"}
	// Roster edits are ignored once effects are applied.
	corrected.Local.Roster = []matches.RosterEntry{matches.PlayerEntry("A"), matches.PlayerEntry("B")}

	report, err := applier.Apply(ctx, corrected)
	require.NoError(t, err)
	assert.Equal(t, PathGoalCorrection, report.Path)
	assert.Equal(t, []string{"A", "B"}, report.PlayersWritten)

	a := getPlayer(t, mem, "A")
	b := getPlayer(t, mem, "B")
	assert.Equal(t, 0, a.Goals)
	assert.Equal(t, 2, b.Goals)
	assert.Equal(t, 1050, a.Rating, "ratings are not recomputed")
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1, b.Matches)

	m := getMatch(t, mem, "m1")
	assert.Equal(t, []matches.Marker{"B", "B"}, m.Local.Scorers)
	assert.Len(t, m.Local.Roster, 3)
	assert.Equal(t, []int{50, 50, 0}, m.Local.Deltas)
	assert.Equal(t, 1, mock.GoalCorrections())

	t.Run("more goals with the same winner", func(t *testing.T) {
		more := scenarioMatch()
		more.Local.Goals = 3
		more.Local.Scorers = []matches.Marker{"B", "B", "A"}

		_, err := applier.Apply(ctx, more)
		require.NoError(t, err)
		assert.Equal(t, 1, getPlayer(t, mem, "A").Goals)
		assert.Equal(t, 2, getPlayer(t, mem, "B").Goals)
		assert.Equal(t, 3, getMatch(t, mem, "m1").Local.Goals)
	})
}

func TestApply_GoalCorrectionAfterPartialFailure(t *testing.T) {
	ctx := context.Background()

	correction := func() matches.Match {
		m := scenarioMatch()
		m.Local.Scorers = []matches.Marker{"B", matches.GuestMarker("Primo")}
		return m
	}
	setup := func(t *testing.T) (*docstore.Memory, *Applier) {
		t.Helper()
		mem, applier, _ := setupScenario(t)
		_, err := applier.Apply(ctx, scenarioMatch())
		require.NoError(t, err)

		applier.store = &flakyStore{Store: mem, failUpdates: map[string]int{"B": 1}}
		report, err := applier.Apply(ctx, correction())
		require.Error(t, err)
		assert.Equal(t, []string{"B"}, report.Pending)
		assert.Equal(t, []string{"A"}, report.PlayersWritten)
		assert.Equal(t, 0, getPlayer(t, mem, "A").Goals)
		assert.Equal(t, 0, getPlayer(t, mem, "B").Goals)
		return mem, applier
	}

	t.Run("retrying the correction", func(t *testing.T) {
		mem, applier := setup(t)

		report, err := applier.Apply(ctx, correction())
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, report.PlayersWritten)
		assert.Equal(t, 0, getPlayer(t, mem, "A").Goals)
		assert.Equal(t, 1, getPlayer(t, mem, "B").Goals)

		again, err := applier.Apply(ctx, correction())
		require.NoError(t, err)
		assert.Empty(t, again.PlayersWritten, "a settled correction changes nothing")
		assert.Equal(t, 1, getPlayer(t, mem, "B").Goals)
	})

	t.Run("resuming the match", func(t *testing.T) {
		mem, applier := setup(t)

		report, err := applier.Resume(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, report.PlayersWritten)

		a := getPlayer(t, mem, "A")
		b := getPlayer(t, mem, "B")
		assert.Equal(t, 0, a.Goals)
		assert.Equal(t, 1, b.Goals)
		assert.Equal(t, map[string]int{"m1": 1}, b.AppliedGoals)
		assert.Equal(t, 1, b.Matches, "resuming does not apply the match again")
		assert.Equal(t, 1050, b.Rating)
	})

	t.Run("reversing afterwards", func(t *testing.T) {
		mem, applier := setup(t)
		_, err := applier.Resume(ctx, "m1")
		require.NoError(t, err)

		_, err = applier.Reverse(ctx, "m1")
		require.NoError(t, err)
		for _, id := range []string{"A", "B", "C"} {
			p := getPlayer(t, mem, id)
			assert.Zero(t, p.Goals, id)
			assert.Empty(t, p.AppliedGoals, id)
		}
	})
}

func TestApply_OutcomeIsLocked(t *testing.T) {
	ctx := context.Background()
	mem, applier, _ := setupScenario(t)

	_, err := applier.Apply(ctx, scenarioMatch())
	require.NoError(t, err)
	before := snapshot(t, mem)

	flipped := scenarioMatch()
	flipped.Visitor.Goals = 3
	flipped.Visitor.Scorers = []matches.Marker{"C", "C", "C"}

	_, err = applier.Apply(ctx, flipped)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutcomeLocked)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, cmp.Diff(before, snapshot(t, mem)))
}

func TestApply_InvalidInput(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(m *matches.Match)
		target error
	}{
		{"missing id", func(m *matches.Match) { m.ID = "" }, ErrInvalidInput},
		{"unknown match", func(m *matches.Match) { m.ID = "nope" }, docstore.ErrNotFound},
		{"unknown player", func(m *matches.Match) {
			m.Visitor.Roster = append(m.Visitor.Roster, matches.PlayerEntry("ghost"))
		}, ErrInvalidInput},
		{"player on both sides", func(m *matches.Match) {
			m.Visitor.Roster = append(m.Visitor.Roster, matches.PlayerEntry("A"))
		}, ErrInvalidInput},
		{"player twice on one side", func(m *matches.Match) {
			m.Local.Roster = append(m.Local.Roster, matches.PlayerEntry("A"))
		}, ErrInvalidInput},
		{"scorer off the roster", func(m *matches.Match) { m.Visitor.Scorers = []matches.Marker{"A"} }, ErrInvalidInput},
		{"more scorers than goals", func(m *matches.Match) {
			m.Visitor.Scorers = []matches.Marker{"C", matches.GeneralMarker}
		}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, applier, _ := setupScenario(t)
			store := &flakyStore{Store: mem}
			applier.store = store

			m := scenarioMatch()
			tt.mutate(&m)
			_, err := applier.Apply(ctx, m)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Zero(t, store.updateCount(), "nothing is written for invalid input")
		})
	}
}

func TestPlan_DoesNotWrite(t *testing.T) {
	ctx := context.Background()
	mem, applier, _ := setupScenario(t)
	store := &flakyStore{Store: mem}
	applier.store = store

	report, err := applier.Plan(ctx, scenarioMatch())
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, PathFirstApplication, report.Path)
	assert.Len(t, report.Changes, 3)
	assert.Zero(t, store.updateCount())

	reversal, err := applier.PlanReversal(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, PathNoop, reversal.Path)
}

func TestResume_HealsPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem, applier, mock := setupScenario(t)
	store := &flakyStore{Store: mem, failUpdates: map[string]int{"B": 1}}
	applier.store = store

	report, err := applier.Apply(ctx, scenarioMatch())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, []string{"B"}, report.Pending)
	assert.Equal(t, []string{"A", "C"}, report.PlayersWritten)
	assert.Equal(t, 1, mock.PlayerWriteFailures())

	// The match is already gated, so a retry cannot rerun the rating math.
	m := getMatch(t, mem, "m1")
	assert.True(t, m.EffectsApplied)
	assert.Equal(t, 1000, getPlayer(t, mem, "B").Rating)

	resumed, err := applier.Resume(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, PathResume, resumed.Path)
	assert.Equal(t, []string{"B"}, resumed.PlayersWritten)
	assert.Equal(t, 1, mock.Resumes())

	b := getPlayer(t, mem, "B")
	assert.Equal(t, 1050, b.Rating)
	assert.Equal(t, []int{1000, 1050}, b.RatingHistory)
	assert.Equal(t, 1, b.Wins)

	a := getPlayer(t, mem, "A")
	assert.Equal(t, 1050, a.Rating, "players written before the failure are not credited twice")
	assert.Equal(t, 1, a.Matches)
	assert.Equal(t, 1, a.Goals)

	again, err := applier.Resume(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, again.PlayersWritten)
}

func TestResume_NotApplied(t *testing.T) {
	_, applier, _ := setupScenario(t)
	report, err := applier.Resume(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, PathNoop, report.Path)
}

func TestReverse(t *testing.T) {
	ctx := context.Background()

	t.Run("undoes a first application", func(t *testing.T) {
		mem, applier, mock := setupScenario(t)
		before := snapshot(t, mem)

		_, err := applier.Apply(ctx, scenarioMatch())
		require.NoError(t, err)

		report, err := applier.Reverse(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, PathReversal, report.Path)
		assert.Equal(t, []string{"A", "B", "C"}, report.PlayersWritten)
		assert.Equal(t, 1, mock.Reversals())

		if diff := cmp.Diff(before, snapshot(t, mem)); diff != "" {
			t.Errorf("apply then reverse changed players (-before +after):\n%s", diff)
		}

		m := getMatch(t, mem, "m1")
		assert.False(t, m.EffectsApplied)
		assert.Equal(t, matches.StateReversed, m.State)
		assert.Nil(t, m.Local.Deltas)

		_, err = applier.Apply(ctx, scenarioMatch())
		assert.ErrorIs(t, err, ErrReversed)
	})

	t.Run("accounts for goal corrections", func(t *testing.T) {
		mem, applier, _ := setupScenario(t)
		before := snapshot(t, mem)

		_, err := applier.Apply(ctx, scenarioMatch())
		require.NoError(t, err)
		corrected := scenarioMatch()
		corrected.Local.Scorers = []matches.Marker{"B", matches.GeneralMarker}
		_, err = applier.Apply(ctx, corrected)
		require.NoError(t, err)

		_, err = applier.Reverse(ctx, "m1")
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(before, snapshot(t, mem)))
	})

	t.Run("is a no-op when never applied", func(t *testing.T) {
		mem, applier, mock := setupScenario(t)
		store := &flakyStore{Store: mem}
		applier.store = store

		report, err := applier.Reverse(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, PathNoop, report.Path)
		assert.Zero(t, store.updateCount())
		assert.Zero(t, mock.Reversals())
	})

	t.Run("can be retried after a failure", func(t *testing.T) {
		mem, applier, _ := setupScenario(t)
		before := snapshot(t, mem)
		_, err := applier.Apply(ctx, scenarioMatch())
		require.NoError(t, err)

		applier.store = &flakyStore{Store: mem, failUpdates: map[string]int{"C": 1}}
		report, err := applier.Reverse(ctx, "m1")
		require.Error(t, err)
		assert.Equal(t, []string{"C"}, report.Pending)
		assert.True(t, getMatch(t, mem, "m1").EffectsApplied, "match stays applied until every player is reverted")

		_, err = applier.Reverse(ctx, "m1")
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(before, snapshot(t, mem)))
	})
}

func TestApplyReverseRoundTrip(t *testing.T) {
	ctx := context.Background()
	faker := gofakeit.New(2024)

	for i := 0; i < 50; i++ {
		t.Run(fmt.Sprintf("match %d", i), func(t *testing.T) {
			mem := docstore.NewMemory()

			var ids []string
			n := faker.IntRange(2, 10)
			for j := 0; j < n; j++ {
				id := fmt.Sprintf("p%d", j)
				p := players.New(players.Profile{Nickname: faker.FirstName()})
				p.Rating = faker.IntRange(0, 1500)
				p.RatingHistory = []int{players.DefaultRating, p.Rating}
				p.Wins = faker.IntRange(0, 5)
				p.Draws = faker.IntRange(0, 5)
				p.Losses = faker.IntRange(0, 5)
				p.Matches = p.Wins + p.Draws + p.Losses
				p.Goals = faker.IntRange(0, 20)
				require.NoError(t, mem.Seed(docstore.Players, id, p.Document()))
				ids = append(ids, id)
			}
			faker.ShuffleStrings(ids)
			split := faker.IntRange(0, len(ids))

			team := func(name string, ids []string) matches.Team {
				tm := matches.Team{Name: name}
				for _, id := range ids {
					tm.Roster = append(tm.Roster, matches.PlayerEntry(id))
				}
				if faker.Bool() {
					tm.Roster = append(tm.Roster, matches.GuestEntry(faker.FirstName()))
				}
				tm.Goals = faker.IntRange(0, 6)
				for g := 0; g < tm.Goals; g++ {
					switch {
					case len(ids) > 0 && faker.IntRange(0, 2) > 0:
						tm.Scorers = append(tm.Scorers, matches.Marker(ids[faker.IntRange(0, len(ids)-1)]))
					case faker.Bool():
						tm.Scorers = append(tm.Scorers, matches.GuestMarker("x"))
					default:
						tm.Scorers = append(tm.Scorers, matches.GeneralMarker)
					}
				}
				return tm
			}
			m := matches.Match{ID: "m", Local: team("Rojo", ids[:split]), Visitor: team("Azul", ids[split:])}
			seedFixture(t, mem, m)

			applier := New(mem, metrics.NewMock())
			before := snapshot(t, mem)

			_, err := applier.Apply(ctx, m)
			require.NoError(t, err)
			for _, p := range snapshot(t, mem) {
				assert.GreaterOrEqual(t, p.Rating, 0)
				assert.Equal(t, p.Matches, p.Wins+p.Draws+p.Losses)
			}

			_, err = applier.Reverse(ctx, "m")
			require.NoError(t, err)

			if diff := cmp.Diff(before, snapshot(t, mem)); diff != "" {
				t.Errorf("round trip changed players (-before +after):\n%s", diff)
			}
		})
	}
}

func TestCreditSteps(t *testing.T) {
	p := players.Player{ID: "A", Rating: 30, Goals: 1, Losses: 2, Matches: 2}
	c := credit{playerID: "A", result: matches.Loss, delta: -30, goals: 2}

	applied, changed := applyCredit(p, "m", c)
	require.True(t, changed)
	assert.Equal(t, 0, applied.Rating)
	assert.Equal(t, []int{30, 0}, applied.RatingHistory)
	assert.Equal(t, 3, applied.Losses)
	assert.Equal(t, 3, applied.Goals)

	_, changed = applyCredit(applied, "m", c)
	assert.False(t, changed, "a player carrying the match is left alone")

	reverted, changed := revertCredit(applied, "m", c)
	require.True(t, changed)
	assert.Equal(t, 30, reverted.Rating)
	assert.Equal(t, []int{30}, reverted.RatingHistory)
	assert.Equal(t, 2, reverted.Losses)
	assert.Equal(t, 1, reverted.Goals)
	assert.Empty(t, reverted.AppliedMatches)

	floored, _ := revertCredit(players.Player{AppliedMatches: []string{"m"}}, "m", c)
	assert.Zero(t, floored.Goals)
	assert.Zero(t, floored.Losses)
	assert.Zero(t, floored.Matches)

	fixed, changed := correctGoals(applied, "m", credit{goals: 0})
	require.True(t, changed)
	assert.Equal(t, 1, fixed.Goals)
	assert.Equal(t, map[string]int{"m": 0}, fixed.AppliedGoals)

	_, changed = correctGoals(fixed, "m", credit{goals: 0})
	assert.False(t, changed, "correcting to the credited count is a no-op")

	legacy := players.Player{Goals: 4, AppliedMatches: []string{"m"}}
	legacy, changed = correctGoals(legacy, "m", credit{goals: 1, prior: 3})
	require.True(t, changed)
	assert.Equal(t, 2, legacy.Goals, "players without a goal record fall back to the previous scorers")

	settled, changed := settleCredit(p, "m", c)
	require.True(t, changed)
	assert.Equal(t, applied, settled)
}
