package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/players"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func sectionText(t *testing.T, b slackapi.Block) string {
	t.Helper()
	section, ok := b.(*slackapi.SectionBlock)
	require.True(t, ok, "expected a section block, got %T", b)
	return section.Text.Text
}

func sampleReport() *effects.Report {
	return &effects.Report{
		MatchID: "m1",
		Path:    effects.PathFirstApplication,
		Match: matches.Match{
			ID:    "m1",
			Date:  "2025-03-14",
			Time:  "21:00",
			Venue: "Cancha 5",
			Local: matches.Team{
				Name:    "Rojo",
				Roster:  []matches.RosterEntry{matches.PlayerEntry("a"), matches.GuestEntry("Primo")},
				Goals:   3,
				Scorers: []matches.Marker{"a", "a", matches.GuestMarker("Primo")},
			},
			Visitor: matches.Team{
				Name:    "Azul",
				Roster:  []matches.RosterEntry{matches.PlayerEntry("c")},
				Goals:   1,
				Scorers: []matches.Marker{matches.GeneralMarker},
			},
			Winner: "Rojo",
		},
		Changes: []effects.PlayerChange{
			{PlayerID: "a", Name: "Chino", RatingBefore: 1000, RatingAfter: 1050},
			{PlayerID: "c", Name: "Tano", RatingBefore: 800, RatingAfter: 750},
		},
		Names: map[string]string{"a": "Chino", "c": "Tano"},
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(plainSection("hola"))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.SendResultNotification(sampleReport(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestPublicMethodsCallSender(t *testing.T) {
	calls := 0
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			calls++
			return "C123", "ts123", nil
		},
	}
	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	report := sampleReport()
	require.NoError(t, notifier.SendFixtureNotification(report.Match, nil, false))
	require.NoError(t, notifier.SendResultNotification(report, false))
	require.NoError(t, notifier.SendReversalNotification(report, false))
	require.NoError(t, notifier.SendLeaderboard(nil, false))
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, metrics.SlackNotifSent())
}

func TestFormatFixtureNotification(t *testing.T) {
	report := sampleReport()
	roster := map[string]players.Player{"a": {ID: "a", Nickname: "Chino"}}
	client := &Notifier{channelID: "C123"}

	msg := client.formatFixtureNotification(report.Match, roster)
	require.Len(t, msg.Blocks.BlockSet, 4)

	h, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, h.Text.Text, "Nuevo partido")
	assert.Equal(t, "Lugar: Cancha 5\nFecha: 2025-03-14 21:00", sectionText(t, msg.Blocks.BlockSet[1]))
	assert.Equal(t, "Rojo:\n• Chino\n• Primo", sectionText(t, msg.Blocks.BlockSet[2]))
	// Unknown players fall back to their id.
	assert.Equal(t, "Azul:\n• c", sectionText(t, msg.Blocks.BlockSet[3]))
}

func TestFormatResultNotification(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(sampleReport())
	require.Len(t, msg.Blocks.BlockSet, 5)

	assert.Equal(t, "Rojo 3 - 1 Azul\n2025-03-14 21:00, Cancha 5", sectionText(t, msg.Blocks.BlockSet[1]))

	ctxBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok)
	require.Len(t, ctxBlock.ContextElements.Elements, 1)
	winner, ok := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "Ganó Rojo 🏆", winner.Text)

	assert.Equal(t, "Goles:\n• Chino x2\n• Primo (invitado)\n• Anotador general", sectionText(t, msg.Blocks.BlockSet[3]))
	assert.Equal(t, "Elo:\n• Chino 1000 → 1050 (+50)\n• Tano 800 → 750 (-50)", sectionText(t, msg.Blocks.BlockSet[4]))
}

func TestFormatResultNotification_Correction(t *testing.T) {
	report := sampleReport()
	report.Path = effects.PathGoalCorrection
	report.Pending = []string{"a"}
	client := &Notifier{channelID: "C123"}

	msg := client.formatResultNotification(report)
	// header, score, winner, scorers, pending
	require.Len(t, msg.Blocks.BlockSet, 5)
	h := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	assert.Contains(t, h.Text.Text, "Goles corregidos")
	_, ok := msg.Blocks.BlockSet[4].(*slackapi.ContextBlock)
	assert.True(t, ok)
}

func TestFormatResultNotification_Draw(t *testing.T) {
	report := sampleReport()
	report.Match.Local.Goals = 1
	report.Match.Local.Scorers = []matches.Marker{"a"}
	report.Match.Winner = matches.WinnerDraw
	client := &Notifier{channelID: "C123"}

	msg := client.formatResultNotification(report)
	ctxBlock := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	winner := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	assert.Equal(t, "Empate", winner.Text)
}

func TestFormatReversalNotification(t *testing.T) {
	report := sampleReport()
	report.Path = effects.PathReversal
	report.Changes = []effects.PlayerChange{{PlayerID: "a", Name: "Chino", RatingBefore: 1050, RatingAfter: 1000}}
	client := &Notifier{channelID: "C123"}

	msg := client.formatReversalNotification(report)
	require.Len(t, msg.Blocks.BlockSet, 3)
	assert.Equal(t, "Elo:\n• Chino 1050 → 1000 (-50)", sectionText(t, msg.Blocks.BlockSet[2]))
}

func TestFormatLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("empty", func(t *testing.T) {
		msg := client.formatLeaderboard(nil)
		require.Len(t, msg.Blocks.BlockSet, 2)
		assert.Equal(t, "Todavía no hay jugadores.", sectionText(t, msg.Blocks.BlockSet[1]))
	})

	t.Run("sorted by rating", func(t *testing.T) {
		list := []players.Player{
			{ID: "1", Nickname: "Tano", Rating: 800},
			{ID: "2", Nickname: "Chino", Rating: 1050, Matches: 1, Wins: 1, Goals: 2},
			{ID: "3", Name: "Juan Perez", Rating: 900},
		}
		msg := client.formatLeaderboard(list)
		require.Len(t, msg.Blocks.BlockSet, 4)
		assert.Equal(t, "1. 🥇 Chino\n> *Elo*: 1050 | *PJ*: 1 | *G/E/P*: 1/0/0 | *Goles*: 2", sectionText(t, msg.Blocks.BlockSet[1]))
		assert.Contains(t, sectionText(t, msg.Blocks.BlockSet[2]), "2. 🥈 Juan Perez")
		assert.Contains(t, sectionText(t, msg.Blocks.BlockSet[3]), "3. 🥉 Tano")
		// The caller's slice is left alone.
		assert.Equal(t, "Tano", list[0].Nickname)
	})
}
