package slack

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/notifier"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendFixtureNotification(match matches.Match, roster map[string]players.Player, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatFixtureNotification(match, roster), dryRun)
	return err
}

func (s *Notifier) SendResultNotification(report *effects.Report, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatResultNotification(report), dryRun)
	return err
}

func (s *Notifier) SendReversalNotification(report *effects.Report, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatReversalNotification(report), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(list []players.Player, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatLeaderboard(list), dryRun)
	return err
}

func plainSection(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

// formatFixtureNotification creates the Slack message for a newly scheduled match using Block Kit.
func (s *Notifier) formatFixtureNotification(match matches.Match, roster map[string]players.Player) slack.Message {
	blocks := []slack.Block{
		header("⚽ Nuevo partido ⚽"),
		plainSection(fmt.Sprintf("Lugar: %s\nFecha: %s %s", match.Venue, match.Date, match.Time)),
	}

	for _, side := range matches.Sides {
		team := match.Team(side)
		var names []string
		for _, e := range team.Roster {
			name := e.GuestName
			if !e.IsGuest() {
				name = e.PlayerID
				if p, ok := roster[e.PlayerID]; ok {
					name = p.DisplayName()
				}
			}
			names = append(names, "• "+name)
		}
		if len(names) == 0 {
			names = []string{"Sin jugadores"}
		}
		blocks = append(blocks, plainSection(team.Name+":\n"+strings.Join(names, "\n")))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a recorded result using Block Kit.
func (s *Notifier) formatResultNotification(report *effects.Report) slack.Message {
	m := report.Match
	title := "⚽ Partido terminado ⚽"
	if report.Path == effects.PathGoalCorrection {
		title = "✏️ Goles corregidos"
	}
	blocks := []slack.Block{
		header(title),
		plainSection(fmt.Sprintf("%s %d - %d %s\n%s %s, %s", m.Local.Name, m.Local.Goals, m.Visitor.Goals, m.Visitor.Name, m.Date, m.Time, m.Venue)),
	}

	winner := "Empate"
	if side, ok := m.Outcome().Winner(); ok {
		winner = fmt.Sprintf("Ganó %s 🏆", m.Team(side).Name)
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", winner, true, false)))

	if scorers := scorerLines(report); len(scorers) > 0 {
		blocks = append(blocks, plainSection("Goles:\n"+strings.Join(scorers, "\n")))
	}

	if report.Path != effects.PathGoalCorrection {
		if lines := ratingLines(report.Changes); len(lines) > 0 {
			blocks = append(blocks, plainSection("Elo:\n"+strings.Join(lines, "\n")))
		}
	}
	if len(report.Pending) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text",
			fmt.Sprintf("⚠️ %d jugadores pendientes de actualizar", len(report.Pending)), true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatReversalNotification creates the Slack message for a match whose effects were undone.
func (s *Notifier) formatReversalNotification(report *effects.Report) slack.Message {
	m := report.Match
	blocks := []slack.Block{
		header("🗑️ Partido anulado"),
		plainSection(fmt.Sprintf("%s %d - %d %s (%s %s)", m.Local.Name, m.Local.Goals, m.Visitor.Goals, m.Visitor.Name, m.Date, m.Time)),
	}
	if lines := ratingLines(report.Changes); len(lines) > 0 {
		blocks = append(blocks, plainSection("Elo:\n"+strings.Join(lines, "\n")))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message ranking the players by rating.
func (s *Notifier) formatLeaderboard(list []players.Player) slack.Message {
	blocks := []slack.Block{header("🏆 Ranking 🏆")}

	if len(list) == 0 {
		blocks = append(blocks, plainSection("Todavía no hay jugadores."))
		return slack.NewBlockMessage(blocks...)
	}

	ranked := slices.Clone(list)
	slices.SortStableFunc(ranked, func(a, b players.Player) int {
		return cmp.Compare(b.Rating, a.Rating)
	})

	for i, p := range ranked {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		playerText := fmt.Sprintf("%d. %s %s\n> *Elo*: %d | *PJ*: %d | *G/E/P*: %d/%d/%d | *Goles*: %d",
			rank, medal, p.DisplayName(), p.Rating, p.Matches, p.Wins, p.Draws, p.Losses, p.Goals)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// ratingLines renders rating changes like "Chino 1000 → 1050 (+50)".
func ratingLines(changes []effects.PlayerChange) []string {
	var lines []string
	for _, c := range changes {
		lines = append(lines, fmt.Sprintf("• %s %d → %d (%+d)", c.Name, c.RatingBefore, c.RatingAfter, c.RatingAfter-c.RatingBefore))
	}
	return lines
}

// scorerLines lists each scorer with its goal count, in the order they scored.
func scorerLines(report *effects.Report) []string {
	m := report.Match
	var (
		order  []string
		counts = make(map[string]int)
	)
	for _, side := range matches.Sides {
		for _, marker := range m.Team(side).Scorers {
			var name string
			switch {
			case marker.IsGeneral():
				name = matches.LegacyGeneralLabel
			case marker.IsGuest():
				name = marker.GuestName() + " (invitado)"
			default:
				name = report.Name(marker.PlayerID())
			}
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}
	lines := make([]string, 0, len(order))
	for _, name := range order {
		if n := counts[name]; n > 1 {
			lines = append(lines, fmt.Sprintf("• %s x%d", name, n))
		} else {
			lines = append(lines, "• "+name)
		}
	}
	return lines
}
