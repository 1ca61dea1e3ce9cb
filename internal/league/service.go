package league

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/matches"
	"github.com/egarcia91/BondiolaFC/internal/notifier"
	"github.com/egarcia91/BondiolaFC/internal/players"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

// Service is the club workflow: players, fixtures, results and their undo.
type Service struct {
	store    docstore.Store
	applier  *effects.Applier
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	now      func() time.Time
}

// New creates a Service.
func New(store docstore.Store, applier *effects.Applier, n notifier.Notifier, ps pubsub.PubSubClient) *Service {
	return &Service{
		store:    store,
		applier:  applier,
		notifier: n,
		pubsub:   ps,
		now:      time.Now,
	}
}

// CreatePlayer registers a new player with the default rating.
func (s *Service) CreatePlayer(ctx context.Context, profile players.Profile) (players.Player, error) {
	profile.Nickname = strings.TrimSpace(profile.Nickname)
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Mail = strings.TrimSpace(profile.Mail)
	if profile.Nickname == "" && profile.Name == "" {
		return players.Player{}, fmt.Errorf("%w: a player needs a nickname or a name", effects.ErrInvalidInput)
	}
	if profile.Mail != "" {
		_, err := s.store.FindOne(ctx, docstore.Players, players.FieldMail, profile.Mail)
		switch {
		case err == nil:
			return players.Player{}, fmt.Errorf("%w: %s", ErrPlayerExists, profile.Mail)
		case !errors.Is(err, docstore.ErrNotFound):
			return players.Player{}, fmt.Errorf("failed to look up player: %w", err)
		}
	}

	p := players.New(profile)
	id, err := s.store.Create(ctx, docstore.Players, p.Document())
	if err != nil {
		return players.Player{}, fmt.Errorf("failed to create player: %w", err)
	}
	p.ID = id
	log.Info("Created player", "playerID", id, "name", p.DisplayName())
	return p, nil
}

// ListPlayers returns every player in store order.
func (s *Service) ListPlayers(ctx context.Context) ([]players.Player, error) {
	recs, err := s.store.List(ctx, docstore.Players)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players.FromRecords(recs), nil
}

// SendLeaderboard posts the current ranking.
func (s *Service) SendLeaderboard(ctx context.Context, dryRun bool) ([]players.Player, error) {
	list, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.SendLeaderboard(list, dryRun); err != nil {
		return nil, fmt.Errorf("failed to send leaderboard: %w", err)
	}
	return list, nil
}

// ListMatches returns every match, newest first.
func (s *Service) ListMatches(ctx context.Context) ([]matches.Match, error) {
	list, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.List(ctx, docstore.Matches)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	out := make([]matches.Match, 0, len(recs))
	for _, rec := range recs {
		out = append(out, matches.Normalize(rec, list))
	}
	slices.SortStableFunc(out, func(a, b matches.Match) int {
		return cmp.Or(cmp.Compare(b.Date, a.Date), cmp.Compare(b.Time, a.Time))
	})
	return out, nil
}

// GetMatch returns one match in canonical form.
func (s *Service) GetMatch(ctx context.Context, id string) (matches.Match, error) {
	list, err := s.ListPlayers(ctx)
	if err != nil {
		return matches.Match{}, err
	}
	rec, err := s.getMatch(ctx, id)
	if err != nil {
		return matches.Match{}, err
	}
	return matches.Normalize(rec, list), nil
}

func (s *Service) getMatch(ctx context.Context, id string) (docstore.Record, error) {
	rec, err := s.store.Get(ctx, docstore.Matches, id)
	if err != nil {
		return docstore.Record{}, fmt.Errorf("match %s: %w", id, err)
	}
	return rec, nil
}

// CreateFixture schedules a match. With dryRun the match is built but not
// stored and nobody is notified.
func (s *Service) CreateFixture(ctx context.Context, in FixtureInput, dryRun bool) (matches.Match, error) {
	in.Date = strings.TrimSpace(in.Date)
	if in.Date == "" {
		return matches.Match{}, fmt.Errorf("%w: a match needs a date", effects.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Venue) == "" {
		in.Venue = matches.DefaultVenue
	}

	list, err := s.ListPlayers(ctx)
	if err != nil {
		return matches.Match{}, err
	}
	raw := docstore.Document{
		matches.FieldDate:    in.Date,
		matches.FieldTime:    strings.TrimSpace(in.Time),
		matches.FieldVenue:   strings.TrimSpace(in.Venue),
		matches.FieldLocal:   in.Local.document(nil),
		matches.FieldVisitor: in.Visitor.document(nil),
	}
	m := matches.Normalize(docstore.Record{Data: raw}, list)
	if dryRun {
		log.Info("[Dry Run] Would create match", "date", m.Date, "venue", m.Venue)
		return m, nil
	}

	id, err := s.store.Create(ctx, docstore.Matches, m.Document())
	if err != nil {
		return matches.Match{}, fmt.Errorf("failed to create match: %w", err)
	}
	m.ID = id
	log.Info("Created match", "matchID", id, "date", m.Date, "time", m.Time)

	if err := s.notifier.SendFixtureNotification(m, players.ByID(list), false); err != nil {
		log.Error("Failed to send fixture notification", "matchID", id, "error", err)
	}
	return m, nil
}

// CreateFixtureFromMessage schedules the match announced by a chat message.
func (s *Service) CreateFixtureFromMessage(ctx context.Context, text string, dryRun bool) (matches.Match, error) {
	f, err := matches.ParseFixture(text, s.now())
	if err != nil {
		return matches.Match{}, fmt.Errorf("%w: %w", effects.ErrInvalidInput, err)
	}
	log.Debug("Parsed fixture message", "label", f.Label, "local", len(f.Local), "visitor", len(f.Visitor))
	return s.CreateFixture(ctx, FixtureInput{
		Date:    f.Date,
		Time:    f.Time,
		Venue:   f.Venue,
		Local:   TeamInput{Name: matches.DefaultLocalName, Roster: namedEntries(f.Local)},
		Visitor: TeamInput{Name: matches.DefaultVisitorName, Roster: namedEntries(f.Visitor)},
	}, dryRun)
}

// EditRoster replaces both sides of a match that has not been played yet.
func (s *Service) EditRoster(ctx context.Context, id string, local, visitor TeamInput) (matches.Match, error) {
	list, err := s.ListPlayers(ctx)
	if err != nil {
		return matches.Match{}, err
	}
	rec, err := s.getMatch(ctx, id)
	if err != nil {
		return matches.Match{}, err
	}
	stored := matches.Normalize(rec, list)
	if stored.State != matches.StateScheduled {
		return matches.Match{}, fmt.Errorf("match %s is %s: %w", id, stored.State, ErrAlreadyConcluded)
	}

	raw := cloneDocument(rec.Data)
	for _, side := range matches.Sides {
		field := matches.SideField(side)
		in := local
		if side == matches.Visitor {
			in = visitor
		}
		current, _ := docstore.Map(raw[field])
		raw[field] = in.document(current)
	}
	m := matches.Normalize(docstore.Record{ID: id, Data: raw}, list)
	if err := s.store.Update(ctx, docstore.Matches, id, m.SidesDocument()); err != nil {
		return matches.Match{}, fmt.Errorf("failed to update match %s: %w", id, err)
	}
	log.Info("Updated roster", "matchID", id, "local", len(m.Local.Roster), "visitor", len(m.Visitor.Roster))
	return m, nil
}

// RecordResult records the final score of a match. The first result applies
// rating and stat effects; later results may only move goals between
// scorers. With dryRun nothing is written and nobody is notified.
func (s *Service) RecordResult(ctx context.Context, id string, in ResultInput, dryRun bool) (*effects.Report, error) {
	// The normalizer floors negative goals, so they are rejected up front.
	if in.Local.Goals < 0 || in.Visitor.Goals < 0 {
		return nil, fmt.Errorf("%w: goals cannot be negative", effects.ErrInvalidInput)
	}
	list, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.getMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	raw := cloneDocument(rec.Data)
	for _, side := range matches.Sides {
		field := matches.SideField(side)
		team, _ := docstore.Map(raw[field])
		team = copyMap(team)
		res := in.side(side)
		if res.Roster != nil {
			team[matches.FieldTeamRoster] = entries(res.Roster)
		}
		team[matches.FieldTeamGoals] = res.Goals
		scorers := make([]any, len(res.Scorers))
		for i, sc := range res.Scorers {
			scorers[i] = sc
		}
		team[matches.FieldTeamScorers] = scorers
		raw[field] = team
	}
	edited := matches.Normalize(docstore.Record{ID: id, Data: raw}, list)

	if dryRun {
		return s.applier.Plan(ctx, edited)
	}
	report, err := s.applier.Apply(ctx, edited)
	if report == nil {
		return nil, err
	}
	// A report means the match itself was saved. The event goes out even when
	// some player updates failed, so that its subscriber can resume them.
	if err != nil {
		log.Warn("Result saved with pending players", "matchID", id, "pending", report.Pending)
	}

	event := pubsub.EventMatchConcluded
	if report.Path == effects.PathGoalCorrection {
		event = pubsub.EventGoalsCorrected
	}
	s.publish(event, report)
	if nerr := s.notifier.SendResultNotification(report, false); nerr != nil {
		log.Error("Failed to send result notification", "matchID", id, "error", nerr)
	}
	return report, err
}

// ResumeResult finishes a result whose player updates were interrupted.
func (s *Service) ResumeResult(ctx context.Context, id string) (*effects.Report, error) {
	return s.applier.Resume(ctx, id)
}

// DeleteMatch undoes the effects of a match and then removes it. A failed
// reversal leaves the match in place so that the delete can be retried.
func (s *Service) DeleteMatch(ctx context.Context, id string, dryRun bool) (*effects.Report, error) {
	if dryRun {
		return s.applier.PlanReversal(ctx, id)
	}
	report, err := s.applier.Reverse(ctx, id)
	if err != nil {
		return report, err
	}
	if err := s.store.Delete(ctx, docstore.Matches, id); err != nil {
		return report, fmt.Errorf("effects reversed but match %s not deleted: %w", id, err)
	}
	log.Info("Deleted match", "matchID", id, "path", report.Path)

	if report.Path == effects.PathReversal {
		s.publish(pubsub.EventMatchReversed, report)
		if err := s.notifier.SendReversalNotification(report, false); err != nil {
			log.Error("Failed to send reversal notification", "matchID", id, "error", err)
		}
	}
	return report, nil
}

func (s *Service) publish(event pubsub.EventType, report *effects.Report) {
	if err := s.pubsub.SendMessage(event, matchEvent(report)); err != nil {
		log.Error("Failed to publish match event", "event", event, "matchID", report.MatchID, "error", err)
	}
}

// document builds the raw side document. Fields of current not set by t are
// kept.
func (t TeamInput) document(current map[string]any) map[string]any {
	doc := copyMap(current)
	if name := strings.TrimSpace(t.Name); name != "" {
		doc[matches.FieldTeamName] = name
	}
	doc[matches.FieldTeamRoster] = entries(t.Roster)
	return doc
}

func entries(in []EntryInput) []any {
	out := make([]any, 0, len(in))
	for _, e := range in {
		if id := strings.TrimSpace(e.ID); id != "" {
			out = append(out, map[string]any{matches.FieldEntryID: id})
			continue
		}
		// Plain names go through the resolver.
		out = append(out, e.Name)
	}
	return out
}

func namedEntries(names []string) []EntryInput {
	out := make([]EntryInput, len(names))
	for i, n := range names {
		out[i] = EntryInput{Name: n}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	maps.Copy(out, m)
	return out
}

func cloneDocument(d docstore.Document) docstore.Document {
	return docstore.Document(copyMap(d))
}
