package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// Each event type is published to the topic of the same name.
type EventType string

const (
	EventMatchConcluded EventType = "match-concluded"
	EventGoalsCorrected EventType = "goals-corrected"
	EventMatchReversed  EventType = "match-reversed"
)

// PlayerDelta is one player's rating change within a MatchEvent.
type PlayerDelta struct {
	PlayerID string `msgpack:"player_id"`
	Before   int    `msgpack:"before"`
	After    int    `msgpack:"after"`
	Goals    int    `msgpack:"goals"`
}

// MatchEvent is the payload of every match event.
type MatchEvent struct {
	MatchID      string        `msgpack:"match_id"`
	Date         string        `msgpack:"date"`
	LocalName    string        `msgpack:"local_name"`
	VisitorName  string        `msgpack:"visitor_name"`
	LocalGoals   int           `msgpack:"local_goals"`
	VisitorGoals int           `msgpack:"visitor_goals"`
	Winner       string        `msgpack:"winner"`
	Players      []PlayerDelta `msgpack:"players"`
}
