package league

import (
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

func matchEvent(report *effects.Report) pubsub.MatchEvent {
	m := report.Match
	e := pubsub.MatchEvent{
		MatchID:      report.MatchID,
		Date:         m.Date,
		LocalName:    m.Local.Name,
		VisitorName:  m.Visitor.Name,
		LocalGoals:   m.Local.Goals,
		VisitorGoals: m.Visitor.Goals,
		Winner:       m.Winner,
	}
	for _, c := range report.Changes {
		e.Players = append(e.Players, pubsub.PlayerDelta{
			PlayerID: c.PlayerID,
			Before:   c.RatingBefore,
			After:    c.RatingAfter,
			Goals:    c.Goals,
		})
	}
	return e
}
