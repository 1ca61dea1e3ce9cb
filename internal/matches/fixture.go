package matches

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/egarcia91/BondiolaFC/internal/players"
)

var (
	ErrEmptyMessage   = errors.New("el mensaje está vacío")
	ErrUnknownWeekday = errors.New("no se pudo reconocer el día de la semana")
)

const defaultFixtureHour = 21

var weekdays = []string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var (
	headerSplit   = regexp.MustCompile(`\s*[\\|]\s*`)
	dayAndHour    = regexp.MustCompile(`(\pL+)\s+(\d{1,2})`)
	blueHeader    = regexp.MustCompile(`(?i)📘\s*Azul:?|^Azul:?\s*$`)
	redHeader     = regexp.MustCompile(`(?i)📕\s*Rojo:?|^Rojo:?\s*$`)
	versusLine    = regexp.MustCompile(`(?i)^\s*Vs\s*$`)
	numberedEntry = regexp.MustCompile(`^\d+\.\s*(.+)$`)
)

// Fixture is a match announcement parsed from a chat message.
type Fixture struct {
	Venue   string   `json:"venue"`
	Date    string   `json:"date"`
	Time    string   `json:"time"`
	Label   string   `json:"label"`
	Local   []string `json:"local"`
	Visitor []string `json:"visitor"`
}

// ParseFixture reads the message the club posts to announce a match:
//
//	Village \ Lunes 21 hs
//
//	📘 Azul:
//	1. Jony
//	Vs
//	📕 Rojo:
//	1. Chino
//
// Rojo plays as the local side and Azul as the visitor. The date is the next
// time the weekday comes around after now, at the announced hour. A weekday
// is only read when an hour follows it; otherwise the match is today at 21.
func ParseFixture(text string, now time.Time) (Fixture, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Fixture{}, ErrEmptyMessage
	}

	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var f Fixture
	var dayName string
	hour := defaultFixtureHour

	var parts []string
	for _, p := range headerSplit.Split(lines[0], -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 1 {
		f.Venue = parts[0]
	}
	if len(parts) >= 2 {
		if m := dayAndHour.FindStringSubmatch(parts[1]); m != nil {
			dayName = m[1]
			if h, err := strconv.Atoi(m[2]); err == nil && h > 0 && h < 24 {
				hour = h
			}
		}
	}

	var section *[]string
	for _, line := range lines {
		switch {
		case blueHeader.MatchString(line):
			section = &f.Visitor
			continue
		case versusLine.MatchString(line):
			section = nil
			continue
		case redHeader.MatchString(line):
			section = &f.Local
			continue
		}
		if m := numberedEntry.FindStringSubmatch(line); m != nil && section != nil {
			*section = append(*section, strings.TrimSpace(m[1]))
		}
	}

	date := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if dayName != "" {
		day := weekdayIndex(dayName)
		if day < 0 {
			return Fixture{}, fmt.Errorf("%w: %q", ErrUnknownWeekday, dayName)
		}
		diff := (day - int(date.Weekday()) + 7) % 7
		if diff == 0 && !date.After(now) {
			diff = 7
		}
		date = date.AddDate(0, 0, diff)
	}

	f.Date = date.Format("2006-01-02")
	f.Time = fmt.Sprintf("%02d:00", hour)
	f.Label = fmt.Sprintf("próximo %s a las %s horas", weekdays[date.Weekday()], f.Time)
	return f, nil
}

// weekdayIndex matches the first three letters, ignoring case and accents.
func weekdayIndex(name string) int {
	n := players.NormalizeName(name)
	for i, d := range weekdays {
		if strings.HasPrefix(n, players.NormalizeName(d)[:3]) {
			return i
		}
	}
	return -1
}
