package players

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Resolution is the outcome of matching a free-text name against the club's
// players. Exactly one of PlayerID and GuestName is set, or neither when the
// input was blank.
type Resolution struct {
	PlayerID  string
	GuestName string
}

// IsEmpty reports whether the input named nobody.
func (r Resolution) IsEmpty() bool {
	return r.PlayerID == "" && r.GuestName == ""
}

// IsGuest reports whether the name did not match any player.
func (r Resolution) IsGuest() bool {
	return r.PlayerID == "" && r.GuestName != ""
}

// NormalizeName trims, lower-cases and strips diacritics, so "  JOSÉ " and
// "jose" compare equal.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Resolve finds the first player, in list order, whose nickname, full name or
// first name equals text after normalization. Unmatched text becomes a guest
// carrying the trimmed original spelling.
func Resolve(text string, list []Player) Resolution {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Resolution{}
	}
	want := NormalizeName(trimmed)
	for _, p := range list {
		if matchesName(want, p) {
			return Resolution{PlayerID: p.ID}
		}
	}
	return Resolution{GuestName: trimmed}
}

func matchesName(want string, p Player) bool {
	if p.Nickname != "" && NormalizeName(p.Nickname) == want {
		return true
	}
	if p.Name == "" {
		return false
	}
	full := NormalizeName(p.Name)
	if full == want {
		return true
	}
	if first, _, found := strings.Cut(full, " "); found && first == want {
		return true
	}
	return false
}
