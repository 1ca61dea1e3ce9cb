package players

// DefaultRating is the rating every new player starts with.
const DefaultRating = 900

// Player is a club member as stored in the players collection.
type Player struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Name          string `json:"name"`
	Position      string `json:"position,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	FavoriteSide  string `json:"favorite_side,omitempty"`
	Description   string `json:"description,omitempty"`
	Mail          string `json:"mail,omitempty"`
	Registered    bool   `json:"registered"`
	Admin         bool   `json:"admin"`
	Rating        int    `json:"rating"`
	RatingHistory []int  `json:"rating_history"`
	Matches       int    `json:"matches"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	Goals         int    `json:"goals"`

	// AppliedMatches lists the matches whose effects are already counted in
	// this player's stats.
	AppliedMatches []string `json:"applied_matches,omitempty"`
	// AppliedGoals holds, per applied match, the goals counted in Goals.
	AppliedGoals map[string]int `json:"applied_goals,omitempty"`
}

// Profile holds the editable, non-statistical fields of a player.
type Profile struct {
	Nickname     string `json:"nickname"`
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"`
	FavoriteSide string `json:"favorite_side,omitempty"`
	Description  string `json:"description,omitempty"`
	Mail         string `json:"mail,omitempty"`
	Admin        bool   `json:"admin"`
}

// New builds a player with zeroed stats and the default rating.
func New(p Profile) Player {
	return Player{
		Nickname:      p.Nickname,
		Name:          p.Name,
		Position:      p.Position,
		BirthDate:     p.BirthDate,
		FavoriteSide:  p.FavoriteSide,
		Description:   p.Description,
		Mail:          p.Mail,
		Registered:    p.Mail != "",
		Admin:         p.Admin,
		Rating:        DefaultRating,
		RatingHistory: []int{DefaultRating},
	}
}

// DisplayName is the nickname when set, otherwise the full name.
func (p Player) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}

// HasApplied reports whether the effects of matchID are already counted.
func (p Player) HasApplied(matchID string) bool {
	for _, id := range p.AppliedMatches {
		if id == matchID {
			return true
		}
	}
	return false
}

// CreditedGoals returns the goals of matchID counted in the player's total.
// ok is false for matches applied before goals were recorded per match.
func (p Player) CreditedGoals(matchID string) (goals int, ok bool) {
	goals, ok = p.AppliedGoals[matchID]
	return goals, ok
}

// ByID indexes a player list by id.
func ByID(list []Player) map[string]Player {
	out := make(map[string]Player, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out
}
