package domain

import "time"

// UpdateRecord is one parsed live-blog entry. Values are built by the parser
// and never modified afterwards.
type UpdateRecord struct {
	Minute     *int      `json:"minute"`
	HomeTeam   string    `json:"home_team"`
	HomeScore  string    `json:"home_score"`
	AwayTeam   string    `json:"away_team"`
	AwayScore  string    `json:"away_score"`
	IsFinal    bool      `json:"is_final"`
	IsHalftime bool      `json:"is_halftime"`
	RawText    string    `json:"raw_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// MinuteValue reports the match minute and whether the update carries one.
func (u UpdateRecord) MinuteValue() (int, bool) {
	if u.Minute == nil {
		return 0, false
	}
	return *u.Minute, true
}

func (u UpdateRecord) Key() MatchKey {
	return ResolveKey(u)
}

// MatchState accumulates accepted updates for one fixture during a run.
type MatchState struct {
	LastMinuteSeen int
	Accepted       []UpdateRecord
}

func NewMatchState() *MatchState {
	return &MatchState{LastMinuteSeen: -1}
}

type MatchEntity struct {
	ID          string
	Competition string
	HomeTeam    string
	AwayTeam    string
	MatchDate   time.Time
}

// LiveUpdate is a stored update row attached to a match.
type LiveUpdate struct {
	ID         string
	MatchID    string
	Minute     *int
	HomeScore  string
	AwayScore  string
	UpdateText string
	IsFinal    bool
	CreatedAt  time.Time
}

func LiveUpdateFrom(matchID string, u UpdateRecord) LiveUpdate {
	return LiveUpdate{
		MatchID:    matchID,
		Minute:     u.Minute,
		HomeScore:  u.HomeScore,
		AwayScore:  u.AwayScore,
		UpdateText: u.RawText,
		IsFinal:    u.IsFinal,
	}
}

type ScrapeRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Articles   int
	Accepted   int
	Inserted   int
}

func IntPtr(v int) *int {
	return &v
}
