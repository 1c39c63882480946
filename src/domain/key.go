package domain

import "strings"

// MatchKey groups updates of one fixture within a run: "{home} vs {away}".
type MatchKey string

// ResolveKey builds the fixture key. Names are trimmed but otherwise compared
// exactly, so home and away order matters.
func ResolveKey(u UpdateRecord) MatchKey {
	return MatchKey(strings.TrimSpace(u.HomeTeam) + " vs " + strings.TrimSpace(u.AwayTeam))
}
