package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mxshs/livescores/src/domain"
)

// MatchSource lists the fixtures scheduled on a date.
type MatchSource interface {
	MatchesOn(ctx context.Context, date time.Time) ([]domain.MatchEntity, error)
}

// Resolver finds stored fixtures for scraped team pairs. It caches each
// date's fixtures, so one Resolver should live for a single run.
type Resolver struct {
	source MatchSource
	cache  map[string][]domain.MatchEntity
}

func NewResolver(source MatchSource) *Resolver {
	return &Resolver{
		source: source,
		cache:  make(map[string][]domain.MatchEntity),
	}
}

// FindMatchID returns the id of the first fixture on date whose home and away
// names equal the query, ignoring case and surrounding whitespace. Sides are
// not swapped. found is false when no fixture matches.
func (r *Resolver) FindMatchID(ctx context.Context, home, away string, date time.Time) (string, bool, error) {
	matches, err := r.matchesOn(ctx, date)
	if err != nil {
		return "", false, err
	}

	home = normalizeTeam(home)
	away = normalizeTeam(away)

	for _, m := range matches {
		if normalizeTeam(m.HomeTeam) == home && normalizeTeam(m.AwayTeam) == away {
			return m.ID, true, nil
		}
	}

	return "", false, nil
}

func (r *Resolver) matchesOn(ctx context.Context, date time.Time) ([]domain.MatchEntity, error) {
	day := date.Format("2006-01-02")
	if matches, ok := r.cache[day]; ok {
		return matches, nil
	}

	matches, err := r.source.MatchesOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list matches on %s: %w", day, err)
	}

	r.cache[day] = matches
	return matches, nil
}

func normalizeTeam(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
