package db

import (
	"context"
	"time"

	"mxshs/livescores/src/domain"
)

// Store is the match and live update store the crawler writes to.
type Store interface {
	// MatchesOn lists fixtures scheduled on the calendar date of date
	MatchesOn(ctx context.Context, date time.Time) ([]domain.MatchEntity, error)

	// InsertLiveUpdate stores an update for an existing match. It returns nil
	// without error when the same (match, minute, scores) row already exists.
	InsertLiveUpdate(ctx context.Context, u domain.LiveUpdate) (*domain.LiveUpdate, error)

	// UpsertMatch creates or refreshes a fixture keyed by home, away and date
	UpsertMatch(ctx context.Context, m domain.MatchEntity) (*domain.MatchEntity, error)

	// LiveUpdates returns a match's updates in insertion order
	LiveUpdates(ctx context.Context, matchID string) ([]domain.LiveUpdate, error)

	RecordScrape(ctx context.Context, run domain.ScrapeRun) error

	// LastScrapeTime reports when the latest recorded run finished
	LastScrapeTime(ctx context.Context) (time.Time, bool, error)

	Close() error
}

const dateLayout = "2006-01-02"
