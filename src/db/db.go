package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mxshs/livescores/src/domain"
	"mxshs/livescores/src/logger"

	pq "github.com/lib/pq"
)

var _ Store = (*DB)(nil)

// DB is the Postgres store.
type DB struct {
	db *sql.DB
}

// GetDB connects to Postgres and creates the tables when missing.
func GetDB(ctx context.Context, dsn string) (*DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	conn := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	db := &DB{db: conn}
	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.GetLogger().WithComponent("db").Info("connected to postgres")
	return db, nil
}

func (db *DB) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		competition TEXT NOT NULL DEFAULT '',
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		match_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (home_team, away_team, match_date)
	);

	CREATE TABLE IF NOT EXISTS live_updates (
		id BIGSERIAL PRIMARY KEY,
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		minute INTEGER,
		home_score TEXT NOT NULL,
		away_score TEXT NOT NULL,
		update_text TEXT NOT NULL,
		is_final BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_live_updates_composite
		ON live_updates(match_id, minute, home_score, away_score);
	CREATE INDEX IF NOT EXISTS idx_matches_match_date ON matches(match_date);

	CREATE TABLE IF NOT EXISTS scrape_history (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		last_scrape_time TIMESTAMPTZ NOT NULL,
		articles INTEGER NOT NULL DEFAULT 0,
		accepted INTEGER NOT NULL DEFAULT 0,
		inserted INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`

	_, err := db.db.ExecContext(ctx, query)
	return err
}

func (db *DB) MatchesOn(ctx context.Context, date time.Time) ([]domain.MatchEntity, error) {
	rows, err := db.db.QueryContext(
		ctx,
		`SELECT id::text, competition, home_team, away_team, match_date
		FROM matches WHERE match_date = $1 ORDER BY id;`,
		date.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.MatchEntity
	for rows.Next() {
		var m domain.MatchEntity
		if err := rows.Scan(&m.ID, &m.Competition, &m.HomeTeam, &m.AwayTeam, &m.MatchDate); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func (db *DB) InsertLiveUpdate(ctx context.Context, u domain.LiveUpdate) (*domain.LiveUpdate, error) {
	err := db.db.QueryRowContext(
		ctx,
		`INSERT INTO live_updates (match_id, minute, home_score, away_score, update_text, is_final)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
		RETURNING id::text, created_at;`,
		u.MatchID,
		u.Minute,
		u.HomeScore,
		u.AwayScore,
		u.UpdateText,
		u.IsFinal,
	).Scan(&u.ID, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, fmt.Errorf("match %s does not exist: %w", u.MatchID, err)
		}
		return nil, err
	}

	return &u, nil
}

func (db *DB) UpsertMatch(ctx context.Context, m domain.MatchEntity) (*domain.MatchEntity, error) {
	err := db.db.QueryRowContext(
		ctx,
		`INSERT INTO matches (competition, home_team, away_team, match_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (home_team, away_team, match_date)
		DO UPDATE SET competition = EXCLUDED.competition, updated_at = NOW()
		RETURNING id::text;`,
		m.Competition,
		m.HomeTeam,
		m.AwayTeam,
		m.MatchDate.Format(dateLayout),
	).Scan(&m.ID)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (db *DB) LiveUpdates(ctx context.Context, matchID string) ([]domain.LiveUpdate, error) {
	rows, err := db.db.QueryContext(
		ctx,
		`SELECT id::text, match_id::text, minute, home_score, away_score, update_text, is_final, created_at
		FROM live_updates WHERE match_id = $1 ORDER BY created_at, id;`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []domain.LiveUpdate
	for rows.Next() {
		var u domain.LiveUpdate
		var minute sql.NullInt64
		err := rows.Scan(&u.ID, &u.MatchID, &minute, &u.HomeScore, &u.AwayScore, &u.UpdateText, &u.IsFinal, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		if minute.Valid {
			u.Minute = domain.IntPtr(int(minute.Int64))
		}
		updates = append(updates, u)
	}

	return updates, rows.Err()
}

func (db *DB) RecordScrape(ctx context.Context, run domain.ScrapeRun) error {
	_, err := db.db.ExecContext(
		ctx,
		`INSERT INTO scrape_history (id, started_at, last_scrape_time, articles, accepted, inserted)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.Articles,
		run.Accepted,
		run.Inserted,
	)
	return err
}

func (db *DB) LastScrapeTime(ctx context.Context) (time.Time, bool, error) {
	var t time.Time
	err := db.db.QueryRowContext(
		ctx,
		`SELECT last_scrape_time FROM scrape_history ORDER BY created_at DESC LIMIT 1;`,
	).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	return t, true, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}
