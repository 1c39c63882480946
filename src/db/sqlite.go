package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mxshs/livescores/src/domain"
	"mxshs/livescores/src/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var _ Store = (*SQLite)(nil)

type matchRow struct {
	ID          uint   `gorm:"primaryKey"`
	Competition string `gorm:"not null;default:''"`
	HomeTeam    string `gorm:"not null;uniqueIndex:idx_matches_fixture"`
	AwayTeam    string `gorm:"not null;uniqueIndex:idx_matches_fixture"`
	MatchDate   string `gorm:"not null;uniqueIndex:idx_matches_fixture;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (matchRow) TableName() string { return "matches" }

type liveUpdateRow struct {
	ID         uint   `gorm:"primaryKey"`
	MatchID    uint   `gorm:"not null;uniqueIndex:idx_live_updates_composite"`
	Minute     *int   `gorm:"uniqueIndex:idx_live_updates_composite"`
	HomeScore  string `gorm:"not null;uniqueIndex:idx_live_updates_composite"`
	AwayScore  string `gorm:"not null;uniqueIndex:idx_live_updates_composite"`
	UpdateText string `gorm:"not null"`
	IsFinal    bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (liveUpdateRow) TableName() string { return "live_updates" }

type scrapeRow struct {
	ID             string `gorm:"primaryKey"`
	StartedAt      time.Time
	LastScrapeTime time.Time
	Articles       int
	Accepted       int
	Inserted       int
	CreatedAt      time.Time
}

func (scrapeRow) TableName() string { return "scrape_history" }

// SQLite is a file-backed store for local runs with the same tables as the
// Postgres store.
type SQLite struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := conn.AutoMigrate(&matchRow{}, &liveUpdateRow{}, &scrapeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	logger.GetLogger().WithComponent("db").WithField("path", path).Info("opened sqlite store")
	return &SQLite{db: conn}, nil
}

func (s *SQLite) MatchesOn(ctx context.Context, date time.Time) ([]domain.MatchEntity, error) {
	var rows []matchRow
	err := s.db.WithContext(ctx).
		Where("match_date = ?", date.Format(dateLayout)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]domain.MatchEntity, 0, len(rows))
	for _, r := range rows {
		m, err := r.entity()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *SQLite) InsertLiveUpdate(ctx context.Context, u domain.LiveUpdate) (*domain.LiveUpdate, error) {
	matchID, err := strconv.ParseUint(u.MatchID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid match id %q: %w", u.MatchID, err)
	}

	tx := s.db.WithContext(ctx)
	if err := tx.Select("id").First(&matchRow{}, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("match %s does not exist", u.MatchID)
		}
		return nil, err
	}

	row := liveUpdateRow{
		MatchID:    uint(matchID),
		Minute:     u.Minute,
		HomeScore:  u.HomeScore,
		AwayScore:  u.AwayScore,
		UpdateText: u.UpdateText,
		IsFinal:    u.IsFinal,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	u.ID = strconv.FormatUint(uint64(row.ID), 10)
	u.CreatedAt = row.CreatedAt
	return &u, nil
}

func (s *SQLite) UpsertMatch(ctx context.Context, m domain.MatchEntity) (*domain.MatchEntity, error) {
	row := matchRow{
		Competition: m.Competition,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		MatchDate:   m.MatchDate.Format(dateLayout),
	}

	tx := s.db.WithContext(ctx)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "home_team"}, {Name: "away_team"}, {Name: "match_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"competition", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored matchRow
	err = tx.Where("home_team = ? AND away_team = ? AND match_date = ?", row.HomeTeam, row.AwayTeam, row.MatchDate).
		First(&stored).Error
	if err != nil {
		return nil, err
	}

	out, err := stored.entity()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLite) LiveUpdates(ctx context.Context, matchID string) ([]domain.LiveUpdate, error) {
	var rows []liveUpdateRow
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	updates := make([]domain.LiveUpdate, 0, len(rows))
	for _, r := range rows {
		updates = append(updates, domain.LiveUpdate{
			ID:         strconv.FormatUint(uint64(r.ID), 10),
			MatchID:    strconv.FormatUint(uint64(r.MatchID), 10),
			Minute:     r.Minute,
			HomeScore:  r.HomeScore,
			AwayScore:  r.AwayScore,
			UpdateText: r.UpdateText,
			IsFinal:    r.IsFinal,
			CreatedAt:  r.CreatedAt,
		})
	}
	return updates, nil
}

func (s *SQLite) RecordScrape(ctx context.Context, run domain.ScrapeRun) error {
	return s.db.WithContext(ctx).Create(&scrapeRow{
		ID:             run.ID,
		StartedAt:      run.StartedAt,
		LastScrapeTime: run.FinishedAt,
		Articles:       run.Articles,
		Accepted:       run.Accepted,
		Inserted:       run.Inserted,
	}).Error
}

func (s *SQLite) LastScrapeTime(ctx context.Context) (time.Time, bool, error) {
	var row scrapeRow
	err := s.db.WithContext(ctx).Order("created_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return row.LastScrapeTime, true, nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r matchRow) entity() (domain.MatchEntity, error) {
	date, err := time.Parse(dateLayout, r.MatchDate)
	if err != nil {
		return domain.MatchEntity{}, fmt.Errorf("match %d has invalid date %q: %w", r.ID, r.MatchDate, err)
	}
	return domain.MatchEntity{
		ID:          strconv.FormatUint(uint64(r.ID), 10),
		Competition: r.Competition,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		MatchDate:   date,
	}, nil
}
