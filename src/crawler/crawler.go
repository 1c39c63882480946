package crawler

import (
	"context"
	"fmt"
	"time"

	"mxshs/livescores/src/config"
	"mxshs/livescores/src/core"
	"mxshs/livescores/src/db"
	"mxshs/livescores/src/domain"
	"mxshs/livescores/src/logger"
	"mxshs/livescores/src/lookup"
	"mxshs/livescores/src/merge"
	"mxshs/livescores/src/notify"
	"mxshs/livescores/src/parser"

	"github.com/google/uuid"
)

// Deps are the collaborators of a run. Feeds, File, Store and Notifier are
// optional.
type Deps struct {
	Pages    core.LinkSource
	Feeds    core.LinkSource
	Updates  core.UpdateSource
	File     *db.FileStore
	Store    db.Store
	Notifier notify.Notifier
}

type Crawler struct {
	Deps

	sources []string
	feeds   []string
	loc     *time.Location

	now func() time.Time
	log *logger.Entry
}

type Summary struct {
	RunID     string
	Articles  int
	Blocks    int
	Misses    int
	Accepted  int
	Fixtures  int
	FileAdded int
	FileTotal int
	Inserted  int
	Notified  int
}

func New(cfg *config.Config, deps Deps) (*Crawler, error) {
	if deps.Pages == nil || deps.Updates == nil {
		return nil, fmt.Errorf("crawler needs a page source and an update source")
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Crawler{
		Deps:    deps,
		sources: cfg.Site.Sources,
		feeds:   cfg.Site.Feeds,
		loc:     loc,
		now:     time.Now,
		log:     logger.GetLogger().WithComponent("crawler"),
	}, nil
}

// Run scrapes every configured source once and persists what it accepted.
// Failing to load a source page aborts the run before anything is written;
// a failing output file is logged and the store is still written.
func (c *Crawler) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	log := c.log.WithField("run_id", sum.RunID)
	started := c.now()

	articles, err := c.collectArticles(ctx, log)
	if err != nil {
		return nil, err
	}
	sum.Articles = len(articles)

	filter := merge.NewFilter()

	for _, a := range articles {
		blocks, err := c.Updates.UpdateBlocks(ctx, a.URL)
		if err != nil {
			log.WithError(err).WithField("url", a.URL).Warn("skipping article")
			continue
		}

		ts := c.now()
		for _, block := range blocks {
			sum.Blocks++

			u, ok := parser.ParseAt(block, ts)
			if !ok {
				sum.Misses++
				log.WithField("text", block).Debug("no score line")
				continue
			}

			if filter.Accept(u.Key(), u) {
				sum.Accepted++
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum.Fixtures = len(filter.Keys())

	if c.File != nil {
		added, total, err := c.File.Merge(filter.Snapshot())
		if err != nil {
			log.WithError(err).WithField("file", c.File.Path()).Error("error writing updates file")
		} else {
			sum.FileAdded = added
			sum.FileTotal = total
		}
	}

	if c.Store != nil {
		c.persist(ctx, log, filter, sum)
	}

	finished := c.now()

	if c.Store != nil {
		run := domain.ScrapeRun{
			ID:         sum.RunID,
			StartedAt:  started,
			FinishedAt: finished,
			Articles:   sum.Articles,
			Accepted:   sum.Accepted,
			Inserted:   sum.Inserted,
		}
		if err := c.Store.RecordScrape(ctx, run); err != nil {
			log.WithError(err).Warn("error recording scrape run")
		}
	}

	logger.LogRunSummary(log, logger.Fields{
		"articles":   sum.Articles,
		"blocks":     sum.Blocks,
		"misses":     sum.Misses,
		"accepted":   sum.Accepted,
		"fixtures":   sum.Fixtures,
		"file_added": sum.FileAdded,
		"file_total": sum.FileTotal,
		"inserted":   sum.Inserted,
		"notified":   sum.Notified,
	}, finished.Sub(started))

	return sum, nil
}

func (c *Crawler) collectArticles(ctx context.Context, log *logger.Entry) ([]core.Article, error) {
	var articles []core.Article
	seen := make(map[string]struct{})

	add := func(found []core.Article) {
		for _, a := range found {
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}
			articles = append(articles, a)
		}
	}

	for _, page := range c.sources {
		found, err := c.Pages.ArticleLinks(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("source page %s: %w", page, err)
		}
		add(found)
	}

	if c.Feeds != nil {
		for _, feed := range c.feeds {
			found, err := c.Feeds.ArticleLinks(ctx, feed)
			if err != nil {
				log.WithError(err).WithField("feed", feed).Warn("skipping feed")
				continue
			}
			add(found)
		}
	}

	log.WithField("articles", len(articles)).Info("collected live articles")
	return articles, nil
}

// persist writes accepted updates to fixtures known to the store. Every
// failure is logged and only the affected update is skipped.
func (c *Crawler) persist(ctx context.Context, log *logger.Entry, filter *merge.Filter, sum *Summary) {
	resolver := lookup.NewResolver(c.Store)

	for _, key := range filter.Keys() {
		missed := false

		for _, u := range filter.Updates(key) {
			date := u.Timestamp.In(c.loc)

			id, found, err := resolver.FindMatchID(ctx, u.HomeTeam, u.AwayTeam, date)
			if err != nil {
				log.WithError(err).WithField("fixture", key).Warn("error looking up match")
				continue
			}
			if !found {
				if !missed {
					log.WithFields(logger.Fields{
						"fixture": key,
						"date":    date.Format("2006-01-02"),
					}).Info("no stored match for fixture")
					missed = true
				}
				continue
			}

			stored, err := c.Store.InsertLiveUpdate(ctx, domain.LiveUpdateFrom(id, u))
			if err != nil {
				log.WithError(err).WithField("fixture", key).Warn("error inserting live update")
				continue
			}
			if stored == nil {
				continue
			}
			sum.Inserted++

			if !u.IsFinal || !parser.AnnouncesFullTime(u.RawText) {
				continue
			}
			if err := c.Notifier.Notify(ctx, notify.FormatResult(u)); err != nil {
				log.WithError(err).WithField("fixture", key).Warn("error sending result")
				continue
			}
			sum.Notified++
		}
	}
}
