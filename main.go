package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"mxshs/livescores/src/config"
	"mxshs/livescores/src/core"
	"mxshs/livescores/src/crawler"
	"mxshs/livescores/src/db"
	"mxshs/livescores/src/logger"
	"mxshs/livescores/src/notify"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"driver": cfg.Store.Driver}).Error("Failed to open store")
		return 1
	}
	if store != nil {
		defer store.Close()
	}

	var notifier notify.Notifier = notify.Nop{}
	if token := cfg.TelegramToken(); token != "" && cfg.Notify.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			log.WithError(err).Warn("Telegram notifications disabled")
		} else {
			notifier = tg
		}
	}

	rte, err := core.GetRteParser(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Failed to start browser")
		return 1
	}
	defer rte.Close()

	deps := crawler.Deps{
		Pages:    rte,
		Updates:  rte,
		Store:    store,
		Notifier: notifier,
	}
	if len(cfg.Site.Feeds) > 0 {
		deps.Feeds = core.NewFeedSource(cfg.Site.Keywords)
	}
	if cfg.Output.File != "-" {
		loc, err := cfg.Location()
		if err != nil {
			log.WithError(err).Error("Invalid timezone")
			return 1
		}
		deps.File = db.NewFileStore(cfg.Output.File).InLocation(loc)
	}

	c, err := crawler.New(cfg, deps)
	if err != nil {
		log.WithError(err).Error("Failed to create crawler")
		return 1
	}

	log.WithFields(logger.Fields{
		"sources": len(cfg.Site.Sources),
		"feeds":   len(cfg.Site.Feeds),
		"store":   cfg.Store.Driver,
		"output":  cfg.Output.File,
	}).Info("starting livescores")

	if _, err := c.Run(ctx); err != nil {
		log.WithError(err).Error("Run failed")
		return 1
	}

	return 0
}

// openStore returns nil when no store is configured.
func openStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		dsn, err := cfg.PostgresDSN()
		if err != nil {
			return nil, err
		}
		return db.GetDB(ctx, dsn)
	case "sqlite":
		return db.OpenSQLite(cfg.Store.SQLite.Path)
	default:
		return nil, nil
	}
}
