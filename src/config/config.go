package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Store   StoreConfig   `yaml:"store"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`
}

type SiteConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Sources  []string `yaml:"sources"`
	Feeds    []string `yaml:"feeds"`    // RSS feeds scanned for extra article links
	Keywords []string `yaml:"keywords"` // Article title substrings, case-insensitive
	Timezone string   `yaml:"timezone"` // Used to derive the match date of an update
}

type BrowserConfig struct {
	Headless         bool          `yaml:"headless"`
	UserAgent        string        `yaml:"user_agent"`
	Timeout          time.Duration `yaml:"timeout"`           // Source page load
	ArticleTimeout   time.Duration `yaml:"article_timeout"`   // Wait for the first update block
	LoadMoreWait     time.Duration `yaml:"load_more_wait"`    // Pause after each "Show More" click
	MaxLoadMore      int           `yaml:"max_load_more"`     // Upper bound on "Show More" clicks per article
	NavigateInterval time.Duration `yaml:"navigate_interval"` // Minimum gap between page loads
}

type OutputConfig struct {
	File string `yaml:"file"` // JSON file of updates by fixture, "-" disables it
}

type StoreConfig struct {
	Driver   string         `yaml:"driver"` // "postgres", "sqlite" or "none"
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Default() *Config {
	cfg := &Config{
		Browser: BrowserConfig{Headless: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "https://www.rte.ie"
	}
	if len(c.Site.Sources) == 0 {
		c.Site.Sources = []string{
			"https://www.rte.ie/sport/football/",
			"https://www.rte.ie/sport/hurling/",
		}
	}
	if len(c.Site.Keywords) == 0 {
		c.Site.Keywords = []string{"live", "recap", "score updates", "updates"}
	}
	if c.Site.Timezone == "" {
		c.Site.Timezone = "Europe/Dublin"
	}
	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = 30 * time.Second
	}
	if c.Browser.ArticleTimeout == 0 {
		c.Browser.ArticleTimeout = 5 * time.Second
	}
	if c.Browser.LoadMoreWait == 0 {
		c.Browser.LoadMoreWait = time.Second
	}
	if c.Browser.MaxLoadMore == 0 {
		c.Browser.MaxLoadMore = 50
	}
	if c.Output.File == "" {
		c.Output.File = "live_updates.json"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "none"
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "livescores.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite", "none":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Browser.MaxLoadMore < 0 {
		return fmt.Errorf("browser.max_load_more must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid site.timezone %q: %w", c.Site.Timezone, err)
	}
	return loc, nil
}
