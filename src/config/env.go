package config

import (
	"fmt"
	"os"
)

// PostgresDSN returns the configured DSN, or one assembled from the
// DB_HOST/DB_PORT/DB_USER/DB_PASS/DB variables that .env provides.
func (c *Config) PostgresDSN() (string, error) {
	if c.Store.Postgres.DSN != "" {
		return c.Store.Postgres.DSN, nil
	}

	host, _ := os.LookupEnv("DB_HOST")
	port, _ := os.LookupEnv("DB_PORT")
	user, _ := os.LookupEnv("DB_USER")
	pass, _ := os.LookupEnv("DB_PASS")
	dbname, _ := os.LookupEnv("DB")

	if host == "" || dbname == "" {
		return "", fmt.Errorf("postgres DSN is required (store.postgres.dsn or DB_HOST and DB)")
	}
	if port == "" {
		port = "5432"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		port,
		user,
		pass,
		dbname,
	), nil
}

// TelegramToken prefers TELEGRAM_BOT_TOKEN from the environment over the file.
func (c *Config) TelegramToken() string {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		return v
	}
	return c.Notify.Telegram.Token
}
