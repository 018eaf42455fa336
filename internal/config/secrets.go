package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Secrets are taken from the environment only, never from the config file.
type Secrets struct {
	OuraClientID      string
	OuraClientSecret  string
	WhoopClientID     string
	WhoopClientSecret string
	OuraAccessToken   string
	OuraRefreshToken  string
	WhoopAccessToken  string
	WhoopRefreshToken string
	CronSecret        string
	AdminUsername     string
	AdminPasswordHash string
	RedisPassword     string
	PostgresPassword  string
	SentryDSN         string
	HoneycombEnabled  bool
}

// LoadDotEnv loads a .env file into the environment, leaving already set
// variables untouched. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no dotenv file at %s", path)
			return nil
		}
		return err
	}
	log.Debugf("dotenv loaded from %s", path)
	return nil
}

func SecretsFromEnv() Secrets {
	s := Secrets{
		OuraClientID:      os.Getenv("OURA_CLIENT_ID"),
		OuraClientSecret:  os.Getenv("OURA_CLIENT_SECRET"),
		WhoopClientID:     os.Getenv("WHOOP_CLIENT_ID"),
		WhoopClientSecret: os.Getenv("WHOOP_CLIENT_SECRET"),
		OuraAccessToken:   os.Getenv("OURA_ACCESS_TOKEN"),
		OuraRefreshToken:  os.Getenv("OURA_REFRESH_TOKEN"),
		WhoopAccessToken:  os.Getenv("WHOOP_ACCESS_TOKEN"),
		WhoopRefreshToken: os.Getenv("WHOOP_REFRESH_TOKEN"),
		CronSecret:        os.Getenv("CRON_SECRET"),
		AdminUsername:     os.Getenv("HEALTH_ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("HEALTH_ADMIN_PASSWORD_HASH"),
		RedisPassword:     os.Getenv("HEALTH_REDIS_PASS"),
		PostgresPassword:  os.Getenv("HEALTH_POSTGRES_PASS"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		HoneycombEnabled:  os.Getenv("HONEYCOMB_ENABLED") == "true",
	}

	if s.OuraClientID == "" && s.WhoopClientID == "" {
		log.Warnln("no provider client ids set, use OURA_CLIENT_ID and/or WHOOP_CLIENT_ID")
	}
	if s.CronSecret == "" {
		log.Warnln("cron secret not set, /cron endpoints are closed. use CRON_SECRET")
	}
	if s.AdminUsername == "" || s.AdminPasswordHash == "" {
		log.Errorf("admin username and password not set. use HEALTH_ADMIN_USERNAME and HEALTH_ADMIN_PASSWORD_HASH")
	}
	return s
}
