package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	Port          string
	Env           string // "dev" | "production"
	MongoURI      string
	MongoDB       string
	ClientURL     string
	AccessSecret  string
	RefreshSecret string
	AccessTTLMin  int
	RefreshTTLDay int
	RabbitURL     string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	MailFrom      string
}

func Load() Config {
	return Config{
		Port:          getenv("APP_PORT", "8080"),
		Env:           getenv("APP_ENV", "dev"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "account_db"),
		ClientURL:     getenv("CLIENT_URL", "http://localhost:3000"),
		AccessSecret:  os.Getenv("SECRET_KEY_ACCESS_TOKEN"),
		RefreshSecret: os.Getenv("SECRET_KEY_REFRESH_TOKEN"),
		AccessTTLMin:  atoi(getenv("ACCESS_TTL_MIN", "300")),
		RefreshTTLDay: atoi(getenv("REFRESH_TTL_DAYS", "7")),
		RabbitURL:     os.Getenv("RABBIT_URL"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getenv("SMTP_PORT", "465"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		MailFrom:      getenv("MAIL_FROM", "no-reply@localhost"),
	}
}

// Validate rejects configs that must not reach request handling.
// A missing signing secret is fatal at startup, not a per-request error.
func (c Config) Validate() error {
	if c.AccessSecret == "" {
		return errors.New("SECRET_KEY_ACCESS_TOKEN is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("SECRET_KEY_REFRESH_TOKEN is required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDay <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
