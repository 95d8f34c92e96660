package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Driver     string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}
type ServerConfig struct {
	PORT          string
	TLS_CERT_FILE string
	TLS_KEY_FILE  string
	RateLimit     float64
	RateBurst     int
}
type MailConfig struct {
	PreviewLength        int
	QuoteAcceptSeparator bool
	SessionTTL           time.Duration
	BodyPassphrase       string
}
type Config struct {
	DB       DBConfig
	API      ServerConfig
	Mail     MailConfig
	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("SQLITE_PATH", "./data/webmail.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", "8080")
	v.SetDefault("RATE_LIMIT", 10.0)
	v.SetDefault("RATE_BURST", 50)
	v.SetDefault("PREVIEW_LENGTH", 120)
	v.SetDefault("QUOTE_ACCEPT_SEPARATOR", false)
	v.SetDefault("SESSION_TTL", 14*24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
}

// GetConfig loads .env (when present) into the environment and reads
// every setting from it, falling back to defaults.
func GetConfig() Config {
	if err := godotenv.Load(".env"); err != nil {
		logrus.WithError(err).Debug("No .env file loaded")
	}
	cfg := FromViper(newViper())
	logrus.Info("✅ Config loaded")
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from v. Tests pass their own instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		DB: DBConfig{
			Driver:     v.GetString("DB_DRIVER"),
			SQLitePath: v.GetString("SQLITE_PATH"),
			DBHost:     v.GetString("DB_HOST"),
			DBPort:     v.GetString("DB_PORT"),
			DBUser:     v.GetString("DB_USER"),
			DBPassword: v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			DBSSLMode:  v.GetString("DB_SSLMODE"),
		},
		API: ServerConfig{
			PORT:          v.GetString("PORT"),
			TLS_CERT_FILE: v.GetString("TLS_CERT_FILE"),
			TLS_KEY_FILE:  v.GetString("TLS_KEY_FILE"),
			RateLimit:     v.GetFloat64("RATE_LIMIT"),
			RateBurst:     v.GetInt("RATE_BURST"),
		},
		Mail: MailConfig{
			PreviewLength:        v.GetInt("PREVIEW_LENGTH"),
			QuoteAcceptSeparator: v.GetBool("QUOTE_ACCEPT_SEPARATOR"),
			SessionTTL:           v.GetDuration("SESSION_TTL"),
			BodyPassphrase:       v.GetString("BODY_PASSPHRASE"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}
