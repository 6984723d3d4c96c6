// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Document store backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Backup storage backends.
const (
	BackupStorageLocal = "local"
	BackupStorageGCS   = "gcs"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS
	CORSOrigins   []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database Configuration (SQL document store)
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES
	DBSource          string        `mapstructure:"DB_SOURCE"`

	DocstoreBackend string `mapstructure:"DOCSTORE_BACKEND"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`
	FirebaseStorageBucket         string `mapstructure:"FIREBASE_STORAGE_BUCKET"`

	// Google OAuth
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI    string `mapstructure:"GOOGLE_REDIRECT_URI"`
	OAuthStateCookieName string `mapstructure:"OAUTH_STATE_COOKIE_NAME"`
	OAuthCookieSecure    bool   `mapstructure:"OAUTH_COOKIE_SECURE"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Travel APIs
	WeatherAPIURL      string        `mapstructure:"WEATHER_API_URL"`
	WeatherAPIKey      string        `mapstructure:"WEATHER_API_KEY"`
	FlightsAPIURL      string        `mapstructure:"FLIGHTS_API_URL"`
	FlightsAPIKey      string        `mapstructure:"FLIGHTS_API_KEY"`
	TravelAPICacheTTL  time.Duration `mapstructure:"-"` // TRAVEL_API_CACHE_TTL_SECONDS
	TravelAPITimeout   time.Duration `mapstructure:"-"` // TRAVEL_API_TIMEOUT_SECONDS
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Backups
	BackupDir         string   `mapstructure:"BACKUP_DIR"`
	BackupStorage     string   `mapstructure:"BACKUP_STORAGE"`
	BackupRetention   int      `mapstructure:"BACKUP_RETENTION"`
	BackupCollections []string `mapstructure:"BACKUP_COLLECTIONS"`

	// Cron Jobs
	BackupJobSchedule string `mapstructure:"BACKUP_JOB_SCHEDULE"`

	// Migrations
	MigrationBatchSize int `mapstructure:"MIGRATION_BATCH_SIZE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration fields are configured in whole units and converted here.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.TravelAPICacheTTL = time.Duration(v.GetInt("TRAVEL_API_CACHE_TTL_SECONDS")) * time.Second
	cfg.TravelAPITimeout = time.Duration(v.GetInt("TRAVEL_API_TIMEOUT_SECONDS")) * time.Second

	// Comma separated lists arrive as one string from the environment.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.BackupCollections = splitList(v.GetString("BACKUP_COLLECTIONS"))

	cfg.DocstoreBackend = strings.ToLower(strings.TrimSpace(cfg.DocstoreBackend))
	cfg.BackupStorage = strings.ToLower(strings.TrimSpace(cfg.BackupStorage))

	// GORM uses the key=value DSN built from the individual DB_* settings.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "travel_agent_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")

	v.SetDefault("DOCSTORE_BACKEND", BackendFirestore)
	v.SetDefault("SQLITE_PATH", "travel_agent.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/v1/auth/google/callback")
	v.SetDefault("OAUTH_STATE_COOKIE_NAME", "oauthstate")
	v.SetDefault("OAUTH_COOKIE_SECURE", false)

	// Elasticsearch
	v.SetDefault("ELASTICSEARCH_URL", "http://localhost:9200")

	v.SetDefault("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("WEATHER_API_KEY", "")
	v.SetDefault("FLIGHTS_API_URL", "http://api.aviationstack.com/v1")
	v.SetDefault("FLIGHTS_API_KEY", "")
	v.SetDefault("TRAVEL_API_CACHE_TTL_SECONDS", 300)
	v.SetDefault("TRAVEL_API_TIMEOUT_SECONDS", 10)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	v.SetDefault("BACKUP_DIR", "./backups")
	v.SetDefault("BACKUP_STORAGE", BackupStorageLocal)
	v.SetDefault("BACKUP_RETENTION", 7)
	v.SetDefault("BACKUP_COLLECTIONS", "users,itineraries,chatSessions")
	v.SetDefault("BACKUP_JOB_SCHEDULE", "@daily")

	v.SetDefault("MIGRATION_BATCH_SIZE", 500)
}

// Validate checks the combinations of settings the application cannot run without.
func (c *Config) Validate() error {
	var errs []error

	switch c.DocstoreBackend {
	case BackendFirestore, BackendPostgres, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("DOCSTORE_BACKEND must be one of firestore, postgres, sqlite (got %q)", c.DocstoreBackend))
	}

	switch c.BackupStorage {
	case BackupStorageLocal:
		if strings.TrimSpace(c.BackupDir) == "" {
			errs = append(errs, errors.New("BACKUP_DIR is required when BACKUP_STORAGE is local"))
		}
	case BackupStorageGCS:
		if strings.TrimSpace(c.FirebaseStorageBucket) == "" {
			errs = append(errs, errors.New("FIREBASE_STORAGE_BUCKET is required when BACKUP_STORAGE is gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("BACKUP_STORAGE must be local or gcs (got %q)", c.BackupStorage))
	}

	if c.NeedsFirebaseAdmin() {
		if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
			errs = append(errs, errors.New("FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization"))
		} else if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath))
		}
	}

	if c.MigrationBatchSize <= 0 || c.MigrationBatchSize > 500 {
		errs = append(errs, fmt.Errorf("MIGRATION_BATCH_SIZE must be between 1 and 500 (got %d)", c.MigrationBatchSize))
	}
	if c.BackupRetention < 0 {
		errs = append(errs, fmt.Errorf("BACKUP_RETENTION must not be negative (got %d)", c.BackupRetention))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative (got %d)", c.RateLimitPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// NeedsFirebaseAdmin reports whether the selected storage backends need Admin SDK credentials.
// The HTTP server always needs them for token verification and checks that on startup.
func (c *Config) NeedsFirebaseAdmin() bool {
	return c.DocstoreBackend == BackendFirestore || c.BackupStorage == BackupStorageGCS
}

// ServerAddress returns the host:port the HTTP server listens on.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
