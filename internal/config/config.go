package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Events   EventsConfig
	I18n     I18nConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	TempPasswordLength    int
}

// MongoConfig locates the activity log store.
type MongoConfig struct {
	URI                string
	Database           string
	ActivityCollection string
	ConnectTimeoutSec  int
}

// KafkaConfig configures the notification intent publisher.
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	Username          string
	Password          string
}

// CacheConfig controls the public gallery cache.
type CacheConfig struct {
	GalleryTTLSeconds int
}

// EventsConfig sizes the asynchronous event dispatcher.
type EventsConfig struct {
	QueueSize int
	Workers   int
}

// I18nConfig selects the fallback response language.
type I18nConfig struct {
	DefaultLocale string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "character-gallery"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "character-gallery"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			TempPasswordLength:    getEnvAsInt("AUTH_TEMP_PASSWORD_LENGTH", 16),
		},
		Mongo: MongoConfig{
			URI:                os.Getenv("MONGO_URI"),
			Database:           getEnv("MONGO_DATABASE", "character_gallery"),
			ActivityCollection: getEnv("MONGO_ACTIVITY_COLLECTION", "activity_logs"),
			ConnectTimeoutSec:  getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:           getEnvAsList("KAFKA_BROKERS"),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "gallery.notifications"),
			Username:          os.Getenv("KAFKA_USERNAME"),
			Password:          os.Getenv("KAFKA_PASSWORD"),
		},
		Cache: CacheConfig{
			GalleryTTLSeconds: getEnvAsInt("GALLERY_CACHE_TTL_SECONDS", 60),
		},
		Events: EventsConfig{
			QueueSize: getEnvAsInt("EVENT_QUEUE_SIZE", 1024),
			Workers:   getEnvAsInt("EVENT_WORKERS", 4),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("I18N_DEFAULT_LOCALE", "en"),
		},
	}

	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return nil, fmt.Errorf("invalid AUTH_BCRYPT_COST %d", cfg.Auth.BcryptCost)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// GalleryTTL returns how long a gallery page stays cached.
func (c CacheConfig) GalleryTTL() time.Duration {
	if c.GalleryTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.GalleryTTLSeconds) * time.Second
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
