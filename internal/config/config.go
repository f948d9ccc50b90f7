package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB          DBConfig
	Redis       RedisConfig
	Recommender RecommenderConfig
	RateLimit   RateLimitConfig
	Port        string
	SwaggerPath string
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Disabled skips Redis entirely; caching and rate limiting are turned off.
	Disabled bool
}

// RecommenderConfig holds the tuning knobs of the recommendation strategies.
type RecommenderConfig struct {
	KNNNeighbors    int
	ModelNeighbors  int
	PeerTopN        int
	ContentTopN     int
	DefaultLimit    int
	MaxLimit        int
	PopularLimit    int
	SnapshotMaxAge  time.Duration
	SnapshotTimeout time.Duration
	SnapshotDelta   int
	RefreshInterval time.Duration
	CacheTTL        time.Duration
}

type RateLimitConfig struct {
	MaxRequests int
	WindowSec   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	maxAge, err := time.ParseDuration(getEnv("SNAPSHOT_MAX_AGE", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_MAX_AGE: %w", err)
	}
	buildTimeout, err := time.ParseDuration(getEnv("SNAPSHOT_BUILD_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_BUILD_TIMEOUT: %w", err)
	}
	refresh, err := time.ParseDuration(getEnv("SNAPSHOT_REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_REFRESH_INTERVAL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("RECOMMENDATION_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECOMMENDATION_CACHE_TTL: %w", err)
	}

	return &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_recommendation"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Disabled: getEnvBool("REDIS_DISABLED", false),
		},
		Recommender: RecommenderConfig{
			KNNNeighbors:    getEnvInt("KNN_NEIGHBORS", 5),
			ModelNeighbors:  getEnvInt("MODEL_NEIGHBORS", 3),
			PeerTopN:        getEnvInt("PEER_TOP_N", 3),
			ContentTopN:     getEnvInt("CONTENT_TOP_N", 3),
			DefaultLimit:    getEnvInt("DEFAULT_LIMIT", 10),
			MaxLimit:        getEnvInt("MAX_LIMIT", 50),
			PopularLimit:    getEnvInt("POPULAR_LIMIT", 10),
			SnapshotMaxAge:  maxAge,
			SnapshotTimeout: buildTimeout,
			SnapshotDelta:   getEnvInt("SNAPSHOT_REBUILD_DELTA", 25),
			RefreshInterval: refresh,
			CacheTTL:        cacheTTL,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: getEnvInt("RATE_LIMIT_MAX", 100),
			WindowSec:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Port:        getEnv("SERVER_PORT", "8080"),
		SwaggerPath: getEnv("SWAGGER_PATH", "docs/swagger.yaml"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
