package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Geocoding  GeocodingConfig
	Ranking    RankingConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds search pagination bounds
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// GeocodingConfig holds geocoding provider configuration. Both keys are
// optional; with neither set the geocoder degrades to local parsing.
type GeocodingConfig struct {
	GoogleAPIKey   string
	MapboxAPIKey   string
	CountryBias    string // ISO code for Mapbox country restriction
	DefaultCountry string // country assumed by the local parse fallback
	Timeout        time.Duration
}

// RankingConfig holds the external AI ranking service configuration
type RankingConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// RedisConfig holds the optional geocode cache configuration. An empty
// Addr disables caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "bhoomisetu"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),
		},
		Geocoding: GeocodingConfig{
			GoogleAPIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			MapboxAPIKey:   getEnv("MAPBOX_API_KEY", ""),
			CountryBias:    getEnv("GEOCODING_COUNTRY_BIAS", "in"),
			DefaultCountry: getEnv("GEOCODING_DEFAULT_COUNTRY", "India"),
			Timeout:        getEnvAsDuration("GEOCODING_TIMEOUT", 5*time.Second),
		},
		Ranking: RankingConfig{
			BaseURL: getEnv("AI_SERVICE_URL", "http://localhost:8000"),
			APIKey:  getEnv("AI_SERVICE_API_KEY", ""),
			Timeout: getEnvAsDuration("AI_SERVICE_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
