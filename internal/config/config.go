package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// EngineConfig holds connection settings for one full-text search backend.
// TimeoutMS bounds every round trip so a hung engine cannot stall a request.
type EngineConfig struct {
	BaseURL    string
	Collection string
	APIKey     string
	TimeoutMS  int
}

// SearchConfig groups the three backend engines.
type SearchConfig struct {
	Solr       EngineConfig
	OpenSearch EngineConfig
	TypeSense  EngineConfig
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Search   SearchConfig
	SeedData bool
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		SeedData: getEnvBool("SEED_DATA", false),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Search: SearchConfig{
			Solr: EngineConfig{
				BaseURL:    getEnv("SOLR_URL", "http://localhost:8983/solr"),
				Collection: getEnv("SOLR_CORE", "documents"),
				TimeoutMS:  getEnvInt("SOLR_TIMEOUT_MS", 2000),
			},
			OpenSearch: EngineConfig{
				BaseURL:    getEnv("OPENSEARCH_URL", "http://localhost:9200"),
				Collection: getEnv("OPENSEARCH_INDEX", "documents"),
				TimeoutMS:  getEnvInt("OPENSEARCH_TIMEOUT_MS", 2000),
			},
			TypeSense: EngineConfig{
				BaseURL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
				Collection: getEnv("TYPESENSE_COLLECTION", "documents"),
				APIKey:     getEnv("TYPESENSE_API_KEY", ""),
				TimeoutMS:  getEnvInt("TYPESENSE_TIMEOUT_MS", 1500),
			},
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
