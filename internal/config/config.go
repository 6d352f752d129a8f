package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Blob         BlobConfig
	InternalAuth InternalAuthConfig
	Engine       EngineConfig
	Search       SearchConfig
	Ai           AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	AnalysisBusTopic   string // In-process bus topic bridging analysis completion to reindexing
}

type DatabaseConfig struct {
	Connection string
}

type BlobConfig struct {
	Dir     string // Local storage root for document blobs
	BaseURL string // Public base URL used when building signed links
}

type InternalAuthConfig struct {
	Secret         string // HMAC shared secret for the oracle worker
	LegacyKey      string // Static fallback key (weaker, pre-HMAC workers)
	AllowLegacyKey bool   // Hardened deployments turn this off
}

type EngineConfig struct {
	Dimension int    // pgvector column dimension; every embedding must match
	Model     string // Embedding model identifier reported by the worker
}

type SearchConfig struct {
	MaxOffset       int
	RateLimitPerMin int
}

type AIConfig struct {
	EmbeddingProvider string // "jina" or "ollama"
	JinaAPIKey        string
	OllamaBaseURL     string
	OllamaModel       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AnalysisBusTopic:   getEnv("ANALYSIS_BUS_TOPIC", "ANALYSIS_COMPLETED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Blob: BlobConfig{
			Dir:     getEnv("BLOB_DIR", "./uploads"),
			BaseURL: getEnv("BLOB_BASE_URL", getEnv("APP_BASE_URL", "http://localhost:3000")+"/uploads"),
		},
		InternalAuth: InternalAuthConfig{
			Secret:         getEnv("INTERNAL_API_SECRET", ""),
			LegacyKey:      getEnv("INTERNAL_API_KEY", ""),
			AllowLegacyKey: getEnvAsBool("INTERNAL_ALLOW_LEGACY_KEY", true),
		},
		Engine: EngineConfig{
			Dimension: getEnvAsInt("ENGINE_DIMENSION", 1536),
			Model:     getEnv("ENGINE_EMBED_MODEL", "text-embedding-3-small"),
		},
		Search: SearchConfig{
			MaxOffset:       getEnvAsInt("SEARCH_MAX_OFFSET", 10000),
			RateLimitPerMin: getEnvAsInt("SEARCH_RATE_LIMIT_PER_MIN", 30),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "jina"),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.ToLower(getEnv(key, ""))
	switch strValue {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
