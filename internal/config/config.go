package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini" or "ollama"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "ollama" or "gemini"
	LLMModel             string // e.g. "llama3", "gemini-2.0-flash"
	GeminiAPIKey         string
}

type SearchConfig struct {
	IndexBaseURL       string // external document/email index, empty disables it
	IndexAPIKey        string
	WebFetchTimeoutMs  int
	WebResultCap       int
	MinContentChars    int
	ChunkChars         int
	TopK               int
	MemoryThreshold    float64
	ClassifierTimeoutS int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			GeminiAPIKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Search: SearchConfig{
			IndexBaseURL:       getEnv("SEARCH_INDEX_BASE_URL", ""),
			IndexAPIKey:        getEnv("SEARCH_INDEX_API_KEY", ""),
			WebFetchTimeoutMs:  getEnvAsInt("WEB_FETCH_TIMEOUT_MS", 1500),
			WebResultCap:       getEnvAsInt("WEB_RESULT_CAP", 6),
			MinContentChars:    getEnvAsInt("WEB_MIN_CONTENT_CHARS", 250),
			ChunkChars:         getEnvAsInt("WEB_CHUNK_CHARS", 200),
			TopK:               getEnvAsInt("SEARCH_TOP_K", 4),
			MemoryThreshold:    getEnvAsFloat("MEMORY_SIMILARITY_THRESHOLD", 0.5),
			ClassifierTimeoutS: getEnvAsInt("INTENT_CLASSIFIER_TIMEOUT_S", 10),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
