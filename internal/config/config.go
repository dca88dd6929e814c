package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Keys     APIKeys
	Ai       AIConfig
	Search   SearchConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type APIKeys struct {
	SerpApi      string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider   string // "gemini" or "ollama"
	LLMModel      string // e.g. "gemini-1.5-flash", "llama3"
	OllamaBaseURL string
}

type SearchConfig struct {
	Locale          string // country code passed to the lens engine, e.g. "kr"
	Language        string // hl parameter, e.g. "ko"
	DetectorBaseURL string
	PoolCacheTTLMin int
}

type PipelineConfig struct {
	SearchTimeoutSec  int // per reverse-image-search attempt
	RankTimeoutSec    int // per LLM ranking call
	OverallTimeoutSec int // whole request deadline
	ProgressTopic     string
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Keys: APIKeys{
			SerpApi:      getEnv("SERPAPI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Search: SearchConfig{
			Locale:          getEnv("SEARCH_LOCALE", "kr"),
			Language:        getEnv("SEARCH_LANGUAGE", "ko"),
			DetectorBaseURL: getEnv("DETECTOR_BASE_URL", "http://localhost:8500"),
			PoolCacheTTLMin: getEnvAsInt("POOL_CACHE_TTL_MINUTES", 10),
		},
		Pipeline: PipelineConfig{
			SearchTimeoutSec:  getEnvAsInt("SEARCH_TIMEOUT_SECONDS", 10),
			RankTimeoutSec:    getEnvAsInt("RANK_TIMEOUT_SECONDS", 90),
			OverallTimeoutSec: getEnvAsInt("PIPELINE_TIMEOUT_SECONDS", 120),
			ProgressTopic:     getEnv("SEARCH_PROGRESS_TOPIC_NAME", "SEARCH_PROGRESS"),
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
