package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/strokecovery/strokecovery-backend/internal/data/db"
	"github.com/strokecovery/strokecovery-backend/internal/observability"
	"github.com/strokecovery/strokecovery-backend/internal/platform/envutil"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type LLMConfig struct {
	Provider            string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
	AnthropicAPIKey     string
	AnthropicModel      string
	Timeout             time.Duration
	MaxRetries          int
}

type BitesConfig struct {
	Temperature          float32
	MaxTokens            int
	ExclusionWindowDays  int
	PreferenceWindowDays int
	RedisTTL             time.Duration
}

type DocAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Timeout     time.Duration
	PapersDir   string
}

type Config struct {
	Port        string
	CORSOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Postgres db.PostgresConfig
	RedisURL string

	LLM   LLMConfig
	Bites BitesConfig
	DocAI DocAIConfig

	Otel           observability.OtelConfig
	MetricsEnabled bool
	// MetricsAddr additionally serves /metrics on its own listener when set.
	MetricsAddr string
}

// LoadEnvFile reads .env (or ENV_FILE) into the process environment when present.
// Variables already set win.
func LoadEnvFile(log *logger.Logger) {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Warn("Failed to load env file", "path", path, "error", err)
		return
	}
	log.Info("Loaded env file", "path", path)
}

func LoadConfig(log *logger.Logger) Config {
	LoadEnvFile(log)

	serviceName := envutil.String("OTEL_SERVICE_NAME", "strokecovery-api", log)
	return Config{
		Port:        envutil.String("PORT", "8000", log),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil, log),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 7*24*time.Hour, log),

		Postgres: db.PostgresConfig{
			URL:          envutil.String("DATABASE_URL", "", log),
			Host:         envutil.String("POSTGRES_HOST", "localhost", log),
			Port:         envutil.Int("POSTGRES_PORT", 5432, log),
			User:         envutil.String("POSTGRES_USER", "postgres", log),
			Password:     envutil.String("POSTGRES_PASSWORD", "", log),
			Name:         envutil.String("POSTGRES_NAME", "strokecovery", log),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable", log),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5, log),
		},
		RedisURL: envutil.String("REDIS_URL", "", log),

		LLM: LLMConfig{
			Provider:            strings.ToLower(envutil.String("LLM_PROVIDER", ProviderOpenAI, log)),
			OpenAIAPIKey:        envutil.String("OPENAI_API_KEY", "", log),
			OpenAIBaseURL:       envutil.String("OPENAI_BASE_URL", "", log),
			ChatModel:           envutil.String("OPENAI_CHAT_MODEL", "gpt-4o-mini", log),
			EmbeddingModel:      envutil.String("EMBEDDING_MODEL", "text-embedding-3-small", log),
			EmbeddingDimensions: envutil.Int("EMBEDDING_DIMENSIONS", 1536, log),
			AnthropicAPIKey:     envutil.String("ANTHROPIC_API_KEY", "", log),
			AnthropicModel:      envutil.String("ANTHROPIC_MODEL", "claude-3-5-haiku-latest", log),
			Timeout:             envutil.Duration("LLM_TIMEOUT", 60*time.Second, log),
			MaxRetries:          envutil.Int("LLM_MAX_RETRIES", 2, log),
		},
		Bites: BitesConfig{
			Temperature:          float32(envutil.Float("BITE_TEMPERATURE", 0.3, log)),
			MaxTokens:            envutil.Int("BITE_MAX_TOKENS", 3000, log),
			ExclusionWindowDays:  envutil.Int("BITE_EXCLUSION_WINDOW_DAYS", 14, log),
			PreferenceWindowDays: envutil.Int("BITE_PREFERENCE_WINDOW_DAYS", 30, log),
			RedisTTL:             envutil.Duration("BITE_REDIS_TTL", 26*time.Hour, log),
		},
		DocAI: DocAIConfig{
			ProjectID:   envutil.String("DOCAI_PROJECT_ID", "", log),
			Location:    envutil.String("DOCAI_LOCATION", "us", log),
			ProcessorID: envutil.String("DOCAI_PROCESSOR_ID", "", log),
			Timeout:     envutil.Duration("DOCAI_TIMEOUT", 2*time.Minute, log),
			PapersDir:   envutil.String("PAPERS_DIR", "./papers", log),
		},

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: serviceName,
			Environment: envutil.String("OTEL_ENVIRONMENT", "development", log),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0, log),
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true, log),
		MetricsAddr:    envutil.String("METRICS_ADDR", "", log),
	}
}
