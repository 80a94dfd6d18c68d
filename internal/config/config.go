package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// LLM providers
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderNone     = "none"
)

// AuditMemory selects the in-memory audit store
const AuditMemory = "memory"

// Config is the server configuration, read from the environment
type Config struct {
	Port        string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	Location    *time.Location

	DatabaseURL    string
	DBMaxConns     int
	DBMaxIdleConns int

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ProfileTTL    time.Duration

	AuditPath       string
	ChatHistorySize int

	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  time.Duration

	SugarHighThreshold float64
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from the current environment
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AuditPath:     getEnv("AUDIT_DB_PATH", "audit.db"),
		LLMModel:      getEnv("LLM_MODEL", ""),
	}

	cfg.DBMaxConns = getInt("DB_MAX_CONNS", 25, &errs)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 5, &errs)
	cfg.RedisDB = getInt("REDIS_DB", 0, &errs)
	cfg.ChatHistorySize = getInt("CHAT_HISTORY_SIZE", 20, &errs)
	cfg.TokenTTL = getDuration("JWT_TTL", 7*24*time.Hour, &errs)
	cfg.ProfileTTL = getDuration("PROFILE_TTL", 30*24*time.Hour, &errs)
	cfg.LLMTimeout = getDuration("LLM_TIMEOUT", 30*time.Second, &errs)
	cfg.SugarHighThreshold = getFloat("SUGAR_HIGH_THRESHOLD", 140, &errs)

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.SugarHighThreshold < 70 {
		errs = append(errs, fmt.Errorf("SUGAR_HIGH_THRESHOLD must be at least 70, got %v", cfg.SugarHighThreshold))
	}

	if err := cfg.resolveProvider(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// resolveProvider picks the model provider. Without LLM_PROVIDER the first
// provider with an API key wins, and none at all disables model insights.
func (c *Config) resolveProvider() error {
	deepseekKey := getEnv("DEEPSEEK_API_KEY", "")
	openaiKey := getEnv("OPENAI_API_KEY", "")
	geminiKey := getEnv("GEMINI_API_KEY", "")

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ""))
	if provider == "" {
		switch {
		case deepseekKey != "":
			provider = ProviderDeepSeek
		case openaiKey != "":
			provider = ProviderOpenAI
		case geminiKey != "":
			provider = ProviderGemini
		default:
			provider = ProviderNone
		}
	}

	switch provider {
	case ProviderDeepSeek:
		c.LLMAPIKey = deepseekKey
		c.LLMBaseURL = getEnv("DEEPSEEK_BASE_URL", "")
	case ProviderOpenAI:
		c.LLMAPIKey = openaiKey
		c.LLMBaseURL = getEnv("OPENAI_BASE_URL", "")
	case ProviderGemini:
		c.LLMAPIKey = geminiKey
		c.LLMBaseURL = getEnv("GEMINI_BASE_URL", "")
	case ProviderNone:
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not one of deepseek, openai, gemini, none", provider)
	}

	if provider != ProviderNone && c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_PROVIDER %s needs an API key", provider)
	}
	c.LLMProvider = provider
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
