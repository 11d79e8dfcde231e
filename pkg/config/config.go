package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Indexer providers
const (
	IndexerProviderSubgraph = "subgraph"
	IndexerProviderAlchemy  = "alchemy"
)

// Report providers
const (
	ReportProviderOpenAI = "openai"
	ReportProviderHTTP   = "http"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	// Indexing service configuration
	IndexerProvider string
	IndexerURL      string
	IndexerPageSize int
	AlchemyAPIKey   string
	AlchemyNetwork  string

	// Report generation configuration
	ReportProvider string
	ReportAPIURL   string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string

	// Privy configuration
	PrivyAppID           string
	PrivyVerificationKey string

	// Session configuration
	JWTSecret          string
	JWTSecretGenerated bool
	SessionTTL         time.Duration
	ChallengeTTL       time.Duration

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// Database configuration (account log)
	DatabaseURL string
}

// Load loads configuration from an optional .env file and environment variables.
// Absent settings are not an error; see Warnings. Only malformed values fail.
func Load() (*Config, error) {
	// .env is optional; a missing file is the normal case in containers
	_ = godotenv.Load()

	pageSize, err := getEnvAsInt("INDEXER_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getEnvAsDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	challengeTTL, err := getEnvAsDuration("CHALLENGE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", ""),
		AllowedOrigins:       getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		IndexerProvider:      strings.ToLower(getEnv("INDEXER_PROVIDER", IndexerProviderSubgraph)),
		IndexerURL:           getEnv("INDEXER_URL", ""),
		IndexerPageSize:      pageSize,
		AlchemyAPIKey:        getEnv("ALCHEMY_API_KEY", ""),
		AlchemyNetwork:       getEnv("ALCHEMY_NETWORK", "eth-mainnet"),
		ReportProvider:       strings.ToLower(getEnv("REPORT_PROVIDER", ReportProviderOpenAI)),
		ReportAPIURL:         getEnv("REPORT_API_URL", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		PrivyAppID:           getEnv("PRIVY_APP_ID", ""),
		PrivyVerificationKey: getEnv("PRIVY_VERIFICATION_KEY", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		SessionTTL:           sessionTTL,
		ChallengeTTL:         challengeTTL,
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}

	return cfg, nil
}

// Validate rejects malformed values. Absent values are reported by Warnings instead.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}

	if c.IndexerPageSize <= 0 || c.IndexerPageSize > 1000 {
		return fmt.Errorf("INDEXER_PAGE_SIZE must be between 1 and 1000, got %d", c.IndexerPageSize)
	}

	switch c.IndexerProvider {
	case IndexerProviderSubgraph, IndexerProviderAlchemy:
	default:
		return fmt.Errorf("INDEXER_PROVIDER must be %q or %q, got %q", IndexerProviderSubgraph, IndexerProviderAlchemy, c.IndexerProvider)
	}

	switch c.ReportProvider {
	case ReportProviderOpenAI, ReportProviderHTTP:
	default:
		return fmt.Errorf("REPORT_PROVIDER must be %q or %q, got %q", ReportProviderOpenAI, ReportProviderHTTP, c.ReportProvider)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.ChallengeTTL <= 0 {
		return fmt.Errorf("CHALLENGE_TTL must be positive")
	}

	return nil
}

// Warnings lists absent optional settings. Each one degrades a feature instead of stopping
// the process.
func (c *Config) Warnings() []string {
	var warnings []string

	switch c.IndexerProvider {
	case IndexerProviderSubgraph:
		if c.IndexerURL == "" {
			warnings = append(warnings, "INDEXER_URL is not set, transfers will use fallback data")
		}
	case IndexerProviderAlchemy:
		if c.AlchemyAPIKey == "" {
			warnings = append(warnings, "ALCHEMY_API_KEY is not set, transfers will use fallback data")
		}
	}

	switch c.ReportProvider {
	case ReportProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is not set, reports will use fallback data")
		}
	case ReportProviderHTTP:
		if c.ReportAPIURL == "" {
			warnings = append(warnings, "REPORT_API_URL is not set, reports will use fallback data")
		}
	}

	if c.PrivyAppID == "" {
		warnings = append(warnings, "PRIVY_APP_ID is missing, Privy login is disabled")
	} else if c.PrivyVerificationKey == "" {
		warnings = append(warnings, "PRIVY_VERIFICATION_KEY is missing, Privy login is disabled")
	}

	if c.JWTSecretGenerated {
		warnings = append(warnings, "JWT_SECRET is not set, using an ephemeral secret (sessions end on restart)")
	}

	if c.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL is not set, sessions are kept in memory")
	}

	if c.DatabaseURL == "" {
		warnings = append(warnings, "DATABASE_URL is not set, account log is disabled")
	}

	return warnings
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return intValue, nil
}

// getEnvAsDuration accepts Go duration syntax ("15m", "24h")
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
