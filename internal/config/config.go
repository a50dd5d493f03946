package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Checker CheckerConfig
	Holiday HolidayConfig
	Email   EmailConfig
	OpenAI  OpenAIConfig
	Server  ServerConfig
}

// CheckerConfig holds the QC sweep settings
type CheckerConfig struct {
	// TargetRoot is substituted for {target_root} in rule path templates.
	TargetRoot string

	// RulesPath points at the rules JSON file. Empty means the built-in
	// default rules (Package Readiness, Final Report).
	RulesPath string

	// VendorsPath points at the vendors JSON file backing vendor-archive
	// rules. Empty disables vendor archive validation.
	VendorsPath string

	// WindowBusinessDays is how far ahead of today a customer schedule
	// may be and still be monitored.
	WindowBusinessDays int

	// LeadBusinessDays is subtracted from the customer schedule to derive
	// the project start date (3 weeks of business days).
	LeadBusinessDays int
}

// HolidayConfig holds holiday calendar lookup settings
type HolidayConfig struct {
	Region         string
	APIBaseURL     string
	RemoteEnabled  bool
	TimeoutSeconds int
	CacheDir       string
	FallbackFile   string
	ForceRefresh   bool
}

// EmailConfig holds SendGrid notification settings
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// OpenAIConfig holds the optional failure-summary model settings
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// ServerConfig holds HTTP trigger service settings
type ServerConfig struct {
	Port string
	Host string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Checker: CheckerConfig{
			TargetRoot:         getEnv("TARGET_ROOT", ""),
			RulesPath:          getEnv("RULES_CONFIG", ""),
			VendorsPath:        getEnv("VENDOR_CONFIG", ""),
			WindowBusinessDays: getEnvInt("WINDOW_BUSINESS_DAYS", 15),
			LeadBusinessDays:   getEnvInt("LEAD_BUSINESS_DAYS", 15),
		},
		Holiday: HolidayConfig{
			Region:         getEnv("HOLIDAY_REGION", "TW"),
			APIBaseURL:     getEnv("HOLIDAY_API_URL", "https://api.pin-yi.me/taiwan-calendar"),
			RemoteEnabled:  getEnvBool("HOLIDAY_REMOTE_ENABLED", true),
			TimeoutSeconds: getEnvInt("HOLIDAY_FETCH_TIMEOUT_SECONDS", 10),
			CacheDir:       getEnv("HOLIDAY_CACHE_DIR", "cache"),
			FallbackFile:   getEnv("HOLIDAY_FALLBACK_FILE", "config/holiday_fallback.json"),
			ForceRefresh:   getEnvBool("HOLIDAY_FORCE_REFRESH", false),
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("FROM_EMAIL", "qc-monitor@localhost"),
			FromName:  getEnv("FROM_NAME", "QC Monitor"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 400),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
	}

	// Validate required fields
	if cfg.Checker.TargetRoot == "" {
		return nil, fmt.Errorf("TARGET_ROOT is required")
	}
	if cfg.Checker.WindowBusinessDays <= 0 {
		return nil, fmt.Errorf("WINDOW_BUSINESS_DAYS must be positive")
	}
	if cfg.Checker.LeadBusinessDays <= 0 {
		return nil, fmt.Errorf("LEAD_BUSINESS_DAYS must be positive")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
