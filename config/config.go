package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	ModelGW   ModelGWConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelGWConfig holds the local model gateway configuration
type ModelGWConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	SummarizerModel string `mapstructure:"summarizer_model"`
	PromptModel     string `mapstructure:"prompt_model"`
}

// AnalysisConfig holds analysis pipeline configuration
type AnalysisConfig struct {
	CapabilityTimeout  time.Duration `mapstructure:"capability_timeout"`
	EnableDebugLogging bool          `mapstructure:"enable_debug_logging"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env before viper reads the environment
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wellnesslens/")

	// Environment variable settings
	v.SetEnvPrefix("WELLNESSLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Model gateway defaults: an Ollama-style OpenAI-compatible endpoint
	v.SetDefault("modelgw.base_url", "http://localhost:11434/v1")
	v.SetDefault("modelgw.summarizer_model", "llama3.2")
	v.SetDefault("modelgw.prompt_model", "llama3.2")

	// Analysis defaults
	v.SetDefault("analysis.capability_timeout", "15s")
	v.SetDefault("analysis.enable_debug_logging", false)

	// Rate limit defaults (requests per minute per IP)
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.ModelGW.BaseURL == "" {
		return fmt.Errorf("model gateway base URL is required (set WELLNESSLENS_MODELGW_BASE_URL)")
	}

	if config.ModelGW.SummarizerModel == "" && config.ModelGW.PromptModel == "" {
		return fmt.Errorf("at least one model gateway model must be configured")
	}

	if config.Analysis.CapabilityTimeout <= 0 {
		return fmt.Errorf("capability timeout must be positive, got: %s", config.Analysis.CapabilityTimeout)
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a local .env file into the
// process environment. Missing file is fine; existing environment
// variables are never overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
