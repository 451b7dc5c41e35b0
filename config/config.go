package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dyike/FinSage/internal/llm"
	"github.com/dyike/FinSage/internal/models"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	ResultsDir string `json:"results_dir"`
	DataDir    string `json:"data_dir"`
	DBPath     string `json:"db_path"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	BackendURL  string `json:"backend_url"`
	MaxTokens   int    `json:"max_tokens"`

	// AI Model API Keys
	OpenAIAPIKey    string `json:"openai_api_key"`
	DeepSeekAPIKey  string `json:"deepseek_api_key"`
	AnthropicAPIKey string `json:"anthropic_api_key"`
	GoogleAPIKey    string `json:"google_api_key"`

	// External services; empty URLs select the local implementations.
	PolicyURL          string  `json:"policy_url"`
	ForecastURL        string  `json:"forecast_url"`
	ExternalTimeoutSec float64 `json:"external_timeout_sec"`
	ExternalMaxRetries int     `json:"external_max_retries"`

	LLMCacheEnabled bool  `json:"llm_cache_enabled"`
	LLMCacheSize    int64 `json:"llm_cache_size"`

	CurrencySymbol       string  `json:"currency_symbol"`
	DefaultTargetSavings float64 `json:"default_target_savings"`
	DefaultRiskTolerance string  `json:"default_risk_tolerance"`

	Debug bool `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults with every directory
// placed under root. It does not read the environment.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir: root,
		ResultsDir: filepath.Join(root, "results"),
		DataDir:    filepath.Join(root, "data"),
		DBPath:     filepath.Join(root, "data", "finsage.db"),

		LLMProvider: string(llm.ProviderNone),
		MaxTokens:   2048,

		ExternalTimeoutSec: 30,
		ExternalMaxRetries: 2,

		LLMCacheEnabled: true,
		LLMCacheSize:    256,

		CurrencySymbol:       "₹",
		DefaultTargetSavings: 0.2,
		DefaultRiskTolerance: "medium",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.DBPath = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
		c.AnthropicAPIKey = val
	}
	if val := os.Getenv("GOOGLE_API_KEY"); val != "" {
		c.GoogleAPIKey = val
	}

	if val := os.Getenv("POLICY_URL"); val != "" {
		c.PolicyURL = val
	}
	if val := os.Getenv("FORECAST_URL"); val != "" {
		c.ForecastURL = val
	}
	if val := os.Getenv("EXTERNAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.ExternalTimeoutSec = d.Seconds()
		} else if secs, err := strconv.ParseFloat(val, 64); err == nil {
			c.ExternalTimeoutSec = secs
		}
	}
	if val := os.Getenv("EXTERNAL_MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ExternalMaxRetries = v
		}
	}

	if val := os.Getenv("LLM_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.LLMCacheEnabled = enabled
		}
	}

	if val := os.Getenv("CURRENCY_SYMBOL"); val != "" {
		c.CurrencySymbol = val
	}

	if val := os.Getenv("FINSAGE_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// Validate rejects values the engine cannot be built from.
func (c Config) Validate() error {
	var errs []error
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		errs = append(errs, err)
	}
	if c.ExternalTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("external_timeout_sec must be positive, got %v", c.ExternalTimeoutSec))
	}
	if c.ExternalMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("external_max_retries must not be negative"))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max_tokens must not be negative"))
	}
	if c.LLMCacheSize < 0 {
		errs = append(errs, fmt.Errorf("llm_cache_size must not be negative"))
	}
	if err := models.ValidatePreferences(c.DefaultPreferences()); err != nil {
		errs = append(errs, fmt.Errorf("default_target_savings/default_risk_tolerance: %w", err))
	}
	if c.EinoDebugEnabled && (c.EinoDebugPort <= 0 || c.EinoDebugPort > 65535) {
		errs = append(errs, fmt.Errorf("eino_debug_port %d out of range", c.EinoDebugPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DefaultPreferences are the preferences used when a run supplies none.
// An empty risk tolerance means medium.
func (c Config) DefaultPreferences() models.Preferences {
	return models.Preferences{
		TargetSavingsRate: c.DefaultTargetSavings,
		RiskTolerance:     models.RiskTolerance(c.DefaultRiskTolerance),
	}.WithDefaults()
}

// ExternalTimeout is the per-attempt timeout for external services.
func (c Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSec * float64(time.Second))
}

// APIKeyFor returns the key configured for the given provider.
func (c Config) APIKeyFor(p llm.Provider) string {
	switch p {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.GoogleAPIKey
	}
	return ""
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir}
	if c.DBPath != "" {
		dirs = append(dirs, filepath.Dir(c.DBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
