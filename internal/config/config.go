package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"asogen/internal/core"
)

// Config holds all application configuration.
type Config struct {
	App     App     `mapstructure:"app"`
	Gemini  Gemini  `mapstructure:"gemini"`
	Scoring Scoring `mapstructure:"scoring"`
	Cache   Cache   `mapstructure:"cache"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Gemini holds the text-generation provider configuration.
type Gemini struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int32         `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// Scoring holds keyword scoring and selection configuration. The three
// weights must sum to 1.0 within a 0.001 tolerance.
type Scoring struct {
	RankingWeight    float64 `mapstructure:"ranking_weight"`
	PopularityWeight float64 `mapstructure:"popularity_weight"`
	DifficultyWeight float64 `mapstructure:"difficulty_weight"`
	MinPrimaryScore  float64 `mapstructure:"min_primary_score"`
	CandidateLimit   int     `mapstructure:"candidate_limit"`
}

// Cache holds generation cache configuration.
type Cache struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// Load reads configuration from .env, an optional YAML config file and
// ASOGEN_-prefixed environment variables, in that order of increasing
// precedence.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".asogen")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix("ASOGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// GEMINI_API_KEY is the conventional variable name, honor it when the
	// prefixed form is not set.
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on values the engine cannot run with.
func Validate(cfg *Config) error {
	sum := cfg.Scoring.RankingWeight + cfg.Scoring.PopularityWeight + cfg.Scoring.DifficultyWeight
	if math.Abs(sum-1.0) > 0.001 {
		return &core.ConfigurationError{Message: fmt.Sprintf("scoring weights must sum to 1.0, got %.4f", sum)}
	}
	if cfg.Scoring.MinPrimaryScore < 0 || cfg.Scoring.MinPrimaryScore > 1 {
		return &core.ConfigurationError{Message: fmt.Sprintf("min_primary_score must be in [0,1], got %.4f", cfg.Scoring.MinPrimaryScore)}
	}
	if cfg.Scoring.CandidateLimit < 1 {
		return &core.ConfigurationError{Message: "candidate_limit must be at least 1"}
	}
	if cfg.Cache.MaxEntries < 1 {
		return &core.ConfigurationError{Message: "cache max_entries must be at least 1"}
	}
	if cfg.Gemini.MaxRetries < 1 {
		return &core.ConfigurationError{Message: "gemini max_retries must be at least 1"}
	}
	return nil
}

// Default returns the built-in configuration without touching the
// environment. Useful for tests and embedding.
func Default() *Config {
	return &Config{
		App: App{LogLevel: "info"},
		Gemini: Gemini{
			Model:       "gemini-2.5-flash",
			Timeout:     30 * time.Second,
			MaxTokens:   8192,
			Temperature: 0.7,
			MaxRetries:  3,
		},
		Scoring: Scoring{
			RankingWeight:    0.4,
			PopularityWeight: 0.4,
			DifficultyWeight: 0.2,
			MinPrimaryScore:  0.3,
			CandidateLimit:   10,
		},
		Cache: Cache{
			TTL:        24 * time.Hour,
			MaxEntries: 1000,
		},
	}
}

// setDefaults sets default configuration values.
func setDefaults() {
	def := Default()

	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", def.App.LogLevel)

	// The empty default registers the key with viper; AutomaticEnv only
	// surfaces ASOGEN_GEMINI_API_KEY through Unmarshal for known keys.
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", def.Gemini.Model)
	viper.SetDefault("gemini.timeout", def.Gemini.Timeout)
	viper.SetDefault("gemini.max_tokens", def.Gemini.MaxTokens)
	viper.SetDefault("gemini.temperature", def.Gemini.Temperature)
	viper.SetDefault("gemini.max_retries", def.Gemini.MaxRetries)

	viper.SetDefault("scoring.ranking_weight", def.Scoring.RankingWeight)
	viper.SetDefault("scoring.popularity_weight", def.Scoring.PopularityWeight)
	viper.SetDefault("scoring.difficulty_weight", def.Scoring.DifficultyWeight)
	viper.SetDefault("scoring.min_primary_score", def.Scoring.MinPrimaryScore)
	viper.SetDefault("scoring.candidate_limit", def.Scoring.CandidateLimit)

	viper.SetDefault("cache.ttl", def.Cache.TTL)
	viper.SetDefault("cache.max_entries", def.Cache.MaxEntries)
}
