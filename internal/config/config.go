package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	Crawl   Crawl   `mapstructure:"crawl"`
	Summary Summary `mapstructure:"summary"`
	Output  Output  `mapstructure:"output"`
	S3      S3      `mapstructure:"s3"`
	Gemini  Gemini  `mapstructure:"gemini"`
}

// App holds general application configuration
type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Crawl holds crawl engine configuration
type Crawl struct {
	MaxArticles int    `mapstructure:"max_articles"`
	Parallelism int    `mapstructure:"parallelism"`
	UserAgent   string `mapstructure:"user_agent"`
}

// Summary holds summarization configuration
type Summary struct {
	Enabled   bool `mapstructure:"enabled"`
	MaxLength int  `mapstructure:"max_length"`
	MinLength int  `mapstructure:"min_length"`
}

// Output holds local persistence configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

// S3 holds remote object-storage sink configuration
type S3 struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Gemini holds the abstractive model configuration
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Default returns the built-in configuration without consulting files or the
// environment.
func Default() *Config {
	return &Config{
		App: App{LogLevel: "info"},
		Crawl: Crawl{
			MaxArticles: 40,
			Parallelism: 16,
			UserAgent:   "Mozilla/5.0 (compatible; HarvestBot/1.0)",
		},
		Summary: Summary{Enabled: true, MaxLength: 160, MinLength: 60},
		Output:  Output{Directory: "output"},
		S3:      S3{Region: "us-east-1", UseSSL: true},
		Gemini:  Gemini{Model: "gemini-flash-lite-latest"},
	}
}

// Load loads configuration from .env, config file, environment variables,
// and defaults, in that order of discovery.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".harvest")
	}

	setDefaults()
	bindEnvironmentVariables()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("crawl.max_articles", 40)
	viper.SetDefault("crawl.parallelism", 16)
	viper.SetDefault("crawl.user_agent", "Mozilla/5.0 (compatible; HarvestBot/1.0)")

	viper.SetDefault("summary.enabled", true)
	viper.SetDefault("summary.max_length", 160)
	viper.SetDefault("summary.min_length", 60)

	viper.SetDefault("output.directory", "output")

	viper.SetDefault("s3.enabled", false)
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.use_ssl", true)

	viper.SetDefault("gemini.model", "gemini-flash-lite-latest")
}

// bindEnvironmentVariables maps flat environment variable names onto viper
// keys so that both HARVEST-style config files and plain env vars work.
func bindEnvironmentVariables() {
	bindings := map[string][]string{
		"app.log_level":      {"LOG_LEVEL"},
		"crawl.max_articles": {"MAX_ARTICLES"},
		"crawl.parallelism":  {"CRAWL_PARALLELISM"},
		"summary.enabled":    {"SUMMARY_ENABLED"},
		"summary.max_length": {"SUMMARY_MAX_LENGTH"},
		"summary.min_length": {"SUMMARY_MIN_LENGTH"},
		"output.directory":   {"OUTPUT_DIR"},
		"s3.enabled":         {"S3_UPLOAD_ENABLED"},
		"s3.endpoint":        {"S3_ENDPOINT"},
		"s3.region":          {"AWS_REGION"},
		"s3.bucket":          {"S3_BUCKET_NAME"},
		"s3.prefix":          {"S3_PREFIX"},
		"s3.access_key":      {"AWS_ACCESS_KEY_ID"},
		"s3.secret_key":      {"AWS_SECRET_ACCESS_KEY"},
		"gemini.api_key":     {"GEMINI_API_KEY"},
		"gemini.model":       {"GEMINI_MODEL"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s: %v\n", key, err)
		}
	}
}

// validate checks invariants that would otherwise fail deep inside a run.
// A remote-only run with an unconfigured sink must abort before any
// persistence is attempted.
func validate(cfg *Config) error {
	if cfg.S3.Enabled {
		if strings.TrimSpace(cfg.S3.Bucket) == "" {
			return fmt.Errorf("s3 sink enabled but no bucket configured (set S3_BUCKET_NAME)")
		}
		if strings.TrimSpace(cfg.S3.Endpoint) == "" {
			return fmt.Errorf("s3 sink enabled but no endpoint configured (set S3_ENDPOINT)")
		}
	}

	if cfg.Summary.MinLength > cfg.Summary.MaxLength {
		return fmt.Errorf("summary.min_length (%d) exceeds summary.max_length (%d)",
			cfg.Summary.MinLength, cfg.Summary.MaxLength)
	}

	if cfg.Crawl.MaxArticles < 0 {
		return fmt.Errorf("crawl.max_articles must not be negative")
	}

	return nil
}
