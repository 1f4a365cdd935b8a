package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScraperConfig holds the crawl's behavior knobs. Delays are seconds so the
// YAML stays plain numbers. All of these are construction-time settings;
// nothing is re-read mid-run.
type ScraperConfig struct {
	Headless bool `yaml:"headless"`
	// DelayBetweenCategories is the mandatory pacing floor between
	// category fetches, the primary anti-detection control.
	DelayBetweenCategories int `yaml:"delay_between_categories"`
	NavigationTimeout      int `yaml:"navigation_timeout"`
	MaxCategories          int `yaml:"max_categories"`
}

// Delay returns the pacing floor as a duration.
func (s ScraperConfig) Delay() time.Duration {
	return time.Duration(s.DelayBetweenCategories) * time.Second
}

// Timeout returns the per-navigation timeout as a duration.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.NavigationTimeout) * time.Second
}

// RetryConfig holds the retry controller's budget.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	BaseDelayMs    int     `yaml:"base_delay_ms"`
	JitterRatio    float64 `yaml:"jitter_ratio"`
	BlockedDelayMs int     `yaml:"blocked_delay_ms"`
}

// BaseDelay returns the first transient backoff step.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// BlockedDelay returns the cool-off applied after an anti-bot block.
func (r RetryConfig) BlockedDelay() time.Duration {
	return time.Duration(r.BlockedDelayMs) * time.Millisecond
}

// SimplyCodesConfig holds settings specific to the target site.
type SimplyCodesConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StorageConfig holds artifact and database locations.
type StorageConfig struct {
	DataDir      string `yaml:"data_dir"`
	DatabasePath string `yaml:"database_path"`
}

// MetricsConfig controls the embedded /metrics listener. An empty address
// disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Scraper     ScraperConfig     `yaml:"scraper"`
	Retry       RetryConfig       `yaml:"retry"`
	SimplyCodes SimplyCodesConfig `yaml:"simplycodes"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// Default returns the settings a fresh checkout runs with.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Headless:               true,
			DelayBetweenCategories: 5,
			NavigationTimeout:      30,
			MaxCategories:          0,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BaseDelayMs:    5000,
			JitterRatio:    0.25,
			BlockedDelayMs: 15000,
		},
		SimplyCodes: SimplyCodesConfig{
			BaseURL: "https://simplycodes.com",
		},
		Storage: StorageConfig{
			DataDir:      "data",
			DatabasePath: "coupons.db",
		},
	}
}

// LoadConfig reads the YAML config at filepath, falling back to defaults
// when the file does not exist.
func LoadConfig(filepath string) *Config {
	cfg := Default()

	data, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file %s not found, using defaults", filepath)
			return cfg
		}
		log.Fatalf("Error reading config file: %v", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Fatalf("Error unmarshalling config YAML: %v", err)
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults backfills zero values a partial config file left out.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Scraper.DelayBetweenCategories <= 0 {
		cfg.Scraper.DelayBetweenCategories = def.Scraper.DelayBetweenCategories
	}
	if cfg.Scraper.NavigationTimeout <= 0 {
		cfg.Scraper.NavigationTimeout = def.Scraper.NavigationTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if cfg.Retry.BaseDelayMs <= 0 {
		cfg.Retry.BaseDelayMs = def.Retry.BaseDelayMs
	}
	if cfg.Retry.JitterRatio < 0 {
		cfg.Retry.JitterRatio = def.Retry.JitterRatio
	}
	if cfg.Retry.BlockedDelayMs <= 0 {
		cfg.Retry.BlockedDelayMs = def.Retry.BlockedDelayMs
	}
	if cfg.SimplyCodes.BaseURL == "" {
		cfg.SimplyCodes.BaseURL = def.SimplyCodes.BaseURL
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = def.Storage.DataDir
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = def.Storage.DatabasePath
	}
}
