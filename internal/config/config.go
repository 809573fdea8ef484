// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Humanoid HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Linkedin LinkedinConfig `mapstructure:"linkedin" yaml:"linkedin"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig tunes the HTTP API surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	APIKey          string        `mapstructure:"api_key" yaml:"-"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless       bool     `mapstructure:"headless" yaml:"headless"`
	ExecPath       string   `mapstructure:"exec_path" yaml:"exec_path"`
	Args           []string `mapstructure:"args" yaml:"args"`
	ViewportWidth  int      `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int      `mapstructure:"viewport_height" yaml:"viewport_height"`
	UserAgent      string   `mapstructure:"user_agent" yaml:"user_agent"`
	// DebugDir is the scoped directory for screenshots and raw-markup dumps.
	// Writes there are best effort and never surface to callers.
	DebugDir string `mapstructure:"debug_dir" yaml:"debug_dir"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

// NetworkConfig tunes navigation and bounded-wait ceilings.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	LoginTimeout      time.Duration `mapstructure:"login_timeout" yaml:"login_timeout"`
	LandmarkWait      time.Duration `mapstructure:"landmark_wait" yaml:"landmark_wait"`
}

// HumanoidConfig shapes the traffic-pattern simulation between navigation and
// extraction.
type HumanoidConfig struct {
	Enabled           bool          `mapstructure:"enabled" yaml:"enabled"`
	MinScrolls        int           `mapstructure:"min_scrolls" yaml:"min_scrolls"`
	MaxScrolls        int           `mapstructure:"max_scrolls" yaml:"max_scrolls"`
	MinScrollPx       int           `mapstructure:"min_scroll_px" yaml:"min_scroll_px"`
	MaxScrollPx       int           `mapstructure:"max_scroll_px" yaml:"max_scroll_px"`
	MinActionDelay    time.Duration `mapstructure:"min_action_delay" yaml:"min_action_delay"`
	MaxActionDelay    time.Duration `mapstructure:"max_action_delay" yaml:"max_action_delay"`
	PointerMoveChance float64       `mapstructure:"pointer_move_chance" yaml:"pointer_move_chance"`
}

// CacheConfig bounds the profile-result store.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
}

// LinkedinConfig carries the target-site endpoints and the process-wide
// fallback credentials used when a request supplies none.
type LinkedinConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
	Email    string `mapstructure:"email" yaml:"-"`
	Password string `mapstructure:"password" yaml:"-"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "prospector")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit_rps", 0.2)
	v.SetDefault("server.rate_limit_burst", 1)
	v.SetDefault("server.request_timeout", "5m")
	v.SetDefault("server.shutdown_timeout", "15s")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	v.SetDefault("browser.debug_dir", "screenshots")
	v.SetDefault("browser.debug", false)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.post_load_wait", "2s")
	v.SetDefault("network.login_timeout", "60s")
	v.SetDefault("network.landmark_wait", "5s")

	// -- Humanoid --
	v.SetDefault("humanoid.enabled", true)
	v.SetDefault("humanoid.min_scrolls", 3)
	v.SetDefault("humanoid.max_scrolls", 6)
	v.SetDefault("humanoid.min_scroll_px", 300)
	v.SetDefault("humanoid.max_scroll_px", 1200)
	v.SetDefault("humanoid.min_action_delay", "800ms")
	v.SetDefault("humanoid.max_action_delay", "2500ms")
	v.SetDefault("humanoid.pointer_move_chance", 0.3)

	// -- Cache --
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 256)

	// -- Target site --
	v.SetDefault("linkedin.base_url", "https://www.linkedin.com")
	v.SetDefault("linkedin.login_url", "https://www.linkedin.com/login")
}

// NewFromViper builds and validates a Config from a prepared viper instance.
// A .env file in the working directory is honored before env vars are read,
// matching the deployment convention for credentials.
func NewFromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	v.BindEnv("server.api_key", "PROSPECTOR_API_KEY")
	v.BindEnv("linkedin.email", "LINKEDIN_EMAIL")
	v.BindEnv("linkedin.password", "LINKEDIN_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Viper's BindEnv does not always survive Unmarshal for unset keys.
	if cfg.Linkedin.Email == "" {
		cfg.Linkedin.Email = os.Getenv("LINKEDIN_EMAIL")
	}
	if cfg.Linkedin.Password == "" {
		cfg.Linkedin.Password = os.Getenv("LINKEDIN_PASSWORD")
	}
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = os.Getenv("PROSPECTOR_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefault creates a configuration populated with default values only.
func NewDefault() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be positive")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.Network.LoginTimeout <= 0 {
		return fmt.Errorf("network.login_timeout must be a positive duration")
	}
	if c.Humanoid.Enabled {
		if c.Humanoid.MaxScrolls < c.Humanoid.MinScrolls || c.Humanoid.MinScrolls < 0 {
			return fmt.Errorf("humanoid scroll bounds are inconsistent")
		}
		if c.Humanoid.MaxActionDelay < c.Humanoid.MinActionDelay {
			return fmt.Errorf("humanoid.max_action_delay must be >= min_action_delay")
		}
		if c.Humanoid.PointerMoveChance < 0 || c.Humanoid.PointerMoveChance > 1 {
			return fmt.Errorf("humanoid.pointer_move_chance must be within [0, 1]")
		}
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be a positive integer")
	}
	if !strings.HasPrefix(c.Linkedin.LoginURL, "http") {
		return fmt.Errorf("linkedin.login_url must be an absolute URL")
	}
	return nil
}
