// Package config handles application configuration.
//
// It provides:
//   - Flag parsing with CLI arguments
//   - Environment variable support (with CLI override)
//   - An optional YAML configuration file
//   - Configuration validation
//   - Precedence: CLI flags > environment variables > config file > defaults
//
// Supported environment variables:
//   - ENS_CONFIG: Path to a YAML configuration file
//   - ENS_BASE_URL: ENS REST API base URL
//   - ENS_API_KEY: ENS API user key
//   - ENS_PORT: HTTP server port
//   - ENS_SCRAPE_TIMEOUT: Timeout for API requests (seconds)
//   - ENS_LOG_LEVEL: Logging level (debug, info, warn, error)
//   - ENS_LOG_FORMAT: Log output format (text, json)
//   - ENS_PAGE_TYPES: Comma separated page types to export
//   - ENS_CACHE_BACKEND: Session token cache (memory, redis, none)
//   - ENS_REDIS_ADDR, ENS_REDIS_PASSWORD, ENS_REDIS_DB: Redis connection
//   - ENS_CACHE_KEY_PREFIX: Prefix of the session token cache keys
//   - ENS_BREAKER_FAILURES, ENS_BREAKER_TIMEOUT: Circuit breaker settings
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds the application configuration
type Config struct {
	// ENS API configuration
	BaseURL string
	APIKey  string

	// Server configuration
	Port int

	// Collection configuration
	ScrapeTimeout int
	PageTypes     []string

	// Logging
	LogLevel  string
	LogFormat string

	// Session token cache
	CacheBackend   string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheKeyPrefix string

	// Circuit breaker
	BreakerFailures int
	BreakerTimeout  int
}

// fileConfig is the YAML representation of Config. Empty values leave the
// default in place.
type fileConfig struct {
	BaseURL        string   `yaml:"base_url"`
	APIKey         string   `yaml:"api_key"`
	Port           int      `yaml:"port"`
	ScrapeTimeout  int      `yaml:"scrape_timeout"`
	PageTypes      []string `yaml:"page_types"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	CacheBackend   string   `yaml:"cache_backend"`
	CacheKeyPrefix string   `yaml:"cache_key_prefix"`
	Redis          struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Breaker struct {
		Failures int `yaml:"failures"`
		Timeout  int `yaml:"timeout"`
	} `yaml:"breaker"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		BaseURL:         "https://ca.engagingnetworks.app/ens/service",
		Port:            9100,
		ScrapeTimeout:   10,
		PageTypes:       []string{string(ens.PageTypeDCF), string(ens.PageTypePet), string(ens.PageTypeEMS)},
		LogLevel:        "info",
		LogFormat:       "text",
		CacheBackend:    CacheMemory,
		RedisAddr:       "localhost:6379",
		CacheKeyPrefix:  "ens.rest",
		BreakerFailures: 5,
		BreakerTimeout:  30,
	}
}

// Load parses the config file, environment variables and command-line flags
// and returns a Config
func Load() (*Config, error) {
	return LoadWithArgs(os.Args[1:])
}

// LoadWithArgs loads configuration with explicit arguments (useful for testing)
func LoadWithArgs(args []string) (*Config, error) {
	configPath := findConfigPath(args)
	defaults, err := FromFileAndEnv(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Create a new FlagSet for this invocation (allows multiple calls in tests)
	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	var pageTypes string
	fs.String("config", configPath, "Path to a YAML configuration file (env: ENS_CONFIG)")
	fs.StringVar(&cfg.BaseURL, "base-url", defaults.BaseURL, "ENS REST API base URL (env: ENS_BASE_URL)")
	fs.StringVar(&cfg.APIKey, "api-key", defaults.APIKey, "ENS API user key (env: ENS_API_KEY, required)")

	// Server configuration
	fs.IntVar(&cfg.Port, "port", defaults.Port, "HTTP server listen port (env: ENS_PORT)")
	fs.IntVar(&cfg.ScrapeTimeout, "scrape-timeout", defaults.ScrapeTimeout, "Maximum time in seconds to wait for API responses (env: ENS_SCRAPE_TIMEOUT)")
	fs.StringVar(&pageTypes, "page-types", strings.Join(defaults.PageTypes, ","), "Comma separated page types to export (env: ENS_PAGE_TYPES)")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "Logging verbosity: debug, info, warn, error (env: ENS_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", defaults.LogFormat, "Log output format: text, json (env: ENS_LOG_FORMAT)")

	// Session token cache
	fs.StringVar(&cfg.CacheBackend, "cache-backend", defaults.CacheBackend, "Session token cache: memory, redis, none (env: ENS_CACHE_BACKEND)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", defaults.RedisAddr, "Redis address for the redis cache backend (env: ENS_REDIS_ADDR)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", defaults.RedisPassword, "Redis password (env: ENS_REDIS_PASSWORD)")
	fs.IntVar(&cfg.RedisDB, "redis-db", defaults.RedisDB, "Redis database number (env: ENS_REDIS_DB)")
	fs.StringVar(&cfg.CacheKeyPrefix, "cache-key-prefix", defaults.CacheKeyPrefix, "Prefix of the session token cache keys (env: ENS_CACHE_KEY_PREFIX)")

	// Circuit breaker
	fs.IntVar(&cfg.BreakerFailures, "breaker-failures", defaults.BreakerFailures, "Consecutive API failures before the circuit opens (env: ENS_BREAKER_FAILURES)")
	fs.IntVar(&cfg.BreakerTimeout, "breaker-timeout", defaults.BreakerTimeout, "Seconds the circuit stays open (env: ENS_BREAKER_TIMEOUT)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.PageTypes = splitList(pageTypes)

	return cfg, nil
}

// FromFileAndEnv returns the defaults overlaid with the YAML file at path and
// the ENS_* environment variables. An empty path falls back to ENS_CONFIG.
func FromFileAndEnv(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("ENS_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// findConfigPath looks for the -config flag ahead of the full parse, since
// the file provides the flag defaults
func findConfigPath(args []string) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// applyFile overlays the values set in a YAML file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.APIKey, fc.APIKey)
	setInt(&c.Port, fc.Port)
	setInt(&c.ScrapeTimeout, fc.ScrapeTimeout)
	if len(fc.PageTypes) > 0 {
		c.PageTypes = fc.PageTypes
	}
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.CacheBackend, fc.CacheBackend)
	setString(&c.CacheKeyPrefix, fc.CacheKeyPrefix)
	setString(&c.RedisAddr, fc.Redis.Addr)
	setString(&c.RedisPassword, fc.Redis.Password)
	setInt(&c.RedisDB, fc.Redis.DB)
	setInt(&c.BreakerFailures, fc.Breaker.Failures)
	setInt(&c.BreakerTimeout, fc.Breaker.Timeout)
	return nil
}

// applyEnv overlays the ENS_* environment variables that are set
func (c *Config) applyEnv() {
	setString(&c.BaseURL, os.Getenv("ENS_BASE_URL"))
	setString(&c.APIKey, os.Getenv("ENS_API_KEY"))
	c.Port = parseEnvInt(os.Getenv("ENS_PORT"), c.Port)
	c.ScrapeTimeout = parseEnvInt(os.Getenv("ENS_SCRAPE_TIMEOUT"), c.ScrapeTimeout)
	if v := os.Getenv("ENS_PAGE_TYPES"); v != "" {
		c.PageTypes = splitList(v)
	}
	setString(&c.LogLevel, os.Getenv("ENS_LOG_LEVEL"))
	setString(&c.LogFormat, os.Getenv("ENS_LOG_FORMAT"))
	setString(&c.CacheBackend, os.Getenv("ENS_CACHE_BACKEND"))
	setString(&c.RedisAddr, os.Getenv("ENS_REDIS_ADDR"))
	setString(&c.RedisPassword, os.Getenv("ENS_REDIS_PASSWORD"))
	c.RedisDB = parseEnvInt(os.Getenv("ENS_REDIS_DB"), c.RedisDB)
	setString(&c.CacheKeyPrefix, os.Getenv("ENS_CACHE_KEY_PREFIX"))
	c.BreakerFailures = parseEnvInt(os.Getenv("ENS_BREAKER_FAILURES"), c.BreakerFailures)
	c.BreakerTimeout = parseEnvInt(os.Getenv("ENS_BREAKER_TIMEOUT"), c.BreakerTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseEnvInt parses an environment variable as an integer, returning default if invalid
func parseEnvInt(envValue string, defaultValue int) int {
	if envValue == "" {
		return defaultValue
	}
	var result int
	_, err := fmt.Sscanf(envValue, "%d", &result)
	if err != nil {
		return defaultValue
	}
	return result
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required (use -api-key flag or ENS_API_KEY env var)")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base-url is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}

	if c.ScrapeTimeout < 1 {
		return fmt.Errorf("invalid scrape-timeout: %d (must be at least 1 second)", c.ScrapeTimeout)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log-level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format: %s (must be one of: text, json)", c.LogFormat)
	}

	if len(c.PageTypes) == 0 {
		return fmt.Errorf("page-types must name at least one page type")
	}
	if _, err := c.ParsedPageTypes(); err != nil {
		return err
	}

	switch c.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis-addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("invalid cache-backend: %s (must be one of: memory, redis, none)", c.CacheBackend)
	}

	if c.BreakerFailures < 1 {
		return fmt.Errorf("invalid breaker-failures: %d (must be at least 1)", c.BreakerFailures)
	}
	if c.BreakerTimeout < 1 {
		return fmt.Errorf("invalid breaker-timeout: %d (must be at least 1 second)", c.BreakerTimeout)
	}

	return nil
}

// ParsedPageTypes returns the configured page types as ens.PageType values
func (c *Config) ParsedPageTypes() ([]ens.PageType, error) {
	types := make([]ens.PageType, 0, len(c.PageTypes))
	for _, s := range c.PageTypes {
		pageType, ok := ens.LookupPageType(s)
		if !ok {
			return nil, fmt.Errorf("invalid page type: %s", s)
		}
		types = append(types, pageType)
	}
	return types, nil
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL: %s, Port: %d, ScrapeTimeout: %ds, PageTypes: %s, LogLevel: %s, LogFormat: %s, CacheBackend: %s, CacheKeyPrefix: %s}",
		c.BaseURL, c.Port, c.ScrapeTimeout, strings.Join(c.PageTypes, ","), c.LogLevel, c.LogFormat, c.CacheBackend, c.CacheKeyPrefix)
}
