package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pagemark service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Render   RenderConfig   `yaml:"render"`
	Storage  StorageConfig  `yaml:"storage"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	MaxUploadMB     int      `yaml:"max_upload_mb"`
}

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // sqlite (default: sqlite)
	Path             string `yaml:"path"`
	BusyTimeoutMS    int    `yaml:"busy_timeout_ms"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the page token cache settings.
type CacheConfig struct {
	Driver     string   `yaml:"driver"` // none, redis (default: none)
	Addrs      []string `yaml:"addrs"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	Standalone bool     `yaml:"standalone"` // skip cluster discovery
	TTLSec     int      `yaml:"ttl_sec"`
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	Scale          float64 `yaml:"scale"` // pixels per PDF point
	ThumbnailMaxPx int     `yaml:"thumbnail_max_px"`
}

// StorageConfig holds asset storage settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LookupConfig holds coordinate lookup settings.
type LookupConfig struct {
	DefaultTolerance *float64 `yaml:"default_tolerance"`
}

// Tolerance returns the configured default tolerance.
func (c LookupConfig) Tolerance() float64 {
	if c.DefaultTolerance == nil {
		return DefaultTolerance
	}
	return *c.DefaultTolerance
}

// DefaultTolerance is the lookup tolerance, in points, when none is configured.
const DefaultTolerance = 20.0

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 50
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join("data", "pagemark.db")
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = 5000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Render.Scale <= 0 {
		c.Render.Scale = 2.0
	}
	if c.Render.ThumbnailMaxPx <= 0 {
		c.Render.ThumbnailMaxPx = 500
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = filepath.Join("data", "assets")
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be \"sqlite\", got %q", c.Database.Driver)
	}
	switch c.Cache.Driver {
	case "none":
	case "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\" or \"redis\", got %q", c.Cache.Driver)
	}
	if t := c.Lookup.Tolerance(); t < 0 {
		return fmt.Errorf("lookup.default_tolerance must be >= 0, got %v", t)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
