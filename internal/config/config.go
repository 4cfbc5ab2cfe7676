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

// Config holds the property search service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Auth     AuthConfig     `yaml:"auth"`
	Sync     SyncConfig     `yaml:"sync"`
	Queue    QueueConfig    `yaml:"queue"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds index store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SourceConfig holds property source settings.
type SourceConfig struct {
	Driver     string `yaml:"driver"` // http, memory (default: memory)
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SyncConfig holds reindex schedule settings. Intervals are in seconds.
type SyncConfig struct {
	FullIntervalSec        int `yaml:"full_interval_sec"`
	IncrementalIntervalSec int `yaml:"incremental_interval_sec"`
	VastuIntervalSec       int `yaml:"vastu_interval_sec"`
	ReportsIntervalSec     int `yaml:"reports_interval_sec"`
	EngagementIntervalSec  int `yaml:"engagement_interval_sec"`
	BatchSize              int `yaml:"batch_size"`
	InterBatchDelayMs      int `yaml:"inter_batch_delay_ms"`
	SafetyBufferSec        int `yaml:"safety_buffer_sec"`
	ReportLookaheadHours   int `yaml:"report_lookahead_hours"`

	// FullOnStart runs a full reindex immediately on startup instead of
	// waiting out the first full interval. Useful for fresh deployments
	// that would otherwise serve an empty index.
	FullOnStart bool `yaml:"full_on_start"`
}

// QueueConfig holds indexing work queue settings.
type QueueConfig struct {
	Workers       int `yaml:"workers"`
	MaxAttempts   int `yaml:"max_attempts"`
	BaseBackoffMs int `yaml:"base_backoff_ms"`
}

// SearchConfig holds query engine settings.
type SearchConfig struct {
	DefaultLimit         int       `yaml:"default_limit"`
	MaxLimit             int       `yaml:"max_limit"`
	DefaultRadiusMeters  float64   `yaml:"default_radius_meters"`
	CacheTTLSec          int       `yaml:"cache_ttl_sec"`
	CacheSize            int       `yaml:"cache_size"`
	PartialUpdateRetries int       `yaml:"partial_update_retries"`
	PriceBuckets         []float64 `yaml:"price_buckets"` // ascending bucket edges
	VastuBuckets         []float64 `yaml:"vastu_buckets"` // ascending bucket edges
}

// StorageConfig holds key naming settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Source.Driver == "" {
		c.Source.Driver = "memory"
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 10
	}
	if c.Sync.FullIntervalSec <= 0 {
		c.Sync.FullIntervalSec = 7 * 24 * 3600
	}
	if c.Sync.IncrementalIntervalSec <= 0 {
		c.Sync.IncrementalIntervalSec = 3600
	}
	if c.Sync.VastuIntervalSec <= 0 {
		c.Sync.VastuIntervalSec = 1800
	}
	if c.Sync.ReportsIntervalSec <= 0 {
		c.Sync.ReportsIntervalSec = 24 * 3600
	}
	if c.Sync.EngagementIntervalSec <= 0 {
		c.Sync.EngagementIntervalSec = 300
	}
	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = 1000
	}
	if c.Sync.InterBatchDelayMs <= 0 {
		c.Sync.InterBatchDelayMs = 200
	}
	if c.Sync.SafetyBufferSec <= 0 {
		c.Sync.SafetyBufferSec = 300
	}
	if c.Sync.ReportLookaheadHours <= 0 {
		c.Sync.ReportLookaheadHours = 48
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = 4
	}
	if c.Queue.MaxAttempts <= 0 {
		c.Queue.MaxAttempts = 5
	}
	if c.Queue.BaseBackoffMs <= 0 {
		c.Queue.BaseBackoffMs = 500
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.DefaultRadiusMeters <= 0 {
		c.Search.DefaultRadiusMeters = 10_000
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 60
	}
	if c.Search.CacheSize <= 0 {
		c.Search.CacheSize = 4096
	}
	if c.Search.PartialUpdateRetries <= 0 {
		c.Search.PartialUpdateRetries = 3
	}
	if len(c.Search.PriceBuckets) == 0 {
		c.Search.PriceBuckets = []float64{250_000, 500_000, 750_000, 1_000_000, 2_000_000}
	}
	if len(c.Search.VastuBuckets) == 0 {
		c.Search.VastuBuckets = []float64{25, 50, 75, 90}
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "propsearch:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Database.Driver == "redis" && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for the redis driver")
	}
	switch c.Source.Driver {
	case "http":
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for the http driver")
		}
	case "memory":
	default:
		return fmt.Errorf("source.driver must be \"http\" or \"memory\", got %q", c.Source.Driver)
	}
	if err := validateBucketEdges("search.price_buckets", c.Search.PriceBuckets); err != nil {
		return err
	}
	if err := validateBucketEdges("search.vastu_buckets", c.Search.VastuBuckets); err != nil {
		return err
	}
	return nil
}

func validateBucketEdges(name string, edges []float64) error {
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("%s must be strictly ascending, got %v", name, edges)
		}
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
