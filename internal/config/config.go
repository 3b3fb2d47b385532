package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverBolt   = "bolt"
)

// Upload drivers.
const (
	UploadsLocal = "local"
	UploadsMinio = "minio"
)

// Config holds the tagdex service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Uploads UploadsConfig `yaml:"uploads"`
	Tagging TaggingConfig `yaml:"tagging"`
	Search  SearchConfig  `yaml:"search"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty APIKeys disables auth.
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

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // file (default), redis, valkey, bolt
	Path             string   `yaml:"path"`   // file and bolt drivers
	Addrs            []string `yaml:"addrs"`  // redis and valkey drivers
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// UploadsConfig configures artifact storage for uploaded files.
type UploadsConfig struct {
	Driver      string      `yaml:"driver"` // local (default), minio
	Dir         string      `yaml:"dir"`
	FallbackDir string      `yaml:"fallback_dir"`
	MaxBytes    int64       `yaml:"max_bytes"`
	Minio       MinioConfig `yaml:"minio"`
}

// MinioConfig holds S3-compatible object store settings.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// TaggingConfig holds chat completion settings for AI proposals.
type TaggingConfig struct {
	APIKey          string       `yaml:"api_key"`
	BaseURL         string       `yaml:"base_url"`
	Model           string       `yaml:"model"`
	Temperature     *float32     `yaml:"temperature"`
	TimeoutSec      int          `yaml:"timeout_sec"`
	PreviewMaxBytes int64        `yaml:"preview_max_bytes"`
	PreviewMaxRunes int          `yaml:"preview_max_runes"`
	Budget          BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps tagging token usage. Zero limits mean unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // warn (default), reject
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// SearchConfig holds result and page size limits.
type SearchConfig struct {
	DefaultK        int `yaml:"default_k"`
	MaxK            int `yaml:"max_k"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Timeout returns the tagging request timeout.
func (t TaggingConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverBolt:
			c.Storage.Path = filepath.Join("data", "tagdex.db")
		default:
			c.Storage.Path = filepath.Join("data", "data.json")
		}
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "tagdex:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}

	if c.Uploads.Driver == "" {
		c.Uploads.Driver = UploadsLocal
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = filepath.Join("public", "uploads")
	}
	if c.Uploads.FallbackDir == "" {
		c.Uploads.FallbackDir = filepath.Join(os.TempDir(), "uploads")
	}
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = 32 << 20
	}

	if c.Tagging.Model == "" {
		c.Tagging.Model = "gpt-4o-mini"
	}
	if c.Tagging.Temperature == nil {
		t := float32(0.3)
		c.Tagging.Temperature = &t
	}
	if c.Tagging.TimeoutSec <= 0 {
		c.Tagging.TimeoutSec = 60
	}
	if c.Tagging.PreviewMaxBytes <= 0 {
		c.Tagging.PreviewMaxBytes = 512 << 10
	}
	if c.Tagging.PreviewMaxRunes <= 0 {
		c.Tagging.PreviewMaxRunes = 4000
	}
	if c.Tagging.Budget.Action == "" {
		c.Tagging.Budget.Action = "warn"
	}

	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 10
	}
	if c.Search.MaxK <= 0 {
		c.Search.MaxK = 100
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Storage.Driver {
	case DriverFile, DriverBolt:
	case DriverRedis, DriverValkey:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be one of file, redis, valkey, bolt; got %q", c.Storage.Driver)
	}

	switch c.Uploads.Driver {
	case UploadsLocal:
	case UploadsMinio:
		if c.Uploads.Minio.Endpoint == "" || c.Uploads.Minio.Bucket == "" {
			return fmt.Errorf("uploads.minio.endpoint and uploads.minio.bucket are required for driver %q", UploadsMinio)
		}
	default:
		return fmt.Errorf("uploads.driver must be \"local\" or \"minio\", got %q", c.Uploads.Driver)
	}

	if f := c.Logging.Format; f != "" && f != "json" && f != "console" {
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", f)
	}

	if t := c.Tagging.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("tagging.temperature must be between 0 and 2, got %v", *t)
	}
	if a := c.Tagging.Budget.Action; a != "warn" && a != "reject" {
		return fmt.Errorf("tagging.budget.action must be \"warn\" or \"reject\", got %q", a)
	}
	if c.Tagging.Budget.DailyTokenLimit < 0 || c.Tagging.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("tagging.budget limits must not be negative")
	}
	if c.Search.DefaultK > c.Search.MaxK {
		return fmt.Errorf("search.default_k (%d) exceeds search.max_k (%d)", c.Search.DefaultK, c.Search.MaxK)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
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
