package tagdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverFile   = "file"
	driverBolt   = "bolt"
	driverRedis  = "redis"
	driverValkey = "valkey"
)

type clientConfig struct {
	driver    string
	addrs     []string
	password  string
	path      string
	keyPrefix string

	readinessTimeout time.Duration
	defaultK         int
	maxK             int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithFile stores records in a JSON array file.
func WithFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverFile
		c.path = path
	})
}

// WithBolt stores records in a bbolt database file.
func WithBolt(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverBolt
		c.path = path
	})
}

// WithRedis stores records in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey stores records in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces keys in Redis and Valkey. Default: "tagdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the initial connection wait. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithSearchLimits sets the default and maximum number of search hits.
// Defaults: 10 and 100.
func WithSearchLimits(defaultK, maxK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = defaultK
		c.maxK = maxK
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
