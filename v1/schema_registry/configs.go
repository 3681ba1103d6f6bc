package schema_registry

import (
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryMax is the number of retries after the first attempt for
	// connection errors and 5xx/429 responses.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin and DefaultRetryWaitMax bound the exponential backoff.
	DefaultRetryWaitMin = 100 * time.Millisecond
	DefaultRetryWaitMax = 2 * time.Second
)

// Config holds configuration for the schema registry client.
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL"`

	// Username for basic auth (optional)
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USER"`

	// Password for basic auth (optional)
	Password string `yaml:"password" envconfig:"SCHEMA_REGISTRY_PASSWORD"`

	// Timeout for a single HTTP attempt.
	//
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT"`

	// RetryMax is the number of retries for retryable failures.
	// Set to -1 to disable retries.
	//
	// Default: 3
	RetryMax int `yaml:"retry_max" envconfig:"SCHEMA_REGISTRY_RETRY_MAX"`

	// RetryWaitMin is the shortest wait between attempts.
	//
	// Default: 100ms
	RetryWaitMin time.Duration `yaml:"retry_wait_min" envconfig:"SCHEMA_REGISTRY_RETRY_WAIT_MIN"`

	// RetryWaitMax is the longest wait between attempts.
	//
	// Default: 2s
	RetryWaitMax time.Duration `yaml:"retry_wait_max" envconfig:"SCHEMA_REGISTRY_RETRY_WAIT_MAX"`

	// Cache configures the schema cache the client creates when none is
	// injected. Ignored by NewClientWithCache.
	Cache schemacache.Config `yaml:"cache"`
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.RetryMax == 0:
		cfg.RetryMax = DefaultRetryMax
	case cfg.RetryMax < 0:
		cfg.RetryMax = 0
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = DefaultRetryWaitMin
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = DefaultRetryWaitMax
	}
	return cfg
}
