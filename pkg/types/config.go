package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source adapters.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with upstream requests
	// (e.g. "research-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetryConfig bounds the retries around each upstream call.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// BaseDelay is the first backoff delay; it doubles on every retry (default 2s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
}

// ArxivConfig holds settings for the arXiv adapter.
type ArxivConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the Atom query endpoint (default https://export.arxiv.org/api/query).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxResults caps the page size (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// GitHubConfig holds settings for the GitHub adapter.
type GitHubConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL overrides the REST API root (default https://api.github.com/).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxResults caps the page size (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Token is an optional access token for higher rate limits.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// RatePerSecond throttles search requests (default 0.5).
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// SourcesConfig groups all upstream settings.
type SourcesConfig struct {
	HTTP   HTTPConfig   `json:"http" yaml:"http" mapstructure:"http"`
	Retry  RetryConfig  `json:"retry" yaml:"retry" mapstructure:"retry"`
	Arxiv  ArxivConfig  `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	GitHub GitHubConfig `json:"github" yaml:"github" mapstructure:"github"`
}

// StoreDriver selects the persistence backend.
type StoreDriver string

const (
	DriverSQLite   StoreDriver = "sqlite"
	DriverPostgres StoreDriver = "postgres"
)

// StoreConfig holds settings for the persistence backend.
type StoreConfig struct {
	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Path is the SQLite database file (default data/research.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// DSN is the Postgres connection string.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" (production) or "console" (development).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`
}

// Config groups every setting of the application.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Sources SourcesConfig `json:"sources" yaml:"sources" mapstructure:"sources"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}
