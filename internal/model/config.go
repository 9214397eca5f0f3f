package model

import "time"

// Config is the complete plancours configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Submission   SubmissionConfig   `yaml:"submission" mapstructure:"submission"`
	Forms        FormsConfig        `yaml:"forms" mapstructure:"forms"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

// LLMConfig configures remote evaluation.
// An empty APIKey selects heuristic-only mode.
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the verdict cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the submission backfill fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig paces remote evaluation calls
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// StoreConfig locates the document and blob stores
type StoreConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	BlobDir     string `yaml:"blob_dir" mapstructure:"blob_dir"`
	DatabaseURL string `yaml:"database_url,omitempty" mapstructure:"database_url"`
}

// SubmissionConfig holds submission rules
type SubmissionConfig struct {
	MinQuestions int `yaml:"min_questions" mapstructure:"min_questions"`
}

// FormsConfig holds form publication rules
type FormsConfig struct {
	MinQuestions int `yaml:"min_questions" mapstructure:"min_questions"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// RemoteConfigured reports whether remote evaluation is available
func (c LLMConfig) RemoteConfigured() bool {
	return c.APIKey != ""
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       DefaultRemoteModel,
			Timeout:     30 * time.Second,
			MaxTokens:   350,
			Temperature: 0.2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.plancours/cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Store: StoreConfig{
			Dir:     "~/.plancours/data",
			BlobDir: "~/.plancours/blobs",
		},
		Submission: SubmissionConfig{
			MinQuestions: 1,
		},
		Forms: FormsConfig{
			MinQuestions: 10,
		},
	}
}
