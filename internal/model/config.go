package model

import "time"

// Config is the complete claimgraph configuration
type Config struct {
	Metadata     MetadataConfig     `yaml:"metadata" mapstructure:"metadata"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Graph        GraphConfig        `yaml:"graph" mapstructure:"graph"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// MetadataConfig configures the bibliographic API client
type MetadataConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"` // 0 retries forever
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitingConfig bounds request rate per API host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig configures the API response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// GraphConfig controls node sizing and link widths
type GraphConfig struct {
	SizeMin        float64 `yaml:"size_min" mapstructure:"size_min"`
	SizeMax        float64 `yaml:"size_max" mapstructure:"size_max"`
	BaseSize       float64 `yaml:"base_size" mapstructure:"base_size"`
	BaseWidth      float64 `yaml:"base_width" mapstructure:"base_width"`
	UsePublishTime bool    `yaml:"use_publish_time" mapstructure:"use_publish_time"`
}

// StoreConfig configures optional graph export targets
type StoreConfig struct {
	Neo4jURI      string `yaml:"neo4j_uri,omitempty" mapstructure:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user,omitempty" mapstructure:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password,omitempty" mapstructure:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database,omitempty" mapstructure:"neo4j_database"`
}

// OutputConfig controls logging and run reporting
type OutputConfig struct {
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
	LogMode     string `yaml:"log_mode" mapstructure:"log_mode"`
	MetricsFile string `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Metadata: MetadataConfig{
			BaseURL:    "https://api.semanticscholar.org/graph/v1",
			Timeout:    30 * time.Second,
			UserAgent:  "claimgraph/0.1 (+https://github.com/ppiankov/claimgraph)",
			RetryDelay: 5 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".claimgraph-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Graph: GraphConfig{
			SizeMin:        0,
			SizeMax:        1,
			BaseSize:       0,
			BaseWidth:      1,
			UsePublishTime: true,
		},
		Output: OutputConfig{
			LogMode: "development",
		},
	}
}
