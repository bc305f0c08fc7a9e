package model

import "time"

// Config is the complete textsense configuration
type Config struct {
	Backend    BackendConfig `yaml:"backend" mapstructure:"backend"`
	Cache      CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Gateway    GatewayConfig `yaml:"gateway" mapstructure:"gateway"`
	Detect     DetectConfig  `yaml:"detect" mapstructure:"detect"`
	Thresholds Thresholds    `yaml:"thresholds" mapstructure:"thresholds"`
	History    HistoryConfig `yaml:"history" mapstructure:"history"`
	Server     ServerConfig  `yaml:"server" mapstructure:"server"`
	Log        LogConfig     `yaml:"log" mapstructure:"log"`
	HTTP       HTTPConfig    `yaml:"http" mapstructure:"http"`
}

// BackendConfig selects and configures the inference backend
type BackendConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // tei, openai, stub
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model             string        `yaml:"model,omitempty" mapstructure:"model"` // Judge model for openai
	ModelID           string        `yaml:"model_id" mapstructure:"model_id"`
	HumanLabel        string        `yaml:"human_label" mapstructure:"human_label"`
	AILabel           string        `yaml:"ai_label" mapstructure:"ai_label"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures result memoization
type CacheConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"` // lru, layered, redis, none
	MaxEntries    int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// GatewayConfig configures the model gateway
type GatewayConfig struct {
	MaxTokens    int `yaml:"max_tokens" mapstructure:"max_tokens"`
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// DetectConfig holds defaults for the detection pipeline
type DetectConfig struct {
	MaxWords int    `yaml:"max_words" mapstructure:"max_words"`
	MinChars int    `yaml:"min_chars" mapstructure:"min_chars"`
	Mode     string `yaml:"mode" mapstructure:"mode"`
}

// HistoryConfig configures the detection history store
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Empty disables history
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// HTTPConfig configures URL input fetching
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes" mapstructure:"max_bytes"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// Word cap bounds accepted by the detection pipeline
const (
	MinMaxWords     = 100
	MaxMaxWords     = 2000
	DefaultMaxWords = 800
	DefaultMinChars = 10
	// DefaultMaxTokens is both the courtesy word cap and the tokenizer hard cap
	DefaultMaxTokens = 512
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Provider:          "tei",
			BaseURL:           "http://localhost:8080",
			ModelID:           DefaultModelID,
			HumanLabel:        "Human",
			AILabel:           "ChatGPT",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Cache: CacheConfig{
			Backend:    "lru",
			MaxEntries: 1024,
			TTL:        0,
			Dir:        "",
			RedisAddr:  "localhost:6379",
		},
		Gateway: GatewayConfig{
			MaxTokens:    DefaultMaxTokens,
			BatchWorkers: 1,
		},
		Detect: DetectConfig{
			MaxWords: DefaultMaxWords,
			MinChars: DefaultMinChars,
			Mode:     string(ModeFast),
		},
		Thresholds: DefaultThresholds(),
		Server: ServerConfig{
			Addr: ":8090",
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			UserAgent: "textsense/0.1 (+https://github.com/ppiankov/textsense)",
			Timeout:   30 * time.Second,
			MaxBytes:  2_000_000,
		},
	}
}
