package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the service configuration, loaded from research.yaml with env
// overrides.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	Capabilities  CapabilitiesConfig  `mapstructure:"capabilities"`
	Research      ResearchConfig      `mapstructure:"research"`
	Streaming     StreamingConfig     `mapstructure:"streaming"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServiceConfig struct {
	AdminPort    int    `mapstructure:"admin_port"`
	TemporalHost string `mapstructure:"temporal_host"`
	TaskQueue    string `mapstructure:"task_queue"`
}

type CapabilitiesConfig struct {
	LLMServiceURL     string        `mapstructure:"llm_service_url"`
	SearchServiceURL  string        `mapstructure:"search_service_url"`
	DeliveryURL       string        `mapstructure:"delivery_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type ResearchConfig struct {
	// MaxConcurrentSearches gates search fan-out width (clamped 1..20).
	MaxConcurrentSearches int `mapstructure:"max_concurrent_searches"`
	// ClarificationTimeout bounds the wait for each answer signal.
	ClarificationTimeout time.Duration `mapstructure:"clarification_timeout"`
	// TraceURLTemplate, when set, is formatted with the trace ID for the
	// first progress message (e.g. an observability dashboard link).
	TraceURLTemplate string `mapstructure:"trace_url_template"`
}

type StreamingConfig struct {
	RingCapacity int           `mapstructure:"ring_capacity"`
	MirrorTTL    time.Duration `mapstructure:"mirror_ttl"`
	MirrorMaxLen int64         `mapstructure:"mirror_max_len"`
}

type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type ObservabilityConfig struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	LogLevel    string `mapstructure:"log_level"`
}

// Load reads configuration from CONFIG_PATH (default
// /app/config/research.yaml), applying defaults and env overrides. A missing
// file is not an error; defaults apply.
func Load() (*Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "/app/config/research.yaml"
	}
	return LoadFile(cfgPath)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(underlying(err)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnvOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func underlying(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok && u.Unwrap() != nil {
		return u.Unwrap()
	}
	return err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.admin_port", 8081)
	v.SetDefault("service.temporal_host", "temporal:7233")
	v.SetDefault("service.task_queue", "research-tasks")
	v.SetDefault("capabilities.llm_service_url", "http://llm-service:8000")
	v.SetDefault("capabilities.request_timeout", "60s")
	v.SetDefault("capabilities.requests_per_second", 0)
	v.SetDefault("research.max_concurrent_searches", 5)
	v.SetDefault("research.clarification_timeout", "5m")
	v.SetDefault("streaming.ring_capacity", 256)
	v.SetDefault("streaming.mirror_ttl", "1h")
	v.SetDefault("streaming.mirror_max_len", 512)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("tracing.service_name", "research-orchestrator")
	v.SetDefault("observability.metrics_port", 2112)
	v.SetDefault("observability.log_level", "info")
}

func applyEnvOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"service.temporal_host":           "TEMPORAL_HOST",
		"service.task_queue":              "TASK_QUEUE",
		"capabilities.llm_service_url":    "LLM_SERVICE_URL",
		"capabilities.search_service_url": "SEARCH_SERVICE_URL",
		"capabilities.delivery_url":       "DELIVERY_URL",
		"redis.addr":                      "REDIS_ADDR",
		"observability.log_level":         "LOG_LEVEL",
	}
	for key, env := range overrides {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}
}
