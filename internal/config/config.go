package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Model     ModelConfig     `mapstructure:"model"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Preload bool   `mapstructure:"preload"` // load snapshot and model before serving
}

// DataConfig describes where the feature snapshot lives
type DataConfig struct {
	Snapshot string `mapstructure:"snapshot"` // *.parquet, *.db, sqlite://..., postgres://...
	Region   string `mapstructure:"region"`
}

// ModelConfig points at the serialized risk model
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig configures the chat-completion endpoint
type LLMConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Token       string        `mapstructure:"token"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	TopP        float32       `mapstructure:"top_p"`
}

// AuthConfig enables bearer auth on the chatbot routes when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	MaxItems  int           `mapstructure:"max_items"`
	RedisAddr string        `mapstructure:"redis_addr"` // empty disables the L2 tier
}

// RateLimitConfig bounds chatbot requests per client
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig configures slog
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// TracingConfig toggles otel tracing
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const envPrefix = "RISKDASH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.preload", true)

	v.SetDefault("data.snapshot", "./data/processed/features.parquet")
	v.SetDefault("data.region", "SANTANDER")

	v.SetDefault("model.path", "./models/risk_model.json.gz")

	v.SetDefault("llm.endpoint", "https://models.inference.ai.azure.com")
	v.SetDefault("llm.token", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 1.0)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("cache.redis_addr", "")

	v.SetDefault("ratelimit.requests", 30)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
}

// Load 加载配置
//
// Precedence: environment (RISKDASH_*, plus .env) > config file > defaults.
// configFile may be empty, in which case config.yaml is searched in . and ./config.
func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names
	_ = v.BindEnv("llm.token", envPrefix+"_LLM_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("llm.model", envPrefix+"_LLM_MODEL", "MODEL_NAME")
	_ = v.BindEnv("llm.endpoint", envPrefix+"_LLM_ENDPOINT", "OPENAI_EMBEDDINGS_URL")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if !strings.HasPrefix(cfg.Server.Port, ":") && !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() error {
	if c.Data.Snapshot == "" {
		return &ConfigError{Field: "data.snapshot", Message: "must not be empty"}
	}
	if c.Data.Region == "" {
		return &ConfigError{Field: "data.region", Message: "must not be empty"}
	}
	if c.Model.Path == "" {
		return &ConfigError{Field: "model.path", Message: "must not be empty"}
	}
	if c.LLM.Timeout <= 0 {
		return &ConfigError{Field: "llm.timeout", Message: "must be positive"}
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return &ConfigError{Field: "ratelimit", Message: "requests and window must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
