package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Generate  GenerateConfig  `yaml:"generate" mapstructure:"generate"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AnthropicConfig holds the external generation service settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GenerateConfig configures the recommendation generation path.
type GenerateConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens   int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Timeout returns the external call deadline as a duration.
func (g GenerateConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// AuthConfig configures sessions and login throttling.
type AuthConfig struct {
	SessionTTLHours int     `yaml:"session_ttl_hours" mapstructure:"session_ttl_hours"`
	LoginRatePerMin int     `yaml:"login_rate_per_min" mapstructure:"login_rate_per_min"`
	LoginBurst      int     `yaml:"login_burst" mapstructure:"login_burst"`
}

// SessionTTL returns the session lifetime as a duration.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "automation_advisor.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("generate.timeout_secs", 120)
	v.SetDefault("generate.max_tokens", 4096)
	v.SetDefault("auth.session_ttl_hours", 24)
	v.SetDefault("auth.login_rate_per_min", 10)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
