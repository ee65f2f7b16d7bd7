package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
	Env        string `mapstructure:"env"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type RateLimitConfig struct {
	AuthPerMinute  int `mapstructure:"auth_per_minute"`
	WritePerMinute int `mapstructure:"write_per_minute"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Load reads configuration from the given yaml file (default "config.yaml"
// in the working directory) with environment overrides, e.g.
// AWAKE_DATABASE_URL, AWAKE_JWT_SECRET, AWAKE_SERVER_PORT.
// A missing config file is fine as long as the environment carries the
// required values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("AWAKE")
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "AWAKE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", "AWAKE_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "AWAKE_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.cors_origin", "AWAKE_CORS_ORIGIN", "CORS_ORIGIN")
	_ = v.BindEnv("server.env", "AWAKE_ENV", "ENV")
	_ = v.BindEnv("admin.api_key", "AWAKE_ADMIN_API_KEY", "ADMIN_API_KEY")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("rate_limit.auth_per_minute", 10)
	v.SetDefault("rate_limit.write_per_minute", 60)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Database.URL == "" {
		return nil, errors.New("database url is not set")
	}
	if c.JWT.Secret == "" {
		return nil, errors.New("jwt secret is not set")
	}

	return &c, nil
}
