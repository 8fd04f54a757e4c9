package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Export struct {
	Dir         string `mapstructure:"dir"`
	MaxAgeHours int    `mapstructure:"max_age_hours"`
}

type Cache struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Export   Export   `mapstructure:"export"`
	Cache    Cache    `mapstructure:"cache"`
}

func (e Export) MaxAge() time.Duration {
	return time.Duration(e.MaxAgeHours) * time.Hour
}

func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load reads the YAML config file, falling back to defaults for anything not
// set.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "granafy-reports.db")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.max_age_hours", 24)
	v.SetDefault("cache.ttl_seconds", 600)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
