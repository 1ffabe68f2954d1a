package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	CatalogSourceDatabase = "database"
	CatalogSourceAPI      = "api"
)

// Config holds all configuration for the application
type Config struct {
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Sitemap    SitemapConfig    `mapstructure:"sitemap"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Features   []string         `mapstructure:"features"`
}

// StorefrontConfig describes the public storefront the sitemap is built for
type StorefrontConfig struct {
	Host      string `mapstructure:"host"`
	Protocol  string `mapstructure:"protocol"`
	Port      int    `mapstructure:"port"`
	MountPath string `mapstructure:"mount_path"`
}

// SitemapConfig holds generation settings
type SitemapConfig struct {
	Sections   []string `mapstructure:"sections"`
	MaxWorkers int      `mapstructure:"max_workers"`
	ChangeFreq string   `mapstructure:"changefreq"`
}

// CatalogConfig selects where catalog records come from
type CatalogConfig struct {
	Source string    `mapstructure:"source"`
	API    APIConfig `mapstructure:"api"`
}

// APIConfig holds Solidus API client configuration
type APIConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Token                string   `mapstructure:"token"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	PerPage              int      `mapstructure:"per_page"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	PagesIndex           string   `mapstructure:"pages_index"`
	PageLinkSelector     string   `mapstructure:"page_link_selector"`
	Proxies              []string `mapstructure:"proxies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
}

// LogConfig holds logger settings; File enables a rotated log file
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceDatabase, CatalogSourceAPI:
	default:
		return fmt.Errorf("invalid catalog.source %q: expected %q or %q",
			c.Catalog.Source, CatalogSourceDatabase, CatalogSourceAPI)
	}

	if c.Storefront.Host == "" {
		return fmt.Errorf("storefront.host is required")
	}
	if c.Sitemap.MaxWorkers < 1 {
		return fmt.Errorf("sitemap.max_workers must be positive, got %d", c.Sitemap.MaxWorkers)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storefront.host", "localhost")
	v.SetDefault("storefront.protocol", "http")
	v.SetDefault("storefront.port", 0)
	v.SetDefault("storefront.mount_path", "")

	v.SetDefault("sitemap.sections", []string{})
	v.SetDefault("sitemap.max_workers", 2)
	v.SetDefault("sitemap.changefreq", "")

	v.SetDefault("catalog.source", CatalogSourceDatabase)
	v.SetDefault("catalog.api.base_url", "http://localhost:3000")
	v.SetDefault("catalog.api.token", "")
	v.SetDefault("catalog.api.timeout", 30)
	v.SetDefault("catalog.api.max_retries", 3)
	v.SetDefault("catalog.api.per_page", 100)
	v.SetDefault("catalog.api.max_requests_per_second", 10)
	v.SetDefault("catalog.api.pages_index", "/")
	v.SetDefault("catalog.api.page_link_selector", "a[href^='/pages/']")
	v.SetDefault("catalog.api.proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "solidus_development")
	v.SetDefault("database.user", "solidus")
	v.SetDefault("database.password", "solidus")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "sitemap_consumer")
	v.SetDefault("redis.min_idle_time", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("features", []string{})
}
