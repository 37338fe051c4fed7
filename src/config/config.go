// Package config resolves viewer and reader settings.
//
// Sources, lowest priority first:
//  1. built-in defaults
//  2. doggies.yaml in the working directory or $HOME/.config/doggies/ (or --config)
//  3. DOGGIES_* environment variables (e.g. DOGGIES_API_KEY, DOGGIES_LOG_LEVEL)
//  4. command line flags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/DoggiesWorld/src/dogapi"
	"github.com/iafilius/DoggiesWorld/src/store"
)

const (
	envPrefix       = "DOGGIES"
	defaultFileName = "doggies"
)

// Config holds every tunable.
type Config struct {
	APIURL           string        `mapstructure:"api_url" yaml:"api_url"`
	APIKey           string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	ImageURLTemplate string        `mapstructure:"image_url_template" yaml:"image_url_template"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	DBDSN            string        `mapstructure:"db_dsn" yaml:"db_dsn"`
	ChartPath        string        `mapstructure:"chart_path" yaml:"chart_path"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	MetricsAddr      string        `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
	PictureWidth     int           `mapstructure:"picture_width" yaml:"picture_width"`
	PictureMaxHeight int           `mapstructure:"picture_max_height" yaml:"picture_max_height"`
}

// DefaultConfig mirrors the fixed values the viewer has always used.
func DefaultConfig() *Config {
	return &Config{
		APIURL:           dogapi.DefaultBreedsURL,
		ImageURLTemplate: dogapi.DefaultImageTemplate,
		HTTPTimeout:      dogapi.DefaultTimeout,
		DBDSN:            store.DefaultDSN,
		ChartPath:        "dog_chart.png",
		LogLevel:         "info",
		PictureWidth:     370,
		PictureMaxHeight: 465,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("image_url_template", d.ImageURLTemplate)
	v.SetDefault("http_timeout", d.HTTPTimeout)
	v.SetDefault("db_dsn", d.DBDSN)
	v.SetDefault("chart_path", d.ChartPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("picture_width", d.PictureWidth)
	v.SetDefault("picture_max_height", d.PictureMaxHeight)
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "Path to a YAML config file")
	fs.String("api-url", d.APIURL, "Breed list endpoint")
	fs.String("api-key", "", "Optional x-api-key for the breed API")
	fs.Duration("http-timeout", d.HTTPTimeout, "Per-request timeout for breed list and photo downloads")
	fs.String("chart-path", d.ChartPath, "File the bar chart is written to and read back from")
	fs.String("log-level", d.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("metrics-addr", "", "If set, serve /metrics, /healthz and /api/averages on this address")
}

// Load resolves the configuration from defaults, file, environment and fs (fs may be nil).
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{
			"api_url":      "api-url",
			"api_key":      "api-key",
			"http_timeout": "http-timeout",
			"chart_path":   "chart-path",
			"log_level":    "log-level",
			"metrics_addr": "metrics-addr",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if path := explicitPath(fs); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "doggies"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func explicitPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	return os.Getenv(envPrefix + "_CONFIG")
}

// applyDefaults repairs values a config file may have zeroed.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = d.APIURL
	}
	if !strings.Contains(c.ImageURLTemplate, "%s") {
		c.ImageURLTemplate = d.ImageURLTemplate
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.DBDSN == "" {
		c.DBDSN = d.DBDSN
	}
	if c.ChartPath == "" {
		c.ChartPath = d.ChartPath
	}
	if c.PictureWidth <= 0 {
		c.PictureWidth = d.PictureWidth
	}
	if c.PictureMaxHeight <= 0 {
		c.PictureMaxHeight = d.PictureMaxHeight
	}
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
