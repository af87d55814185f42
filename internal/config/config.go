// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanirs/rls-data/internal/crawl"
	"github.com/yanirs/rls-data/internal/survey"
)

// Config holds the full application configuration.
type Config struct {
	Download DownloadConfig `yaml:"download" mapstructure:"download"`
	Generate GenerateConfig `yaml:"generate" mapstructure:"generate"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Maps     MapsConfig     `yaml:"maps" mapstructure:"maps"`
	Serve    ServeConfig    `yaml:"serve" mapstructure:"serve"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DownloadConfig configures raw survey CSV downloads.
type DownloadConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GenerateConfig configures dataset generation thresholds.
type GenerateConfig struct {
	ExpectedSurveyFiles int    `yaml:"expected_survey_files" mapstructure:"expected_survey_files"`
	MinCrawlItems       int    `yaml:"min_crawl_items" mapstructure:"min_crawl_items"`
	MinSurveyRows       int    `yaml:"min_survey_rows" mapstructure:"min_survey_rows"`
	Program             string `yaml:"program" mapstructure:"program"`
}

// ScrapeConfig configures the species page scraper.
type ScrapeConfig struct {
	SitemapURL  string `yaml:"sitemap_url" mapstructure:"sitemap_url"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	CachePath   string `yaml:"cache_path" mapstructure:"cache_path"`
}

// MapsConfig configures distribution map rendering.
type MapsConfig struct {
	Width         int    `yaml:"width" mapstructure:"width"`
	Height        int    `yaml:"height" mapstructure:"height"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	LandShapefile string `yaml:"land_shapefile" mapstructure:"land_shapefile"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("RLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("download.base_url", survey.DefaultBaseURL)
	v.SetDefault("generate.expected_survey_files", len(survey.DataTypes))
	v.SetDefault("generate.min_crawl_items", 4900)
	v.SetDefault("generate.min_survey_rows", 810000)
	v.SetDefault("generate.program", "RLS")
	v.SetDefault("scrape.sitemap_url", crawl.DefaultSitemapURL)
	v.SetDefault("scrape.concurrency", 4)
	v.SetDefault("scrape.cache_path", "")
	v.SetDefault("maps.width", 400)
	v.SetDefault("maps.height", 320)
	v.SetDefault("maps.concurrency", 4)
	v.SetDefault("maps.land_shapefile", "")
	v.SetDefault("serve.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks the settings a command is about to rely on. Mode names
// match the CLI subcommands.
func (c *Config) Validate(mode string) error {
	var problems []string
	switch mode {
	case "download":
		if c.Download.BaseURL == "" {
			problems = append(problems, "download.base_url is required")
		}
	case "generate":
		if c.Generate.ExpectedSurveyFiles < 1 {
			problems = append(problems, "generate.expected_survey_files must be >= 1")
		}
		if c.Generate.MinCrawlItems < 0 || c.Generate.MinSurveyRows < 0 {
			problems = append(problems, "generate thresholds must be >= 0")
		}
		if c.Generate.Program == "" {
			problems = append(problems, "generate.program is required")
		}
	case "scrape":
		if c.Scrape.SitemapURL == "" {
			problems = append(problems, "scrape.sitemap_url is required")
		}
		if c.Scrape.Concurrency < 1 || c.Scrape.Concurrency > 32 {
			problems = append(problems, "scrape.concurrency must be between 1 and 32")
		}
	case "maps":
		if c.Maps.Width < 1 || c.Maps.Height < 1 {
			problems = append(problems, "maps.width and maps.height must be > 0")
		}
		if c.Maps.Concurrency < 1 || c.Maps.Concurrency > 32 {
			problems = append(problems, "maps.concurrency must be between 1 and 32")
		}
	case "serve":
		if c.Serve.Port < 1 || c.Serve.Port > 65535 {
			problems = append(problems, "serve.port must be between 1 and 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
