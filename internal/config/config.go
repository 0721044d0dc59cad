// Package config loads application configuration from file and environment
// and initializes the global logger. Defaults are explicit here and
// threaded to callers as a value, never read as ambient state.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Convert ConvertConfig `yaml:"convert" mapstructure:"convert"`
	Ogre    OgreConfig    `yaml:"ogre" mapstructure:"ogre"`
	Gist    GistConfig    `yaml:"gist" mapstructure:"gist"`
	Topo    TopoConfig    `yaml:"topo" mapstructure:"topo"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ConvertConfig configures the conversion pipeline.
type ConvertConfig struct {
	Method      string `yaml:"method" mapstructure:"method"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// OgreConfig holds the web conversion service settings.
type OgreConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GistConfig holds gist publishing credentials.
type GistConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// TopoConfig names the external topology tools.
type TopoConfig struct {
	Geo2TopoPath string `yaml:"geo2topo_path" mapstructure:"geo2topo_path"`
	Topo2GeoPath string `yaml:"topo2geo_path" mapstructure:"topo2geo_path"`
}

// FetchConfig configures the HTTP/FTP fetcher.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServeConfig configures the map preview server.
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
	v.SetEnvPrefix("GEOCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("convert.method", "local")
	v.SetDefault("convert.concurrency", 4)
	v.SetDefault("ogre.base_url", "https://ogre.adc4gis.com")
	v.SetDefault("gist.base_url", "https://api.github.com")
	v.SetDefault("topo.geo2topo_path", "geo2topo")
	v.SetDefault("topo.topo2geo_path", "topo2geo")
	v.SetDefault("fetch.user_agent", "geoconv/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("serve.port", 8080)
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
