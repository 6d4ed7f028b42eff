// Package config loads scholar-fetch settings from defaults, an optional
// config file, a .env file, SCHOLAR_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	scholar "github.com/compscidr/scholar-snapshot"
)

const envPrefix = "SCHOLAR"

// Config captures every knob of a run.
type Config struct {
	Scholar   ScholarConfig   `mapstructure:"scholar"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Output    OutputConfig    `mapstructure:"output"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ScholarConfig selects the profile to fetch.
type ScholarConfig struct {
	UserID  string `mapstructure:"user_id"`
	BaseURL string `mapstructure:"base_url"`
}

// HTTPConfig sets the request headers and client timeout. A zero timeout
// disables it.
type HTTPConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

type DetectorConfig struct {
	Markers []string `mapstructure:"markers"`
}

type ChartConfig struct {
	Marker string `mapstructure:"marker"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// TelemetryConfig points at a node_exporter textfile; empty disables it.
type TelemetryConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"user":             "scholar.user_id",
	"base-url":         "scholar.base_url",
	"output":           "output.path",
	"timeout":          "http.timeout",
	"metrics-textfile": "telemetry.textfile",
	"dev":              "logging.development",
}

// RegisterFlags defines the flags Load understands. Defaults live in Load so
// an unset flag never shadows the environment or config file.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("user", "", "Google Scholar user id (default "+scholar.DefaultUser+")")
	flags.String("base-url", "", "Google Scholar base url")
	flags.String("output", "", "snapshot path (default "+scholar.DefaultOutputPath+")")
	flags.Duration("timeout", 0, "HTTP timeout, 0 disables (default 30s)")
	flags.String("metrics-textfile", "", "write run statistics to this node_exporter textfile")
	flags.Bool("dev", false, "console logging instead of JSON (default true)")
}

// Load builds a Config. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := v.BindEnv("scholar.user_id", "SCHOLAR_USER_ID", "SCHOLAR_SCHOLAR_USER_ID"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scholar.user_id", scholar.DefaultUser)
	v.SetDefault("scholar.base_url", scholar.BaseURL)
	v.SetDefault("http.user_agent", scholar.AGENT)
	v.SetDefault("http.accept_language", scholar.AcceptLanguage)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("output.path", scholar.DefaultOutputPath)
	v.SetDefault("detector.markers", scholar.DefaultBlockMarkers)
	v.SetDefault("chart.marker", scholar.DefaultChartMarker)
	v.SetDefault("logging.development", true)
	v.SetDefault("telemetry.textfile", "")
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Scholar.UserID) == "" {
		return fmt.Errorf("scholar.user_id must be set")
	}
	if c.Scholar.BaseURL == "" {
		return fmt.Errorf("scholar.base_url must be set")
	}
	u, err := url.Parse(c.Scholar.BaseURL)
	if err != nil {
		return fmt.Errorf("scholar.base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("scholar.base_url must be an absolute url, got %q", c.Scholar.BaseURL)
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	return nil
}
