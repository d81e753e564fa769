package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/spf13/viper"
)

// Config holds all planner tool configuration
type Config struct {
	Planner rrt.Config    `mapstructure:"planner"`
	Log     LogConfig     `mapstructure:"log"`
	PostGIS PostGISConfig `mapstructure:"postgis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables a rotating log file in addition to stderr
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type PostGISConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ListenAddr returns override when set, otherwise the configured address.
// An empty result means metrics are not served.
func (m MetricsConfig) ListenAddr(override string) string {
	if override != "" {
		return override
	}
	return m.Addr
}

// Load reads configuration from defaults, an optional planner.yaml and
// RRTPLAN_* environment variables, in increasing priority. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := rrt.DefaultConfig()
	v.SetDefault("planner.goal_bias", defaults.GoalBias)
	v.SetDefault("planner.branch_length", defaults.BranchLength)
	v.SetDefault("planner.space.front_angle", defaults.Space.FrontAngle)
	v.SetDefault("planner.space.front_scale", defaults.Space.FrontScale)
	v.SetDefault("planner.space.rear_divisor", defaults.Space.RearDivisor)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 32)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("postgis.host", "localhost")
	v.SetDefault("postgis.port", 5432)
	v.SetDefault("postgis.user", "postgres")
	v.SetDefault("postgis.password", "")
	v.SetDefault("postgis.database", "obstacles")
	v.SetDefault("metrics.addr", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("planner")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// RRTPLAN_PLANNER_BRANCH_LENGTH -> planner.branch_length
	v.SetEnvPrefix("RRTPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every section is usable, reporting all problems at once
func (c *Config) Validate() error {
	var errs []string

	if err := c.Planner.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.PostGIS.Port <= 0 || c.PostGIS.Port > 65535 {
		errs = append(errs, fmt.Sprintf("postgis.port must be 1-65535, got %d", c.PostGIS.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
