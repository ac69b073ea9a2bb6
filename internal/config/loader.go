package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/backrot/backrot/internal/core/rotate"
	"github.com/backrot/backrot/internal/domain"
	"github.com/backrot/backrot/internal/scheduler"
)

// DefaultConfigPaths returns the default paths to search for backrot.yaml
func DefaultConfigPaths() []string {
	paths := []string{"."}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "backrot"))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "backrot"))
	}

	return paths
}

// setDefaults seeds every key. The defaults alone reproduce the stock
// rotation behavior, so running without a config file needs nothing else.
func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("strict_exit", false)

	v.SetDefault("thresholds.daily", rotate.DefaultDailyMinAge)
	v.SetDefault("thresholds.weekly", rotate.DefaultWeeklyMinAge)
	v.SetDefault("thresholds.monthly", rotate.DefaultMonthlyMinAge)
	v.SetDefault("thresholds.quarantine", rotate.DefaultReapMinAge)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("lock.enabled", true)
	v.SetDefault("lock.dir", "")
	v.SetDefault("lock.stale_timeout", 30*time.Minute)

	v.SetDefault("state.enabled", true)
	v.SetDefault("state.dir", "")

	v.SetDefault("daemon.mode", scheduler.ModeInterval)
	v.SetDefault("daemon.interval", 24*time.Hour)
	v.SetDefault("daemon.schedule", "")
	v.SetDefault("daemon.debounce", 2*time.Second)
}

// Load reads and parses configuration. With an empty path the default
// locations are searched and a missing file is fine: the defaults stand on
// their own. An explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BACKROT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("backrot")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		_, searchMiss := err.(viper.ConfigFileNotFoundError)
		switch {
		case searchMiss && path == "":
			// No config anywhere: run on defaults.
		case searchMiss || os.IsNotExist(err):
			return nil, domain.ErrConfigNotFound
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
