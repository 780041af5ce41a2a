package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

// configName is the config file name without extension.
const configName = ".compatstats"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for compatstats settings.
const envPrefix = "COMPATSTATS"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// dotEnvFile holds local credentials such as publish keys.
const dotEnvFile = ".env"

// LoadConfig loads configuration from file, env vars, and defaults.
// A .env file in the working directory is loaded into the environment
// first. If configPath is non-empty, it is used as the explicit config file
// path. Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	envErr := godotenv.Load(dotEnvFile)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotEnvFile, envErr)
	}

	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	opts := compat.DefaultOptions()

	viperCfg.SetDefault("data.root", DefaultDataRoot)
	viperCfg.SetDefault("data.exclude_dirs", DefaultExcludeDirs())
	viperCfg.SetDefault("data.version_file", DefaultVersionFile)
	viperCfg.SetDefault("data.schema", "")

	viperCfg.SetDefault("platforms.tracked", opts.TrackedPlatforms)
	viperCfg.SetDefault("platforms.clay_name", opts.ClayName)
	viperCfg.SetDefault("platforms.clay_sub_platforms", opts.ClaySubPlatforms)

	viperCfg.SetDefault("stats.recent_versions", opts.RecentVersions)
	viperCfg.SetDefault("stats.max_recent_apis", DefaultMaxRecentAPIs)
	viperCfg.SetDefault("stats.timeline_window", DefaultTimelineWindow)
	viperCfg.SetDefault("stats.shared_threshold", DefaultSharedThreshold)

	viperCfg.SetDefault("categories", categoryDefaults())

	viperCfg.SetDefault("output.path", DefaultOutputPath)
	viperCfg.SetDefault("output.indent", DefaultOutputIndent)
	viperCfg.SetDefault("output.compress", DefaultOutputCompress)
	viperCfg.SetDefault("output.plot", "")
	viperCfg.SetDefault("output.theme", DefaultOutputTheme)

	viperCfg.SetDefault("history.enabled", DefaultHistoryEnabled)
	viperCfg.SetDefault("history.path", DefaultHistoryPath)

	viperCfg.SetDefault("publish.enabled", false)
	viperCfg.SetDefault("publish.endpoint", "")
	viperCfg.SetDefault("publish.bucket", "")
	viperCfg.SetDefault("publish.prefix", DefaultPublishPrefix)
	viperCfg.SetDefault("publish.region", DefaultPublishRegion)
	viperCfg.SetDefault("publish.access_key", "")
	viperCfg.SetDefault("publish.secret_key", "")
	viperCfg.SetDefault("publish.use_ssl", DefaultPublishUseSSL)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)
}

// categoryDefaults renders DefaultCategories as plain maps for viper.
func categoryDefaults() []map[string]any {
	cats := DefaultCategories()
	out := make([]map[string]any, 0, len(cats))

	for _, cat := range cats {
		out = append(out, map[string]any{
			"path":         cat.Path,
			"display_name": cat.DisplayName,
			"doc_prefix":   cat.DocPrefix,
		})
	}

	return out
}
