package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/facets/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "FACETS"

	cfgKeyDelimiter = "delimiter"
	cfgKeyArity     = "arity"
	cfgKeyWorkers   = "workers"
	cfgKeyLogLevel  = "log_level"
	cfgKeyDataDir   = "data_dir"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# facets configuration

# Field delimiter for delimited input (overridable by --delimiter)
delimiter: ","

# What to do with rows whose field count differs from the header:
# strict rejects the input, truncate cuts long rows, pad also fills short ones
arity: strict

# Inputs loaded concurrently
workers: 4

# trace, debug, info, warn or error (overridable by --log-level)
log_level: info

# Base directory for relative input paths (overridable by --data-dir)
# data_dir:
`

// loadConfig reads config.yaml from configDir into v. It creates the
// directory and a default config.yaml on first run. A missing config.yaml
// is not an error. FACETS_DELIMITER, FACETS_ARITY, FACETS_WORKERS and
// FACETS_LOG_LEVEL override the file.
func loadConfig(v *viper.Viper, configDir string) error {
	if err := ensureConfigDir(configDir); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v.SetDefault(cfgKeyDelimiter, def.Delimiter)
	v.SetDefault(cfgKeyArity, def.Arity)
	v.SetDefault(cfgKeyWorkers, def.Workers)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyDataDir, "")

	// data_dir is left to the paths precedence chain, so its env var is
	// not bound here.
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyDelimiter, cfgKeyArity, cfgKeyWorkers, cfgKeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// decodeConfig unmarshals and validates the settings held by v.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
