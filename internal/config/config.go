// Package config loads archivist settings from an optional TOML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bnema/archivist/internal/application"
)

const (
	KeyStorePackage = "store.package"
	KeyTempDir      = "temp.dir"
	KeyLogLevel     = "log.level"
	KeyOutputFormat = "output.format"

	configName = "config"
	configType = "toml"
	configDir  = ".config/archivist"
	envPrefix  = "ARCHIVIST"
)

type Config struct {
	// StorePackage overrides the re-activation store when non-empty.
	StorePackage string
	TempDir      string
	LogLevel     slog.Level
	OutputFormat application.OutputFormat
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyStorePackage, "")
	v.SetDefault(KeyTempDir, os.TempDir())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyOutputFormat, string(application.OutputFormatText))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds each config key to the flag of the given name. Keys whose
// flag is not part of flags are left unbound.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// ReadFile reads path, or the default location under the home directory when
// path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		StorePackage: strings.TrimSpace(v.GetString(KeyStorePackage)),
		TempDir:      v.GetString(KeyTempDir),
		OutputFormat: application.OutputFormat(strings.ToLower(v.GetString(KeyOutputFormat))),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", KeyLogLevel, err)
	}
	if !cfg.OutputFormat.Valid() {
		return Config{}, fmt.Errorf("unsupported %s %q (want text, json or yaml)", KeyOutputFormat, cfg.OutputFormat)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	return cfg, nil
}
