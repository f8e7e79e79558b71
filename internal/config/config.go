// Package config loads farmcore settings from config.yaml and environment
// variables, writing a commented default file on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "FARMCORE"
)

// Config holds the resolved runtime settings.
type Config struct {
	Storage  StorageConfig `mapstructure:"storage"`
	Backup   BackupConfig  `mapstructure:"backup"`
	LogLevel string        `mapstructure:"log_level"`
}

// StorageConfig selects and parameterizes the persistence adapter.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	FilePath    string `mapstructure:"file_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// BackupConfig selects the snapshot archive backend.
type BackupConfig struct {
	Driver string `mapstructure:"driver"`
	FSRoot string `mapstructure:"fs_root"`
}

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# farmcore configuration

# Storage driver: file | memory | sqlite | postgres
storage:
  driver: file
  file_path: farmcore.json
  # sqlite_path: farmcore.db
  # postgres_dsn: postgres://localhost/farmcore?sslmode=disable

# Backup driver: fs | s3 | memory
backup:
  driver: fs
  fs_root: ./backupdata

# Log level: trace | debug | info | warn | error
log_level: info
`

// Load reads config.yaml from dir, creating the directory and a default
// file on first run. Environment variables with the FARMCORE_ prefix
// override file values (FARMCORE_STORAGE_DRIVER, FARMCORE_LOG_LEVEL, ...).
// A missing config.yaml is not an error.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	// Every key needs a default so env-only overrides bind during Unmarshal.
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file_path", "farmcore.json")
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("backup.driver", "fs")
	v.SetDefault("backup.fs_root", "./backupdata")
	v.SetDefault("log_level", "info")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func ensureDefaultConfigFile(dir string) error {
	path := filepath.Join(dir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}
