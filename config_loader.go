package recordseal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfigFromFile reads a YAML configuration file. Keys missing from the
// file keep their DefaultConfig values.
//
// Example file:
//
//	source_dir: /srv/uploads
//	store: sqlite
//	db_path: /var/lib/recordseal/records.db
//	persist_key: true
func LoadConfigFromFile(path string) (Config, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, path, err)
	}
	return cfg, nil
}

func readConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to read config file: %w", ErrInvalidConfiguration, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse config file %s: %w", ErrInvalidConfiguration, path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
func SaveConfig(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadConfigFromEnvironment builds a Config from RECORDSEAL_* variables.
//
// When RECORDSEAL_CONFIG names a file it is loaded first and the remaining
// variables override it. Unset variables keep their defaults.
//
//	export RECORDSEAL_SOURCE_DIR=/srv/uploads
//	export RECORDSEAL_PERSIST_KEY=true
//
//	cfg, err := recordseal.LoadConfigFromEnvironment()
func LoadConfigFromEnvironment() (Config, error) {
	return LoadConfig("")
}

// LoadConfig loads the YAML file at path, or the file named by
// RECORDSEAL_CONFIG when path is empty, then applies RECORDSEAL_* overrides.
// With neither a path nor the variable, defaults are used.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: configuration validation failed: %w", ErrInvalidConfiguration, err)
	}
	return cfg, nil
}

func applyEnvironment(cfg *Config) error {
	cfg.Source = getEnvOrDefault(EnvSource, cfg.Source)
	cfg.SourceDir = getEnvOrDefault(EnvSourceDir, cfg.SourceDir)
	cfg.S3Bucket = getEnvOrDefault(EnvS3Bucket, cfg.S3Bucket)
	cfg.S3Prefix = getEnvOrDefault(EnvS3Prefix, cfg.S3Prefix)
	cfg.Store = getEnvOrDefault(EnvStore, cfg.Store)
	cfg.DBPath = getEnvOrDefault(EnvDBPath, cfg.DBPath)
	cfg.BadgerDir = getEnvOrDefault(EnvBadgerDir, cfg.BadgerDir)
	cfg.FingerprintField = getEnvOrDefault(EnvFingerprintField, cfg.FingerprintField)
	cfg.Suite = getEnvOrDefault(EnvSuite, cfg.Suite)
	cfg.LineTerminator = getEnvOrDefault(EnvLineTerminator, cfg.LineTerminator)
	cfg.KeyStore = getEnvOrDefault(EnvKeyStore, cfg.KeyStore)
	cfg.VaultMount = getEnvOrDefault(EnvVaultMount, cfg.VaultMount)
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault(EnvLogFormat, cfg.LogFormat)

	var err error
	if cfg.PersistKey, err = getEnvBool(EnvPersistKey, cfg.PersistKey); err != nil {
		return err
	}
	if cfg.ArchiveCiphertext, err = getEnvBool(EnvArchiveCiphertext, cfg.ArchiveCiphertext); err != nil {
		return err
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable, or defaultValue
// when it is unset or empty.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidConfiguration, key, value)
	}
	return parsed, nil
}
