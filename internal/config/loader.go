package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaults mirrors quickmt's pydantic Settings defaults field-for-field, so
// operators migrating an existing deployment see the same out-of-the-box
// behaviour.
var defaults = map[string]any{
	"listen_addr":            ":8000",
	"log_level":              "info",
	"max_loaded_models":      5,
	"device":                 "cpu",
	"compute_type":           "default",
	"inter_threads":          1,
	"intra_threads":          4,
	"max_batch_size":         32,
	"batch_timeout_ms":       5,
	"langid_model_path":      "",
	"langid_workers":         2,
	"translation_cache_size": 10000,
	"registry_catalogue_url": "",
	"registry_catalogue_file": "",
	"registry_cache_dir":     "./model-cache",
	"registry_postgres_dsn":  "",
	"metrics_enabled":        true,
	"cors_allowed_origins":   "",
}

// Load builds a [Config] from environment variables, optionally overridden
// by a ".env" file in the working directory (if present). Environment
// variable lookups are case-insensitive: MAX_LOADED_MODELS, max_loaded_models,
// and Max_Loaded_Models are all equivalent.
func Load() (*Config, error) {
	v := viper.New()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only looks up the upper-case name; bind any other
	// spelling found in the environment as a second candidate.
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		key := strings.ToLower(name)
		if _, ok := defaults[key]; ok && name != strings.ToUpper(key) {
			_ = v.BindEnv(key, strings.ToUpper(key), name)
		}
	}

	// The dotfile is read separately and applied with Set, which viper
	// ranks above environment variables.
	file := viper.New()
	file.SetConfigName(".env")
	file.SetConfigType("env")
	file.AddConfigPath(".")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read .env: %w", err)
		}
	}
	for _, key := range file.AllKeys() {
		v.Set(key, file.Get(key))
	}

	cfg := &Config{
		ListenAddr:            v.GetString("listen_addr"),
		LogLevel:              v.GetString("log_level"),
		MaxLoadedModels:       v.GetInt("max_loaded_models"),
		Device:                v.GetString("device"),
		ComputeType:           v.GetString("compute_type"),
		InterThreads:          v.GetInt("inter_threads"),
		IntraThreads:          v.GetInt("intra_threads"),
		MaxBatchSize:          v.GetInt("max_batch_size"),
		BatchTimeout:          time.Duration(v.GetInt("batch_timeout_ms")) * time.Millisecond,
		LangIDModelPath:       v.GetString("langid_model_path"),
		LangIDWorkers:         v.GetInt("langid_workers"),
		TranslationCacheSize:  v.GetInt("translation_cache_size"),
		RegistryCatalogueURL:  v.GetString("registry_catalogue_url"),
		RegistryCatalogueFile: v.GetString("registry_catalogue_file"),
		RegistryCacheDir:      v.GetString("registry_cache_dir"),
		RegistryPostgresDSN:   v.GetString("registry_postgres_dsn"),
		MetricsEnabled:        v.GetBool("metrics_enabled"),
		CORSAllowedOrigins:    v.GetString("cors_allowed_origins"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.MaxLoadedModels <= 0 {
		errs = append(errs, fmt.Errorf("max_loaded_models must be positive, got %d", cfg.MaxLoadedModels))
	}
	if cfg.MaxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("max_batch_size must be positive, got %d", cfg.MaxBatchSize))
	}
	if cfg.BatchTimeout < 0 {
		errs = append(errs, fmt.Errorf("batch_timeout_ms must not be negative, got %s", cfg.BatchTimeout))
	}
	if cfg.LangIDWorkers <= 0 {
		errs = append(errs, fmt.Errorf("langid_workers must be positive, got %d", cfg.LangIDWorkers))
	}
	if cfg.TranslationCacheSize < 0 {
		errs = append(errs, fmt.Errorf("translation_cache_size must not be negative, got %d", cfg.TranslationCacheSize))
	}

	return errors.Join(errs...)
}
