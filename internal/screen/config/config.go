package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
// Environment keys map onto the koanf paths by replacing "_" with ".", so
// SCREEN_CONTACTS_CACHE_SIZE sets contacts.cache.size.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log      LoggingConfig  `koanf:"log"`
	Settings SettingsConfig `koanf:"settings"`
	Contacts ContactsConfig `koanf:"contacts"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type LoggingConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`

	// Redact masks all but the last four digits of logged phone numbers.
	Redact bool `koanf:"redact"`
}

// SettingsConfig locates the rule settings file.
type SettingsConfig struct {
	File string `koanf:"file" validate:"required"`

	// Watch reloads the settings whenever the file changes.
	Watch bool `koanf:"watch"`
}

// ContactsConfig controls the contact index consulted by block-unknown.
type ContactsConfig struct {
	// Files are plain contact lists. When empty the index is served from DB as is.
	Files  []string    `koanf:"files" validate:"omitempty,dive,required"`
	DB     string      `koanf:"db" validate:"required"`
	Cache  CacheConfig `koanf:"cache"`
	FPRate float64     `koanf:"fprate" validate:"gt=0,lt=1"`
}

type CacheConfig struct {
	// Size of the lookup cache. Zero disables caching.
	Size int `koanf:"size" validate:"gte=0"`
}

type MetricsConfig struct {
	// Listen is the host:port serving /metrics. Empty disables the endpoint.
	Listen string `koanf:"listen" validate:"omitempty,host_port"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LoggingConfig{Level: "info", Redact: true},
	Settings: SettingsConfig{
		File:  "/etc/rr-callscreen/settings.yaml",
		Watch: true,
	},
	Contacts: ContactsConfig{
		Files:  []string{},
		DB:     "/var/lib/rr-callscreen/contacts.db",
		Cache:  CacheConfig{Size: 1000},
		FPRate: 0.01,
	},
	Metrics: MetricsConfig{Listen: ""},
}

// validHostPort validates a "host:port" listen address. The host may be
// empty (all interfaces), a hostname or an IP; the port must be 1-65535.
func validHostPort(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || port == "" {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

// envLoader loads environment variables with the prefix "SCREEN_".
// Space or comma separated values become lists.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "SCREEN_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "SCREEN_"))
			key = strings.ReplaceAll(key, "_", ".")
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into k.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "host_port" tag with v.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("host_port", validHostPort)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
