package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("scheduler.tick_interval_seconds", 60)
	v.SetDefault("scheduler.misfire_grace_seconds", 45)
	v.SetDefault("push.tz_offset_minutes", 0)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables and defaults apply.
	}

	// Environment variables with REMIND_ prefix, e.g. REMIND_DATABASE_URL,
	// REMIND_SERVER_PORT, REMIND_PUSH_ONESIGNAL_APP_ID.
	v.SetEnvPrefix("REMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every key
	// is bound explicitly. Keys without defaults (the database URL, OneSignal
	// credentials) would otherwise never reach Unmarshal from the environment.
	configKeys := []string{
		"server.port",
		"server.log_level",
		"database.url",
		"scheduler.tick_interval_seconds",
		"scheduler.misfire_grace_seconds",
		"push.onesignal_app_id",
		"push.onesignal_api_key",
		"push.tz_offset_minutes",
	}
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
