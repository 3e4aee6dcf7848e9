package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the BRIEF_ prefix with underscores
// for nesting (e.g. BRIEF_SERVER_PORT, BRIEF_PIPELINE_INBOUND_DOMAIN).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env-only configuration is supported.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers every config key with viper explicitly.
// AutomaticEnv alone does not surface env-only keys to Unmarshal: viper only
// reads keys it already knows about, and secrets carry no default that would
// teach it theirs.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.log_level",
		"server.env",
		"database.url",
		"llm.gemini_api_key",
		"llm.model_name",
		"llm.max_attempts",
		"llm.base_delay_seconds",
		"llm.max_delay_seconds",
		"delivery.from_address",
		"delivery.region",
		"delivery.whatsapp_token",
		"delivery.whatsapp_phone_id",
		"delivery.max_attempts",
		"delivery.base_delay_seconds",
		"delivery.max_delay_seconds",
		"pipeline.notification_batch_size",
		"pipeline.notification_poll_seconds",
		"pipeline.notification_item_delay_millis",
		"pipeline.recovery_poll_seconds",
		"pipeline.recovery_batch_size",
		"pipeline.inbound_domain",
		"pipeline.channels",
	}
	for _, key := range keys {
		// BindEnv with the prefix and replacer set maps the key to its
		// BRIEF_-prefixed variable; it only errors on an empty key name.
		_ = v.BindEnv(key)
	}
}

// setDefaults registers defaults for everything that has a sensible one.
// Secrets (database URL, API keys) deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.env", "production")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.base_delay_seconds", 1)
	v.SetDefault("llm.max_delay_seconds", 10)

	v.SetDefault("delivery.region", "us-east-1")
	v.SetDefault("delivery.max_attempts", 3)
	v.SetDefault("delivery.base_delay_seconds", 1)
	v.SetDefault("delivery.max_delay_seconds", 10)

	v.SetDefault("pipeline.notification_batch_size", 10)
	v.SetDefault("pipeline.notification_poll_seconds", 10)
	v.SetDefault("pipeline.notification_item_delay_millis", 500)
	v.SetDefault("pipeline.recovery_poll_seconds", 60)
	v.SetDefault("pipeline.recovery_batch_size", 10)
	v.SetDefault("pipeline.channels", "email,whatsapp")
}
