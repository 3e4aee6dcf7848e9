package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Delivery DeliveryConfig `mapstructure:"delivery" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Env selects failure-output behavior: production configurations write a
	// fixed sentinel into failed tasks, development configurations surface
	// the captured error text.
	Env string `mapstructure:"env" validate:"required,oneof=development production"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the summarization client settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`

	// MaxAttempts bounds the internal retry loop of the summarization
	// client. Failures beyond this are surfaced to the lifecycle engine.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`

	// BaseDelaySeconds is the first backoff delay; each subsequent attempt
	// doubles it up to MaxDelaySeconds.
	BaseDelaySeconds int `mapstructure:"base_delay_seconds" validate:"required,gte=1"`
	MaxDelaySeconds  int `mapstructure:"max_delay_seconds" validate:"required,gte=1"`
}

// DeliveryConfig contains the notification dispatcher settings.
type DeliveryConfig struct {
	FromAddress string `mapstructure:"from_address" validate:"required,email"`
	Region      string `mapstructure:"region" validate:"required"`

	// WhatsApp Cloud API credentials. Both must be set for the whatsapp
	// channel to have a dispatcher; otherwise whatsapp events fail at
	// dispatch time with a recorded reason.
	WhatsAppToken   string `mapstructure:"whatsapp_token"`
	WhatsAppPhoneID string `mapstructure:"whatsapp_phone_id"`

	// Retry policy for one delivery attempt sequence, independent of the
	// summarization client's policy.
	MaxAttempts      int `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`
	BaseDelaySeconds int `mapstructure:"base_delay_seconds" validate:"required,gte=1"`
	MaxDelaySeconds  int `mapstructure:"max_delay_seconds" validate:"required,gte=1"`
}

// PipelineConfig contains the sweeper and inbound-routing settings.
type PipelineConfig struct {
	// NotificationBatchSize bounds how many pending notification events one
	// sweep cycle picks up. Clamped to 1..100 at load time.
	NotificationBatchSize int `mapstructure:"notification_batch_size" validate:"required,gte=1,lte=100"`

	// NotificationPollSeconds is the pending-notification sweep interval.
	NotificationPollSeconds int `mapstructure:"notification_poll_seconds" validate:"required,gte=1"`

	// NotificationItemDelayMillis is the pause between deliveries within one
	// batch, to avoid bursting the external provider.
	NotificationItemDelayMillis int `mapstructure:"notification_item_delay_millis" validate:"gte=0"`

	// RecoveryPollSeconds is the stranded-task recovery sweep interval.
	RecoveryPollSeconds int `mapstructure:"recovery_poll_seconds" validate:"required,gte=1"`

	// RecoveryBatchSize bounds how many pending tasks one recovery sweep re-drives.
	RecoveryBatchSize int `mapstructure:"recovery_batch_size" validate:"required,gte=1,lte=100"`

	// InboundDomain is the domain part of tenant inbound routing addresses.
	// Empty disables inbound routing.
	InboundDomain string `mapstructure:"inbound_domain"`

	// Channels is the comma-separated list of notification channels enabled
	// by default for new tenants.
	Channels string `mapstructure:"channels" validate:"required"`
}
