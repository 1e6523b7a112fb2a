package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Push      PushConfig      `mapstructure:"push"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SchedulerConfig contains the reminder scheduler's tick settings.
type SchedulerConfig struct {
	// TickIntervalSeconds is the cadence of the reminder tick.
	TickIntervalSeconds int `mapstructure:"tick_interval_seconds" validate:"required,gte=1,lte=3600"`

	// MisfireGraceSeconds bounds how late a tick may start before it is
	// dropped instead of run.
	MisfireGraceSeconds int `mapstructure:"misfire_grace_seconds" validate:"required,gte=1,lte=3600"`
}

// PushConfig contains the OneSignal web-push delivery settings. Push is
// disabled cleanly when the app ID or API key is empty.
type PushConfig struct {
	OneSignalAppID  string `mapstructure:"onesignal_app_id"`
	OneSignalAPIKey string `mapstructure:"onesignal_api_key"`

	// TZOffsetMinutes is the deployment's UTC offset in minutes, used for
	// the fixed-time daily digests (e.g. 330 for UTC+5:30).
	TZOffsetMinutes int `mapstructure:"tz_offset_minutes" validate:"gte=-720,lte=840"`
}
