package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Session token settings shared by the REST and live-channel transports.
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer         string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience       string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL            time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	SessionCookieName string        `mapstructure:"session_cookie_name" yaml:"session_cookie_name"`

	// Live channel limits.
	WSMaxMessageBytes int64 `mapstructure:"ws_max_message_bytes" yaml:"ws_max_message_bytes"`
	WSEventsPerMinute int   `mapstructure:"ws_events_per_minute" yaml:"ws_events_per_minute"`

	// Chat history paging.
	DefaultPageSize int `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size" yaml:"max_page_size"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "teammates.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "teammates",
		JWTAudience:       "teammates-api",
		JWTTTL:            24 * time.Hour,
		SessionCookieName: "session",
		WSMaxMessageBytes: 1 << 20,
		WSEventsPerMinute: 120,
		DefaultPageSize:   50,
		MaxPageSize:       200,
	}
}
