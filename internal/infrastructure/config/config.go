package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the NEA cloud client.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Cloud   CloudConfig   `yaml:"cloud"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

// CloudConfig contains the vendor cloud endpoints and OAuth client identity.
//
// The hostnames are vendor-specific deployment details; the handshake shape
// (PKCE challenge, redirect capture, bearer profile fetch) is fixed.
type CloudConfig struct {
	AccountsBaseURL string        `yaml:"accounts_base_url"`
	APIBaseURL      string        `yaml:"api_base_url"`
	ClientID        string        `yaml:"client_id"`
	ClientSecret    string        `yaml:"client_secret"`
	Scopes          string        `yaml:"scopes"`
	RedirectURI     string        `yaml:"redirect_uri"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
}

// MQTTConfig contains cloud broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains broker connection details.
//
// The broker speaks MQTT over TLS WebSockets and authenticates through an
// AWS-style custom authorizer: the username carries the authorizer name and
// the password is the OAuth access token. There is no client_id key here;
// the session generates a fresh opaque identifier per connection.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
	TLS  bool   `yaml:"tls"`
}

// MQTTReconnectConfig contains reconnection settings.
// Delays are in seconds; MaxAttempts bounds consecutive connection losses
// before the session gives up for good.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file with environment overrides.
//
// Load order (later wins):
//  1. Built-in defaults
//  2. YAML file at path
//  3. Environment variables (NEACLOUD_SECTION_KEY)
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without touching the filesystem.
// Environment overrides still apply, so secrets can be injected without a file.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
// The endpoint values match the mature generation of the vendor protocol.
func defaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			AccountsBaseURL: "https://accounts.rehau.com",
			APIBaseURL:      "https://api.nea2aws.aws.rehau.cloud",
			ClientID:        "3f5d915d-a06f-42b9-89cc-2e5d63aa96f1",
			ClientSecret:    "10edca85-0623-48ad-bbbe-76b5e4ec89a9",
			Scopes:          "email roles profile offline_access",
			RedirectURI:     "http://localhost:3000/#!/auth-code",
			HTTPTimeout:     30 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "mqtt.nea2aws.aws.rehau.cloud",
				Port: 443,
				Path: "/mqtt",
				TLS:  true,
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 30,
				MaxDelay:     300,
				MaxAttempts:  5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: NEACLOUD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Cloud
	if v := os.Getenv("NEACLOUD_CLOUD_ACCOUNTS_BASE_URL"); v != "" {
		cfg.Cloud.AccountsBaseURL = v
	}
	if v := os.Getenv("NEACLOUD_CLOUD_API_BASE_URL"); v != "" {
		cfg.Cloud.APIBaseURL = v
	}
	if v := os.Getenv("NEACLOUD_CLOUD_CLIENT_ID"); v != "" {
		cfg.Cloud.ClientID = v
	}
	if v := os.Getenv("NEACLOUD_CLOUD_CLIENT_SECRET"); v != "" {
		cfg.Cloud.ClientSecret = v
	}

	// MQTT
	if v := os.Getenv("NEACLOUD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}

	// Logging
	if v := os.Getenv("NEACLOUD_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Cloud.AccountsBaseURL == "" {
		errs = append(errs, "cloud.accounts_base_url is required")
	}
	if c.Cloud.APIBaseURL == "" {
		errs = append(errs, "cloud.api_base_url is required")
	}
	if c.Cloud.ClientID == "" {
		errs = append(errs, "cloud.client_id is required")
	}
	if c.Cloud.RedirectURI == "" {
		errs = append(errs, "cloud.redirect_uri is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Reconnect.MaxAttempts < 1 {
		errs = append(errs, "mqtt.reconnect.max_attempts must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHTTPTimeout returns the auth HTTP timeout, defaulting to 30s.
func (c *Config) GetHTTPTimeout() time.Duration {
	if c.Cloud.HTTPTimeout <= 0 {
		return 30 * time.Second
	}
	return c.Cloud.HTTPTimeout
}
