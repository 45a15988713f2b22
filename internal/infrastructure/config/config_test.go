package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
cloud:
  accounts_base_url: "https://accounts.example.test"
  api_base_url: "https://api.example.test"
  client_id: "test-client"
  redirect_uri: "http://localhost:3000/#!/auth-code"
mqtt:
  broker:
    host: "broker.example.test"
    port: 443
    tls: true
  qos: 0
  reconnect:
    initial_delay: 30
    max_delay: 300
    max_attempts: 5
logging:
  level: "debug"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cloud.AccountsBaseURL != "https://accounts.example.test" {
		t.Errorf("Cloud.AccountsBaseURL = %q, want %q", cfg.Cloud.AccountsBaseURL, "https://accounts.example.test")
	}

	if cfg.MQTT.Broker.Host != "broker.example.test" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.example.test")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
cloud:
  accounts_base_url: ""
  client_id: ""
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error, got nil")
	}
}

func TestDefault_HasWorkingValues(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config does not validate: %v", err)
	}

	if cfg.MQTT.Reconnect.MaxAttempts != 5 {
		t.Errorf("MQTT.Reconnect.MaxAttempts = %d, want 5", cfg.MQTT.Reconnect.MaxAttempts)
	}

	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true for the cloud broker")
	}
}

func TestValidate_RejectsBadQoS(t *testing.T) {
	cfg := defaultConfig()
	cfg.MQTT.QoS = 3

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for qos=3, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEACLOUD_MQTT_HOST", "override.example.test")
	t.Setenv("NEACLOUD_CLOUD_CLIENT_SECRET", "sekrit")

	cfg := Default()

	if cfg.MQTT.Broker.Host != "override.example.test" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Cloud.ClientSecret != "sekrit" {
		t.Errorf("Cloud.ClientSecret = %q, want env override", cfg.Cloud.ClientSecret)
	}
}

func TestGetHTTPTimeout_Default(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetHTTPTimeout(); got != 30*time.Second {
		t.Errorf("GetHTTPTimeout() = %v, want 30s", got)
	}
}
