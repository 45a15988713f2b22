package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/neacloud/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host: "broker.example.test",
			Port: 443,
			Path: "/mqtt",
			TLS:  true,
		},
		QoS: 0,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 30,
			MaxDelay:     300,
			MaxAttempts:  5,
		},
	}
}

func testCredentials() Credentials {
	return Credentials{
		ClientID: "app-test",
		Username: "app?x-amz-customauthorizer-name=app-front",
		Password: "access-token",
	}
}

// =============================================================================
// Option Building Tests
// =============================================================================

func TestBuildClientOptions_WSSURL(t *testing.T) {
	opts := buildClientOptions(testConfig(), testCredentials())

	if len(opts.Servers) != 1 {
		t.Fatalf("len(Servers) = %d, want 1", len(opts.Servers))
	}

	got := opts.Servers[0].String()
	want := "wss://broker.example.test:443/mqtt"
	if got != want {
		t.Errorf("broker URL = %q, want %q", got, want)
	}
}

func TestBuildClientOptions_PlainWSForTests(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = false
	cfg.Broker.Port = 9001

	opts := buildClientOptions(cfg, testCredentials())

	got := opts.Servers[0].String()
	want := "ws://broker.example.test:9001/mqtt"
	if got != want {
		t.Errorf("broker URL = %q, want %q", got, want)
	}
}

func TestBuildClientOptions_DefaultPath(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Path = ""

	opts := buildClientOptions(cfg, testCredentials())

	if got := opts.Servers[0].Path; got != "/mqtt" {
		t.Errorf("broker path = %q, want /mqtt", got)
	}
}

func TestBuildClientOptions_Credentials(t *testing.T) {
	opts := buildClientOptions(testConfig(), testCredentials())

	if opts.ClientID != "app-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "app-test")
	}
	if opts.Username != "app?x-amz-customauthorizer-name=app-front" {
		t.Errorf("Username = %q, want authorizer username", opts.Username)
	}
	if opts.Password != "access-token" {
		t.Errorf("Password = %q, want access token", opts.Password)
	}
}

// =============================================================================
// Disconnected-Client Behaviour Tests
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestPublish_NotConnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Publish("client/abc", []byte("{}"), 0, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestPublish_InvalidInputs(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Publish("", []byte("{}"), 0, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("client/abc", []byte("{}"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos=3 error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribe_NotConnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("client/abc", 0, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribe_NilHandler(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	err := client.Subscribe("client/abc", 0, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	client := &Client{}

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_CancelledContext(t *testing.T) {
	client := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.HealthCheck(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestSubscriptionTracking(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
	if client.HasSubscription("client/abc") {
		t.Error("HasSubscription() = true for untracked topic")
	}
}
