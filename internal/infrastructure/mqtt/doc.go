// Package mqtt provides the WebSocket MQTT transport to the vendor cloud broker.
//
// This package wraps github.com/eclipse/paho.mqtt.golang with:
//   - Connection management over wss:// with TLS 1.2 minimum
//   - Token-as-password credentials for the broker's custom authorizer
//   - Automatic reconnection with bounded exponential backoff
//   - Subscription restoration after reconnect
//   - Panic recovery in message handlers
//
// # Credential binding
//
// The access token is presented in the MQTT password field and validated by
// the broker at CONNECT. A refreshed token therefore requires a fresh
// Connect with new Credentials; the session layer owns that cycle.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.Credentials{
//	    ClientID: "app-" + uuid.NewString(),
//	    Username: "app?x-amz-customauthorizer-name=app-front",
//	    Password: token.AccessToken,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("client/user@example.com", 0, handleMessage)
package mqtt
