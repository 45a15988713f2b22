package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/neacloud/internal/referential"
)

// Inbound message types.
const (
	messageReadUser      = "read_user"
	messageChannelUpdate = "channel_update"
	messageReferential   = "referential"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleMessage is the inbound dispatch path for every subscribed
// topic, the legacy account-level topic included. Decode failures and
// unknown types are logged and dropped; they never tear down the
// transport.
func (s *Session) handleMessage(topic string, payload []byte) error {
	var msg envelope
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadMessage, topic, err)
	}

	s.markReceiving()
	s.logger.Debug("inbound message", "topic", topic, "type", msg.Type)

	switch msg.Type {
	case messageReadUser:
		// Snapshot push: treat as a resync trigger rather than trusting
		// an embedded payload.
		go s.resync(context.Background())
		return nil

	case messageChannelUpdate:
		return s.handleChannelUpdate(msg.Data)

	case messageReferential:
		return s.handleReferential(msg.Data)

	default:
		s.logger.Debug("dropping unhandled message", "topic", topic, "type", msg.Type)
		return nil
	}
}

func (s *Session) handleChannelUpdate(data json.RawMessage) error {
	var update struct {
		Channel string `json:"channel"`
		Unique  string `json:"unique"`
		Data    struct {
			ModeUsed     int `json:"mode_used"`
			SetpointUsed int `json:"setpoint_used"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &update); err != nil {
		return fmt.Errorf("%w: channel update: %v", ErrBadMessage, err)
	}

	s.store.ApplyChannelPatch(update.Unique, update.Channel,
		update.Data.ModeUsed, update.Data.SetpointUsed)
	return nil
}

func (s *Session) handleReferential(data json.RawMessage) error {
	var compressed string
	if err := json.Unmarshal(data, &compressed); err != nil {
		return fmt.Errorf("%w: referential: %v", ErrBadMessage, err)
	}

	table, err := referential.ParseCompressed(compressed)
	if err != nil {
		// Keep the previous table; a bad push is not fatal.
		s.logger.Warn("referential payload rejected", "error", err)
		return nil
	}
	s.translator.Swap(table)
	s.logger.Debug("referential table installed", "entries", table.Len())
	return nil
}

func (s *Session) markReceiving() {
	s.mu.Lock()
	if s.status == StatusSubscribed {
		s.status = StatusReceiving
	}
	s.mu.Unlock()
}
