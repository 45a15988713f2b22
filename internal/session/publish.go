package session

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/neacloud/internal/referential"
)

// commandType is the envelope type for every thermostat command.
const commandType = "REQ_TH"

// Command builders. Commands are semantic documents; the referential
// translator rewrites the keys to wire indices at publish time.

// SetpointCommand sets a zone's target temperature, in wire units.
func SetpointCommand(zone, wireTemperature int) map[string]any {
	return map[string]any{
		"type":       commandType,
		"controller": 0,
		"zone":       zone,
		"data":       map[string]any{"setpoint_used": wireTemperature},
	}
}

// EnergyLevelCommand sets a zone's energy level.
func EnergyLevelCommand(zone, level int) map[string]any {
	return map[string]any{
		"type":       commandType,
		"controller": 0,
		"zone":       zone,
		"data":       map[string]any{"mode_permanent": level},
	}
}

// OperatingModeCommand sets the account-global heat/cool mode. The
// server requires the value zero-padded to two characters.
func OperatingModeCommand(mode int) map[string]any {
	return map[string]any{
		"type": commandType,
		"data": map[string]any{"heat_cool": fmt.Sprintf("%02d", mode)},
	}
}

// GlobalEnergyLevelCommand sets the energy level of every listed zone
// in one request.
func GlobalEnergyLevelCommand(level int, zones []int) map[string]any {
	impacted := make([]any, len(zones))
	for i, z := range zones {
		impacted[i] = z
	}
	return map[string]any{
		"type":       commandType,
		"controller": 0,
		"data": map[string]any{
			"mode_used":     level,
			"zone_impacted": impacted,
		},
	}
}

// PublishCommand encodes a semantic command through the referential
// table and publishes it to the installation's command topic. It fails
// fast with referential.ErrTableUnavailable until the table arrived.
//
// Encoding happens before any lock is taken and the publish rides the
// transport's own queue, so this never blocks state readers.
func (s *Session) PublishCommand(installUnique string, command map[string]any) error {
	if !s.translator.Ready() {
		return referential.ErrTableUnavailable
	}
	encoded := s.translator.Encode(command)
	topic := resolveTopic(topicInstallation, installUnique, s.email)
	return s.publish(topic, encoded)
}

// publishJSON publishes a document without referential encoding, used
// for server-directed requests whose keys are fixed.
func (s *Session) publishJSON(topicTemplate string, doc map[string]any) error {
	s.mu.Lock()
	unique := s.installUnique
	s.mu.Unlock()
	return s.publish(resolveTopic(topicTemplate, unique, s.email), doc)
}

func (s *Session) publish(topic string, doc map[string]any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("session: encoding payload for %s: %w", topic, err)
	}

	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()

	if transport == nil || !transport.IsConnected() {
		return ErrNotConnected
	}

	s.logger.Debug("publishing", "topic", topic)
	if err := transport.Publish(topic, payload, byte(s.cfg.MQTT.QoS), false); err != nil {
		return fmt.Errorf("session: publish to %s: %w", topic, err)
	}
	return nil
}
