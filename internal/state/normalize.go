package state

import "time"

// lastConnectionLayout is the timestamp format the cloud uses for an
// installation's lastConnection field.
const lastConnectionLayout = "2006-01-02T15:04:05.000Z"

// ParseInstallations normalizes merged raw installation documents into
// the typed model. Channel operating modes are taken from the owning
// installation's tri-flag classification; channels carry no independent
// flags in the raw feed. lastMode is used when a document arrives
// without a user block, so an incremental fetch cannot regress the
// classification to unknown.
func ParseInstallations(raw []map[string]any, lastMode OperatingMode) []Installation {
	out := make([]Installation, 0, len(raw))
	for _, doc := range raw {
		mode := lastMode
		if user, ok := doc["user"].(map[string]any); ok {
			mode = ClassifyOperatingMode(user["heatcool_auto_01"])
		}

		inst := Installation{
			ID:                rawString(doc, "_id"),
			Unique:            rawString(doc, "unique"),
			Hash:              rawString(doc, "hash"),
			Connected:         installationConnected(doc),
			GlobalEnergyLevel: globalEnergyLevel(doc),
			OperatingMode:     mode,
		}

		groups, _ := doc["groups"].([]any)
		inst.Groups = make([]Group, 0, len(groups))
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if !ok {
				continue
			}
			inst.Groups = append(inst.Groups, parseGroup(group, mode))
		}
		out = append(out, inst)
	}
	return out
}

func parseGroup(raw map[string]any, mode OperatingMode) Group {
	group := Group{
		ID:   rawString(raw, "_id"),
		Name: rawString(raw, "name"),
	}
	zones, _ := raw["zones"].([]any)
	group.Zones = make([]Zone, 0, len(zones))
	for _, z := range zones {
		zone, ok := z.(map[string]any)
		if !ok {
			continue
		}
		group.Zones = append(group.Zones, parseZone(zone, mode))
	}
	return group
}

func parseZone(raw map[string]any, mode OperatingMode) Zone {
	zone := Zone{
		ID:     rawString(raw, "_id"),
		Name:   rawString(raw, "name"),
		Number: rawInt(raw, "number"),
	}
	channels, _ := raw["channels"].([]any)
	zone.Channels = make([]Channel, 0, len(channels))
	for _, c := range channels {
		channel, ok := c.(map[string]any)
		if !ok {
			continue
		}
		zone.Channels = append(zone.Channels, Channel{
			ID:                 rawString(channel, "_id"),
			TargetTemperature:  rawInt(channel, "setpoint_used"),
			CurrentTemperature: rawInt(channel, "temp_zone"),
			EnergyLevel:        rawInt(channel, "mode_permanent"),
			OperatingMode:      mode,
			Setpoints: Setpoints{
				Cooling: CoolingSetpoints{
					Normal:  rawInt(channel, "setpoint_c_normal"),
					Reduced: rawInt(channel, "setpoint_c_reduced"),
				},
				Heating: HeatingSetpoints{
					Normal:  rawInt(channel, "setpoint_h_normal"),
					Reduced: rawInt(channel, "setpoint_h_reduced"),
					Standby: rawInt(channel, "setpoint_h_standby"),
				},
				Min: rawInt(channel, "setpoint_min"),
				Max: rawInt(channel, "setpoint_max"),
			},
		})
	}
	return zone
}

// installationConnected requires both a truthy connectionState and a
// parseable lastConnection timestamp. A missing or malformed field
// means "not connected", never an error.
func installationConnected(doc map[string]any) bool {
	stateVal, okState := doc["connectionState"]
	lastVal, okLast := doc["lastConnection"]
	if !okState || !okLast {
		return false
	}

	connected, _ := stateVal.(bool)
	if !connected {
		return false
	}

	last, ok := lastVal.(string)
	if !ok {
		return false
	}
	if _, err := time.Parse(lastConnectionLayout, last); err != nil {
		return false
	}
	return true
}

// globalEnergyLevel is a majority vote over the raw mode_permanent of
// every channel beneath the installation.
func globalEnergyLevel(doc map[string]any) EnergyLevel {
	var levels []EnergyLevel

	groups, _ := doc["groups"].([]any)
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		zones, _ := group["zones"].([]any)
		for _, z := range zones {
			zone, ok := z.(map[string]any)
			if !ok {
				continue
			}
			channels, _ := zone["channels"].([]any)
			for _, c := range channels {
				channel, ok := c.(map[string]any)
				if !ok {
					continue
				}
				levels = append(levels, EnergyLevel(rawInt(channel, "mode_permanent")))
			}
		}
	}
	return voteEnergy(levels)
}

func rawString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// rawInt accepts both decoded JSON numbers and native ints.
func rawInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
