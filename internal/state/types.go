package state

// CoolingSetpoints holds the configured cooling setpoints of a channel,
// in wire units (tenths of a degree Fahrenheit).
type CoolingSetpoints struct {
	Normal  int
	Reduced int
}

// HeatingSetpoints holds the configured heating setpoints of a channel.
type HeatingSetpoints struct {
	Normal  int
	Reduced int
	Standby int
}

// Setpoints bundles a channel's configured setpoints and limits.
type Setpoints struct {
	Cooling CoolingSetpoints
	Heating HeatingSetpoints
	Min     int
	Max     int
}

// Channel is the leaf actuator/sensor unit of a zone. Temperatures are
// wire units. EnergyLevel carries the raw wire value, since patched
// values can include the undocumented overrides.
type Channel struct {
	ID                 string
	TargetTemperature  int
	CurrentTemperature int
	EnergyLevel        int
	OperatingMode      OperatingMode
	Setpoints          Setpoints
}

// Zone is a climate-controlled area. Number is the external addressing
// key used by commands and is unique across the whole account.
type Zone struct {
	ID       string
	Name     string
	Number   int
	Channels []Channel
}

// Group is a purely organizational container of zones.
type Group struct {
	ID    string
	Name  string
	Zones []Zone
}

// Installation is one physical control system. GlobalEnergyLevel and
// OperatingMode are derived during normalization, never set directly.
type Installation struct {
	ID                string
	Unique            string
	Hash              string
	Connected         bool
	GlobalEnergyLevel EnergyLevel
	OperatingMode     OperatingMode
	Groups            []Group
}

func copyInstallations(src []Installation) []Installation {
	out := make([]Installation, len(src))
	for i, inst := range src {
		out[i] = inst
		out[i].Groups = make([]Group, len(inst.Groups))
		for g, grp := range inst.Groups {
			out[i].Groups[g] = grp
			out[i].Groups[g].Zones = make([]Zone, len(grp.Zones))
			for z, zone := range grp.Zones {
				out[i].Groups[g].Zones[z] = zone
				out[i].Groups[g].Zones[z].Channels = append([]Channel(nil), zone.Channels...)
			}
		}
	}
	return out
}
