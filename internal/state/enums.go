package state

// EnergyLevel is the presence/absence mode of a channel or installation.
type EnergyLevel int

const (
	EnergyNormal  EnergyLevel = 0
	EnergyReduced EnergyLevel = 1
	EnergyStandby EnergyLevel = 2
	EnergyTiming  EnergyLevel = 3
	EnergyParty   EnergyLevel = 7
	EnergyHoliday EnergyLevel = 11
)

// energyVoteOrder is the declared order used both for aggregate vote
// tie-breaking and for iteration anywhere a stable order matters.
var energyVoteOrder = []EnergyLevel{
	EnergyNormal,
	EnergyReduced,
	EnergyStandby,
	EnergyTiming,
	EnergyParty,
	EnergyHoliday,
}

// energyOverrides maps wire values the server emits that are not part
// of the declared level set. These are server quirks observed in the
// field, kept as explicit entries rather than derived.
var energyOverrides = map[int]EnergyLevel{
	4: EnergyTiming,
	5: EnergyTiming,
	6: EnergyParty,
}

// EnergyLevelFromWire resolves a wire integer to an EnergyLevel,
// including the override values 4, 5 and 6. The second return is false
// for values outside both the declared set and the overrides.
func EnergyLevelFromWire(raw int) (EnergyLevel, bool) {
	if lvl, ok := energyOverrides[raw]; ok {
		return lvl, true
	}
	switch l := EnergyLevel(raw); l {
	case EnergyNormal, EnergyReduced, EnergyStandby, EnergyTiming, EnergyParty, EnergyHoliday:
		return l, true
	}
	return EnergyNormal, false
}

func (l EnergyLevel) String() string {
	switch l {
	case EnergyNormal:
		return "normal"
	case EnergyReduced:
		return "reduced"
	case EnergyStandby:
		return "standby"
	case EnergyTiming:
		return "timing"
	case EnergyParty:
		return "party"
	case EnergyHoliday:
		return "holiday"
	}
	return "unknown"
}

// voteEnergy returns the level with the highest count, ties resolving
// to the level appearing first in the declared order. Values outside
// the declared set do not vote.
func voteEnergy(levels []EnergyLevel) EnergyLevel {
	counts := make(map[EnergyLevel]int, len(energyVoteOrder))
	for _, lvl := range levels {
		for _, declared := range energyVoteOrder {
			if lvl == declared {
				counts[lvl]++
				break
			}
		}
	}

	best := energyVoteOrder[0]
	for _, lvl := range energyVoteOrder[1:] {
		if counts[lvl] > counts[best] {
			best = lvl
		}
	}
	return best
}

// OperatingMode is the heating/cooling classification of an
// installation and its channels.
type OperatingMode int

const (
	ModeUnknown       OperatingMode = -1
	ModeHeatingOnly   OperatingMode = 1
	ModeCoolingOnly   OperatingMode = 2
	ModeAuto          OperatingMode = 3
	ModeHeatingManual OperatingMode = 5
	ModeCoolingManual OperatingMode = 6
)

func (m OperatingMode) String() string {
	switch m {
	case ModeHeatingOnly:
		return "heating"
	case ModeCoolingOnly:
		return "cooling"
	case ModeAuto:
		return "auto"
	case ModeHeatingManual:
		return "heating_manual"
	case ModeCoolingManual:
		return "cooling_manual"
	}
	return "unknown"
}

// ClassifyOperatingMode derives an OperatingMode from the tri-flag
// structure the server attaches to an installation's user document.
// Both heating and cooling set means AUTO. Cooling alone selects the
// cooling branch, everything else falls through to heating. Anything
// that is not a mapping carrying all three flags is ModeUnknown.
func ClassifyOperatingMode(raw any) OperatingMode {
	flags, ok := raw.(map[string]any)
	if !ok {
		return ModeUnknown
	}

	heating, okH := boolFlag(flags, "heating")
	cooling, okC := boolFlag(flags, "cooling")
	manual, okM := boolFlag(flags, "manual")
	if !okH || !okC || !okM {
		return ModeUnknown
	}

	switch {
	case heating && cooling:
		return ModeAuto
	case cooling:
		if manual {
			return ModeCoolingManual
		}
		return ModeCoolingOnly
	default:
		if manual {
			return ModeHeatingManual
		}
		return ModeHeatingOnly
	}
}

func boolFlag(m map[string]any, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		return false, false
	}
	return b, true
}
