package state

import "sync"

// Logger defines the logging interface used by the Store.
// This allows dependency injection without coupling to a specific logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// ChangeCallback is invoked after any mutation of the cached model.
// Callbacks run outside the state lock and must not block for long.
type ChangeCallback func()

// Store is the single owner of the cached installation model. All
// mutations are serialized through its lock; readers get copies and
// never observe a partially applied update.
type Store struct {
	mu            sync.RWMutex
	raw           []map[string]any
	installations []Installation
	lastMode      OperatingMode
	logger        Logger

	cbMu      sync.Mutex
	callbacks map[int]ChangeCallback
	nextCbID  int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		lastMode:  ModeUnknown,
		logger:    noopLogger{},
		callbacks: make(map[int]ChangeCallback),
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

// =============================================================================
// Mutations
// =============================================================================

// ApplyFullSnapshot merges freshly fetched raw installation documents
// over the cached raw data and rebuilds the typed model. The previous
// model is replaced wholesale.
func (s *Store) ApplyFullSnapshot(raw []map[string]any) {
	s.mu.Lock()
	s.raw = MergeRaw(s.raw, raw)
	s.installations = ParseInstallations(s.raw, s.lastMode)
	if len(s.installations) > 0 && s.installations[0].OperatingMode != ModeUnknown {
		s.lastMode = s.installations[0].OperatingMode
	}
	s.mu.Unlock()

	s.notify()
}

// ApplyChannelPatch overwrites the energy level and target temperature
// of one channel, identified by installation unique and channel id. A
// patch for an unknown installation or channel is logged and dropped;
// stale patches are an expected race, not a defect.
func (s *Store) ApplyChannelPatch(unique, channelID string, energyLevel, targetTemperature int) {
	s.mu.Lock()

	patched := false
	for i := range s.installations {
		if s.installations[i].Unique != unique {
			continue
		}
		if ch := findChannel(&s.installations[i], channelID); ch != nil {
			ch.EnergyLevel = energyLevel
			ch.TargetTemperature = targetTemperature
			recomputeGlobalEnergy(&s.installations[i])
			patched = true
		}
		break
	}

	logger := s.logger
	s.mu.Unlock()

	if !patched {
		logger.Debug("dropping channel patch for unknown target",
			"installation", unique, "channel", channelID)
		return
	}
	s.notify()
}

// UpdateZoneTemperature optimistically sets the target temperature of
// every channel in the addressed zone, so local reads reflect a just
// published command before the server confirms it.
func (s *Store) UpdateZoneTemperature(zoneNumber, targetTemperature int) {
	s.updateZoneChannels(zoneNumber, func(ch *Channel) {
		ch.TargetTemperature = targetTemperature
	}, false)
}

// UpdateZoneEnergyLevel optimistically sets the energy level of every
// channel in the addressed zone and recomputes the owning
// installation's aggregate.
func (s *Store) UpdateZoneEnergyLevel(zoneNumber, energyLevel int) {
	s.updateZoneChannels(zoneNumber, func(ch *Channel) {
		ch.EnergyLevel = energyLevel
	}, true)
}

// UpdateOperatingMode optimistically sets the operating mode of every
// installation and channel. Operating mode is account-global on the
// wire, so there is no per-zone variant.
func (s *Store) UpdateOperatingMode(mode OperatingMode) {
	s.mu.Lock()
	for i := range s.installations {
		s.installations[i].OperatingMode = mode
		for g := range s.installations[i].Groups {
			for z := range s.installations[i].Groups[g].Zones {
				channels := s.installations[i].Groups[g].Zones[z].Channels
				for c := range channels {
					channels[c].OperatingMode = mode
				}
			}
		}
	}
	s.lastMode = mode
	s.mu.Unlock()

	s.notify()
}

func (s *Store) updateZoneChannels(zoneNumber int, apply func(*Channel), recompute bool) {
	s.mu.Lock()

	touched := false
	for i := range s.installations {
		instTouched := false
		for g := range s.installations[i].Groups {
			for z := range s.installations[i].Groups[g].Zones {
				zone := &s.installations[i].Groups[g].Zones[z]
				if zone.Number != zoneNumber {
					continue
				}
				for c := range zone.Channels {
					apply(&zone.Channels[c])
				}
				instTouched = true
			}
		}
		if instTouched {
			touched = true
			if recompute {
				recomputeGlobalEnergy(&s.installations[i])
			}
		}
	}

	logger := s.logger
	s.mu.Unlock()

	if !touched {
		logger.Debug("dropping optimistic write for unknown zone", "zone", zoneNumber)
		return
	}
	s.notify()
}

func findChannel(inst *Installation, channelID string) *Channel {
	for g := range inst.Groups {
		for z := range inst.Groups[g].Zones {
			channels := inst.Groups[g].Zones[z].Channels
			for c := range channels {
				if channels[c].ID == channelID {
					return &channels[c]
				}
			}
		}
	}
	return nil
}

func recomputeGlobalEnergy(inst *Installation) {
	var levels []EnergyLevel
	for g := range inst.Groups {
		for z := range inst.Groups[g].Zones {
			for _, ch := range inst.Groups[g].Zones[z].Channels {
				levels = append(levels, EnergyLevel(ch.EnergyLevel))
			}
		}
	}
	inst.GlobalEnergyLevel = voteEnergy(levels)
}

// =============================================================================
// Readers
// =============================================================================

// Ready reports whether at least one snapshot has been applied.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.installations) > 0
}

// Installations returns a deep copy of the cached model.
func (s *Store) Installations() []Installation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyInstallations(s.installations)
}

// First returns a copy of the first cached installation, the
// conventional target for account-global reads.
func (s *Store) First() (Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.installations) == 0 {
		return Installation{}, ErrNoData
	}
	return copyInstallations(s.installations[:1])[0], nil
}

// Zone returns a copy of the zone carrying the given number.
func (s *Store) Zone(number int) (Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.installations {
		for _, group := range s.installations[i].Groups {
			for _, zone := range group.Zones {
				if zone.Number == number {
					cp := zone
					cp.Channels = append([]Channel(nil), zone.Channels...)
					return cp, nil
				}
			}
		}
	}
	return Zone{}, ErrZoneNotFound
}

// OwnerOf returns a copy of the installation owning the zone with the
// given number. Commands address zones by number alone, so publishers
// resolve the owning installation here before picking a topic.
func (s *Store) OwnerOf(zoneNumber int) (Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.installations {
		for _, group := range s.installations[i].Groups {
			for _, zone := range group.Zones {
				if zone.Number == zoneNumber {
					return copyInstallations(s.installations[i : i+1])[0], nil
				}
			}
		}
	}
	return Installation{}, ErrZoneNotFound
}

// InstallationByUnique returns a copy of the installation with the
// given unique identifier.
func (s *Store) InstallationByUnique(unique string) (Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.installations {
		if s.installations[i].Unique == unique {
			return copyInstallations(s.installations[i : i+1])[0], nil
		}
	}
	return Installation{}, ErrInstallationNotFound
}

// ZoneNumbersByInstallation returns every zone number grouped by the
// owning installation's unique identifier, used for commands that fan
// out to the whole account.
func (s *Store) ZoneNumbersByInstallation() map[string][]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]int, len(s.installations))
	for i := range s.installations {
		var numbers []int
		for _, group := range s.installations[i].Groups {
			for _, zone := range group.Zones {
				numbers = append(numbers, zone.Number)
			}
		}
		out[s.installations[i].Unique] = numbers
	}
	return out
}

// =============================================================================
// Change notification
// =============================================================================

// RegisterCallback registers fn to run after every model mutation and
// returns a handle for RemoveCallback.
func (s *Store) RegisterCallback(fn ChangeCallback) int {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.nextCbID++
	id := s.nextCbID
	s.callbacks[id] = fn
	return id
}

// RemoveCallback unregisters a callback. Unknown handles are ignored.
func (s *Store) RemoveCallback(id int) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	delete(s.callbacks, id)
}

func (s *Store) notify() {
	s.cbMu.Lock()
	fns := make([]ChangeCallback, 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		fns = append(fns, fn)
	}
	s.cbMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
