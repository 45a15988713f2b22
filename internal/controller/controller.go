package controller

import (
	"context"
	"fmt"
	"math"

	"github.com/nerrad567/neacloud/internal/infrastructure/config"
	"github.com/nerrad567/neacloud/internal/session"
	"github.com/nerrad567/neacloud/internal/state"
)

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Session is the slice of the session the controller composes over.
// *session.Session satisfies it.
type Session interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
	IsAuthenticated() bool
	Store() *state.Store
	PublishCommand(installUnique string, command map[string]any) error
}

// Controller is the public façade of the client: reads answer from the
// cached state model and never block, writes publish a command and
// apply an optimistic local update so reads stay consistent until the
// server's own push confirms.
type Controller struct {
	session Session
	logger  Logger
}

// New creates a controller with a fresh session for the given account.
func New(cfg *config.Config, email, password string) *Controller {
	return NewWithSession(session.New(cfg, email, password))
}

// NewWithSession wraps an existing session, letting the caller wire its
// logger and lifecycle before handing it over.
func NewWithSession(sess Session) *Controller {
	return &Controller{
		session: sess,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Connect authenticates and brings the session up.
func (c *Controller) Connect(ctx context.Context) error {
	return c.session.Connect(ctx)
}

// Disconnect tears the session down. Idempotent.
func (c *Controller) Disconnect() {
	c.session.Disconnect()
}

// IsAuthenticated reports whether the session holds a live token.
func (c *Controller) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// IsConnected reports the cached connectivity of one installation.
func (c *Controller) IsConnected(installUnique string) bool {
	inst, err := c.session.Store().InstallationByUnique(installUnique)
	if err != nil {
		return false
	}
	return inst.Connected
}

// IsReady reports whether the first snapshot has been applied.
func (c *Controller) IsReady() bool {
	return c.session.Store().Ready()
}

// =============================================================================
// Reads
// =============================================================================

// GetInstallations returns a copy of the cached installations.
func (c *Controller) GetInstallations() []state.Installation {
	return c.session.Store().Installations()
}

// GetZones returns every cached zone across all installations.
func (c *Controller) GetZones() []state.Zone {
	var zones []state.Zone
	for _, inst := range c.session.Store().Installations() {
		for _, group := range inst.Groups {
			zones = append(zones, group.Zones...)
		}
	}
	return zones
}

// GetZone returns the zone with the given number.
func (c *Controller) GetZone(zoneNumber int) (state.Zone, error) {
	return c.session.Store().Zone(zoneNumber)
}

// GetTemperature returns a zone's current temperature in Celsius,
// averaged across its channels.
func (c *Controller) GetTemperature(zoneNumber int) (float64, error) {
	mean, err := c.zoneMean(zoneNumber, func(ch state.Channel) int { return ch.CurrentTemperature })
	if err != nil {
		return 0, err
	}
	celsius := (mean/10 - 32) / 1.8
	return math.Round(celsius*10) / 10, nil
}

// GetTargetTemperature returns a zone's target temperature in Celsius,
// rounded to the nearest half degree the way the panel displays it.
func (c *Controller) GetTargetTemperature(zoneNumber int) (float64, error) {
	mean, err := c.zoneMean(zoneNumber, func(ch state.Channel) int { return ch.TargetTemperature })
	if err != nil {
		return 0, err
	}
	celsius := (mean/10 - 32) / 1.8
	return math.Round(celsius*2) / 2, nil
}

// GetEnergyLevel returns a zone's energy level.
func (c *Controller) GetEnergyLevel(zoneNumber int) (state.EnergyLevel, error) {
	mean, err := c.zoneMean(zoneNumber, func(ch state.Channel) int { return ch.EnergyLevel })
	if err != nil {
		return 0, err
	}
	level, ok := state.EnergyLevelFromWire(int(math.Round(mean)))
	if !ok {
		return 0, fmt.Errorf("controller: zone %d reports unknown energy level %v", zoneNumber, mean)
	}
	return level, nil
}

// GetGlobalEnergyLevel returns the aggregate energy level of the first
// installation, the conventional account-global read.
func (c *Controller) GetGlobalEnergyLevel() (state.EnergyLevel, error) {
	inst, err := c.session.Store().First()
	if err != nil {
		return 0, err
	}
	return inst.GlobalEnergyLevel, nil
}

// GetOperationMode returns the account-global operating mode.
func (c *Controller) GetOperationMode() (state.OperatingMode, error) {
	inst, err := c.session.Store().First()
	if err != nil {
		return state.ModeUnknown, err
	}
	return inst.OperatingMode, nil
}

func (c *Controller) zoneMean(zoneNumber int, field func(state.Channel) int) (float64, error) {
	zone, err := c.session.Store().Zone(zoneNumber)
	if err != nil {
		return 0, err
	}
	if len(zone.Channels) == 0 {
		return 0, fmt.Errorf("%w: zone %d has no channels", state.ErrZoneNotFound, zoneNumber)
	}
	sum := 0
	for _, ch := range zone.Channels {
		sum += field(ch)
	}
	return float64(sum) / float64(len(zone.Channels)), nil
}

// =============================================================================
// Writes
// =============================================================================

// SetTemperature publishes a new target temperature for a zone, given
// in Celsius. On success the local model is updated optimistically.
func (c *Controller) SetTemperature(zoneNumber int, celsius float64) error {
	wire := state.CelsiusToWire(celsius)

	owner, err := c.session.Store().OwnerOf(zoneNumber)
	if err != nil {
		return err
	}
	if err := c.session.PublishCommand(owner.Unique, session.SetpointCommand(zoneNumber, wire)); err != nil {
		return err
	}

	c.session.Store().UpdateZoneTemperature(zoneNumber, wire)
	c.logger.Debug("setpoint published", "zone", zoneNumber, "celsius", celsius)
	return nil
}

// SetEnergyLevel publishes a new energy level for a zone.
func (c *Controller) SetEnergyLevel(zoneNumber int, level state.EnergyLevel) error {
	owner, err := c.session.Store().OwnerOf(zoneNumber)
	if err != nil {
		return err
	}
	if err := c.session.PublishCommand(owner.Unique, session.EnergyLevelCommand(zoneNumber, int(level))); err != nil {
		return err
	}

	c.session.Store().UpdateZoneEnergyLevel(zoneNumber, int(level))
	c.logger.Debug("energy level published", "zone", zoneNumber, "level", level)
	return nil
}

// SetOperationMode publishes the account-global heat/cool mode to every
// cached installation.
func (c *Controller) SetOperationMode(mode state.OperatingMode) error {
	store := c.session.Store()
	installations := store.Installations()
	if len(installations) == 0 {
		return state.ErrNoData
	}

	command := session.OperatingModeCommand(int(mode))
	for _, inst := range installations {
		if err := c.session.PublishCommand(inst.Unique, command); err != nil {
			return err
		}
	}

	store.UpdateOperatingMode(mode)
	c.logger.Debug("operation mode published", "mode", mode)
	return nil
}

// SetGlobalEnergyLevel publishes one energy level for every zone of
// every installation, each installation getting its own impacted-zone
// list.
func (c *Controller) SetGlobalEnergyLevel(level state.EnergyLevel) error {
	store := c.session.Store()
	byInstall := store.ZoneNumbersByInstallation()
	if len(byInstall) == 0 {
		return state.ErrNoData
	}

	for unique, zones := range byInstall {
		command := session.GlobalEnergyLevelCommand(int(level), zones)
		if err := c.session.PublishCommand(unique, command); err != nil {
			return err
		}
		for _, zone := range zones {
			store.UpdateZoneEnergyLevel(zone, int(level))
		}
	}
	c.logger.Debug("global energy level published", "level", level)
	return nil
}

// =============================================================================
// Change notification
// =============================================================================

// RegisterCallback registers fn to run whenever the cached model
// changes, letting the host platform learn of pushes without polling.
func (c *Controller) RegisterCallback(fn func()) int {
	return c.session.Store().RegisterCallback(fn)
}

// RemoveCallback unregisters a callback handle.
func (c *Controller) RemoveCallback(id int) {
	c.session.Store().RemoveCallback(id)
}
