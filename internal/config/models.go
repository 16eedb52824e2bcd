package config

import (
	"fmt"

	"github.com/muurk/scc1/internal/scc1"
	"github.com/muurk/scc1/internal/shdlc"
	"github.com/muurk/scc1/internal/slf"
)

// CurrentVersion is the only profile format understood by this package
const CurrentVersion = 1

// Profile represents the entire user configuration file.
// It stores connection defaults, sensor settings and application preferences.
type Profile struct {
	Version     int          `yaml:"version"`
	Connection  *Connection  `yaml:"connection,omitempty"`
	Sensor      *Sensor      `yaml:"sensor,omitempty"`
	Preferences *Preferences `yaml:"preferences,omitempty"`
}

// Connection describes how to reach the SCC1.
// BridgeURL takes precedence over BridgeSerial, which takes precedence over Port.
type Connection struct {
	Port         string `yaml:"port,omitempty"`          // Serial device, e.g. /dev/ttyUSB0
	BaudRate     int    `yaml:"baud_rate"`               // SHDLC baud rate
	SlaveAddress uint8  `yaml:"slave_address"`           // SHDLC slave address
	BridgeURL    string `yaml:"bridge_url,omitempty"`    // ws://host:5200/shdlc
	BridgeSerial string `yaml:"bridge_serial,omitempty"` // SCC1 serial of a bridge found via mDNS
}

// Sensor holds the flow sensor settings applied before measuring.
type Sensor struct {
	Type       int `yaml:"type"`        // SCC1 sensor type (3 = SF06)
	LiquidMode int `yaml:"liquid_mode"` // 0-8
	IntervalMs int `yaml:"interval_ms"` // Continuous measurement interval
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout int `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

func defaultConnection() *Connection {
	return &Connection{BaudRate: shdlc.DefaultBaudRate}
}

func defaultSensor() *Sensor {
	return &Sensor{
		Type:       scc1.SensorTypeSF06,
		LiquidMode: int(slf.Liqui1),
		IntervalMs: slf.DefaultSamplingIntervalMs,
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{DiscoverTimeout: 5}
}

// NewProfile creates a new Profile with default values.
func NewProfile() *Profile {
	return &Profile{
		Version:     CurrentVersion,
		Connection:  defaultConnection(),
		Sensor:      defaultSensor(),
		Preferences: defaultPreferences(),
	}
}

// fillDefaults replaces missing sections and zero values with defaults
func (p *Profile) fillDefaults() {
	if p.Connection == nil {
		p.Connection = defaultConnection()
	}
	if p.Connection.BaudRate == 0 {
		p.Connection.BaudRate = shdlc.DefaultBaudRate
	}
	if p.Sensor == nil {
		p.Sensor = defaultSensor()
	}
	if p.Sensor.IntervalMs == 0 {
		p.Sensor.IntervalMs = slf.DefaultSamplingIntervalMs
	}
	if p.Preferences == nil {
		p.Preferences = defaultPreferences()
	}
	if p.Preferences.DiscoverTimeout <= 0 {
		p.Preferences.DiscoverTimeout = defaultPreferences().DiscoverTimeout
	}
}

// Validate checks value ranges. Call after defaults are filled.
func (p *Profile) Validate() error {
	if p.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", p.Version, CurrentVersion)
	}
	if p.Connection != nil && p.Connection.BaudRate < 0 {
		return fmt.Errorf("invalid baud_rate %d", p.Connection.BaudRate)
	}
	if s := p.Sensor; s != nil {
		if s.Type < 0 || s.Type > scc1.MaxSensorType {
			return fmt.Errorf("invalid sensor type %d (0-%d)", s.Type, scc1.MaxSensorType)
		}
		if !slf.Mode(s.LiquidMode).Valid() {
			return fmt.Errorf("invalid liquid_mode %d (0-8)", s.LiquidMode)
		}
		if s.IntervalMs < 0 || s.IntervalMs > 0xFFFF {
			return fmt.Errorf("invalid interval_ms %d (0-65535)", s.IntervalMs)
		}
	}
	return nil
}
