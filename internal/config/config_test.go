package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "scc1") {
		t.Errorf("GetConfigDir() = %v, should contain 'scc1'", configDir)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "scc1"); got != want {
		t.Errorf("GetConfigDir() = %v, want %v", got, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewProfile(t *testing.T) {
	p := NewProfile()

	if p.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", p.Version, CurrentVersion)
	}
	if p.Connection.BaudRate != 115200 {
		t.Errorf("BaudRate = %v, want 115200", p.Connection.BaudRate)
	}
	if p.Sensor.Type != 3 {
		t.Errorf("Sensor.Type = %v, want 3", p.Sensor.Type)
	}
	if p.Sensor.LiquidMode != 1 {
		t.Errorf("Sensor.LiquidMode = %v, want 1", p.Sensor.LiquidMode)
	}
	if p.Sensor.IntervalMs != 100 {
		t.Errorf("Sensor.IntervalMs = %v, want 100", p.Sensor.IntervalMs)
	}
	if p.Preferences.DiscoverTimeout != 5 {
		t.Errorf("DiscoverTimeout = %v, want 5", p.Preferences.DiscoverTimeout)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	p, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if p.Sensor == nil || p.Connection == nil || p.Preferences == nil {
		t.Error("missing file should give a complete default profile")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	p := NewProfile()
	p.Connection.Port = "/dev/ttyUSB0"
	p.Connection.SlaveAddress = 2
	p.Connection.BridgeURL = "ws://192.168.4.16:5200/shdlc"
	p.Connection.BridgeSerial = "A1B2C3D4"
	p.Sensor.LiquidMode = 0
	p.Sensor.IntervalMs = 20
	p.Preferences.DiscoverTimeout = 8

	if err := p.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be gone after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# SCC1 Configuration File") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Connection.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %v", loaded.Connection.Port)
	}
	if loaded.Connection.SlaveAddress != 2 {
		t.Errorf("SlaveAddress = %v", loaded.Connection.SlaveAddress)
	}
	if loaded.Connection.BridgeURL != "ws://192.168.4.16:5200/shdlc" {
		t.Errorf("BridgeURL = %v", loaded.Connection.BridgeURL)
	}
	if loaded.Connection.BridgeSerial != "A1B2C3D4" {
		t.Errorf("BridgeSerial = %v", loaded.Connection.BridgeSerial)
	}
	if loaded.Sensor.LiquidMode != 0 || loaded.Sensor.IntervalMs != 20 {
		t.Errorf("Sensor = %+v", loaded.Sensor)
	}
	if loaded.Preferences.DiscoverTimeout != 8 {
		t.Errorf("DiscoverTimeout = %v", loaded.Preferences.DiscoverTimeout)
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, p *Profile)
	}{
		{
			name:    "partial file gets defaults",
			content: "version: 1\nconnection:\n  port: /dev/ttyACM0\n",
			check: func(t *testing.T, p *Profile) {
				if p.Connection.Port != "/dev/ttyACM0" {
					t.Errorf("Port = %v", p.Connection.Port)
				}
				if p.Connection.BaudRate != 115200 {
					t.Errorf("BaudRate = %v, want default", p.Connection.BaudRate)
				}
				if p.Sensor == nil || p.Sensor.IntervalMs != 100 {
					t.Errorf("Sensor = %+v, want defaults", p.Sensor)
				}
			},
		},
		{
			name:    "unsupported version",
			content: "version: 2\n",
			wantErr: true,
		},
		{
			name:    "missing version",
			content: "connection:\n  port: /dev/ttyUSB0\n",
			wantErr: true,
		},
		{
			name:    "invalid liquid mode",
			content: "version: 1\nsensor:\n  liquid_mode: 9\n",
			wantErr: true,
		},
		{
			name:    "invalid sensor type",
			content: "version: 1\nsensor:\n  type: 5\n",
			wantErr: true,
		},
		{
			name:    "interval out of range",
			content: "version: 1\nsensor:\n  interval_ms: 70000\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "version: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			p, err := LoadFrom(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	p := NewProfile()
	p.Sensor.LiquidMode = 12

	if err := p.SaveTo(path); err == nil {
		t.Fatal("SaveTo() should reject an invalid profile")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid profile")
	}
}
