// Package config provides user configuration management for scc1ctl.
//
// This package manages a YAML profile with the connection defaults (serial
// port, baud rate, SHDLC slave address or bridge URL), the flow sensor settings
// (sensor type, liquid mode, sampling interval) and application preferences.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/scc1/config.yaml or $HOME/.config/scc1/config.yaml
//   - macOS: $HOME/.config/scc1/config.yaml
//   - Windows: %LOCALAPPDATA%\scc1\config.yaml
//
// # Usage Example
//
//	profile, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile.Connection.Port = "/dev/ttyUSB0"
//	if err := profile.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex and writes go through a
// temporary file and rename.
package config
