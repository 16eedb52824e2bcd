package main

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/bridge"
	"github.com/muurk/scc1/internal/discovery"
	"github.com/muurk/scc1/internal/logging"
	"github.com/muurk/scc1/internal/scc1"
	"github.com/muurk/scc1/internal/shdlc"
	"github.com/muurk/scc1/internal/slf"
	"github.com/muurk/scc1/internal/ui"
)

// openTransport connects to the bridge named by the profile
func openTransport() (scc1.Transport, func() error, error) {
	conn := profile.Connection

	url := conn.BridgeURL
	if url == "" && conn.BridgeSerial != "" {
		u, err := resolveBridgeURL(conn.BridgeSerial, findBridge)
		if err != nil {
			return nil, nil, err
		}
		url = u
	}
	if url != "" {
		client, err := bridge.Dial(url)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}

	portName := conn.Port
	if portName == "" {
		p, err := autoSelectPort()
		if err != nil {
			return nil, nil, err
		}
		portName = p
	}

	port, err := shdlc.Open(portName,
		shdlc.WithBaudRate(conn.BaudRate),
		shdlc.WithSlaveAddress(conn.SlaveAddress),
	)
	if err != nil {
		return nil, nil, err
	}
	return port, port.Close, nil
}

// findBridge waits for the bridge serving an SCC1 via mDNS
var findBridge = func(serial string) (*discovery.Bridge, error) {
	scanner := discovery.NewScanner()
	if t := profile.Preferences.DiscoverTimeout; t > 0 {
		scanner.Timeout = time.Duration(t) * time.Second
	}
	return scanner.WaitForBridge(serial)
}

// resolveBridgeURL returns the websocket URL of the bridge serving serial
func resolveBridgeURL(serial string, find func(string) (*discovery.Bridge, error)) (string, error) {
	b, err := find(serial)
	if err != nil {
		return "", fmt.Errorf("failed to find bridge for SCC1 %s: %w", serial, err)
	}
	logging.Info("Found bridge",
		zap.String("instance", b.Instance),
		zap.String("url", b.URL()),
	)
	return b.URL(), nil
}

// autoSelectPort picks the first FTDI converter
func autoSelectPort() (string, error) {
	ports, err := discovery.ListSerialPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.IsFTDI() {
			logging.Info("Using auto-detected port", zap.String("port", p.Name))
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("no SCC1 found: pass --port or --bridge (see 'scc1ctl ports')")
}

// openDevice connects and reads the cached bridge information
func openDevice() (*scc1.Device, func(), error) {
	transport, closeFn, err := openTransport()
	if err != nil {
		return nil, nil, err
	}

	dev, err := scc1.Open(transport, scc1.WithLogger(logging.GetLogger()))
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf("failed to open SCC1: %w", err)
	}

	logging.Info("Connected", zap.Stringer("device", dev))
	return dev, func() { _ = closeFn() }, nil
}

// openSensor selects the flow sensor type if needed and identifies the sensor
func openSensor(dev *scc1.Device, mode slf.Mode) (*slf.Slf3x, error) {
	if t, ok := dev.CachedSensorType(); !ok || t != slf.SensorType {
		if err := dev.SetSensorType(slf.SensorType); err != nil {
			return nil, fmt.Errorf("failed to select SF06 sensor type: %w", err)
		}
	}

	sensor, err := slf.New(dev,
		slf.WithLogger(logging.GetLogger()),
		slf.WithLiquidMode(mode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to identify flow sensor: %w", err)
	}
	return sensor, nil
}

// connectionParams describes the link for headers
func connectionParams(dev *scc1.Device) []ui.Param {
	params := []ui.Param{{Key: "Link", Value: dev.PortName()}}
	if profile.Connection.BridgeURL == "" && profile.Connection.BridgeSerial == "" {
		params = append(params, ui.Param{Key: "Baud", Value: strconv.Itoa(profile.Connection.BaudRate)})
	}
	return params
}

var connectTroubleshooting = []string{
	"Check that the SCC1 is plugged in and powered",
	"List candidate ports with 'scc1ctl ports'",
	"Use --port to select the serial port explicitly",
	"For a remote bridge, find it with 'scc1ctl discover' or use --bridge-serial",
}

// parseByteArg accepts decimal or 0x prefixed values
func parseByteArg(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: expected 0-255", s)
	}
	return byte(v), nil
}
