// Package scc1 implements the command layer of the Sensirion SCC1 sensor cable.
//
// The SCC1 is a USB bridge that speaks SHDLC towards the host and I2C towards an
// attached sensor. This package sits above any transport that can deliver one
// deframed command response and exposes the bridge's typed operations.
//
// # Layers
//
//	caller -> Device / I2cTransceiver -> Device.Transceive -> Transport -> bridge
//
// Transport is the only thing this package consumes. shdlc.Port (serial link) and
// bridge.Client (websocket tunnel) both satisfy it.
//
// # Usage Example
//
//	port, err := shdlc.Open("/dev/ttyUSB0", shdlc.WithBaudRate(115200))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	dev, err := scc1.Open(port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := dev.SetSensorType(scc1.SensorTypeSF06); err != nil {
//	    log.Fatal(err)
//	}
//	addresses, err := dev.PerformI2cScan()
//
// # Empty Responses
//
// Device.Transceive never returns a nil slice. An empty response is a valid value
// meaning "no data". Operations whose response is optional in the command table
// (sensor type, sensor address) report absence through an extra boolean.
//
// # Error Handling
//
// Local validation failures are reported as *Error values before anything is sent.
// Transport failures (timeouts, link errors) are returned unchanged.
//
// # Thread Safety
//
// A Device is owned by a single caller. Hosts that share one physical link between
// goroutines must serialize access externally.
package scc1
