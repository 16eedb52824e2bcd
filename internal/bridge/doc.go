// Package bridge shares one SCC1 link over the network.
//
// A Server owns a local transport (usually a serial port) and accepts
// websocket clients on /shdlc. A Client implements scc1.Transport on the
// other end, so scc1.Device and the sensor drivers work unchanged against a
// remote bridge.
//
// # Wire Format
//
// All messages are binary websocket messages. Requests:
//
//	[CMD][TIMEOUT_MS_H][TIMEOUT_MS_L][DATA...]
//
// Responses:
//
//	[STATUS][BODY...]
//
// STATUS 0x00 carries the response data, 0x01 carries an error message from
// the server side transport.
//
// # Discovery
//
// Advertise registers the server as _scc1._tcp via mDNS; the discovery
// package browses for it.
//
// # Metrics
//
// Exchange counts, byte counts and latency are served on /metrics in the
// Prometheus format.
package bridge
