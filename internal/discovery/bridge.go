package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge represents a discovered scc1-bridge server on the network
type Bridge struct {
	// Instance is the mDNS instance name (e.g., "SCC1-A1B2C3D4")
	Instance string

	// Serial is the serial number of the SCC1 behind the bridge
	Serial string

	// Firmware is the SCC1 firmware version ("1.7")
	Firmware string

	// Hostname is the mDNS hostname of the bridge host
	Hostname string

	// IP is the preferred address (IPv4 when available)
	IP string

	// Port is the websocket port
	Port int

	// Path is the websocket endpoint path
	Path string

	// Metadata contains the raw mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("%s (serial %s, firmware %s) at %s",
		b.Instance, b.Serial, b.Firmware, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// URL returns the websocket URL of the bridge
func (b *Bridge) URL() string {
	return "ws://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port)) + b.Path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
