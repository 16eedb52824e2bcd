package discovery

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ftdiVendorID is the USB vendor id of the FTDI serial converter
const ftdiVendorID = "0403"

// SerialPort is a local serial device that may have an SCC1 attached
type SerialPort struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// IsFTDI reports whether the port is an FTDI USB converter
func (p *SerialPort) IsFTDI() bool {
	return p.IsUSB && strings.EqualFold(p.VID, ftdiVendorID)
}

// String returns a one-line description of the port
func (p *SerialPort) String() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := fmt.Sprintf("%s [USB %s:%s]", p.Name, p.VID, p.PID)
	if p.Product != "" {
		desc += " " + p.Product
	}
	if p.SerialNumber != "" {
		desc += " serial " + p.SerialNumber
	}
	return desc
}

// listPorts is replaced in tests
var listPorts = enumerator.GetDetailedPortsList

// ListSerialPorts returns the serial ports of this host sorted by name.
// USB ports come first.
func ListSerialPorts() ([]*SerialPort, error) {
	details, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]*SerialPort, 0, len(details))
	for _, d := range details {
		ports = append(ports, &SerialPort{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}

	sort.SliceStable(ports, func(i, j int) bool {
		if ports[i].IsUSB != ports[j].IsUSB {
			return ports[i].IsUSB
		}
		return ports[i].Name < ports[j].Name
	})
	return ports, nil
}
