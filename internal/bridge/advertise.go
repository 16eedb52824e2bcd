package bridge

import (
	"fmt"
	"strconv"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/logging"
)

const (
	// ServiceType is the mDNS service advertised by bridge servers
	ServiceType = "_scc1._tcp"

	// Domain is the mDNS domain
	Domain = "local."
)

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
}

// Info is what a bridge publishes about its SCC1
type Info struct {
	Serial   string
	Firmware string

	// SensorType is the configured sensor type, -1 when not configured
	SensorType int
}

// TXT returns the mDNS TXT records for the bridge
func (i Info) TXT() []string {
	txt := []string{
		"serial=" + i.Serial,
		"firmware=" + i.Firmware,
		"path=" + Path,
	}
	if i.SensorType >= 0 {
		txt = append(txt, "sensor_type="+strconv.Itoa(i.SensorType))
	}
	return txt
}

// Advertise announces a bridge on the local network.
func Advertise(instance string, port int, info Info) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, info.TXT(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Bridge advertised via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
