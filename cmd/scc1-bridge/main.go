// Scc1-bridge shares a locally attached SCC1 over the network.
//
// It opens the serial port, identifies the SCC1 and serves SHDLC exchanges to
// websocket clients (scc1ctl --bridge). The bridge is advertised via mDNS as
// _scc1._tcp and exposes Prometheus metrics on /metrics.
//
// Usage:
//
//	scc1-bridge --port /dev/ttyUSB0 [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/bridge"
	"github.com/muurk/scc1/internal/logging"
	"github.com/muurk/scc1/internal/scc1"
	"github.com/muurk/scc1/internal/shdlc"
	"github.com/muurk/scc1/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	serialPort  string
	baudRate    int
	slaveAddr   uint8
	host        string
	listenPort  int
	noAdvertise bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "scc1-bridge",
	Short: "SCC1 network bridge",
	Long: `Serve a locally attached SCC1 sensor cable to network clients.

Clients connect with 'scc1ctl --bridge ws://<host>:<port>/shdlc'. Commands
from all clients are executed one at a time on the serial link.`,
	Example: `  # Serve /dev/ttyUSB0 on the default port 5200
  scc1-bridge --port /dev/ttyUSB0

  # Listen on localhost only, without mDNS
  scc1-bridge --port /dev/ttyUSB0 --host 127.0.0.1 --no-advertise --log-level debug`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runBridge,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVarP(&serialPort, "port", "p", "", "Serial port of the SCC1 (required)")
	rootCmd.Flags().IntVar(&baudRate, "baud", shdlc.DefaultBaudRate, "SHDLC baud rate")
	rootCmd.Flags().Uint8Var(&slaveAddr, "slave", 0, "SHDLC slave address")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	rootCmd.Flags().IntVar(&listenPort, "listen", bridge.DefaultPort, "Listen port")
	rootCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not announce the bridge via mDNS")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	_ = rootCmd.MarkFlagRequired("port")

	rootCmd.AddCommand(versionCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	port, err := shdlc.Open(serialPort,
		shdlc.WithBaudRate(baudRate),
		shdlc.WithSlaveAddress(slaveAddr),
	)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	dev, err := scc1.Open(port, scc1.WithLogger(logging.GetLogger()))
	if err != nil {
		return fmt.Errorf("failed to identify SCC1 on %s: %w", serialPort, err)
	}
	logging.Info("SCC1 ready",
		zap.String("device", dev.String()),
		zap.String("version", dev.FirmwareVersion().String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !noAdvertise {
		instance := "SCC1-" + dev.CachedSerialNumber()
		info := bridge.Info{
			Serial:     dev.CachedSerialNumber(),
			Firmware:   dev.FirmwareVersion().Firmware(),
			SensorType: -1,
		}
		if t, ok := dev.CachedSensorType(); ok {
			info.SensorType = int(t)
		}
		adv, err := bridge.Advertise(instance, listenPort, info)
		if err != nil {
			// the bridge still works with an explicit URL
			logging.Warn("mDNS advertising disabled", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	srv := bridge.NewServer(port, bridge.Config{Host: host, Port: listenPort})
	return srv.Run(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scc1-bridge %s\n", version.Detailed())
	},
}
