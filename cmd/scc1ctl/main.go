// Scc1ctl talks to a Sensirion SCC1 sensor cable and the flow sensor behind it.
//
// The SCC1 is reached either on a local serial port (SHDLC) or through an
// scc1-bridge server on the network. Connection defaults come from the
// profile written by 'scc1ctl config init'; flags override them.
//
// Usage:
//
//	scc1ctl [command] [flags]
//
// See 'scc1ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/scc1/internal/config"
	"github.com/muurk/scc1/internal/logging"
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

// Connection flags, persistent on root
var (
	portFlag   string
	baudFlag   int
	slaveFlag  uint8
	bridgeFlag string
	serialFlag string
	logLevel   string
)

// profile is loaded before every command and merged with the flags
var profile *config.Profile

var rootCmd = &cobra.Command{
	Use:   "scc1ctl",
	Short: "SCC1 Sensor Cable Utility",
	Long: `A command line utility for the Sensirion SCC1 sensor cable.

Reads bridge information, configures the attached sensor and runs
continuous flow measurements with SLF3x liquid flow sensors.

The SCC1 is reached on a local serial port (--port) or through an
scc1-bridge server (--bridge, or --bridge-serial to find it via mDNS).
Without either, the first FTDI port is used.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}

		p, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, p)
		profile = p
		return nil
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Serial port of the SCC1 (e.g. /dev/ttyUSB0)")
	rootCmd.PersistentFlags().IntVar(&baudFlag, "baud", 115200, "SHDLC baud rate")
	rootCmd.PersistentFlags().Uint8Var(&slaveFlag, "slave", 0, "SHDLC slave address")
	rootCmd.PersistentFlags().StringVar(&bridgeFlag, "bridge", "", "scc1-bridge URL (e.g. ws://192.168.4.16:5200/shdlc)")
	rootCmd.PersistentFlags().StringVar(&serialFlag, "bridge-serial", "", "Find the scc1-bridge serving this SCC1 serial number via mDNS")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default from SCC1_LOG_LEVEL")

	rootCmd.AddCommand(versionCmd)
}

// applyFlags lets explicitly given flags override the profile
func applyFlags(cmd *cobra.Command, p *config.Profile) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		p.Connection.Port = portFlag
		p.Connection.BridgeURL = ""
		p.Connection.BridgeSerial = ""
	}
	if flags.Changed("baud") {
		p.Connection.BaudRate = baudFlag
	}
	if flags.Changed("slave") {
		p.Connection.SlaveAddress = slaveFlag
	}
	if flags.Changed("bridge-serial") {
		p.Connection.BridgeSerial = serialFlag
		p.Connection.BridgeURL = ""
	}
	if flags.Changed("bridge") {
		p.Connection.BridgeURL = bridgeFlag
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scc1ctl %s\n", version.Detailed())
	},
}
