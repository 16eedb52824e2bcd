package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scc1/internal/discovery"
)

var scanTimeout int

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (default from config)")
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List local serial ports",
	Long: `List the serial ports of this computer. The SCC1 uses an FTDI USB
converter; such ports are marked with *.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := discovery.ListSerialPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found.")
			return nil
		}
		for _, p := range ports {
			marker := " "
			if p.IsFTDI() {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, p)
		}
		return nil
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find scc1-bridge servers on the network",
	Long: `Find scc1-bridge servers using mDNS/DNS-SD discovery (_scc1._tcp).

Each bridge is listed with the serial number and firmware of its SCC1
and the URL to pass to --bridge.`,
	Example: `  scc1ctl discover
  scc1ctl discover --timeout 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := profile.Preferences.DiscoverTimeout
		if scanTimeout > 0 {
			timeout = scanTimeout
		}
		fmt.Printf("Scanning for SCC1 bridges (timeout: %ds)...\n\n", timeout)

		bridges, err := discovery.ScanForBridges(time.Duration(timeout) * time.Second)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if len(bridges) == 0 {
			fmt.Println("No bridges found.")
			fmt.Println("\nTroubleshooting:")
			fmt.Println("  - Ensure scc1-bridge is running with advertising enabled")
			fmt.Println("  - Check that this computer is on the same network segment")
			fmt.Println("  - Allow mDNS (UDP port 5353) through the firewall")
			fmt.Println("  - Try increasing --timeout")
			return nil
		}

		fmt.Printf("Found %d bridge(s):\n\n", len(bridges))
		for i, b := range bridges {
			fmt.Printf("%d. %s\n", i+1, b.Instance)
			fmt.Printf("   Serial:   %s\n", b.Serial)
			fmt.Printf("   Firmware: %s\n", b.Firmware)
			if st := bridgeSensorType(b); st != "" {
				fmt.Printf("   Sensor:   %s\n", st)
			}
			fmt.Printf("   URL:      %s\n\n", b.URL())
		}
		fmt.Println("Use 'scc1ctl info --bridge <url>' to connect")
		return nil
	},
}

// bridgeSensorType describes the sensor type a bridge advertises, empty when
// the bridge publishes none
func bridgeSensorType(b *discovery.Bridge) string {
	raw := b.GetMetadata("sensor_type")
	if raw == "" {
		return ""
	}
	t, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return raw
	}
	return sensorTypeName(byte(t))
}
