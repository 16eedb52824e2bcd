package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scc1/internal/scc1"
	"github.com/muurk/scc1/internal/slf"
	"github.com/muurk/scc1/internal/ui"
)

var (
	assumeYes bool
	i2cTx     string
	i2cRx     int
	i2cDelay  int
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(i2cScanCmd)
	rootCmd.AddCommand(sensorTypeCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(i2cCmd)

	addressCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	i2cCmd.Flags().StringVar(&i2cTx, "tx", "", "Bytes to write, hex encoded (e.g. 3608)")
	i2cCmd.Flags().IntVar(&i2cRx, "rx", 0, "Number of bytes to read")
	i2cCmd.Flags().IntVar(&i2cDelay, "delay", 0, "Delay between write and read in milliseconds")
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show SCC1 and sensor information",
	Long: `Connect to the SCC1 and display its serial number, firmware, configured
sensor type and address. When an SF06 flow sensor is attached, its product
and serial number are shown as well.`,
	Example: `  scc1ctl info --port /dev/ttyUSB0
  scc1ctl info --bridge ws://192.168.4.16:5200/shdlc`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(os.Stdout)

	dev, closeFn, err := openDevice()
	if err != nil {
		p.PrintError("Connection failed", err, connectTroubleshooting)
		return err
	}
	defer closeFn()

	p.PrintHeader("Device Information", "scc1ctl info", connectionParams(dev)...)

	result := ui.NewSuccessResult(dev.String())
	result.SetWidth(p.Width())
	result.AddDetail("Serial", dev.CachedSerialNumber())
	if name, err := dev.ProductName(); err == nil && name != "" {
		result.AddDetail("Product", name)
	}
	if v := dev.FirmwareVersion(); v != nil {
		result.AddDetail("Version", v.String())
	}
	if t, ok := dev.CachedSensorType(); ok {
		result.AddDetail("Sensor type", sensorTypeName(t))
	} else {
		result.AddDetail("Sensor type", "not configured")
	}
	if a, ok := dev.CachedSensorAddress(); ok {
		result.AddDetail("Sensor address", fmt.Sprintf("0x%02X", a))
	}

	if t, ok := dev.CachedSensorType(); ok && t == slf.SensorType {
		sensor, err := slf.New(dev)
		if err != nil {
			result.AddDetail("Flow sensor", "not responding: "+err.Error())
		} else {
			name, err := sensor.ProductName()
			if err != nil {
				name = fmt.Sprintf("unknown (0x%08X)", sensor.ProductID())
			}
			result.AddDetail("Flow sensor", name)
			result.AddDetail("Sensor serial", fmt.Sprint(sensor.SerialNumber()))
		}
	}

	p.Println(result.Render())
	return nil
}

func sensorTypeName(t byte) string {
	names := map[byte]string{
		scc1.SensorTypeSF04:     "SF04 flow",
		scc1.SensorTypeSHT:      "SHTxx humidity",
		scc1.SensorTypeSF05:     "SF05 flow",
		scc1.SensorTypeSF06:     "SF06 flow",
		scc1.SensorTypeReserved: "reserved",
	}
	if n, ok := names[t]; ok {
		return fmt.Sprintf("%d (%s)", t, n)
	}
	return fmt.Sprintf("%d (unknown)", t)
}

var i2cScanCmd = &cobra.Command{
	Use:   "i2c-scan",
	Short: "List I2C addresses that answer on the sensor bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		addresses, err := dev.FindChips()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(addresses) == 0 {
			fmt.Println("No I2C devices found.")
			return nil
		}

		formatted := make([]string, len(addresses))
		for i, a := range addresses {
			formatted[i] = fmt.Sprintf("0x%02X", a)
		}
		fmt.Printf("Found %d device(s): %s\n", len(addresses), strings.Join(formatted, " "))
		return nil
	},
}

var sensorTypeCmd = &cobra.Command{
	Use:   "sensor-type [TYPE]",
	Short: "Get or set the attached sensor type",
	Long: `Without an argument, print the configured sensor type.
With an argument, configure the SCC1 for that sensor type:

  0  SF04 flow sensors
  1  SHTxx humidity sensors
  2  SF05 flow sensors
  3  SF06 flow sensors (SLF3x, LD20; firmware 1.7 or newer)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		if len(args) == 0 {
			t, ok, err := dev.SensorType()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Sensor type: not configured")
				return nil
			}
			fmt.Printf("Sensor type: %s\n", sensorTypeName(t))
			return nil
		}

		t, err := parseByteArg(args[0])
		if err != nil {
			return err
		}
		if err := dev.SetSensorType(t); err != nil {
			return err
		}
		fmt.Printf("Sensor type set to %s\n", sensorTypeName(t))
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "address [ADDR]",
	Short: "Get or set the sensor I2C address",
	Long: `Without an argument, print the I2C address the SCC1 uses for the sensor.
With an argument (0-127, decimal or 0x prefixed), store a new address.
The address is kept in EEPROM.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		if len(args) == 0 {
			a, ok, err := dev.SensorAddress()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Sensor address: not configured")
				return nil
			}
			fmt.Printf("Sensor address: 0x%02X\n", a)
			return nil
		}

		a, err := parseByteArg(args[0])
		if err != nil {
			return err
		}
		if a > scc1.MaxI2cAddress {
			return scc1.NewInvalidArgumentError("set sensor address",
				fmt.Sprintf("address %d out of range (0-%d)", a, scc1.MaxI2cAddress))
		}
		if !assumeYes && !ui.ConfirmAddressWrite(os.Stdin, os.Stdout, a) {
			return nil
		}
		if err := dev.SetSensorAddress(a); err != nil {
			return err
		}
		fmt.Printf("Sensor address set to 0x%02X\n", a)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Hard reset the attached sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := dev.SensorReset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Println("Sensor reset.")
		return nil
	},
}

var i2cCmd = &cobra.Command{
	Use:   "i2c ADDR",
	Short: "Run a raw I2C exchange through the SCC1",
	Example: `  # Read the SLF3x product identifier (0x367C, then 0xE102)
  scc1ctl i2c 0x08 --tx 367C
  scc1ctl i2c 0x08 --tx E102 --rx 18`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseByteArg(args[0])
		if err != nil {
			return err
		}
		tx, err := hex.DecodeString(strings.ReplaceAll(i2cTx, " ", ""))
		if err != nil {
			return fmt.Errorf("invalid --tx: %w", err)
		}

		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		rx, err := dev.I2cTransceiver().Transceive(addr, tx, i2cRx,
			time.Duration(i2cDelay)*time.Millisecond, scc1.I2cTimeout)
		if err != nil {
			return err
		}
		if i2cRx > 0 {
			fmt.Println(hex.EncodeToString(rx))
		}
		return nil
	},
}
