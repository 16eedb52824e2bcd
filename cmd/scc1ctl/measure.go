package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/logging"
	"github.com/muurk/scc1/internal/slf"
	"github.com/muurk/scc1/internal/ui"
)

var (
	liquidFlag    string
	intervalFlag  int
	countFlag     int
	formatFlag    string
	fullScaleFlag float64
)

func init() {
	rootCmd.AddCommand(measureCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(liquidsCmd)

	for _, c := range []*cobra.Command{measureCmd, monitorCmd} {
		c.Flags().StringVarP(&liquidFlag, "liquid", "l", "", "Liquid mode 0-8 (default from config)")
		c.Flags().IntVarP(&intervalFlag, "interval", "i", 0, "Sampling interval in milliseconds (default from config)")
	}
	measureCmd.Flags().IntVarP(&countFlag, "count", "n", 10, "Number of samples, 0 runs until interrupted")
	measureCmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "Output format (table, csv, json)")
	monitorCmd.Flags().Float64Var(&fullScaleFlag, "full-scale", 0, "Flow shown as a full bar (0 hides the bar)")
}

// measureSettings merges flags with the profile
func measureSettings(cmd *cobra.Command) (slf.Mode, uint16, error) {
	mode := slf.Mode(profile.Sensor.LiquidMode)
	if cmd.Flags().Changed("liquid") {
		m, err := slf.ParseMode(liquidFlag)
		if err != nil {
			return 0, 0, err
		}
		mode = m
	}

	interval := profile.Sensor.IntervalMs
	if cmd.Flags().Changed("interval") {
		interval = intervalFlag
	}
	if interval <= 0 || interval > 0xFFFF {
		return 0, 0, fmt.Errorf("interval %d ms out of range (1-65535)", interval)
	}
	return mode, uint16(interval), nil
}

// startMeasurement opens the sensor and starts sampling. The returned
// cleanup stops the measurement and closes the link.
func startMeasurement(cmd *cobra.Command) (*slf.Slf3x, func(), error) {
	mode, interval, err := measureSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	dev, closeFn, err := openDevice()
	if err != nil {
		return nil, nil, err
	}

	sensor, err := openSensor(dev, mode)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	sensor.SetSamplingIntervalMs(interval)

	if err := sensor.StartDefault(); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to start measurement: %w", err)
	}

	cleanup := func() {
		if err := sensor.StopContinuousMeasurement(); err != nil {
			logging.Warn("Failed to stop measurement", zap.Error(err))
		}
		closeFn()
	}
	return sensor, cleanup, nil
}

type flowUnitReader interface {
	FlowUnitAndScaleActive() (scale, unit uint16, ok bool, err error)
}

// flowUnit returns the scale and unit label of the active liquid mode. When
// the sensor does not report one, a warning goes to warn and raw ticks are used.
func flowUnit(sensor flowUnitReader, warn io.Writer) (uint16, string) {
	scale, unit, ok, err := sensor.FlowUnitAndScaleActive()
	if err == nil && ok {
		return scale, slf.FlowUnitLabel(unit)
	}

	logging.Debug("Flow unit not available, showing raw values", zap.Error(err))
	reason := "not supported by this sensor"
	if err != nil {
		reason = err.Error()
	}
	ui.NewPrinter(warn).PrintWarning("Flow unit not available",
		ui.Param{Key: "Reason", Value: reason},
		ui.Param{Key: "Showing", Value: "raw sensor ticks"},
	)
	return 0, "ticks"
}

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Run a continuous flow measurement and print the samples",
	Example: `  # 10 samples at the configured interval
  scc1ctl measure

  # Log 20 ms samples as CSV until Ctrl+C
  scc1ctl measure --interval 20 --count 0 --format csv > flow.csv

  # Isopropyl alcohol calibration (SLF3S-1300F liquid 2)
  scc1ctl measure --liquid 2`,
	RunE: runMeasure,
}

type sampleWriter interface {
	Write(elapsed time.Duration, s slf.Measurement) error
	Flush() error
}

func newSampleWriter(format string, w io.Writer, scale uint16, unit string) (sampleWriter, error) {
	switch format {
	case "table":
		return &tableWriter{w: w, scale: scale, unit: unit}, nil
	case "csv":
		return &csvWriter{w: csv.NewWriter(w), scale: scale, unit: unit}, nil
	case "json":
		return &jsonWriter{enc: json.NewEncoder(w), scale: scale, unit: unit}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: table, csv, json)", format)
	}
}

func runMeasure(cmd *cobra.Command, args []string) error {
	if countFlag < 0 {
		return fmt.Errorf("count must not be negative")
	}

	sensor, cleanup, err := startMeasurement(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	scale, unit := flowUnit(sensor, os.Stderr)
	out, err := newSampleWriter(formatFlag, os.Stdout, scale, unit)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll := time.Duration(sensor.SamplingIntervalMs()) * time.Millisecond * 5
	if poll < 50*time.Millisecond {
		poll = 50 * time.Millisecond
	}
	start := time.Now()
	period := time.Duration(sensor.SamplingIntervalMs()) * time.Millisecond

	n := 0
	err = collectSamples(ctx, sensor, poll, func(s slf.Measurement) bool {
		if err := out.Write(period*time.Duration(n), s); err != nil {
			logging.Warn("Failed to write sample", zap.Error(err))
		}
		n++
		return countFlag == 0 || n < countFlag
	})
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	logging.Debug("Measurement finished", zap.Int("samples", n), zap.Duration("elapsed", time.Since(start)))
	return err
}

// bufferReader is the part of the driver collectSamples needs
type bufferReader interface {
	ReadExtendedBuffer() (*slf.ExtendedBuffer, error)
}

// collectSamples drains the buffer every poll interval and hands samples to
// fn until fn returns false or ctx is done
func collectSamples(ctx context.Context, src bufferReader, poll time.Duration, fn func(slf.Measurement) bool) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		buf, err := src.ReadExtendedBuffer()
		if err != nil {
			return err
		}
		for _, s := range buf.Measurements() {
			if !fn(s) {
				return nil
			}
		}
	}
}

type tableWriter struct {
	w      io.Writer
	scale  uint16
	unit   string
	header bool
}

func (t *tableWriter) Write(elapsed time.Duration, s slf.Measurement) error {
	if !t.header {
		t.header = true
		if _, err := fmt.Fprintf(t.w, "%10s  %14s  %8s  %6s\n", "t [s]", "flow ["+t.unit+"]", "temp °C", "flags"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(t.w, "%10.3f  %14.3f  %8.2f  0x%04X\n",
		elapsed.Seconds(), s.ScaledFlow(t.scale), s.TemperatureC(), s.Flags)
	return err
}

func (t *tableWriter) Flush() error { return nil }

type csvWriter struct {
	w      *csv.Writer
	scale  uint16
	unit   string
	header bool
}

func (c *csvWriter) Write(elapsed time.Duration, s slf.Measurement) error {
	if !c.header {
		c.header = true
		if err := c.w.Write([]string{"time_s", "flow_" + c.unit, "temperature_c", "flags"}); err != nil {
			return err
		}
	}
	return c.w.Write([]string{
		strconv.FormatFloat(elapsed.Seconds(), 'f', 3, 64),
		strconv.FormatFloat(s.ScaledFlow(c.scale), 'f', -1, 64),
		strconv.FormatFloat(s.TemperatureC(), 'f', 2, 64),
		strconv.Itoa(int(s.Flags)),
	})
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

type jsonSample struct {
	Time        float64 `json:"time_s"`
	Flow        float64 `json:"flow"`
	Unit        string  `json:"unit"`
	Temperature float64 `json:"temperature_c"`
	Flags       uint16  `json:"flags"`
	Raw         int16   `json:"raw_flow"`
}

type jsonWriter struct {
	enc   *json.Encoder
	scale uint16
	unit  string
}

func (j *jsonWriter) Write(elapsed time.Duration, s slf.Measurement) error {
	return j.enc.Encode(jsonSample{
		Time:        elapsed.Seconds(),
		Flow:        s.ScaledFlow(j.scale),
		Unit:        j.unit,
		Temperature: s.TemperatureC(),
		Flags:       s.Flags,
		Raw:         s.Flow,
	})
}

func (j *jsonWriter) Flush() error { return nil }

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show a live flow display",
	Long: `Start a continuous measurement and show the flow, temperature and
running statistics in an interactive screen. Press q to stop the
measurement and quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			return fmt.Errorf("monitor needs a terminal; use 'scc1ctl measure' for piped output")
		}

		sensor, cleanup, err := startMeasurement(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		scale, unit := flowUnit(sensor, os.Stderr)
		name, err := sensor.ProductName()
		if err != nil {
			name = sensor.Identification().String()
		}
		liquid, err := sensor.LiquidModeName()
		if err != nil {
			liquid = sensor.LiquidMode().String()
		}

		stats, err := ui.RunMonitor(sensor, ui.MonitorConfig{
			Title: "Flow Monitor",
			Params: []ui.Param{
				{Key: "Sensor", Value: name},
				{Key: "Liquid", Value: liquid},
				{Key: "Interval", Value: fmt.Sprintf("%d ms", sensor.SamplingIntervalMs())},
			},
			Scale:     scale,
			Unit:      unit,
			FullScale: fullScaleFlag,
		})
		if err != nil {
			return err
		}
		if stats.Count > 0 {
			fmt.Printf("%d samples, mean %.3f %s (min %.3f, max %.3f)\n",
				stats.Count, stats.Mean(), unit, stats.Min, stats.Max)
		}
		return nil
	},
}

var unitCmd = &cobra.Command{
	Use:   "unit RAW",
	Short: "Decode a raw flow unit value",
	Example: `  scc1ctl unit 0x0838
  l/s`,
	Args: cobra.ExactArgs(1),
	// no device access, skip config loading
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return fmt.Errorf("invalid unit %q: expected 0-65535", args[0])
		}
		fmt.Println(slf.FlowUnitLabel(uint16(raw)))
		return nil
	},
}

var liquidsCmd = &cobra.Command{
	Use:   "liquids",
	Short: "List the liquid calibrations of the attached sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeFn, err := openDevice()
		if err != nil {
			return err
		}
		defer closeFn()

		sensor, err := openSensor(dev, slf.Mode(profile.Sensor.LiquidMode))
		if err != nil {
			return err
		}
		name, err := sensor.ProductName()
		if err != nil {
			return err
		}
		fmt.Printf("%s (serial %d)\n", name, sensor.SerialNumber())
		for _, m := range sensor.SupportedLiquidModes() {
			liquid, err := sensor.LiquidName(m)
			if err != nil {
				continue
			}
			fmt.Printf("  %d  %s\n", int(m), liquid)
		}
		return nil
	},
}
