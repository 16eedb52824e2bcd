package slf

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/scc1"
)

const (
	// SensorType is the SCC1 sensor type tag for SLF3x (SF06 based) sensors
	SensorType = scc1.SensorTypeSF06

	// CommandTimeout is used for every driver command
	CommandTimeout = 10 * time.Millisecond

	// StartSettleDelay must elapse after starting before the buffer holds data
	StartSettleDelay = 15 * time.Millisecond

	// DefaultSamplingIntervalMs is 10 Hz
	DefaultSamplingIntervalMs = 100
)

// State is the continuous measurement state of a driver
type State int

const (
	Idle State = iota
	Measuring
)

func (s State) String() string {
	if s == Measuring {
		return "measuring"
	}
	return "idle"
}

// Slf3x drives an SLF3x liquid flow sensor through the sensor specific SCC1
// commands.
//
// Identification is read once by New. A Slf3x is not safe for concurrent use;
// wrap it in a mutex if several goroutines share it.
type Slf3x struct {
	dev    scc1.Transceiver
	logger *zap.Logger
	sleep  func(time.Duration)

	ident              Identification
	state              State
	liquidMode         Mode
	measurementCommand uint16
	samplingIntervalMs uint16
}

// Option configures a Slf3x
type Option func(*Slf3x)

// WithLogger sets the driver logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Slf3x) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLiquidMode sets the initial liquid mode (default Liqui1).
func WithLiquidMode(mode Mode) Option {
	return func(s *Slf3x) {
		s.liquidMode = mode
	}
}

// WithSleep replaces time.Sleep for the start settle delay.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Slf3x) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// New creates a driver and reads the sensor identification.
func New(dev scc1.Transceiver, opts ...Option) (*Slf3x, error) {
	s := &Slf3x{
		dev:                dev,
		logger:             zap.NewNop(),
		sleep:              time.Sleep,
		liquidMode:         Liqui1,
		samplingIntervalMs: DefaultSamplingIntervalMs,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.liquidMode.Valid() {
		return nil, scc1.NewInvalidArgumentError("create slf3x",
			fmt.Sprintf("invalid liquid mode %d", int(s.liquidMode)))
	}
	s.measurementCommand = s.liquidMode.MeasurementCommand()

	data, err := dev.Transceive(scc1.CmdSensorIdentification, nil, CommandTimeout)
	if err != nil {
		return nil, err
	}
	ident, err := ParseIdentification(data)
	if err != nil {
		return nil, err
	}
	s.ident = ident

	s.logger.Debug("slf3x identified",
		zap.String("product_id", fmt.Sprintf("0x%08X", ident.ProductID)),
		zap.Uint64("serial", ident.SerialNumber),
	)
	return s, nil
}

// SerialNumber returns the cached sensor serial number.
func (s *Slf3x) SerialNumber() uint64 { return s.ident.SerialNumber }

// ProductID returns the cached sensor product id.
func (s *Slf3x) ProductID() uint32 { return s.ident.ProductID }

// Identification returns the cached identification.
func (s *Slf3x) Identification() Identification { return s.ident }

// Product returns the family of the attached sensor.
func (s *Slf3x) Product() (Product, error) {
	return ProductFromID(s.ident.ProductID)
}

// ProductName returns the model name of the attached sensor.
func (s *Slf3x) ProductName() (string, error) {
	return ProductName(s.ident.ProductID)
}

// State returns Idle or Measuring.
func (s *Slf3x) State() State { return s.state }

// IsMeasuring reports whether a continuous measurement is running.
func (s *Slf3x) IsMeasuring() bool { return s.state == Measuring }

// LiquidMode returns the active liquid mode.
func (s *Slf3x) LiquidMode() Mode { return s.liquidMode }

// MeasurementCommand returns the sensor command for the active liquid mode.
func (s *Slf3x) MeasurementCommand() uint16 { return s.measurementCommand }

// SetLiquidMode changes the liquid calibration. It fails while measuring and
// leaves the active mode untouched.
func (s *Slf3x) SetLiquidMode(mode Mode) error {
	if !mode.Valid() {
		return scc1.NewInvalidArgumentError("set liquid mode",
			fmt.Sprintf("invalid liquid mode %d", int(mode)))
	}
	if s.state == Measuring {
		return scc1.NewUnsupportedOperationError("set liquid mode",
			"not allowed while measurement is running")
	}
	s.liquidMode = mode
	s.measurementCommand = mode.MeasurementCommand()
	return nil
}

// LiquidModeName returns the display name of the active liquid mode.
func (s *Slf3x) LiquidModeName() (string, error) {
	return s.LiquidName(s.liquidMode)
}

// LiquidName returns the display name of mode for SLF3x sensors.
func (s *Slf3x) LiquidName(mode Mode) (string, error) {
	return LiquidName(ProductSlf3x, mode)
}

// SupportedLiquidModes returns the calibrations available on SLF3x sensors.
func (s *Slf3x) SupportedLiquidModes() []Mode {
	return SupportedLiquidModes(ProductSlf3x)
}

// SamplingIntervalMs returns the interval used by StartDefault.
func (s *Slf3x) SamplingIntervalMs() uint16 { return s.samplingIntervalMs }

// SetSamplingIntervalMs sets the interval used by StartDefault. A running
// measurement keeps its interval.
func (s *Slf3x) SetSamplingIntervalMs(ms uint16) { s.samplingIntervalMs = ms }

// FlowUnitAndScale returns the scale factor and raw flow unit for command.
// ok is false when the product does not support the query.
func (s *Slf3x) FlowUnitAndScale(command uint16) (scale, unit uint16, ok bool, err error) {
	payload := binary.BigEndian.AppendUint16(nil, command)
	data, err := s.dev.Transceive(scc1.CmdFlowUnitAndScale, payload, CommandTimeout)
	if err != nil {
		return 0, 0, false, err
	}
	if len(data) != FlowUnitAndScaleSize {
		return 0, 0, false, nil
	}
	scale = binary.BigEndian.Uint16(data[0:2])
	unit = binary.BigEndian.Uint16(data[2:4])
	return scale, unit, true, nil
}

// FlowUnitAndScaleActive queries the active measurement command.
func (s *Slf3x) FlowUnitAndScaleActive() (scale, unit uint16, ok bool, err error) {
	return s.FlowUnitAndScale(s.measurementCommand)
}

// StartContinuousMeasurement starts sampling every intervalMs milliseconds.
// It does nothing if a measurement is already running.
//
// Payload structure:
//
//	[INTERVAL_H][INTERVAL_L][COMMAND_H][COMMAND_L]
func (s *Slf3x) StartContinuousMeasurement(intervalMs uint16) error {
	if s.state == Measuring {
		return nil
	}

	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload[0:2], intervalMs)
	binary.BigEndian.PutUint16(payload[2:4], s.measurementCommand)

	if _, err := s.dev.Transceive(scc1.CmdStartContinuousMeasurement, payload, CommandTimeout); err != nil {
		return err
	}
	s.sleep(StartSettleDelay)
	s.state = Measuring

	s.logger.Debug("measurement started",
		zap.Uint16("interval_ms", intervalMs),
		zap.String("mode", s.liquidMode.String()),
	)
	return nil
}

// StartDefault starts a measurement with SamplingIntervalMs.
func (s *Slf3x) StartDefault() error {
	return s.StartContinuousMeasurement(s.samplingIntervalMs)
}

// StopContinuousMeasurement stops a running measurement. It does nothing when idle.
func (s *Slf3x) StopContinuousMeasurement() error {
	if s.state == Idle {
		return nil
	}
	if _, err := s.dev.Transceive(scc1.CmdStopContinuousMeasurement, nil, CommandTimeout); err != nil {
		return err
	}
	s.state = Idle
	s.logger.Debug("measurement stopped")
	return nil
}

// LastMeasurement returns the most recent sample, or nil if none is ready yet.
func (s *Slf3x) LastMeasurement() (*Measurement, error) {
	data, err := s.dev.Transceive(scc1.CmdGetLastMeasurement, []byte{SensorType}, CommandTimeout)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return ParseMeasurement(data)
}

// ReadExtendedBuffer drains samples queued by a continuous measurement.
func (s *Slf3x) ReadExtendedBuffer() (*ExtendedBuffer, error) {
	data, err := s.dev.Transceive(scc1.CmdReadExtendedBuffer, []byte{SensorType}, CommandTimeout)
	if err != nil {
		return nil, err
	}
	buf, err := ParseExtendedBuffer(data)
	if err != nil {
		return nil, err
	}
	if buf.BytesLost > 0 {
		s.logger.Warn("extended buffer overflow", zap.Uint32("bytes_lost", buf.BytesLost))
	}
	return buf, nil
}
