package scc1

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Transport performs one request/response exchange with the bridge.
//
// Execute sends command with data and returns the deframed response payload.
// A nil or empty result means the bridge answered without data. Link failures
// (timeouts, framing errors) are reported through the error.
type Transport interface {
	Execute(command byte, data []byte, timeout time.Duration) ([]byte, error)
}

// Transceiver is the command-level contract consumed by sensor drivers.
// Device implements it; tests substitute their own.
type Transceiver interface {
	Transceive(command byte, data []byte, timeout time.Duration) ([]byte, error)
}

// namer is implemented by transports that know the name of their link
type namer interface {
	Name() string
}

// Device is the SCC1 bridge.
//
// The cached fields are populated by Open and by the setters. A Device is not
// safe for concurrent use.
type Device struct {
	transport Transport
	logger    *zap.Logger
	portName  string

	version      *Version
	serialNumber string
	sensorType   *byte
	i2cAddress   *byte

	connectedI2cAddresses []byte
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used for exchange tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPortName overrides the link name reported by String.
func WithPortName(name string) Option {
	return func(d *Device) {
		d.portName = name
	}
}

// New creates a Device on top of transport without talking to the bridge.
func New(transport Transport, opts ...Option) *Device {
	if transport == nil {
		panic("transport cannot be nil")
	}

	d := &Device{
		transport: transport,
		logger:    zap.NewNop(),
	}
	if n, ok := transport.(namer); ok {
		d.portName = n.Name()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open creates a Device and reads the version, serial number, sensor type and
// sensor address once. The values stay cached for the lifetime of the Device.
func Open(transport Transport, opts ...Option) (*Device, error) {
	d := New(transport, opts...)

	version, err := d.Version()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	d.version = version

	serial, err := d.SerialNumber()
	if err != nil {
		return nil, fmt.Errorf("read serial number: %w", err)
	}
	d.serialNumber = serial

	if t, ok, err := d.SensorType(); err != nil {
		return nil, fmt.Errorf("read sensor type: %w", err)
	} else if ok {
		d.sensorType = &t
	}

	if addr, ok, err := d.SensorAddress(); err != nil {
		return nil, fmt.Errorf("read sensor address: %w", err)
	} else if ok {
		d.i2cAddress = &addr
	}

	d.logger.Debug("scc1 opened",
		zap.String("serial", d.serialNumber),
		zap.String("firmware", version.Firmware()),
		zap.String("port", d.portName),
	)

	return d, nil
}

// String returns "SCC1-<serial>@<port>".
func (d *Device) String() string {
	return fmt.Sprintf("SCC1-%s@%s", d.serialNumber, d.portName)
}

// PortName returns the name of the underlying link.
func (d *Device) PortName() string {
	return d.portName
}

// CachedSerialNumber returns the serial number read by Open.
func (d *Device) CachedSerialNumber() string {
	return d.serialNumber
}

// FirmwareVersion returns the version read by Open, or nil for a Device created with New.
func (d *Device) FirmwareVersion() *Version {
	return d.version
}

// CachedSensorType returns the last known sensor type.
func (d *Device) CachedSensorType() (byte, bool) {
	if d.sensorType == nil {
		return 0, false
	}
	return *d.sensorType, true
}

// CachedSensorAddress returns the last known sensor I2C address.
func (d *Device) CachedSensorAddress() (byte, bool) {
	if d.i2cAddress == nil {
		return 0, false
	}
	return *d.i2cAddress, true
}

// ConnectedI2cAddresses returns the addresses found by the last FindChips call.
func (d *Device) ConnectedI2cAddresses() []byte {
	return d.connectedI2cAddresses
}

// Transceive sends a single command to the bridge.
//
// A non-positive timeout is replaced by DefaultTimeout. The returned slice is
// never nil; an empty slice means the bridge returned no data. Transport errors
// are returned unchanged.
func (d *Device) Transceive(command byte, data []byte, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d.logger.Debug("transceive",
		zap.String("command", fmt.Sprintf("0x%02X", command)),
		zap.Int("tx_length", len(data)),
		zap.Duration("timeout", timeout),
	)

	result, err := d.transport.Execute(command, data, timeout)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return []byte{}, nil
	}
	return result, nil
}

// SensorType returns the configured sensor type. ok is false if the bridge
// returned no data.
func (d *Device) SensorType() (sensorType byte, ok bool, err error) {
	result, err := d.Transceive(CmdSensorType, nil, ReadTimeout)
	if err != nil {
		return 0, false, err
	}
	if len(result) == 0 {
		return 0, false, nil
	}
	return result[0], true, nil
}

// SetSensorType configures the attached sensor type.
//
//	0: Flow Sensor (SF04 based products)
//	1: Humidity Sensor (SHTxx products)
//	2: Flow Sensor (SF05 based products)
//	3: Flow Sensor (SF06 based products, firmware >= 1.7)
//	4: Reserved
func (d *Device) SetSensorType(sensorType byte) error {
	if sensorType > MaxSensorType {
		return NewInvalidArgumentError("set sensor type",
			fmt.Sprintf("sensor type %d not supported (valid range 0-%d)", sensorType, MaxSensorType))
	}
	if _, err := d.Transceive(CmdSensorType, []byte{sensorType}, WriteTimeout); err != nil {
		return err
	}
	d.sensorType = &sensorType
	return nil
}

// SensorAddress returns the configured sensor I2C address. ok is false if the
// bridge returned no data.
func (d *Device) SensorAddress() (address byte, ok bool, err error) {
	result, err := d.Transceive(CmdSensorAddress, nil, ReadTimeout)
	if err != nil {
		return 0, false, err
	}
	if len(result) == 0 {
		return 0, false, nil
	}
	return result[0], true, nil
}

// SetSensorAddress configures the sensor I2C address. The bridge persists it
// to EEPROM.
func (d *Device) SetSensorAddress(address byte) error {
	if address > MaxI2cAddress {
		return NewInvalidArgumentError("set sensor address",
			fmt.Sprintf("I2C address %d out of range (valid range 0-%d)", address, MaxI2cAddress))
	}
	if _, err := d.Transceive(CmdSensorAddress, []byte{address}, WriteTimeout); err != nil {
		return err
	}
	d.i2cAddress = &address
	return nil
}

// SensorReset performs a hard reset on the sensor. An active continuous
// measurement is stopped by the sensor and it is left idle. Drivers holding
// measurement state should be discarded afterwards.
func (d *Device) SensorReset() error {
	_, err := d.Transceive(CmdSensorReset, nil, ResetTimeout)
	return err
}

// PerformI2cScan returns the addresses that acknowledged on the I2C bus.
func (d *Device) PerformI2cScan() ([]byte, error) {
	result, err := d.Transceive(CmdI2cScan, []byte{0x01}, ScanTimeout)
	if err != nil {
		return nil, err
	}
	addresses := make([]byte, len(result))
	copy(addresses, result)
	return addresses, nil
}

// FindChips scans the bus and caches the result in ConnectedI2cAddresses.
func (d *Device) FindChips() ([]byte, error) {
	addresses, err := d.PerformI2cScan()
	if err != nil {
		return nil, err
	}
	d.connectedI2cAddresses = addresses
	return addresses, nil
}

// SerialNumber reads the bridge serial number.
func (d *Device) SerialNumber() (string, error) {
	return d.deviceInformation(InfoSerialNumber)
}

// ProductName reads the bridge product name.
func (d *Device) ProductName() (string, error) {
	return d.deviceInformation(InfoProductName)
}

func (d *Device) deviceInformation(kind byte) (string, error) {
	result, err := d.Transceive(CmdDeviceInformation, []byte{kind}, ReadTimeout)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(result, 0); i >= 0 {
		result = result[:i]
	}
	return string(result), nil
}

// Version reads firmware, hardware and protocol versions.
func (d *Device) Version() (*Version, error) {
	result, err := d.Transceive(CmdGetVersion, nil, ReadTimeout)
	if err != nil {
		return nil, err
	}
	return ParseVersionResponse(result)
}

// I2cTransceiver returns a passthrough that lets generic I2C sensor drivers
// use the bridge. Throughput is lower than the sensor specific bridge commands.
func (d *Device) I2cTransceiver() *I2cTransceiver {
	return NewI2cTransceiver(d)
}
