package scc1

import "time"

// Command ids understood by the SCC1 bridge.
const (
	// CmdSensorType reads or writes the attached sensor type
	CmdSensorType = 0x24

	// CmdSensorAddress reads or writes the sensor I2C address (EEPROM backed)
	CmdSensorAddress = 0x25

	// CmdI2cScan probes the I2C bus for responding addresses
	CmdI2cScan = 0x29

	// CmdI2cTransceive forwards a raw I2C exchange to the sensor
	CmdI2cTransceive = 0x2A

	// CmdStartContinuousMeasurement starts bridge-driven sampling
	CmdStartContinuousMeasurement = 0x33

	// CmdStopContinuousMeasurement stops bridge-driven sampling
	CmdStopContinuousMeasurement = 0x34

	// CmdGetLastMeasurement reads the most recent sample
	CmdGetLastMeasurement = 0x35

	// CmdReadExtendedBuffer drains the sample buffer
	CmdReadExtendedBuffer = 0x36

	// CmdSensorIdentification reads the sensor product id and serial number
	CmdSensorIdentification = 0x50

	// CmdFlowUnitAndScale reads scale factor and flow unit for a measurement command
	CmdFlowUnitAndScale = 0x53

	// CmdSensorReset performs a hard reset of the attached sensor
	CmdSensorReset = 0x66

	// CmdDeviceInformation reads SHDLC device information strings
	CmdDeviceInformation = 0xD0

	// CmdGetVersion reads firmware, hardware and protocol versions
	CmdGetVersion = 0xD1
)

// Sub-commands of CmdDeviceInformation.
const (
	InfoProductType  = 0x01
	InfoProductName  = 0x02
	InfoSerialNumber = 0x03
)

// Sensor types accepted by SetSensorType.
const (
	// SensorTypeSF04 selects flow sensors based on the SF04 chip
	SensorTypeSF04 = 0
	// SensorTypeSHT selects SHTxx humidity sensors
	SensorTypeSHT = 1
	// SensorTypeSF05 selects flow sensors based on the SF05 chip
	SensorTypeSF05 = 2
	// SensorTypeSF06 selects flow sensors based on the SF06 chip (firmware >= 1.7)
	SensorTypeSF06 = 3
	// SensorTypeReserved is accepted by the bridge but has no assigned sensor
	SensorTypeReserved = 4

	// MaxSensorType is the largest accepted sensor type
	MaxSensorType = SensorTypeReserved

	// MaxI2cAddress is the largest 7-bit I2C address
	MaxI2cAddress = 127
)

// Timeouts used for bridge commands.
const (
	// DefaultTimeout replaces any non-positive timeout passed to Transceive
	DefaultTimeout = 3 * time.Second

	// ReadTimeout is used for configuration reads
	ReadTimeout = 25 * time.Millisecond

	// WriteTimeout is used for configuration writes and data commands
	WriteTimeout = 10 * time.Millisecond

	// ScanTimeout is used for the I2C bus scan
	ScanTimeout = 25 * time.Millisecond

	// ResetTimeout covers the sensor re-initialization after a hard reset
	ResetTimeout = 300 * time.Millisecond

	// I2cTimeout is the default timeout for passthrough exchanges
	I2cTimeout = 10 * time.Millisecond
)

// VersionResponseSize is the data size of the CmdGetVersion response
const VersionResponseSize = 7
