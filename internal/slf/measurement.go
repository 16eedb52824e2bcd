package slf

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muurk/scc1/internal/scc1"
)

const (
	// MeasurementSize is the size of a Get Last Measurement response
	MeasurementSize = 6

	// ExtendedBufferHeaderSize is the size of the Read Extended Buffer header
	ExtendedBufferHeaderSize = 8

	// FlowUnitAndScaleSize is the size of a supported Flow Unit and Scale response
	FlowUnitAndScaleSize = 6

	// TemperatureScale converts raw temperature to degrees Celsius
	TemperatureScale = 200.0

	productIDChars = 8
)

// Identification is the sensor identity read at driver construction.
type Identification struct {
	ProductID    uint32
	SerialNumber uint64
}

func (id Identification) String() string {
	return fmt.Sprintf("product 0x%08X serial %d", id.ProductID, id.SerialNumber)
}

// ParseIdentification decodes the Identify response.
//
// Response format (ASCII hex, NUL padded):
//
//	PPPPPPPP SSSS...
//	product  serial
//
// The serial number must fit in 64 bits; longer serial strings are reported
// as MalformedResponse.
func ParseIdentification(data []byte) (Identification, error) {
	const op = "identify"

	trimmed := strings.TrimRight(string(data), "\x00")
	if !utf8.ValidString(trimmed) {
		return Identification{}, scc1.NewMalformedResponseError(op, "identification is not valid UTF-8", nil)
	}
	if len(trimmed) <= productIDChars {
		return Identification{}, scc1.NewMalformedResponseError(op,
			fmt.Sprintf("identification %q too short", trimmed), nil)
	}

	productID, err := strconv.ParseUint(trimmed[:productIDChars], 16, 32)
	if err != nil {
		return Identification{}, scc1.NewMalformedResponseError(op, "invalid product id", err)
	}
	serial, err := strconv.ParseUint(trimmed[productIDChars:], 16, 64)
	if err != nil {
		return Identification{}, scc1.NewMalformedResponseError(op, "invalid serial number", err)
	}

	return Identification{ProductID: uint32(productID), SerialNumber: serial}, nil
}

// Measurement is one sample as reported by the sensor.
type Measurement struct {
	Flow        int16
	Temperature int16
	Flags       uint16
}

// ScaledFlow returns the flow in the unit reported by FlowUnitAndScale.
func (m Measurement) ScaledFlow(scale uint16) float64 {
	if scale == 0 {
		return float64(m.Flow)
	}
	return float64(m.Flow) / float64(scale)
}

// TemperatureC returns the temperature in degrees Celsius.
func (m Measurement) TemperatureC() float64 {
	return float64(m.Temperature) / TemperatureScale
}

// ParseMeasurement decodes a Get Last Measurement response.
//
// Response format:
//
//	[FLOW_H][FLOW_L][TEMP_H][TEMP_L][FLAGS_H][FLAGS_L]
func ParseMeasurement(data []byte) (*Measurement, error) {
	if len(data) < MeasurementSize {
		return nil, scc1.NewMalformedResponseError("last measurement",
			fmt.Sprintf("response too short: %d bytes (expected %d)", len(data), MeasurementSize), nil)
	}
	return &Measurement{
		Flow:        int16(binary.BigEndian.Uint16(data[0:2])),
		Temperature: int16(binary.BigEndian.Uint16(data[2:4])),
		Flags:       binary.BigEndian.Uint16(data[4:6]),
	}, nil
}

// ExtendedBuffer is the result of one Read Extended Buffer call. The counters
// describe the device queue at the time of the read.
type ExtendedBuffer struct {
	BytesLost      uint32
	BytesRemaining uint16
	NumSignals     uint16
	Records        [][]int16
}

// Measurements interprets records as (flow, temperature, flags) samples.
// Records with fewer than three signals are skipped.
func (b *ExtendedBuffer) Measurements() []Measurement {
	out := make([]Measurement, 0, len(b.Records))
	for _, r := range b.Records {
		if len(r) < 3 {
			continue
		}
		out = append(out, Measurement{Flow: r[0], Temperature: r[1], Flags: uint16(r[2])})
	}
	return out
}

// ParseExtendedBuffer decodes a Read Extended Buffer response.
//
// Response format:
//
//	[LOST (4)][REMAINING (2)][NUM_SIGNALS (2)][SIGNAL (2)]...
//
// The signal region holds whole records of NUM_SIGNALS big-endian int16 values.
func ParseExtendedBuffer(data []byte) (*ExtendedBuffer, error) {
	const op = "read extended buffer"

	if len(data) < ExtendedBufferHeaderSize {
		return nil, scc1.NewMalformedResponseError(op,
			fmt.Sprintf("header too short: %d bytes", len(data)), nil)
	}

	buf := &ExtendedBuffer{
		BytesLost:      binary.BigEndian.Uint32(data[0:4]),
		BytesRemaining: binary.BigEndian.Uint16(data[4:6]),
		NumSignals:     binary.BigEndian.Uint16(data[6:8]),
	}
	if buf.NumSignals == 0 {
		return nil, scc1.NewMalformedResponseError(op, "signal count is zero", nil)
	}

	payload := data[ExtendedBufferHeaderSize:]
	recordSize := int(buf.NumSignals) * 2
	numPackets := len(payload) / recordSize
	if numPackets*recordSize != len(payload) {
		return nil, scc1.NewMalformedResponseError(op, "unexpected amount of data", nil)
	}

	buf.Records = make([][]int16, numPackets)
	for i := range buf.Records {
		record := make([]int16, buf.NumSignals)
		base := i * recordSize
		for j := range record {
			off := base + j*2
			record[j] = int16(binary.BigEndian.Uint16(payload[off : off+2]))
		}
		buf.Records[i] = record
	}

	return buf, nil
}
