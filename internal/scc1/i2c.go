package scc1

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// I2cHeaderSize is the size of the passthrough envelope header
const I2cHeaderSize = 5

// RxTx describes one exchange of an I2C sensor driver. The driver knows how to
// interpret its own response; the passthrough only moves bytes.
type RxTx interface {
	// TxData returns the bytes to write, or nil for a read only exchange
	TxData() []byte

	// RxLength returns the number of bytes to read (0 for write only)
	RxLength() int

	// ReadDelay returns the time between write and read
	ReadDelay() time.Duration

	// InterpretResponse splits the raw response into the command's fields
	InterpretResponse(data []byte) (any, error)
}

// I2cTransceiver forwards raw I2C exchanges through the bridge.
type I2cTransceiver struct {
	device Transceiver
}

// NewI2cTransceiver wraps a bridge for I2C passthrough.
func NewI2cTransceiver(device Transceiver) *I2cTransceiver {
	return &I2cTransceiver{device: device}
}

// Execute runs rxTx against slaveAddress and returns the interpreted response.
func (t *I2cTransceiver) Execute(slaveAddress byte, rxTx RxTx) (any, error) {
	data, err := t.Transceive(slaveAddress, rxTx.TxData(), rxTx.RxLength(), rxTx.ReadDelay(), I2cTimeout)
	if err != nil {
		return nil, err
	}
	return rxTx.InterpretResponse(data)
}

// Transceive writes txData to slaveAddress, waits readDelay and reads rxLength
// bytes. Either direction may be empty. The result is empty when rxLength is 0
// or the bridge returned nothing.
func (t *I2cTransceiver) Transceive(slaveAddress byte, txData []byte, rxLength int,
	readDelay, timeout time.Duration) ([]byte, error) {
	payload, err := BuildI2cPayload(slaveAddress, txData, rxLength, readDelay)
	if err != nil {
		return nil, err
	}

	result, err := t.device.Transceive(CmdI2cTransceive, payload, timeout)
	if err != nil {
		return nil, err
	}
	if rxLength == 0 || len(result) == 0 {
		return []byte{}, nil
	}
	return result, nil
}

// BuildI2cPayload constructs the passthrough envelope.
//
// Payload structure:
//
//	[SLAVE_ADDR][TX_LEN][RX_LEN][DELAY_MS_H][DELAY_MS_L][TX_DATA...]
//
// The read delay is rounded to whole milliseconds.
func BuildI2cPayload(slaveAddress byte, txData []byte, rxLength int, readDelay time.Duration) ([]byte, error) {
	const op = "i2c transceive"

	if len(txData) > math.MaxUint8 {
		return nil, NewInvalidArgumentError(op,
			fmt.Sprintf("tx data length %d exceeds maximum %d bytes", len(txData), math.MaxUint8))
	}
	if rxLength < 0 || rxLength > math.MaxUint8 {
		return nil, NewInvalidArgumentError(op,
			fmt.Sprintf("rx length %d out of range (valid range 0-%d)", rxLength, math.MaxUint8))
	}
	delayMs := readDelay.Round(time.Millisecond).Milliseconds()
	if delayMs < 0 || delayMs > math.MaxUint16 {
		return nil, NewInvalidArgumentError(op,
			fmt.Sprintf("read delay %v out of range", readDelay))
	}

	payload := make([]byte, I2cHeaderSize, I2cHeaderSize+len(txData))
	payload[0] = slaveAddress
	payload[1] = byte(len(txData))
	payload[2] = byte(rxLength)
	binary.BigEndian.PutUint16(payload[3:5], uint16(delayMs))
	payload = append(payload, txData...)

	return payload, nil
}
