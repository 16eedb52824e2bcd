package slf

import (
	"encoding/binary"
	"testing"

	"github.com/muurk/scc1/internal/scc1"
)

// bufferResponse builds a Read Extended Buffer response
func bufferResponse(lost uint32, remaining, numSignals uint16, values ...int16) []byte {
	data := make([]byte, 8, 8+len(values)*2)
	binary.BigEndian.PutUint32(data[0:4], lost)
	binary.BigEndian.PutUint16(data[4:6], remaining)
	binary.BigEndian.PutUint16(data[6:8], numSignals)
	for _, v := range values {
		data = binary.BigEndian.AppendUint16(data, uint16(v))
	}
	return data
}

func TestParseIdentification(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantProduct uint32
		wantSerial  uint64
		wantErr     bool
	}{
		{
			name:        "plain",
			data:        []byte("00070302000004D2"),
			wantProduct: 0x00070302,
			wantSerial:  0x000004D2,
		},
		{
			name:        "nul padded",
			data:        []byte("0007030300000010\x00\x00\x00"),
			wantProduct: 0x00070303,
			wantSerial:  0x10,
		},
		{
			name:        "lowercase hex",
			data:        []byte("00070102deadbeef"),
			wantProduct: 0x00070102,
			wantSerial:  0xDEADBEEF,
		},
		{name: "invalid utf-8", data: []byte{0xFF, 0xFE, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30}, wantErr: true},
		{name: "no serial", data: []byte("00070302\x00"), wantErr: true},
		{name: "empty", data: []byte{}, wantErr: true},
		{name: "not hex", data: []byte("0007030Z000004D2"), wantErr: true},
		{name: "serial wider than 64 bits", data: []byte("00070302" + "10000000000000000"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentification(tt.data)
			if tt.wantErr {
				if !scc1.IsMalformedResponse(err) {
					t.Errorf("error = %v, want malformed response", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ProductID != tt.wantProduct {
				t.Errorf("ProductID = 0x%08X, want 0x%08X", got.ProductID, tt.wantProduct)
			}
			if got.SerialNumber != tt.wantSerial {
				t.Errorf("SerialNumber = 0x%X, want 0x%X", got.SerialNumber, tt.wantSerial)
			}
		})
	}
}

func TestParseExtendedBuffer(t *testing.T) {
	t.Run("two records", func(t *testing.T) {
		buf, err := ParseExtendedBuffer(bufferResponse(0, 0, 3, 100, 200, 0, 110, 210, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.BytesRemaining != 0 || buf.BytesLost != 0 {
			t.Errorf("counters = (%d, %d), want (0, 0)", buf.BytesRemaining, buf.BytesLost)
		}
		want := [][]int16{{100, 200, 0}, {110, 210, 0}}
		if len(buf.Records) != len(want) {
			t.Fatalf("records = %d, want %d", len(buf.Records), len(want))
		}
		for i := range want {
			for j := range want[i] {
				if buf.Records[i][j] != want[i][j] {
					t.Errorf("record[%d][%d] = %d, want %d", i, j, buf.Records[i][j], want[i][j])
				}
			}
		}
	})

	t.Run("counters and negative values", func(t *testing.T) {
		buf, err := ParseExtendedBuffer(bufferResponse(70000, 12, 3, -5, 4600, -1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.BytesLost != 70000 || buf.BytesRemaining != 12 {
			t.Errorf("counters = (lost %d, remaining %d)", buf.BytesLost, buf.BytesRemaining)
		}
		m := buf.Measurements()
		if len(m) != 1 {
			t.Fatalf("measurements = %d, want 1", len(m))
		}
		if m[0].Flow != -5 || m[0].Temperature != 4600 || m[0].Flags != 0xFFFF {
			t.Errorf("measurement = %+v", m[0])
		}
		if m[0].TemperatureC() != 23 {
			t.Errorf("TemperatureC() = %v, want 23", m[0].TemperatureC())
		}
	})

	t.Run("empty data region", func(t *testing.T) {
		buf, err := ParseExtendedBuffer(bufferResponse(0, 0, 3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(buf.Records) != 0 {
			t.Errorf("records = %d, want 0", len(buf.Records))
		}
	})

	t.Run("other signal count", func(t *testing.T) {
		buf, err := ParseExtendedBuffer(bufferResponse(0, 0, 2, 1, 2, 3, 4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(buf.Records) != 2 || len(buf.Records[1]) != 2 || buf.Records[1][1] != 4 {
			t.Errorf("records = %v", buf.Records)
		}
		if len(buf.Measurements()) != 0 {
			t.Error("Measurements() should skip records with fewer than three signals")
		}
	})

	errorTests := []struct {
		name string
		data []byte
	}{
		{"partial record", bufferResponse(0, 0, 3, 100, 200, 0, 110)},
		{"odd trailing byte", append(bufferResponse(0, 0, 3, 100, 200, 0), 0x01)},
		{"short header", []byte{0, 0, 0, 0, 0}},
		{"zero signals", bufferResponse(0, 0, 0, 1, 2)},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExtendedBuffer(tt.data)
			if !scc1.IsMalformedResponse(err) {
				t.Errorf("error = %v, want malformed response", err)
			}
		})
	}
}

func TestParseMeasurement(t *testing.T) {
	m, err := ParseMeasurement([]byte{0xFF, 0x9C, 0x11, 0x94, 0x00, 0x21})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Flow != -100 || m.Temperature != 4500 || m.Flags != 0x21 {
		t.Errorf("measurement = %+v", m)
	}
	if m.ScaledFlow(500) != -0.2 {
		t.Errorf("ScaledFlow(500) = %v, want -0.2", m.ScaledFlow(500))
	}
	if m.ScaledFlow(0) != -100 {
		t.Errorf("ScaledFlow(0) = %v, want -100", m.ScaledFlow(0))
	}

	if _, err := ParseMeasurement([]byte{0x00, 0x01}); !scc1.IsMalformedResponse(err) {
		t.Errorf("short response error = %v, want malformed response", err)
	}
}
