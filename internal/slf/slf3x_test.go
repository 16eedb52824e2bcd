package slf

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/muurk/scc1/internal/scc1"
)

type exchange struct {
	command byte
	data    []byte
	timeout time.Duration
}

// fakeBridge answers Transceive calls per command and records them
type fakeBridge struct {
	exchanges []exchange
	responses map[byte][]byte
	errs      map[byte]error
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		responses: map[byte][]byte{
			scc1.CmdSensorIdentification: []byte("00070302000004D2\x00\x00"),
		},
		errs: map[byte]error{},
	}
}

func (f *fakeBridge) Transceive(command byte, data []byte, timeout time.Duration) ([]byte, error) {
	f.exchanges = append(f.exchanges, exchange{command: command, data: append([]byte(nil), data...), timeout: timeout})
	if err := f.errs[command]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[command]; ok {
		return resp, nil
	}
	return []byte{}, nil
}

func (f *fakeBridge) count(command byte) int {
	n := 0
	for _, e := range f.exchanges {
		if e.command == command {
			n++
		}
	}
	return n
}

func (f *fakeBridge) last() exchange {
	return f.exchanges[len(f.exchanges)-1]
}

func newTestSensor(t *testing.T, bridge *fakeBridge, opts ...Option) (*Slf3x, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	opts = append(opts, WithSleep(func(d time.Duration) { slept = append(slept, d) }))
	s, err := New(bridge, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, &slept
}

func TestNewReadsIdentificationOnce(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)

	if s.ProductID() != 0x00070302 || s.SerialNumber() != 1234 {
		t.Errorf("identification = %+v", s.Identification())
	}
	if name, err := s.ProductName(); err != nil || name != "SLF3S_1300" {
		t.Errorf("ProductName() = %q, %v", name, err)
	}
	if p, err := s.Product(); err != nil || p != ProductSlf3x {
		t.Errorf("Product() = %v, %v", p, err)
	}

	_ = s.SerialNumber()
	_ = s.ProductID()
	if n := bridge.count(scc1.CmdSensorIdentification); n != 1 {
		t.Errorf("identify exchanges = %d, want 1", n)
	}
	e := bridge.exchanges[0]
	if len(e.data) != 0 || e.timeout != CommandTimeout {
		t.Errorf("identify exchange = %+v", e)
	}
	if s.State() != Idle || s.LiquidMode() != Liqui1 || s.MeasurementCommand() != 0x3608 {
		t.Errorf("initial state = %v, mode %v, command 0x%04X", s.State(), s.LiquidMode(), s.MeasurementCommand())
	}
	if s.SamplingIntervalMs() != DefaultSamplingIntervalMs {
		t.Errorf("SamplingIntervalMs() = %d", s.SamplingIntervalMs())
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("transport error propagates", func(t *testing.T) {
		bridge := newFakeBridge()
		linkErr := errors.New("timeout")
		bridge.errs[scc1.CmdSensorIdentification] = linkErr
		if _, err := New(bridge); !errors.Is(err, linkErr) {
			t.Errorf("error = %v, want %v", err, linkErr)
		}
	})

	t.Run("malformed identification", func(t *testing.T) {
		bridge := newFakeBridge()
		bridge.responses[scc1.CmdSensorIdentification] = []byte{0xC3, 0x28}
		if _, err := New(bridge); !scc1.IsMalformedResponse(err) {
			t.Errorf("error = %v, want malformed response", err)
		}
	})

	t.Run("invalid liquid mode option", func(t *testing.T) {
		bridge := newFakeBridge()
		if _, err := New(bridge, WithLiquidMode(Mode(12))); !scc1.IsInvalidArgument(err) {
			t.Errorf("error = %v, want invalid argument", err)
		}
		if len(bridge.exchanges) != 0 {
			t.Errorf("exchanges = %d, want 0", len(bridge.exchanges))
		}
	})
}

func TestStartContinuousMeasurement(t *testing.T) {
	bridge := newFakeBridge()
	s, slept := newTestSensor(t, bridge, WithLiquidMode(Liqui2))

	if err := s.StartContinuousMeasurement(20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := bridge.last()
	if e.command != scc1.CmdStartContinuousMeasurement {
		t.Fatalf("command = 0x%02X", e.command)
	}
	want := []byte{0x00, 0x14, 0x36, 0x15}
	if !bytes.Equal(e.data, want) {
		t.Errorf("payload = % X, want % X", e.data, want)
	}
	if len(*slept) != 1 || (*slept)[0] != StartSettleDelay {
		t.Errorf("settle sleeps = %v, want [%v]", *slept, StartSettleDelay)
	}
	if !s.IsMeasuring() {
		t.Error("state should be measuring")
	}

	// second start is a no-op
	if err := s.StartContinuousMeasurement(50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := bridge.count(scc1.CmdStartContinuousMeasurement); n != 1 {
		t.Errorf("start exchanges = %d, want 1", n)
	}
}

func TestStartFailureStaysIdle(t *testing.T) {
	bridge := newFakeBridge()
	s, slept := newTestSensor(t, bridge)
	bridge.errs[scc1.CmdStartContinuousMeasurement] = errors.New("nack")

	if err := s.StartContinuousMeasurement(100); err == nil {
		t.Fatal("expected error")
	}
	if s.IsMeasuring() {
		t.Error("state should stay idle after a failed start")
	}
	if len(*slept) != 0 {
		t.Error("settle delay should not elapse after a failed start")
	}
}

func TestStartDefault(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)
	s.SetSamplingIntervalMs(2)

	if err := s.StartDefault(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(bridge.last().data, []byte{0x00, 0x02, 0x36, 0x08}) {
		t.Errorf("payload = % X", bridge.last().data)
	}
}

func TestStopContinuousMeasurement(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)

	if err := s.StopContinuousMeasurement(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := bridge.count(scc1.CmdStopContinuousMeasurement); n != 0 {
		t.Errorf("stop on idle issued %d exchanges", n)
	}

	_ = s.StartContinuousMeasurement(100)
	if err := s.StopContinuousMeasurement(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := bridge.count(scc1.CmdStopContinuousMeasurement); n != 1 {
		t.Errorf("stop exchanges = %d, want 1", n)
	}
	if len(bridge.last().data) != 0 {
		t.Errorf("stop payload = % X, want empty", bridge.last().data)
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}
}

func TestSetLiquidMode(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)

	if err := s.SetLiquidMode(Liqui2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MeasurementCommand() != 0x3615 {
		t.Errorf("command = 0x%04X, want 0x3615", s.MeasurementCommand())
	}

	_ = s.StartContinuousMeasurement(100)
	exchanges := len(bridge.exchanges)

	err := s.SetLiquidMode(Liqui1)
	if !scc1.IsUnsupportedOperation(err) {
		t.Fatalf("error = %v, want unsupported operation", err)
	}
	if s.LiquidMode() != Liqui2 || s.MeasurementCommand() != 0x3615 {
		t.Errorf("mode changed while measuring: %v 0x%04X", s.LiquidMode(), s.MeasurementCommand())
	}
	if len(bridge.exchanges) != exchanges {
		t.Error("rejected mode change issued an exchange")
	}

	if err := s.SetLiquidMode(Mode(-1)); !scc1.IsInvalidArgument(err) {
		t.Errorf("error = %v, want invalid argument", err)
	}
}

func TestLiquidModeName(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)

	if name, err := s.LiquidModeName(); err != nil || name != "Water" {
		t.Errorf("LiquidModeName() = %q, %v", name, err)
	}
	if _, err := s.LiquidName(Liqui5); !scc1.IsInvalidArgument(err) {
		t.Errorf("LiquidName(Liqui5) error = %v, want invalid argument", err)
	}
	if modes := s.SupportedLiquidModes(); len(modes) != 2 {
		t.Errorf("SupportedLiquidModes() = %v", modes)
	}
}

func TestFlowUnitAndScale(t *testing.T) {
	tests := []struct {
		name      string
		response  []byte
		wantOK    bool
		wantScale uint16
		wantUnit  uint16
	}{
		{"supported", []byte{0x01, 0xF4, 0x08, 0x45, 0x00, 0x00}, true, 500, 0x0845},
		{"unsupported empty", []byte{}, false, 0, 0},
		{"unsupported length", []byte{0x01, 0xF4, 0x08, 0x45}, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := newFakeBridge()
			bridge.responses[scc1.CmdFlowUnitAndScale] = tt.response
			s, _ := newTestSensor(t, bridge)

			scale, unit, ok, err := s.FlowUnitAndScaleActive()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || scale != tt.wantScale || unit != tt.wantUnit {
				t.Errorf("got (%d, 0x%04X, %v), want (%d, 0x%04X, %v)",
					scale, unit, ok, tt.wantScale, tt.wantUnit, tt.wantOK)
			}
			if !bytes.Equal(bridge.last().data, []byte{0x36, 0x08}) {
				t.Errorf("payload = % X, want 36 08", bridge.last().data)
			}
		})
	}

	t.Run("explicit command", func(t *testing.T) {
		bridge := newFakeBridge()
		s, _ := newTestSensor(t, bridge)
		_, _, _, _ = s.FlowUnitAndScale(0x3646)
		if !bytes.Equal(bridge.last().data, []byte{0x36, 0x46}) {
			t.Errorf("payload = % X, want 36 46", bridge.last().data)
		}
	})
}

func TestLastMeasurement(t *testing.T) {
	bridge := newFakeBridge()
	s, _ := newTestSensor(t, bridge)

	m, err := s.LastMeasurement()
	if err != nil || m != nil {
		t.Errorf("LastMeasurement() = %+v, %v; want nil, nil", m, err)
	}
	if !bytes.Equal(bridge.last().data, []byte{SensorType}) {
		t.Errorf("payload = % X, want [03]", bridge.last().data)
	}

	bridge.responses[scc1.CmdGetLastMeasurement] = []byte{0x00, 0x64, 0x13, 0x88, 0x00, 0x01}
	m, err = s.LastMeasurement()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Flow != 100 || m.Temperature != 5000 || m.Flags != 1 {
		t.Errorf("measurement = %+v", m)
	}
}

func TestReadExtendedBuffer(t *testing.T) {
	bridge := newFakeBridge()
	bridge.responses[scc1.CmdReadExtendedBuffer] = bufferResponse(0, 0, 3, 100, 200, 0, 110, 210, 0)
	s, _ := newTestSensor(t, bridge)

	buf, err := s.ReadExtendedBuffer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf.Records) != 2 || buf.Records[1][0] != 110 {
		t.Errorf("records = %v", buf.Records)
	}
	e := bridge.last()
	if e.command != scc1.CmdReadExtendedBuffer || !bytes.Equal(e.data, []byte{SensorType}) {
		t.Errorf("exchange = %+v", e)
	}

	bridge.responses[scc1.CmdReadExtendedBuffer] = bufferResponse(0, 0, 3, 1, 2)
	if _, err := s.ReadExtendedBuffer(); !scc1.IsMalformedResponse(err) {
		t.Errorf("error = %v, want malformed response", err)
	}
}
