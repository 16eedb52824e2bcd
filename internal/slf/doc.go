// Package slf drives Sensirion SLF3x liquid flow sensors attached to an SCC1
// bridge.
//
// The driver talks to the bridge through scc1.Transceiver and never sees the
// link below it.
//
// # Usage Example
//
//	dev, _ := scc1.Open(port)
//	_ = dev.SetSensorType(slf.SensorType)
//
//	sensor, err := slf.New(dev)
//	if err != nil {
//	    return err
//	}
//	scale, unit, _, _ := sensor.FlowUnitAndScaleActive()
//	_ = sensor.StartContinuousMeasurement(20)
//	defer sensor.StopContinuousMeasurement()
//
//	buf, _ := sensor.ReadExtendedBuffer()
//	for _, m := range buf.Measurements() {
//	    fmt.Println(m.ScaledFlow(scale), slf.FlowUnitLabel(unit), m.TemperatureC())
//	}
//
// # Measurement State
//
// A driver starts Idle. StartContinuousMeasurement moves it to Measuring and
// StopContinuousMeasurement back to Idle; repeated calls are no-ops. The
// liquid mode can only change while Idle.
package slf
