// Package ui provides terminal UI components for the scc1ctl CLI.
//
// This package uses Bubble Tea and Lipgloss. Most commands follow a
// "run once and exit" pattern through Printer: a Header describing the
// connection, then a Result box. The monitor command is the one interactive
// screen: MonitorModel drains the SCC1 sample buffer on a timer and shows the
// live flow, running statistics and the last samples.
//
// # Usage Pattern
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Device Information", "scc1ctl info",
//	    ui.Param{Key: "Port", Value: "/dev/ttyUSB0"})
//	p.PrintSuccess("Connected", ui.Param{Key: "Serial", Value: dev.CachedSerialNumber()})
//
//	stats, err := ui.RunMonitor(sensor, ui.MonitorConfig{
//	    Title: "Flow Monitor",
//	    Scale: scale,
//	    Unit:  slf.FlowUnitLabel(unit),
//	})
//
// # Logging Integration
//
// Logging is controlled via the SCC1_LOG_LEVEL environment variable or the
// --log-level flag. When unset, zap logging is silent so the curated output
// is displayed cleanly.
package ui
