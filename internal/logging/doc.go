// Package logging provides structured logging for the scc1 tools.
//
// This package wraps a global zap logger. Logging is silent unless a level is
// given on the command line (--log-level) or through SCC1_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: SHDLC frames, exchange timing, hex dumps
//   - Info: port opened, bridge clients connecting, advertisement
//   - Warn: failed exchanges, buffer overflow
//   - Error: startup failures
//
// # Link Logging
//
// The serial transport logs every frame and the bridge logs every exchange:
//
//	logging.LogFrame("/dev/ttyUSB0", "tx", 0x24, raw)
//	logging.LogExchange(remoteAddr, 0x36, tx, rx, elapsed, err)
//
// Packages that sit above the link (scc1, slf) take a *zap.Logger option
// instead; commands pass GetLogger() to them.
//
// # Configuration
//
//	if err := logging.Initialize(flagLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
