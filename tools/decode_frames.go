//go:build ignore

// decode_frames checks captured SCC1 response frames.
//
// Input is a text file with one MISO frame per line as hex, for example the
// "raw" field of scc1ctl debug logs or a logic analyzer export:
//
//	7E 00 D1 00 07 01 07 00 01 00 02 00 1C 7E
//
// Usage: go run tools/decode_frames.go <file>
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/muurk/scc1/internal/scc1"
	"github.com/muurk/scc1/internal/shdlc"
)

var commandNames = map[byte]string{
	scc1.CmdSensorType:                 "sensor type",
	scc1.CmdSensorAddress:              "sensor address",
	scc1.CmdI2cScan:                    "i2c scan",
	scc1.CmdI2cTransceive:              "i2c transceive",
	scc1.CmdStartContinuousMeasurement: "start measurement",
	scc1.CmdStopContinuousMeasurement:  "stop measurement",
	scc1.CmdGetLastMeasurement:         "last measurement",
	scc1.CmdReadExtendedBuffer:         "extended buffer",
	scc1.CmdSensorIdentification:       "identify",
	scc1.CmdFlowUnitAndScale:           "flow unit",
	scc1.CmdSensorReset:                "reset",
	scc1.CmdDeviceInformation:          "device information",
	scc1.CmdGetVersion:                 "version",
}

// Statistics tracks parsing results
type Statistics struct {
	Total    int
	Success  int
	Failures []string
	Commands map[byte]int
	Errors   map[byte]int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: decode_frames <file>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	stats := Statistics{Commands: make(map[byte]int), Errors: make(map[byte]int)}

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stats.Total++

		if err := decodeLine(line, &stats); err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}
		stats.Success++
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	printStatistics(&stats)
}

func decodeLine(line string, stats *Statistics) error {
	raw, err := hex.DecodeString(strings.NewReplacer(" ", "", ":", "").Replace(line))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) < 2 || raw[0] != shdlc.FlagByte || raw[len(raw)-1] != shdlc.FlagByte {
		return fmt.Errorf("missing 0x7E frame delimiters")
	}

	resp, err := shdlc.ParseResponse(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}

	stats.Commands[resp.Command]++
	if resp.ErrorCode() != 0 {
		stats.Errors[resp.Command]++
	}

	name, ok := commandNames[resp.Command]
	if !ok {
		name = "unknown"
	}
	fmt.Printf("0x%02X %-20s state=0x%02X len=%-3d %s\n",
		resp.Command, name, resp.State, len(resp.Data), hex.EncodeToString(resp.Data))
	return nil
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Frames:   %d\n", stats.Total)
	fmt.Printf("Decoded:  %d\n", stats.Success)
	fmt.Printf("Failed:   %d\n", len(stats.Failures))

	commands := make([]int, 0, len(stats.Commands))
	for c := range stats.Commands {
		commands = append(commands, int(c))
	}
	sort.Ints(commands)

	fmt.Printf("\nBy command:\n")
	for _, c := range commands {
		fmt.Printf("  0x%02X %-20s %5d (errors: %d)\n",
			c, commandNames[byte(c)], stats.Commands[byte(c)], stats.Errors[byte(c)])
	}

	if len(stats.Failures) > 0 {
		fmt.Printf("\nFailures:\n")
		for _, f := range stats.Failures {
			fmt.Printf("  %s\n", f)
		}
	}
}
