package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmWord must be typed to approve a persistent device change
const ConfirmWord = "yes"

// Confirm displays a warning box on out and reads one line from in.
// Returns true if the user typed ConfirmWord.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string) bool {
	width := GetTerminalWidth()

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)), ""}
	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	_, _ = fmt.Fprintln(out, ResultBoxStyle(width, WarningColor).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render(fmt.Sprintf("Type %q to continue: ", ConfirmWord)))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	if strings.TrimSpace(input) == ConfirmWord {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}

// ConfirmAddressWrite asks before changing the EEPROM backed sensor address
func ConfirmAddressWrite(in io.Reader, out io.Writer, address byte) bool {
	return Confirm(in, out, "SENSOR ADDRESS WRITE", []string{
		fmt.Sprintf("The SCC1 will address the sensor at I2C 0x%02X from now on", address),
		"The setting is stored in EEPROM and survives power cycles",
		"Make sure the attached sensor really answers at this address",
	})
}
