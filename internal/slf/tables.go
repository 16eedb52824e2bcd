package slf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/scc1/internal/scc1"
)

// Mode selects the liquid calibration the sensor applies to its flow signal.
type Mode int

const (
	Liqui0 Mode = iota
	Liqui1
	Liqui2
	Liqui3
	Liqui4
	Liqui5
	Liqui6
	Liqui7
	Liqui8

	numModes
)

// measurementCommands maps each mode to the sensor's continuous measurement command
var measurementCommands = [numModes]uint16{
	Liqui0: 0x3603,
	Liqui1: 0x3608,
	Liqui2: 0x3615,
	Liqui3: 0x361E,
	Liqui4: 0x3624,
	Liqui5: 0x362F,
	Liqui6: 0x3632,
	Liqui7: 0x3639,
	Liqui8: 0x3646,
}

// Valid reports whether m is one of Liqui0..Liqui8.
func (m Mode) Valid() bool {
	return m >= Liqui0 && m < numModes
}

// MeasurementCommand returns the 16-bit sensor command for m.
// It panics for a mode outside Liqui0..Liqui8.
func (m Mode) MeasurementCommand() uint16 {
	if !m.Valid() {
		panic(fmt.Sprintf("slf: no measurement command for mode %d", int(m)))
	}
	return measurementCommands[m]
}

// String returns "Liquid N".
func (m Mode) String() string {
	return fmt.Sprintf("Liquid %d", int(m))
}

// ParseMode accepts "3", "liqui3", "liquid 3" or "Liquid 3".
func ParseMode(s string) (Mode, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.TrimPrefix(n, "liquid")
	n = strings.TrimPrefix(n, "liqui")
	n = strings.TrimSpace(n)

	v, err := strconv.Atoi(n)
	if err != nil || !Mode(v).Valid() {
		return 0, scc1.NewInvalidArgumentError("parse liquid mode",
			fmt.Sprintf("%q is not a liquid mode (valid 0-%d)", s, int(numModes)-1))
	}
	return Mode(v), nil
}

// Product is a sensor family.
type Product int

const (
	ProductSlf3x Product = iota
	ProductLd20
)

// String returns the family name
func (p Product) String() string {
	if info, ok := products[p]; ok {
		return info.name
	}
	return fmt.Sprintf("Product(%d)", int(p))
}

// liquid is one supported calibration of a family
type liquid struct {
	mode Mode
	name string
}

// productInfo holds everything known about one family
type productInfo struct {
	name    string
	models  map[uint32]string
	liquids []liquid
}

// products is the single source of product ids, model names and liquid calibrations
var products = map[Product]productInfo{
	ProductSlf3x: {
		name: "SLF3x",
		models: map[uint32]string{
			0x070302: "SLF3S_1300",
			0x070303: "SLF3S_600",
			0x070304: "SLF3C_1300F",
			0x070305: "SLF3S_4000B",
		},
		liquids: []liquid{
			{Liqui1, "Water"},
			{Liqui2, "Isopropyl alcohol"},
		},
	},
	ProductLd20: {
		name: "LD20-2600B",
		models: map[uint32]string{
			0x070102: "LD20_2600B",
			0x070103: "LD20-0600L",
		},
		liquids: []liquid{
			{Liqui1, "Water"},
		},
	},
}

// ProductFromID returns the family that owns productID.
func ProductFromID(productID uint32) (Product, error) {
	for p, info := range products {
		if _, ok := info.models[productID]; ok {
			return p, nil
		}
	}
	return 0, scc1.NewUnknownProductError(productID)
}

// ProductName returns the model name for productID, e.g. "SLF3S_1300".
func ProductName(productID uint32) (string, error) {
	p, err := ProductFromID(productID)
	if err != nil {
		return "", err
	}
	return products[p].models[productID], nil
}

// SupportedLiquidModes returns the calibrations of p in table order.
func SupportedLiquidModes(p Product) []Mode {
	info := products[p]
	modes := make([]Mode, 0, len(info.liquids))
	for _, l := range info.liquids {
		modes = append(modes, l.mode)
	}
	return modes
}

// LiquidName returns the display name of mode for family p.
func LiquidName(p Product, mode Mode) (string, error) {
	for _, l := range products[p].liquids {
		if l.mode == mode {
			return l.name, nil
		}
	}
	return "", scc1.NewInvalidArgumentError("liquid mode name",
		fmt.Sprintf("%s is not supported by %s", mode, p))
}

var flowUnitPrefix = map[uint16]string{
	3:  "n",
	4:  "u",
	5:  "m",
	6:  "c",
	7:  "d",
	8:  "", // 1
	9:  "", // 10
	10: "h",
	11: "k",
	12: "M",
	13: "G",
}

var flowUnitTimeBase = map[uint16]string{
	0: "",
	1: "us",
	2: "ms",
	3: "s",
	4: "min",
	5: "h",
	6: "day",
}

var flowUnitVolume = map[uint16]string{
	0: "nl", // norm liter
	1: "sl", // standard liter
	8: "l",
	9: "g",
}

// FlowUnitLabel decodes a raw flow unit into a label such as "ml/min".
//
// Bit layout:
//
//	[15..12 unused][11..8 volume][7..4 time base][3..0 prefix]
//
// Unknown codes contribute an empty string.
func FlowUnitLabel(raw uint16) string {
	prefix := flowUnitPrefix[raw&0xF]
	timeBase := flowUnitTimeBase[(raw>>4)&0xF]
	volume := flowUnitVolume[(raw>>8)&0xF]
	return prefix + volume + "/" + timeBase
}
