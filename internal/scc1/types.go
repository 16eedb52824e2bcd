package scc1

import "fmt"

// Version contains the bridge version information.
// Returned by the Get Version command.
type Version struct {
	// FirmwareMajor and FirmwareMinor form the firmware version
	FirmwareMajor byte
	FirmwareMinor byte

	// FirmwareDebug is set on debug builds
	FirmwareDebug bool

	// HardwareMajor and HardwareMinor form the hardware revision
	HardwareMajor byte
	HardwareMinor byte

	// ProtocolMajor and ProtocolMinor form the SHDLC protocol version
	ProtocolMajor byte
	ProtocolMinor byte
}

// Firmware returns the firmware version as "major.minor".
func (v *Version) Firmware() string {
	return fmt.Sprintf("%d.%d", v.FirmwareMajor, v.FirmwareMinor)
}

// AtLeast reports whether the firmware is major.minor or newer.
func (v *Version) AtLeast(major, minor byte) bool {
	if v.FirmwareMajor != major {
		return v.FirmwareMajor > major
	}
	return v.FirmwareMinor >= minor
}

// String returns a debug representation of the version
func (v *Version) String() string {
	s := fmt.Sprintf("firmware %d.%d, hardware %d.%d, protocol %d.%d",
		v.FirmwareMajor, v.FirmwareMinor,
		v.HardwareMajor, v.HardwareMinor,
		v.ProtocolMajor, v.ProtocolMinor)
	if v.FirmwareDebug {
		s += " (debug)"
	}
	return s
}

// ParseVersionResponse parses the Get Version command response.
//
// Data format (VersionResponseSize bytes):
//
//	[FW_MAJOR][FW_MINOR][FW_DEBUG][HW_MAJOR][HW_MINOR][PROTO_MAJOR][PROTO_MINOR]
func ParseVersionResponse(data []byte) (*Version, error) {
	if len(data) != VersionResponseSize {
		return nil, NewMalformedResponseError("get version",
			fmt.Sprintf("got %d bytes, expected %d", len(data), VersionResponseSize), nil)
	}

	return &Version{
		FirmwareMajor: data[0],
		FirmwareMinor: data[1],
		FirmwareDebug: data[2] != 0,
		HardwareMajor: data[3],
		HardwareMinor: data[4],
		ProtocolMajor: data[5],
		ProtocolMinor: data[6],
	}, nil
}
