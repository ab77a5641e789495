package emergency

// Well-known CANopen emergency error codes (CiA-301 generic error
// classes) and Describe, for callers that report EMCY codes. The driver
// does not branch on these values or log them; it reports EMCY codes
// verbatim in telemetry.
const (
	CodeNoError        = 0x0000
	CodeGeneric        = 0x1000
	CodeCurrent        = 0x2000
	CodeVoltage        = 0x3000
	CodeTemperature    = 0x4000
	CodeCommunication  = 0x8100
	CodeDeviceSpecific = 0xFF00

	// CodeNoEMCYWithinTimeout is the sentinel recorded when FAULT is not
	// resolved by a matching EMCY entry within the 1 second deadline.
	CodeNoEMCYWithinTimeout = 0xFFFF
)

var descriptions = map[uint16]string{
	CodeNoError:        "Reset or No Error",
	CodeGeneric:        "Generic Error",
	CodeCurrent:        "Current",
	CodeVoltage:        "Voltage",
	CodeTemperature:    "Temperature",
	CodeCommunication:  "Communication",
	CodeDeviceSpecific: "Device specific",
}

// Describe returns a human-readable description for a known error code
// class (matched on the high byte), or "Unknown" otherwise.
func Describe(code uint16) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	if d, ok := descriptions[code&0xFF00]; ok {
		return d
	}
	return "Unknown"
}
