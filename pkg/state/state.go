// Package state defines the CiA-402 drive state machine constants: the
// statusword state mask and values, and the controlword bit patterns used
// to command transitions between them.
package state

// MachineState is a CiA-402 device state, extracted from the drive
// statusword via Mask.
type MachineState uint16

// Mask isolates the state-machine bits of a CiA-402 statusword.
const Mask MachineState = 0x006F

const (
	NotReadyToSwitchOn  MachineState = 0x00
	SwitchOnDisabled    MachineState = 0x40
	ReadyToSwitchOn     MachineState = 0x21
	SwitchedOn          MachineState = 0x23
	OperationEnabled    MachineState = 0x27
	QuickStopActive     MachineState = 0x07
	FaultReactionActive MachineState = 0x0F
	Fault               MachineState = 0x08
)

var names = map[MachineState]string{
	NotReadyToSwitchOn:  "Not Ready to Switch On",
	SwitchOnDisabled:    "Switch On Disabled",
	ReadyToSwitchOn:     "Ready to Switch On",
	SwitchedOn:          "Switched On",
	OperationEnabled:    "Operation Enabled",
	QuickStopActive:     "Quick Stop Active",
	FaultReactionActive: "Fault Reaction Active",
	Fault:               "Fault",
}

func (s MachineState) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return "Unknown State Machine State"
}

// Controlword is a CiA-402 controlword value written into RxPDO.
type Controlword uint16

const (
	ControlwordShutdown        Controlword = 0x0006
	ControlwordSwitchOn        Controlword = 0x0007
	ControlwordEnableOperation Controlword = 0x000F
	ControlwordQuickStop       Controlword = 0x0002
	ControlwordFaultReset      Controlword = 0x0080
)

// ModeOfOperation is a CiA-402 mode of operation value (object 0x6060).
type ModeOfOperation int8

const (
	ModeDisabled    ModeOfOperation = 0
	ModeProfPos     ModeOfOperation = 1
	ModeProfVel     ModeOfOperation = 3
	ModeProfTorque  ModeOfOperation = 4
	ModeCSP         ModeOfOperation = 8
	ModeCSV         ModeOfOperation = 9
	ModeCST         ModeOfOperation = 10
)

func (m ModeOfOperation) String() string {
	switch m {
	case ModeDisabled:
		return "Disabled"
	case ModeProfPos:
		return "Profile Position"
	case ModeProfVel:
		return "Profile Velocity"
	case ModeProfTorque:
		return "Profile Torque"
	case ModeCSP:
		return "Cyclic Synchronous Position"
	case ModeCSV:
		return "Cyclic Synchronous Velocity"
	case ModeCST:
		return "Cyclic Synchronous Torque"
	default:
		return "Unknown Mode of Operation"
	}
}

// Statusword bit positions used by the telemetry decoder.
const (
	StatuswordWarningBit       = 7
	StatuswordTargetReachedBit = 10
)

// status_register_1 bit positions (manufacturer-specific extended status).
const (
	StatusRegister1ServoEnabledBit         = 4
	StatusRegister1FaultOccurredEnabledBit = 6
	StatusRegister1MotorOnBit              = 22
	StatusRegister1InMotionBit             = 23
	StatusRegister1STOOkBit0               = 25
	StatusRegister1STOOkBit1               = 26
)

// digital_inputs bit positions.
const (
	DigitalInputsInterlockBit  = 3
	DigitalInputsPublicBaseBit = 16
)
