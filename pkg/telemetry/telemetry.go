// Package telemetry implements the EPD Telemetry Decoder: a pure
// function projecting the last TxPDO frame and current RxPDO staging
// fields into the public State snapshot spec.md section 4.4 describes,
// applying current/voltage scaling and bit-field extraction.
package telemetry

import (
	"github.com/nasa-jpl/jsd-epd/pkg/pdo"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
)

// NumDigitalInputs is the number of public digital input bits decoded
// from TxPDO.DigitalInputs, starting at bit 16.
const NumDigitalInputs = 8

// State is the public telemetry snapshot, stable until the next Read.
type State struct {
	ActualPosition float64
	ActualVelocity float64
	ActualCurrent  float64 // A

	CmdPosition float64
	CmdVelocity float64
	CmdCurrent  float64 // A

	CmdFFPosition float64
	CmdFFVelocity float64
	CmdFFCurrent  float64 // A

	CmdMaxCurrent float64 // A

	ActualModeOfOperation   state.ModeOfOperation
	ActualStateMachineState state.MachineState

	Warning       bool
	TargetReached bool

	ServoEnabled bool
	STOEngaged   bool
	MotorOn      bool
	InMotion     bool

	HallState uint8 // 3 bits

	DigitalInputs [NumDigitalInputs]bool

	BusVoltage float64 // V

	AnalogInputVoltage float64 // V
	AnalogInputADC     uint16  // raw

	DriveTemperatureDegC int32

	// EmcyErrorCode is 0 when clear, the drive-reported EMCY code while
	// in FAULT, or 0xFFFF if FAULT was not resolved by a matching EMCY
	// within the timeout.
	EmcyErrorCode uint16
}

// Interlock reports bit 3 of digital_inputs, a private signal not
// exposed on the public telemetry fields but occasionally useful to
// callers building their own diagnostics.
func Interlock(txpdo *pdo.TxPDO) bool {
	return bitSet(txpdo.DigitalInputs, state.DigitalInputsInterlockBit)
}

// FaultOccurredWhenEnabled reports status_register_1 bit 6, kept private
// per spec.md's telemetry field enumeration (see SPEC_FULL.md section 12).
func FaultOccurredWhenEnabled(txpdo *pdo.TxPDO) bool {
	return bitSet(txpdo.StatusRegister1, state.StatusRegister1FaultOccurredEnabledBit)
}

// Decode projects txpdo and the current RxPDO staging fields into a
// public State, scaling raw counts by motorRatedCurrentMA (mA) as
// spec.md section 4.4 specifies. It has no side effects: callers decide
// what to do with a FAULT transition (recording fault times, requesting
// EMCY collection) by comparing ActualStateMachineState across calls.
func Decode(txpdo *pdo.TxPDO, rxpdo *pdo.RxPDO, motorRatedCurrentMA uint32) State {
	scale := func(raw int32) float64 {
		return float64(raw) * float64(motorRatedCurrentMA) / 1e6
	}

	var s State
	s.ActualPosition = float64(txpdo.ActualPosition)
	s.ActualVelocity = float64(txpdo.VelocityActualValue)
	s.ActualCurrent = scale(int32(txpdo.CurrentActualValue))

	s.CmdPosition = float64(rxpdo.TargetPosition)
	s.CmdVelocity = float64(rxpdo.TargetVelocity)
	s.CmdCurrent = scale(int32(rxpdo.TargetTorque))

	s.CmdFFPosition = float64(rxpdo.PositionOffset)
	s.CmdFFVelocity = float64(rxpdo.VelocityOffset)
	s.CmdFFCurrent = scale(int32(rxpdo.TorqueOffset))

	s.CmdMaxCurrent = float64(rxpdo.MaxCurrent) * float64(motorRatedCurrentMA) / 1e6

	s.ActualModeOfOperation = state.ModeOfOperation(txpdo.ModeOfOperationDisplay)
	s.ActualStateMachineState = state.MachineState(uint16(txpdo.Statusword)) & state.Mask

	s.Warning = bitSet16(txpdo.Statusword, state.StatuswordWarningBit)
	s.TargetReached = bitSet16(txpdo.Statusword, state.StatuswordTargetReachedBit)

	s.ServoEnabled = bitSet(txpdo.StatusRegister1, state.StatusRegister1ServoEnabledBit)
	s.MotorOn = bitSet(txpdo.StatusRegister1, state.StatusRegister1MotorOnBit)
	s.InMotion = bitSet(txpdo.StatusRegister1, state.StatusRegister1InMotionBit)
	sto0 := bitSet(txpdo.StatusRegister1, state.StatusRegister1STOOkBit0)
	sto1 := bitSet(txpdo.StatusRegister1, state.StatusRegister1STOOkBit1)
	s.STOEngaged = !(sto0 && sto1)

	s.HallState = uint8(txpdo.StatusRegister2 & 0x07)

	for i := 0; i < NumDigitalInputs; i++ {
		s.DigitalInputs[i] = bitSet(txpdo.DigitalInputs, state.DigitalInputsPublicBaseBit+i)
	}

	s.BusVoltage = float64(txpdo.DCLinkCircuitVoltage) / 1000.0
	s.AnalogInputVoltage = float64(txpdo.AnalogInput1) / 1000.0
	s.AnalogInputADC = txpdo.AnalogInput2
	s.DriveTemperatureDegC = txpdo.DriveTemperatureDegC

	return s
}

func bitSet(v uint32, bit int) bool {
	return (v>>uint(bit))&0x01 != 0
}

func bitSet16(v uint16, bit int) bool {
	return (v>>uint(bit))&0x01 != 0
}
