package epd

import (
	"fmt"

	"github.com/nasa-jpl/jsd-epd/pkg/emergency"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
)

// runStateMachine is the State Machine Core: it reads the last decoded
// ActualStateMachineState and stages the RxPDO controlword (and, in
// OPERATION_ENABLED, the requested motion) that drives the CiA-402
// device toward and through the commanded state. It must be called with
// s.mu held.
func (s *Slave) runStateMachine() {
	switch s.telemetry.ActualStateMachineState {
	case state.NotReadyToSwitchOn:
		// Drive-internal self test; nothing to command.

	case state.SwitchOnDisabled:
		s.rxpdo.Controlword = uint16(state.ControlwordShutdown)

	case state.ReadyToSwitchOn:
		s.rxpdo.Controlword = uint16(state.ControlwordSwitchOn)

	case state.SwitchedOn:
		if s.newReset {
			s.rxpdo.Controlword = uint16(state.ControlwordEnableOperation)
			s.rxpdo.ModeOfOperation = int8(state.ModeProfPos)
			s.requestedModeOfOperation = state.ModeProfPos
			s.newReset = false
		}

	case state.OperationEnabled:
		s.emcyErrorCode = 0
		if s.newHaltCommand {
			s.newReset = false
			s.rxpdo.Controlword = uint16(state.ControlwordQuickStop)
			s.rxpdo.ModeOfOperation = int8(state.ModeProfPos)
			s.requestedModeOfOperation = state.ModeProfPos
		} else {
			s.rxpdo.Controlword = uint16(state.ControlwordEnableOperation)
			s.dispatchMode()
		}

	case state.QuickStopActive, state.FaultReactionActive:
		// Transient states driven by the drive itself; wait it out.

	case state.Fault:
		s.processFault()

	default:
		panic(fmt.Sprintf("epd: unknown state machine state 0x%02x", uint16(s.telemetry.ActualStateMachineState)))
	}
}

// processFault drains up to MaxErrorPopsPerCycle emergency queue entries
// looking for the EMCY report that caused this fault (one whose event
// time is strictly after the moment FAULT was first observed). If found,
// its code is latched onto the public telemetry and FAULT_RESET is
// issued. If none is found within FaultTimeout of entering FAULT, the
// code is latched as 0xFFFF (unresolved) and FAULT_RESET is issued
// anyway, so a drive that faults without ever reporting an EMCY does not
// wedge the state machine forever.
func (s *Slave) processFault() {
	if s.emcy != nil {
		for i := 0; i < MaxErrorPopsPerCycle; i++ {
			entry, ok := s.emcy.Pop()
			if !ok {
				break
			}
			if entry.Kind == emergency.KindEmergency && entry.EventTime.After(s.faultRealTime) {
				s.emcyErrorCode = entry.Code
				s.rxpdo.Controlword = uint16(state.ControlwordFaultReset)
				return
			}
		}
	}

	if s.clock.Monotonic()-s.faultMonoTime > FaultTimeout {
		s.emcyErrorCode = 0xFFFF
		s.rxpdo.Controlword = uint16(state.ControlwordFaultReset)
	}
}
