package epd

import (
	"fmt"

	"github.com/nasa-jpl/jsd-epd/pkg/state"
)

// dispatchMode is the Mode-of-Operation Dispatcher: while in
// OPERATION_ENABLED it applies the staged MotionCommand for the
// requested mode of operation onto the RxPDO. Only CSP is implemented;
// the other CiA-402 modes are declared (see motion.go) but logged and
// left as no-ops until a consumer needs them. It must be called with
// s.mu held.
func (s *Slave) dispatchMode() {
	switch s.requestedModeOfOperation {
	case state.ModeDisabled:
		// No motion command staged yet; hold position-profile default.

	case state.ModeCSP:
		s.handleCSP()

	case state.ModeProfPos, state.ModeProfVel, state.ModeProfTorque, state.ModeCSV, state.ModeCST:
		s.logger.Debug("mode of operation not implemented, ignoring motion command",
			"mode", s.requestedModeOfOperation)

	default:
		panic(fmt.Sprintf("epd: unknown mode of operation %d", s.requestedModeOfOperation))
	}
}

func (s *Slave) handleCSP() {
	s.rxpdo.ModeOfOperation = int8(state.ModeCSP)
	s.rxpdo.TargetVelocity = 0
	s.rxpdo.TargetTorque = 0

	cmd, ok := s.motionCommand.(MotionCommandCSP)
	if !ok {
		s.logger.Warn("CSP mode requested but staged motion command is not MotionCommandCSP")
		return
	}
	s.rxpdo.TargetPosition = cmd.TargetPosition
	s.rxpdo.PositionOffset = cmd.PositionOffset
	s.rxpdo.VelocityOffset = cmd.VelocityOffset
	s.rxpdo.TorqueOffset = int16(cmd.TorqueOffsetAmps * 1e6 / float64(s.motorRatedCurrentMA))
}
