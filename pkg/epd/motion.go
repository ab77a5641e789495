package epd

// MotionCommand is the tagged union over the seven CiA-402 modes of
// operation spec.md section 9 calls for: a sum type so an unimplemented
// variant cannot be silently read as garbage. Only MotionCommandCSP is
// populated by this driver; the other modes are declared as empty
// reserved variants that no Slave method stages, and Process logs and
// no-ops for those modes instead of guessing.
type MotionCommand interface {
	isMotionCommand()
}

// MotionCommandCSP is the Cyclic Synchronous Position motion command.
type MotionCommandCSP struct {
	TargetPosition   int32
	PositionOffset   int32
	VelocityOffset   int32
	TorqueOffsetAmps float64
}

func (MotionCommandCSP) isMotionCommand() {}

// MotionCommandProfPos is reserved: Profile Position is declared but not
// dispatched yet (spec.md section 4.6).
type MotionCommandProfPos struct{}

func (MotionCommandProfPos) isMotionCommand() {}

// MotionCommandProfVel is reserved.
type MotionCommandProfVel struct{}

func (MotionCommandProfVel) isMotionCommand() {}

// MotionCommandProfTorque is reserved.
type MotionCommandProfTorque struct{}

func (MotionCommandProfTorque) isMotionCommand() {}

// MotionCommandCSV is reserved.
type MotionCommandCSV struct{}

func (MotionCommandCSV) isMotionCommand() {}

// MotionCommandCST is reserved.
type MotionCommandCST struct{}

func (MotionCommandCST) isMotionCommand() {}
