// Package config implements the EPD Startup Configurator: the one-shot
// SDO/Letter-Command sequence run when the fieldbus master transitions a
// slave from pre-operational to safe-operational, and the host-supplied
// Configuration it consumes.
package config

import "fmt"

// Configuration holds the host-supplied, immutable-after-init options for
// one EPD slave. Zero values are invalid for the mandatory fields;
// Validate reports which.
type Configuration struct {
	// ContinuousCurrentLimit seeds motor_rated_current (A); mandatory,
	// must be > 0.
	ContinuousCurrentLimit float64
	// PeakCurrentLimit is the initial max_current ceiling (A); must not
	// exceed the drive's reported MC[1].
	PeakCurrentLimit float64
	// PeakCurrentTime is the duration before peak->continuous foldback
	// (s).
	PeakCurrentTime float64

	MaxProfileAccel float64 // cnt/s^2
	MaxProfileDecel float64 // cnt/s^2

	VelocityTrackingError float64
	PositionTrackingError float64

	MotorStuckCurrentLevelPct   float64
	MotorStuckVelocityThreshold float64
	MotorStuckTimeout           float64 // 0 disables the feature

	OverSpeedThreshold float64 // cnt/s
	LowPositionLimit   float64 // cnt
	HighPositionLimit  float64 // cnt; equal to Low disables the feature

	BrakeEngageMsec    int16
	BrakeDisengageMsec int16

	LoopPeriodMs uint8 // interpolation period

	TorqueSlope float64 // A/s, for profile-torque

	// MaxMotorSpeed is in cnt/s; must be >= 0. Converted to rpm at
	// startup using the drive-reported CA[18] counts/rev.
	MaxMotorSpeed float64

	SmoothFactor int64
}

// Validate checks the invariants spec.md assigns to Configuration that
// can be checked without talking to the drive. Invariants requiring a
// drive-reported value (peak <= MC[1]) are checked by Configurator.Configure.
func (c Configuration) Validate() error {
	if c.ContinuousCurrentLimit <= 0 {
		return fmt.Errorf("%w: continuous_current_limit must be > 0, got %v", ErrInvalidConfig, c.ContinuousCurrentLimit)
	}
	if c.ContinuousCurrentLimit > c.PeakCurrentLimit {
		return fmt.Errorf("%w: continuous_current_limit (%v) must not exceed peak_current_limit (%v)", ErrInvalidConfig, c.ContinuousCurrentLimit, c.PeakCurrentLimit)
	}
	if c.MaxMotorSpeed < 0 {
		return fmt.Errorf("%w: max_motor_speed must be >= 0, got %v", ErrInvalidConfig, c.MaxMotorSpeed)
	}
	return nil
}

// MotorRatedCurrentMA is motor_rated_current in mA, as seeded from
// ContinuousCurrentLimit (A) per spec.md section 3.
func (c Configuration) MotorRatedCurrentMA() uint32 {
	return uint32(c.ContinuousCurrentLimit * 1000)
}

// PositionLimitsDisabled reports whether low == high, the spec's
// disable-by-equality convention.
func (c Configuration) PositionLimitsDisabled() bool {
	return c.LowPositionLimit == c.HighPositionLimit
}

// MotorStuckDetectionDisabled reports whether the motor-stuck timeout is
// zero, the spec's disable-by-zero convention.
func (c Configuration) MotorStuckDetectionDisabled() bool {
	return c.MotorStuckTimeout == 0
}
