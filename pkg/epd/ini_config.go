package epd

import (
	"gopkg.in/ini.v1"

	"github.com/nasa-jpl/jsd-epd/pkg/config"
)

// LoadConfigurationINI parses an INI file's [drive] section into a
// config.Configuration. This is a convenience loader, not a requirement
// of the core driver: the host may build a Configuration however it
// likes and hand it straight to NewSlave.
func LoadConfigurationINI(path string) (config.Configuration, error) {
	f, err := ini.Load(path)
	if err != nil {
		return config.Configuration{}, err
	}
	sec := f.Section("drive")

	var cfg config.Configuration
	cfg.ContinuousCurrentLimit = sec.Key("continuous_current_limit").MustFloat64()
	cfg.PeakCurrentLimit = sec.Key("peak_current_limit").MustFloat64()
	cfg.PeakCurrentTime = sec.Key("peak_current_time").MustFloat64()
	cfg.MaxProfileAccel = sec.Key("max_profile_accel").MustFloat64()
	cfg.MaxProfileDecel = sec.Key("max_profile_decel").MustFloat64()
	cfg.VelocityTrackingError = sec.Key("velocity_tracking_error").MustFloat64()
	cfg.PositionTrackingError = sec.Key("position_tracking_error").MustFloat64()
	cfg.MotorStuckCurrentLevelPct = sec.Key("motor_stuck_current_level_pct").MustFloat64()
	cfg.MotorStuckVelocityThreshold = sec.Key("motor_stuck_velocity_threshold").MustFloat64()
	cfg.MotorStuckTimeout = sec.Key("motor_stuck_timeout").MustFloat64()
	cfg.OverSpeedThreshold = sec.Key("over_speed_threshold").MustFloat64()
	cfg.LowPositionLimit = sec.Key("low_position_limit").MustFloat64()
	cfg.HighPositionLimit = sec.Key("high_position_limit").MustFloat64()
	cfg.BrakeEngageMsec = int16(sec.Key("brake_engage_msec").MustInt())
	cfg.BrakeDisengageMsec = int16(sec.Key("brake_disengage_msec").MustInt())
	cfg.LoopPeriodMs = uint8(sec.Key("loop_period_ms").MustUint(4))
	cfg.TorqueSlope = sec.Key("torque_slope").MustFloat64()
	cfg.MaxMotorSpeed = sec.Key("max_motor_speed").MustFloat64()
	cfg.SmoothFactor = sec.Key("smooth_factor").MustInt64()

	return cfg, cfg.Validate()
}
