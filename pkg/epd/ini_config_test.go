package epd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationINI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epd.ini")
	contents := `[drive]
continuous_current_limit = 5
peak_current_limit = 10
peak_current_time = 2
max_profile_accel = 1000000
max_profile_decel = 1000000
velocity_tracking_error = 1000
position_tracking_error = 1000
motor_stuck_current_level_pct = 80
motor_stuck_velocity_threshold = 10
motor_stuck_timeout = 1
over_speed_threshold = 1000000
low_position_limit = 0
high_position_limit = 0
brake_engage_msec = 10
brake_disengage_msec = 20
loop_period_ms = 4
torque_slope = 1
max_motor_speed = 10000
smooth_factor = 1
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadConfigurationINI(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, cfg.ContinuousCurrentLimit)
	assert.EqualValues(t, 10, cfg.PeakCurrentLimit)
	assert.EqualValues(t, 4, cfg.LoopPeriodMs)
	assert.EqualValues(t, 20, cfg.BrakeDisengageMsec)
	assert.EqualValues(t, 1, cfg.SmoothFactor)
}

func TestLoadConfigurationINIRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epd.ini")
	require.NoError(t, os.WriteFile(path, []byte("[drive]\ncontinuous_current_limit = 0\n"), 0o644))

	_, err := LoadConfigurationINI(path)
	assert.Error(t, err)
}
