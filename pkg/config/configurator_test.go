package config

import (
	"testing"

	"github.com/nasa-jpl/jsd-epd/pkg/lc"
	"github.com/nasa-jpl/jsd-epd/pkg/sdo/sdotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfiguration() Configuration {
	return Configuration{
		ContinuousCurrentLimit:      5,
		PeakCurrentLimit:            10,
		PeakCurrentTime:             2,
		MaxProfileAccel:             1e6,
		MaxProfileDecel:             1e6,
		VelocityTrackingError:       1000,
		PositionTrackingError:       1000,
		MotorStuckCurrentLevelPct:   80,
		MotorStuckVelocityThreshold: 10,
		MotorStuckTimeout:           1,
		OverSpeedThreshold:          1e6,
		LowPositionLimit:            0,
		HighPositionLimit:           0,
		BrakeEngageMsec:             10,
		BrakeDisengageMsec:          20,
		LoopPeriodMs:                4,
		TorqueSlope:                 1,
		MaxMotorSpeed:               10000,
		SmoothFactor:                1,
	}
}

func seedDrive(f *sdotest.Fake, countsPerRev int64, driveMaxCurrent float32, um int16) {
	f.Set(lc.Resolve("CA"), 18, countsPerRev)
	f.Set(lc.Resolve("MC"), 1, driveMaxCurrent)
	f.Set(lc.Resolve("UM"), 1, um)
}

func TestConfigureSuccess(t *testing.T) {
	fake := sdotest.New()
	seedDrive(fake, 8192, 12.0, 5)

	c := New(fake, nil)
	info, err := c.Configure(validConfiguration())
	require.NoError(t, err)
	assert.EqualValues(t, 8192, info.CountsPerRev)
	assert.EqualValues(t, 12.0, info.DriveMaxCurrentA)
	assert.EqualValues(t, 5, info.ControlLoopType)

	writes := fake.Writes()
	assert.NotEmpty(t, writes)
	// First six writes are the PDO mapping objects, in order.
	wantIndices := []uint16{0x1602, 0x1603, 0x1C12, 0x1A02, 0x1A03, 0x1C13}
	for i, idx := range wantIndices {
		assert.Equal(t, idx, writes[i].Index)
	}
}

func TestConfigureAbortsOnFirstFailure(t *testing.T) {
	fake := sdotest.New()
	seedDrive(fake, 8192, 12.0, 5)
	fake.FailAt(0x1603, 0, assert.AnError)

	c := New(fake, nil)
	_, err := c.Configure(validConfiguration())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStartupFailed)

	// 0x1C12 must never have been written: step aborted before it.
	for _, w := range fake.Writes() {
		assert.NotEqual(t, uint16(0x1C12), w.Index)
	}
}

func TestConfigureRejectsPeakExceedingDriveMax(t *testing.T) {
	fake := sdotest.New()
	seedDrive(fake, 8192, 8.0, 5) // drive max is below configured peak of 10
	c := New(fake, nil)
	_, err := c.Configure(validConfiguration())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStartupFailed)
}

func TestConfigureRejectsInvalidConfigBeforeTalkingToDrive(t *testing.T) {
	fake := sdotest.New() // no seeded values at all
	c := New(fake, nil)
	cfg := validConfiguration()
	cfg.ContinuousCurrentLimit = 0
	_, err := c.Configure(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

type recordingDescriptor struct {
	disabledCA bool
	blockedLRW bool
}

func (d *recordingDescriptor) DisableCompleteAccess() { d.disabledCA = true }
func (d *recordingDescriptor) SetBlockLRW(enabled bool) { d.blockedLRW = enabled }

func TestConfigureAppliesDescriptorFlags(t *testing.T) {
	fake := sdotest.New()
	seedDrive(fake, 8192, 12.0, 5)
	desc := &recordingDescriptor{}
	c := New(fake, desc)
	_, err := c.Configure(validConfiguration())
	require.NoError(t, err)
	assert.True(t, desc.disabledCA)
	assert.True(t, desc.blockedLRW)
}
