package epd

import (
	"testing"
	"time"

	"github.com/nasa-jpl/jsd-epd/pkg/clock/clocktest"
	"github.com/nasa-jpl/jsd-epd/pkg/config"
	"github.com/nasa-jpl/jsd-epd/pkg/emergency"
	"github.com/nasa-jpl/jsd-epd/pkg/lc"
	"github.com/nasa-jpl/jsd-epd/pkg/pdo"
	"github.com/nasa-jpl/jsd-epd/pkg/sdo/sdotest"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfiguration() config.Configuration {
	return config.Configuration{
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

func newTestSlave(t *testing.T) (*Slave, *clocktest.Fake) {
	t.Helper()
	fake := sdotest.New()
	fake.Set(lc.Resolve("CA"), 18, int64(8192))
	fake.Set(lc.Resolve("MC"), 1, float32(12.0))
	fake.Set(lc.Resolve("UM"), 1, int16(5))

	clk := clocktest.New(time.Unix(1000, 0))
	s, err := NewSlave(0, RequiredIdentity(), validConfiguration(), fake, nil, emergency.NewQueue(0), clk, nil, nil)
	require.NoError(t, err)
	return s, clk
}

func txpdoBytes(t *testing.T, txpdo pdo.TxPDO) []byte {
	t.Helper()
	buf := make([]byte, pdo.TxPDOSize)
	require.NoError(t, txpdo.Encode(buf))
	return buf
}

func decodeRxpdo(t *testing.T, buf []byte) pdo.RxPDO {
	t.Helper()
	var r pdo.RxPDO
	require.NoError(t, r.Decode(buf))
	return r
}

func cycle(t *testing.T, s *Slave, machineState state.MachineState) pdo.RxPDO {
	t.Helper()
	require.NoError(t, s.Read(txpdoBytes(t, pdo.TxPDO{Statusword: uint16(machineState)})))
	buf := make([]byte, pdo.RxPDOSize)
	require.NoError(t, s.Process(buf))
	return decodeRxpdo(t, buf)
}

func TestStateMachineWalksUpToOperationEnabled(t *testing.T) {
	s, _ := newTestSlave(t)

	rx := cycle(t, s, state.SwitchOnDisabled)
	assert.Equal(t, uint16(state.ControlwordShutdown), rx.Controlword)

	rx = cycle(t, s, state.ReadyToSwitchOn)
	assert.Equal(t, uint16(state.ControlwordSwitchOn), rx.Controlword)

	s.Reset()
	rx = cycle(t, s, state.SwitchedOn)
	assert.Equal(t, uint16(state.ControlwordEnableOperation), rx.Controlword)
	assert.Equal(t, int8(state.ModeProfPos), rx.ModeOfOperation)

	rx = cycle(t, s, state.OperationEnabled)
	assert.Equal(t, uint16(state.ControlwordEnableOperation), rx.Controlword)
}

func TestCSPMotionCommandRoundTrips(t *testing.T) {
	s, _ := newTestSlave(t)
	s.SetMotionCommandCSP(MotionCommandCSP{
		TargetPosition:   12345,
		PositionOffset:   10,
		VelocityOffset:   20,
		TorqueOffsetAmps: 1.0,
	})

	rx := cycle(t, s, state.OperationEnabled)
	assert.Equal(t, int8(state.ModeCSP), rx.ModeOfOperation)
	assert.EqualValues(t, 12345, rx.TargetPosition)
	assert.EqualValues(t, 10, rx.PositionOffset)
	assert.EqualValues(t, 20, rx.VelocityOffset)
	// TorqueOffsetAmps 1.0A scaled against a 5A (5000mA) rated current.
	assert.EqualValues(t, 200, rx.TorqueOffset)
	// CSP does not use these RxPDO fields; they must be zeroed every cycle.
	assert.EqualValues(t, 0, rx.TargetVelocity)
	assert.EqualValues(t, 0, rx.TargetTorque)
}

func TestCSPMotionCommandReappliesEveryCycle(t *testing.T) {
	s, _ := newTestSlave(t)
	s.SetMotionCommandCSP(MotionCommandCSP{TargetPosition: 42})

	first := cycle(t, s, state.OperationEnabled)
	assert.EqualValues(t, 42, first.TargetPosition)

	// No new command staged; the dispatcher must still reapply the
	// previously staged command on every subsequent cycle.
	second := cycle(t, s, state.OperationEnabled)
	assert.EqualValues(t, 42, second.TargetPosition)
	assert.EqualValues(t, 0, second.TargetVelocity)
	assert.EqualValues(t, 0, second.TargetTorque)
}

func TestHaltTakesPriorityOverMotionCommand(t *testing.T) {
	s, _ := newTestSlave(t)
	s.SetMotionCommandCSP(MotionCommandCSP{TargetPosition: 999})
	s.Halt()

	rx := cycle(t, s, state.OperationEnabled)
	assert.Equal(t, uint16(state.ControlwordQuickStop), rx.Controlword)
	assert.Equal(t, int8(state.ModeProfPos), rx.ModeOfOperation)
}

func TestHaltCommandIsOneShot(t *testing.T) {
	s, _ := newTestSlave(t)
	s.Halt()
	cycle(t, s, state.OperationEnabled)

	rx := cycle(t, s, state.OperationEnabled)
	assert.Equal(t, uint16(state.ControlwordEnableOperation), rx.Controlword)
}

func TestFaultRecoveryWithMatchingEMCY(t *testing.T) {
	s, clk := newTestSlave(t)

	// First observe FAULT; this latches faultRealTime from the clock.
	cycle(t, s, state.Fault)

	clk.Advance(time.Millisecond)
	s.emcy.Push(emergency.Entry{
		EventTime: clk.Now(),
		Kind:      emergency.KindEmergency,
		Code:      0x2310,
	})

	rx := cycle(t, s, state.Fault)
	assert.Equal(t, uint16(state.ControlwordFaultReset), rx.Controlword)
	assert.EqualValues(t, 0x2310, s.GetState().EmcyErrorCode)
}

func TestFaultRecoveryIgnoresEMCYPredatingFault(t *testing.T) {
	s, clk := newTestSlave(t)

	// A stale EMCY pushed before the fault was observed must not satisfy
	// recovery; only its FaultTimeout fallback should fire.
	s.emcy.Push(emergency.Entry{EventTime: clk.Now(), Kind: emergency.KindEmergency, Code: 0x1111})
	cycle(t, s, state.Fault)

	clk.Advance(FaultTimeout + time.Millisecond)
	rx := cycle(t, s, state.Fault)
	assert.Equal(t, uint16(state.ControlwordFaultReset), rx.Controlword)
	assert.EqualValues(t, 0xFFFF, s.GetState().EmcyErrorCode)
}

func TestFaultRecoveryTimesOutWithoutEMCY(t *testing.T) {
	s, clk := newTestSlave(t)

	cycle(t, s, state.Fault)

	// Not yet past FaultTimeout: state machine must keep waiting.
	clk.Advance(FaultTimeout - time.Millisecond)
	rx := cycle(t, s, state.Fault)
	assert.Zero(t, rx.Controlword)

	clk.Advance(2 * time.Millisecond)
	rx = cycle(t, s, state.Fault)
	assert.Equal(t, uint16(state.ControlwordFaultReset), rx.Controlword)
	assert.EqualValues(t, 0xFFFF, s.GetState().EmcyErrorCode)
}

func TestOperationEnabledClearsStaleEmcyErrorCode(t *testing.T) {
	s, _ := newTestSlave(t)
	s.emcyErrorCode = 0x2310

	cycle(t, s, state.OperationEnabled)
	assert.Zero(t, s.GetState().EmcyErrorCode)
}

func TestResetDerateRejectsRapidReset(t *testing.T) {
	s, clk := newTestSlave(t)

	s.Reset()
	cycle(t, s, state.SwitchedOn)
	require.False(t, s.newReset, "first reset should have been consumed")

	s.Reset() // within ResetDerateSec of the first: must be ignored
	assert.False(t, s.newReset)

	clk.Advance(ResetDerateSec + time.Millisecond)
	s.Reset()
	assert.True(t, s.newReset)
}

func TestSetDigitalOutputRejectsOutOfRangeIndex(t *testing.T) {
	s, _ := newTestSlave(t)
	err := s.SetDigitalOutput(NumDigitalOutputs, true)
	assert.ErrorIs(t, err, ErrDigitalOutputIndex)
}

func TestSetDigitalOutputSetsAndClearsBit(t *testing.T) {
	s, _ := newTestSlave(t)
	require.NoError(t, s.SetDigitalOutput(2, true))
	assert.NotZero(t, s.rxpdo.DigitalOutputs&(1<<18))

	require.NoError(t, s.SetDigitalOutput(2, false))
	assert.Zero(t, s.rxpdo.DigitalOutputs&(1<<18))
}

func TestSetPeakCurrentScalesAgainstRatedCurrent(t *testing.T) {
	s, _ := newTestSlave(t)
	s.SetPeakCurrent(10.0) // 10A against 5A (5000mA) rated current
	assert.EqualValues(t, 2000, s.rxpdo.MaxCurrent)
}

func TestNewSlaveRejectsWrongIdentity(t *testing.T) {
	fake := sdotest.New()
	clk := clocktest.New(time.Unix(0, 0))
	_, err := NewSlave(0, Identity{VendorID: 1, ProductCode: 2}, validConfiguration(), fake, nil, emergency.NewQueue(0), clk, nil, nil)
	assert.ErrorIs(t, err, ErrNotEPD)
}
