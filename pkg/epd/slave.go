// Package epd is the public API of the EPD CiA-402 slave driver: it
// wires together the LC resolver, PDO codec, Startup Configurator,
// Telemetry Decoder, State Machine Core, and Mode-of-Operation Dispatcher
// behind a single per-slave handle, matching the orchestration role the
// teacher's top-level driver.go plays for a CANopen node.
package epd

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nasa-jpl/jsd-epd/pkg/clock"
	"github.com/nasa-jpl/jsd-epd/pkg/config"
	"github.com/nasa-jpl/jsd-epd/pkg/emergency"
	"github.com/nasa-jpl/jsd-epd/pkg/pdo"
	"github.com/nasa-jpl/jsd-epd/pkg/sdo"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
	"github.com/nasa-jpl/jsd-epd/pkg/telemetry"
)

// NumDigitalOutputs bounds the index accepted by SetDigitalOutput.
const NumDigitalOutputs = 8

// MaxErrorPopsPerCycle caps how many emergency queue entries the State
// Machine Core drains while recovering from FAULT, per cycle.
const MaxErrorPopsPerCycle = 5

// ResetDerateSec rate-limits Reset() to prevent oscillation through
// fault/enable when a host hammers the reset button.
const ResetDerateSec = time.Second

// FaultTimeout is how long the State Machine Core waits for a matching
// EMCY entry before giving up and issuing FAULT_RESET anyway.
const FaultTimeout = time.Second

// EmcyRequester is notified when a slave transitions into FAULT, mirroring
// the original driver's call into the SDO layer to go collect pending
// emergencies out of band. Optional: a nil EmcyRequester means the caller
// already pushes emergencies to the Queue as they occur.
type EmcyRequester interface {
	RequestEMCYCheck(slaveID uint16)
}

// Slave is one EPD drive's cyclic driver instance.
type Slave struct {
	mu sync.Mutex

	id        uint16
	identity  Identity
	emcy      *emergency.Queue
	clock     clock.Clock
	requester EmcyRequester
	logger    *slog.Logger

	driveInfo           config.DriveInfo
	motorRatedCurrentMA uint32

	txpdo pdo.TxPDO
	rxpdo pdo.RxPDO

	telemetry telemetry.State

	lastResetTime         time.Duration
	lastStateMachineState state.MachineState
	faultRealTime         time.Time
	faultMonoTime         time.Duration
	emcyErrorCode         uint16

	newReset                 bool
	newHaltCommand           bool
	requestedModeOfOperation state.ModeOfOperation
	motionCommand            MotionCommand
}

// NewSlave validates observed identity, runs the one-shot Startup
// Configurator, and returns a ready-for-cyclic-operation Slave. Any
// failure here is an init-time error; the caller (bus master) must not
// promote the slave to cyclic operation.
func NewSlave(
	id uint16,
	observed Identity,
	cfg config.Configuration,
	transport sdo.Transport,
	descriptor config.Descriptor,
	emcyQueue *emergency.Queue,
	clk clock.Clock,
	requester EmcyRequester,
	logger *slog.Logger,
) (*Slave, error) {
	if observed != RequiredIdentity() {
		return nil, fmt.Errorf("%w: slave %d reports vendor 0x%x product 0x%x",
			ErrNotEPD, id, observed.VendorID, observed.ProductCode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "epd", "slave_id", id)

	configurator := config.New(transport, descriptor)
	driveInfo, err := configurator.Configure(cfg)
	if err != nil {
		return nil, err
	}

	s := &Slave{
		id:                  id,
		identity:            observed,
		emcy:                emcyQueue,
		clock:               clk,
		requester:           requester,
		logger:              logger,
		driveInfo:           driveInfo,
		motorRatedCurrentMA: cfg.MotorRatedCurrentMA(),
		// Guarantee the first Reset() call is never derate-rejected,
		// regardless of where the clock's monotonic epoch starts.
		lastResetTime: -2 * ResetDerateSec,
	}
	s.SetPeakCurrent(cfg.PeakCurrentLimit)

	logger.Debug("EPD slave initialized",
		"txpdo_size", pdo.TxPDOSize, "rxpdo_size", pdo.RxPDOSize,
		"motor_rated_current_ma", s.motorRatedCurrentMA)

	return s, nil
}

// Read ingests a TxPDO frame copied from the bus and updates the public
// telemetry snapshot. It performs no blocking I/O.
func (s *Slave) Read(txpdoBytes []byte) error {
	var txpdo pdo.TxPDO
	if err := txpdo.Decode(txpdoBytes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txpdo = txpdo
	decoded := telemetry.Decode(&s.txpdo, &s.rxpdo, s.motorRatedCurrentMA)
	decoded.EmcyErrorCode = s.emcyErrorCode

	if decoded.ActualStateMachineState != s.lastStateMachineState {
		s.logger.Info("state machine state changed",
			"from", s.lastStateMachineState, "to", decoded.ActualStateMachineState)
		if decoded.ActualStateMachineState == state.Fault {
			s.faultRealTime = s.clock.Now()
			s.faultMonoTime = s.clock.Monotonic()
			if s.requester != nil {
				s.requester.RequestEMCYCheck(s.id)
			}
		}
	}
	s.lastStateMachineState = decoded.ActualStateMachineState

	s.telemetry = decoded
	return nil
}

// Process runs the State Machine Core (and, in OPERATION_ENABLED, the
// Mode-of-Operation Dispatcher), then encodes the resulting RxPDO into
// rxpdoBytes for the bus. It performs no blocking I/O.
func (s *Slave) Process(rxpdoBytes []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runStateMachine()
	s.newHaltCommand = false

	s.telemetry.EmcyErrorCode = s.emcyErrorCode
	return s.rxpdo.Encode(rxpdoBytes)
}

// GetState returns a copy of the public telemetry snapshot, stable until
// the next Read.
func (s *Slave) GetState() telemetry.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.telemetry
}

// Reset raises the new_reset edge flag, rate-limited by ResetDerateSec to
// prevent oscillation through fault/enable.
func (s *Slave) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Monotonic()
	if now-s.lastResetTime <= ResetDerateSec {
		s.logger.Warn("reset derate protection is preventing reset, ignoring request")
		return
	}
	s.newReset = true
	s.lastResetTime = now
}

// Halt raises the new_halt_command edge flag. Calling it repeatedly
// within a cycle is equivalent to calling it once.
func (s *Slave) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newHaltCommand = true
}

// SetDigitalOutput sets or clears RxPDO digital output bit (16+index).
func (s *Slave) SetDigitalOutput(index uint8, on bool) error {
	if index >= NumDigitalOutputs {
		return fmt.Errorf("%w: %d", ErrDigitalOutputIndex, index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bit := uint32(1) << (16 + index)
	if on {
		s.rxpdo.DigitalOutputs |= bit
	} else {
		s.rxpdo.DigitalOutputs &^= bit
	}
	return nil
}

// SetPeakCurrent writes RxPDO.MaxCurrent scaled from amps to the drive's
// rated-current fraction.
func (s *Slave) SetPeakCurrent(amps float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxpdo.MaxCurrent = uint16(amps * 1e6 / float64(s.motorRatedCurrentMA))
}

// SetMotionCommandCSP stages a CSP motion command, reapplied by the
// Mode-of-Operation Dispatcher on every Process call while in
// OPERATION_ENABLED, until superseded by a halt, reset, or another
// motion command.
func (s *Slave) SetMotionCommandCSP(cmd MotionCommandCSP) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestedModeOfOperation = state.ModeCSP
	s.motionCommand = cmd
}

// DriveInfo returns the values read back from the drive during startup
// configuration (CA[18] counts/rev, MC[1] drive max current, UM[1]).
func (s *Slave) DriveInfo() config.DriveInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driveInfo
}
