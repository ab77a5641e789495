package config

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nasa-jpl/jsd-epd/pkg/lc"
	"github.com/nasa-jpl/jsd-epd/pkg/pdo"
	"github.com/nasa-jpl/jsd-epd/pkg/sdo"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
	log "github.com/sirupsen/logrus"
)

// Descriptor exposes the EtherCAT slave-descriptor level bits the
// Startup Configurator must flip before PDO mapping: disabling Complete
// Access and forcing block-LRW. This is bus-master state, not an SDO
// object, so it is a separate, optional collaborator rather than part of
// sdo.Transport. A nil Descriptor means "bus master already configured
// these", matching an integration where the master applies them itself.
type Descriptor interface {
	DisableCompleteAccess()
	SetBlockLRW(enabled bool)
}

// DriveInfo carries the values read back from the drive during startup
// configuration that the rest of the driver needs afterward.
type DriveInfo struct {
	// CountsPerRev is CA[18], used elsewhere to convert speeds between
	// counts/s and rpm.
	CountsPerRev int64
	// DriveMaxCurrentA is MC[1], the drive's reported current ceiling.
	DriveMaxCurrentA float32
	// ControlLoopType is UM[1], logged for operator visibility only.
	ControlLoopType int16
}

// extrapolationTimeoutCycles is the fixed value written to 0x3675 per
// spec.md section 4.3 step 4 (chosen from EtherCAT library testing in the
// original driver).
const extrapolationTimeoutCycles = 5

// quickStopOptionCode slows down on the quick-stop ramp and transitions
// to SWITCH_ON_DISABLED, per spec.md section 4.3 step 4.
const quickStopOptionCode = 2

// positionOptionCodeRelativeToActual is written to 0x60F2 per spec.md
// section 4.3 step 4.
const positionOptionCodeRelativeToActual = 0x02

// Configurator runs the one-shot EPD startup configuration sequence.
type Configurator struct {
	transport  sdo.Transport
	descriptor Descriptor
	logger     *log.Entry
}

// New creates a Configurator. descriptor may be nil.
func New(t sdo.Transport, descriptor Descriptor) *Configurator {
	return &Configurator{
		transport:  t,
		descriptor: descriptor,
		logger:     log.WithField("component", "epd-startup-config"),
	}
}

// Configure runs the full PO2SO sequence: PDO mapping, CiA-402
// configuration objects, Letter Command parameters, and current-limit/
// unit validation, in the order spec.md section 4.3 specifies, aborting
// on the first failure.
func (c *Configurator) Configure(cfg Configuration) (DriveInfo, error) {
	if err := cfg.Validate(); err != nil {
		return DriveInfo{}, err
	}

	if c.descriptor != nil {
		c.descriptor.DisableCompleteAccess()
		c.descriptor.SetBlockLRW(true)
	}

	if err := c.configurePDOMapping(); err != nil {
		return DriveInfo{}, fmt.Errorf("%w: PDO mapping: %w", ErrStartupFailed, err)
	}

	motorRatedCurrentMA := cfg.MotorRatedCurrentMA()
	countsPerRev, err := c.configureCiA402(cfg, motorRatedCurrentMA)
	if err != nil {
		return DriveInfo{}, fmt.Errorf("%w: CiA-402 configuration: %w", ErrStartupFailed, err)
	}

	if err := c.configureLetterCommands(cfg); err != nil {
		return DriveInfo{}, fmt.Errorf("%w: letter command parameters: %w", ErrStartupFailed, err)
	}

	info, err := c.verifyCurrentLimitsAndUnits(cfg)
	if err != nil {
		return DriveInfo{}, fmt.Errorf("%w: current limit / unit verification: %v", ErrStartupFailed, err)
	}
	info.CountsPerRev = countsPerRev

	c.logger.Info("EPD drive parameters successfully configured and verified")
	return info, nil
}

func (c *Configurator) configurePDOMapping() error {
	c.logger.Debug("mapping custom EPD PDOs")

	if err := c.transport.WriteComplete(0x1602, encodeMapping(pdo.RxPDOMapping0x1602)); err != nil {
		return err
	}
	if err := c.transport.WriteComplete(0x1603, encodeMapping(pdo.RxPDOMapping0x1603)); err != nil {
		return err
	}
	if err := c.transport.WriteComplete(0x1C12, encodeAssignment(pdo.RxPDOAssignment0x1C12)); err != nil {
		return err
	}
	if err := c.transport.WriteComplete(0x1A02, encodeMapping(pdo.TxPDOMapping0x1A02)); err != nil {
		return err
	}
	if err := c.transport.WriteComplete(0x1A03, encodeMapping(pdo.TxPDOMapping0x1A03)); err != nil {
		return err
	}
	if err := c.transport.WriteComplete(0x1C13, encodeAssignment(pdo.TxPDOAssignment0x1C13)); err != nil {
		return err
	}
	return nil
}

// encodeMapping packs a mapping list the way Complete Access expects:
// subindex 0 holds the count, followed by one uint32 per entry.
func encodeMapping(entries []pdo.MapEntry) []byte {
	buf := make([]byte, 1+4*len(entries))
	buf[0] = byte(len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint32(buf[1+4*i:], e.Value())
	}
	return buf
}

func encodeAssignment(objects []uint16) []byte {
	buf := make([]byte, 1+2*len(objects))
	buf[0] = byte(len(objects))
	for i, o := range objects {
		binary.LittleEndian.PutUint16(buf[1+2*i:], o)
	}
	return buf
}

func (c *Configurator) configureCiA402(cfg Configuration, motorRatedCurrentMA uint32) (countsPerRev int64, err error) {
	if err := c.transport.WriteI8(0x6060, 0x00, int8(state.ModeProfPos)); err != nil {
		return 0, err
	}
	if err := c.transport.WriteU16(0x60F2, 0x00, positionOptionCodeRelativeToActual); err != nil {
		return 0, err
	}
	if err := c.transport.WriteU8(0x60C2, 0x01, cfg.LoopPeriodMs); err != nil {
		return 0, err
	}
	if err := c.transport.WriteI16(0x3675, 0x00, extrapolationTimeoutCycles); err != nil {
		return 0, err
	}
	if err := c.transport.WriteI16(0x605A, 0x00, quickStopOptionCode); err != nil {
		return 0, err
	}
	if err := c.transport.WriteU32(0x6075, 0x00, motorRatedCurrentMA); err != nil {
		return 0, err
	}
	torqueSlope := uint32(cfg.TorqueSlope * 1e6 / float64(motorRatedCurrentMA))
	if err := c.transport.WriteU32(0x6087, 0x00, torqueSlope); err != nil {
		return 0, err
	}

	countsPerRev, err = c.transport.ReadI64(lc.Resolve("CA"), 18)
	if err != nil {
		return 0, err
	}
	c.logger.WithField("counts_per_rev", countsPerRev).Info("read CA[18]")

	maxMotorSpeedRPM := uint32(math.Round(cfg.MaxMotorSpeed / float64(countsPerRev) * 60.0))
	if err := c.transport.WriteU32(0x6080, 0x00, maxMotorSpeedRPM); err != nil {
		return 0, err
	}
	return countsPerRev, nil
}

func (c *Configurator) configureLetterCommands(cfg Configuration) error {
	writes := []struct {
		mnemonic string
		sub      uint8
		write    func(index uint16, sub uint8) error
	}{
		{"AC", 1, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.MaxProfileAccel) }},
		{"DC", 1, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.MaxProfileDecel) }},
		{"ER", 2, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.VelocityTrackingError) }},
		{"ER", 3, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.PositionTrackingError) }},
		{"PL", 2, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.PeakCurrentTime)) }},
		{"PL", 1, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.PeakCurrentLimit)) }},
		{"CL", 1, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.ContinuousCurrentLimit)) }},
		{"CL", 2, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.MotorStuckCurrentLevelPct)) }},
		{"CL", 3, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.MotorStuckVelocityThreshold)) }},
		{"CL", 4, func(i uint16, s uint8) error { return c.transport.WriteF32(i, s, float32(cfg.MotorStuckTimeout)) }},
		{"HL", 2, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.OverSpeedThreshold) }},
		{"LL", 3, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.LowPositionLimit) }},
		{"HL", 3, func(i uint16, s uint8) error { return c.transport.WriteF64(i, s, cfg.HighPositionLimit) }},
		{"BP", 1, func(i uint16, s uint8) error { return c.transport.WriteI16(i, s, cfg.BrakeEngageMsec) }},
		{"BP", 2, func(i uint16, s uint8) error { return c.transport.WriteI16(i, s, cfg.BrakeDisengageMsec) }},
		{"SF", 1, func(i uint16, s uint8) error { return c.transport.WriteI64(i, s, cfg.SmoothFactor) }},
	}
	for _, w := range writes {
		index := lc.Resolve(w.mnemonic)
		if err := w.write(index, w.sub); err != nil {
			return fmt.Errorf("%s[%d]: %w", w.mnemonic, w.sub, err)
		}
	}
	return nil
}

func (c *Configurator) verifyCurrentLimitsAndUnits(cfg Configuration) (DriveInfo, error) {
	driveMaxCurrent, err := c.transport.ReadF32(lc.Resolve("MC"), 1)
	if err != nil {
		return DriveInfo{}, err
	}
	c.logger.WithField("drive_max_current_a", driveMaxCurrent).Info("read drive maximum current")

	if float32(cfg.PeakCurrentLimit) > driveMaxCurrent {
		return DriveInfo{}, fmt.Errorf("%w: peak current (%v) cannot exceed drive maximum current (%v)",
			ErrInvalidConfig, cfg.PeakCurrentLimit, driveMaxCurrent)
	}
	if cfg.ContinuousCurrentLimit > cfg.PeakCurrentLimit {
		return DriveInfo{}, fmt.Errorf("%w: continuous current (%v) must not exceed peak current (%v)",
			ErrInvalidConfig, cfg.ContinuousCurrentLimit, cfg.PeakCurrentLimit)
	}

	um, err := c.transport.ReadI16(lc.Resolve("UM"), 1)
	if err != nil {
		return DriveInfo{}, err
	}
	c.logger.WithField("um1", um).Info("read highest allowed control loop")

	return DriveInfo{DriveMaxCurrentA: driveMaxCurrent, ControlLoopType: um}, nil
}
