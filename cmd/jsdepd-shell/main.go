// Command jsdepd-shell is a manual smoke-test harness for pkg/epd: it
// wires a fake SDO transport and fake clock to a Slave, runs startup
// configuration against a simulated drive, then lets an operator type
// commands at a prompt and watch the cyclic telemetry change, the same
// way cmd/sdo_client and cmd/canopen exercise the CANopen stack without
// a real bus.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nasa-jpl/jsd-epd/pkg/clock/clocktest"
	"github.com/nasa-jpl/jsd-epd/pkg/config"
	"github.com/nasa-jpl/jsd-epd/pkg/emergency"
	"github.com/nasa-jpl/jsd-epd/pkg/epd"
	"github.com/nasa-jpl/jsd-epd/pkg/lc"
	"github.com/nasa-jpl/jsd-epd/pkg/pdo"
	"github.com/nasa-jpl/jsd-epd/pkg/sdo/sdotest"
	"github.com/nasa-jpl/jsd-epd/pkg/state"
)

func main() {
	iniPath := flag.String("config", "", "path to an INI configuration file (default: built-in test values)")
	flag.Parse()

	logger := slog.Default()

	cfg, err := loadConfiguration(*iniPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading configuration:", err)
		os.Exit(1)
	}

	fake := sdotest.New()
	fake.Set(lc.Resolve("CA"), 18, int64(8192))
	fake.Set(lc.Resolve("MC"), 1, float32(cfg.PeakCurrentLimit*2))
	fake.Set(lc.Resolve("UM"), 1, int16(5))

	clk := clocktest.New(time.Now())
	emcyQueue := emergency.NewQueue(0)

	slave, err := epd.NewSlave(0, epd.RequiredIdentity(), cfg, fake, nil, emcyQueue, clk, nil, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error configuring slave:", err)
		os.Exit(1)
	}

	sim := &virtualDrive{stateMachineState: state.SwitchOnDisabled}

	fmt.Println("jsdepd-shell: simulated EPD, no real bus attached.")
	fmt.Println("commands: reset | halt | csp <pos> <posoff> <veloff> <torqueoff> | do <index> <on|off> | peak <amps> | state | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		tick(slave, sim)
		printState(slave)

		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if err := dispatch(slave, strings.Fields(scanner.Text())); err != nil {
			if err == errQuit {
				return
			}
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(slave *epd.Slave, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "reset":
		slave.Reset()
	case "halt":
		slave.Halt()
	case "state":
		// printed every loop iteration already
	case "peak":
		if len(fields) != 2 {
			return fmt.Errorf("usage: peak <amps>")
		}
		amps, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		slave.SetPeakCurrent(amps)
	case "do":
		if len(fields) != 3 {
			return fmt.Errorf("usage: do <index> <on|off>")
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		return slave.SetDigitalOutput(uint8(idx), fields[2] == "on")
	case "csp":
		if len(fields) != 5 {
			return fmt.Errorf("usage: csp <pos> <posoff> <veloff> <torqueoff>")
		}
		pos, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return err
		}
		posoff, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return err
		}
		veloff, err := strconv.ParseInt(fields[3], 10, 32)
		if err != nil {
			return err
		}
		torqueoff, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return err
		}
		slave.SetMotionCommandCSP(epd.MotionCommandCSP{
			TargetPosition:   int32(pos),
			PositionOffset:   int32(posoff),
			VelocityOffset:   int32(veloff),
			TorqueOffsetAmps: torqueoff,
		})
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func printState(slave *epd.Slave) {
	st := slave.GetState()
	fmt.Printf("state=%-22s mode=%-24s pos=%d vel=%d cur=%.2fA emcy=0x%04x\n",
		st.ActualStateMachineState, st.ActualModeOfOperation,
		int32(st.ActualPosition), int32(st.ActualVelocity), st.ActualCurrent, st.EmcyErrorCode)
}

// virtualDrive stands in for the EtherCAT bus master's cyclic exchange:
// it echoes back a statusword that tracks whatever controlword the
// state machine last wrote, so the shell has something to converge
// against without a real drive attached.
type virtualDrive struct {
	stateMachineState state.MachineState
}

func (v *virtualDrive) step(rx pdo.RxPDO) pdo.TxPDO {
	switch state.Controlword(rx.Controlword) {
	case state.ControlwordShutdown:
		v.stateMachineState = state.ReadyToSwitchOn
	case state.ControlwordSwitchOn:
		v.stateMachineState = state.SwitchedOn
	case state.ControlwordEnableOperation:
		v.stateMachineState = state.OperationEnabled
	case state.ControlwordQuickStop:
		v.stateMachineState = state.SwitchOnDisabled
	case state.ControlwordFaultReset:
		v.stateMachineState = state.SwitchOnDisabled
	}
	return pdo.TxPDO{
		ActualPosition:         rx.TargetPosition,
		VelocityActualValue:    rx.TargetVelocity,
		ModeOfOperationDisplay: rx.ModeOfOperation,
		Statusword:             uint16(v.stateMachineState),
	}
}

func tick(slave *epd.Slave, sim *virtualDrive) {
	rxBuf := make([]byte, pdo.RxPDOSize)
	_ = slave.Process(rxBuf)

	var rx pdo.RxPDO
	_ = rx.Decode(rxBuf)
	tx := sim.step(rx)

	txBuf := make([]byte, pdo.TxPDOSize)
	_ = tx.Encode(txBuf)
	_ = slave.Read(txBuf)
}

func loadConfiguration(path string) (config.Configuration, error) {
	if path == "" {
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
		}, nil
	}
	return epd.LoadConfigurationINI(path)
}
