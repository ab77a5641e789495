// Package pdo implements the fixed, packed little-endian wire layouts of
// the EPD RxPDO (host to drive) and TxPDO (drive to host) process data
// frames, and the mapping entries the Startup Configurator installs at
// 0x1602/0x1603/0x1A02/0x1A03 to produce them on the wire.
//
// Field order and width are contractual: they must exactly match the
// mapping objects written during startup configuration. Changing either
// without updating the mapping breaks PDO exchange with the drive.
package pdo

import "encoding/binary"

// RxPDOSize is the wire size in bytes of an RxPDO frame.
const RxPDOSize = 4 + 4 + 2 + 4 + 4 + 2 + 1 + 2 + 4 + 2

// TxPDOSize is the wire size in bytes of a TxPDO frame.
const TxPDOSize = 4 + 4 + 2 + 1 + 4 + 4 + 4 + 2 + 2 + 4 + 4 + 2

// RxPDO is the host-to-drive process data frame, in contractual field
// order. mode_of_operation is signed 8-bit per CiA-402 (object 0x6060).
type RxPDO struct {
	TargetPosition  int32
	TargetVelocity  int32
	TargetTorque    int16
	PositionOffset  int32
	VelocityOffset  int32
	TorqueOffset    int16
	ModeOfOperation int8
	MaxCurrent      uint16
	DigitalOutputs  uint32
	Controlword     uint16
}

// Encode packs r into buf, little-endian, with no padding. buf must be
// exactly RxPDOSize bytes.
func (r *RxPDO) Encode(buf []byte) error {
	if len(buf) != RxPDOSize {
		return ErrBufferLength
	}
	o := 0
	putI32(buf, &o, r.TargetPosition)
	putI32(buf, &o, r.TargetVelocity)
	putI16(buf, &o, r.TargetTorque)
	putI32(buf, &o, r.PositionOffset)
	putI32(buf, &o, r.VelocityOffset)
	putI16(buf, &o, r.TorqueOffset)
	buf[o] = byte(r.ModeOfOperation)
	o++
	binary.LittleEndian.PutUint16(buf[o:], r.MaxCurrent)
	o += 2
	binary.LittleEndian.PutUint32(buf[o:], r.DigitalOutputs)
	o += 4
	binary.LittleEndian.PutUint16(buf[o:], r.Controlword)
	o += 2
	return nil
}

// Decode unpacks buf into r. buf must be exactly RxPDOSize bytes.
func (r *RxPDO) Decode(buf []byte) error {
	if len(buf) != RxPDOSize {
		return ErrBufferLength
	}
	o := 0
	r.TargetPosition = getI32(buf, &o)
	r.TargetVelocity = getI32(buf, &o)
	r.TargetTorque = getI16(buf, &o)
	r.PositionOffset = getI32(buf, &o)
	r.VelocityOffset = getI32(buf, &o)
	r.TorqueOffset = getI16(buf, &o)
	r.ModeOfOperation = int8(buf[o])
	o++
	r.MaxCurrent = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	r.DigitalOutputs = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	r.Controlword = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	return nil
}

// TxPDO is the drive-to-host process data frame, in contractual field
// order.
type TxPDO struct {
	ActualPosition         int32
	VelocityActualValue    int32
	CurrentActualValue     int16
	ModeOfOperationDisplay int8
	DCLinkCircuitVoltage   uint32
	DriveTemperatureDegC   int32
	DigitalInputs          uint32
	AnalogInput1           uint16
	AnalogInput2           uint16
	StatusRegister1        uint32
	StatusRegister2        uint32
	Statusword             uint16
}

// Encode packs t into buf, little-endian, with no padding. buf must be
// exactly TxPDOSize bytes.
func (t *TxPDO) Encode(buf []byte) error {
	if len(buf) != TxPDOSize {
		return ErrBufferLength
	}
	o := 0
	putI32(buf, &o, t.ActualPosition)
	putI32(buf, &o, t.VelocityActualValue)
	putI16(buf, &o, t.CurrentActualValue)
	buf[o] = byte(t.ModeOfOperationDisplay)
	o++
	binary.LittleEndian.PutUint32(buf[o:], t.DCLinkCircuitVoltage)
	o += 4
	putI32(buf, &o, t.DriveTemperatureDegC)
	binary.LittleEndian.PutUint32(buf[o:], t.DigitalInputs)
	o += 4
	binary.LittleEndian.PutUint16(buf[o:], t.AnalogInput1)
	o += 2
	binary.LittleEndian.PutUint16(buf[o:], t.AnalogInput2)
	o += 2
	binary.LittleEndian.PutUint32(buf[o:], t.StatusRegister1)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], t.StatusRegister2)
	o += 4
	binary.LittleEndian.PutUint16(buf[o:], t.Statusword)
	o += 2
	return nil
}

// Decode unpacks buf into t. buf must be exactly TxPDOSize bytes.
func (t *TxPDO) Decode(buf []byte) error {
	if len(buf) != TxPDOSize {
		return ErrBufferLength
	}
	o := 0
	t.ActualPosition = getI32(buf, &o)
	t.VelocityActualValue = getI32(buf, &o)
	t.CurrentActualValue = getI16(buf, &o)
	t.ModeOfOperationDisplay = int8(buf[o])
	o++
	t.DCLinkCircuitVoltage = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	t.DriveTemperatureDegC = getI32(buf, &o)
	t.DigitalInputs = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	t.AnalogInput1 = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	t.AnalogInput2 = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	t.StatusRegister1 = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	t.StatusRegister2 = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	t.Statusword = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	return nil
}

func putI32(buf []byte, o *int, v int32) {
	binary.LittleEndian.PutUint32(buf[*o:], uint32(v))
	*o += 4
}

func putI16(buf []byte, o *int, v int16) {
	binary.LittleEndian.PutUint16(buf[*o:], uint16(v))
	*o += 2
}

func getI32(buf []byte, o *int) int32 {
	v := int32(binary.LittleEndian.Uint32(buf[*o:]))
	*o += 4
	return v
}

func getI16(buf []byte, o *int) int16 {
	v := int16(binary.LittleEndian.Uint16(buf[*o:]))
	*o += 2
	return v
}
