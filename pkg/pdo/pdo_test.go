package pdo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRxPDORoundTrip(t *testing.T) {
	want := RxPDO{
		TargetPosition:  123456,
		TargetVelocity:  -98765,
		TargetTorque:    1234,
		PositionOffset:  10,
		VelocityOffset:  -20,
		TorqueOffset:    -5,
		ModeOfOperation: int8(8),
		MaxCurrent:      1250,
		DigitalOutputs:  0xCAFEBABE,
		Controlword:     0x000F,
	}
	buf := make([]byte, RxPDOSize)
	require.NoError(t, want.Encode(buf))

	var got RxPDO
	require.NoError(t, got.Decode(buf))
	assert.Equal(t, want, got)
}

func TestTxPDORoundTrip(t *testing.T) {
	want := TxPDO{
		ActualPosition:         -42,
		VelocityActualValue:    1000,
		CurrentActualValue:     -321,
		ModeOfOperationDisplay: 8,
		DCLinkCircuitVoltage:   48000,
		DriveTemperatureDegC:   -10,
		DigitalInputs:          0x00010008,
		AnalogInput1:           1500,
		AnalogInput2:           4095,
		StatusRegister1:        1 << 22,
		StatusRegister2:        0x05,
		Statusword:             0x0237,
	}
	buf := make([]byte, TxPDOSize)
	require.NoError(t, want.Encode(buf))

	var got TxPDO
	require.NoError(t, got.Decode(buf))
	assert.Equal(t, want, got)
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	var r RxPDO
	assert.ErrorIs(t, r.Encode(make([]byte, RxPDOSize-1)), ErrBufferLength)
	var tp TxPDO
	assert.ErrorIs(t, tp.Decode(make([]byte, TxPDOSize+1)), ErrBufferLength)
}

func TestMapEntryValue(t *testing.T) {
	e := MapEntry{Index: 0x607A, Subindex: 0x00, LengthBits: 0x20}
	assert.Equal(t, uint32(0x607A0020), e.Value())
}

func TestMappingSizes(t *testing.T) {
	assert.Len(t, RxPDOMapping0x1602, 8)
	assert.Len(t, RxPDOMapping0x1603, 2)
	assert.Len(t, TxPDOMapping0x1A02, 8)
	assert.Len(t, TxPDOMapping0x1A03, 4)
}
