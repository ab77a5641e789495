// Package sdo defines the blocking SDO transport contract the EPD driver
// depends on for one-shot startup configuration. The core never talks
// EtherCAT directly: it is handed a Transport by the bus master and only
// cares that it returns success or failure for typed reads and writes,
// per spec section 6 ("The core depends on a transport that returns
// success/failure only").
package sdo

// Transport is the narrow blocking SDO client interface the Startup
// Configurator needs. A production implementation sits on top of the
// generic CANopen/EtherCAT SDO machinery (an external collaborator to
// this module); sdotest.Fake implements it in-memory for tests.
type Transport interface {
	ReadI8(index uint16, subindex uint8) (int8, error)
	ReadI16(index uint16, subindex uint8) (int16, error)
	ReadI32(index uint16, subindex uint8) (int32, error)
	ReadI64(index uint16, subindex uint8) (int64, error)
	ReadU8(index uint16, subindex uint8) (uint8, error)
	ReadU16(index uint16, subindex uint8) (uint16, error)
	ReadU32(index uint16, subindex uint8) (uint32, error)
	ReadF32(index uint16, subindex uint8) (float32, error)
	ReadF64(index uint16, subindex uint8) (float64, error)

	WriteI8(index uint16, subindex uint8, value int8) error
	WriteI16(index uint16, subindex uint8, value int16) error
	WriteI32(index uint16, subindex uint8, value int32) error
	WriteI64(index uint16, subindex uint8, value int64) error
	WriteU8(index uint16, subindex uint8, value uint8) error
	WriteU16(index uint16, subindex uint8, value uint16) error
	WriteU32(index uint16, subindex uint8, value uint32) error
	WriteF32(index uint16, subindex uint8, value float32) error
	WriteF64(index uint16, subindex uint8, value float64) error

	// WriteComplete writes a full object with Complete Access, used for
	// the RxPDO/TxPDO mapping objects which are arrays written in one
	// transfer.
	WriteComplete(index uint16, data []byte) error
}
