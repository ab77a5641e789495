package pdo

// MapEntry is one sub-entry of a CANopen PDO mapping object (0x1602,
// 0x1603, 0x1A02, 0x1A03): the 32-bit value written is
// (Index<<16 | Subindex<<8 | LengthBits).
type MapEntry struct {
	Index      uint16
	Subindex   uint8
	LengthBits uint8
}

// Value packs the entry into the uint32 form the object dictionary
// expects.
func (e MapEntry) Value() uint32 {
	return uint32(e.Index)<<16 | uint32(e.Subindex)<<8 | uint32(e.LengthBits)
}

// RxPDOMapping0x1602 maps the first 8 RxPDO fields (target_position
// through max_current) in the order the RxPDO struct expects them.
var RxPDOMapping0x1602 = []MapEntry{
	{0x607A, 0x00, 0x20}, // target_position
	{0x60FF, 0x00, 0x20}, // target_velocity
	{0x6071, 0x00, 0x10}, // target_torque
	{0x60B0, 0x00, 0x20}, // position_offset
	{0x60B1, 0x00, 0x20}, // velocity_offset
	{0x60B2, 0x00, 0x10}, // torque_offset
	{0x6060, 0x00, 0x08}, // mode_of_operation
	{0x6073, 0x00, 0x10}, // max_current
}

// RxPDOMapping0x1603 maps the remaining 2 RxPDO fields (digital_outputs,
// controlword).
var RxPDOMapping0x1603 = []MapEntry{
	{0x60FE, 0x01, 0x20}, // digital_outputs
	{0x6040, 0x00, 0x10}, // controlword
}

// TxPDOMapping0x1A02 maps the first 8 TxPDO fields.
var TxPDOMapping0x1A02 = []MapEntry{
	{0x6064, 0x00, 0x20}, // actual_position
	{0x6069, 0x00, 0x20}, // velocity_actual_value
	{0x6078, 0x00, 0x10}, // current_actual_value
	{0x6061, 0x00, 0x08}, // mode_of_operation_display
	{0x6079, 0x00, 0x20}, // dc_link_circuit_voltage
	{0x3610, 0x00, 0x20}, // drive_temperature_deg_c
	{0x60FD, 0x00, 0x20}, // digital_inputs
	{0x2205, 0x01, 0x10}, // analog_input_1
}

// TxPDOMapping0x1A03 maps the remaining 4 TxPDO fields.
var TxPDOMapping0x1A03 = []MapEntry{
	{0x2205, 0x02, 0x10}, // analog_input_2
	{0x3607, 0x01, 0x20}, // status_register_1
	{0x3607, 0x02, 0x20}, // status_register_2
	{0x6041, 0x00, 0x10}, // statusword
}

// RxPDOAssignment0x1C12 lists the RxPDO mapping objects assigned to this
// slave's sync manager, in order.
var RxPDOAssignment0x1C12 = []uint16{0x1602, 0x1603}

// TxPDOAssignment0x1C13 lists the TxPDO mapping objects assigned to this
// slave's sync manager, in order.
var TxPDOAssignment0x1C13 = []uint16{0x1A02, 0x1A03}
