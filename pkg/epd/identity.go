package epd

// Identity is the EtherCAT vendor id / product code pair a slave reports
// on the bus. NewSlave rejects any slave whose observed Identity does not
// match RequiredIdentity — a non-Elmo-EPD device sharing the configured
// slave id is an initialization failure, not a cyclic one.
type Identity struct {
	VendorID    uint32
	ProductCode uint32
}

// Vendor id and product code the bus master's EtherCAT Slave Information
// (ESI) reports for an Elmo Platinum drive. Values are assigned by the
// vendor's device description, not derived.
const (
	ElmoVendorID   uint32 = 0x0000009A
	EPDProductCode uint32 = 0x00030924
)

// RequiredIdentity is the Identity every EPD slave must report.
func RequiredIdentity() Identity {
	return Identity{VendorID: ElmoVendorID, ProductCode: EPDProductCode}
}
