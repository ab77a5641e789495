package epd

import "errors"

// ErrNotEPD is returned by NewSlave when the observed Identity does not
// match an Elmo EPD drive.
var ErrNotEPD = errors.New("epd: slave identity does not match Elmo EPD")

// ErrDigitalOutputIndex is returned by SetDigitalOutput for an
// out-of-range index.
var ErrDigitalOutputIndex = errors.New("epd: digital output index out of range")
