// Package sdotest provides an in-memory fake implementing sdo.Transport,
// modeled on the virtual-bus test fixtures gocanopen uses for its own SDO
// client tests (pkg/can/virtual + CreateNetworkTest). It keeps a simple
// object-dictionary map keyed by (index, subindex) so startup
// configuration tests can pre-seed drive-reported values (e.g. CA[18],
// MC[1]) and assert on what was written.
package sdotest

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when reading a key that was never Set.
var ErrNotFound = errors.New("sdotest: object not found")

type key struct {
	index    uint16
	subindex uint8
}

// Fake is an in-memory sdo.Transport. Values are stored as `any` and
// type-asserted on read, so a test must Set the exact Go type the driver
// will request.
type Fake struct {
	mu      sync.Mutex
	values  map[key]any
	written []Write
	// FailOn, if set, makes writes/reads to this (index, subindex) fail,
	// to test the Startup Configurator's abort-on-first-failure path.
	FailOn map[key]error
}

// Write records one WriteXxx call for assertions.
type Write struct {
	Index    uint16
	Subindex uint8
	Value    any
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{values: make(map[key]any)}
}

// Set seeds a value at (index, subindex), as the drive would report it.
func (f *Fake) Set(index uint16, subindex uint8, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key{index, subindex}] = value
}

// FailAt makes every subsequent access to (index, subindex) return err.
func (f *Fake) FailAt(index uint16, subindex uint8, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOn == nil {
		f.FailOn = make(map[key]error)
	}
	f.FailOn[key{index, subindex}] = err
}

// Writes returns every successful WriteXxx/WriteComplete call made so far,
// in order. Writes rejected by FailAt are not recorded.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Write, len(f.written))
	copy(out, f.written)
	return out
}

func (f *Fake) checkFail(index uint16, subindex uint8) error {
	if err, ok := f.FailOn[key{index, subindex}]; ok {
		return err
	}
	return nil
}

func read[T any](f *Fake, index uint16, subindex uint8) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero T
	if err := f.checkFail(index, subindex); err != nil {
		return zero, err
	}
	raw, ok := f.values[key{index, subindex}]
	if !ok {
		return zero, fmt.Errorf("%w: x%x:%x", ErrNotFound, index, subindex)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("sdotest: type mismatch at x%x:%x: have %T, want %T", index, subindex, raw, zero)
	}
	return v, nil
}

func write[T any](f *Fake, index uint16, subindex uint8, value T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFail(index, subindex); err != nil {
		return err
	}
	f.values[key{index, subindex}] = value
	f.written = append(f.written, Write{Index: index, Subindex: subindex, Value: value})
	return nil
}

func (f *Fake) ReadI8(index uint16, subindex uint8) (int8, error) { return read[int8](f, index, subindex) }
func (f *Fake) ReadI16(index uint16, subindex uint8) (int16, error) {
	return read[int16](f, index, subindex)
}
func (f *Fake) ReadI32(index uint16, subindex uint8) (int32, error) {
	return read[int32](f, index, subindex)
}
func (f *Fake) ReadI64(index uint16, subindex uint8) (int64, error) {
	return read[int64](f, index, subindex)
}
func (f *Fake) ReadU8(index uint16, subindex uint8) (uint8, error) { return read[uint8](f, index, subindex) }
func (f *Fake) ReadU16(index uint16, subindex uint8) (uint16, error) {
	return read[uint16](f, index, subindex)
}
func (f *Fake) ReadU32(index uint16, subindex uint8) (uint32, error) {
	return read[uint32](f, index, subindex)
}
func (f *Fake) ReadF32(index uint16, subindex uint8) (float32, error) {
	return read[float32](f, index, subindex)
}
func (f *Fake) ReadF64(index uint16, subindex uint8) (float64, error) {
	return read[float64](f, index, subindex)
}

func (f *Fake) WriteI8(index uint16, subindex uint8, value int8) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteI16(index uint16, subindex uint8, value int16) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteI32(index uint16, subindex uint8, value int32) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteI64(index uint16, subindex uint8, value int64) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteU8(index uint16, subindex uint8, value uint8) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteU16(index uint16, subindex uint8, value uint16) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteU32(index uint16, subindex uint8, value uint32) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteF32(index uint16, subindex uint8, value float32) error {
	return write(f, index, subindex, value)
}
func (f *Fake) WriteF64(index uint16, subindex uint8, value float64) error {
	return write(f, index, subindex, value)
}

func (f *Fake) WriteComplete(index uint16, data []byte) error {
	return write(f, index, 0, append([]byte(nil), data...))
}
