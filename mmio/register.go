// Package mmio describes the register windows of the APB GPIO and Timer
// peripherals. A window is a struct of 32-bit registers laid out exactly as the
// datasheet orders them, overlaid on the peripheral's base address.
package mmio

// Register32 is a single 32-bit read-write hardware register. The method set
// matches runtime/volatile.Register32 so driver code reads the same on the MCU
// and on the host.
type Register32 struct {
	Reg uint32
}

// SetBits sets the bits in v, leaving the others untouched.
func (r *Register32) SetBits(v uint32) {
	r.Set(r.Get() | v)
}

// ClearBits clears the bits in v, leaving the others untouched.
func (r *Register32) ClearBits(v uint32) {
	r.Set(r.Get() &^ v)
}

// HasBits reports whether any bit in v is set.
func (r *Register32) HasBits(v uint32) bool {
	return r.Get()&v != 0
}

// ReplaceBits replaces the field mask<<pos with value<<pos.
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}
