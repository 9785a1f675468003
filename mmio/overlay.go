package mmio

import "unsafe"

// Block is any register window defined in this package.
type Block interface {
	GPIOBlock | TimerBlock
}

// At overlays a register window on the physical address base. It is only
// meaningful where base is directly addressable (bare-metal firmware).
func At[T Block](base uintptr) *T {
	return (*T)(unsafe.Pointer(base))
}

// GPIOAt overlays the GPIO window at base.
func GPIOAt(base uintptr) *GPIOBlock {
	return At[GPIOBlock](base)
}

// TimerAt overlays the Timer window at base.
func TimerAt(base uintptr) *TimerBlock {
	return At[TimerBlock](base)
}
