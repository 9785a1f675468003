//go:build !tinygo

package mmio

import "sync/atomic"

// Get reads the register (regular Go implementation).
// Atomic loads keep the compiler from caching the value, which is what a
// volatile load guarantees on the MCU.
func (r *Register32) Get() uint32 {
	return atomic.LoadUint32(&r.Reg)
}

// Set writes the register (regular Go implementation).
func (r *Register32) Set(v uint32) {
	atomic.StoreUint32(&r.Reg, v)
}
