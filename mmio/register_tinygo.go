//go:build tinygo

package mmio

import "runtime/volatile"

// Get reads the register with a volatile load.
func (r *Register32) Get() uint32 {
	return volatile.LoadUint32(&r.Reg)
}

// Set writes the register with a volatile store.
func (r *Register32) Set(v uint32) {
	volatile.StoreUint32(&r.Reg, v)
}
