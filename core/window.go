package core

import (
	"unsafe"

	"apbio/errcode"
	"apbio/mmio"
)

// window performs the traced register writes for one peripheral. Callers
// hold the critical section.
type window struct {
	block Block
	base  uintptr
}

func newWindow[T mmio.Block](block Block, regs *T) window {
	return window{block: block, base: uintptr(unsafe.Pointer(regs))}
}

func (w window) offset(r *mmio.Register32) uint8 {
	return uint8(uintptr(unsafe.Pointer(r)) - w.base)
}

// update rewrites the bits in mask with value and leaves every other bit as
// it was read.
func (w window) update(r *mmio.Register32, mask, value uint32) {
	before := r.Get()
	after := before&^mask | value&mask
	r.Set(after)
	recordTrace(TraceEvent{
		Kind:   TraceModify,
		Block:  w.block,
		Offset: w.offset(r),
		Before: before,
		After:  after,
	})
}

// store writes v without reading the register first. Used for value
// registers and write-1-to-clear pulses, where merging in the old contents
// would re-acknowledge bits the caller never named.
func (w window) store(r *mmio.Register32, v uint32) {
	r.Set(v)
	recordTrace(TraceEvent{
		Kind:   TraceStore,
		Block:  w.block,
		Offset: w.offset(r),
		After:  v,
	})
}

// checkMask validates bulk masks before any register is touched.
func checkMask(op string, masks ...uint32) error {
	for _, m := range masks {
		if !maskInRange(m) {
			return &errcode.E{C: errcode.MaskOutOfRange, Op: op, Msg: hex32(m)}
		}
	}
	return nil
}

// flag returns bits when on is true and zero otherwise.
func flag(on bool, bits uint32) uint32 {
	if on {
		return bits
	}
	return 0
}
