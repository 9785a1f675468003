// Package core owns the APB GPIO and Timer peripherals. Each handle is the
// single owner of its register window and exposes bit-accurate operations on
// it, so callers never do register arithmetic themselves.
package core

import (
	"apbio/errcode"
	"apbio/mmio"
)

// GPIO drives the GPIO block. Create it with NewGPIO.
type GPIO struct {
	regs *mmio.GPIOBlock
	w    window
}

// NewGPIO takes ownership of the GPIO register window. Only the first call
// in a process succeeds; every later call fails with
// errcode.DuplicateConstruction, whatever happened to the first handle.
func NewGPIO(regs *mmio.GPIOBlock) (*GPIO, error) {
	dup := &errcode.E{C: errcode.DuplicateConstruction, Op: "gpio.new", Msg: "GPIO already constructed"}
	if gpioClaim.taken() {
		return nil, dup
	}
	if regs == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "gpio.new", Msg: "nil register window"}
	}
	if !gpioClaim.acquire() {
		return nil, dup
	}
	return &GPIO{regs: regs, w: newWindow(BlockGPIO, regs)}, nil
}

// modify runs a single-register read-modify-write in a critical section
func (g *GPIO) modify(r *mmio.Register32, mask, value uint32) {
	state := disableInterrupts()
	g.w.update(r, mask, value)
	restoreInterrupts(state)
}

// pulse writes a write-1-to-clear register
func (g *GPIO) pulse(r *mmio.Register32, bits uint32) {
	state := disableInterrupts()
	g.w.store(r, bits)
	restoreInterrupts(state)
}

// EnableInput makes pin an input.
func (g *GPIO) EnableInput(pin Pin) {
	g.modify(&g.regs.Direction, pin.Bit(), 0)
}

// EnableInputs makes every pin in pins an input.
func (g *GPIO) EnableInputs(pins uint32) error {
	if err := checkMask("gpio.enable_inputs", pins); err != nil {
		return err
	}
	g.modify(&g.regs.Direction, pins, 0)
	return nil
}

// EnableOutput makes pin an output.
func (g *GPIO) EnableOutput(pin Pin) {
	g.modify(&g.regs.Direction, pin.Bit(), pin.Bit())
}

// EnableOutputs makes every pin in pins an output.
func (g *GPIO) EnableOutputs(pins uint32) error {
	if err := checkMask("gpio.enable_outputs", pins); err != nil {
		return err
	}
	g.modify(&g.regs.Direction, pins, pins)
	return nil
}

// ReadInput returns the data register masked to pin's bit. The result is
// either 0 or pin.Bit().
func (g *GPIO) ReadInput(pin Pin) uint32 {
	return g.regs.Data.Get() & pin.Bit()
}

// ReadInputs returns the data register masked to pins.
func (g *GPIO) ReadInputs(pins uint32) (uint32, error) {
	if err := checkMask("gpio.read_inputs", pins); err != nil {
		return 0, err
	}
	return g.regs.Data.Get() & pins, nil
}

// SetOutput drives pin to level.
func (g *GPIO) SetOutput(pin Pin, level Level) {
	g.modify(&g.regs.Data, pin.Bit(), flag(level == High, pin.Bit()))
}

// SetOutputs drives every pin in pins to the matching bit of levels. Bits of
// levels outside pins are ignored.
func (g *GPIO) SetOutputs(pins, levels uint32) error {
	if err := checkMask("gpio.set_outputs", pins, levels); err != nil {
		return err
	}
	g.modify(&g.regs.Data, pins, levels)
	return nil
}

// EnableInterruptPosedge arms pin for a rising-edge interrupt.
func (g *GPIO) EnableInterruptPosedge(pin Pin) {
	g.armPosedge(pin.Bit())
}

// EnableInterruptsPosedge arms every pin in pins for a rising-edge interrupt.
func (g *GPIO) EnableInterruptsPosedge(pins uint32) error {
	if err := checkMask("gpio.enable_interrupts_posedge", pins); err != nil {
		return err
	}
	g.armPosedge(pins)
	return nil
}

// armPosedge commits the edge selection before enabling the interrupt so the
// pin can never fire on a stale falling-edge setting.
func (g *GPIO) armPosedge(bits uint32) {
	state := disableInterrupts()
	g.w.update(&g.regs.NegativeEdge, bits, 0)
	g.w.update(&g.regs.PositiveEdge, bits, bits)
	g.w.update(&g.regs.InterruptEnable, bits, bits)
	restoreInterrupts(state)
}

// DisableInterruptPosedge disarms pin's rising-edge interrupt.
func (g *GPIO) DisableInterruptPosedge(pin Pin) {
	g.disarmPosedge(pin.Bit())
}

// DisableInterruptsPosedge disarms the rising-edge interrupt of every pin in pins.
func (g *GPIO) DisableInterruptsPosedge(pins uint32) error {
	if err := checkMask("gpio.disable_interrupts_posedge", pins); err != nil {
		return err
	}
	g.disarmPosedge(pins)
	return nil
}

// disarmPosedge turns the interrupt off before touching the edge selection.
func (g *GPIO) disarmPosedge(bits uint32) {
	state := disableInterrupts()
	g.w.update(&g.regs.InterruptEnable, bits, 0)
	g.w.update(&g.regs.PositiveEdge, bits, 0)
	restoreInterrupts(state)
}

// ClearInterrupt acknowledges pin's pending interrupt.
func (g *GPIO) ClearInterrupt(pin Pin) {
	g.pulse(&g.regs.InterruptClear, pin.Bit())
}

// ClearInterrupts acknowledges the pending interrupts of every pin in pins.
func (g *GPIO) ClearInterrupts(pins uint32) error {
	if err := checkMask("gpio.clear_interrupts", pins); err != nil {
		return err
	}
	g.pulse(&g.regs.InterruptClear, pins)
	return nil
}

// InterruptStatus returns the status register masked to pin's bit.
func (g *GPIO) InterruptStatus(pin Pin) uint32 {
	return g.regs.InterruptStatus.Get() & pin.Bit()
}

// InterruptsStatus returns the status register masked to pins.
func (g *GPIO) InterruptsStatus(pins uint32) (uint32, error) {
	if err := checkMask("gpio.interrupts_status", pins); err != nil {
		return 0, err
	}
	return g.regs.InterruptStatus.Get() & pins, nil
}
