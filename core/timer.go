package core

import (
	"apbio/errcode"
	"apbio/mmio"
)

// Control and Control2 bits
const (
	timerRunEnable      = 1 << 7 // Control: counter runs
	timerOverflowIRQ    = 1 << 7 // Control2: TOI, interrupt on counter overflow
	timerResetOnCompare = 1 << 6 // Control2: TCRE, counter resets on channel 7 compare
	timerOverflowFlag   = 1 << 7 // Flag2: overflow pending, write-1-to-clear
)

// Timer drives the 8-channel timer block. Create it with NewTimer.
type Timer struct {
	regs *mmio.TimerBlock
	w    window
}

// NewTimer takes ownership of the Timer register window. Only the first call
// in a process succeeds; later calls fail with errcode.DuplicateConstruction.
func NewTimer(regs *mmio.TimerBlock) (*Timer, error) {
	dup := &errcode.E{C: errcode.DuplicateConstruction, Op: "timer.new", Msg: "Timer already constructed"}
	if timerClaim.taken() {
		return nil, dup
	}
	if regs == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "timer.new", Msg: "nil register window"}
	}
	if !timerClaim.acquire() {
		return nil, dup
	}
	return &Timer{regs: regs, w: newWindow(BlockTimer, regs)}, nil
}

func (t *Timer) modify(r *mmio.Register32, mask, value uint32) {
	state := disableInterrupts()
	t.w.update(r, mask, value)
	restoreInterrupts(state)
}

func (t *Timer) store(r *mmio.Register32, v uint32) {
	state := disableInterrupts()
	t.w.store(r, v)
	restoreInterrupts(state)
}

// Enable starts the counter.
func (t *Timer) Enable() {
	t.modify(&t.regs.Control, timerRunEnable, timerRunEnable)
}

// Disable stops the counter.
func (t *Timer) Disable() {
	t.modify(&t.regs.Control, timerRunEnable, 0)
}

// Running reports whether the counter is enabled.
func (t *Timer) Running() bool {
	return t.regs.Control.HasBits(timerRunEnable)
}

// SetOutputAction sets what ch's output does on a compare match.
func (t *Timer) SetOutputAction(ch Channel, action OutputAction) {
	t.modify(&t.regs.ChannelControl, ch.OutputMask(), uint32(action)<<ch.OutputShift())
}

// SetInputCaptureEdge sets which edge latches ch's capture register.
func (t *Timer) SetInputCaptureEdge(ch Channel, edge Edge) {
	t.modify(&t.regs.ChannelControl, ch.EdgeMask(), uint32(edge)<<ch.EdgeShift())
}

// SetPrescaler selects the counter clock divider.
func (t *Timer) SetPrescaler(div Prescaler) {
	t.modify(&t.regs.Control2, prescalerMask, uint32(div))
}

// Prescaler returns the current clock divider code.
func (t *Timer) Prescaler() Prescaler {
	return Prescaler(t.regs.Control2.Get() & prescalerMask)
}

// SetOutputCompare configures ch as an output compare in one step: output
// action, compare value, then the channel interrupt enable.
func (t *Timer) SetOutputCompare(ch Channel, action OutputAction, interrupt bool, value uint32) {
	state := disableInterrupts()
	t.w.update(&t.regs.ChannelControl, ch.OutputMask(), uint32(action)<<ch.OutputShift())
	t.w.store(&t.regs.Compare[ch.Index()], value)
	t.w.update(&t.regs.Interrupt, ch.Bit(), flag(interrupt, ch.Bit()))
	restoreInterrupts(state)
}

// SetInputCapture configures ch as an input capture: edge, then interrupt
// enable. Capture values are written by the hardware.
func (t *Timer) SetInputCapture(ch Channel, edge Edge, interrupt bool) {
	state := disableInterrupts()
	t.w.update(&t.regs.ChannelControl, ch.EdgeMask(), uint32(edge)<<ch.EdgeShift())
	t.w.update(&t.regs.Interrupt, ch.Bit(), flag(interrupt, ch.Bit()))
	restoreInterrupts(state)
}

// ReadInputCapture returns ch's compare/capture register.
func (t *Timer) ReadInputCapture(ch Channel) uint32 {
	return t.regs.Compare[ch.Index()].Get()
}

// SetCompareMode routes ch to output compare.
func (t *Timer) SetCompareMode(ch Channel) {
	t.modify(&t.regs.IOSelect, ch.Bit(), ch.Bit())
}

// SetCaptureMode routes ch to input capture.
func (t *Timer) SetCaptureMode(ch Channel) {
	t.modify(&t.regs.IOSelect, ch.Bit(), 0)
}

// ClearInterrupt acknowledges ch's interrupt flag.
func (t *Timer) ClearInterrupt(ch Channel) {
	t.store(&t.regs.Flag1, ch.Bit())
}

// ClearInterrupts acknowledges the interrupt flag of every channel in channels.
func (t *Timer) ClearInterrupts(channels uint32) error {
	if err := checkMask("timer.clear_interrupts", channels); err != nil {
		return err
	}
	t.store(&t.regs.Flag1, channels)
	return nil
}

// InterruptFlags returns the pending channel interrupt flags.
func (t *Timer) InterruptFlags() uint32 {
	return t.regs.Flag1.Get() & MaskMax
}

// EnableCF enables ch's capture flag.
func (t *Timer) EnableCF(ch Channel) {
	t.modify(&t.regs.CaptureFlag, ch.Bit(), ch.Bit())
}

// EnableCFs enables the capture flag of every channel in channels.
func (t *Timer) EnableCFs(channels uint32) error {
	if err := checkMask("timer.enable_cfs", channels); err != nil {
		return err
	}
	t.modify(&t.regs.CaptureFlag, channels, channels)
	return nil
}

// DisableCF disables ch's capture flag.
func (t *Timer) DisableCF(ch Channel) {
	t.modify(&t.regs.CaptureFlag, ch.Bit(), 0)
}

// DisableCFs disables the capture flag of every channel in channels.
func (t *Timer) DisableCFs(channels uint32) error {
	if err := checkMask("timer.disable_cfs", channels); err != nil {
		return err
	}
	t.modify(&t.regs.CaptureFlag, channels, 0)
	return nil
}

// EnableTOV enables ch's overflow toggle.
func (t *Timer) EnableTOV(ch Channel) {
	t.modify(&t.regs.Overflow, ch.Bit(), ch.Bit())
}

// EnableTOVs enables the overflow toggle of every channel in channels.
func (t *Timer) EnableTOVs(channels uint32) error {
	if err := checkMask("timer.enable_tovs", channels); err != nil {
		return err
	}
	t.modify(&t.regs.Overflow, channels, channels)
	return nil
}

// DisableTOV disables ch's overflow toggle.
func (t *Timer) DisableTOV(ch Channel) {
	t.modify(&t.regs.Overflow, ch.Bit(), 0)
}

// DisableTOVs disables the overflow toggle of every channel in channels.
func (t *Timer) DisableTOVs(channels uint32) error {
	if err := checkMask("timer.disable_tovs", channels); err != nil {
		return err
	}
	t.modify(&t.regs.Overflow, channels, 0)
	return nil
}

// ReadCount returns the free-running counter.
func (t *Timer) ReadCount() uint32 {
	return t.regs.Count.Get()
}

// SetReload sets the counter reload value.
func (t *Timer) SetReload(v uint32) {
	t.store(&t.regs.Reload, v)
}

// Reload returns the counter reload value.
func (t *Timer) Reload() uint32 {
	return t.regs.Reload.Get()
}

// EnableOverflowInterrupt requests an interrupt when the counter overflows.
func (t *Timer) EnableOverflowInterrupt() {
	t.modify(&t.regs.Control2, timerOverflowIRQ, timerOverflowIRQ)
}

// DisableOverflowInterrupt stops counter overflow interrupts.
func (t *Timer) DisableOverflowInterrupt() {
	t.modify(&t.regs.Control2, timerOverflowIRQ, 0)
}

// SetResetOnCompare makes the counter restart after a channel 7 compare match.
func (t *Timer) SetResetOnCompare(on bool) {
	t.modify(&t.regs.Control2, timerResetOnCompare, flag(on, timerResetOnCompare))
}

// OverflowPending reports whether the overflow flag is set.
func (t *Timer) OverflowPending() bool {
	return t.regs.Flag2.HasBits(timerOverflowFlag)
}

// ClearOverflow acknowledges the overflow flag.
func (t *Timer) ClearOverflow() {
	t.store(&t.regs.Flag2, timerOverflowFlag)
}
