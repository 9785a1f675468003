package core

import (
	"errors"
	"testing"

	"apbio/errcode"
	"apbio/mmio"
)

func TestNewTimerOnlyOnce(t *testing.T) {
	tm, _ := newTestTimer(t)
	tm.Enable()
	tm.SetReload(100)

	if tm2, err := NewTimer(new(mmio.TimerBlock)); tm2 != nil || !errors.Is(err, errcode.DuplicateConstruction) {
		t.Fatalf("second NewTimer = %v, %v; want DuplicateConstruction", tm2, err)
	}
	if tm2, err := NewTimer(nil); tm2 != nil || errcode.Of(err) != errcode.DuplicateConstruction {
		t.Fatalf("NewTimer(nil) with a live handle = %v, %v; want DuplicateConstruction", tm2, err)
	}
}

func TestTimerHandlesAreIndependent(t *testing.T) {
	newTestGPIO(t)
	if _, err := NewTimer(new(mmio.TimerBlock)); err != nil {
		t.Fatalf("NewTimer with a GPIO handle alive: %v", err)
	}
	t.Cleanup(timerClaim.release)
}

func TestTimerEnableDisable(t *testing.T) {
	tm, regs := newTestTimer(t)
	for _, start := range patterns {
		regs.Control.Set(start)
		tm.Enable()
		if got := regs.Control.Get(); got != start|1<<7 || !tm.Running() {
			t.Errorf("Enable from 0x%08x: 0x%08x", start, got)
		}
		tm.Disable()
		if got := regs.Control.Get(); got != start&^(1<<7) || tm.Running() {
			t.Errorf("Disable from 0x%08x: 0x%08x", start, got)
		}
	}
}

func TestTimerSetPrescalerKeepsOtherBits(t *testing.T) {
	tm, regs := newTestTimer(t)
	for _, start := range patterns {
		regs.Control2.Set(start)
		tm.SetPrescaler(Div64)
		if got, want := regs.Control2.Get(), start&^0x7|6; got != want {
			t.Errorf("from 0x%08x: 0x%08x, want 0x%08x", start, got, want)
		}
		if tm.Prescaler() != Div64 {
			t.Errorf("Prescaler() = %d", tm.Prescaler())
		}
	}
}

func TestTimerSetOutputCompareFromReset(t *testing.T) {
	tm, regs := newTestTimer(t)
	tm.SetOutputCompare(CH3, OutputToggle, true, 0x1234)

	var want mmio.TimerBlock
	want.ChannelControl.Set(0b01 << 22)
	want.Compare[3].Set(0x1234)
	want.Interrupt.Set(1 << 3)
	if *regs != want {
		t.Errorf("registers = %+v\nwant %+v", *regs, want)
	}
}

func TestTimerSetOutputCompareWriteOrder(t *testing.T) {
	tm, _ := newTestTimer(t)
	traceWrites(t)
	tm.SetOutputCompare(CH7, OutputSet, false, 42)

	want := []uintptr{mmio.TimerChannelControl, mmio.TimerCompare0 + 7*4, mmio.TimerInterrupt}
	events := Trace()
	if len(events) != len(want) {
		t.Fatalf("%d writes, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Block != BlockTimer || uintptr(ev.Offset) != want[i] {
			t.Errorf("write %d: %s+0x%02x, want TIM+0x%02x", i, ev.Block, ev.Offset, want[i])
		}
	}
}

func TestTimerChannelFieldsIsolated(t *testing.T) {
	tm, regs := newTestTimer(t)
	for _, start := range patterns {
		for ch := CH0; ch <= CH7; ch++ {
			for code := uint32(0); code < 4; code++ {
				regs.ChannelControl.Set(start)
				tm.SetOutputAction(ch, OutputAction(code))
				want := start&^(0b11<<(16+2*uint32(ch))) | code<<(16+2*uint32(ch))
				if got := regs.ChannelControl.Get(); got != want {
					t.Errorf("output ch%d code %d from 0x%08x: 0x%08x, want 0x%08x", ch, code, start, got, want)
				}

				regs.ChannelControl.Set(start)
				tm.SetInputCaptureEdge(ch, Edge(code))
				want = start&^(0b11<<(2*uint32(ch))) | code<<(2*uint32(ch))
				if got := regs.ChannelControl.Get(); got != want {
					t.Errorf("edge ch%d code %d from 0x%08x: 0x%08x, want 0x%08x", ch, code, start, got, want)
				}
			}
		}
	}
}

func TestTimerSetInputCapture(t *testing.T) {
	tm, regs := newTestTimer(t)
	regs.Interrupt.Set(0xFF)
	regs.ChannelControl.Set(0xFFFF_0000)
	regs.IOSelect.Set(0x20)

	tm.SetInputCapture(CH5, EdgeRising, false)
	if got := regs.ChannelControl.Get(); got != 0xFFFF_0000|0b10<<10 {
		t.Errorf("channel control 0x%08x", got)
	}
	if got := regs.Interrupt.Get(); got != 0xDF {
		t.Errorf("interrupt enable 0x%02x, want 0xdf", got)
	}
	if got := regs.IOSelect.Get(); got != 0x20 {
		t.Errorf("io select changed to 0x%02x", got)
	}
}

func TestTimerPerChannelEnables(t *testing.T) {
	tests := []struct {
		name string
		reg  func(*mmio.TimerBlock) *mmio.Register32
		do   func(*Timer, Channel)
		set  bool
	}{
		{"EnableCF", capFlag, (*Timer).EnableCF, true},
		{"DisableCF", capFlag, (*Timer).DisableCF, false},
		{"EnableTOV", overflow, (*Timer).EnableTOV, true},
		{"DisableTOV", overflow, (*Timer).DisableTOV, false},
		{"SetCompareMode", ioSelect, (*Timer).SetCompareMode, true},
		{"SetCaptureMode", ioSelect, (*Timer).SetCaptureMode, false},
	}
	tm, regs := newTestTimer(t)
	for _, tt := range tests {
		for _, start := range patterns {
			for ch := CH0; ch <= CH7; ch++ {
				tt.reg(regs).Set(start)
				tt.do(tm, ch)
				want := start &^ ch.Bit()
				if tt.set {
					want |= ch.Bit()
				}
				if got := tt.reg(regs).Get(); got != want {
					t.Errorf("%s(%d) from 0x%08x: 0x%08x, want 0x%08x", tt.name, ch, start, got, want)
				}
			}
		}
	}
}

func TestTimerBulkEnables(t *testing.T) {
	tm, regs := newTestTimer(t)
	regs.CaptureFlag.Set(0xF0)
	regs.Overflow.Set(0x0F)

	if err := tm.EnableCFs(0x03); err != nil {
		t.Fatal(err)
	}
	if err := tm.DisableCFs(0x30); err != nil {
		t.Fatal(err)
	}
	if err := tm.EnableTOVs(0x80); err != nil {
		t.Fatal(err)
	}
	if err := tm.DisableTOVs(0x01); err != nil {
		t.Fatal(err)
	}
	if got := regs.CaptureFlag.Get(); got != 0xC3 {
		t.Errorf("capture flag 0x%02x, want 0xc3", got)
	}
	if got := regs.Overflow.Get(); got != 0x8E {
		t.Errorf("overflow 0x%02x, want 0x8e", got)
	}
}

func TestTimerClearInterruptStores(t *testing.T) {
	tm, regs := newTestTimer(t)
	regs.Flag1.Set(0xFF)

	tm.ClearInterrupt(CH2)
	if got := regs.Flag1.Get(); got != 0x04 {
		t.Errorf("flag1 0x%02x, want 0x04", got)
	}
	if err := tm.ClearInterrupts(0x90); err != nil {
		t.Fatal(err)
	}
	if got := regs.Flag1.Get(); got != 0x90 {
		t.Errorf("flag1 0x%02x, want 0x90", got)
	}

	regs.Flag1.Set(0x1_0055)
	if got := tm.InterruptFlags(); got != 0x55 {
		t.Errorf("InterruptFlags() = 0x%02x, want 0x55", got)
	}
}

func TestTimerMaskOutOfRangeWritesNothing(t *testing.T) {
	tm, regs := newTestTimer(t)
	ops := map[string]func(uint32) error{
		"ClearInterrupts": tm.ClearInterrupts,
		"EnableCFs":       tm.EnableCFs,
		"DisableCFs":      tm.DisableCFs,
		"EnableTOVs":      tm.EnableTOVs,
		"DisableTOVs":     tm.DisableTOVs,
	}
	regs.CaptureFlag.Set(0x5A)
	regs.Overflow.Set(0xA5)
	regs.Flag1.Set(0x11)
	before := *regs
	traceWrites(t)

	for name, op := range ops {
		for _, m := range []uint32{0x100, 0xFFFF_FFFF} {
			if err := op(m); !errors.Is(err, errcode.MaskOutOfRange) {
				t.Errorf("%s(0x%x) = %v, want MaskOutOfRange", name, m, err)
			}
		}
	}
	if *regs != before {
		t.Error("registers changed")
	}
	if n := TraceCount(); n != 0 {
		t.Errorf("%d register writes recorded, want 0", n)
	}
}

func TestTimerCounterAndCaptures(t *testing.T) {
	tm, regs := newTestTimer(t)
	regs.Count.Set(0xDEAD_BEEF)
	regs.Compare[6].Set(777)

	if got := tm.ReadCount(); got != 0xDEAD_BEEF {
		t.Errorf("ReadCount() = 0x%x", got)
	}
	if got := tm.ReadInputCapture(CH6); got != 777 {
		t.Errorf("ReadInputCapture(6) = %d", got)
	}
	tm.SetReload(0xFFFF)
	if regs.Reload.Get() != 0xFFFF || tm.Reload() != 0xFFFF {
		t.Errorf("reload 0x%x", regs.Reload.Get())
	}
}

func TestTimerOverflowControls(t *testing.T) {
	tm, regs := newTestTimer(t)
	tm.SetPrescaler(Div8)

	tm.EnableOverflowInterrupt()
	tm.SetResetOnCompare(true)
	if got := regs.Control2.Get(); got != 0xC3 {
		t.Errorf("control2 0x%02x, want 0xc3", got)
	}
	tm.DisableOverflowInterrupt()
	tm.SetResetOnCompare(false)
	if got := regs.Control2.Get(); got != 0x03 {
		t.Errorf("control2 0x%02x, want 0x03", got)
	}

	regs.Flag2.Set(0xFF)
	if !tm.OverflowPending() {
		t.Error("overflow not pending")
	}
	tm.ClearOverflow()
	if got := regs.Flag2.Get(); got != 0x80 {
		t.Errorf("flag2 0x%02x, want 0x80", got)
	}
}

func capFlag(r *mmio.TimerBlock) *mmio.Register32  { return &r.CaptureFlag }
func overflow(r *mmio.TimerBlock) *mmio.Register32 { return &r.Overflow }
func ioSelect(r *mmio.TimerBlock) *mmio.Register32 { return &r.IOSelect }
