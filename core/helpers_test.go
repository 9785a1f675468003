package core

import (
	"testing"

	"apbio/mmio"
)

func newTestGPIO(t *testing.T) (*GPIO, *mmio.GPIOBlock) {
	t.Helper()
	regs := new(mmio.GPIOBlock)
	g, err := NewGPIO(regs)
	if err != nil {
		t.Fatalf("NewGPIO: %v", err)
	}
	t.Cleanup(gpioClaim.release)
	return g, regs
}

func newTestTimer(t *testing.T) (*Timer, *mmio.TimerBlock) {
	t.Helper()
	regs := new(mmio.TimerBlock)
	tm, err := NewTimer(regs)
	if err != nil {
		t.Fatalf("NewTimer: %v", err)
	}
	t.Cleanup(timerClaim.release)
	return tm, regs
}

// traceWrites starts a clean register trace for the rest of the test.
func traceWrites(t *testing.T) {
	t.Helper()
	ClearTrace()
	SetTraceEnabled(true)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		ClearTrace()
	})
}

var patterns = []uint32{0x0000_0000, 0xFFFF_FFFF, 0xA5A5_A5A5, 0x0000_00FF, 0xFFFF_FF00}
