//go:build !tinygo

package core

import "sync"

// interruptState is a placeholder for interrupt state on regular Go
type interruptState uintptr

// On the host there are no interrupts, but other goroutines play the same
// role: anything else touching the mapped registers must wait.
var criticalMu sync.Mutex

// disableInterrupts enters a register critical section (regular Go implementation)
func disableInterrupts() interruptState {
	criticalMu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state interruptState) {
	criticalMu.Unlock()
}
