package core

import "sync/atomic"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Block identifies which register window a trace event belongs to.
type Block uint8

const (
	BlockGPIO  Block = 1
	BlockTimer Block = 2
)

func (b Block) String() string {
	switch b {
	case BlockGPIO:
		return "GPIO"
	case BlockTimer:
		return "TIM"
	default:
		return "UNKNOWN"
	}
}

// TraceKind says how a register was written.
type TraceKind uint8

const (
	TraceModify TraceKind = 1 // Read-modify-write
	TraceStore  TraceKind = 2 // Plain store (values, write-1-to-clear pulses)
)

// TraceEvent captures one register write for post-mortem analysis
type TraceEvent struct {
	Kind   TraceKind
	Block  Block
	Offset uint8  // Byte offset from the block base
	Before uint32 // Value read before a modify; zero for stores
	After  uint32 // Value written
}

const (
	TraceRingSize = 32 // Keep last 32 writes
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Register write ring buffer
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceEnabled  uint32 // atomic bool
	traceCount    uint32 // atomic, total writes recorded since last clear
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// SetTraceEnabled turns register write tracing on or off.
func SetTraceEnabled(enabled bool) {
	if enabled {
		atomic.StoreUint32(&traceEnabled, 1)
	} else {
		atomic.StoreUint32(&traceEnabled, 0)
	}
}

// TraceCount returns the number of register writes recorded since the last
// ClearTrace.
func TraceCount() uint32 {
	return atomic.LoadUint32(&traceCount)
}

// recordTrace is called with interrupts disabled by every register write.
func recordTrace(ev TraceEvent) {
	if atomic.LoadUint32(&traceEnabled) == 0 {
		return
	}
	idx := traceRingHead
	traceRing[idx] = ev
	traceRingHead = (idx + 1) % TraceRingSize
	atomic.AddUint32(&traceCount, 1)
}

// Trace returns the recorded events, oldest first.
func Trace() []TraceEvent {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	events := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		ev := traceRing[(start+i)%TraceRingSize]
		if ev.Kind == 0 {
			continue // Empty slot
		}
		events = append(events, ev)
	}
	return events
}

// DumpTrace outputs the trace ring through the debug writer
func DumpTrace() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Register Trace Dump ===")
	debugPrintln("[TRACE] Total writes: " + utoa(TraceCount()))
	for _, ev := range Trace() {
		line := "[TRACE] " + ev.Block.String() + "+" + hex8(ev.Offset)
		if ev.Kind == TraceModify {
			line += " " + hex32(ev.Before) + " -> " + hex32(ev.After)
		} else {
			line += " <- " + hex32(ev.After)
		}
		debugPrintln(line)
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace buffer and the write counter
func ClearTrace() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	atomic.StoreUint32(&traceCount, 0)
}
