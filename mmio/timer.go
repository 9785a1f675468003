package mmio

// TimerBase is the physical base address of the Timer block.
const TimerBase uintptr = 0x8002_0000

// Timer register offsets from TimerBase.
const (
	TimerIOSelect       uintptr = 0x00 // Per-channel 1 = output compare, 0 = input capture
	TimerCaptureFlag    uintptr = 0x04 // Per-channel capture flag enable
	TimerCount          uintptr = 0x08 // Free-running counter
	TimerControl        uintptr = 0x0C // Bit 7: run enable
	TimerOverflow       uintptr = 0x10 // Per-channel overflow enable
	TimerChannelControl uintptr = 0x14 // Edge fields (low half), output fields (high half)
	TimerInterrupt      uintptr = 0x18 // Per-channel interrupt enable
	TimerControl2       uintptr = 0x1C // Bits 0-2 prescaler, bit 6 reset on compare, bit 7 overflow irq
	TimerFlag1          uintptr = 0x20 // Per-channel interrupt flags, write-1-to-clear
	TimerFlag2          uintptr = 0x24 // Bit 7 overflow flag, write-1-to-clear
	TimerCompare0       uintptr = 0x28 // Compare/capture 0; channel n at +4n
	TimerReload         uintptr = 0x48

	TimerSize uintptr = 0x4C
)

// Channels is the number of timer channels.
const Channels = 8

// TimerBlock is the Timer register window.
type TimerBlock struct {
	IOSelect       Register32
	CaptureFlag    Register32
	Count          Register32
	Control        Register32
	Overflow       Register32
	ChannelControl Register32
	Interrupt      Register32
	Control2       Register32

	// Flag1 and Flag2 are write-1-to-clear acknowledgement registers.
	Flag1 Register32
	Flag2 Register32

	Compare [Channels]Register32
	Reload  Register32
}
