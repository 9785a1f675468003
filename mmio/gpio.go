package mmio

// GPIOBase is the physical base address of the GPIO block.
const GPIOBase uintptr = 0x8000_0000

// GPIO register offsets from GPIOBase.
const (
	GPIOData            uintptr = 0x04 // Pin levels (read inputs / drive outputs)
	GPIODirection       uintptr = 0x08 // 1 = output, 0 = input
	GPIOInterruptEnable uintptr = 0x0C
	GPIOPositiveEdge    uintptr = 0x10 // Rising edge select
	GPIONegativeEdge    uintptr = 0x14 // Falling edge select
	GPIOInterruptClear  uintptr = 0x18 // Write-1-to-clear
	GPIOInterruptStatus uintptr = 0x1C // Pending interrupts, read-only by convention

	GPIOSize uintptr = 0x20
)

// GPIOBlock is the GPIO register window.
type GPIOBlock struct {
	_ Register32 // 0x00 reserved

	Data            Register32
	Direction       Register32
	InterruptEnable Register32
	PositiveEdge    Register32
	NegativeEdge    Register32

	// InterruptClear latches nothing: writing 1 to a bit acknowledges the
	// pending interrupt for that pin. Never read-modify-write it.
	InterruptClear Register32

	InterruptStatus Register32
}
