package core

import "golang.org/x/exp/constraints"

// Both peripherals pack eight sub-units into each register.
const (
	Selectors = 8
	MaskMax   = 0xFF // Widest valid bulk mask
)

// Pin selects one GPIO pin. Only Pin0 to Pin7 exist; the bit helpers keep
// the low three bits of anything larger, so Pin(9) acts on pin 1. Check
// Valid on values that did not come from the constants.
type Pin uint8

const (
	Pin0 Pin = iota
	Pin1
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
)

// Valid reports whether p names one of the eight pins.
func (p Pin) Valid() bool { return selectorInRange(p) }

// Bit returns the pin's bit in every GPIO register.
func (p Pin) Bit() uint32 {
	return bit(uint8(p))
}

// Level is a GPIO output level.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// Channel selects one timer channel. Like Pin, out-of-range values wrap onto
// CH0 to CH7 in every helper; Valid catches them.
type Channel uint8

const (
	CH0 Channel = iota
	CH1
	CH2
	CH3
	CH4
	CH5
	CH6
	CH7
)

// Valid reports whether c names one of the eight channels.
func (c Channel) Valid() bool { return selectorInRange(c) }

// Bit returns the channel's bit in the per-channel timer registers.
func (c Channel) Bit() uint32 {
	return bit(uint8(c))
}

// Index returns the channel number as an array index.
func (c Channel) Index() int {
	return int(c & (Selectors - 1))
}

// Channel-control packs one 2-bit field per channel: capture edges in the low
// half-word, compare output actions in the high half-word.
const (
	fieldWidth       = 2
	fieldMask        = 0b11
	outputFieldShift = 16
)

// EdgeShift returns the position of the channel's capture-edge field.
func (c Channel) EdgeShift() uint8 {
	return uint8(c.Index() * fieldWidth)
}

// OutputShift returns the position of the channel's output-action field.
func (c Channel) OutputShift() uint8 {
	return outputFieldShift + uint8(c.Index()*fieldWidth)
}

// EdgeMask returns the channel's capture-edge field mask.
func (c Channel) EdgeMask() uint32 {
	return fieldMask << c.EdgeShift()
}

// OutputMask returns the channel's output-action field mask.
func (c Channel) OutputMask() uint32 {
	return fieldMask << c.OutputShift()
}

// Edge is the input-capture edge code.
type Edge uint8

const (
	EdgeDisabled Edge = 0b00
	EdgeFalling  Edge = 0b01
	EdgeRising   Edge = 0b10
	EdgeEither   Edge = 0b11
)

// OutputAction is what the output pin does on a compare match.
type OutputAction uint8

const (
	OutputDisconnect OutputAction = 0b00
	OutputToggle     OutputAction = 0b01
	OutputClear      OutputAction = 0b10
	OutputSet        OutputAction = 0b11
)

// Prescaler is the timer clock divider code.
type Prescaler uint8

const (
	Div1 Prescaler = iota
	Div2
	Div4
	Div8
	Div16
	Div32
	Div64
	Div128

	prescalerMask = 0x7
)

// Divisor returns the clock division factor the code selects.
func (p Prescaler) Divisor() uint32 {
	return 1 << (p & prescalerMask)
}

// bit maps a selector to its one-bit mask. Selectors are reduced to their low
// three bits so every value lands inside the eight-bit field.
func bit(index uint8) uint32 {
	return 1 << (index & (Selectors - 1))
}

// between reports lo <= v && v <= hi.
func between[T constraints.Integer](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// maskInRange reports whether v is a valid bulk mask.
func maskInRange[T constraints.Integer](v T) bool {
	return v >= 0 && uint64(v) <= MaskMax
}

// selectorInRange reports whether v names one of the eight pins or channels.
func selectorInRange[T constraints.Integer](v T) bool {
	return between(v, 0, Selectors-1)
}
