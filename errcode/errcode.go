// Package errcode defines the stable fault codes reported by the peripheral
// drivers and carried on the wire in command results.
package errcode

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK                    Code = "ok"
	DuplicateConstruction Code = "duplicate_construction"
	MaskOutOfRange        Code = "mask_out_of_range"
	SelectorOutOfRange    Code = "selector_out_of_range"
	InvalidParams         Code = "invalid_params"
	UnknownCommand        Code = "unknown_command"
	Unsupported           Code = "unsupported"

	Error Code = "error" // generic fallback
)

// wireCodes fixes the numeric value of each code in command results.
// Append only; never renumber.
var wireCodes = [...]Code{
	OK,
	DuplicateConstruction,
	MaskOutOfRange,
	SelectorOutOfRange,
	InvalidParams,
	UnknownCommand,
	Unsupported,
	Error,
}

// Wire returns the numeric wire value of c. Unknown codes map to Error.
func (c Code) Wire() uint8 {
	for i, w := range wireCodes {
		if w == c {
			return uint8(i)
		}
	}
	return uint8(len(wireCodes) - 1)
}

// FromWire maps a numeric wire value back to its Code.
func FromWire(v uint8) Code {
	if int(v) < len(wireCodes) {
		return wireCodes[v]
	}
	return Error
}

// E is the optional wrapper used when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Unwrap exposes the cause, or the code itself when there is none, so
// errors.Is(err, MaskOutOfRange) works on wrapped values.
func (e *E) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.C
}

func (e *E) Code() Code { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
