package mmio

import "errors"

// DevMem is the character device exposing physical memory on Linux.
const DevMem = "/dev/mem"

var (
	ErrUnsupported = errors.New("mmio: physical memory mapping not supported on this platform")
	ErrUnaligned   = errors.New("mmio: register window base must be 4-byte aligned")
)
