//go:build !linux || tinygo

package mmio

import "unsafe"

// Mapping is unavailable on this platform.
type Mapping struct{}

// Map always fails with ErrUnsupported.
func Map(base, size uintptr) (*Mapping, error) {
	return nil, ErrUnsupported
}

func (m *Mapping) Pointer() unsafe.Pointer { return nil }

func (m *Mapping) Close() error { return nil }

// MapBlock always fails with ErrUnsupported.
func MapBlock[T Block](base uintptr) (*T, *Mapping, error) {
	return nil, nil, ErrUnsupported
}
