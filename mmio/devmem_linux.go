//go:build linux && !tinygo

package mmio

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapping is a page-aligned view of physical memory obtained from /dev/mem.
type Mapping struct {
	mem []byte
	off uintptr // Offset of the requested base inside mem
}

// Map maps size bytes of physical memory starting at base.
func Map(base, size uintptr) (*Mapping, error) {
	if base&3 != 0 {
		return nil, ErrUnaligned
	}

	fd, err := unix.Open(DevMem, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", DevMem, err)
	}
	defer unix.Close(fd)

	page := uintptr(unix.Getpagesize())
	start := base &^ (page - 1)
	off := base - start
	length := (off + size + page - 1) &^ (page - 1)

	mem, err := unix.Mmap(fd, int64(start), int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap 0x%08x+0x%x: %w", start, length, err)
	}

	return &Mapping{mem: mem, off: off}, nil
}

// Pointer returns the address of the requested base inside the mapping.
func (m *Mapping) Pointer() unsafe.Pointer {
	return unsafe.Pointer(&m.mem[m.off])
}

// Close unmaps the memory. Register windows obtained from the mapping must
// not be used afterwards.
func (m *Mapping) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	return err
}

// MapBlock maps the register window T located at base.
func MapBlock[T Block](base uintptr) (*T, *Mapping, error) {
	var zero T
	m, err := Map(base, unsafe.Sizeof(zero))
	if err != nil {
		return nil, nil, err
	}
	return (*T)(m.Pointer()), m, nil
}
