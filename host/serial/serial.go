// Package serial opens the link to the firmware.
package serial

import (
	"io"

	"apbio/config"
)

// Port is a serial link. Tests substitute an in-memory pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and untransmitted output.
	Flush() error
}

// Config holds serial port settings.
type Config struct {
	Device      string // e.g. "/dev/ttyACM0", "COM3"
	Baud        int    // Ignored by USB CDC links
	ReadTimeout int    // Milliseconds; 0 blocks
}

// DefaultConfig returns the settings the firmware expects.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100,
	}
}

// FromConfig extracts the serial settings of a host configuration.
func FromConfig(cfg *config.Config) *Config {
	return &Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMS,
	}
}
