// Package config loads the host tool's JSON configuration.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"apbio/errcode"
	"apbio/mmio"
)

// Backends
const (
	BackendSerial = "serial" // Firmware on the far end of a serial link
	BackendDevMem = "devmem" // Registers mapped from /dev/mem on this machine
)

// Config selects and tunes the register backend.
type Config struct {
	Backend           string  `json:"backend"`
	Device            string  `json:"device"`
	Baud              int     `json:"baud"`
	ReadTimeoutMS     int     `json:"read_timeout_ms"`
	ResponseTimeoutMS int     `json:"response_timeout_ms"`
	GPIOBase          Address `json:"gpio_base"`
	TimerBase         Address `json:"timer_base"`
	Trace             bool    `json:"trace"`
	Debug             bool    `json:"debug"`
}

// Address is a physical base address. JSON accepts a number or a string in
// any base strconv understands, such as "0x80000000".
type Address uintptr

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("address %s: %w", data, errcode.InvalidParams)
		}
		*a = Address(n)
		return nil
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("address %q: %w", s, errcode.InvalidParams)
	}
	*a = Address(n)
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(a), 16))
}

// Load parses a JSON document and fills unset fields with defaults.
func Load(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = BackendSerial
	}
	if cfg.Device == "" {
		cfg.Device = "/dev/ttyACM0"
	}
	if cfg.Baud == 0 {
		cfg.Baud = 250000
	}
	if cfg.ReadTimeoutMS == 0 {
		cfg.ReadTimeoutMS = 100
	}
	if cfg.ResponseTimeoutMS == 0 {
		cfg.ResponseTimeoutMS = 2000
	}
	if cfg.GPIOBase == 0 {
		cfg.GPIOBase = Address(mmio.GPIOBase)
	}
	if cfg.TimerBase == 0 {
		cfg.TimerBase = Address(mmio.TimerBase)
	}
}

// Validate reports the first field that no backend can use.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSerial, BackendDevMem:
	default:
		return fmt.Errorf("backend %q: %w", c.Backend, errcode.InvalidParams)
	}
	if c.Baud < 0 || c.ReadTimeoutMS < 0 || c.ResponseTimeoutMS < 0 {
		return fmt.Errorf("negative baud or timeout: %w", errcode.InvalidParams)
	}
	if c.GPIOBase%4 != 0 || c.TimerBase%4 != 0 {
		return fmt.Errorf("base addresses must be word aligned: %w", errcode.InvalidParams)
	}
	return nil
}
