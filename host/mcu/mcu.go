// Package mcu drives the GPIO and Timer command set from the host, either
// over the serial protocol or directly against mapped registers.
package mcu

import (
	"context"
	"fmt"
	"time"

	"apbio/config"
	"apbio/core"
	"apbio/errcode"
	"apbio/host/serial"
	"apbio/protocol"
)

// Backend executes one command by message ID.
type Backend interface {
	Call(ctx context.Context, id uint16, args []uint32) (uint32, error)
	Close() error
}

// MCU resolves command names and runs them on a Backend.
type MCU struct {
	backend Backend
	timeout time.Duration
}

// New wraps b. Each Call is bounded by timeout.
func New(b Backend, timeout time.Duration) *MCU {
	return &MCU{backend: b, timeout: timeout}
}

// Open builds the backend cfg selects.
func Open(cfg *config.Config) (*MCU, error) {
	timeout := time.Duration(cfg.ResponseTimeoutMS) * time.Millisecond
	switch cfg.Backend {
	case config.BackendSerial:
		r, err := Dial(serial.FromConfig(cfg))
		if err != nil {
			return nil, err
		}
		return New(r, timeout), nil
	case config.BackendDevMem:
		l, err := OpenLocal(uintptr(cfg.GPIOBase), uintptr(cfg.TimerBase))
		if err != nil {
			return nil, err
		}
		return New(l, timeout), nil
	default:
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, errcode.InvalidParams)
	}
}

// Call runs the named command with args in wire order and returns the
// value of its result.
func (m *MCU) Call(name string, args ...uint32) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.CallContext(ctx, name, args...)
}

// CallContext is Call bounded by ctx.
func (m *MCU) CallContext(ctx context.Context, name string, args ...uint32) (uint32, error) {
	msg, ok := protocol.LookupMessage(name)
	if !ok || msg.ID == protocol.MsgResult {
		return 0, &errcode.E{C: errcode.UnknownCommand, Op: name}
	}
	if len(args) != msg.NumParams() {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: name, Msg: fmt.Sprintf("want %d args, got %d", msg.NumParams(), len(args))}
	}
	return m.backend.Call(ctx, msg.ID, args)
}

// Trace returns the register write trace when the backend can see it.
func (m *MCU) Trace() ([]core.TraceEvent, error) {
	l, ok := m.backend.(*Local)
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "trace", Msg: "trace events stay on the firmware; use trace_count"}
	}
	return l.Trace(), nil
}

// Backend returns the underlying backend.
func (m *MCU) Backend() Backend { return m.backend }

func (m *MCU) Close() error {
	return m.backend.Close()
}
