package mcu

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"apbio/errcode"
	"apbio/host/serial"
	"apbio/protocol"
)

// Remote is a Backend that talks to firmware over the framed protocol.
type Remote struct {
	mu        sync.Mutex
	transport *protocol.HostTransport
}

// Dial opens the serial port in cfg.
func Dial(cfg *serial.Config) (*Remote, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewRemote(port), nil
}

// NewRemote speaks the protocol over port and owns it.
func NewRemote(port io.ReadWriteCloser) *Remote {
	return &Remote{transport: protocol.NewHostTransport(port)}
}

// Call sends one command and waits for its result frame.
func (r *Remote) Call(ctx context.Context, id uint16, args []uint32) (uint32, error) {
	msg, ok := protocol.MessageByID(id)
	if !ok {
		return 0, &errcode.E{C: errcode.UnknownCommand, Op: "mcu.call"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n := r.transport.DiscardResponses(); n > 0 {
		log.Printf("mcu: dropped %d stale responses", n)
	}
	err := r.transport.SendCommandContext(ctx, id, func(out protocol.OutputBuffer) {
		for _, a := range args {
			protocol.EncodeVLQUint(out, a)
		}
	})
	if err != nil {
		return 0, err
	}
	f, err := r.transport.ReceiveResponseContext(ctx)
	if err != nil {
		return 0, err
	}
	return decodeResult(msg.Name, f.Payload)
}

func decodeResult(op string, payload []byte) (uint32, error) {
	var vals [3]uint32
	for i := range vals {
		v, err := protocol.DecodeVLQUint(&payload)
		if err != nil {
			return 0, fmt.Errorf("%s: malformed result: %w", op, err)
		}
		vals[i] = v
	}
	if uint16(vals[0]) != protocol.MsgResult {
		return 0, fmt.Errorf("%s: unexpected response %d", op, vals[0])
	}
	code := errcode.FromWire(uint8(vals[1]))
	if code != errcode.OK {
		return vals[2], &errcode.E{C: code, Op: op}
	}
	return vals[2], nil
}

func (r *Remote) Close() error {
	return r.transport.Close()
}
