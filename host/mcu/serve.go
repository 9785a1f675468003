package mcu

import (
	"context"
	"errors"
	"io"

	"apbio/core"
	"apbio/protocol"
)

// Serve answers protocol frames read from rw with r, the way the firmware
// does, until ctx is done or rw fails. A clean io.EOF returns nil. The
// registry's responder is replaced.
func Serve(ctx context.Context, rw io.ReadWriter, r *core.CommandRegistry) error {
	out := protocol.NewScratchOutput()
	tr := protocol.NewTransport(out, r.Dispatch)
	r.SetResponder(tr)

	in := protocol.NewFifoBuffer(4 * protocol.MessageLengthMax)
	buf := make([]byte, protocol.MessageLengthMax)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := rw.Read(buf)
		if n > 0 {
			if in.Write(buf[:n]) < n {
				// Overrun: the transport resyncs on the next sync byte.
				core.DebugPrintln("[SERVE] input overrun")
			}
			tr.Receive(in)
			if res := out.Result(); len(res) > 0 {
				if _, werr := rw.Write(res); werr != nil {
					return werr
				}
				out.Reset()
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
