package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrTransportClosed = errors.New("transport closed")
	ErrFrameTooLong    = errors.New("frame exceeds maximum length")
)

// ResponseHandler observes each non-ACK frame as it arrives.
type ResponseHandler func(cmdID uint16, data *[]byte) error

// HostTransport is the host side of the link. A background goroutine parses
// frames from port, routing empty frames (ACKs) and responses to separate
// channels.
type HostTransport struct {
	port io.ReadWriteCloser

	seq    uint32 // atomic, 0x10-0x1F
	synced uint32 // atomic bool

	input *FifoBuffer

	ackChan      chan Frame
	responseChan chan Frame

	responseHandler ResponseHandler

	writeMu sync.Mutex
	readMu  sync.Mutex

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:         port,
		seq:          MessageDest,
		synced:       1,
		input:        NewFifoBuffer(512),
		ackChan:      make(chan Frame, 1),
		responseChan: make(chan Frame, 16),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SendCommand writes one command frame and waits up to timeout for its ACK.
func (t *HostTransport) SendCommand(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return t.SendCommandContext(ctx, cmdID, args)
}

// SendCommandContext is SendCommand bounded by ctx instead of a timeout.
func (t *HostTransport) SendCommandContext(ctx context.Context, cmdID uint16, args func(output OutputBuffer)) error {
	var payload ScratchOutput
	EncodeVLQUint(&payload, uint32(cmdID))
	if args != nil {
		args(&payload)
	}
	if len(payload.Result()) > MessagePayloadMax {
		return fmt.Errorf("command %d: %w", cmdID, ErrFrameTooLong)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	seq := uint8(atomic.LoadUint32(&t.seq))
	msg := AppendFrame(make([]byte, 0, MessageLengthMax), seq, payload.Result())
	if _, err := t.port.Write(msg); err != nil {
		return fmt.Errorf("write command %d: %w", cmdID, err)
	}
	return t.waitForAck(ctx, nextSequence(seq))
}

func (t *HostTransport) waitForAck(ctx context.Context, want uint8) error {
	for {
		select {
		case ack := <-t.ackChan:
			if ack.Sequence != want {
				// Stale ACK from an earlier frame.
				continue
			}
			atomic.StoreUint32(&t.seq, uint32(want))
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for ack 0x%02x: %w", want, ctx.Err())
		case <-t.stopChan:
			return ErrTransportClosed
		}
	}
}

// ReceiveResponse returns the next response frame, waiting up to timeout.
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (Frame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return t.ReceiveResponseContext(ctx)
}

// ReceiveResponseContext is ReceiveResponse bounded by ctx.
func (t *HostTransport) ReceiveResponseContext(ctx context.Context) (Frame, error) {
	select {
	case f := <-t.responseChan:
		return f, nil
	case <-ctx.Done():
		return Frame{}, fmt.Errorf("waiting for response: %w", ctx.Err())
	case <-t.stopChan:
		return Frame{}, ErrTransportClosed
	}
}

// SetResponseHandler installs fn; it runs on the reader goroutine.
func (t *HostTransport) SetResponseHandler(fn ResponseHandler) {
	t.readMu.Lock()
	t.responseHandler = fn
	t.readMu.Unlock()
}

func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			t.input.Write(buf[:n])
			t.processFrames()
		}
		if err == nil {
			continue
		}
		select {
		case <-t.stopChan:
			return
		default:
		}
		// A serial read timeout surfaces as io.EOF; keep polling.
		if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (t *HostTransport) processFrames() {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	data := t.input.Data()
	for len(data) > 0 {
		if atomic.LoadUint32(&t.synced) == 0 {
			var found bool
			if data, found = skipToSync(data); found {
				atomic.StoreUint32(&t.synced, 1)
			}
			continue
		}
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		frame, n, res := scanFrame(data)
		if res == scanShort {
			break
		}
		if res == scanBad {
			atomic.StoreUint32(&t.synced, 0)
			continue
		}
		data = data[n:]
		frame.Payload = append([]byte(nil), frame.Payload...)
		t.route(frame)
	}

	if consumed := t.input.Available() - len(data); consumed > 0 {
		t.input.Pop(consumed)
	}
}

func (t *HostTransport) route(f Frame) {
	if len(f.Payload) == 0 {
		select {
		case t.ackChan <- f:
		default:
			// Replace an unread ACK with the newer one.
			select {
			case <-t.ackChan:
			default:
			}
			t.ackChan <- f
		}
		return
	}

	if t.responseHandler != nil {
		data := f.Payload
		if id, err := DecodeVLQUint(&data); err == nil {
			_ = t.responseHandler(uint16(id), &data)
		}
	}

	select {
	case t.responseChan <- f:
	default:
		select {
		case <-t.responseChan:
		default:
		}
		t.responseChan <- f
	}
}

// DiscardResponses drops responses nobody collected, such as those that
// arrived after a timed out call.
func (t *HostTransport) DiscardResponses() int {
	n := 0
	for {
		select {
		case <-t.responseChan:
			n++
		default:
			return n
		}
	}
}

// Close stops the reader and closes the port.
func (t *HostTransport) Close() error {
	var err error
	t.stopOnce.Do(func() {
		close(t.stopChan)
		err = t.port.Close()
		<-t.doneChan
	})
	return err
}

// Reset drops buffered input and pending frames and restarts the sequence.
func (t *HostTransport) Reset() {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	atomic.StoreUint32(&t.synced, 1)
	atomic.StoreUint32(&t.seq, MessageDest)
	for len(t.ackChan) > 0 {
		<-t.ackChan
	}
	for len(t.responseChan) > 0 {
		<-t.responseChan
	}
	t.input.Reset()
}

// Sequence returns the sequence byte the next command will carry.
func (t *HostTransport) Sequence() uint8 {
	return uint8(atomic.LoadUint32(&t.seq))
}
