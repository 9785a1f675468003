package protocol

import "sync/atomic"

// CommandHandler decodes one command's arguments from *data, advancing it.
// A non-nil error stops processing of the remaining commands in the frame.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the firmware side of the link. It validates frames from the
// host, dispatches their commands and answers every frame with an ACK
// carrying the next expected sequence.
type Transport struct {
	synced  uint32 // atomic bool
	nextSeq uint32 // atomic, 0x10-0x1F

	output        OutputBuffer
	handler       CommandHandler
	resetCallback func()
	flushCallback func()
}

func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	return &Transport{
		synced:  1,
		nextSeq: MessageDest,
		output:  output,
		handler: handler,
	}
}

// Receive consumes whole frames from input. A trailing partial frame stays
// in input for the next call.
func (t *Transport) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !t.isSynced() {
			var found bool
			if data, found = skipToSync(data); found {
				t.setSynced(true)
				t.sendAck()
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
			t.setSynced(false)
			continue
		}
		data = data[n:]

		expected := uint8(atomic.LoadUint32(&t.nextSeq))
		if frame.Sequence == MessageDest && expected != MessageDest {
			// Host restarted its sequence.
			expected = MessageDest
			atomic.StoreUint32(&t.nextSeq, MessageDest)
			if t.resetCallback != nil {
				t.resetCallback()
			}
		}
		if frame.Sequence == expected {
			atomic.StoreUint32(&t.nextSeq, uint32(nextSequence(expected)))
			_ = t.dispatch(frame.Payload)
		}
		// A stale sequence still gets an ACK, which acts as a NAK.
		t.sendAck()
	}

	if consumed := input.Available() - len(data); consumed > 0 {
		input.Pop(consumed)
	}
}

func (t *Transport) dispatch(payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.setSynced(false)
		}
	}()

	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			t.setSynced(false)
			return err
		}
		if t.handler == nil {
			continue
		}
		if err := t.handler(uint16(id), &payload); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) sendAck() {
	writeFrame(t.output, uint8(atomic.LoadUint32(&t.nextSeq)), nil)
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// SendCommand frames one message: cmdID followed by whatever args writes.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	writeFrame(t.output, uint8(atomic.LoadUint32(&t.nextSeq)), func(out OutputBuffer) {
		EncodeVLQUint(out, uint32(cmdID))
		if args != nil {
			args(out)
		}
	})
}

// Reset returns to the power-on sequence state.
func (t *Transport) Reset() {
	t.setSynced(true)
	atomic.StoreUint32(&t.nextSeq, MessageDest)
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback registers fn to run when the host restarts its sequence.
func (t *Transport) SetResetCallback(fn func()) { t.resetCallback = fn }

// SetFlushCallback registers fn to push each ACK out immediately.
func (t *Transport) SetFlushCallback(fn func()) { t.flushCallback = fn }

func (t *Transport) isSynced() bool { return atomic.LoadUint32(&t.synced) != 0 }

func (t *Transport) setSynced(v bool) {
	var n uint32
	if v {
		n = 1
	}
	atomic.StoreUint32(&t.synced, n)
}
