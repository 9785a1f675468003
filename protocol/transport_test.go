package protocol

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

type call struct {
	id  uint16
	arg uint32
}

func newRecordingTransport() (*Transport, *ScratchOutput, *[]call) {
	out := NewScratchOutput()
	calls := &[]call{}
	tr := NewTransport(out, func(id uint16, data *[]byte) error {
		v, err := DecodeVLQUint(data)
		*calls = append(*calls, call{id, v})
		return err
	})
	return tr, out, calls
}

func TestTransportDispatchesAndAcks(t *testing.T) {
	tr, out, calls := newRecordingTransport()
	in := NewSliceInputBuffer(cmd10)
	tr.Receive(in)

	if len(*calls) != 1 || (*calls)[0] != (call{5, 7}) {
		t.Fatalf("calls = %v", *calls)
	}
	if in.Available() != 0 {
		t.Errorf("%d bytes left unconsumed", in.Available())
	}
	if !bytes.Equal(out.Result(), ack11) {
		t.Errorf("ack = % x, want % x", out.Result(), ack11)
	}
}

func TestTransportKeepsPartialFrame(t *testing.T) {
	tr, out, calls := newRecordingTransport()
	in := NewSliceInputBuffer(cmd10[:4])
	tr.Receive(in)

	if len(*calls) != 0 || len(out.Result()) != 0 {
		t.Errorf("partial frame processed: calls=%v out=% x", *calls, out.Result())
	}
	if in.Available() != 4 {
		t.Errorf("Available() = %d, want 4", in.Available())
	}
}

func TestTransportResyncsAfterCorruptFrame(t *testing.T) {
	tr, out, calls := newRecordingTransport()
	data := append(append([]byte{}, corrupt...), cmd10...)
	tr.Receive(NewSliceInputBuffer(data))

	if len(*calls) != 1 || (*calls)[0] != (call{5, 7}) {
		t.Fatalf("calls = %v", *calls)
	}
	want := append(append([]byte{}, ack10...), ack11...)
	if !bytes.Equal(out.Result(), want) {
		t.Errorf("output = % x, want % x", out.Result(), want)
	}
}

func TestTransportNaksStaleSequence(t *testing.T) {
	tr, out, calls := newRecordingTransport()
	tr.Receive(NewSliceInputBuffer(cmd12))

	if len(*calls) != 0 {
		t.Errorf("out of sequence frame dispatched: %v", *calls)
	}
	if !bytes.Equal(out.Result(), ack10) {
		t.Errorf("nak = % x, want % x", out.Result(), ack10)
	}
}

func TestTransportHostRestart(t *testing.T) {
	tr, out, calls := newRecordingTransport()
	resets := 0
	tr.SetResetCallback(func() { resets++ })

	tr.Receive(NewSliceInputBuffer(cmd10))
	out.Reset()
	tr.Receive(NewSliceInputBuffer(cmd10))

	if resets != 1 {
		t.Errorf("resets = %d, want 1", resets)
	}
	if len(*calls) != 2 {
		t.Errorf("calls = %v, want both frames dispatched", *calls)
	}
	if !bytes.Equal(out.Result(), ack11) {
		t.Errorf("ack = % x, want % x", out.Result(), ack11)
	}
}

func TestTransportHandlerErrorStopsFrame(t *testing.T) {
	out := NewScratchOutput()
	n := 0
	tr := NewTransport(out, func(id uint16, data *[]byte) error {
		n++
		return errors.New("unknown")
	})
	tr.Receive(NewSliceInputBuffer(AppendFrame(nil, 0x10, []byte{1, 2, 3})))
	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
	if !bytes.Equal(out.Result(), ack11) {
		t.Errorf("ack = % x, want % x", out.Result(), ack11)
	}
}

// fakeMCU serves a firmware Transport on conn. Each command's single
// argument is answered with a result frame carrying arg+1.
func fakeMCU(conn net.Conn) {
	out := NewScratchOutput()
	var tr *Transport
	tr = NewTransport(out, func(id uint16, data *[]byte) error {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		tr.SendCommand(MsgResult, func(o OutputBuffer) {
			EncodeVLQUint(o, 0)
			EncodeVLQUint(o, v+1)
		})
		return nil
	})

	in := NewFifoBuffer(256)
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		in.Write(buf[:n])
		tr.Receive(in)
		if len(out.Result()) > 0 {
			if _, err := conn.Write(out.Result()); err != nil {
				return
			}
			out.Reset()
		}
	}
}

func TestHostTransportRoundTrip(t *testing.T) {
	host, mcu := net.Pipe()
	go fakeMCU(mcu)
	ht := NewHostTransport(host)
	defer ht.Close()

	for i, arg := range []uint32{7, 0x1234, 0xFFFF_FFFE} {
		err := ht.SendCommand(MsgTimerSetReload, func(o OutputBuffer) { EncodeVLQUint(o, arg) }, time.Second)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		f, err := ht.ReceiveResponse(time.Second)
		if err != nil {
			t.Fatalf("receive %d: %v", i, err)
		}
		data := f.Payload
		id, _ := DecodeVLQUint(&data)
		code, _ := DecodeVLQUint(&data)
		value, _ := DecodeVLQUint(&data)
		if id != uint32(MsgResult) || code != 0 || value != arg+1 {
			t.Errorf("response %d = id %d code %d value 0x%x", i, id, code, value)
		}
	}
	if got, want := ht.Sequence(), uint8(0x13); got != want {
		t.Errorf("Sequence() = 0x%02x, want 0x%02x", got, want)
	}
}

func TestHostTransportAckTimeout(t *testing.T) {
	host, mcu := net.Pipe()
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := mcu.Read(buf); err != nil {
				return
			}
		}
	}()
	ht := NewHostTransport(host)
	defer ht.Close()

	if err := ht.SendCommand(MsgTimerEnable, nil, 20*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
	if ht.Sequence() != MessageDest {
		t.Errorf("sequence advanced without an ack: 0x%02x", ht.Sequence())
	}
}

func TestHostTransportRejectsOversizedCommand(t *testing.T) {
	host, mcu := net.Pipe()
	defer mcu.Close()
	ht := NewHostTransport(host)
	defer ht.Close()

	err := ht.SendCommand(MsgTimerEnable, func(o OutputBuffer) {
		o.Output(make([]byte, MessagePayloadMax))
	}, time.Second)
	if !errors.Is(err, ErrFrameTooLong) {
		t.Errorf("got %v, want ErrFrameTooLong", err)
	}
}

func TestHostTransportClose(t *testing.T) {
	host, mcu := net.Pipe()
	defer mcu.Close()
	ht := NewHostTransport(host)

	done := make(chan error, 1)
	go func() { done <- ht.Close() }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked")
	}
	if _, err := ht.ReceiveResponse(time.Second); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("ReceiveResponse after Close = %v", err)
	}
}
