package protocol

import (
	"bytes"
	"testing"
)

var (
	ack10   = []byte{0x05, 0x10, 0x9E, 0x81, 0x7E}
	ack11   = []byte{0x05, 0x11, 0x8F, 0x08, 0x7E}
	cmd10   = []byte{0x07, 0x10, 0x05, 0x07, 0xDB, 0x92, 0x7E} // id 5, arg 7
	cmd12   = []byte{0x07, 0x12, 0x05, 0x07, 0x6E, 0x2A, 0x7E}
	corrupt = []byte{0x07, 0x10, 0x05, 0x08, 0xDB, 0x92, 0x7E} // cmd10 with a flipped arg
)

func TestAppendFrame(t *testing.T) {
	if got := AppendFrame(nil, 0x10, nil); !bytes.Equal(got, ack10) {
		t.Errorf("empty frame = % x, want % x", got, ack10)
	}
	if got := AppendFrame([]byte{0xAA}, 0x10, []byte{5, 7}); !bytes.Equal(got[1:], cmd10) || got[0] != 0xAA {
		t.Errorf("append = % x", got)
	}
}

func TestWriteFrameMatchesAppendFrame(t *testing.T) {
	var out ScratchOutput
	writeFrame(&out, 0x10, func(o OutputBuffer) { o.Output([]byte{5, 7}) })
	if !bytes.Equal(out.Result(), cmd10) {
		t.Errorf("writeFrame = % x, want % x", out.Result(), cmd10)
	}
}

func TestScanFrame(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want scanResult
		n    int
	}{
		{"complete", cmd10, scanOK, len(cmd10)},
		{"trailing bytes", append(append([]byte{}, cmd10...), 0x01), scanOK, len(cmd10)},
		{"short header", cmd10[:3], scanShort, 0},
		{"short body", cmd10[:6], scanShort, 0},
		{"length too small", []byte{0x04, 0x10, 0, 0, 0x7E}, scanBad, 0},
		{"length too large", []byte{0x41, 0x10, 0, 0, 0x7E}, scanBad, 0},
		{"bad destination", []byte{0x05, 0x20, 0x9E, 0x81, 0x7E}, scanBad, 0},
		{"bad crc", corrupt, scanBad, 0},
		{"missing sync", []byte{0x05, 0x10, 0x9E, 0x81, 0x00}, scanBad, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, n, res := scanFrame(tt.data)
			if res != tt.want || n != tt.n {
				t.Fatalf("scanFrame = %d, %d; want %d, %d", res, n, tt.want, tt.n)
			}
			if res == scanOK && (f.Sequence != 0x10 || !bytes.Equal(f.Payload, []byte{5, 7})) {
				t.Errorf("frame = %+v", f)
			}
		})
	}
}

func TestSkipToSync(t *testing.T) {
	rest, ok := skipToSync([]byte{1, 2, MessageValueSync, 3})
	if !ok || !bytes.Equal(rest, []byte{3}) {
		t.Errorf("skipToSync = % x, %v", rest, ok)
	}
	if rest, ok := skipToSync([]byte{1, 2}); ok || rest != nil {
		t.Errorf("skipToSync without sync = % x, %v", rest, ok)
	}
}
