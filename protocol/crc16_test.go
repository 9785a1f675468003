package protocol

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		data []byte
		want uint16
	}{
		{nil, 0xFFFF},
		{[]byte{5, MessageDest}, 0x9E81},
		{[]byte("123456789"), 0x6F91},
		{[]byte{0x00}, 0x0F87},
		{[]byte{0xFF}, 0x00FF},
	}
	for _, tt := range tests {
		if got := CRC16(tt.data); got != tt.want {
			t.Errorf("CRC16(% x) = 0x%04X, want 0x%04X", tt.data, got, tt.want)
		}
	}
}

func TestCRC16Different(t *testing.T) {
	if CRC16([]byte{1, 2, 3}) == CRC16([]byte{1, 2, 4}) {
		t.Error("single-bit change not detected")
	}
}
