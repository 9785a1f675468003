package protocol

// Frame is one checked block: the sequence byte and the payload between
// header and trailer. Payload aliases the scanned input.
type Frame struct {
	Sequence uint8
	Payload  []byte
}

type scanResult uint8

const (
	scanOK scanResult = iota
	scanShort
	scanBad
)

// scanFrame looks for a frame at the start of data, which must not begin
// with a sync byte. It returns the frame and the bytes it spans on scanOK.
// scanBad means the caller has to resync.
func scanFrame(data []byte) (Frame, int, scanResult) {
	if len(data) < MessageLengthMin {
		return Frame{}, 0, scanShort
	}
	n := int(data[MessagePositionLen])
	if n < MessageLengthMin || n > MessageLengthMax {
		return Frame{}, 0, scanBad
	}
	seq := data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return Frame{}, 0, scanBad
	}
	if len(data) < n {
		return Frame{}, 0, scanShort
	}
	if data[n-MessageTrailerSync] != MessageValueSync {
		return Frame{}, 0, scanBad
	}
	want := uint16(data[n-MessageTrailerCRC])<<8 | uint16(data[n-MessageTrailerCRC+1])
	if CRC16(data[:n-MessageTrailerSize]) != want {
		return Frame{}, 0, scanBad
	}
	return Frame{Sequence: seq, Payload: data[MessageHeaderSize : n-MessageTrailerSize]}, n, scanOK
}

// skipToSync drops everything up to and including the next sync byte.
// found is false when data holds no sync byte at all.
func skipToSync(data []byte) (rest []byte, found bool) {
	for i, b := range data {
		if b == MessageValueSync {
			return data[i+1:], true
		}
	}
	return nil, false
}

// writeFrame emits one frame into out. body writes the payload; the length
// byte is patched and the CRC appended once it returns.
func writeFrame(out OutputBuffer, seq uint8, body func(OutputBuffer)) {
	start := out.CurPosition()
	out.Output([]byte{0, seq})
	if body != nil {
		body(out)
	}
	out.Update(start, uint8(len(out.DataSince(start))+MessageTrailerSize))
	crc := CRC16(out.DataSince(start))
	out.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
}

// AppendFrame appends a complete frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) []byte {
	start := len(dst)
	dst = append(dst, uint8(len(payload)+MessageLengthMin), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc), MessageValueSync)
}
