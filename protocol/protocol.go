// Package protocol carries GPIO and Timer commands between a host and the
// firmware: VLQ-encoded integers inside CRC16-checked, sequenced frames.
//
// Frame layout: len seq payload... crc_hi crc_lo 0x7E
package protocol

// Frame constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin

	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1

	MessageValueSync = 0x7E
	MessageDest      = 0x10 // High nibble of every sequence byte
	MessageSeqMask   = 0x0F
)

// nextSequence returns the sequence byte following seq.
func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
