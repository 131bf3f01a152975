// Package protocol implements the framed serial link between the firmware and
// the host monitor: VLQ-encoded fields inside length/sequence/CRC16 frames.
package protocol

// Frame layout constants
const (
	MessageMax         = 512 // Output scratch size; several frames may be queued
	MessageHeaderSize  = 2   // Length, sequence
	MessageTrailerSize = 3   // CRC16 (big endian), sync
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F
)

// CRC16 calculates the CCITT checksum carried in every frame trailer
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// nextSequence advances a sequence number within the 0x10-0x1F window
func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

// scanResult tells the caller of scanFrame what to do next
type scanResult uint8

const (
	scanFrameOK  scanResult = iota // A complete, valid frame was found
	scanNeedMore                   // Not enough data yet
	scanBad                        // Corrupt header or trailer; resynchronize
)

// scanFrame validates the frame at the start of data (leading sync bytes must
// already be skipped). On scanFrameOK it returns the sequence byte, the payload
// between header and trailer, and the total frame length.
func scanFrame(data []byte) (seq uint8, payload []byte, length int, res scanResult) {
	if len(data) < MessageLengthMin {
		return 0, nil, 0, scanNeedMore
	}

	msgLen := int(data[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		return 0, nil, 0, scanBad
	}
	seq = data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return 0, nil, 0, scanBad
	}
	if len(data) < msgLen {
		return 0, nil, 0, scanNeedMore
	}
	if data[msgLen-MessageTrailerSync] != MessageValueSync {
		return 0, nil, 0, scanBad
	}

	frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
		uint16(data[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
		return 0, nil, 0, scanBad
	}

	return seq, data[MessageHeaderSize : msgLen-MessageTrailerSize], msgLen, scanFrameOK
}

// skipToSync drops everything up to and including the next sync byte.
// It reports whether a sync byte was found.
func skipToSync(data []byte) ([]byte, bool) {
	for i, b := range data {
		if b == MessageValueSync {
			return data[i+1:], true
		}
	}
	return nil, false
}

// appendTrailer appends the CRC of frame and the sync byte
func appendTrailer(frame []byte) []byte {
	crc := CRC16(frame)
	return append(frame, uint8(crc>>8), uint8(crc), MessageValueSync)
}
