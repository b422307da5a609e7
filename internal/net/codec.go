package net

import (
	"errors"
	"fmt"
)

// Datagram framing, preserved bit-exact from the source protocol:
//
//	<8-byte checksum><2-char opcode><arg|arg|...|>  zero-padded to 1024 bytes
//
// The checksum is a constant shared secret, not an integrity check — it only
// rejects traffic from unrelated senders. Every argument, including the
// last, carries a trailing '|'; bytes after the last '|' and before the
// padding are not a valid argument and are discarded, exactly as the
// original parser did.
const (
	ChecksumLen = 8
	OpcodeLen   = 2
	HeaderLen   = ChecksumLen + OpcodeLen
	BufferSize  = 1024
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrShortDatagram    = errors.New("datagram shorter than header")
	ErrOversizedPacket  = errors.New("encoded packet exceeds buffer size")
)

// Encode builds one outbound datagram.
func Encode(checksum string, op Opcode, args ...string) ([]byte, error) {
	buf := make([]byte, BufferSize)
	n := copy(buf, checksum)
	n += copy(buf[n:], string(op))
	for _, arg := range args {
		if n+len(arg)+1 > BufferSize {
			return nil, fmt.Errorf("opcode %s: %w", op, ErrOversizedPacket)
		}
		n += copy(buf[n:], arg)
		buf[n] = '|'
		n++
	}
	return buf, nil
}

// Decode validates the shared secret and splits one inbound datagram into
// its opcode and arguments.
func Decode(checksum string, buf []byte) (Opcode, []string, error) {
	if len(buf) < HeaderLen {
		return "", nil, ErrShortDatagram
	}
	if string(buf[:ChecksumLen]) != checksum {
		return "", nil, ErrChecksumMismatch
	}
	op := Opcode(buf[ChecksumLen:HeaderLen])

	var args []string
	start := HeaderLen
	for i := HeaderLen; i < len(buf); i++ {
		c := buf[i]
		if c == 0 {
			break
		}
		if c == '|' {
			args = append(args, string(buf[start:i]))
			start = i + 1
		}
	}
	return op, args, nil
}
