package farmstore

import (
	"encoding/binary"
	"io"
)

const keySize = 8

func appendKey(buf []byte, id uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, id)
}

func decodeKey(raw []byte) (uint64, error) {
	if len(raw) != keySize {
		return 0, dataErrf(raw, 0, nil, "invalid key: %d bytes, wanted %d", len(raw), keySize)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

func appendRaw(buf []byte, chunk []byte) []byte {
	n := len(chunk)
	off, buf := grow(buf, n)
	copy(buf[off:], chunk)
	return buf
}

// bytesBuilder is an io.Writer appending to a caller-owned slice, so that
// msgpack can encode straight into a pooled buffer.
type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)
var _ io.ByteWriter = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = appendRaw(bb.Buf, b)
	return len(b), nil
}

func (bb *bytesBuilder) WriteByte(b byte) error {
	bb.Buf = append(bb.Buf, b)
	return nil
}

func (bb *bytesBuilder) WriteString(s string) (int, error) {
	bb.Buf = append(bb.Buf, s...)
	return len(s), nil
}
