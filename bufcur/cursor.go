// Package bufcur implements a read-only, bounds-checked cursor over an
// in-memory byte buffer. It is the innermost layer every decoder in
// this module is built on: seqdb's index parser and ber's TLV reader
// (and package defline on top of it) borrow a buffer through a Cursor
// for the duration of a single parse.
package bufcur

import "github.com/Schaudge/seqdb/dberr"

// Cursor is a read position over buf. Reads only move it forward;
// Seek can move it anywhere inside buf. It never mutates
// buf and never advances on a failed read: a caller that retries the
// same read after fixing up state (or simply gives up) leaves the
// cursor exactly where it was.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a Cursor positioned at the start of buf. buf is not
// copied; the caller must not mutate it while the Cursor is in use.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current byte offset into the underlying buffer.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Seek repositions the cursor to an absolute offset, failing with
// Truncated if the offset lies outside the buffer. Package defline uses
// it to jump to the end of a definite-length element and to rewind to
// a wrapper's start before its fallback scan.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return dberr.New(dberr.Truncated, "seek to %d out of range [0,%d]", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// Peek returns the next n bytes without advancing the cursor. It
// fails with Truncated if fewer than n bytes remain.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, dberr.New(dberr.Truncated, "need %d bytes, have %d", n, c.Remaining())
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Slice returns the raw bytes in [start, end) of the underlying
// buffer, independent of the cursor's current position. It does not
// advance or otherwise affect the cursor; it exists for callers (the
// last-resort identifier recovery in package defline) that need to
// re-examine bytes already scanned over.
func (c *Cursor) Slice(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(c.buf) {
		return nil, dberr.New(dberr.Truncated, "slice [%d,%d) out of range [0,%d]", start, end, len(c.buf))
	}
	return c.buf[start:end], nil
}

// ReadBytes reads and consumes the next n raw bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// ReadByte reads and consumes a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU32BE reads a big-endian 32-bit unsigned integer.
func (c *Cursor) ReadU32BE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// ReadU64Mixed reads the unusual word-swapped 64-bit encoding used by
// the index file's total_residues field: the eight bytes are iterated
// in reverse and shifted left by 8 at each step, so the value is read
// as a little-endian 64-bit integer (01 00 00 00 00 00 00 00 is 1),
// unlike every other multi-byte field of the index.
func (c *Cursor) ReadU64Mixed() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadLengthPrefixedString reads a big-endian 32-bit length followed
// by that many raw bytes, interpreted as 8-bit text without
// transcoding.
func (c *Cursor) ReadLengthPrefixedString() (string, error) {
	n, err := c.ReadU32BE()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
