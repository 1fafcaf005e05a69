// Package ber implements the low-level tag-length-value decoder for
// the structured-data encoding embedded in each header blob (NCBI's
// ASN.1 binary encoding, a BER dialect). It knows nothing about the
// definition-line schema layered on top by package defline; it only
// reads tags, reads lengths (definite and indefinite), recognizes the
// end-of-contents sentinel, and skips elements without looping on
// malformed input.
//
// Grounded on the tag/length decoding shape of a streaming ASN.1 TLV
// decoder (codello.dev/asn1/tlv), adapted from an io.Reader-based
// streaming decoder to an in-memory cursor since every header blob in
// this format is fully buffered before decoding begins.
package ber

import (
	"github.com/Schaudge/seqdb/bufcur"
	"github.com/Schaudge/seqdb/dberr"
)

// Class is the ASN.1 tag class.
type Class uint8

const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// LengthIndefinite marks a Header whose length was encoded as the
// indefinite form (length byte 0x80 on a constructed element).
const LengthIndefinite = -1

// Universal tag numbers referenced by the header-blob schema.
const (
	TagInteger  = 2
	TagSequence = 16
)

// StringLikeTags is the set of universal tag numbers accepted as
// string-like content by the header-blob decoder.
var StringLikeTags = map[uint32]bool{
	12: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 25: true, 26: true,
	27: true, 28: true, 29: true, 30: true,
}

// Tag identifies one TLV element.
type Tag struct {
	Class       Class
	Number      uint32
	Constructed bool
}

// IsUniversal reports whether t is a universal-class tag with the
// given number.
func (t Tag) IsUniversal(number uint32) bool {
	return t.Class == ClassUniversal && t.Number == number
}

// IsStringLike reports whether t is an acceptable string-like
// universal tag per the header-blob schema.
func (t Tag) IsStringLike() bool {
	return t.Class == ClassUniversal && StringLikeTags[t.Number]
}

// Header is a decoded tag plus its length.
type Header struct {
	Tag    Tag
	Length int // LengthIndefinite for indefinite-length constructed elements
}

// Indefinite reports whether h used the indefinite length form.
func (h Header) Indefinite() bool { return h.Length == LengthIndefinite }

// maxTagDepth bounds recursive-descent nesting against pathologically
// deep constructed elements. Exceeding it yields BadFormat instead of
// risking stack exhaustion; the input is fully buffered so an explicit
// counter is enough, no need to reformulate the walk as an explicit
// stack.
const maxTagDepth = 64

// Reader decodes BER tags, lengths and end-of-contents markers from a
// bufcur.Cursor. It carries no buffering of its own: each read either
// strictly advances the cursor or fails, maintaining forward progress
// so a caller looping over sibling elements can never spin.
type Reader struct {
	c *bufcur.Cursor
}

// NewReader returns a Reader over c.
func NewReader(c *bufcur.Cursor) *Reader {
	return &Reader{c: c}
}

// Cursor returns the underlying cursor, for callers that need to read
// primitive content directly after ReadTag/ReadLength.
func (r *Reader) Cursor() *bufcur.Cursor { return r.c }

// AtEOC reports whether the next two bytes are the end-of-contents
// sentinel 0x00 0x00, without consuming them.
func (r *Reader) AtEOC() bool {
	b, err := r.c.Peek(2)
	if err != nil {
		return false
	}
	return b[0] == 0x00 && b[1] == 0x00
}

// ReadEOC consumes the two-byte end-of-contents sentinel. It fails if
// the next bytes are not 0x00 0x00.
func (r *Reader) ReadEOC() error {
	if !r.AtEOC() {
		return dberr.New(dberr.BadFormat, "expected end-of-contents marker at offset %d", r.c.Pos())
	}
	_, err := r.c.ReadBytes(2)
	return err
}

// ReadTag reads one tag: a leading byte encoding class, constructed
// bit and a short-form number, optionally followed by a base-128
// high-bit-continuation encoded number when the low 5 bits of the
// leading byte are all set.
func (r *Reader) ReadTag() (Tag, error) {
	b, err := r.c.ReadByte()
	if err != nil {
		return Tag{}, err
	}
	t := Tag{
		Class:       Class(b >> 6),
		Constructed: b&0x20 != 0,
		Number:      uint32(b & 0x1f),
	}
	if t.Number != 0x1f {
		return t, nil
	}
	var n uint32
	for i := 0; ; i++ {
		if i > 4 {
			return Tag{}, dberr.New(dberr.BadFormat, "tag number too long at offset %d", r.c.Pos())
		}
		bb, err := r.c.ReadByte()
		if err != nil {
			return Tag{}, err
		}
		n = n<<7 | uint32(bb&0x7f)
		if bb&0x80 == 0 {
			break
		}
	}
	t.Number = n
	return t, nil
}

// ReadLength reads one length field. A leading byte of 0x80 means
// indefinite length (only meaningful on constructed elements — callers
// enforce that). A high bit of 0 means the length is the byte value
// itself. Otherwise the low 7 bits give a byte count k (1<=k<=8) and
// the following k bytes form a big-endian length.
func (r *Reader) ReadLength() (int, error) {
	b, err := r.c.ReadByte()
	if err != nil {
		return 0, err
	}
	if b == 0x80 {
		return LengthIndefinite, nil
	}
	if b&0x80 == 0 {
		return int(b), nil
	}
	k := int(b & 0x7f)
	if k < 1 || k > 8 {
		return 0, dberr.New(dberr.BadFormat, "invalid length byte count %d at offset %d", k, r.c.Pos())
	}
	lb, err := r.c.ReadBytes(k)
	if err != nil {
		return 0, err
	}
	var length uint64
	for _, v := range lb {
		length = length<<8 | uint64(v)
	}
	if length > 0x7fffffff {
		return 0, dberr.New(dberr.BadFormat, "length %d too large", length)
	}
	return int(length), nil
}

// ReadHeader reads a tag followed by its length in one call, the
// common case for every element except the two-byte end-of-contents
// sentinel (which has no tag/length structure of its own).
func (r *Reader) ReadHeader() (Header, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return Header{}, err
	}
	length, err := r.ReadLength()
	if err != nil {
		return Header{}, err
	}
	if length == LengthIndefinite && !tag.Constructed {
		return Header{}, dberr.New(dberr.BadFormat, "indefinite length on primitive element at offset %d", r.c.Pos())
	}
	return Header{Tag: tag, Length: length}, nil
}

// SkipElement skips over one complete TLV element whose header has
// already been read (hdr). For a primitive element this just advances
// past Length bytes. For a constructed element it recurses over child
// elements, definite or indefinite, until the declared length is
// consumed or the end-of-contents marker is found.
//
// SkipElement never loops: it consumes exactly the element's content
// (zero bytes for an empty element) or returns an error, every child
// iteration consumes at least the child's header, and depth is bounded
// by maxTagDepth.
func (r *Reader) SkipElement(hdr Header) error {
	return r.skipElement(hdr, 0)
}

func (r *Reader) skipElement(hdr Header, depth int) error {
	if depth > maxTagDepth {
		return dberr.New(dberr.BadFormat, "nesting too deep (> %d levels) at offset %d", maxTagDepth, r.c.Pos())
	}
	if !hdr.Tag.Constructed {
		if hdr.Length < 0 {
			return dberr.New(dberr.BadFormat, "indefinite length on primitive element")
		}
		_, err := r.c.ReadBytes(hdr.Length)
		return err
	}
	if hdr.Indefinite() {
		for {
			if r.AtEOC() {
				return r.ReadEOC()
			}
			start := r.c.Pos()
			child, err := r.ReadHeader()
			if err != nil {
				return err
			}
			if err := r.skipElement(child, depth+1); err != nil {
				return err
			}
			if r.c.Pos() <= start {
				return dberr.New(dberr.BadFormat, "scan failed to advance at offset %d", start)
			}
		}
	}
	end := r.c.Pos() + hdr.Length
	for r.c.Pos() < end {
		start := r.c.Pos()
		child, err := r.ReadHeader()
		if err != nil {
			return err
		}
		if err := r.skipElement(child, depth+1); err != nil {
			return err
		}
		if r.c.Pos() <= start {
			return dberr.New(dberr.BadFormat, "scan failed to advance at offset %d", start)
		}
	}
	if r.c.Pos() != end {
		return dberr.New(dberr.BadFormat, "constructed element overran its declared length")
	}
	return nil
}
