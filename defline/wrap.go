package defline

import (
	"strconv"
	"strings"

	"github.com/Schaudge/seqdb/ber"
	"github.com/Schaudge/seqdb/dberr"
)

// boundsFrom computes the absolute end offset of a definite-length
// element whose value starts at valueStart, and reports whether the
// element is definite at all. Indefinite-length elements have no
// a-priori end; callers must scan for the end-of-contents marker.
func boundsFrom(valueStart int, hdr ber.Header) (end int, definite bool) {
	if hdr.Indefinite() {
		return 0, false
	}
	return valueStart + hdr.Length, true
}

// finishWrapper positions the cursor at the end of a constructed
// element regardless of what happened while decoding its contents:
// for a definite-length element it seeks directly to end; for an
// indefinite one it skips forward to (and consumes) the matching
// end-of-contents marker. Applied to every definition line, explicit
// wrapper and seqid choice element this package decodes, so a single
// bad field never
// desynchronizes the reader from its siblings.
func finishWrapper(r *ber.Reader, end int, definite bool) error {
	if definite {
		return r.Cursor().Seek(end)
	}
	return consumeToEOC(r)
}

// consumeToEOC skips sibling elements until the end-of-contents
// sentinel is found (and consumes it), tolerating and discarding
// anything in between. Used to recover from a partially-decoded
// indefinite-length wrapper.
func consumeToEOC(r *ber.Reader) error {
	for !r.AtEOC() {
		start := r.Cursor().Pos()
		childHdr, err := r.ReadHeader()
		if err != nil {
			return err
		}
		if err := r.SkipElement(childHdr); err != nil {
			return err
		}
		if r.Cursor().Pos() <= start {
			return dberr.New(dberr.BadFormat, "scan failed to advance while seeking end-of-contents")
		}
	}
	return r.ReadEOC()
}

// readInteger decodes a big-endian two's-complement integer of
// hdr.Length bytes. A zero-length integer fails; a leading 0x80 bit
// sign-extends to negative.
func readInteger(r *ber.Reader, hdr ber.Header) (int, error) {
	if hdr.Length <= 0 {
		return 0, dberr.New(dberr.BadFormat, "zero-length integer")
	}
	b, err := r.Cursor().ReadBytes(hdr.Length)
	if err != nil {
		return 0, err
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, by := range b {
		v = v<<8 | int64(by)
	}
	return int(v), nil
}

// readImplicitString reads the raw content of a (possibly constructed)
// element as text. A primitive element's bytes are the text directly;
// a constructed element is the concatenation of its string-like and
// context-specific children, with all other children skipped. This is
// used both for the canonical string-like universal tags and for the
// implicitly-tagged context-specific value fields (tags 0 and 1) of a
// text-style seqid, which share the same on-the-wire shape.
func readImplicitString(r *ber.Reader, hdr ber.Header) (string, error) {
	if !hdr.Tag.Constructed {
		b, err := r.Cursor().ReadBytes(hdr.Length)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)
	var sb strings.Builder
	for {
		if definite {
			if r.Cursor().Pos() >= end {
				break
			}
		} else if r.AtEOC() {
			break
		}
		start := r.Cursor().Pos()
		childHdr, err := r.ReadHeader()
		if err != nil {
			return sb.String(), err
		}
		if childHdr.Tag.IsStringLike() || childHdr.Tag.Class == ber.ClassContextSpecific {
			s, err := readImplicitString(r, childHdr)
			if err != nil {
				return sb.String(), err
			}
			sb.WriteString(s)
		} else if err := r.SkipElement(childHdr); err != nil {
			return sb.String(), err
		}
		if r.Cursor().Pos() <= start {
			return sb.String(), dberr.New(dberr.BadFormat, "scan failed to advance")
		}
	}
	if !definite {
		if err := r.ReadEOC(); err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

// scanForStringLike performs a permissive recovery scan: it walks
// sibling elements from the current cursor position, skipping
// anything that is not a string-like universal tag, and returns the
// first string-like payload it finds. end/definite bound the scan the
// same way as every other loop in this package.
func scanForStringLike(r *ber.Reader, end int, definite bool) (string, bool) {
	for {
		if definite {
			if r.Cursor().Pos() >= end {
				return "", false
			}
		} else if r.AtEOC() {
			return "", false
		}
		start := r.Cursor().Pos()
		childHdr, err := r.ReadHeader()
		if err != nil {
			return "", false
		}
		if childHdr.Tag.IsStringLike() {
			if s, err := readImplicitString(r, childHdr); err == nil {
				return s, true
			}
			continue
		}
		if err := r.SkipElement(childHdr); err != nil {
			return "", false
		}
		if r.Cursor().Pos() <= start {
			return "", false
		}
	}
}

// decodeExplicitTitle decodes the title field's explicit wrapper
// (context tag 0): the first attempt reads a single inner string-like
// element; on failure it falls back to the permissive scan. The cursor
// always ends at the wrapper's end, success or failure.
func decodeExplicitTitle(r *ber.Reader, hdr ber.Header) (string, bool) {
	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)

	title, ok := tryReadSingleString(r, end, definite)
	if !ok {
		_ = r.Cursor().Seek(valueStart)
		title, ok = scanForStringLike(r, end, definite)
	}
	_ = finishWrapper(r, end, definite)
	return title, ok
}

// tryReadSingleString reads exactly one inner element and interprets
// it as a string-like payload: the first attempt before falling back
// to the permissive scan.
func tryReadSingleString(r *ber.Reader, end int, definite bool) (string, bool) {
	if definite && r.Cursor().Pos() >= end {
		return "", false
	}
	if !definite && r.AtEOC() {
		return "", false
	}
	innerHdr, err := r.ReadHeader()
	if err != nil || !innerHdr.Tag.IsStringLike() {
		return "", false
	}
	s, err := readImplicitString(r, innerHdr)
	if err != nil {
		return "", false
	}
	return s, true
}

// decodeExplicitTaxID decodes the taxid field's explicit wrapper
// (context tag 2): the first attempt reads a single inner universal
// integer; on failure it falls back to the same permissive scan as
// the title wrapper, so taxid recovery only succeeds when the fallback
// payload happens to be a decimal run.
func decodeExplicitTaxID(r *ber.Reader, hdr ber.Header) (int, bool) {
	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)

	val, ok := 0, false
	if !(definite && valueStart >= end) {
		innerHdr, err := r.ReadHeader()
		if err == nil && innerHdr.Tag.IsUniversal(ber.TagInteger) && !innerHdr.Tag.Constructed {
			if v, e := readInteger(r, innerHdr); e == nil {
				val, ok = v, true
			}
		}
	}
	if !ok {
		_ = r.Cursor().Seek(valueStart)
		if s, found := scanForStringLike(r, end, definite); found {
			if v, perr := strconv.Atoi(strings.TrimSpace(s)); perr == nil {
				val, ok = v, true
			}
		}
	}
	_ = finishWrapper(r, end, definite)
	return val, ok
}

// longestIdentifierRun implements last-resort value recovery: the
// longest contiguous run of [A-Za-z0-9_.] in raw.
func longestIdentifierRun(raw []byte) string {
	isID := func(b byte) bool {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_', b == '.':
			return true
		default:
			return false
		}
	}
	bestStart, bestLen := 0, 0
	curStart, curLen := 0, 0
	for i, b := range raw {
		if isID(b) {
			if curLen == 0 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
		} else {
			curLen = 0
		}
	}
	return string(raw[bestStart : bestStart+bestLen])
}
