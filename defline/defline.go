// Package defline decodes a header blob — the per-record bytes sliced
// out of a BLAST-style header file — into an ordered list of
// definition lines. It is built on top of package ber, and implements
// a permissive, per-line recovery strategy: a malformed definition
// line never aborts decoding of the lines around it.
//
// Grounded on the recursive-descent BER walk of codello.dev/asn1/tlv
// and JesseCoretta/go-asn1plus's tagged-PDU decoding, adapted to the
// fully-buffered, per-record recovery model this format requires
// instead of their streaming, whole-message-fails-on-error model.
package defline

import (
	"fmt"

	"github.com/Schaudge/seqdb/ber"
	"github.com/Schaudge/seqdb/bufcur"
	"github.com/Schaudge/seqdb/dberr"
)

// Context-specific field tags inside one definition-line sequence.
const (
	fieldTitle  = 0
	fieldSeqIDs = 1
	fieldTaxID  = 2
)

// DefLine is one decoded definition line: a title, an ordered list of
// sequence identifiers, and an optional taxonomy id.
type DefLine struct {
	Title  string
	SeqIDs []SeqID
	TaxID  *int
}

// Decode parses blob (the raw per-record header bytes returned by the
// header-file slicer) into its definition lines. It never returns an
// error: a blob that cannot be parsed at all yields a nil slice and a
// single warning, and a blob whose later lines are corrupt yields the
// lines that could be recovered plus warnings for each corrupt line, so
// one bad line never loses the rest of a record's definition lines.
func Decode(blob []byte) (lines []DefLine, warnings []string) {
	r := ber.NewReader(bufcur.New(blob))

	outerHdr, err := r.ReadHeader()
	if err != nil {
		return nil, []string{fmt.Sprintf("header blob: %v", err)}
	}
	if !outerHdr.Tag.IsUniversal(ber.TagSequence) || !outerHdr.Tag.Constructed {
		return nil, []string{fmt.Sprintf("header blob: expected top-level sequence, got tag %+v", outerHdr.Tag)}
	}

	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, outerHdr)

	for {
		if definite {
			if r.Cursor().Pos() >= end {
				break
			}
		} else if r.AtEOC() {
			break
		}

		start := r.Cursor().Pos()
		line, lineWarnings, ok := decodeOneLine(r)
		warnings = append(warnings, lineWarnings...)
		lines = append(lines, line)
		if !ok {
			// decodeOneLine could not establish where this line ends,
			// so there is no safe way to find the next sibling line:
			// stop here, keeping everything decoded so far.
			break
		}
		if r.Cursor().Pos() <= start {
			warnings = append(warnings, "definition line sequence: scan failed to advance, stopping")
			break
		}
	}

	if !definite {
		_ = r.ReadEOC()
	}
	return lines, warnings
}

// decodeOneLine decodes a single definition-line sequence starting at
// the current cursor position. ok is false when the line's own header
// could not be read, when a non-sequence element in its place could
// not be skipped, or when the cursor could not be moved to the line's
// end (for example because its declared length runs past the blob);
// in each case the caller cannot safely resynchronize to the next
// sibling line. Otherwise any error while decoding a field inside the
// line is recovered locally: the partial line is returned with ok=true
// plus a warning, and the cursor is advanced past the whole line.
func decodeOneLine(r *ber.Reader) (DefLine, []string, bool) {
	var warnings []string
	var dl DefLine

	lineHdr, err := r.ReadHeader()
	if err != nil {
		return dl, []string{fmt.Sprintf("definition line: %v", err)}, false
	}
	if !lineHdr.Tag.IsUniversal(ber.TagSequence) || !lineHdr.Tag.Constructed {
		if err := r.SkipElement(lineHdr); err != nil {
			return dl, []string{fmt.Sprintf("definition line: unexpected tag %+v and could not skip: %v", lineHdr.Tag, err)}, false
		}
		return dl, []string{fmt.Sprintf("definition line: unexpected tag %+v, skipped", lineHdr.Tag)}, true
	}

	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, lineHdr)

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
			warnings = append(warnings, fmt.Sprintf("definition line: %v", err))
			break
		}

		switch {
		case childHdr.Tag.Class == ber.ClassContextSpecific && childHdr.Tag.Number == fieldTitle:
			if title, ok := decodeExplicitTitle(r, childHdr); ok {
				dl.Title = title
			} else {
				warnings = append(warnings, "title: no string-like payload found")
			}
		case childHdr.Tag.Class == ber.ClassContextSpecific && childHdr.Tag.Number == fieldSeqIDs:
			ids, ferr := decodeSeqIDList(r, childHdr)
			dl.SeqIDs = append(dl.SeqIDs, ids...)
			if ferr != nil {
				warnings = append(warnings, fmt.Sprintf("seqid-list: %v", ferr))
			}
		case childHdr.Tag.Class == ber.ClassContextSpecific && childHdr.Tag.Number == fieldTaxID:
			if tax, ok := decodeExplicitTaxID(r, childHdr); ok {
				dl.TaxID = &tax
			} else {
				warnings = append(warnings, "taxid: no integer payload found")
			}
		default:
			if err := r.SkipElement(childHdr); err != nil {
				warnings = append(warnings, fmt.Sprintf("unknown field: %v", err))
			}
		}

		if r.Cursor().Pos() <= start {
			warnings = append(warnings, "definition line: scan failed to advance, truncating line")
			break
		}
	}

	// Resynchronize to the line's own end regardless of what happened
	// decoding its fields: this is what lets the outer Decode loop
	// keep finding sibling definition lines after a corrupt one.
	if err := finishWrapper(r, end, definite); err != nil {
		warnings = append(warnings, fmt.Sprintf("definition line: %v", err))
		return dl, warnings, false
	}
	return dl, warnings, true
}

// decodeSeqIDList decodes the seqid-list field (context tag 1): an
// implicitly-tagged sequence whose children are seqid choice elements
// directly, with no separate explicit wrapper unlike title/taxid.
func decodeSeqIDList(r *ber.Reader, hdr ber.Header) ([]SeqID, error) {
	if !hdr.Tag.Constructed {
		_, err := r.Cursor().ReadBytes(hdr.Length)
		return nil, err
	}

	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)
	var ids []SeqID
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
			return ids, err
		}
		ids = append(ids, parseSeqID(r, childHdr))
		if r.Cursor().Pos() <= start {
			return ids, dberr.New(dberr.BadFormat, "seqid-list: scan failed to advance")
		}
	}
	if !definite {
		if err := r.ReadEOC(); err != nil {
			return ids, err
		}
	}
	return ids, nil
}
