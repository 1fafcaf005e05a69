package defline

import (
	"fmt"
	"strconv"

	"github.com/Schaudge/seqdb/ber"
)

// SeqID is a single tagged cross-reference identifier attached to a
// definition line.
type SeqID struct {
	// Type is one of the 20 well-known names, or "unknown-<n>" for an
	// unrecognized choice tag number.
	Type string
	// Value is the identifier's value: a decimal integer string for
	// purely-integer variants, the accession/locus for text-style
	// variants, or the molecule name for pdb.
	Value string
	// Version is the identifier's version (or, for pdb, the chain
	// number), when present.
	Version *int
}

// seqIDTypeNames is the fixed 20-entry table mapping a seqid choice
// tag number to its well-known name. Built once as a package-level
// array, like every other fixed lookup table in this module.
var seqIDTypeNames = [...]string{
	0:  "local",
	1:  "gibbsq",
	2:  "gibbmt",
	3:  "giim",
	4:  "genbank",
	5:  "embl",
	6:  "pir",
	7:  "swissprot",
	8:  "patent",
	9:  "other",
	10: "general",
	11: "gi",
	12: "ddbj",
	13: "prf",
	14: "pdb",
	15: "tpg",
	16: "tpe",
	17: "tpd",
	18: "gpipe",
	19: "named-annot-track",
}

const pdbTagNumber = 14

// typeName resolves a choice tag number to a well-known name, or an
// "unknown-<n>" fallback for anything outside the fixed table.
func typeName(number uint32) string {
	if int(number) < len(seqIDTypeNames) {
		return seqIDTypeNames[number]
	}
	return fmt.Sprintf("unknown-%d", number)
}

// parseSeqID decodes one sequence-identifier choice element whose
// header (hdr) has already been read. It always leaves the cursor at
// the end of the element, success or failure, so a caller iterating a
// seqid-list can keep going regardless of what happened inside.
func parseSeqID(r *ber.Reader, hdr ber.Header) SeqID {
	valueStart := r.Cursor().Pos()
	id := SeqID{Type: typeName(hdr.Tag.Number)}

	switch {
	case !hdr.Tag.Constructed:
		parseIntegerID(r, hdr, &id)
	case hdr.Tag.Number == pdbTagNumber:
		parsePDBID(r, hdr, &id)
	default:
		parseTextStyleID(r, hdr, &id)
	}

	if id.Value == "" {
		if raw, err := r.Cursor().Slice(valueStart, r.Cursor().Pos()); err == nil {
			id.Value = longestIdentifierRun(raw)
		}
	}
	return id
}

// parseIntegerID handles a primitive (non-constructed) choice element:
// its body is a universal integer whose decimal form becomes Value.
func parseIntegerID(r *ber.Reader, hdr ber.Header, id *SeqID) {
	v, err := readInteger(r, hdr)
	if err != nil {
		return
	}
	id.Value = strconv.FormatInt(int64(v), 10)
}

// parsePDBID handles the structurally distinct pdb variant: its body
// is a universal sequence; the first universal-26 string
// becomes Value (the molecule name) and the first universal-2 integer
// becomes Version (the chain number).
func parsePDBID(r *ber.Reader, hdr ber.Header, id *SeqID) {
	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)

	innerHdr, err := r.ReadHeader()
	if err == nil && innerHdr.Tag.IsUniversal(ber.TagSequence) && innerHdr.Tag.Constructed {
		innerStart := r.Cursor().Pos()
		innerEnd, innerDefinite := boundsFrom(innerStart, innerHdr)
		haveValue, haveVersion := false, false
		for {
			if innerDefinite {
				if r.Cursor().Pos() >= innerEnd {
					break
				}
			} else if r.AtEOC() {
				break
			}
			start := r.Cursor().Pos()
			childHdr, cerr := r.ReadHeader()
			if cerr != nil {
				break
			}
			switch {
			case !haveValue && childHdr.Tag.IsUniversal(26) && !childHdr.Tag.Constructed:
				if b, rerr := r.Cursor().ReadBytes(childHdr.Length); rerr == nil {
					id.Value = string(b)
					haveValue = true
				}
			case !haveVersion && childHdr.Tag.IsUniversal(ber.TagInteger) && !childHdr.Tag.Constructed:
				if v, rerr := readInteger(r, childHdr); rerr == nil {
					vv := v
					id.Version = &vv
					haveVersion = true
				}
			default:
				_ = r.SkipElement(childHdr)
			}
			if r.Cursor().Pos() <= start {
				break
			}
		}
		if !innerDefinite {
			_ = r.ReadEOC()
		}
	}

	_ = finishWrapper(r, end, definite)
}

// parseTextStyleID handles every other constructed choice element: its
// body is a flat set of context-specific fields, tag 0 or 1 giving
// Value (tag 1 preferred when both present) and tag 3 giving Version.
func parseTextStyleID(r *ber.Reader, hdr ber.Header, id *SeqID) {
	valueStart := r.Cursor().Pos()
	end, definite := boundsFrom(valueStart, hdr)

	var tag0, tag1 string
	haveTag0, haveTag1 := false, false
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
			break
		}
		switch childHdr.Tag.Number {
		case 0:
			if v, e := readImplicitString(r, childHdr); e == nil {
				tag0, haveTag0 = v, true
			}
		case 1:
			if v, e := readImplicitString(r, childHdr); e == nil {
				tag1, haveTag1 = v, true
			}
		case 3:
			if v, e := readInteger(r, childHdr); e == nil {
				vv := v
				id.Version = &vv
			}
		default:
			_ = r.SkipElement(childHdr)
		}
		if r.Cursor().Pos() <= start {
			break
		}
	}

	switch {
	case haveTag1:
		id.Value = tag1
	case haveTag0:
		id.Value = tag0
	}

	_ = finishWrapper(r, end, definite)
}
