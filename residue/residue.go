// Package residue maps packed protein-residue codes from a BLAST-style
// sequence file into printable letters. The mapping is a fixed,
// process-wide table, built once as a package-level array rather than
// re-derived per call.
package residue

import "github.com/Schaudge/seqdb/dberr"

// terminator is the in-band sentinel residue code: decoding a protein
// sequence stops as soon as it is read.
const terminator = 0

// unknownLetter is emitted for any residue code outside the table.
const unknownLetter = '?'

// proteinTable maps a packed residue code (0-27) to its printable
// letter. Index 0 is the terminator and never appears in decoded
// output.
var proteinTable = [28]byte{
	0: 0, 1: 'A', 2: 'B', 3: 'C', 4: 'D', 5: 'E', 6: 'F',
	7: 'G', 8: 'H', 9: 'I', 10: 'K', 11: 'L', 12: 'M', 13: 'N',
	14: 'P', 15: 'Q', 16: 'R', 17: 'S', 18: 'T', 19: 'V', 20: 'W',
	21: 'Y', 22: 'X', 23: 'Z', 24: 'U', 25: 'O', 26: 'J', 27: '-',
}

// DecodeProtein translates the packed residue bytes in
// raw[start:end] into printable amino-acid letters. Decoding stops
// early if the terminator code (0) is read before end is reached;
// codes at or above len(proteinTable) decode to '?'. The returned
// slice never exceeds end-start bytes.
//
// DecodeProtein fails with dberr.CorruptIndex if start > end or end is
// past the end of raw (the sequence file).
func DecodeProtein(raw []byte, start, end int) ([]byte, error) {
	if start > end {
		return nil, dberr.New(dberr.CorruptIndex, "sequence range start %d > end %d", start, end)
	}
	if end > len(raw) {
		return nil, dberr.New(dberr.CorruptIndex, "sequence range end %d exceeds file size %d", end, len(raw))
	}
	out := make([]byte, 0, end-start)
	for _, code := range raw[start:end] {
		if code == terminator {
			break
		}
		if int(code) >= len(proteinTable) {
			out = append(out, unknownLetter)
			continue
		}
		out = append(out, proteinTable[code])
	}
	return out, nil
}

// DecodeNucleotide is out of scope for this decoder: the on-disk
// nucleotide packing (2-bit base codes plus an ambiguity table) is not
// implemented here. It always fails with UnsupportedDatabase so
// callers get a precise error instead of a silent wrong answer.
func DecodeNucleotide(raw []byte, start, end int) ([]byte, error) {
	return nil, dberr.New(dberr.UnsupportedDatabase, "nucleotide sequence decoding is not implemented")
}
