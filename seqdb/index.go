// Package seqdb assembles the index parser, header-file slicer, and
// per-record decode driver into the legacy sequence-database reader:
// an index file plus a raw-sequence file plus a header-metadata file
// become an ordered list of reconstructed Records.
//
// Grounded on the bgzf/bam file-trio reading pattern of
// github.com/grailbio/hts/bam (a compressed-block index paired with a
// companion data stream), adapted from a streaming chunked reader to a
// fully-buffered one, since this format's index is small enough to
// hold entirely in memory and must be parsed before any record can be
// located at all.
package seqdb

import (
	"fmt"

	"github.com/Schaudge/seqdb/bufcur"
	"github.com/Schaudge/seqdb/dberr"
)

// Index is the parsed index-file record.
type Index struct {
	Version       int
	IsProtein     bool
	VolumeNumber  uint32 // only meaningful when Version == 5
	Title         string
	LMDBName      string // only meaningful when Version == 5
	CreationDate  string
	NumRecords    uint32
	TotalResidues uint64
	MaxLength     uint32

	HeaderOffsets    []uint32
	SequenceOffsets  []uint32
	AmbiguityOffsets []uint32 // nil when IsProtein
}

// ParseIndex decodes the full contents of an index file. A malformed
// index fails the whole decode; there is no partial Index on error.
// Trailing bytes after the last offset table are tolerated and
// reported back through the warning return value rather than failing
// the parse.
func ParseIndex(buf []byte) (*Index, []string, error) {
	c := bufcur.New(buf)
	idx := &Index{}

	version, err := c.ReadU32BE()
	if err != nil {
		return nil, nil, err
	}
	if version != 4 && version != 5 {
		return nil, nil, dberr.New(dberr.UnsupportedVersion, "index version %d is neither 4 nor 5", version)
	}
	idx.Version = int(version)

	seqType, err := c.ReadU32BE()
	if err != nil {
		return nil, nil, err
	}
	idx.IsProtein = seqType == 1

	if idx.Version == 5 {
		idx.VolumeNumber, err = c.ReadU32BE()
		if err != nil {
			return nil, nil, err
		}
	}

	idx.Title, err = c.ReadLengthPrefixedString()
	if err != nil {
		return nil, nil, err
	}

	if idx.Version == 5 {
		idx.LMDBName, err = c.ReadLengthPrefixedString()
		if err != nil {
			return nil, nil, err
		}
	}

	idx.CreationDate, err = c.ReadLengthPrefixedString()
	if err != nil {
		return nil, nil, err
	}

	idx.NumRecords, err = c.ReadU32BE()
	if err != nil {
		return nil, nil, err
	}

	idx.TotalResidues, err = c.ReadU64Mixed()
	if err != nil {
		return nil, nil, err
	}

	idx.MaxLength, err = c.ReadU32BE()
	if err != nil {
		return nil, nil, err
	}

	idx.HeaderOffsets, err = readOffsetTable(c, idx.NumRecords)
	if err != nil {
		return nil, nil, fmt.Errorf("header offset table: %w", err)
	}
	idx.SequenceOffsets, err = readOffsetTable(c, idx.NumRecords)
	if err != nil {
		return nil, nil, fmt.Errorf("sequence offset table: %w", err)
	}
	if !idx.IsProtein {
		idx.AmbiguityOffsets, err = readOffsetTable(c, idx.NumRecords)
		if err != nil {
			return nil, nil, fmt.Errorf("ambiguity offset table: %w", err)
		}
	}

	if err := validateOffsets(idx.HeaderOffsets, idx.NumRecords); err != nil {
		return nil, nil, fmt.Errorf("header offset table: %w", err)
	}
	if err := validateOffsets(idx.SequenceOffsets, idx.NumRecords); err != nil {
		return nil, nil, fmt.Errorf("sequence offset table: %w", err)
	}
	if idx.AmbiguityOffsets != nil {
		if err := validateOffsets(idx.AmbiguityOffsets, idx.NumRecords); err != nil {
			return nil, nil, fmt.Errorf("ambiguity offset table: %w", err)
		}
	}

	var warnings []string
	if c.Remaining() > 0 {
		warnings = append(warnings, fmt.Sprintf("index: %d trailing byte(s) after the last offset table", c.Remaining()))
	}

	return idx, warnings, nil
}

// readOffsetTable reads the n+1 big-endian 32-bit entries of one
// offset table.
func readOffsetTable(c *bufcur.Cursor, n uint32) ([]uint32, error) {
	count := int(n) + 1
	table := make([]uint32, count)
	for i := range table {
		v, err := c.ReadU32BE()
		if err != nil {
			return nil, err
		}
		table[i] = v
	}
	return table, nil
}

// validateOffsets enforces monotonically non-decreasing entries, and,
// when there is at least one record, at least two entries with the
// first strictly less than the last. An empty volume's offset table
// collapses to a single entry, which this rule does not apply to.
func validateOffsets(table []uint32, numRecords uint32) error {
	if numRecords == 0 {
		return nil
	}
	if len(table) < 2 {
		return dberr.New(dberr.CorruptIndex, "offset table has %d entr(ies), need at least 2", len(table))
	}
	for i := 1; i < len(table); i++ {
		if table[i] < table[i-1] {
			return dberr.New(dberr.CorruptIndex, "offset table entry %d (%d) is less than entry %d (%d)", i, table[i], i-1, table[i-1])
		}
	}
	if table[0] >= table[len(table)-1] {
		return dberr.New(dberr.CorruptIndex, "offset table first entry (%d) is not less than last entry (%d)", table[0], table[len(table)-1])
	}
	return nil
}
