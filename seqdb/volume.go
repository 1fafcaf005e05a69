package seqdb

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/Schaudge/seqdb/dberr"
	"github.com/Schaudge/seqdb/dblog"
)

// zstdMagic is the four-byte frame magic number klauspost/compress/zstd
// (and every other zstd implementation) writes at the start of a frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Options configures how a Volume's companion files are read.
type Options struct {
	// ForceZstd decompresses every companion file unconditionally
	// instead of relying on magic-number sniffing, for archives whose
	// zstd frames have been stripped of headers or concatenated with
	// other frames in a way the sniff can't see.
	ForceZstd bool
}

// Volume is an opened trio of index, header, and sequence bytes ready
// for per-record decoding.
type Volume struct {
	Index         *Index
	headerBytes   []byte
	sequenceBytes []byte
}

// OpenVolume reads and parses the three companion files named by
// indexPath, headerPath, and seqPath. Deriving those three paths from
// a single database name is a filesystem concern left to the caller;
// OpenVolume only reads the bytes it is given.
//
// Each file is transparently zstd-decompressed when it carries the
// zstd frame magic, or unconditionally when opts.ForceZstd is set.
// BLAST volumes are not natively compressed, but archival mirrors of
// legacy volumes are frequently distributed zstd-compressed, and this
// keeps that case from requiring an external decompression step.
func OpenVolume(indexPath, headerPath, seqPath string, opts Options) (*Volume, []string, error) {
	indexBytes, err := readMaybeCompressed(indexPath, opts.ForceZstd)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index file %q: %w", indexPath, err)
	}
	idx, warnings, err := ParseIndex(indexBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing index file %q: %w", indexPath, err)
	}
	for _, w := range warnings {
		dblog.Warnf(w, "file", indexPath)
	}

	headerBytes, err := readMaybeCompressed(headerPath, opts.ForceZstd)
	if err != nil {
		return nil, nil, fmt.Errorf("opening header file %q: %w", headerPath, err)
	}
	sequenceBytes, err := readMaybeCompressed(seqPath, opts.ForceZstd)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sequence file %q: %w", seqPath, err)
	}

	last := idx.HeaderOffsets[len(idx.HeaderOffsets)-1]
	if int(last) > len(headerBytes) {
		return nil, nil, dberr.New(dberr.CorruptIndex, "header offset table's last entry (%d) exceeds header file size (%d)", last, len(headerBytes))
	}
	lastSeq := idx.SequenceOffsets[len(idx.SequenceOffsets)-1]
	if int(lastSeq) > len(sequenceBytes) {
		return nil, nil, dberr.New(dberr.CorruptIndex, "sequence offset table's last entry (%d) exceeds sequence file size (%d)", lastSeq, len(sequenceBytes))
	}

	return &Volume{Index: idx, headerBytes: headerBytes, sequenceBytes: sequenceBytes}, warnings, nil
}

// NewVolume builds a Volume directly from already-parsed/read bytes,
// bypassing the filesystem entirely. Used by tests and by any caller
// that has already sourced the companion files another way.
func NewVolume(idx *Index, headerBytes, sequenceBytes []byte) *Volume {
	return &Volume{Index: idx, headerBytes: headerBytes, sequenceBytes: sequenceBytes}
}

// decompressScratchPool recycles the destination buffer zstd decodes
// into across successive OpenVolume calls, avoiding a fresh allocation
// per companion file decompressed.
var decompressScratchPool = sync.Pool{
	New: func() interface{} { return []byte{} },
}

func readMaybeCompressed(path string, force bool) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !force && !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()

	scratch := decompressScratchPool.Get().([]byte)[:0]
	out, err := dec.DecodeAll(raw, scratch)
	if err != nil {
		decompressScratchPool.Put(scratch)
		return nil, fmt.Errorf("zstd: decompressing %q: %w", path, err)
	}
	// out may or may not share scratch's backing array depending on
	// whether it grew past scratch's capacity; copy it out to a
	// right-sized slice before returning scratch to the pool, so a
	// later caller can never observe another volume's bytes.
	result := make([]byte, len(out))
	copy(result, out)
	decompressScratchPool.Put(out[:0])
	return result, nil
}

// HeaderBlob returns the raw, still-encoded header bytes for record i:
// bytes[header_offsets[i] .. header_offsets[i+1]).
func (v *Volume) HeaderBlob(i int) ([]byte, error) {
	off := v.Index.HeaderOffsets
	if i < 0 || i+1 >= len(off) {
		return nil, dberr.New(dberr.CorruptIndex, "record %d out of range [0,%d)", i, len(off)-1)
	}
	start, end := off[i], off[i+1]
	if start > end {
		return nil, dberr.New(dberr.CorruptIndex, "header range for record %d is inverted: [%d,%d)", i, start, end)
	}
	if int(end) > len(v.headerBytes) {
		return nil, dberr.New(dberr.CorruptIndex, "header range for record %d exceeds file size: end=%d, size=%d", i, end, len(v.headerBytes))
	}
	return v.headerBytes[start:end], nil
}

// SequenceRange returns the raw, still-packed sequence bytes for
// record i: bytes[sequence_offsets[i] .. sequence_offsets[i+1]).
func (v *Volume) SequenceRange(i int) ([]byte, error) {
	off := v.Index.SequenceOffsets
	if i < 0 || i+1 >= len(off) {
		return nil, dberr.New(dberr.CorruptIndex, "record %d out of range [0,%d)", i, len(off)-1)
	}
	start, end := off[i], off[i+1]
	if start > end {
		return nil, dberr.New(dberr.CorruptIndex, "sequence range for record %d is inverted: [%d,%d)", i, start, end)
	}
	if int(end) > len(v.sequenceBytes) {
		return nil, dberr.New(dberr.CorruptIndex, "sequence range for record %d exceeds file size: end=%d, size=%d", i, end, len(v.sequenceBytes))
	}
	return v.sequenceBytes[start:end], nil
}

// NumRecords reports the record count of the underlying index.
func (v *Volume) NumRecords() int {
	return int(v.Index.NumRecords)
}
