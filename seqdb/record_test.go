package seqdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMinimalIndex builds a protein index of len(headerOffsets)-1
// records whose header and sequence offset tables are supplied
// directly, bypassing byte encoding, for tests that only care about
// the decode driver.
func buildMinimalIndex(headerOffsets, sequenceOffsets []uint32) *Index {
	return &Index{
		Version:         4,
		IsProtein:       true,
		NumRecords:      uint32(len(headerOffsets) - 1),
		HeaderOffsets:   headerOffsets,
		SequenceOffsets: sequenceOffsets,
	}
}

func TestDecodeRecordBasic(t *testing.T) {
	// One record: an empty definition-line sequence (no lines) and a
	// 2-residue protein sequence "AC" (codes 1,3) before a terminator.
	headerBytes := []byte{0x30, 0x00}
	sequenceBytes := []byte{1, 3, 0}
	idx := buildMinimalIndex([]uint32{0, 2}, []uint32{0, 3})
	v := NewVolume(idx, headerBytes, sequenceBytes)

	rec, err := DecodeRecord(v, 0)
	require.NoError(t, err)
	require.Equal(t, 0, rec.Index)
	require.Equal(t, "AC", string(rec.Sequence))
}

func TestDecodeAllSequentialAndParallelAgree(t *testing.T) {
	headerBytes := []byte{0x30, 0x00, 0x30, 0x00, 0x30, 0x00}
	sequenceBytes := []byte{1, 0, 3, 0, 5, 0}
	idx := buildMinimalIndex([]uint32{0, 2, 4, 6}, []uint32{0, 2, 4, 6})
	v := NewVolume(idx, headerBytes, sequenceBytes)

	seq, err := DecodeAll(context.Background(), v, 1)
	require.NoError(t, err)
	par, err := DecodeAll(context.Background(), v, 4)
	require.NoError(t, err)

	require.Len(t, seq, 3)
	require.Len(t, par, 3)
	for i := range seq {
		require.Equal(t, seq[i].Index, par[i].Index)
		require.Equal(t, string(seq[i].Sequence), string(par[i].Sequence))
	}
	require.Equal(t, "A", string(seq[0].Sequence))
	require.Equal(t, "C", string(seq[1].Sequence))
	require.Equal(t, "E", string(seq[2].Sequence))
}

func TestDecodeAllEmptyVolume(t *testing.T) {
	idx := buildMinimalIndex([]uint32{0}, []uint32{0})
	v := NewVolume(idx, nil, nil)
	recs, err := DecodeAll(context.Background(), v, 4)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestDecodeRecordOutOfRange(t *testing.T) {
	idx := buildMinimalIndex([]uint32{0, 2}, []uint32{0, 2})
	v := NewVolume(idx, []byte{0x30, 0x00}, []byte{1, 0})
	_, err := DecodeRecord(v, 5)
	require.Error(t, err)
}
