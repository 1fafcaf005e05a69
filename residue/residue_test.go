package residue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeProteinBasic(t *testing.T) {
	// G-A-B-C terminator.
	raw := []byte{7, 1, 2, 3, 0, 9, 9}
	out, err := DecodeProtein(raw, 0, len(raw))
	require.NoError(t, err)
	require.Equal(t, "GABC", string(out))
}

func TestDecodeProteinUnknownCode(t *testing.T) {
	raw := []byte{1, 28, 200, 0}
	out, err := DecodeProtein(raw, 0, len(raw))
	require.NoError(t, err)
	require.Equal(t, "A??", string(out))
}

func TestDecodeProteinNoTerminator(t *testing.T) {
	raw := []byte{1, 3, 5}
	out, err := DecodeProtein(raw, 0, len(raw))
	require.NoError(t, err)
	require.Equal(t, "ACE", string(out))
	require.LessOrEqual(t, len(out), len(raw))
}

func TestDecodeProteinRange(t *testing.T) {
	raw := []byte{1, 1, 1, 3, 5, 9, 9}
	out, err := DecodeProtein(raw, 3, 5)
	require.NoError(t, err)
	require.Equal(t, "CE", string(out))
}

func TestDecodeProteinInvertedRange(t *testing.T) {
	raw := []byte{1, 2, 3}
	_, err := DecodeProtein(raw, 2, 1)
	require.Error(t, err)
}

func TestDecodeProteinOutOfBounds(t *testing.T) {
	raw := []byte{1, 2, 3}
	_, err := DecodeProtein(raw, 0, 10)
	require.Error(t, err)
}

func TestDecodeNucleotideUnsupported(t *testing.T) {
	_, err := DecodeNucleotide([]byte{1, 2, 3}, 0, 3)
	require.Error(t, err)
}

func TestProteinTableTotalOnRange(t *testing.T) {
	for i := 0; i < 28; i++ {
		raw := []byte{byte(i)}
		_, err := DecodeProtein(raw, 0, 1)
		require.NoError(t, err)
	}
}
