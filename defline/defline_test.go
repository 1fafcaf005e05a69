package defline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Schaudge/seqdb/ber"
	"github.com/Schaudge/seqdb/bufcur"
)

// TestDecodeExplicitTitleIndefinite decodes an indefinite-length title
// wrapper around a single primitive universal-26 string, followed by
// the end-of-contents marker.
func TestDecodeExplicitTitleIndefinite(t *testing.T) {
	buf := []byte{0xA0, 0x80, 0x1A, 0x03, 'x', 'y', 'z', 0x00, 0x00}
	r := ber.NewReader(bufcur.New(buf))
	hdr, err := r.ReadHeader()
	require.NoError(t, err)
	title, ok := decodeExplicitTitle(r, hdr)
	require.True(t, ok)
	require.Equal(t, "xyz", title)
	require.Equal(t, len(buf), r.Cursor().Pos())
}

// TestDecodeExplicitTitleThreeChunks covers the boundary behavior:
// "indefinite-length title whose inner string is split into three
// chunks: concatenation equals the intended title."
func TestDecodeExplicitTitleThreeChunks(t *testing.T) {
	// A0 80: title wrapper, indefinite.
	//   3A 80: constructed universal-26 string, indefinite.
	//     1A 01 'a'
	//     1A 01 'b'
	//     1A 01 'c'
	//     00 00 (closes constructed string)
	//   00 00 (closes title wrapper)
	buf := []byte{
		0xA0, 0x80,
		0x3A, 0x80,
		0x1A, 0x01, 'a',
		0x1A, 0x01, 'b',
		0x1A, 0x01, 'c',
		0x00, 0x00,
		0x00, 0x00,
	}
	r := ber.NewReader(bufcur.New(buf))
	hdr, err := r.ReadHeader()
	require.NoError(t, err)
	title, ok := decodeExplicitTitle(r, hdr)
	require.True(t, ok)
	require.Equal(t, "abc", title)
	require.Equal(t, len(buf), r.Cursor().Pos())
}

func TestParseSeqIDGi(t *testing.T) {
	// A gi identifier: context-specific primitive tag 11, body 00 00 12 34.
	buf := []byte{0x8B, 0x04, 0x00, 0x00, 0x12, 0x34}
	r := ber.NewReader(bufcur.New(buf))
	hdr, err := r.ReadHeader()
	require.NoError(t, err)
	id := parseSeqID(r, hdr)
	require.Equal(t, "gi", id.Type)
	require.Equal(t, "4660", id.Value)
	require.Nil(t, id.Version)
}

func TestParseSeqIDPDB(t *testing.T) {
	// A pdb identifier: constructed tag 14, body a universal sequence of
	// a universal-26 string "2HBS" and a universal-2 integer 5.
	buf := []byte{
		0xAE, 0x0B,
		0x30, 0x09,
		0x1A, 0x04, '2', 'H', 'B', 'S',
		0x02, 0x01, 0x05,
	}
	r := ber.NewReader(bufcur.New(buf))
	hdr, err := r.ReadHeader()
	require.NoError(t, err)
	id := parseSeqID(r, hdr)
	require.Equal(t, "pdb", id.Type)
	require.Equal(t, "2HBS", id.Value)
	require.NotNil(t, id.Version)
	require.Equal(t, 5, *id.Version)
	require.Equal(t, len(buf), r.Cursor().Pos())
}

func TestParseSeqIDUnknownTagNumberFormat(t *testing.T) {
	// Tag number 25 is outside the 20-entry table: must format as
	// "unknown-25".
	buf := []byte{0x80 | 0x1F, 0x19, 0x01, 0x00} // long-form tag number 25, primitive, length 1
	r := ber.NewReader(bufcur.New(buf))
	hdr, err := r.ReadHeader()
	require.NoError(t, err)
	id := parseSeqID(r, hdr)
	require.Equal(t, "unknown-25", id.Type)
}

func TestLongestIdentifierRun(t *testing.T) {
	require.Equal(t, "NP_000001.2", longestIdentifierRun([]byte("  >>NP_000001.2||  ")))
	require.Equal(t, "", longestIdentifierRun([]byte("!!!   ###")))
}

// buildTitleField builds the bytes of a definite-length explicit title
// wrapper (context tag 0) around a single primitive universal-26
// string.
func buildTitleField(title string) []byte {
	inner := append([]byte{0x1A, byte(len(title))}, []byte(title)...)
	return append([]byte{0xA0, byte(len(inner))}, inner...)
}

// buildTextStyleSeqID builds a constructed text-style seqid choice
// element (any tag other than a primitive or 14) with a tag-1 value
// and a tag-3 version.
func buildTextStyleSeqID(tagNumber byte, value string, version byte) []byte {
	valueField := append([]byte{0x81, byte(len(value))}, []byte(value)...)
	versionField := []byte{0x83, 0x01, version}
	content := append(append([]byte{}, valueField...), versionField...)
	header := byte(0x80 | 0x20 | tagNumber)
	return append([]byte{header, byte(len(content))}, content...)
}

func TestDecodeTwoLinesSecondTruncated(t *testing.T) {
	title := buildTitleField("hello")
	seqID := buildTextStyleSeqID(4, "NP_000001", 2) // tag 4 = genbank
	seqIDList := append([]byte{0xA1, byte(len(seqID))}, seqID...)
	line1Content := append(append([]byte{}, title...), seqIDList...)
	line1 := append([]byte{0x30, byte(len(line1Content))}, line1Content...)

	// line 2: a taxid field declaring a 4-byte integer, but only 1
	// byte of payload is actually present before the buffer ends.
	line2 := []byte{
		0x30, 0x08, // definition line, declares 8 bytes of content
		0xA2, 0x06, // taxid wrapper, declares 6 bytes
		0x02, 0x04, // inner integer, declares 4 bytes
		0x00, // only one payload byte actually present
	}

	blob := append([]byte{0x30, 0x80}, line1...) // outer sequence, indefinite
	blob = append(blob, line2...)

	lines, warnings := Decode(blob)
	require.Len(t, lines, 2)
	require.Equal(t, "hello", lines[0].Title)
	require.Len(t, lines[0].SeqIDs, 1)
	require.Equal(t, "genbank", lines[0].SeqIDs[0].Type)
	require.Equal(t, "NP_000001", lines[0].SeqIDs[0].Value)
	require.NotNil(t, lines[0].SeqIDs[0].Version)
	require.Equal(t, 2, *lines[0].SeqIDs[0].Version)

	require.Empty(t, lines[1].Title)
	require.Nil(t, lines[1].TaxID)
	require.NotEmpty(t, warnings)
}

func TestDecodeSingleLineTitleAbsent(t *testing.T) {
	// Boundary: a single definition line with no title field, only a
	// taxid field.
	line := []byte{0x30, 0x05, 0xA2, 0x03, 0x02, 0x01, 0x07}
	blob := append([]byte{0x30, byte(len(line))}, line...)

	lines, warnings := Decode(blob)
	require.Empty(t, warnings)
	require.Len(t, lines, 1)
	require.Equal(t, "", lines[0].Title)
	require.NotNil(t, lines[0].TaxID)
	require.Equal(t, 7, *lines[0].TaxID)
}

func TestDecodeEmptyInputYieldsWarning(t *testing.T) {
	lines, warnings := Decode(nil)
	require.Nil(t, lines)
	require.NotEmpty(t, warnings)
}

func TestDecodeNotASequenceYieldsWarning(t *testing.T) {
	lines, warnings := Decode([]byte{0x02, 0x01, 0x05})
	require.Nil(t, lines)
	require.NotEmpty(t, warnings)
}
