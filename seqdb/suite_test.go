package seqdb

import (
	"testing"

	check "gopkg.in/check.v1"
)

// Test hooks gocheck into the standard go test runner.
func Test(t *testing.T) { check.TestingT(t) }

type IndexSuite struct{}

var _ = check.Suite(&IndexSuite{})

// TestOffsetTableInvariant checks that a two-record index parses into
// a three-entry header offset table whose entries are non-decreasing.
func (s *IndexSuite) TestOffsetTableInvariant(c *check.C) {
	buf := []byte{
		0x00, 0x00, 0x00, 0x04,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x02, // num_records = 2
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x0A,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x0A,
	}
	idx, _, err := ParseIndex(buf)
	c.Assert(err, check.IsNil)
	c.Assert(idx.HeaderOffsets, check.HasLen, 3)
	for i := 1; i < len(idx.HeaderOffsets); i++ {
		c.Assert(idx.HeaderOffsets[i] >= idx.HeaderOffsets[i-1], check.Equals, true)
	}
}

// TestVersionRejected checks that an unrecognized version value fails
// the whole index parse.
func (s *IndexSuite) TestVersionRejected(c *check.C) {
	_, _, err := ParseIndex([]byte{0x00, 0x00, 0x00, 0x09})
	c.Assert(err, check.NotNil)
}
