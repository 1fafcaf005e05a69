// Package dbtestutil registers test-equality comparators for this
// module's decoded value types, a thin wrapper registering a
// grailbio/testutil/h comparator for seqdb.Record.
package dbtestutil

import (
	"reflect"
	"sync"

	"github.com/grailbio/testutil/h"

	"github.com/Schaudge/seqdb/seqdb"
)

var once = sync.Once{}

// RegisterRecordComparator adds a github.com/grailbio/testutil/h
// comparator for seqdb.Record. This function is threadsafe and
// idempotent.
func RegisterRecordComparator() {
	once.Do(func() {
		h.RegisterComparator(func(f0, f1 seqdb.Record) (int, error) {
			if recordsEqual(f0, f1) {
				return 0, nil
			}
			return 1, nil
		})
	})
}

func recordsEqual(a, b seqdb.Record) bool {
	if a.Index != b.Index {
		return false
	}
	if string(a.Sequence) != string(b.Sequence) {
		return false
	}
	if len(a.DefLines) != len(b.DefLines) {
		return false
	}
	for i := range a.DefLines {
		if !reflect.DeepEqual(a.DefLines[i], b.DefLines[i]) {
			return false
		}
	}
	return true
}
