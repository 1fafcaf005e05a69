package seqdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/Schaudge/seqdb/defline"
	"github.com/Schaudge/seqdb/dberr"
	"github.com/Schaudge/seqdb/residue"
)

// Record is the fully reconstructed per-record value: a definition
// list decoded from the header blob, the decoded sequence letters, and
// any warnings accumulated along the way.
type Record struct {
	Index    int
	DefLines []defline.DefLine
	Sequence []byte
	Warnings []string
}

// DecodeRecord reconstructs record i of v: its header blob is decoded
// into definition lines (errors there are recovered locally, surfacing
// as Warnings) and its packed sequence bytes are translated to letters
// (errors there are fatal to this one record only — a malformed
// sequence in one record does not affect the others).
func DecodeRecord(v *Volume, i int) (Record, error) {
	rec := Record{Index: i}

	blob, err := v.HeaderBlob(i)
	if err != nil {
		return rec, fmt.Errorf("record %d: %w", i, err)
	}
	lines, warnings := defline.Decode(blob)
	rec.DefLines = lines
	rec.Warnings = warnings

	if !v.Index.IsProtein {
		return rec, dberr.New(dberr.UnsupportedDatabase, "record %d: sequence is nucleotide, decoding is out of scope", i)
	}

	rawSeq, err := v.SequenceRange(i)
	if err != nil {
		return rec, fmt.Errorf("record %d: %w", i, err)
	}
	seq, err := residue.DecodeProtein(rawSeq, 0, len(rawSeq))
	if err != nil {
		return rec, fmt.Errorf("record %d sequence: %w", i, err)
	}
	rec.Sequence = seq
	return rec, nil
}

// DecodeAll decodes every record of v, optionally fanning the work out
// across workers goroutines: records are independent and can be
// decoded in parallel without synchronization. The result preserves
// on-disk record order regardless of completion order, by writing each
// result into its own pre-sized slot rather than relying on channel
// order.
//
// workers <= 1 decodes sequentially on the calling goroutine. ctx
// cancellation stops launching new work and returns ctx.Err(); records
// already in flight still finish and populate their slot.
func DecodeAll(ctx context.Context, v *Volume, workers int) ([]Record, error) {
	n := v.NumRecords()
	records := make([]Record, n)
	if n == 0 {
		return records, nil
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			rec, err := DecodeRecord(v, i)
			records[i] = rec
			if err != nil {
				records[i].Warnings = append(records[i].Warnings, err.Error())
			}
		}
		return records, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := DecodeRecord(v, i)
				if err != nil {
					rec.Warnings = append(rec.Warnings, err.Error())
				}
				records[i] = rec
			}
		}()
	}

	var ctxErr error
feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return records, ctxErr
}
