package merge

import (
	"container/heap"
	"context"
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/row"
	"tablestore/pkg/tserrors"
)

// Record is one output record of a merge: a key, its accumulated value, and
// its kind. Both accumulators drop keys whose result is a tombstone, so Kind
// is always kv.Add.
type Record struct {
	Key   row.Row
	Value row.Row
	Kind  kv.Kind
}

// Reader performs the k-way merge over a fixed set of Sources, folding
// records sharing a key through an Accumulator, and yields Records in
// strictly ascending key order. A Reader is single-use and not safe for
// concurrent calls to Next.
type Reader struct {
	cursors []*cursor
	h       cursorHeap
	acc     *Accumulator
	closed  bool
}

// Open opens every source and prepares the merge. Sources need not be
// pre-sorted relative to one another; Open establishes the heap invariant
// from each file's first record.
func Open(sources []Source, acc *Accumulator) (*Reader, error) {
	r := &Reader{acc: acc}
	for _, src := range sources {
		c, err := openCursor(src)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.cursors = append(r.cursors, c)
		if c.valid {
			r.h = append(r.h, c)
		}
	}
	heap.Init(&r.h)
	return r, nil
}

// Next returns the next merged record. ok is false once every source is
// exhausted. Cancelling ctx between key groups surfaces tserrors.ErrCancelled;
// a batch read already in flight is allowed to complete first.
func (r *Reader) Next(ctx context.Context) (Record, bool, error) {
	for r.h.Len() > 0 {
		select {
		case <-ctx.Done():
			return Record{}, false, fmt.Errorf("merge: %w", tserrors.ErrCancelled)
		default:
		}

		key := r.h[0].head.Key
		var group []*cursor
		for r.h.Len() > 0 && r.h[0].head.Key.Equal(key) {
			top := heap.Pop(&r.h).(*cursor)
			group = append(group, top)
		}

		for i, c := range group {
			if i == 0 {
				r.acc.Reset(c.head.Value, c.head.Kind)
			} else {
				r.acc.Add(c.head.Value, c.head.Kind)
			}
		}

		for _, c := range group {
			if err := c.advance(); err != nil {
				return Record{}, false, err
			}
			if c.valid {
				heap.Push(&r.h, c)
			}
		}

		value, kind, ok := r.acc.GetResult()
		if !ok {
			continue
		}
		return Record{Key: key, Value: value, Kind: kind}, true, nil
	}
	return Record{}, false, nil
}

// Close releases every open source, returning the first error encountered
// (if any) after attempting to close them all.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for _, c := range r.cursors {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("merge: close: %w", firstErr)
	}
	return nil
}
