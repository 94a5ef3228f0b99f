package sst

import "tablestore/pkg/kv"

// Batch is a forward-only cursor over one batch of records read from an SST
// file. Batches are the unit of resource ownership: the caller releases one
// batch (Close) before requesting the reader's next.
type Batch interface {
	// Next advances to the next record in the batch, returning false at
	// the batch's end.
	Next() bool
	// Record returns the record the cursor currently points to. Valid
	// only after a Next call returned true.
	Record() kv.KeyValue
	// Close releases resources held by the batch.
	Close() error
}

type sliceBatch struct {
	records []kv.KeyValue
	pos     int
}

func (b *sliceBatch) Next() bool {
	b.pos++
	return b.pos < len(b.records)
}

func (b *sliceBatch) Record() kv.KeyValue {
	return b.records[b.pos]
}

func (b *sliceBatch) Close() error { return nil }

func newSliceBatch(records []kv.KeyValue) *sliceBatch {
	return &sliceBatch{records: records, pos: -1}
}
