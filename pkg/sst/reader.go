// Package sst streams key/value records from one data file in ascending
// key order, batch by batch.
package sst

import (
	"fmt"

	"tablestore/pkg/blockfile"
	"tablestore/pkg/kv"
)

// Reader opens a single SST file as a lazy sequence of Batches. Records
// within a file are delivered in the ascending key order the writer
// guaranteed. Reading a corrupt file, a truncated record, or a schema
// mismatch fails with an error wrapping tserrors.ErrFormatError.
type Reader struct {
	bf *blockfile.Reader
}

// Open opens path for reading.
func Open(path string) (*Reader, error) {
	bf, err := blockfile.Open(path, magic)
	if err != nil {
		return nil, fmt.Errorf("sst: open %s: %w", path, err)
	}
	return &Reader{bf: bf}, nil
}

// ReadBatch returns the next batch of records, or (nil, false, nil) at EOF.
// The caller must Close the returned batch before calling ReadBatch again.
func (r *Reader) ReadBatch() (Batch, bool, error) {
	payload, ok, err := r.bf.NextBlock()
	if err != nil {
		return nil, false, fmt.Errorf("sst: read batch: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	count, offset, err := blockfile.RecordCount(payload)
	if err != nil {
		return nil, false, fmt.Errorf("sst: read batch: %w", err)
	}
	records := make([]kv.KeyValue, 0, count)
	for i := uint32(0); i < count; i++ {
		rec, n, err := decodeRecord(payload[offset:])
		if err != nil {
			return nil, false, fmt.Errorf("sst: decode batch record %d: %w", i, err)
		}
		records = append(records, rec)
		offset += n
	}

	return newSliceBatch(records), true, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if err := r.bf.Close(); err != nil {
		return fmt.Errorf("sst: close: %w", err)
	}
	return nil
}
