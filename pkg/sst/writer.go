package sst

import (
	"fmt"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/blockfile"
	"tablestore/pkg/kv"
	"tablestore/pkg/row"
)

// DefaultRecordsPerBlock bounds how many records blockfile buffers before
// compressing and flushing a block.
const DefaultRecordsPerBlock = 512

// Writer streams sorted KeyValue records into a new SST file, deriving the
// SstFileMeta the caller reports to the commit layer once Close returns.
type Writer struct {
	path       string
	bw         *blockfile.Writer
	rowCount   int64
	minKey     row.Row
	maxKey     row.Row
	keyStats   row.Stats
	valueStats row.Stats
	level      int
	haveFirst  bool
}

// NewWriter opens path for writing at the given merge-tree level.
func NewWriter(path string, level int, algo blockcodec.Algorithm) (*Writer, error) {
	bw, err := blockfile.Create(path, magic, algo, DefaultRecordsPerBlock)
	if err != nil {
		return nil, fmt.Errorf("sst: new writer: %w", err)
	}
	return &Writer{path: path, bw: bw, level: level}, nil
}

// Append writes one record. The caller is responsible for ascending-key
// ordering; the writer does not sort.
func (w *Writer) Append(r kv.KeyValue) error {
	if err := w.bw.AppendRecord(encodeRecord(r)); err != nil {
		return fmt.Errorf("sst: append record: %w", err)
	}
	if !w.haveFirst {
		w.minKey = r.Key.Clone()
		w.haveFirst = true
	}
	w.maxKey = r.Key.Clone()
	w.keyStats = w.keyStats.Observe(r.Key)
	w.valueStats = w.valueStats.Observe(r.Value)
	w.rowCount++
	return nil
}

// Close finalizes the file and returns its metadata.
func (w *Writer) Close() (kv.SstFileMeta, error) {
	size, count, err := w.bw.Close()
	if err != nil {
		return kv.SstFileMeta{}, fmt.Errorf("sst: close writer: %w", err)
	}
	return kv.SstFileMeta{
		FileName:   w.path,
		FileSize:   size,
		RowCount:   count,
		MinKey:     w.minKey,
		MaxKey:     w.maxKey,
		KeyStats:   w.keyStats,
		ValueStats: w.valueStats,
		Level:      w.level,
	}, nil
}
