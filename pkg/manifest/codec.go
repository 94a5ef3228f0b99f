package manifest

import (
	"fmt"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/blockfile"
	"tablestore/pkg/row"
)

// DefaultRecordsPerBlock bounds how many entries blockfile buffers before
// compressing and flushing a block.
const DefaultRecordsPerBlock = 256

// Writer accumulates ManifestEntry records and derives the FileMeta the
// commit layer needs once the file is finalized. A single writer may be
// rolled to a new file by the caller on a size threshold; Writer itself
// does not roll.
type Writer struct {
	path           string
	bw             *blockfile.Writer
	numAdded       int64
	numDeleted     int64
	partitionStats row.Stats
}

// NewWriter opens path for writing.
func NewWriter(path string, algo blockcodec.Algorithm) (*Writer, error) {
	bw, err := blockfile.Create(path, entryMagic, algo, DefaultRecordsPerBlock)
	if err != nil {
		return nil, fmt.Errorf("manifest: new writer: %w", err)
	}
	return &Writer{path: path, bw: bw}, nil
}

// Append writes one entry, folding it into the manifest's running
// per-partition-field stats and add/delete counters.
func (w *Writer) Append(e Entry) error {
	if err := w.bw.AppendRecord(encodeEntry(e)); err != nil {
		return fmt.Errorf("manifest: append entry: %w", err)
	}
	switch e.Kind {
	case Add:
		w.numAdded++
	case Delete:
		w.numDeleted++
	}
	w.partitionStats = w.partitionStats.Observe(e.Partition)
	return nil
}

// Close finalizes the manifest file and returns its descriptor.
func (w *Writer) Close() (FileMeta, error) {
	size, _, err := w.bw.Close()
	if err != nil {
		return FileMeta{}, fmt.Errorf("manifest: close writer: %w", err)
	}
	return FileMeta{
		FileName:        w.path,
		FileSize:        size,
		NumAddedFiles:   w.numAdded,
		NumDeletedFiles: w.numDeleted,
		PartitionStats:  w.partitionStats,
	}, nil
}

// Read returns every entry in the manifest at path, in on-disk order.
func Read(path string) ([]Entry, error) {
	r, err := blockfile.Open(path, entryMagic)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", path, err)
	}
	defer r.Close()

	var entries []Entry
	for {
		payload, ok, err := r.NextBlock()
		if err != nil {
			return nil, fmt.Errorf("manifest: read block: %w", err)
		}
		if !ok {
			break
		}
		count, offset, err := blockfile.RecordCount(payload)
		if err != nil {
			return nil, fmt.Errorf("manifest: read block: %w", err)
		}
		for i := uint32(0); i < count; i++ {
			e, n, err := decodeEntry(payload[offset:])
			if err != nil {
				return nil, fmt.Errorf("manifest: decode entry %d: %w", i, err)
			}
			entries = append(entries, e)
			offset += n
		}
	}
	return entries, nil
}
