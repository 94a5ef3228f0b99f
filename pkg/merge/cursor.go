package merge

import (
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/manifest"
	"tablestore/pkg/sst"
)

// Source is one input to a merge: an SST file plus the ordering metadata the
// merge needs to break ties among records sharing a key. Seq disambiguates
// files at the same level; the caller assigns it (typically the file's
// position within its level, newest last).
type Source struct {
	File  manifest.Entry
	Level int
	Seq   int
}

// cursor is a forward-only view of one Source's records, refilling its
// current batch from the underlying sst.Reader on demand. It is the merge
// reader's per-file suspension point: exactly one batch is held in memory
// at a time.
type cursor struct {
	src    Source
	reader *sst.Reader
	batch  sst.Batch
	head   kv.KeyValue
	valid  bool
	done   bool
}

func openCursor(src Source) (*cursor, error) {
	r, err := sst.Open(src.File.File.FileName)
	if err != nil {
		return nil, fmt.Errorf("merge: open %s: %w", src.File.File.FileName, err)
	}
	c := &cursor{src: src, reader: r}
	if err := c.advance(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return c, nil
}

// advance moves the cursor to its next record, pulling a new batch from the
// reader when the current one is exhausted. After advance returns nil,
// valid reports whether a record is available.
func (c *cursor) advance() error {
	for {
		if c.batch != nil && c.batch.Next() {
			c.head = c.batch.Record()
			c.valid = true
			return nil
		}
		if c.batch != nil {
			if err := c.batch.Close(); err != nil {
				return fmt.Errorf("merge: close batch: %w", err)
			}
			c.batch = nil
		}
		next, ok, err := c.reader.ReadBatch()
		if err != nil {
			return fmt.Errorf("merge: read batch from %s: %w", c.src.File.File.FileName, err)
		}
		if !ok {
			c.valid = false
			c.done = true
			return nil
		}
		c.batch = next
	}
}

func (c *cursor) close() error {
	if c.batch != nil {
		_ = c.batch.Close()
	}
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("merge: close %s: %w", c.src.File.File.FileName, err)
	}
	return nil
}
