// Package commit turns a batch of committed data files into a new manifest,
// manifest-list, and snapshot, serializing concurrent writers through a
// pluggable Coordinator.
package commit

import (
	"tablestore/pkg/kv"
	"tablestore/pkg/row"
)

// CommittedFile pairs a data file's descriptor with the partition and
// bucket it was written into, since a ManifestEntry needs both to compute
// its Identifier and the writer itself is opaque to this layer.
type CommittedFile struct {
	Meta      kv.SstFileMeta
	Partition row.Row
	Bucket    int32
}

// Increment is the write path's report to the commit layer: newFiles and
// compactedAfter become ADD entries, compactedBefore become DELETE entries.
// A non-empty CompactedBefore marks the commit as a compaction.
type Increment struct {
	NewFiles        []CommittedFile
	CompactedBefore []CommittedFile
	CompactedAfter  []CommittedFile
}

func (i Increment) isCompaction() bool {
	return len(i.CompactedBefore) > 0
}

// Result is what a successful (or successfully replayed) commit returns.
type Result struct {
	SnapshotID   uint64
	ManifestList string
}

// Builder accumulates a CommittedFile batch incrementally, the way a
// writer's flush loop reports files as it produces them, and finalizes them
// into an Increment. It plays the role this repo's WriteBatch interface
// played for mutation batching, adapted from key/value puts to file-level
// commit reporting.
type Builder struct {
	inc Increment
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddFile records a newly written data file to be ADDed.
func (b *Builder) AddFile(f CommittedFile) *Builder {
	b.inc.NewFiles = append(b.inc.NewFiles, f)
	return b
}

// Compact records a compaction: before is DELETEd, after is ADDed.
func (b *Builder) Compact(before, after []CommittedFile) *Builder {
	b.inc.CompactedBefore = append(b.inc.CompactedBefore, before...)
	b.inc.CompactedAfter = append(b.inc.CompactedAfter, after...)
	return b
}

// Count returns the number of file events accumulated so far.
func (b *Builder) Count() int {
	return len(b.inc.NewFiles) + len(b.inc.CompactedBefore) + len(b.inc.CompactedAfter)
}

// Clear discards everything accumulated so far, returning the Builder to an
// empty state for reuse.
func (b *Builder) Clear() *Builder {
	b.inc = Increment{}
	return b
}

// Build finalizes the accumulated batch into an Increment.
func (b *Builder) Build() Increment {
	return b.inc
}
