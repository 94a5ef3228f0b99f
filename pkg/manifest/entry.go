// Package manifest reads and writes manifest files (lists of ADD/DELETE
// events for SST files) and manifest-list files (ordered manifest
// descriptors with per-manifest partition stats).
package manifest

import (
	"fmt"

	"tablestore/pkg/kv"
	"tablestore/pkg/row"
)

// Kind mirrors kv.Kind at the manifest level: an entry either adds a live
// file to the table or removes one previously added.
type Kind = kv.Kind

const (
	Add    = kv.Add
	Delete = kv.Delete
)

// Entry is one ADD or DELETE event for one SST file.
type Entry struct {
	Kind      Kind
	Partition row.Row
	Bucket    int32
	File      kv.SstFileMeta
}

// Identifier globally identifies the SST file an Entry refers to. For any
// identifier, the sequence of entries observed across all manifests of a
// snapshot's closure must be exactly one ADD followed by zero or one
// DELETE.
type Identifier struct {
	Partition string
	Bucket    int32
	FileName  string
}

// Identifier computes e's identifier. Partition is rendered to its
// canonical byte form so rows compare by value, not by slice identity.
func (e Entry) Identifier() Identifier {
	return Identifier{
		Partition: string(e.Partition.CanonicalBytes()),
		Bucket:    e.Bucket,
		FileName:  e.File.FileName,
	}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s(partition=%v, bucket=%d, file=%s)", e.Kind, e.Partition, e.Bucket, e.File.FileName)
}

// FileMeta describes one manifest file: its own path, size, how many ADD
// and DELETE entries it holds, and the per-partition-field min/max/null
// summary rolled up across its entries. Used for manifest-level pruning
// before the manifest itself is opened.
type FileMeta struct {
	FileName        string
	FileSize        int64
	NumAddedFiles   int64
	NumDeletedFiles int64
	PartitionStats  row.Stats
}

// List is an ordered sequence of manifest descriptors comprising one
// snapshot. Order is commit order: entries must be folded in list order.
type List []FileMeta
