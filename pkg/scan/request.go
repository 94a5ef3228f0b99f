// Package scan resolves a scan request against a table's manifest closure:
// it walks a snapshot's manifest-list, prunes manifests and entries that
// cannot satisfy the caller's partition filter, folds the surviving
// ADD/DELETE events into a live file set, and returns that set as a Plan.
package scan

import "tablestore/pkg/predicate"

// ScanRequest is an immutable description of what to plan. Exactly one of
// SnapshotID or ManifestListPath must be set: SnapshotID resolves through a
// snapshot.Store (the normal path), ManifestListPath plans a specific
// manifest-list directly, bypassing the snapshot pointer; such a plan has a
// nil SnapshotID.
//
// KeyFilter and ValueFilter are accepted but never evaluated here, per the
// reserved key/value pushdown hook: the planner only prunes on partition and
// bucket, and the caller applies row-level filters to the merged stream.
type ScanRequest struct {
	SnapshotID      *uint64
	ManifestListPath string
	PartitionFilter predicate.Expr
	KeyFilter       predicate.Expr
	ValueFilter     predicate.Expr
	Bucket          *int
}
