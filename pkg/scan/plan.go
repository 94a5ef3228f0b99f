package scan

import "tablestore/pkg/manifest"

// Plan is the resolved, live file set for one scan: every ManifestEntry
// whose ADD survived to the end of the fold without a matching DELETE, and
// that passed partition/bucket pruning. Files is sorted by Identifier so two
// plans built from the same inputs always compare equal.
type Plan struct {
	SnapshotID *uint64
	Files      []manifest.Entry
}
