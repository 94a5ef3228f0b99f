// Package bucket assigns keys to a fixed number of hash-partitions of a
// partition's key space, the unit of independent merge in the merge-tree
// reader.
package bucket

import (
	"hash/crc32"

	"tablestore/pkg/row"
)

// Of returns the bucket key falls into among numBuckets buckets. The hash
// is stable across process runs (crc32 over the key's canonical byte
// encoding), so a writer computing a bucket for a new file and a reader
// re-deriving it for a bucket-scoped scan always agree.
func Of(key row.Row, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}
	sum := crc32.ChecksumIEEE(key.CanonicalBytes())
	return int(sum % uint32(numBuckets))
}
