// Package tablepath maps logical table entities (snapshots, manifests, SST
// files) to storage paths rooted at a table directory.
package tablepath

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"tablestore/pkg/row"
)

// Factory is stateless aside from its root and its UUID source; it is safe
// for concurrent use by every writer and reader in the process.
type Factory struct {
	root       string
	fieldNames []string
	newUUID    func() string
}

// New builds a Factory rooted at root. fieldNames names the partition
// fields in order, used only to render human-readable partition paths.
func New(root string, fieldNames []string) *Factory {
	return &Factory{
		root:       root,
		fieldNames: fieldNames,
		newUUID:    func() string { return uuid.NewString() },
	}
}

// Root returns the table root directory.
func (f *Factory) Root() string { return f.root }

// SnapshotPath returns the path of the snapshot file for id.
func (f *Factory) SnapshotPath(id uint64) string {
	return filepath.Join(f.root, "snapshot", fmt.Sprintf("snapshot-%d", id))
}

// SnapshotDir returns the directory holding all snapshot files.
func (f *Factory) SnapshotDir() string {
	return filepath.Join(f.root, "snapshot")
}

// NewManifestPath mints a fresh path for a manifest or manifest-list file.
// Both live in the same flat directory; only their contents distinguish
// them.
func (f *Factory) NewManifestPath() string {
	return filepath.Join(f.root, "manifest", f.newUUID())
}

// ManifestDir returns the directory holding manifest and manifest-list
// files.
func (f *Factory) ManifestDir() string {
	return filepath.Join(f.root, "manifest")
}

// SstPathFactory localizes SST path minting to one (partition, bucket).
func (f *Factory) SstPathFactory(partition row.Row, bucket int) *SstPathFactory {
	return &SstPathFactory{
		dir:     filepath.Join(f.root, partition.PartitionPath(f.fieldNames), fmt.Sprintf("bucket-%d", bucket)),
		newUUID: f.newUUID,
	}
}

// SstPathFactory mints new SST file paths for one (partition, bucket) pair.
type SstPathFactory struct {
	dir     string
	newUUID func() string
}

// Dir returns the bucket directory this factory mints files into.
func (s *SstPathFactory) Dir() string { return s.dir }

// NewSstPath mints a fresh SST file path.
func (s *SstPathFactory) NewSstPath() string {
	return filepath.Join(s.dir, s.newUUID())
}
