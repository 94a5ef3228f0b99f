package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"tablestore/pkg/tserrors"
)

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir: %w: %v", tserrors.ErrIoError, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w: %v", tserrors.ErrIoError, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("snapshot: write temp file: %w: %v", tserrors.ErrIoError, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("snapshot: close temp file: %w: %v", tserrors.ErrIoError, err)
	}

	// os.Rename is atomic on a single filesystem: the snapshot file either
	// does not exist yet or exists complete, never partially written.
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot: %s already exists (snapshots are write-once): %w", path, tserrors.ErrIoError)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("snapshot: publish: %w: %v", tserrors.ErrIoError, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot: %s: %w", path, tserrors.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("snapshot: read %s: %w: %v", path, tserrors.ErrIoError, err)
	}
	return data, nil
}
