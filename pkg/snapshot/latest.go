package snapshot

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FindLatestID scans a snapshot directory for the highest committed
// snapshot id. ok is false for a table with no snapshots yet (a fresh
// table root, or one that has not been initialized).
func FindLatestID(dir string) (id uint64, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("snapshot: list %s: %w", dir, err)
	}

	var max uint64
	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		suffix, isSnapshot := strings.CutPrefix(e.Name(), "snapshot-")
		if !isSnapshot {
			continue
		}
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found, nil
}
