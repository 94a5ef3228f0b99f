// Package snapshot defines the JSON-encoded pointer to a table's state at
// one commit.
package snapshot

import (
	"encoding/json"
	"fmt"

	"tablestore/pkg/tserrors"
)

// CommitKind distinguishes an ordinary append from a compaction commit.
type CommitKind string

const (
	Append  CommitKind = "APPEND"
	Compact CommitKind = "COMPACT"
)

func (k CommitKind) valid() bool {
	return k == Append || k == Compact
}

// Snapshot is an immutable pointer to a table state at a commit. IDs are
// strictly monotonic starting at 1. The (CommitUser, CommitIdentifier) pair
// is the idempotency key for writer retries.
type Snapshot struct {
	ID               uint64     `json:"id"`
	ManifestList     string     `json:"manifestList"`
	CommitUser       string     `json:"commitUser"`
	CommitIdentifier string     `json:"commitIdentifier"`
	CommitKind       CommitKind `json:"commitKind"`
	TimeMillis       int64      `json:"timeMillis"`
}

// ToJSON encodes s. Field names are stable and the encoding does not depend
// on struct field ordering, so ToJSON/FromJSON round-trip for any
// well-formed Snapshot.
func (s Snapshot) ToJSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return data, nil
}

// FromJSON decodes a Snapshot previously produced by ToJSON. Unknown fields
// are ignored; every field listed above is required, and an unrecognized
// commitKind fails with tserrors.ErrFormatError.
func FromJSON(data []byte) (Snapshot, error) {
	var wire struct {
		ID               *uint64 `json:"id"`
		ManifestList     *string `json:"manifestList"`
		CommitUser       *string `json:"commitUser"`
		CommitIdentifier *string `json:"commitIdentifier"`
		CommitKind       *string `json:"commitKind"`
		TimeMillis       *int64  `json:"timeMillis"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: unmarshal: %w: %v", tserrors.ErrFormatError, err)
	}
	if wire.ID == nil || wire.ManifestList == nil || wire.CommitUser == nil ||
		wire.CommitIdentifier == nil || wire.CommitKind == nil || wire.TimeMillis == nil {
		return Snapshot{}, fmt.Errorf("snapshot: missing required field: %w", tserrors.ErrFormatError)
	}

	kind := CommitKind(*wire.CommitKind)
	if !kind.valid() {
		return Snapshot{}, fmt.Errorf("snapshot: unknown commitKind %q: %w", *wire.CommitKind, tserrors.ErrFormatError)
	}

	return Snapshot{
		ID:               *wire.ID,
		ManifestList:     *wire.ManifestList,
		CommitUser:       *wire.CommitUser,
		CommitIdentifier: *wire.CommitIdentifier,
		CommitKind:       kind,
		TimeMillis:       *wire.TimeMillis,
	}, nil
}

// Store persists and loads snapshot files at their canonical path.
type Store struct {
	pathForID func(id uint64) string
}

// NewStore builds a Store using pathForID to resolve a snapshot id to its
// on-disk path (normally tablepath.Factory.SnapshotPath).
func NewStore(pathForID func(id uint64) string) *Store {
	return &Store{pathForID: pathForID}
}

// Write atomically publishes s: it writes to a temp file in the snapshot
// directory then renames it into place, so a reader never observes a
// partially written snapshot file.
func (st *Store) Write(s Snapshot) error {
	path := st.pathForID(s.ID)
	data, err := s.ToJSON()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// Read loads the snapshot with the given id.
func (st *Store) Read(id uint64) (Snapshot, error) {
	path := st.pathForID(id)
	data, err := readFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	return FromJSON(data)
}
