// Package tserrors is the sentinel error taxonomy shared by every layer of
// the table store, so callers can classify a failure with errors.Is
// regardless of how many layers wrapped it with fmt.Errorf("...: %w", err).
package tserrors

import "errors"

var (
	// ErrIoError is a storage read/write failure. Retried by the caller at
	// plan granularity; the core never retries internally.
	ErrIoError = errors.New("tablestore: io error")

	// ErrFormatError marks a malformed snapshot or manifest file. Fatal for
	// that snapshot.
	ErrFormatError = errors.New("tablestore: format error")

	// ErrCorruptManifest marks a logical inconsistency in the ADD/DELETE
	// sequence of a manifest-list's closure. Fatal.
	ErrCorruptManifest = errors.New("tablestore: corrupt manifest")

	// ErrSnapshotNotFound means the requested snapshot id has no file.
	// Fatal to the request, non-fatal to the process.
	ErrSnapshotNotFound = errors.New("tablestore: snapshot not found")

	// ErrFilterTypeMismatch means a predicate referenced a field type
	// incompatible with the schema. Reported at plan time.
	ErrFilterTypeMismatch = errors.New("tablestore: filter type mismatch")

	// ErrCancelled is surfaced when cooperative cancellation observed a
	// context done between suspension points.
	ErrCancelled = errors.New("tablestore: cancelled")

	// ErrCommitConflict means a commit could not publish its new snapshot
	// file, for example because a file for that id already exists. The
	// commit is not retried.
	ErrCommitConflict = errors.New("tablestore: commit conflict")
)
