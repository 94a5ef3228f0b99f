package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/manifest"
	"tablestore/pkg/metrics"
	"tablestore/pkg/snapshot"
	"tablestore/pkg/tablepath"
	"tablestore/pkg/tserrors"
)

// Committer converts Increments into manifest + manifest-list + snapshot
// files and publishes them under a Coordinator's lock. One Committer is
// shared by every writer of a table.
type Committer struct {
	paths       *tablepath.Factory
	store       *snapshot.Store
	coordinator Coordinator
	ids         *SnapshotIDAllocator
	algo        blockcodec.Algorithm
	lookback    int
	log         *slog.Logger
	metrics     metrics.Collector
}

// Option configures a Committer at construction.
type Option func(*Committer)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option { return func(c *Committer) { c.log = log } }

// WithMetrics overrides the default no-op metrics.Collector.
func WithMetrics(m metrics.Collector) Option { return func(c *Committer) { c.metrics = m } }

// WithLookback overrides how many prior snapshots the idempotency check
// scans before giving up and treating the commit as new.
func WithLookback(n int) Option { return func(c *Committer) { c.lookback = n } }

// NewCommitter builds a Committer. ids should be seeded (NewSnapshotIDAllocator)
// with the highest snapshot id already on disk, 0 for a brand-new table.
func NewCommitter(paths *tablepath.Factory, store *snapshot.Store, coordinator Coordinator, ids *SnapshotIDAllocator, algo blockcodec.Algorithm, opts ...Option) *Committer {
	c := &Committer{
		paths:       paths,
		store:       store,
		coordinator: coordinator,
		ids:         ids,
		algo:        algo,
		lookback:    50,
		log:         slog.Default(),
		metrics:     metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit publishes inc as a new snapshot chained after baseManifestList (the
// empty string for a table's first commit), tagged with commitUser and
// commitIdentifier for idempotent retries. If a prior commit already used
// this (commitUser, commitIdentifier) pair within the lookback window, its
// Result is returned unchanged and no new snapshot is written.
func (c *Committer) Commit(ctx context.Context, baseManifestList string, inc Increment, commitUser, commitIdentifier string) (Result, error) {
	release, err := c.coordinator.Lock(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	defer release()

	onDisk, _, err := snapshot.FindLatestID(c.paths.SnapshotDir())
	if err != nil {
		return Result{}, fmt.Errorf("commit: find latest snapshot: %w", err)
	}
	c.ids.Reseed(onDisk)

	if existing, ok, err := c.findIdempotent(commitUser, commitIdentifier); err != nil {
		return Result{}, err
	} else if ok {
		c.metrics.IncCounter("commit_idempotent_replay", nil, 1)
		return existing, nil
	}

	manifestPath := c.paths.NewManifestPath()
	fileMeta, err := c.writeManifest(manifestPath, inc)
	if err != nil {
		return Result{}, err
	}

	baseList, err := readBaseList(baseManifestList)
	if err != nil {
		return Result{}, err
	}
	newList := make(manifest.List, 0, len(baseList)+1)
	newList = append(newList, baseList...)
	newList = append(newList, fileMeta)

	listPath := c.paths.NewManifestPath()
	if err := manifest.WriteList(listPath, newList, c.algo); err != nil {
		return Result{}, fmt.Errorf("commit: write manifest list: %w", err)
	}

	id := c.ids.Next()
	kind := snapshot.Append
	if inc.isCompaction() {
		kind = snapshot.Compact
	}
	snap := snapshot.Snapshot{
		ID:               id,
		ManifestList:     listPath,
		CommitUser:       commitUser,
		CommitIdentifier: commitIdentifier,
		CommitKind:       kind,
		TimeMillis:       time.Now().UnixMilli(),
	}
	if err := c.store.Write(snap); err != nil {
		return Result{}, fmt.Errorf("commit: publish snapshot %d: %w", id, tserrors.ErrCommitConflict)
	}

	c.metrics.IncCounter("commit_success", map[string]string{"kind": string(kind)}, 1)
	c.log.Info("commit: published snapshot", "id", id, "kind", kind, "addedFiles", fileMeta.NumAddedFiles, "deletedFiles", fileMeta.NumDeletedFiles)
	return Result{SnapshotID: id, ManifestList: listPath}, nil
}

func (c *Committer) writeManifest(path string, inc Increment) (manifest.FileMeta, error) {
	w, err := manifest.NewWriter(path, c.algo)
	if err != nil {
		return manifest.FileMeta{}, fmt.Errorf("commit: %w", err)
	}
	for _, f := range inc.NewFiles {
		if err := w.Append(toEntry(manifest.Add, f)); err != nil {
			return manifest.FileMeta{}, fmt.Errorf("commit: append new file entry: %w", err)
		}
	}
	for _, f := range inc.CompactedAfter {
		if err := w.Append(toEntry(manifest.Add, f)); err != nil {
			return manifest.FileMeta{}, fmt.Errorf("commit: append compacted-after entry: %w", err)
		}
	}
	for _, f := range inc.CompactedBefore {
		if err := w.Append(toEntry(manifest.Delete, f)); err != nil {
			return manifest.FileMeta{}, fmt.Errorf("commit: append compacted-before entry: %w", err)
		}
	}
	fileMeta, err := w.Close()
	if err != nil {
		return manifest.FileMeta{}, fmt.Errorf("commit: %w", err)
	}
	return fileMeta, nil
}

func toEntry(kind manifest.Kind, f CommittedFile) manifest.Entry {
	return manifest.Entry{Kind: kind, Partition: f.Partition, Bucket: f.Bucket, File: f.Meta}
}

func readBaseList(path string) (manifest.List, error) {
	if path == "" {
		return nil, nil
	}
	list, err := manifest.ReadList(path)
	if err != nil {
		return nil, fmt.Errorf("commit: read base manifest list %s: %w", path, err)
	}
	return list, nil
}

// findIdempotent scans backward from the allocator's current high-water
// mark looking for a snapshot already committed with this (commitUser,
// commitIdentifier) pair.
func (c *Committer) findIdempotent(commitUser, commitIdentifier string) (Result, bool, error) {
	latest := c.ids.Peek()
	if latest == 0 || c.lookback <= 0 {
		return Result{}, false, nil
	}
	floor := uint64(1)
	if latest > uint64(c.lookback) {
		floor = latest - uint64(c.lookback) + 1
	}
	for id := latest; ; id-- {
		snap, err := c.store.Read(id)
		switch {
		case err == nil:
			if snap.CommitUser == commitUser && snap.CommitIdentifier == commitIdentifier {
				return Result{SnapshotID: snap.ID, ManifestList: snap.ManifestList}, true, nil
			}
		case errors.Is(err, tserrors.ErrSnapshotNotFound):
			// gap in the sequence (compaction may retire ids); keep scanning.
		default:
			return Result{}, false, fmt.Errorf("commit: idempotency scan: %w", err)
		}
		if id == floor {
			break
		}
	}
	return Result{}, false, nil
}
