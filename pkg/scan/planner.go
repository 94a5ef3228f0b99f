package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/zhangyunhao116/skipset"

	"tablestore/pkg/manifest"
	"tablestore/pkg/predicate"
	"tablestore/pkg/snapshot"
	"tablestore/pkg/tserrors"
	"tablestore/pkg/workerpool"
)

// Planner resolves ScanRequests against a table's snapshot store. A single
// Planner is shared by every scan and every admin HTTP handler in a
// process; it holds no per-request state.
type Planner struct {
	store       *snapshot.Store
	concurrency int
	log         *slog.Logger
}

// NewPlanner builds a Planner that reads manifests with up to concurrency
// goroutines in flight at once. log defaults to slog.Default() if nil.
func NewPlanner(store *snapshot.Store, concurrency int, log *slog.Logger) *Planner {
	if log == nil {
		log = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Planner{store: store, concurrency: concurrency, log: log}
}

// Plan resolves req against the manifest closure it names and returns the
// live file set. It never mutates any file on disk.
func (p *Planner) Plan(ctx context.Context, req ScanRequest) (Plan, error) {
	snapID, listPath, err := p.resolveList(req)
	if err != nil {
		return Plan{}, err
	}

	list, err := manifest.ReadList(listPath)
	if err != nil {
		return Plan{}, fmt.Errorf("scan: read manifest list %s: %w", listPath, err)
	}

	survivors, err := pruneManifests(list, req.PartitionFilter)
	if err != nil {
		return Plan{}, err
	}
	p.log.Debug("scan: manifest-level pruning", "total", len(list), "survivors", len(survivors))

	entryLists, err := p.readManifests(ctx, survivors)
	if err != nil {
		return Plan{}, err
	}

	files, err := foldEntries(entryLists, req.PartitionFilter, req.Bucket)
	if err != nil {
		return Plan{}, err
	}

	return Plan{SnapshotID: snapID, Files: files}, nil
}

func (p *Planner) resolveList(req ScanRequest) (*uint64, string, error) {
	if req.ManifestListPath != "" {
		return nil, req.ManifestListPath, nil
	}
	if req.SnapshotID == nil {
		return nil, "", fmt.Errorf("scan: request has neither snapshotId nor manifestListPath: %w", tserrors.ErrFormatError)
	}
	if p.store == nil {
		return nil, "", fmt.Errorf("scan: no snapshot store configured to resolve snapshot %d: %w", *req.SnapshotID, tserrors.ErrFormatError)
	}
	snap, err := p.store.Read(*req.SnapshotID)
	if err != nil {
		return nil, "", fmt.Errorf("scan: resolve snapshot %d: %w", *req.SnapshotID, err)
	}
	id := snap.ID
	return &id, snap.ManifestList, nil
}

// pruneManifests drops manifests whose rolled-up partition stats prove no
// entry inside them could satisfy filter. filter == nil keeps everything.
func pruneManifests(list manifest.List, filter predicate.Expr) (manifest.List, error) {
	if filter == nil {
		return list, nil
	}
	survivors := make(manifest.List, 0, len(list))
	for _, m := range list {
		rowCount := m.NumAddedFiles + m.NumDeletedFiles
		ok, err := filter.TestStats(rowCount, m.PartitionStats)
		if err != nil {
			return nil, fmt.Errorf("scan: prune manifest %s: %w", m.FileName, err)
		}
		if ok {
			survivors = append(survivors, m)
		}
	}
	return survivors, nil
}

// readManifests reads every survivor's entries concurrently, bounded by
// p.concurrency, deduplicating against a manifest-list that names the same
// file twice (defensive: the on-disk format does not forbid it).
func (p *Planner) readManifests(ctx context.Context, survivors manifest.List) ([][]manifest.Entry, error) {
	seen := skipset.NewString()
	results := workerpool.Run(ctx, survivors, p.concurrency, func(ctx context.Context, m manifest.FileMeta) ([]manifest.Entry, error) {
		if !seen.Add(m.FileName) {
			p.log.Warn("scan: manifest listed more than once, skipping duplicate read", "file", m.FileName)
			return nil, nil
		}
		entries, err := manifest.Read(m.FileName)
		if err != nil {
			return nil, fmt.Errorf("scan: read manifest %s: %w", m.FileName, err)
		}
		return entries, nil
	})

	out := make([][]manifest.Entry, len(results))
	for i, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("scan: manifest %s: %w", survivors[i].FileName, r.Err)
		}
		out[i] = r.Value
	}
	return out, nil
}

// foldEntries applies the ADD/DELETE state machine across every survivor's
// entries in commit order, after per-entry partition/bucket pruning. A
// DELETE with no prior ADD, or a second ADD for the same identifier, is a
// corrupt manifest closure.
func foldEntries(entryLists [][]manifest.Entry, filter predicate.Expr, bucket *int) ([]manifest.Entry, error) {
	live := make(map[manifest.Identifier]manifest.Entry)
	for _, entries := range entryLists {
		for _, e := range entries {
			keep, err := entryMatches(e, filter, bucket)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
			id := e.Identifier()
			switch e.Kind {
			case manifest.Add:
				if _, exists := live[id]; exists {
					return nil, fmt.Errorf("scan: duplicate ADD for %v: %w", id, tserrors.ErrCorruptManifest)
				}
				live[id] = e
			case manifest.Delete:
				if _, exists := live[id]; !exists {
					return nil, fmt.Errorf("scan: DELETE with no matching ADD for %v: %w", id, tserrors.ErrCorruptManifest)
				}
				delete(live, id)
			}
		}
	}

	files := make([]manifest.Entry, 0, len(live))
	for _, e := range live {
		files = append(files, e)
	}
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i].Identifier(), files[j].Identifier()
		if a.Partition != b.Partition {
			return a.Partition < b.Partition
		}
		if a.Bucket != b.Bucket {
			return a.Bucket < b.Bucket
		}
		return a.FileName < b.FileName
	})
	return files, nil
}

func entryMatches(e manifest.Entry, filter predicate.Expr, bucket *int) (bool, error) {
	if bucket != nil && e.Bucket != int32(*bucket) {
		return false, nil
	}
	if filter == nil {
		return true, nil
	}
	ok, err := filter.TestRow(e.Partition)
	if err != nil {
		return false, fmt.Errorf("scan: evaluate partition filter on %s: %w", e, err)
	}
	return ok, nil
}
