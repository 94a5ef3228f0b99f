package scan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/kv"
	"tablestore/pkg/manifest"
	"tablestore/pkg/predicate"
	"tablestore/pkg/row"
	"tablestore/pkg/snapshot"
	"tablestore/pkg/tserrors"
)

func predicateEqualUS() predicate.Expr {
	return predicate.Equal{FieldIdx: 0, Literal: predicate.Literal{Value: row.StringField("us")}}
}

func TestFoldEntriesAddThenDelete(t *testing.T) {
	entries := [][]manifest.Entry{
		{
			{Kind: manifest.Add, File: kv.SstFileMeta{FileName: "a"}},
			{Kind: manifest.Add, File: kv.SstFileMeta{FileName: "b"}},
		},
		{
			{Kind: manifest.Delete, File: kv.SstFileMeta{FileName: "a"}},
		},
	}
	files, err := foldEntries(entries, nil, nil)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if len(files) != 1 || files[0].File.FileName != "b" {
		t.Fatalf("expected only file b to survive, got %v", files)
	}
}

func TestFoldEntriesDuplicateAddIsCorrupt(t *testing.T) {
	entries := [][]manifest.Entry{
		{
			{Kind: manifest.Add, File: kv.SstFileMeta{FileName: "a"}},
			{Kind: manifest.Add, File: kv.SstFileMeta{FileName: "a"}},
		},
	}
	_, err := foldEntries(entries, nil, nil)
	if !errors.Is(err, tserrors.ErrCorruptManifest) {
		t.Fatalf("expected ErrCorruptManifest for a double ADD, got %v", err)
	}
}

func TestFoldEntriesOrphanDeleteIsCorrupt(t *testing.T) {
	entries := [][]manifest.Entry{
		{
			{Kind: manifest.Delete, File: kv.SstFileMeta{FileName: "a"}},
		},
	}
	_, err := foldEntries(entries, nil, nil)
	if !errors.Is(err, tserrors.ErrCorruptManifest) {
		t.Fatalf("expected ErrCorruptManifest for an orphan DELETE, got %v", err)
	}
}

func TestFoldEntriesBucketFilter(t *testing.T) {
	entries := [][]manifest.Entry{
		{
			{Kind: manifest.Add, Bucket: 0, File: kv.SstFileMeta{FileName: "a"}},
			{Kind: manifest.Add, Bucket: 1, File: kv.SstFileMeta{FileName: "b"}},
		},
	}
	bucket := 1
	files, err := foldEntries(entries, nil, &bucket)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if len(files) != 1 || files[0].File.FileName != "b" {
		t.Fatalf("expected only bucket 1's file to survive, got %v", files)
	}
}

func TestFoldEntriesIsDeterministicallySorted(t *testing.T) {
	entries := [][]manifest.Entry{
		{
			{Kind: manifest.Add, Partition: row.Row{row.StringField("us")}, Bucket: 0, File: kv.SstFileMeta{FileName: "z"}},
			{Kind: manifest.Add, Partition: row.Row{row.StringField("us")}, Bucket: 0, File: kv.SstFileMeta{FileName: "a"}},
		},
	}
	first, err := foldEntries(entries, nil, nil)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	second, err := foldEntries(entries, nil, nil)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if first[0].File.FileName != "a" || first[1].File.FileName != "z" {
		t.Fatalf("expected lexicographic file order, got %v", first)
	}
	if first[0].File.FileName != second[0].File.FileName || first[1].File.FileName != second[1].File.FileName {
		t.Fatalf("expected repeated folds of the same input to sort identically")
	}
}

func TestPruneManifestsDropsDisjointPartitions(t *testing.T) {
	list := manifest.List{
		{FileName: "m-us", NumAddedFiles: 1, PartitionStats: row.Stats{{Min: row.StringField("us"), Max: row.StringField("us")}}},
		{FileName: "m-eu", NumAddedFiles: 1, PartitionStats: row.Stats{{Min: row.StringField("eu"), Max: row.StringField("eu")}}},
	}
	filter := predicateEqualUS()
	survivors, err := pruneManifests(list, filter)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(survivors) != 1 || survivors[0].FileName != "m-us" {
		t.Fatalf("expected only the us manifest to survive, got %v", survivors)
	}
}

func TestPlannerPlanEndToEnd(t *testing.T) {
	dir := t.TempDir()

	manifestPath := filepath.Join(dir, "manifest-1")
	mw, err := manifest.NewWriter(manifestPath, blockcodec.None)
	if err != nil {
		t.Fatalf("new manifest writer: %v", err)
	}
	entries := []manifest.Entry{
		{Kind: manifest.Add, Partition: row.Row{row.StringField("us")}, Bucket: 0, File: kv.SstFileMeta{FileName: "f1"}},
		{Kind: manifest.Add, Partition: row.Row{row.StringField("us")}, Bucket: 0, File: kv.SstFileMeta{FileName: "f2"}},
	}
	for _, e := range entries {
		if err := mw.Append(e); err != nil {
			t.Fatalf("append entry: %v", err)
		}
	}
	manifestMeta, err := mw.Close()
	if err != nil {
		t.Fatalf("close manifest writer: %v", err)
	}

	listPath := filepath.Join(dir, "list-1")
	if err := manifest.WriteList(listPath, manifest.List{manifestMeta}, blockcodec.None); err != nil {
		t.Fatalf("write list: %v", err)
	}

	store := snapshot.NewStore(func(id uint64) string {
		return filepath.Join(dir, "snapshot", "snapshot-1")
	})
	if err := store.Write(snapshot.Snapshot{ID: 1, ManifestList: listPath, CommitUser: "u", CommitIdentifier: "c", CommitKind: snapshot.Append, TimeMillis: 1}); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	planner := NewPlanner(store, 4, nil)
	id := uint64(1)
	plan, err := planner.Plan(context.Background(), ScanRequest{SnapshotID: &id})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Files) != 2 {
		t.Fatalf("expected 2 live files, got %d", len(plan.Files))
	}
	if plan.SnapshotID == nil || *plan.SnapshotID != 1 {
		t.Fatalf("expected resolved snapshot id 1, got %v", plan.SnapshotID)
	}
}
