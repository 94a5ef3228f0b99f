package merge

import (
	"context"
	"path/filepath"
	"testing"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/kv"
	"tablestore/pkg/manifest"
	"tablestore/pkg/row"
	"tablestore/pkg/sst"
)

func writeSstFile(t *testing.T, dir, name string, level int, records []kv.KeyValue) manifest.Entry {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := sst.NewWriter(path, level, blockcodec.None)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	meta, err := w.Close()
	if err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return manifest.Entry{Kind: manifest.Add, File: meta}
}

func TestReaderMergesInStrictKeyOrder(t *testing.T) {
	dir := t.TempDir()

	fileA := writeSstFile(t, dir, "a", 1, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{row.StringField("a1")}, Kind: kv.Add},
		{Key: row.Row{row.Int64Field(3)}, Value: row.Row{row.StringField("a3")}, Kind: kv.Add},
	})
	fileB := writeSstFile(t, dir, "b", 0, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(2)}, Value: row.Row{row.StringField("b2")}, Kind: kv.Add},
	})

	reader, err := Open([]Source{
		{File: fileA, Level: 1, Seq: 0},
		{File: fileB, Level: 0, Seq: 0},
	}, NewDeduplicate())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	var keys []int64
	for {
		rec, ok, err := reader.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			break
		}
		keys = append(keys, rec.Key[0].Int)
	}

	want := []int64{1, 2, 3}
	if len(keys) != len(want) {
		t.Fatalf("got %v keys, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got keys %v, want %v", keys, want)
		}
	}
}

func TestReaderDeduplicatesByNewestLevel(t *testing.T) {
	dir := t.TempDir()

	older := writeSstFile(t, dir, "older", 5, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{row.StringField("stale")}, Kind: kv.Add},
	})
	newer := writeSstFile(t, dir, "newer", 0, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{row.StringField("fresh")}, Kind: kv.Add},
	})

	reader, err := Open([]Source{
		{File: older, Level: 5, Seq: 0},
		{File: newer, Level: 0, Seq: 0},
	}, NewDeduplicate())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	rec, ok, err := reader.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected a merged record, got ok=%v err=%v", ok, err)
	}
	if rec.Value[0].String != "fresh" {
		t.Fatalf("expected the lower-level (newer) file's value to win, got %q", rec.Value[0].String)
	}

	if _, ok, err := reader.Next(context.Background()); err != nil || ok {
		t.Fatalf("expected exactly one merged record for the shared key")
	}
}

func TestReaderSuppressesNewestTombstone(t *testing.T) {
	dir := t.TempDir()

	older := writeSstFile(t, dir, "older", 1, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{row.StringField("v1")}, Kind: kv.Add},
	})
	newer := writeSstFile(t, dir, "newer", 0, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{}, Kind: kv.Delete},
	})

	reader, err := Open([]Source{
		{File: older, Level: 1, Seq: 0},
		{File: newer, Level: 0, Seq: 0},
	}, NewDeduplicate())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	if _, ok, err := reader.Next(context.Background()); err != nil || ok {
		t.Fatalf("expected the tombstone to suppress the key from merged output, got ok=%v err=%v", ok, err)
	}
}

func TestReaderCancellationSurfacesError(t *testing.T) {
	dir := t.TempDir()
	f := writeSstFile(t, dir, "f", 0, []kv.KeyValue{
		{Key: row.Row{row.Int64Field(1)}, Value: row.Row{row.StringField("v")}, Kind: kv.Add},
	})

	reader, err := Open([]Source{{File: f, Level: 0, Seq: 0}}, NewDeduplicate())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := reader.Next(ctx); err == nil {
		t.Fatalf("expected a cancelled context to surface an error")
	}
}
