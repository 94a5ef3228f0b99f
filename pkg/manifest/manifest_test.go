package manifest

import (
	"path/filepath"
	"testing"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/kv"
	"tablestore/pkg/row"
)

func TestWriterReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m1")

	entries := []Entry{
		{Kind: Add, Partition: row.Row{row.StringField("us")}, Bucket: 1, File: kv.SstFileMeta{FileName: "f1", RowCount: 10}},
		{Kind: Add, Partition: row.Row{row.StringField("eu")}, Bucket: 0, File: kv.SstFileMeta{FileName: "f2", RowCount: 5}},
		{Kind: Delete, Partition: row.Row{row.StringField("us")}, Bucket: 1, File: kv.SstFileMeta{FileName: "f0", RowCount: 3}},
	}

	w, err := NewWriter(path, blockcodec.None)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	meta, err := w.Close()
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if meta.NumAddedFiles != 2 || meta.NumDeletedFiles != 1 {
		t.Fatalf("unexpected counters: %+v", meta)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Kind != e.Kind || got[i].File.FileName != e.File.FileName || got[i].Bucket != e.Bucket {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got[i], e)
		}
		if !got[i].Partition.Equal(e.Partition) {
			t.Fatalf("entry %d partition mismatch: got %v want %v", i, got[i].Partition, e.Partition)
		}
	}
}

func TestListWriteReadRoundTripPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list1")

	list := List{
		{FileName: "manifest-a", NumAddedFiles: 3},
		{FileName: "manifest-b", NumAddedFiles: 1, NumDeletedFiles: 1},
	}
	if err := WriteList(path, list, blockcodec.Zstd); err != nil {
		t.Fatalf("write list: %v", err)
	}

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	if len(got) != len(list) {
		t.Fatalf("got %d manifests, want %d", len(got), len(list))
	}
	for i := range list {
		if got[i].FileName != list[i].FileName {
			t.Fatalf("manifest %d out of order: got %q want %q", i, got[i].FileName, list[i].FileName)
		}
	}
}

func TestEntryIdentifierDistinguishesPartitionAndBucket(t *testing.T) {
	a := Entry{Partition: row.Row{row.StringField("us")}, Bucket: 0, File: kv.SstFileMeta{FileName: "f"}}
	b := Entry{Partition: row.Row{row.StringField("eu")}, Bucket: 0, File: kv.SstFileMeta{FileName: "f"}}
	c := Entry{Partition: row.Row{row.StringField("us")}, Bucket: 1, File: kv.SstFileMeta{FileName: "f"}}

	if a.Identifier() == b.Identifier() {
		t.Fatalf("entries in different partitions must not share an identifier")
	}
	if a.Identifier() == c.Identifier() {
		t.Fatalf("entries in different buckets must not share an identifier")
	}
}
