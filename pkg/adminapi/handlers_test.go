package adminapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/kv"
	"tablestore/pkg/manifest"
	"tablestore/pkg/row"
	"tablestore/pkg/scan"
	"tablestore/pkg/snapshot"
)

func newTestServer(t *testing.T) (*Server, uint64) {
	t.Helper()
	dir := t.TempDir()

	mw, err := manifest.NewWriter(filepath.Join(dir, "manifest-1"), blockcodec.None)
	if err != nil {
		t.Fatalf("new manifest writer: %v", err)
	}
	if err := mw.Append(manifest.Entry{
		Kind:      manifest.Add,
		Partition: row.Row{row.StringField("us")},
		Bucket:    0,
		File:      kv.SstFileMeta{FileName: "f1"},
	}); err != nil {
		t.Fatalf("append entry: %v", err)
	}
	meta, err := mw.Close()
	if err != nil {
		t.Fatalf("close manifest writer: %v", err)
	}

	listPath := filepath.Join(dir, "list-1")
	if err := manifest.WriteList(listPath, manifest.List{meta}, blockcodec.None); err != nil {
		t.Fatalf("write list: %v", err)
	}

	store := snapshot.NewStore(func(id uint64) string {
		return filepath.Join(dir, fmt.Sprintf("snapshot-%d", id))
	})
	if err := store.Write(snapshot.Snapshot{
		ID: 1, ManifestList: listPath, CommitUser: "u", CommitIdentifier: "c", CommitKind: snapshot.Append, TimeMillis: 1,
	}); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	planner := scan.NewPlanner(store, 2, nil)
	server := NewServer(planner, store, scan.NewPlanCache(), []string{"region"}, 0, func() (uint64, bool) { return 1, true }, nil)
	return server, 1
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != StatusOK {
		t.Fatalf("expected status OK, got %q", resp.Status)
	}
}

func TestHandleSnapshotLatest(t *testing.T) {
	server, id := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/snapshots/latest", nil)
	w := httptest.NewRecorder()
	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.ID != id {
		t.Fatalf("expected snapshot id %d, got %d", id, snap.ID)
	}
}

func TestHandleScanReturnsPlan(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/scan?snapshot=1", nil)
	w := httptest.NewRecorder()
	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var plan struct {
		Files []json.RawMessage `json:"Files"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Files) != 1 {
		t.Fatalf("expected 1 live file, got %d", len(plan.Files))
	}
}

func TestHandleScanMissingSnapshotIsBadRequest(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	w := httptest.NewRecorder()
	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleSnapshotByIDNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/snapshots/999", nil)
	w := httptest.NewRecorder()
	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
