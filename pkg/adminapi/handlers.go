package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tablestore/pkg/merge"
	"tablestore/pkg/predicate"
	"tablestore/pkg/row"
	"tablestore/pkg/scan"
	"tablestore/pkg/tserrors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, newHealthResponse())
}

func (s *Server) handleSnapshotByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot id: %w", err))
		return
	}
	snap, err := s.store.Read(id)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotLatest(w http.ResponseWriter, r *http.Request) {
	if s.latestID == nil {
		s.writeError(w, http.StatusNotImplemented, fmt.Errorf("adminapi: latest snapshot id not configured"))
		return
	}
	id, ok := s.latestID()
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("adminapi: table has no committed snapshot yet"))
		return
	}
	snap, err := s.store.Read(id)
	if err != nil {
		s.writeSnapshotError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseScanRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if plan, ok := s.cachedPlan(req); ok {
		s.writeJSON(w, http.StatusOK, plan)
		return
	}

	plan, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	s.maybeCachePlan(req, plan)
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleScanRows(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseScanRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	plan, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		s.writePlanError(w, err)
		return
	}

	sources := make([]merge.Source, len(plan.Files))
	for i, e := range plan.Files {
		sources[i] = merge.Source{File: e, Level: e.File.Level, Seq: i}
	}
	reader, err := merge.Open(sources, merge.NewDeduplicate())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	for {
		rec, ok, err := reader.Next(r.Context())
		if err != nil {
			s.log.Error("adminapi: scan/rows stream terminated early", "error", err)
			return
		}
		if !ok {
			return
		}
		if err := s.writeNDJSONRecord(w, rec); err != nil {
			s.log.Warn("adminapi: write ndjson record", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type mergedRowResponse struct {
	Key   row.Row `json:"key"`
	Value row.Row `json:"value"`
	Kind  string  `json:"kind"`
}

func (s *Server) writeNDJSONRecord(w http.ResponseWriter, rec merge.Record) error {
	resp := mergedRowResponse{Key: rec.Key, Value: rec.Value, Kind: rec.Kind.String()}
	return json.NewEncoder(w).Encode(resp)
}

func (s *Server) parseScanRequest(r *http.Request) (scan.ScanRequest, error) {
	q := r.URL.Query()

	var req scan.ScanRequest
	if raw := q.Get("snapshot"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return scan.ScanRequest{}, fmt.Errorf("invalid snapshot query param: %w", err)
		}
		req.SnapshotID = &id
	}

	if raw := q.Get("bucket"); raw != "" {
		b, err := strconv.Atoi(raw)
		if err != nil {
			return scan.ScanRequest{}, fmt.Errorf("invalid bucket query param: %w", err)
		}
		req.Bucket = &b
	}

	if raw := q.Get("partition"); raw != "" {
		filter, err := s.parsePartitionFilter(raw)
		if err != nil {
			return scan.ScanRequest{}, err
		}
		req.PartitionFilter = filter
	}

	if req.SnapshotID == nil && req.ManifestListPath == "" {
		return scan.ScanRequest{}, fmt.Errorf("adminapi: missing required snapshot query param")
	}
	return req, nil
}

// parsePartitionFilter parses "k1=v1,k2=v2" into an And-chain of Equal
// predicates over string-typed partition fields, matched to their index in
// s.partitionFields. Non-string partition schemas are outside this
// convenience endpoint's scope; callers needing typed predicates build a
// scan.ScanRequest directly instead of going through the HTTP surface.
func (s *Server) parsePartitionFilter(raw string) (predicate.Expr, error) {
	var expr predicate.Expr
	for _, pair := range strings.Split(raw, ",") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("adminapi: malformed partition clause %q", pair)
		}
		idx := indexOf(s.partitionFields, k)
		if idx < 0 {
			return nil, fmt.Errorf("adminapi: unknown partition field %q", k)
		}
		eq := predicate.Equal{FieldIdx: idx, Literal: predicate.Literal{Value: row.StringField(v)}}
		if expr == nil {
			expr = eq
		} else {
			expr = predicate.And{L: expr, R: eq}
		}
	}
	return expr, nil
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

func (s *Server) cachedPlan(req scan.ScanRequest) (scan.Plan, bool) {
	if s.cache == nil || req.SnapshotID == nil || req.PartitionFilter != nil || req.Bucket != nil {
		return scan.Plan{}, false
	}
	return s.cache.Get(*req.SnapshotID)
}

func (s *Server) maybeCachePlan(req scan.ScanRequest, plan scan.Plan) {
	if s.cache == nil || req.PartitionFilter != nil || req.Bucket != nil {
		return
	}
	s.cache.Put(plan)
}

func (s *Server) writeSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, tserrors.ErrSnapshotNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tserrors.ErrSnapshotNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, tserrors.ErrFilterTypeMismatch):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, tserrors.ErrCorruptManifest), errors.Is(err, tserrors.ErrFormatError):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}
