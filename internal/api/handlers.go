package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crawlytics/dashgeom/pkg/archive"
	"github.com/crawlytics/dashgeom/pkg/buildinfo"
	"github.com/crawlytics/dashgeom/pkg/cache"
	"github.com/crawlytics/dashgeom/pkg/engine"
	"github.com/crawlytics/dashgeom/pkg/metrics"
)

// maxBodyBytes caps request bodies. Snapshots are aggregated counters plus
// bounded sample reservoirs, far below this.
const maxBodyBytes = 16 << 20

// computeRequest is the POST /v1/layouts body. The snapshot arrives as a
// loose document and goes through tolerant coercion, so a collector that
// emits "850" instead of 850 still gets charts instead of a 400.
type computeRequest struct {
	Snapshot map[string]any `json:"snapshot"`
	Options  engine.Options `json:"options"`
}

// computeResponse is the POST /v1/layouts reply.
type computeResponse struct {
	ID           string         `json:"id,omitempty"`
	SnapshotHash string         `json:"snapshot_hash,omitempty"`
	Archived     bool           `json:"archived"`
	Result       *engine.Result `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleComputeLayouts computes chart geometry for a posted snapshot.
//
// The frame comes from the caller's panel measurements and is passed through
// untouched: a collapsed panel posting a zero frame gets the null result,
// not a chart scaled to a made-up size.
func (s *Server) handleComputeLayouts(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Snapshot) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("snapshot is required"))
		return
	}

	snap := metrics.SnapshotFromDocument(req.Snapshot)

	opts := req.Options
	opts.Policy = &s.policy
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.runner.Compute(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := computeResponse{
		SnapshotHash: result.SnapshotHash,
		Result:       result,
	}
	if !result.Null() {
		entry := archive.NewEntry(result, opts)
		resp.ID = entry.ID
		saveErr := cache.RetryWithBackoff(r.Context(), func() error {
			return s.archive.Save(r.Context(), entry)
		})
		if saveErr != nil {
			s.logger.Warn("archive save failed", "id", entry.ID, "err", saveErr)
		}
		resp.Archived = saveErr == nil
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetLayout fetches an archived computation by id.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := s.archive.Get(r.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("layout %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, entry)
}

// handleGetSnapshot replays a snapshot previously seen by the runner.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	snap, err := s.runner.Snapshot(r.Context(), hash)
	if errors.Is(err, cache.ErrCacheMiss) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("snapshot %s not found", hash))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleListLayouts lists archived computations for a snapshot, newest first.
func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %q", raw))
			return
		}
	}

	entries, err := s.archive.BySnapshot(r.Context(), hash, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

// handleGetPolicy shows the effective layout policy.
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.policy)
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
