package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/talent-scout/internal/export"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/schemas"
	"github.com/jonathan/talent-scout/internal/server/middleware"
	"github.com/jonathan/talent-scout/internal/types"
)

// maxBodyBytes bounds pipeline request bodies.
const maxBodyBytes = 1 << 20

// handleListPipeline handles GET /pipeline
func (s *Server) handleListPipeline(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.pipeline.List(r.Context(), middleware.GetOwnerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidates)
}

// handleSavePipeline handles POST /pipeline
func (s *Server) handleSavePipeline(w http.ResponseWriter, r *http.Request) {
	if !s.pipeline.Configured() {
		s.writeError(w, r, pipeline.ErrStoreUnconfigured)
		return
	}

	body, err := readJSONBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := schemas.ValidateSaveCandidate(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SaveCandidateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, &pipeline.PreconditionError{Field: "login", Message: "login and github_id required"})
		return
	}

	saved, err := s.pipeline.Save(r.Context(), middleware.GetOwnerID(r), req.Input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}

// handleUpdatePipeline handles PATCH /pipeline/{login}
func (s *Server) handleUpdatePipeline(w http.ResponseWriter, r *http.Request) {
	if !s.pipeline.Configured() {
		s.writeError(w, r, pipeline.ErrStoreUnconfigured)
		return
	}

	body, err := readJSONBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := schemas.ValidateCandidatePatch(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.CandidateUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	updated, err := s.pipeline.Update(r.Context(), middleware.GetOwnerID(r), r.PathValue("login"), req.Patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeletePipeline handles DELETE /pipeline/{login}
func (s *Server) handleDeletePipeline(w http.ResponseWriter, r *http.Request) {
	removed, err := s.pipeline.Remove(r.Context(), middleware.GetOwnerID(r), r.PathValue("login"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.RemoveCandidateResponse{OK: true, Removed: removed})
}

// handleExportPipeline handles GET /pipeline/export.csv. An empty pipeline
// produces no file.
func (s *Server) handleExportPipeline(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.pipeline.List(r.Context(), middleware.GetOwnerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	csv, err := export.CSV(candidates)
	if errors.Is(err, export.ErrNoCandidates) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(s.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, csv); err != nil {
		s.log.Warn("write csv export failed", "err", err)
	}
}

// handleNewOwner handles GET /pipeline/owner. Clients call it once and keep
// the id for every later pipeline request.
func (s *Server) handleNewOwner(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.OwnerResponse{
		OwnerID: pipeline.NewOwnerID(),
		Header:  pipeline.HeaderOwnerID,
	})
}

// readJSONBody reads a bounded request body and checks that it is JSON.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: "request body too large or unreadable"}
	}
	if !json.Valid(body) {
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return body, nil
}
