package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/apierror"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/export"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/types"
)

const owner = "browser-1"

func saveAda(t *testing.T, s *Server) db.SavedCandidate {
	t.Helper()
	w := do(t, s, http.MethodPost, "/pipeline",
		`{"login":"ada","github_id":583231,"display_name":"Ada","top_languages":["Go"]}`,
		pipeline.HeaderOwnerID, owner)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[db.SavedCandidate](t, w)
}

func TestPipelineUnconfigured(t *testing.T) {
	s := newTestServer(t, nil, nil)

	t.Run("list is empty", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/pipeline", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	tests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/pipeline", `{"login":"ada","github_id":"1"}`},
		// The store check runs before body validation.
		{http.MethodPost, "/pipeline", `not json`},
		{http.MethodPatch, "/pipeline/ada", `{"notes":"x"}`},
		{http.MethodDelete, "/pipeline/ada", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.body, func(t *testing.T) {
			w := do(t, s, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			assert.Equal(t, pipeline.UnconfiguredMessage, decode[apierror.Response](t, w).UserMessage)
		})
	}
}

func TestSaveCandidate(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)

	saved := saveAda(t, s)
	assert.Equal(t, owner, saved.OwnerID)
	assert.Equal(t, "583231", saved.GithubID, "numeric github_id is kept as text")
	assert.Equal(t, []string{"Go"}, saved.TopLanguages)
	assert.Equal(t, []string{}, saved.Tags)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	again := saveAda(t, s)
	assert.Equal(t, saved.ID, again.ID, "saving the same login again upserts")
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)
}

func TestSaveCandidateInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"login":`},
		{name: "missing github_id", body: `{"login":"ada"}`},
		{name: "missing login", body: `{"github_id":"1"}`},
		{name: "blank login", body: `{"login":"","github_id":"1"}`},
		{name: "fractional github_id", body: `{"login":"ada","github_id":1.5}`},
		{name: "wrong field type", body: `{"login":"ada","github_id":"1","tags":"go"}`},
	}

	store := newMemStore()
	s := newTestServer(t, nil, store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/pipeline", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, store.rows)
}

func TestListPipelineIsOwnerScoped(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)
	saveAda(t, s)

	mine := decode[[]db.SavedCandidate](t, do(t, s, http.MethodGet, "/pipeline", "", pipeline.HeaderOwnerID, owner))
	require.Len(t, mine, 1)
	assert.Equal(t, "ada", mine[0].Login)

	theirs := decode[[]db.SavedCandidate](t, do(t, s, http.MethodGet, "/pipeline", "", pipeline.HeaderOwnerID, "browser-2"))
	assert.Empty(t, theirs)

	legacy := decode[[]db.SavedCandidate](t, do(t, s, http.MethodGet, "/pipeline", ""))
	assert.Empty(t, legacy, "requests without the header use the legacy owner")
}

func TestUpdateCandidate(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)
	saveAda(t, s)

	patch := func(body string) db.SavedCandidate {
		t.Helper()
		w := do(t, s, http.MethodPatch, "/pipeline/ada", body, pipeline.HeaderOwnerID, owner)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[db.SavedCandidate](t, w)
	}

	got := patch(`{"notes":"strong systems background","tags":["go","senior"]}`)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "strong systems background", *got.Notes)
	assert.Equal(t, []string{"go", "senior"}, got.Tags)

	got = patch(`{"tags":["go"]}`)
	require.NotNil(t, got.Notes, "absent notes are left untouched")
	assert.Equal(t, []string{"go"}, got.Tags)

	got = patch(`{"notes":null,"tags":null}`)
	assert.Nil(t, got.Notes)
	assert.Equal(t, []string{}, got.Tags)
}

func TestUpdateCandidateErrors(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)
	saveAda(t, s)

	t.Run("unknown login", func(t *testing.T) {
		w := do(t, s, http.MethodPatch, "/pipeline/ghost", `{"notes":"x"}`, pipeline.HeaderOwnerID, owner)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, msgCandidateNotFound, decode[apierror.Response](t, w).UserMessage)
	})

	t.Run("other owner", func(t *testing.T) {
		w := do(t, s, http.MethodPatch, "/pipeline/ada", `{"notes":"x"}`, pipeline.HeaderOwnerID, "browser-2")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid tags", func(t *testing.T) {
		w := do(t, s, http.MethodPatch, "/pipeline/ada", `{"tags":[1,2]}`, pipeline.HeaderOwnerID, owner)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := newMemStore()
		failing.err = errors.New("connection reset")
		fs := newTestServer(t, nil, failing)

		w := do(t, fs, http.MethodPatch, "/pipeline/ada", `{"notes":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, (&pipeline.StoreError{Op: "update"}).UserMessage(), decode[apierror.Response](t, w).UserMessage)
	})
}

func TestDeleteCandidate(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)
	saveAda(t, s)

	w := do(t, s, http.MethodDelete, "/pipeline/ada", "", pipeline.HeaderOwnerID, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.RemoveCandidateResponse{OK: true, Removed: true}, decode[types.RemoveCandidateResponse](t, w))

	w = do(t, s, http.MethodDelete, "/pipeline/ada", "", pipeline.HeaderOwnerID, owner)
	require.Equal(t, http.StatusOK, w.Code, "removing an unsaved login succeeds")
	assert.Equal(t, types.RemoveCandidateResponse{OK: true, Removed: false}, decode[types.RemoveCandidateResponse](t, w))
}

func TestExportPipeline(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, nil, store)

	t.Run("empty pipeline", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/pipeline/export.csv", "", pipeline.HeaderOwnerID, owner)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	saveAda(t, s)

	t.Run("csv attachment", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/pipeline/export.csv", "", pipeline.HeaderOwnerID, owner)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="talent-scout-candidates-2025-03-14.csv"`, w.Header().Get("Content-Disposition"))

		lines := strings.Split(w.Body.String(), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, strings.Join(export.Header, ","), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], `"Ada","ada",`), lines[1])
	})
}

func TestNewOwner(t *testing.T) {
	s := newTestServer(t, nil, nil)

	first := decode[types.OwnerResponse](t, do(t, s, http.MethodGet, "/pipeline/owner", ""))
	second := decode[types.OwnerResponse](t, do(t, s, http.MethodGet, "/pipeline/owner", ""))

	assert.Equal(t, pipeline.HeaderOwnerID, first.Header)
	_, err := uuid.Parse(first.OwnerID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.OwnerID, second.OwnerID)
}
