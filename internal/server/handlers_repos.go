package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/talent-scout/internal/search"
)

// handleSearchRepos handles GET /repos/search
func (s *Server) handleSearchRepos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := parsePagination(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	minStars, err := parseOptionalInt(q, "minStars")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	natural, err := parseFlag(q.Get("natural"))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "natural", Message: "must be a boolean"})
		return
	}

	res, err := s.search.SearchRepositories(r.Context(), search.RepoQuery{
		Query:           q.Get("q"),
		NaturalLanguage: natural,
		Language:        strings.TrimSpace(q.Get("language")),
		MinStars:        minStars,
		Page:            page,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// parseFlag treats an absent flag as false.
func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
