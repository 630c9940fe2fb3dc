package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/talent-scout/internal/ranking"
	"github.com/jonathan/talent-scout/internal/search"
)

// sortComposite re-sorts a result page by composite score.
const sortComposite = "composite"

// developerSearchResponse is a developer page, optionally re-sorted. Weights
// is set only when the page was sorted by composite score.
type developerSearchResponse struct {
	*search.DeveloperResult
	Weights *ranking.Weights `json:"weights,omitempty"`
}

// handleSearchDevelopers handles GET /developers/search
func (s *Server) handleSearchDevelopers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := parsePagination(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	weights, err := parseSort(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.search.SearchDevelopers(r.Context(), search.DeveloperQuery{
		Query:       q.Get("q"),
		Language:    strings.TrimSpace(q.Get("language")),
		Location:    strings.TrimSpace(q.Get("location")),
		EmailDomain: strings.TrimSpace(q.Get("emailDomain")),
		Page:        page,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if weights != nil {
		res.Users = ranking.SortUsers(res.Users, *weights)
	}
	s.jsonResponse(w, http.StatusOK, developerSearchResponse{DeveloperResult: res, Weights: weights})
}

// handleGetDeveloper handles GET /developers/{login}
func (s *Server) handleGetDeveloper(w http.ResponseWriter, r *http.Request) {
	dev, err := s.search.GetDeveloperByLogin(r.Context(), r.PathValue("login"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, dev)
}

// parsePagination reads the after cursor and maxResults. The cursor is passed
// through untouched.
func parsePagination(q url.Values) (search.Pagination, error) {
	page := search.Pagination{After: q.Get("after")}
	n, err := parseOptionalInt(q, "maxResults")
	if err != nil {
		return page, err
	}
	if n != nil {
		page.MaxResults = *n
	}
	return page, nil
}

// parseSort returns normalized weights when sort=composite was requested.
func parseSort(q url.Values) (*ranking.Weights, error) {
	switch q.Get("sort") {
	case "":
		if q.Get("weights") != "" {
			return nil, &ErrValidation{Field: "weights", Message: "weights require sort=composite"}
		}
		return nil, nil
	case sortComposite:
	default:
		return nil, &ErrValidation{Field: "sort", Message: "sort must be 'composite'"}
	}

	weights := ranking.DefaultWeights
	if raw := q.Get("weights"); raw != "" {
		parsed, err := ranking.ParseWeights(raw)
		if err != nil {
			return nil, &ErrValidation{Field: "weights", Message: err.Error()}
		}
		weights = parsed
	}
	return &weights, nil
}

func parseOptionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &ErrValidation{Field: key, Message: "must be an integer"}
	}
	return &n, nil
}
