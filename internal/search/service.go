// Package search builds provider queries from user input, applies the 403
// fallback policy, and shapes uniform paginated results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/jonathan/talent-scout/internal/logging"
)

// Page size limits.
const (
	DefaultDeveloperPageSize = 10
	DefaultRepoPageSize      = 20
	MaxPageSize              = 100
)

var (
	// ErrSearchUnconfigured means no provider client is available.
	ErrSearchUnconfigured = errors.New("search provider is not configured")
	// ErrNotFound means a lookup matched no record.
	ErrNotFound = errors.New("not found")
)

// PreconditionError is a missing or invalid input caught before any remote call.
type PreconditionError struct {
	Field   string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s - %s", e.Field, e.Message)
}

// Provider is the subset of the BountyLab client the facade needs.
type Provider interface {
	SearchUsers(ctx context.Context, req bountylab.SearchRequest) (*bountylab.UserSearchResponse, error)
	UsersByLogin(ctx context.Context, req bountylab.ByLoginRequest) (*bountylab.UsersResponse, error)
	SearchRepos(ctx context.Context, req bountylab.SearchRequest) (*bountylab.RepoSearchResponse, error)
	NaturalLanguageRepos(ctx context.Context, req bountylab.SearchRequest) (*bountylab.RepoSearchResponse, error)
}

// Pagination is an opaque cursor plus a page size.
type Pagination struct {
	After      string
	MaxResults int
}

// DeveloperQuery is a developer search request.
type DeveloperQuery struct {
	Query       string
	Language    string
	Location    string
	EmailDomain string
	Page        Pagination
}

// RepoQuery is a repository search request.
type RepoQuery struct {
	Query           string
	NaturalLanguage bool
	Language        string
	MinStars        *int
	Page            Pagination
}

// DeveloperResult is one page of developer hits.
type DeveloperResult struct {
	Count               int                 `json:"count"`
	Users               []bountylab.User    `json:"users"`
	PageInfo            bountylab.PageInfo  `json:"pageInfo"`
	FeaturesUnavailable FeaturesUnavailable `json:"featuresUnavailable,omitempty"`
}

// Developer is a single developer profile.
type Developer struct {
	bountylab.User
	FeaturesUnavailable FeaturesUnavailable `json:"featuresUnavailable,omitempty"`
}

// RepoResult is one page of repository hits.
type RepoResult struct {
	Count               int                    `json:"count"`
	Repositories        []bountylab.Repository `json:"repositories"`
	PageInfo            bountylab.PageInfo     `json:"pageInfo"`
	SearchQuery         json.RawMessage        `json:"searchQuery,omitempty"`
	FeaturesUnavailable FeaturesUnavailable    `json:"featuresUnavailable,omitempty"`
}

// Service is the search facade.
type Service struct {
	provider Provider
	log      *logging.Logger
}

// NewService returns a facade over provider. A nil provider yields a service
// whose calls fail with ErrSearchUnconfigured.
func NewService(provider Provider, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{provider: provider, log: log}
}

// Configured reports whether a provider is available.
func (s *Service) Configured() bool {
	return s != nil && s.provider != nil
}

// SearchDevelopers runs a developer search and post-filters by country.
func (s *Service) SearchDevelopers(ctx context.Context, q DeveloperQuery) (*DeveloperResult, error) {
	if !s.Configured() {
		return nil, ErrSearchUnconfigured
	}

	base := bountylab.SearchRequest{
		Query:            optionalQuery(q.Query),
		MaxResults:       ClampPageSize(q.Page.MaxResults, DefaultDeveloperPageSize),
		After:            q.Page.After,
		EnablePagination: true,
		Filters:          developerFilters(q.Language, q.Location, q.EmailDomain),
	}

	resp, dropped, err := WithFallback(ctx, developerSearchAttributes(),
		func(ctx context.Context, attrs bountylab.Attributes) (*bountylab.UserSearchResponse, error) {
			req := base
			req.IncludeAttributes = attrs
			resp, err := s.provider.SearchUsers(ctx, req)
			if err != nil {
				s.logAttempt("developers/search", attrs, err)
			}
			return resp, err
		})
	if err != nil {
		return nil, err
	}

	users := filterByCountry(resp.Users, q.Location)
	return &DeveloperResult{
		Count:               len(users),
		Users:               users,
		PageInfo:            resp.PageInfo,
		FeaturesUnavailable: dropped,
	}, nil
}

// GetDeveloperByLogin fetches one developer's full profile.
func (s *Service) GetDeveloperByLogin(ctx context.Context, login string) (*Developer, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, &PreconditionError{Field: "login", Message: "login is required"}
	}
	if !s.Configured() {
		return nil, ErrSearchUnconfigured
	}

	resp, dropped, err := WithFallback(ctx, developerLookupAttributes(),
		func(ctx context.Context, attrs bountylab.Attributes) (*bountylab.UsersResponse, error) {
			resp, err := s.provider.UsersByLogin(ctx, bountylab.ByLoginRequest{
				Logins:            []string{login},
				IncludeAttributes: attrs,
			})
			if err != nil {
				s.logAttempt("developers/by-login", attrs, err)
			}
			return resp, err
		})
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, fmt.Errorf("developer %q: %w", login, ErrNotFound)
	}

	return &Developer{User: resp.Users[0], FeaturesUnavailable: dropped}, nil
}

// SearchRepositories runs a keyword or natural-language repository search.
// Natural-language mode needs a non-empty query.
func (s *Service) SearchRepositories(ctx context.Context, q RepoQuery) (*RepoResult, error) {
	if !s.Configured() {
		return nil, ErrSearchUnconfigured
	}

	natural := q.NaturalLanguage && strings.TrimSpace(q.Query) != ""
	base := bountylab.SearchRequest{
		Query:            optionalQuery(q.Query),
		MaxResults:       ClampPageSize(q.Page.MaxResults, DefaultRepoPageSize),
		After:            q.Page.After,
		EnablePagination: true,
		Filters:          repoFilters(q.Language, q.MinStars),
	}

	op := "repos/search"
	search := s.provider.SearchRepos
	if natural {
		op = "repos/natural-language"
		search = s.provider.NaturalLanguageRepos
	}

	resp, dropped, err := WithFallback(ctx, repoSearchAttributes(),
		func(ctx context.Context, attrs bountylab.Attributes) (*bountylab.RepoSearchResponse, error) {
			req := base
			req.IncludeAttributes = attrs
			resp, err := search(ctx, req)
			if err != nil {
				s.logAttempt(op, attrs, err)
			}
			return resp, err
		})
	if err != nil {
		return nil, err
	}

	repos := resp.Repositories
	if repos == nil {
		repos = []bountylab.Repository{}
	}
	out := &RepoResult{
		Count:               resp.Count,
		Repositories:        repos,
		PageInfo:            resp.PageInfo,
		FeaturesUnavailable: dropped,
	}
	if natural {
		out.SearchQuery = resp.SearchQuery
	}
	return out, nil
}

func (s *Service) logAttempt(op string, attrs bountylab.Attributes, err error) {
	if len(attrs) > 0 {
		s.log.Warn("enriched search failed", "op", op, "err", err)
		return
	}
	s.log.Warn("search failed", "op", op, "err", err)
}

// ClampPageSize applies the default for non-positive sizes and caps at MaxPageSize.
func ClampPageSize(n, def int) int {
	if n <= 0 {
		return def
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func optionalQuery(q string) *string {
	if q == "" {
		return nil
	}
	return &q
}
