package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/talent-scout/internal/apierror"
	"github.com/jonathan/talent-scout/internal/bountylab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records requests and replays scripted responses in order.
type fakeProvider struct {
	userReqs    []bountylab.SearchRequest
	loginReqs   []bountylab.ByLoginRequest
	repoReqs    []bountylab.SearchRequest
	naturalReqs []bountylab.SearchRequest

	forbidEnriched bool
	err            error

	users []bountylab.User
	repos []bountylab.Repository
	page  bountylab.PageInfo
}

func (f *fakeProvider) fail(attrs bountylab.Attributes) error {
	if f.forbidEnriched && len(attrs) > 0 {
		return &apierror.RemoteError{Status: http.StatusForbidden, Body: &apierror.Body{Error: "Forbidden"}}
	}
	return f.err
}

func (f *fakeProvider) SearchUsers(_ context.Context, req bountylab.SearchRequest) (*bountylab.UserSearchResponse, error) {
	f.userReqs = append(f.userReqs, req)
	if err := f.fail(req.IncludeAttributes); err != nil {
		return nil, err
	}
	return &bountylab.UserSearchResponse{Users: f.users, Count: len(f.users), PageInfo: f.page}, nil
}

func (f *fakeProvider) UsersByLogin(_ context.Context, req bountylab.ByLoginRequest) (*bountylab.UsersResponse, error) {
	f.loginReqs = append(f.loginReqs, req)
	if err := f.fail(req.IncludeAttributes); err != nil {
		return nil, err
	}
	return &bountylab.UsersResponse{Users: f.users}, nil
}

func (f *fakeProvider) SearchRepos(_ context.Context, req bountylab.SearchRequest) (*bountylab.RepoSearchResponse, error) {
	f.repoReqs = append(f.repoReqs, req)
	if err := f.fail(req.IncludeAttributes); err != nil {
		return nil, err
	}
	return &bountylab.RepoSearchResponse{Repositories: f.repos, Count: 42, PageInfo: f.page}, nil
}

func (f *fakeProvider) NaturalLanguageRepos(_ context.Context, req bountylab.SearchRequest) (*bountylab.RepoSearchResponse, error) {
	f.naturalReqs = append(f.naturalReqs, req)
	if err := f.fail(req.IncludeAttributes); err != nil {
		return nil, err
	}
	return &bountylab.RepoSearchResponse{
		Repositories: f.repos,
		Count:        len(f.repos),
		PageInfo:     f.page,
		SearchQuery:  json.RawMessage(`{"keywords":["rust"]}`),
	}, nil
}

func strPtr(s string) *string { return &s }

func TestSearchDevelopers_BuildsRequest(t *testing.T) {
	p := &fakeProvider{page: bountylab.PageInfo{EndCursor: "next", HasNextPage: true}}
	s := NewService(p, nil)

	res, err := s.SearchDevelopers(context.Background(), DeveloperQuery{
		Query:       "compilers",
		Language:    "Rust",
		Location:    "  Germany ",
		EmailDomain: "example.com",
		Page:        Pagination{After: "cursor-1", MaxResults: 500},
	})
	require.NoError(t, err)
	require.Len(t, p.userReqs, 1)

	req := p.userReqs[0]
	assert.Equal(t, "compilers", *req.Query)
	assert.Equal(t, MaxPageSize, req.MaxResults)
	assert.Equal(t, "cursor-1", req.After)
	assert.True(t, req.EnablePagination)
	assert.Equal(t, developerSearchAttributes(), req.IncludeAttributes)

	want := &bountylab.FilterGroup{Op: bountylab.OpAnd, Filters: []bountylab.Filter{
		{Field: "primaryLanguage", Op: bountylab.OpEq, Value: "Rust"},
		{Field: "resolvedCountry", Op: bountylab.OpContainsAllTokens, Value: "Germany"},
		{Field: "emails", Op: bountylab.OpContainsAllTokens, Value: "@example.com"},
	}}
	if diff := cmp.Diff(want, req.Filters); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "next", res.PageInfo.EndCursor)
	assert.True(t, res.PageInfo.HasNextPage)
	assert.Nil(t, res.FeaturesUnavailable)
}

func TestSearchDevelopers_EmptyQueryIsNullAndNoFilters(t *testing.T) {
	p := &fakeProvider{}
	_, err := NewService(p, nil).SearchDevelopers(context.Background(), DeveloperQuery{})
	require.NoError(t, err)

	req := p.userReqs[0]
	assert.Nil(t, req.Query)
	assert.Nil(t, req.Filters)
	assert.Equal(t, DefaultDeveloperPageSize, req.MaxResults)
}

func TestSearchDevelopers_CountryPostFilter(t *testing.T) {
	p := &fakeProvider{users: []bountylab.User{
		{Login: "a", ResolvedCountry: strPtr("Germany")},
		{Login: "b", Location: strPtr("Berlin, germany")},
		{Login: "c", ResolvedCountry: strPtr("France"), Location: strPtr("Paris")},
		{Login: "d"},
	}}

	res, err := NewService(p, nil).SearchDevelopers(context.Background(), DeveloperQuery{Location: "GERMANY"})
	require.NoError(t, err)

	logins := make([]string, 0, len(res.Users))
	for _, u := range res.Users {
		logins = append(logins, u.Login)
	}
	assert.Equal(t, []string{"a", "b"}, logins)
	assert.Equal(t, 2, res.Count)
}

func TestSearchDevelopers_DegradesOnForbidden(t *testing.T) {
	p := &fakeProvider{forbidEnriched: true, users: []bountylab.User{{Login: "ada"}}}

	res, err := NewService(p, nil).SearchDevelopers(context.Background(), DeveloperQuery{Query: "ada", Page: Pagination{After: "c"}})
	require.NoError(t, err)
	require.Len(t, p.userReqs, 2)

	first, second := p.userReqs[0], p.userReqs[1]
	assert.NotEmpty(t, first.IncludeAttributes)
	assert.Empty(t, second.IncludeAttributes)
	first.IncludeAttributes, second.IncludeAttributes = nil, nil
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("degraded request differs beyond enrichments (-first +second):\n%s", diff)
	}

	assert.Equal(t, FeaturesUnavailable{
		EnrichDevRank:     true,
		EnrichAggregates:  true,
		EnrichContributes: true,
		EnrichFollowers:   true,
	}, res.FeaturesUnavailable)
	assert.Len(t, res.Users, 1)
}

func TestSearchDevelopers_ServerErrorNotRetried(t *testing.T) {
	p := &fakeProvider{err: &apierror.RemoteError{Status: http.StatusInternalServerError}}

	_, err := NewService(p, nil).SearchDevelopers(context.Background(), DeveloperQuery{Query: "x"})
	require.Error(t, err)
	assert.Len(t, p.userReqs, 1)

	n := apierror.Normalize(err)
	assert.Equal(t, http.StatusInternalServerError, n.Status)
	assert.Equal(t, apierror.MessageServerError, n.Body.UserMessage)
}

func TestSearch_Unconfigured(t *testing.T) {
	s := NewService(nil, nil)
	assert.False(t, s.Configured())

	_, err := s.SearchDevelopers(context.Background(), DeveloperQuery{})
	assert.ErrorIs(t, err, ErrSearchUnconfigured)
	_, err = s.SearchRepositories(context.Background(), RepoQuery{})
	assert.ErrorIs(t, err, ErrSearchUnconfigured)
	_, err = s.GetDeveloperByLogin(context.Background(), "ada")
	assert.ErrorIs(t, err, ErrSearchUnconfigured)
}

func TestGetDeveloperByLogin(t *testing.T) {
	p := &fakeProvider{users: []bountylab.User{{Login: "ada", GithubID: "1"}}}

	dev, err := NewService(p, nil).GetDeveloperByLogin(context.Background(), " ada ")
	require.NoError(t, err)
	assert.Equal(t, "ada", dev.Login)
	assert.Nil(t, dev.FeaturesUnavailable)
	require.Len(t, p.loginReqs, 1)
	assert.Equal(t, []string{"ada"}, p.loginReqs[0].Logins)
	assert.Equal(t, developerLookupAttributes(), p.loginReqs[0].IncludeAttributes)
}

func TestGetDeveloperByLogin_MissingLoginIsLocal(t *testing.T) {
	p := &fakeProvider{}

	_, err := NewService(p, nil).GetDeveloperByLogin(context.Background(), "   ")

	var pe *PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "login", pe.Field)
	assert.Empty(t, p.loginReqs)
}

func TestGetDeveloperByLogin_NotFound(t *testing.T) {
	_, err := NewService(&fakeProvider{}, nil).GetDeveloperByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDeveloperByLogin_Degraded(t *testing.T) {
	p := &fakeProvider{forbidEnriched: true, users: []bountylab.User{{Login: "ada"}}}

	dev, err := NewService(p, nil).GetDeveloperByLogin(context.Background(), "ada")
	require.NoError(t, err)
	assert.Len(t, p.loginReqs, 2)
	assert.Len(t, dev.FeaturesUnavailable, 6)
	assert.True(t, dev.FeaturesUnavailable[EnrichOwns])

	raw, err := json.Marshal(dev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"login":"ada"`)
	assert.Contains(t, string(raw), `"featuresUnavailable"`)
}

func TestSearchRepositories_Keyword(t *testing.T) {
	stars := 100
	p := &fakeProvider{repos: []bountylab.Repository{{Name: "tokio"}}}

	res, err := NewService(p, nil).SearchRepositories(context.Background(), RepoQuery{
		Query:    "runtime",
		Language: "Rust",
		MinStars: &stars,
	})
	require.NoError(t, err)
	require.Len(t, p.repoReqs, 1)
	assert.Empty(t, p.naturalReqs)

	req := p.repoReqs[0]
	assert.Equal(t, DefaultRepoPageSize, req.MaxResults)
	assert.Equal(t, []bountylab.Filter{
		{Field: "language", Op: bountylab.OpEq, Value: "Rust"},
		{Field: "stargazerCount", Op: bountylab.OpGte, Value: 100},
	}, req.Filters.Filters)
	assert.Equal(t, 42, res.Count)
	assert.Nil(t, res.SearchQuery)
}

func TestSearchRepositories_NaturalLanguage(t *testing.T) {
	p := &fakeProvider{repos: []bountylab.Repository{{Name: "tokio"}}}

	res, err := NewService(p, nil).SearchRepositories(context.Background(), RepoQuery{Query: "async rust", NaturalLanguage: true})
	require.NoError(t, err)
	assert.Len(t, p.naturalReqs, 1)
	assert.Empty(t, p.repoReqs)
	assert.JSONEq(t, `{"keywords":["rust"]}`, string(res.SearchQuery))
}

func TestSearchRepositories_NaturalNeedsQuery(t *testing.T) {
	p := &fakeProvider{}

	res, err := NewService(p, nil).SearchRepositories(context.Background(), RepoQuery{NaturalLanguage: true})
	require.NoError(t, err)
	assert.Empty(t, p.naturalReqs)
	assert.Len(t, p.repoReqs, 1)
	assert.NotNil(t, res.Repositories)
}

func TestSearchRepositories_Degraded(t *testing.T) {
	p := &fakeProvider{forbidEnriched: true}

	res, err := NewService(p, nil).SearchRepositories(context.Background(), RepoQuery{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, FeaturesUnavailable{EnrichContributors: true, EnrichOwner: true}, res.FeaturesUnavailable)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 10, ClampPageSize(0, 10))
	assert.Equal(t, 10, ClampPageSize(-3, 10))
	assert.Equal(t, 25, ClampPageSize(25, 10))
	assert.Equal(t, 100, ClampPageSize(101, 10))
}

func TestNormalizeEmailDomain(t *testing.T) {
	assert.Equal(t, "@acme.io", NormalizeEmailDomain("acme.io"))
	assert.Equal(t, "@acme.io", NormalizeEmailDomain(" @acme.io "))
	assert.Equal(t, "", NormalizeEmailDomain("  "))
}

func TestMatchesCountry(t *testing.T) {
	u := bountylab.User{ResolvedCountry: strPtr("United States"), Location: strPtr("NYC")}
	assert.True(t, MatchesCountry(u, "united states"))
	assert.True(t, MatchesCountry(u, "nyc"))
	assert.False(t, MatchesCountry(u, "Canada"))
	assert.False(t, MatchesCountry(bountylab.User{}, "Canada"))
}
