package bountylab

import "encoding/json"

// Filter operators understood by the provider.
const (
	OpEq                = "Eq"
	OpGte               = "Gte"
	OpContainsAllTokens = "ContainsAllTokens"
	OpAnd               = "And"
)

// Filter is a single field predicate.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// FilterGroup combines predicates with a boolean operator.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
	Op      string   `json:"op"`
}

// Attributes selects the enrichment fields returned with each record. Keys are
// enrichment names; values are either true or paging options such as First{5}.
type Attributes map[string]any

// First limits a connection enrichment to its first N edges.
type First struct {
	First int `json:"first"`
}

// SearchRequest is the body of every search endpoint.
type SearchRequest struct {
	Query             *string      `json:"query"`
	MaxResults        int          `json:"maxResults"`
	After             string       `json:"after,omitempty"`
	EnablePagination  bool         `json:"enablePagination"`
	IncludeAttributes Attributes   `json:"includeAttributes"`
	Filters           *FilterGroup `json:"filters,omitempty"`
}

// ByLoginRequest fetches users by exact login.
type ByLoginRequest struct {
	Logins            []string   `json:"logins"`
	IncludeAttributes Attributes `json:"includeAttributes"`
}

// PageInfo is the cursor state of a paginated response.
type PageInfo struct {
	EndCursor   string `json:"endCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

// DevRank is the provider's ranking enrichment.
type DevRank struct {
	CrackedScore *float64 `json:"crackedScore,omitempty"`
	DevRank      *float64 `json:"devrank,omitempty"`
	Tier         string   `json:"tier,omitempty"`
}

// Aggregates holds precomputed totals for a user.
type Aggregates struct {
	TotalStars *int `json:"totalStars,omitempty"`
}

// ConnectionInfo carries the total size of a connection.
type ConnectionInfo struct {
	TotalCount *int `json:"totalCount,omitempty"`
}

// Edge is one element of a connection enrichment. Only the fields relevant to
// the edge kind are populated.
type Edge struct {
	Login          string  `json:"login,omitempty"`
	Name           string  `json:"name,omitempty"`
	OwnerLogin     string  `json:"ownerLogin,omitempty"`
	Language       *string `json:"language,omitempty"`
	StargazerCount *int    `json:"stargazerCount,omitempty"`
}

// Connection is a paged list enrichment such as contributes or followers.
type Connection struct {
	Edges    []Edge          `json:"edges,omitempty"`
	PageInfo *ConnectionInfo `json:"pageInfo,omitempty"`
}

// TotalCount returns the connection size, or 0 when unknown.
func (c *Connection) TotalCount() int {
	if c == nil || c.PageInfo == nil || c.PageInfo.TotalCount == nil {
		return 0
	}
	return *c.PageInfo.TotalCount
}

// User is a developer record.
type User struct {
	ID              string      `json:"id"`
	GithubID        string      `json:"githubId"`
	Login           string      `json:"login"`
	DisplayName     *string     `json:"displayName,omitempty"`
	Bio             *string     `json:"bio,omitempty"`
	Company         *string     `json:"company,omitempty"`
	Location        *string     `json:"location,omitempty"`
	ResolvedCountry *string     `json:"resolvedCountry,omitempty"`
	ResolvedCity    *string     `json:"resolvedCity,omitempty"`
	Score           *float64    `json:"score,omitempty"`
	DevRank         *DevRank    `json:"devrank,omitempty"`
	Aggregates      *Aggregates `json:"aggregates,omitempty"`
	Contributes     *Connection `json:"contributes,omitempty"`
	Followers       *Connection `json:"followers,omitempty"`
	Owns            *Connection `json:"owns,omitempty"`
	Stars           *Connection `json:"stars,omitempty"`
	Emails          []string    `json:"emails,omitempty"`
}

// Owner is the owner enrichment of a repository.
type Owner struct {
	Login       string  `json:"login,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
}

// Repository is a repository record.
type Repository struct {
	ID             string      `json:"id"`
	GithubID       string      `json:"githubId"`
	Name           string      `json:"name"`
	OwnerLogin     string      `json:"ownerLogin"`
	StargazerCount int         `json:"stargazerCount"`
	Description    *string     `json:"description,omitempty"`
	Language       *string     `json:"language,omitempty"`
	Score          *float64    `json:"score,omitempty"`
	Contributors   *Connection `json:"contributors,omitempty"`
	Owner          *Owner      `json:"owner,omitempty"`
}

// UserSearchResponse is returned by user search.
type UserSearchResponse struct {
	Users    []User   `json:"users"`
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"pageInfo"`
}

// UsersResponse is returned by the by-login lookup.
type UsersResponse struct {
	Users []User `json:"users"`
}

// RepoSearchResponse is returned by both repository search modes. SearchQuery
// is only set by natural-language search and is passed through untouched.
type RepoSearchResponse struct {
	Repositories []Repository    `json:"repositories"`
	Count        int             `json:"count"`
	PageInfo     PageInfo        `json:"pageInfo"`
	SearchQuery  json.RawMessage `json:"searchQuery,omitempty"`
}

// TopLanguages returns the distinct languages of the user's contributed
// repositories in provider order.
func (u User) TopLanguages() []string {
	if u.Contributes == nil {
		return []string{}
	}
	seen := make(map[string]bool, len(u.Contributes.Edges))
	langs := make([]string, 0, len(u.Contributes.Edges))
	for _, e := range u.Contributes.Edges {
		if e.Language == nil || *e.Language == "" || seen[*e.Language] {
			continue
		}
		seen[*e.Language] = true
		langs = append(langs, *e.Language)
	}
	return langs
}
