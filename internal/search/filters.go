package search

import (
	"strings"

	"github.com/jonathan/talent-scout/internal/bountylab"
)

// developerFilters builds the provider filter group for a developer search.
// It returns nil when no filter applies.
func developerFilters(language, location, emailDomain string) *bountylab.FilterGroup {
	var filters []bountylab.Filter
	if language != "" {
		filters = append(filters, bountylab.Filter{Field: "primaryLanguage", Op: bountylab.OpEq, Value: language})
	}
	if loc := strings.TrimSpace(location); loc != "" {
		filters = append(filters, bountylab.Filter{Field: "resolvedCountry", Op: bountylab.OpContainsAllTokens, Value: loc})
	}
	if domain := NormalizeEmailDomain(emailDomain); domain != "" {
		filters = append(filters, bountylab.Filter{Field: "emails", Op: bountylab.OpContainsAllTokens, Value: domain})
	}
	return group(filters)
}

// repoFilters builds the provider filter group for a repository search.
func repoFilters(language string, minStars *int) *bountylab.FilterGroup {
	var filters []bountylab.Filter
	if language != "" {
		filters = append(filters, bountylab.Filter{Field: "language", Op: bountylab.OpEq, Value: language})
	}
	if minStars != nil {
		filters = append(filters, bountylab.Filter{Field: "stargazerCount", Op: bountylab.OpGte, Value: *minStars})
	}
	return group(filters)
}

func group(filters []bountylab.Filter) *bountylab.FilterGroup {
	if len(filters) == 0 {
		return nil
	}
	return &bountylab.FilterGroup{Filters: filters, Op: bountylab.OpAnd}
}

// NormalizeEmailDomain trims the domain and ensures it starts with "@".
func NormalizeEmailDomain(domain string) string {
	d := strings.TrimSpace(domain)
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "@") {
		d = "@" + d
	}
	return d
}

// MatchesCountry reports whether the user's resolved country or raw location
// contains the country, case-insensitively. The provider's own token filter
// over-matches, so results are checked again here.
func MatchesCountry(u bountylab.User, country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	resolved := strings.ToLower(deref(u.ResolvedCountry))
	loc := strings.ToLower(deref(u.Location))
	return strings.Contains(resolved, c) || strings.Contains(loc, c)
}

func filterByCountry(users []bountylab.User, country string) []bountylab.User {
	out := make([]bountylab.User, 0, len(users))
	for _, u := range users {
		if strings.TrimSpace(country) == "" || MatchesCountry(u, country) {
			out = append(out, u)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
