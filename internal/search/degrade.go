package search

import (
	"context"
	"net/http"
	"sort"

	"github.com/jonathan/talent-scout/internal/apierror"
	"github.com/jonathan/talent-scout/internal/bountylab"
)

// Enrichment names, as used both in provider requests and in
// FeaturesUnavailable.
const (
	EnrichDevRank      = "devrank"
	EnrichAggregates   = "aggregates"
	EnrichContributes  = "contributes"
	EnrichFollowers    = "followers"
	EnrichOwns         = "owns"
	EnrichStars        = "stars"
	EnrichContributors = "contributors"
	EnrichOwner        = "owner"
)

var featureLabels = map[string]string{
	EnrichDevRank:      "DevRank",
	EnrichAggregates:   "Total stars",
	EnrichContributes:  "Activity & top languages",
	EnrichFollowers:    "Follower count",
	EnrichOwns:         "Owned repositories",
	EnrichStars:        "Starred repositories",
	EnrichContributors: "Contributor list",
	EnrichOwner:        "Owner details",
}

// FeaturesUnavailable names the enrichments the provider refused for a call.
type FeaturesUnavailable map[string]bool

// Any reports whether at least one enrichment was dropped.
func (f FeaturesUnavailable) Any() bool {
	for _, v := range f {
		if v {
			return true
		}
	}
	return false
}

// Messages returns display labels for the dropped enrichments, ordered by key.
func (f FeaturesUnavailable) Messages() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		label, ok := featureLabels[k]
		if !ok {
			label = k
		}
		out = append(out, label)
	}
	return out
}

// WithFallback runs call with the full enrichment set. If the provider answers
// 403, it runs call exactly once more with no enrichments and reports every
// dropped enrichment. Any other failure, including a failure of the second
// call, is returned unchanged.
func WithFallback[T any](ctx context.Context, full bountylab.Attributes, call func(context.Context, bountylab.Attributes) (T, error)) (T, FeaturesUnavailable, error) {
	result, err := call(ctx, full)
	if err == nil {
		return result, nil, nil
	}
	if apierror.StatusOf(err) != http.StatusForbidden {
		return result, nil, err
	}

	result, err = call(ctx, bountylab.Attributes{})
	if err != nil {
		return result, nil, err
	}

	dropped := make(FeaturesUnavailable, len(full))
	for name := range full {
		dropped[name] = true
	}
	return result, dropped, nil
}

// Enrichment sets requested by each endpoint.
func developerSearchAttributes() bountylab.Attributes {
	return bountylab.Attributes{
		EnrichAggregates:  true,
		EnrichDevRank:     true,
		EnrichContributes: bountylab.First{First: 5},
		EnrichFollowers:   bountylab.First{First: 1},
	}
}

func developerLookupAttributes() bountylab.Attributes {
	return bountylab.Attributes{
		EnrichAggregates:  true,
		EnrichDevRank:     true,
		EnrichContributes: bountylab.First{First: 10},
		EnrichFollowers:   bountylab.First{First: 1},
		EnrichOwns:        bountylab.First{First: 10},
		EnrichStars:       bountylab.First{First: 5},
	}
}

func repoSearchAttributes() bountylab.Attributes {
	return bountylab.Attributes{
		EnrichContributors: bountylab.First{First: 10},
		EnrichOwner:        true,
	}
}
