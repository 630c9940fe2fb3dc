package ranking

import (
	"math"
	"sort"

	"github.com/jonathan/talent-scout/internal/bountylab"
)

// Saturation points: a signal at or above its cap contributes fully.
const (
	devRankScale   = 100.0
	starsScale     = 5000.0
	activityScale  = 50.0
	followersScale = 500.0
)

// Signals are the raw inputs of the composite score. Missing values are 0.
type Signals struct {
	DevRank       float64
	TotalStars    float64
	Contributions float64
	Followers     float64
}

// SignalsFor extracts ranking signals from a developer record.
func SignalsFor(u bountylab.User) Signals {
	var s Signals
	if score, ok := DevRankScore(u); ok {
		s.DevRank = score
	}
	if u.Aggregates != nil && u.Aggregates.TotalStars != nil {
		s.TotalStars = float64(*u.Aggregates.TotalStars)
	}
	s.Contributions = float64(u.Contributes.TotalCount())
	s.Followers = float64(u.Followers.TotalCount())
	return s
}

// DevRankScore returns the 0-100 crackedScore, falling back to the legacy
// devrank field.
func DevRankScore(u bountylab.User) (float64, bool) {
	if u.DevRank == nil {
		return 0, false
	}
	if u.DevRank.CrackedScore != nil {
		return *u.DevRank.CrackedScore, true
	}
	if u.DevRank.DevRank != nil {
		return *u.DevRank.DevRank, true
	}
	return 0, false
}

// Tier returns the provider's DevRank tier label, if any.
func Tier(u bountylab.User) string {
	if u.DevRank == nil {
		return ""
	}
	return u.DevRank.Tier
}

// Score combines the clamped signal terms with the given weights.
func Score(s Signals, w Weights) float64 {
	return w.DevRank*clamp01(s.DevRank/devRankScale) +
		w.Stars*clamp01(s.TotalStars/starsScale) +
		w.Activity*clamp01(s.Contributions/activityScale) +
		w.Followers*clamp01(s.Followers/followersScale)
}

// Ranked is a developer with its composite score.
type Ranked struct {
	User  bountylab.User
	Score float64
}

// Rank scores users and sorts them by descending score. Ties keep input order.
func Rank(users []bountylab.User, w Weights) []Ranked {
	out := make([]Ranked, len(users))
	for i, u := range users {
		out[i] = Ranked{User: u, Score: Score(SignalsFor(u), w)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// SortUsers returns users reordered by Rank.
func SortUsers(users []bountylab.User, w Weights) []bountylab.User {
	ranked := Rank(users, w)
	out := make([]bountylab.User, len(ranked))
	for i, r := range ranked {
		out[i] = r.User
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
