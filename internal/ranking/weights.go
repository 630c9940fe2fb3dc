// Package ranking orders developer search hits by a weighted composite of
// normalized signals. Everything here is pure and client-local.
package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Weight keys, in the order ParseWeights expects them.
const (
	KeyDevRank   = "devrank"
	KeyStars     = "stars"
	KeyActivity  = "activity"
	KeyFollowers = "followers"
)

// Weights are the non-negative coefficients of the composite score.
type Weights struct {
	DevRank   float64 `json:"devrank"`
	Stars     float64 `json:"stars"`
	Activity  float64 `json:"activity"`
	Followers float64 `json:"followers"`
}

// DefaultWeights favor DevRank, then stars, activity and followers.
var DefaultWeights = Weights{
	DevRank:   0.4,
	Stars:     0.25,
	Activity:  0.2,
	Followers: 0.15,
}

var uniformWeights = Weights{DevRank: 0.25, Stars: 0.25, Activity: 0.25, Followers: 0.25}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.DevRank + w.Stars + w.Activity + w.Followers
}

// Normalize scales w so its weights sum to 1. Negative and non-finite weights
// count as 0; an all-zero vector becomes the uniform split.
func Normalize(w Weights) Weights {
	w = Weights{
		DevRank:   nonNegative(w.DevRank),
		Stars:     nonNegative(w.Stars),
		Activity:  nonNegative(w.Activity),
		Followers: nonNegative(w.Followers),
	}
	// Divide by the largest weight first so the sum stays within [1,4].
	top := max(w.DevRank, w.Stars, w.Activity, w.Followers)
	if top == 0 {
		return uniformWeights
	}
	w = Weights{
		DevRank:   w.DevRank / top,
		Stars:     w.Stars / top,
		Activity:  w.Activity / top,
		Followers: w.Followers / top,
	}
	sum := w.Sum()
	return Weights{
		DevRank:   w.DevRank / sum,
		Stars:     w.Stars / sum,
		Activity:  w.Activity / sum,
		Followers: w.Followers / sum,
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// With sets one weight, clamped to [0,1], and renormalizes the vector.
func (w Weights) With(key string, value float64) (Weights, error) {
	v := clamp01(value)
	switch key {
	case KeyDevRank:
		w.DevRank = v
	case KeyStars:
		w.Stars = v
	case KeyActivity:
		w.Activity = v
	case KeyFollowers:
		w.Followers = v
	default:
		return w, fmt.Errorf("unknown weight %q", key)
	}
	return Normalize(w), nil
}

// ParseWeights reads "devrank,stars,activity,followers" and normalizes it.
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Weights{}, fmt.Errorf("weights must have 4 comma-separated values, got %d", len(parts))
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Weights{}, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, fmt.Errorf("weight %q must be a finite number", p)
		}
		if v < 0 {
			return Weights{}, fmt.Errorf("weight %q must be non-negative", p)
		}
		vals[i] = v
	}

	return Normalize(Weights{DevRank: vals[0], Stars: vals[1], Activity: vals[2], Followers: vals[3]}), nil
}

func (w Weights) String() string {
	return fmt.Sprintf("devrank=%.2f stars=%.2f activity=%.2f followers=%.2f", w.DevRank, w.Stars, w.Activity, w.Followers)
}
