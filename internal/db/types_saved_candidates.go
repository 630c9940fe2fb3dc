package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultOwnerID scopes rows written before per-browser owner ids existed.
const DefaultOwnerID = "legacy"

// SavedCandidate is a developer saved into an owner's pipeline. The descriptive
// fields are a snapshot taken at save time.
type SavedCandidate struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Login         string    `json:"login"`
	GithubID      string    `json:"github_id"`
	DisplayName   *string   `json:"display_name"`
	AvatarURL     *string   `json:"avatar_url"`
	Bio           *string   `json:"bio"`
	Company       *string   `json:"company"`
	Location      *string   `json:"location"`
	TopLanguages  []string  `json:"top_languages"`
	DevRankScore  *float64  `json:"devrank_score"`
	FollowerCount *int      `json:"follower_count"`
	TotalStars    *int      `json:"total_stars"`
	Notes         *string   `json:"notes"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SavedCandidateInput is the full set of writable fields for an upsert.
// Unset optional fields are stored as NULL or an empty list.
type SavedCandidateInput struct {
	Login         string
	GithubID      string
	DisplayName   *string
	AvatarURL     *string
	Bio           *string
	Company       *string
	Location      *string
	TopLanguages  []string
	DevRankScore  *float64
	FollowerCount *int
	TotalStars    *int
	Notes         *string
	Tags          []string
}

// CandidatePatch is a partial update of the user-authored fields. Only fields
// whose Set flag is true are written.
type CandidatePatch struct {
	Notes    *string
	SetNotes bool
	Tags     []string
	SetTags  bool
}

// Empty reports whether the patch changes nothing besides updated_at.
func (p CandidatePatch) Empty() bool {
	return !p.SetNotes && !p.SetTags
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
