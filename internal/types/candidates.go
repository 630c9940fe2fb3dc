// Package types defines the JSON request and response bodies of the pipeline
// API.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-scout/internal/db"
)

var jsonNull = []byte("null")

// FlexibleID accepts a JSON string or number and keeps it as text. GitHub ids
// arrive as numbers from some clients and as strings from others.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("github_id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("github_id must be an integer: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// SaveCandidateRequest is the body of POST /pipeline.
type SaveCandidateRequest struct {
	Login         string     `json:"login" validate:"required"`
	GithubID      FlexibleID `json:"github_id" validate:"required"`
	DisplayName   *string    `json:"display_name"`
	AvatarURL     *string    `json:"avatar_url"`
	Bio           *string    `json:"bio"`
	Company       *string    `json:"company"`
	Location      *string    `json:"location"`
	TopLanguages  []string   `json:"top_languages"`
	DevRankScore  *float64   `json:"devrank_score"`
	FollowerCount *int       `json:"follower_count"`
	TotalStars    *int       `json:"total_stars"`
	Notes         *string    `json:"notes"`
	Tags          []string   `json:"tags"`
}

// Validate validates the SaveCandidateRequest using the validator.
func (r *SaveCandidateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Input converts the request into a store upsert.
func (r *SaveCandidateRequest) Input() db.SavedCandidateInput {
	return db.SavedCandidateInput{
		Login:         r.Login,
		GithubID:      string(r.GithubID),
		DisplayName:   r.DisplayName,
		AvatarURL:     r.AvatarURL,
		Bio:           r.Bio,
		Company:       r.Company,
		Location:      r.Location,
		TopLanguages:  r.TopLanguages,
		DevRankScore:  r.DevRankScore,
		FollowerCount: r.FollowerCount,
		TotalStars:    r.TotalStars,
		Notes:         r.Notes,
		Tags:          r.Tags,
	}
}

// OptionalString distinguishes an absent field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, jsonNull) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// OptionalStrings distinguishes an absent list from an explicit null.
type OptionalStrings struct {
	Set   bool
	Value []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalStrings) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, jsonNull) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// CandidateUpdateRequest is the body of PATCH /pipeline/{login}.
type CandidateUpdateRequest struct {
	Notes OptionalString  `json:"notes"`
	Tags  OptionalStrings `json:"tags"`
}

// Patch converts the request into a store update. A null tags value clears
// the list.
func (r *CandidateUpdateRequest) Patch() db.CandidatePatch {
	p := db.CandidatePatch{
		Notes:    r.Notes.Value,
		SetNotes: r.Notes.Set,
		SetTags:  r.Tags.Set,
		Tags:     r.Tags.Value,
	}
	if p.SetTags && p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

// RemoveCandidateResponse is the body returned by DELETE /pipeline/{login}.
type RemoveCandidateResponse struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}

// OwnerResponse carries a freshly issued pipeline owner id.
type OwnerResponse struct {
	OwnerID string `json:"ownerId"`
	Header  string `json:"header"`
}
