package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DeclaresOwnerLoginUniqueness(t *testing.T) {
	ddl := Schema()

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS saved_candidates")
	assert.Contains(t, ddl, "UNIQUE (owner_id, login)")
	assert.Contains(t, ddl, "DEFAULT 'legacy'")
	for _, col := range strings.Split(savedCandidateColumns, ",") {
		col = strings.TrimSpace(col)
		assert.Contains(t, ddl, col, "schema should declare column %s", col)
	}
}

func TestCandidatePatch_Empty(t *testing.T) {
	notes := "strong reviewer"

	tests := []struct {
		name  string
		patch CandidatePatch
		want  bool
	}{
		{"nothing set", CandidatePatch{}, true},
		{"value without flag is ignored", CandidatePatch{Notes: &notes}, true},
		{"notes cleared", CandidatePatch{SetNotes: true}, false},
		{"tags replaced", CandidatePatch{SetTags: true, Tags: []string{"go"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.patch.Empty())
		})
	}
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}

func TestSavedCandidateType(t *testing.T) {
	c := SavedCandidate{
		OwnerID: DefaultOwnerID,
		Login:   "octocat",
	}

	assert.Equal(t, "legacy", c.OwnerID)
	assert.Nil(t, c.Notes)
	assert.Nil(t, c.DevRankScore)
}
