package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const savedCandidateColumns = `id, owner_id, login, github_id, display_name, avatar_url, bio, company,
	location, top_languages, devrank_score, follower_count, total_stars, notes, tags,
	created_at, updated_at`

// ListSavedCandidates returns an owner's saved candidates, newest first.
func (db *DB) ListSavedCandidates(ctx context.Context, ownerID string) ([]SavedCandidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+savedCandidateColumns+`
		 FROM saved_candidates
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, login`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]SavedCandidate, 0)
	for rows.Next() {
		c, err := scanSavedCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list saved candidates: %w", err)
	}

	return candidates, nil
}

// UpsertSavedCandidate inserts or replaces the owner's candidate with the same
// login. created_at is kept on conflict; updated_at is always refreshed.
func (db *DB) UpsertSavedCandidate(ctx context.Context, ownerID string, in SavedCandidateInput) (*SavedCandidate, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO saved_candidates (owner_id, login, github_id, display_name, avatar_url, bio, company,
		                               location, top_languages, devrank_score, follower_count, total_stars,
		                               notes, tags, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		 ON CONFLICT (owner_id, login) DO UPDATE SET
		     github_id      = EXCLUDED.github_id,
		     display_name   = EXCLUDED.display_name,
		     avatar_url     = EXCLUDED.avatar_url,
		     bio            = EXCLUDED.bio,
		     company        = EXCLUDED.company,
		     location       = EXCLUDED.location,
		     top_languages  = EXCLUDED.top_languages,
		     devrank_score  = EXCLUDED.devrank_score,
		     follower_count = EXCLUDED.follower_count,
		     total_stars    = EXCLUDED.total_stars,
		     notes          = EXCLUDED.notes,
		     tags           = EXCLUDED.tags,
		     updated_at     = NOW()
		 RETURNING `+savedCandidateColumns,
		ownerID, in.Login, in.GithubID, in.DisplayName, in.AvatarURL, in.Bio, in.Company,
		in.Location, nonNil(in.TopLanguages), in.DevRankScore, in.FollowerCount, in.TotalStars,
		in.Notes, nonNil(in.Tags),
	)

	c, err := scanSavedCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save candidate %s: %w", in.Login, err)
	}
	return c, nil
}

// UpdateSavedCandidate applies a partial update to the owner's candidate.
// It returns ErrNotFound when the owner has no candidate with that login.
func (db *DB) UpdateSavedCandidate(ctx context.Context, ownerID, login string, patch CandidatePatch) (*SavedCandidate, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE saved_candidates
		 SET notes      = CASE WHEN $3::boolean THEN $4::text ELSE notes END,
		     tags       = CASE WHEN $5::boolean THEN $6::text[] ELSE tags END,
		     updated_at = NOW()
		 WHERE owner_id = $1 AND login = $2
		 RETURNING `+savedCandidateColumns,
		ownerID, login, patch.SetNotes, patch.Notes, patch.SetTags, nonNil(patch.Tags),
	)

	c, err := scanSavedCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update candidate %s: %w", login, err)
	}
	return c, nil
}

// DeleteSavedCandidate removes the owner's candidate. Deleting a missing row is
// not an error; the returned bool reports whether a row was removed.
func (db *DB) DeleteSavedCandidate(ctx context.Context, ownerID, login string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM saved_candidates WHERE owner_id = $1 AND login = $2`,
		ownerID, login,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate %s: %w", login, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSavedCandidate(row pgx.Row) (*SavedCandidate, error) {
	var c SavedCandidate
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Login, &c.GithubID, &c.DisplayName, &c.AvatarURL, &c.Bio, &c.Company,
		&c.Location, &c.TopLanguages, &c.DevRankScore, &c.FollowerCount, &c.TotalStars, &c.Notes, &c.Tags,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TopLanguages = nonNil(c.TopLanguages)
	c.Tags = nonNil(c.Tags)
	return &c, nil
}
