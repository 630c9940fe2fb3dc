// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/pipeline"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// ownerIDKey is the context key for the resolved pipeline owner.
const ownerIDKey contextKey = "ownerID"

// Owner resolves the pipeline owner from the x-pipeline-owner-id header and
// adds it to the request context. Requests without the header belong to the
// legacy owner.
func Owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := pipeline.OwnerFromHeader(r.Header.Get(pipeline.HeaderOwnerID))
		ctx := context.WithValue(r.Context(), ownerIDKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID returns the owner stored by Owner, or the legacy owner when the
// middleware did not run.
func GetOwnerID(r *http.Request) string {
	if owner, ok := r.Context().Value(ownerIDKey).(string); ok && owner != "" {
		return owner
	}
	return db.DefaultOwnerID
}

