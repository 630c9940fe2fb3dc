// Package pipeline manages an owner's saved candidates on top of a Store and
// announces every change through an events.Publisher.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/events"
	"github.com/jonathan/talent-scout/internal/logging"
)

// HeaderOwnerID carries the anonymous per-browser owner id.
const HeaderOwnerID = "x-pipeline-owner-id"

// UnconfiguredMessage tells the operator how to enable the pipeline.
const UnconfiguredMessage = "Saving candidates is not set up. Set DATABASE_URL and run `talent_scout migrate` to save developers to your pipeline."

var (
	// ErrNotFound is returned when the owner has no candidate with the login.
	ErrNotFound = db.ErrNotFound
	// ErrStoreUnconfigured is returned by mutations when no store is configured.
	ErrStoreUnconfigured = errors.New("pipeline store not configured")
)

// Store persists saved candidates; *db.DB implements it.
type Store interface {
	ListSavedCandidates(ctx context.Context, ownerID string) ([]db.SavedCandidate, error)
	UpsertSavedCandidate(ctx context.Context, ownerID string, in db.SavedCandidateInput) (*db.SavedCandidate, error)
	UpdateSavedCandidate(ctx context.Context, ownerID, login string, patch db.CandidatePatch) (*db.SavedCandidate, error)
	DeleteSavedCandidate(ctx context.Context, ownerID, login string) (bool, error)
}

// PreconditionError reports missing required input.
type PreconditionError struct {
	Field   string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// UserMessage returns the sentence shown to the user for a failed operation.
func (e *StoreError) UserMessage() string {
	switch e.Op {
	case "list":
		return "We couldn't load your saved candidates. Please refresh the page."
	case "save":
		return "We couldn't save this developer to your pipeline. Please try again."
	case "update":
		return "We couldn't update the notes or tags. Please try again."
	case "remove":
		return "We couldn't remove this candidate. Please try again."
	default:
		return "Something went wrong with your pipeline. Please try again."
	}
}

// Service is the owner-scoped pipeline facade.
type Service struct {
	store     Store
	publisher events.Publisher
	log       *logging.Logger
}

// NewService creates a pipeline service. A nil store means the pipeline is not
// configured; pass an untyped nil, not a nil *db.DB.
func NewService(store Store, publisher events.Publisher, log *logging.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: store, publisher: publisher, log: log}
}

// Configured reports whether a backing store is available.
func (s *Service) Configured() bool {
	return s.store != nil
}

// List returns the owner's candidates, newest first. Without a store it
// returns an empty list.
func (s *Service) List(ctx context.Context, ownerID string) ([]db.SavedCandidate, error) {
	if s.store == nil {
		return []db.SavedCandidate{}, nil
	}
	candidates, err := s.store.ListSavedCandidates(ctx, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	if candidates == nil {
		candidates = []db.SavedCandidate{}
	}
	return candidates, nil
}

// Save upserts a candidate by (owner, login).
func (s *Service) Save(ctx context.Context, ownerID string, in db.SavedCandidateInput) (*db.SavedCandidate, error) {
	if s.store == nil {
		return nil, ErrStoreUnconfigured
	}
	in.Login = strings.TrimSpace(in.Login)
	in.GithubID = strings.TrimSpace(in.GithubID)
	if in.Login == "" || in.GithubID == "" {
		return nil, &PreconditionError{Field: "login", Message: "login and github_id required"}
	}

	saved, err := s.store.UpsertSavedCandidate(ctx, ownerID, in)
	if err != nil {
		return nil, &StoreError{Op: "save", Err: err}
	}
	s.publish(ctx, events.TypeCandidateSaved, ownerID, saved.Login)
	return saved, nil
}

// Update changes the notes and/or tags of an existing candidate.
func (s *Service) Update(ctx context.Context, ownerID, login string, patch db.CandidatePatch) (*db.SavedCandidate, error) {
	if s.store == nil {
		return nil, ErrStoreUnconfigured
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, &PreconditionError{Field: "login", Message: "login required"}
	}
	if patch.SetTags && patch.Tags == nil {
		patch.Tags = []string{}
	}

	updated, err := s.store.UpdateSavedCandidate(ctx, ownerID, login, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", login, ErrNotFound)
		}
		return nil, &StoreError{Op: "update", Err: err}
	}
	s.publish(ctx, events.TypeCandidateUpdated, ownerID, login)
	return updated, nil
}

// Remove deletes a candidate. Removing a login that is not saved is not an
// error; the bool reports whether anything was deleted.
func (s *Service) Remove(ctx context.Context, ownerID, login string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreUnconfigured
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return false, &PreconditionError{Field: "login", Message: "login required"}
	}

	removed, err := s.store.DeleteSavedCandidate(ctx, ownerID, login)
	if err != nil {
		return false, &StoreError{Op: "remove", Err: err}
	}
	if removed {
		s.publish(ctx, events.TypeCandidateRemoved, ownerID, login)
	}
	return removed, nil
}

// publish is best effort; a failed publish never fails the mutation.
func (s *Service) publish(ctx context.Context, typ, ownerID, login string) {
	err := s.publisher.Publish(ctx, events.Event{Type: typ, OwnerID: ownerID, Login: login})
	if err != nil {
		s.log.Warn("publish pipeline event failed", "type", typ, "owner", ownerID, "login", login, "err", err)
	}
}

// OwnerFromHeader returns the trimmed header value, or the legacy owner when
// the header is absent or blank.
func OwnerFromHeader(value string) string {
	if id := strings.TrimSpace(value); id != "" {
		return id
	}
	return db.DefaultOwnerID
}

// NewOwnerID issues a fresh anonymous owner id.
func NewOwnerID() string {
	return uuid.NewString()
}
