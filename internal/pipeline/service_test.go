package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/events"
)

// memStore is an in-memory Store keyed by owner and login.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]map[string]*db.SavedCandidate
	clock time.Time
	err   error
}

func newMemStore() *memStore {
	return &memStore{
		rows:  map[string]map[string]*db.SavedCandidate{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) ListSavedCandidates(_ context.Context, ownerID string) ([]db.SavedCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []db.SavedCandidate
	for _, c := range m.rows[ownerID] {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpsertSavedCandidate(_ context.Context, ownerID string, in db.SavedCandidateInput) (*db.SavedCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.rows[ownerID] == nil {
		m.rows[ownerID] = map[string]*db.SavedCandidate{}
	}
	now := m.tick()
	existing := m.rows[ownerID][in.Login]
	c := &db.SavedCandidate{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Login:        in.Login,
		GithubID:     in.GithubID,
		DisplayName:  in.DisplayName,
		Notes:        in.Notes,
		TopLanguages: orEmpty(in.TopLanguages),
		Tags:         orEmpty(in.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing != nil {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	m.rows[ownerID][in.Login] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateSavedCandidate(_ context.Context, ownerID, login string, patch db.CandidatePatch) (*db.SavedCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c := m.rows[ownerID][login]
	if c == nil {
		return nil, db.ErrNotFound
	}
	if patch.SetNotes {
		c.Notes = patch.Notes
	}
	if patch.SetTags {
		c.Tags = patch.Tags
	}
	c.UpdatedAt = m.tick()
	cp := *c
	return &cp, nil
}

func (m *memStore) DeleteSavedCandidate(_ context.Context, ownerID, login string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.rows[ownerID][login]; !ok {
		return false, nil
	}
	delete(m.rows[ownerID], login)
	return true, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func strp(s string) *string { return &s }

func TestSave_ThenList(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(newMemStore(), pub, nil)

	_, err := svc.Save(ctx, "owner-a", db.SavedCandidateInput{Login: "ada", GithubID: "1"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ada", list[0].Login)
	assert.Nil(t, list[0].Notes)
	assert.Equal(t, []string{}, list[0].Tags)

	second, err := svc.Save(ctx, "owner-a", db.SavedCandidateInput{Login: "ada", GithubID: "1", Notes: strp("again")})
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, second.ID)

	list, err = svc.List(ctx, "owner-a")
	require.NoError(t, err)
	assert.Len(t, list, 1, "second save must update rather than duplicate")

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TypeCandidateSaved, pub.events[0].Type)
	assert.Equal(t, "owner-a", pub.events[0].OwnerID)
}

func TestSave_RequiresLoginAndGithubID(t *testing.T) {
	tests := []struct {
		name string
		in   db.SavedCandidateInput
	}{
		{"missing login", db.SavedCandidateInput{GithubID: "1"}},
		{"missing github id", db.SavedCandidateInput{Login: "ada"}},
		{"blank login", db.SavedCandidateInput{Login: "  ", GithubID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewService(store, nil, nil)

			_, err := svc.Save(context.Background(), "owner", tt.in)
			var pe *PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.Empty(t, store.rows)
		})
	}
}

func TestList_IsOwnerScopedAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), nil, nil)

	for _, login := range []string{"first", "second", "third"} {
		_, err := svc.Save(ctx, "owner-a", db.SavedCandidateInput{Login: login, GithubID: login})
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, "owner-b", db.SavedCandidateInput{Login: "other", GithubID: "9"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "owner-a")
	require.NoError(t, err)
	var logins []string
	for _, c := range list {
		logins = append(logins, c.Login)
	}
	assert.Equal(t, []string{"third", "second", "first"}, logins)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(newMemStore(), pub, nil)

	_, err := svc.Update(ctx, "owner", "ada", db.CandidatePatch{SetTags: true, Tags: []string{"x", "y"}})
	assert.ErrorIs(t, err, ErrNotFound)

	saved, err := svc.Save(ctx, "owner", db.SavedCandidateInput{Login: "ada", GithubID: "1", Notes: strp("keep me")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "owner", "ada", db.CandidatePatch{SetTags: true, Tags: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, updated.Tags)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "keep me", *updated.Notes)
	assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))

	assert.Equal(t, events.TypeCandidateUpdated, pub.events[len(pub.events)-1].Type)
}

func TestUpdate_OtherOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), nil, nil)

	_, err := svc.Save(ctx, "owner-a", db.SavedCandidateInput{Login: "ada", GithubID: "1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "owner-b", "ada", db.CandidatePatch{SetNotes: true, Notes: strp("hi")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_NullTagsBecomeEmpty(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), nil, nil)

	_, err := svc.Save(ctx, "owner", db.SavedCandidateInput{Login: "ada", GithubID: "1", Tags: []string{"a"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "owner", "ada", db.CandidatePatch{SetTags: true})
	require.NoError(t, err)
	assert.Equal(t, []string{}, updated.Tags)
}

func TestRemove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(newMemStore(), pub, nil)

	_, err := svc.Save(ctx, "owner", db.SavedCandidateInput{Login: "ada", GithubID: "1"})
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, "owner", "ada")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, "owner", "ada")
	require.NoError(t, err)
	assert.False(t, removed)

	require.Len(t, pub.events, 2, "only the effective removal publishes")
	assert.Equal(t, events.TypeCandidateRemoved, pub.events[1].Type)
}

func TestUnconfiguredStore(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, nil)

	assert.False(t, svc.Configured())

	list, err := svc.List(ctx, "owner")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.Save(ctx, "owner", db.SavedCandidateInput{})
	assert.ErrorIs(t, err, ErrStoreUnconfigured, "configuration is checked before input")

	_, err = svc.Update(ctx, "owner", "ada", db.CandidatePatch{})
	assert.ErrorIs(t, err, ErrStoreUnconfigured)

	_, err = svc.Remove(ctx, "owner", "ada")
	assert.ErrorIs(t, err, ErrStoreUnconfigured)
}

func TestStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.err = errors.New("connection reset")
	svc := NewService(store, nil, nil)

	tests := []struct {
		name string
		call func() error
		op   string
	}{
		{"list", func() error { _, err := svc.List(ctx, "o"); return err }, "list"},
		{"save", func() error {
			_, err := svc.Save(ctx, "o", db.SavedCandidateInput{Login: "a", GithubID: "1"})
			return err
		}, "save"},
		{"update", func() error { _, err := svc.Update(ctx, "o", "a", db.CandidatePatch{}); return err }, "update"},
		{"remove", func() error { _, err := svc.Remove(ctx, "o", "a"); return err }, "remove"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var se *StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.op, se.Op)
			assert.ErrorIs(t, err, store.err)
			assert.NotEmpty(t, se.UserMessage())
		})
	}
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewService(newMemStore(), pub, nil)

	saved, err := svc.Save(context.Background(), "owner", db.SavedCandidateInput{Login: "ada", GithubID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "ada", saved.Login)
	assert.Len(t, pub.events, 1)
}

func TestOwnerFromHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "legacy"},
		{"   ", "legacy"},
		{" 9b2f ", "9b2f"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OwnerFromHeader(tt.in), "input %q", tt.in)
	}
}

func TestNewOwnerID(t *testing.T) {
	a, b := NewOwnerID(), NewOwnerID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
