package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/debemdeboas/the-press/internal/authoring"
)

type MemorySessionRepository struct {
	sessions sync.Map
	count    atomic.Int64
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

func (m *MemorySessionRepository) Store(f *authoring.Form) {
	if _, loaded := m.sessions.Swap(f.ID(), f); !loaded {
		m.count.Add(1)
	}
}

func (m *MemorySessionRepository) Get(id string) (*authoring.Form, error) {
	if f, ok := m.sessions.Load(id); ok {
		return f.(*authoring.Form), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Delete drops the session and releases its subscriptions.
func (m *MemorySessionRepository) Delete(id string) {
	if f, ok := m.sessions.LoadAndDelete(id); ok {
		m.count.Add(-1)
		f.(*authoring.Form).Close()
	}
}

func (m *MemorySessionRepository) Len() int {
	return int(m.count.Load())
}

// MemoryDraftRepository keeps drafts for the lifetime of the process. It
// backs the console when no database path is configured, and the tests.
type MemoryDraftRepository struct {
	drafts sync.Map
}

func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{}
}

func (r *MemoryDraftRepository) SaveDraft(_ context.Context, d *Draft) error {
	stored := *d
	stored.Post = d.Post.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	r.drafts.Store(d.Key, &stored)
	return nil
}

func (r *MemoryDraftRepository) GetDraft(_ context.Context, key string) (*Draft, error) {
	if d, ok := r.drafts.Load(key); ok {
		c := *d.(*Draft)
		c.Post = c.Post.Clone()
		return &c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
}

func (r *MemoryDraftRepository) ListDrafts(_ context.Context) ([]Draft, error) {
	var drafts []Draft
	r.drafts.Range(func(_, v any) bool {
		drafts = append(drafts, *v.(*Draft))
		return true
	})
	sortDrafts(drafts)
	return drafts, nil
}

func (r *MemoryDraftRepository) DeleteDraft(_ context.Context, key string) error {
	r.drafts.Delete(key)
	return nil
}

func sortDrafts(drafts []Draft) {
	slices.SortStableFunc(drafts, func(a, b Draft) int {
		return -a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
