package repository

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/the-press/internal/authoring"
)

const DefaultAutosaveDelay = 2 * time.Second

// Autosaver writes a form's post to a DraftRepository a short while after
// its last edit, and drops the draft once the form saves.
type Autosaver struct {
	repo  DraftRepository
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	// gens is bumped on every cancel; a timer whose generation is stale
	// must not write.
	gens map[string]uint64

	// writes orders timed draft writes against draft deletion.
	writes sync.Mutex
}

func NewAutosaver(repo DraftRepository, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		repo:   repo,
		delay:  delay,
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// Watch subscribes to f. The returned func stops watching and cancels a
// pending write.
func (a *Autosaver) Watch(f *authoring.Form) func() {
	key := DraftKey(f)
	dispose := f.Subscribe(func(c authoring.Change) {
		switch c.Kind {
		case authoring.ChangeFields, authoring.ChangeContent:
			a.schedule(key, f)
		case authoring.ChangeSaved:
			a.cancel(key)
			a.writes.Lock()
			defer a.writes.Unlock()
			if err := a.repo.DeleteDraft(context.Background(), key); err != nil {
				repoLogger.Error().Err(err).Str("draft", key).Msg("Error deleting draft")
			}
		}
	})
	return func() {
		dispose()
		a.cancel(key)
	}
}

func (a *Autosaver) schedule(key string, f *authoring.Form) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[key]; ok {
		t.Reset(a.delay)
		return
	}
	gen := a.gens[key]
	a.timers[key] = time.AfterFunc(a.delay, func() {
		a.writes.Lock()
		defer a.writes.Unlock()

		a.mu.Lock()
		live := a.gens[key] == gen
		if live {
			delete(a.timers, key)
		}
		a.mu.Unlock()
		if !live {
			return
		}
		if err := a.Save(context.Background(), f); err != nil {
			repoLogger.Error().Err(err).Str("draft", key).Msg("Error autosaving draft")
		}
	})
}

func (a *Autosaver) cancel(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gens[key]++
	if t, ok := a.timers[key]; ok {
		t.Stop()
		delete(a.timers, key)
	}
}

// Save writes the form's current post right away.
func (a *Autosaver) Save(ctx context.Context, f *authoring.Form) error {
	p := f.Post()
	return a.repo.SaveDraft(ctx, &Draft{
		Key:    DraftKey(f),
		PostID: f.Target(),
		Mode:   f.Mode(),
		Title:  p.Title,
		Post:   p,
	})
}

func (a *Autosaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}
