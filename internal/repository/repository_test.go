package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util/compression"
)

func newForm(t *testing.T) *authoring.Form {
	t.Helper()
	f, err := authoring.NewCreateForm(authoring.Deps{})
	if err != nil {
		t.Fatalf("Failed to create form: %v", err)
	}
	return f
}

func setupDraftRepos(t *testing.T) map[string]DraftRepository {
	t.Helper()
	sqlite := db.NewSQLite(db.MemoryPath)
	if err := sqlite.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]DraftRepository{
		"memory": NewMemoryDraftRepository(),
		"zstd":   NewDBDraftRepository(sqlite, compression.ZstdCompressor{}),
		"gzip":   NewDBDraftRepository(sqlite, compression.GzipCompressor{}),
	}
}

func TestSessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository()
	f := newForm(t)

	repo.Store(f)
	repo.Store(f)
	if repo.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", repo.Len())
	}

	got, err := repo.Get(f.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != f {
		t.Error("Expected the stored form back")
	}

	repo.Delete(f.ID())
	if repo.Len() != 0 {
		t.Errorf("Expected 0 sessions, got %d", repo.Len())
	}
	if _, err := repo.Get(f.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	// Deleting twice is harmless.
	repo.Delete(f.ID())
	if repo.Len() != 0 {
		t.Errorf("Expected 0 sessions after second delete, got %d", repo.Len())
	}
}

func TestDraftKey(t *testing.T) {
	f := newForm(t)
	if got, want := DraftKey(f), "new-"+f.ID(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	u, err := authoring.NewUpdateForm(authoring.Deps{}, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if got := DraftKey(u); got != "post-abc" {
		t.Errorf("Expected post-abc, got %q", got)
	}
}

func TestDraftRepositories(t *testing.T) {
	ctx := context.Background()

	for name, repo := range setupDraftRepos(t) {
		t.Run(name, func(t *testing.T) {
			key := "new-" + name
			post := model.NewPost()
			post.Title = "Hello"
			post.Content = "<p>world</p>"
			post.Tags = []model.Tag{{ID: "t1", Name: "go"}}

			older := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
			if err := repo.SaveDraft(ctx, &Draft{Key: "old-" + name, Mode: authoring.ModeCreate, Post: model.NewPost(), UpdatedAt: older}); err != nil {
				t.Fatalf("SaveDraft failed: %v", err)
			}
			if err := repo.SaveDraft(ctx, &Draft{Key: key, Mode: authoring.ModeCreate, Title: post.Title, Post: post}); err != nil {
				t.Fatalf("SaveDraft failed: %v", err)
			}

			got, err := repo.GetDraft(ctx, key)
			if err != nil {
				t.Fatalf("GetDraft failed: %v", err)
			}
			if got.Title != "Hello" || got.Post.Content != "<p>world</p>" {
				t.Errorf("Unexpected draft: %+v", got)
			}
			if len(got.Post.Tags) != 1 || got.Post.Tags[0].Name != "go" {
				t.Errorf("Expected tags to survive, got %+v", got.Post.Tags)
			}
			if got.Mode != authoring.ModeCreate {
				t.Errorf("Expected create mode, got %s", got.Mode)
			}

			// Saving again overwrites.
			post.Title = "Hello again"
			if err := repo.SaveDraft(ctx, &Draft{Key: key, Mode: authoring.ModeCreate, Title: post.Title, Post: post}); err != nil {
				t.Fatalf("SaveDraft failed: %v", err)
			}
			got, err = repo.GetDraft(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if got.Title != "Hello again" {
				t.Errorf("Expected overwritten title, got %q", got.Title)
			}

			drafts, err := repo.ListDrafts(ctx)
			if err != nil {
				t.Fatalf("ListDrafts failed: %v", err)
			}
			var keys []string
			for _, d := range drafts {
				keys = append(keys, d.Key)
			}
			idxNew, idxOld := indexOf(keys, key), indexOf(keys, "old-"+name)
			if idxNew < 0 || idxOld < 0 || idxNew > idxOld {
				t.Errorf("Expected %s before old-%s, got %v", key, name, keys)
			}

			if err := repo.DeleteDraft(ctx, key); err != nil {
				t.Fatalf("DeleteDraft failed: %v", err)
			}
			if _, err := repo.GetDraft(ctx, key); !errors.Is(err, ErrDraftNotFound) {
				t.Errorf("Expected ErrDraftNotFound, got %v", err)
			}
		})
	}
}

func TestDraftReadWithOtherCodec(t *testing.T) {
	ctx := context.Background()
	sqlite := db.NewSQLite(db.MemoryPath)
	if err := sqlite.Init(ctx); err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close()

	post := model.NewPost()
	post.Title = "Switched"
	if err := NewDBDraftRepository(sqlite, compression.GzipCompressor{}).SaveDraft(ctx, &Draft{Key: "k", Mode: authoring.ModeCreate, Post: post}); err != nil {
		t.Fatal(err)
	}

	got, err := NewDBDraftRepository(sqlite, compression.ZstdCompressor{}).GetDraft(ctx, "k")
	if err != nil {
		t.Fatalf("Expected a gzip draft to load under zstd config: %v", err)
	}
	if got.Post.Title != "Switched" {
		t.Errorf("Expected title Switched, got %q", got.Post.Title)
	}
}

func TestAutosaver(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDraftRepository()
	saver := NewAutosaver(repo, 10*time.Millisecond)
	f := newForm(t)
	stop := saver.Watch(f)
	defer stop()

	f.SetTitle("Autosaved title")

	deadline := time.Now().Add(2 * time.Second)
	var d *Draft
	for time.Now().Before(deadline) {
		var err error
		if d, err = repo.GetDraft(ctx, DraftKey(f)); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if d == nil {
		t.Fatal("Expected the draft to be autosaved")
	}
	if d.Title != "Autosaved title" || d.Post.Slug != "autosaved-title" {
		t.Errorf("Unexpected draft: %+v", d.Post)
	}
}

func TestAutosaverStop(t *testing.T) {
	repo := NewMemoryDraftRepository()
	saver := NewAutosaver(repo, time.Hour)
	f := newForm(t)
	stop := saver.Watch(f)

	f.SetTitle("pending")
	if saver.Pending() != 1 {
		t.Errorf("Expected 1 pending write, got %d", saver.Pending())
	}
	stop()
	if saver.Pending() != 0 {
		t.Errorf("Expected stop to cancel the pending write, got %d", saver.Pending())
	}

	f.SetTitle("after stop")
	if saver.Pending() != 0 {
		t.Error("Expected no writes after stop")
	}
}

type publishBackend struct{}

func (publishBackend) GetPost(context.Context, model.PostID) (*model.Post, error) {
	return nil, errors.New("no posts")
}
func (publishBackend) ListTags(context.Context) ([]model.Tag, error) { return nil, nil }
func (publishBackend) ListAuthors(context.Context) ([]model.Author, error) { return nil, nil }
func (publishBackend) ListMedia(context.Context) ([]model.MediaItem, error) { return nil, nil }
func (publishBackend) UpdatePost(_ context.Context, p *model.Post) (*model.Post, error) { return p, nil }
func (publishBackend) CreatePost(_ context.Context, in model.PostInput) (*model.Post, error) {
	return &model.Post{ID: "p1", Title: in.Title, Status: in.Status}, nil
}

// gatedDrafts holds every SaveDraft until release is closed.
type gatedDrafts struct {
	*MemoryDraftRepository
	started chan struct{}
	release chan struct{}
}

func (g *gatedDrafts) SaveDraft(ctx context.Context, d *Draft) error {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.release
	return g.MemoryDraftRepository.SaveDraft(ctx, d)
}

func TestAutosaverSavedWinsOverRunningWrite(t *testing.T) {
	ctx := context.Background()
	repo := &gatedDrafts{
		MemoryDraftRepository: NewMemoryDraftRepository(),
		started:               make(chan struct{}, 1),
		release:               make(chan struct{}),
	}
	saver := NewAutosaver(repo, time.Millisecond)
	f, err := authoring.NewCreateForm(authoring.Deps{Backend: publishBackend{}})
	if err != nil {
		t.Fatal(err)
	}
	stop := saver.Watch(f)
	defer stop()

	f.SetTitle("Going out")
	select {
	case <-repo.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the autosave write to start")
	}

	published := make(chan error, 1)
	go func() { published <- f.Publish(ctx) }()
	// Let the saved change reach the autosaver while the write is held.
	time.Sleep(20 * time.Millisecond)
	close(repo.release)

	if err := <-published; err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if _, err := repo.GetDraft(ctx, DraftKey(f)); err == nil {
		t.Error("Expected no draft left behind for a published post")
	}
	if saver.Pending() != 0 {
		t.Errorf("Expected no pending writes, got %d", saver.Pending())
	}
}

func TestAutosaverSkipsCancelledWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDraftRepository()
	saver := NewAutosaver(repo, time.Hour)
	f := newForm(t)
	stop := saver.Watch(f)

	f.SetTitle("never written")
	saver.mu.Lock()
	timer := saver.timers[DraftKey(f)]
	saver.mu.Unlock()
	stop()

	// A stopped timer that fires anyway must not write.
	if timer == nil {
		t.Fatal("Expected a scheduled write")
	}
	timer.Reset(0)
	time.Sleep(20 * time.Millisecond)
	if _, err := repo.GetDraft(ctx, DraftKey(f)); err == nil {
		t.Error("Expected the cancelled write to be skipped")
	}
}

func TestAutosaverSaveNow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDraftRepository()
	saver := NewAutosaver(repo, 0)
	f := newForm(t)
	f.SetDescription("desc")

	if err := saver.Save(ctx, f); err != nil {
		t.Fatal(err)
	}
	d, err := repo.GetDraft(ctx, DraftKey(f))
	if err != nil {
		t.Fatal(err)
	}
	if d.Post.Description != "desc" {
		t.Errorf("Expected description desc, got %q", d.Post.Description)
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
