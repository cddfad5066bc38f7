package console

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/media"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/routes"
	"github.com/debemdeboas/the-press/internal/sse"
)

type fakeBackend struct {
	mu sync.Mutex

	post    *model.Post
	tags    []model.Tag
	authors []model.Author
	media   []model.MediaItem
	stats   *model.Stats

	listErr error
	created []model.PostInput
	updated []*model.Post
	deleted []model.PostID
	newTags []model.Tag
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		post: &model.Post{
			ID:        "p1",
			Title:     "Existing",
			Slug:      "existing",
			Content:   "<p>body</p>",
			Status:    model.StatusPublished,
			UpdatedAt: time.Now().Add(-time.Hour),
		},
		tags:    []model.Tag{{ID: "t1", Name: "Go", Slug: "go"}, {ID: "t2", Name: "Rust", Slug: "rust"}},
		authors: []model.Author{{ID: "a1", Name: "Ada"}},
		media:   []model.MediaItem{{ID: "m1", URL: "https://cdn.test/a.jpg", Title: "A", AltText: "Alt A"}},
		stats:   &model.Stats{Posts: 3, Tags: 2, Recent: []model.RecentPost{{ID: "p1", Title: "Existing"}}},
	}
}

func (b *fakeBackend) GetPost(context.Context, model.PostID) (*model.Post, error) {
	return b.post.Clone(), nil
}

func (b *fakeBackend) ListTags(context.Context) ([]model.Tag, error) { return b.tags, nil }

func (b *fakeBackend) ListAuthors(context.Context) ([]model.Author, error) { return b.authors, nil }

func (b *fakeBackend) ListMedia(context.Context) ([]model.MediaItem, error) { return b.media, nil }

func (b *fakeBackend) CreatePost(_ context.Context, in model.PostInput) (*model.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, in)
	return &model.Post{ID: "new", Title: in.Title, Status: in.Status}, nil
}

func (b *fakeBackend) UpdatePost(_ context.Context, p *model.Post) (*model.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, p.Clone())
	return p.Clone(), nil
}

func (b *fakeBackend) ListPosts(context.Context, int) (*model.PostPage, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return &model.PostPage{Posts: []model.Post{*b.post}, Page: 1, Total: 1}, nil
}

func (b *fakeBackend) DeletePost(_ context.Context, id model.PostID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *fakeBackend) RestorePost(context.Context, model.PostID) error { return nil }

func (b *fakeBackend) CreateTag(_ context.Context, name, slug string) (*model.Tag, error) {
	t := model.Tag{ID: "t3", Name: name, Slug: slug}
	b.newTags = append(b.newTags, t)
	return &t, nil
}

func (b *fakeBackend) UpdateTag(_ context.Context, t model.Tag) (*model.Tag, error) { return &t, nil }

func (b *fakeBackend) DeleteTag(context.Context, string) error { return nil }

func (b *fakeBackend) CreateAuthor(_ context.Context, a model.NewAuthor) (*model.Author, error) {
	return &model.Author{ID: "a2", Name: a.Name, Role: a.Role}, nil
}

func (b *fakeBackend) Stats(context.Context) (*model.Stats, error) { return b.stats, nil }

type fakeSigner struct {
	err error
}

func (s *fakeSigner) SignIn(context.Context, api.Credentials) (string, error) {
	return "opaque-token", s.err
}

type fakeUploader struct {
	got media.File
}

func (u *fakeUploader) Upload(_ context.Context, f media.File) (*model.MediaItem, error) {
	u.got = f
	return &model.MediaItem{ID: "m2", URL: "https://cdn.test/" + f.Filename, Title: f.Title, AltText: f.AltText}, nil
}

type harness struct {
	*Server
	backend *fakeBackend
	signer  *fakeSigner
	store   *auth.TokenStore
	drafts  *repository.MemoryDraftRepository
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sqlite := db.NewSQLite(db.MemoryPath)
	require.NoError(t, sqlite.Init(context.Background()))
	t.Cleanup(func() { sqlite.Close() })

	h := &harness{
		backend: newBackend(),
		signer:  &fakeSigner{},
		store:   auth.NewTokenStore(sqlite),
		drafts:  repository.NewMemoryDraftRepository(),
	}
	s, err := New(Deps{
		Backend:  h.backend,
		Auth:     auth.NewProvider(h.store, h.signer),
		Media:    media.NewService(&fakeUploader{}, media.ProcessOptions{}),
		Sessions: repository.NewMemorySessionRepository(),
		Drafts:   h.drafts,
		Clients:  sse.NewSSEClients(),
		Toolbar:  editor.NewToolbar(),
		Files:    os.DirFS("../.."),
	})
	require.NoError(t, err)
	h.Server = s
	h.handler = s.Handler()
	return h
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.Save(context.Background(), "opaque-token", "ed@example.com"))
}

func (h *harness) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post sends an htmx form post.
func (h *harness) post(path string, values url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set(config.HCType, "application/x-www-form-urlencoded")
	r.Header.Set(config.HHxRequest, "true")
	return h.do(r)
}

// openEditor starts a session at path and returns its id.
func (h *harness) openEditor(t *testing.T, path string) string {
	t.Helper()
	w := h.get(path)
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, config.EditorURLPath), "unexpected redirect %q", loc)
	return strings.TrimPrefix(loc, config.EditorURLPath)
}

func (h *harness) form(t *testing.T, session string) *authoring.Form {
	t.Helper()
	f, err := h.Sessions.Get(session)
	require.NoError(t, err)
	return f
}

func TestRequiresSignIn(t *testing.T) {
	h := newHarness(t)

	w := h.get("/posts?page=2")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin?next=%2Fposts%3Fpage%3D2", w.Header().Get("Location"))

	w = h.get(routes.Path(routes.SignIn))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="password"`)
	assert.NotEmpty(t, w.Header().Get(config.HETag))
}

func TestSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		w := h.post("/signin", url.Values{"email": {"ed@example.com"}, "password": {"pw"}, "next": {"/tags"}})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "/tags", w.Header().Get(config.HHxRedirect))

		email, err := h.store.Email(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ed@example.com", email)
	})

	t.Run("offsite next falls back to the dashboard", func(t *testing.T) {
		h := newHarness(t)
		w := h.post("/signin", url.Values{"email": {"ed@example.com"}, "password": {"pw"}, "next": {"//evil.test"}})
		assert.Equal(t, config.DashboardURLPath, w.Header().Get(config.HHxRedirect))
	})

	t.Run("failure then lockout", func(t *testing.T) {
		h := newHarness(t)
		h.signer.err = errors.New("bad credentials")
		creds := url.Values{"email": {"ed@example.com"}, "password": {"nope"}}

		for range 5 {
			w := h.post("/signin", creds)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), config.ErrSignIn)
		}
		w := h.post("/signin", creds)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), MsgTooManyAttempts)
	})
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	require.NoError(t, h.drafts.SaveDraft(context.Background(), &repository.Draft{
		Key:       "new-abc",
		Mode:      authoring.ModeCreate,
		Title:     "Half written",
		Post:      model.NewPost(),
		UpdatedAt: time.Now(),
	}))

	w := h.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Half written")
	assert.Contains(t, body, "/editor/draft/new-abc")
	assert.Contains(t, body, "ed@example.com")
}

func TestPosts(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.get("/posts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Existing")

	r := httptest.NewRequest(http.MethodDelete, "/posts/p1", nil)
	r.Header.Set(config.HHxRequest, "true")
	w = h.do(r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, config.PostsURLPath, w.Header().Get(config.HHxRedirect))
	assert.Equal(t, []model.PostID{"p1"}, h.backend.deleted)

	// The notice rides along to the next page.
	var notice *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == config.CookieNotice {
			notice = c
		}
	}
	require.NotNil(t, notice)
	r = httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.AddCookie(notice)
	w = h.do(r)
	assert.Contains(t, w.Body.String(), MsgPostDeleted)
}

func TestPostsAPIFailure(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.backend.listErr = api.ErrUnauthorized
	w := h.get("/posts")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), config.SignInURLPath)
}

func TestTagCreateDerivesSlug(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.post("/tags", url.Values{"name": {"Distributed Systems"}})
	assert.Equal(t, config.TagsURLPath, w.Header().Get(config.HHxRedirect))
	require.Len(t, h.backend.newTags, 1)
	assert.Equal(t, "distributed-systems", h.backend.newTags[0].Slug)

	w = h.post("/tags", url.Values{"name": {"  "}})
	assert.Equal(t, config.TagsURLPath, w.Header().Get(config.HHxRedirect))
	assert.Len(t, h.backend.newTags, 1)
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMediaUpload(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	body, ctype := multipartBody(t, map[string]string{"title": "Photo"}, pngFile(t))
	r := httptest.NewRequest(http.MethodPost, "/media", body)
	r.Header.Set(config.HCType, ctype)
	w := h.do(r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Values("Set-Cookie")[0], url.QueryEscape("error:"+config.ErrMediaTitleRequired))

	body, ctype = multipartBody(t, map[string]string{"title": "Photo", "alt": "A photo"}, pngFile(t))
	r = httptest.NewRequest(http.MethodPost, "/media", body)
	r.Header.Set(config.HCType, ctype)
	w = h.do(r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Values("Set-Cookie")[0], url.QueryEscape("success:"+MsgMediaUploaded))
}

func TestEditorCreateSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	session := h.openEditor(t, "/editor/new")

	w := h.get(routes.Editor(session))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="`+editor.DefaultSurfaceID+`"`)
	assert.Contains(t, body, routes.SessionURL("sse", session))
	assert.Contains(t, body, "Publish")
	assert.NotContains(t, body, `"action": "update"`)

	t.Run("title drives the slug", func(t *testing.T) {
		w := h.post(routes.SessionURL("fields", session), url.Values{"title": {"Hello, World!!"}, "slug": {"stale"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="hello-world"`)
		assert.Contains(t, w.Body.String(), `hx-swap-oob="true"`)
		assert.Equal(t, "hello-world", h.form(t, session).Post().Slug)
	})

	t.Run("slug can be edited alone", func(t *testing.T) {
		h.post(routes.SessionURL("fields", session), url.Values{"title": {"Hello, World!!"}, "slug": {"custom"}})
		assert.Equal(t, "custom", h.form(t, session).Post().Slug)
	})

	t.Run("checkbox pair", func(t *testing.T) {
		h.post(routes.SessionURL("fields", session), url.Values{"featured": {"off", "on"}})
		assert.True(t, h.form(t, session).Post().IsFeatured)
		h.post(routes.SessionURL("fields", session), url.Values{"featured": {"off"}})
		assert.False(t, h.form(t, session).Post().IsFeatured)
	})

	t.Run("typing at the reported caret", func(t *testing.T) {
		f := h.form(t, session)
		block := f.Editor().Document().Blocks[0].ID

		w := h.post(routes.SessionURL("select", session), url.Values{"block": {block}, "offset": {"0"}})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = h.post(routes.SessionURL("type", session), url.Values{"text": {"Hi there"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hi there")
		assert.Contains(t, f.Post().Content, "Hi there")
	})

	t.Run("unknown block", func(t *testing.T) {
		w := h.post(routes.SessionURL("select", session), url.Values{"block": {"nope"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("toolbar", func(t *testing.T) {
		w := h.post(routes.SessionURL("toolbar", session), url.Values{"command": {"header:2"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "line-h2")

		w = h.post(routes.SessionURL("toolbar", session), url.Values{"command": {"header:9"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("tags combobox", func(t *testing.T) {
		w := h.post(routes.Combobox(session, ComboTags), url.Values{"action": {"toggle"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Rust")

		w = h.post(routes.Combobox(session, ComboTags), url.Values{"action": {"search"}, "value": {"ru"}})
		assert.Contains(t, w.Body.String(), "Rust")
		assert.NotContains(t, w.Body.String(), `"value": "t1"`)

		h.post(routes.Combobox(session, ComboTags), url.Values{"action": {"option"}, "value": {"t2"}})
		tags := h.form(t, session).Post().Tags
		require.Len(t, tags, 1)
		assert.Equal(t, "Rust", tags[0].Name)

		w = h.post(routes.Combobox(session, ComboTags), url.Values{"action": {"option"}, "value": {"t9"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = h.post(routes.Combobox(session, "colors"), url.Values{"action": {"open"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("click outside closes the box", func(t *testing.T) {
		box := h.form(t, session).TagBox()
		require.True(t, box.IsOpen())
		w := h.post(routes.SessionURL("event", session), url.Values{
			"type":   {"click"},
			"target": {editor.DefaultSurfaceID},
			"path":   {editor.DefaultSurfaceID},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, box.IsOpen())
		assert.Contains(t, w.Body.String(), `id="`+box.ID()+`"`)
	})

	t.Run("preview tab", func(t *testing.T) {
		w := h.post(routes.SessionURL("tab", session), url.Values{"tab": {"preview"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `id="preview"`)
		assert.Contains(t, w.Body.String(), "Hi there")
		h.post(routes.SessionURL("tab", session), url.Values{"tab": {"editor"}})
	})

	t.Run("source tab", func(t *testing.T) {
		w := h.post(routes.SessionURL("tab", session), url.Values{"tab": {"source"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `id="source"`)
		assert.Contains(t, w.Body.String(), `class="source-view"`)
		assert.Contains(t, w.Body.String(), `class="tab active"`)

		w = h.get(routes.SessionURL("source", session))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `class="source-view"`)
		h.post(routes.SessionURL("tab", session), url.Values{"tab": {"editor"}})
	})

	t.Run("update is rejected in create mode", func(t *testing.T) {
		w := h.post(routes.SessionURL("save", session), url.Values{"action": {"update"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("publish ends the session", func(t *testing.T) {
		w := h.post(routes.SessionURL("save", session), url.Values{"action": {"publish"}})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, config.PostsURLPath, w.Header().Get(config.HHxRedirect))
		require.Len(t, h.backend.created, 1)
		assert.Equal(t, model.StatusPublished, h.backend.created[0].Status)
		assert.Equal(t, "custom", h.backend.created[0].Slug)

		_, err := h.Sessions.Get(session)
		assert.Error(t, err)
	})
}

func TestEditorPicker(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	session := h.openEditor(t, "/editor/new")

	w := h.post(routes.SessionURL("picker", session), url.Values{"mode": {"featured"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.test/a.jpg")

	w = h.post(routes.SessionURL("pick", session), url.Values{"id": {"m1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="featured"`)
	assert.Equal(t, "https://cdn.test/a.jpg", h.form(t, session).Post().FeaturedImage)

	w = h.post(routes.SessionURL("pick", session), url.Values{"id": {"m9"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r := httptest.NewRequest(http.MethodDelete, routes.SessionURL("featured", session), nil)
	w = h.do(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.form(t, session).Post().FeaturedImage)

	t.Run("upload adds to the library", func(t *testing.T) {
		h.post(routes.SessionURL("picker", session), url.Values{"mode": {"content"}})
		body, ctype := multipartBody(t, map[string]string{"title": "Photo", "alt": "A photo"}, pngFile(t))
		r := httptest.NewRequest(http.MethodPost, routes.SessionURL("upload", session), body)
		r.Header.Set(config.HCType, ctype)
		w := h.do(r)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, h.form(t, session).MediaSlot().Value, 2)
	})

	t.Run("upload without alt text", func(t *testing.T) {
		body, ctype := multipartBody(t, map[string]string{"title": "Photo"}, pngFile(t))
		r := httptest.NewRequest(http.MethodPost, routes.SessionURL("upload", session), body)
		r.Header.Set(config.HCType, ctype)
		w := h.do(r)
		assert.Contains(t, w.Body.String(), config.ErrMediaTitleRequired)
	})
}

func TestEditorUpdateSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	session := h.openEditor(t, routes.EditPost("p1"))

	w := h.get(routes.Editor(session))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Existing"`)
	assert.Contains(t, w.Body.String(), `"action": "update"`)

	h.post(routes.SessionURL("fields", session), url.Values{"published": {"off"}})
	assert.False(t, h.form(t, session).Post().IsPublished())

	w = h.post(routes.SessionURL("save", session), url.Values{"action": {"update"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), authoring.MsgUpdated)
	require.Len(t, h.backend.updated, 1)
	assert.Equal(t, model.StatusDraft, h.backend.updated[0].Status)

	w = h.post(routes.SessionURL("save", session), url.Values{"action": {"publish"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditorOffersNewerDraft(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	draft := h.backend.post.Clone()
	draft.Title = "Autosaved title"
	require.NoError(t, h.drafts.SaveDraft(context.Background(), &repository.Draft{
		Key:       "post-p1",
		PostID:    "p1",
		Mode:      authoring.ModeUpdate,
		Title:     draft.Title,
		Post:      draft,
		UpdatedAt: time.Now(),
	}))

	session := h.openEditor(t, routes.EditPost("p1"))
	w := h.get(routes.Editor(session))
	require.Contains(t, w.Body.String(), "Restore it")

	w = h.post(routes.SessionURL("restore", session), nil)
	assert.Equal(t, routes.Editor(session), w.Header().Get(config.HHxRedirect))
	assert.Equal(t, "Autosaved title", h.form(t, session).Post().Title)

	w = h.get(routes.Editor(session))
	assert.NotContains(t, w.Body.String(), "Restore it")
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	w := h.post(routes.SessionURL("type", "missing"), url.Values{"text": {"x"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, config.PostsURLPath, w.Header().Get(config.HHxRedirect))

	w = h.get(routes.SessionURL("sse", "missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionClose(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	session := h.openEditor(t, "/editor/new")
	f := h.form(t, session)
	changes := 0
	f.Subscribe(func(authoring.Change) { changes++ })

	r := httptest.NewRequest(http.MethodDelete, routes.SessionURL("close", session), nil)
	r.Header.Set(config.HHxRequest, "true")
	w := h.do(r)
	assert.Equal(t, config.PostsURLPath, w.Header().Get(config.HHxRedirect))
	assert.Equal(t, 0, h.Sessions.Len())

	f.SetTitle("after close")
	assert.Zero(t, changes)
}

func TestSweep(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	idle := h.openEditor(t, "/editor/new")
	busy := h.openEditor(t, "/editor/new")

	h.mount(idle).lastSeen = time.Now().Add(-time.Hour)
	h.mount(busy).lastSeen = time.Now().Add(-time.Hour)
	client := sse.NewClient(busy)
	h.Clients.Add(client)
	defer h.Clients.Delete(client)

	assert.Equal(t, 1, h.Sweep(30*time.Minute))
	assert.Nil(t, h.mount(idle))
	assert.NotNil(t, h.mount(busy))
	assert.Equal(t, 1, h.Sessions.Len())
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t)

	r := httptest.NewRequest(http.MethodPost, routes.Path(routes.ThemeToggle), nil)
	r.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: config.DarkTheme})
	w := h.do(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get(config.HHxTrigger), config.LightTheme)
	assert.Equal(t, config.DarkThemeIcon, w.Body.String())

	w = h.get("/syntax-theme/not-a-theme")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
