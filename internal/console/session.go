package console

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/combobox"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/event"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/routes"
	"github.com/debemdeboas/the-press/internal/sse"
	"github.com/debemdeboas/the-press/internal/theme"
)

const (
	HDefaultPrevented = "X-Default-Prevented"

	MsgDraftNotFound = "Draft not found"

	ComboTags    = "tags"
	ComboAuthors = "authors"
)

var (
	errUnknownAction = errors.New("unknown action")
	errUnknownOption = errors.New("unknown option")
	errUnknownMedia  = errors.New("media item not in library")
)

// mount is the page side of an authoring session: the bus the browser's
// events are dispatched on and everything to release when it closes.
type mount struct {
	bus      *event.Bus
	disposer event.Disposer

	mu       sync.Mutex
	draft    *repository.Draft
	lastSeen time.Time
}

func (m *mount) touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen = time.Now()
}

// Draft is an autosaved version offered for restore, if any.
func (m *mount) Draft() *repository.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func (m *mount) setDraft(d *repository.Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = d
}

func (s *Server) newForm(mode authoring.Mode, id model.PostID) (*authoring.Form, error) {
	deps := authoring.Deps{Backend: s.Backend, Toolbar: s.Toolbar}
	if mode == authoring.ModeUpdate {
		return authoring.NewUpdateForm(deps, id)
	}
	return authoring.NewCreateForm(deps)
}

// open loads f and registers it as a live session.
func (s *Server) open(ctx context.Context, f *authoring.Form) *mount {
	_ = f.Load(ctx)

	m := &mount{bus: event.NewBus(), lastSeen: time.Now()}
	m.disposer.Add(f.Close)
	m.disposer.Add(f.Mount(m.bus))
	m.disposer.Add(f.Subscribe(s.relay))
	if s.Autosave != nil {
		m.disposer.Add(s.Autosave.Watch(f))
	}

	s.Sessions.Store(f)
	s.mu.Lock()
	s.mounts[f.ID()] = m
	s.mu.Unlock()
	consoleLogger.Debug().Str("session", f.ID()).Str("mode", string(f.Mode())).Msg("Authoring session opened")
	return m
}

func (s *Server) mount(id string) *mount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounts[id]
}

func (s *Server) close(id string) {
	s.mu.Lock()
	m := s.mounts[id]
	delete(s.mounts, id)
	s.mu.Unlock()

	if m != nil {
		m.disposer.Dispose()
	}
	s.Sessions.Delete(id)
	consoleLogger.Debug().Str("session", id).Msg("Authoring session closed")
}

// Sweep closes sessions idle for longer than maxIdle and reports how many
// it closed. Sessions with a connected event stream are kept.
func (s *Server) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var idle []string
	s.mu.Lock()
	for id, m := range s.mounts {
		m.mu.Lock()
		if m.lastSeen.Before(cutoff) && s.Clients.Count(id) == 0 {
			idle = append(idle, id)
		}
		m.mu.Unlock()
	}
	s.mu.Unlock()

	for _, id := range idle {
		s.close(id)
	}
	return len(idle)
}

// relay forwards form changes to the session's event streams.
func (s *Server) relay(c authoring.Change) {
	msg := sse.Message{Event: sse.EventFields, Data: string(c.Kind)}
	switch c.Kind {
	case authoring.ChangeContent:
		msg.Event = sse.EventContent
	case authoring.ChangeNotice:
		msg.Event = sse.EventNotice
	}
	s.Clients.Broadcast(c.Session, msg)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("session")
		f, err := s.Sessions.Get(id)
		m := s.mount(id)
		if err != nil || m == nil {
			zerolog.Ctx(r.Context()).Debug().Str("session", id).Msg("Unknown authoring session")
			redirect(w, r, config.PostsURLPath, model.Failure(config.ErrSessionNotFound))
			return
		}
		m.touch()
		h(w, r, f, m)
	}
}

// unauthorized reports whether the loaders were turned away for a stale
// token.
func unauthorized(f *authoring.Form) bool {
	for _, err := range []error{f.LoadErr(), f.TagSlot().Err, f.AuthorSlot().Err, f.MediaSlot().Err} {
		if errors.Is(err, api.ErrUnauthorized) {
			return true
		}
	}
	return false
}

func (s *Server) serveEditorNew(w http.ResponseWriter, r *http.Request) {
	f, err := s.newForm(authoring.ModeCreate, "")
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error creating authoring form")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	s.start(w, r, f, nil)
}

func (s *Server) serveEditorPost(w http.ResponseWriter, r *http.Request) {
	f, err := s.newForm(authoring.ModeUpdate, model.PostID(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.start(w, r, f, nil)
}

// serveEditorDraft resumes an autosaved draft in a fresh session.
func (s *Server) serveEditorDraft(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	d, err := s.Drafts.GetDraft(r.Context(), key)
	if err != nil {
		if !errors.Is(err, repository.ErrDraftNotFound) {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("draft", key).Msg("Error reading draft")
		}
		redirect(w, r, config.DashboardURLPath, model.Failure(MsgDraftNotFound))
		return
	}

	f, err := s.newForm(d.Mode, d.PostID)
	if err != nil {
		redirect(w, r, config.DashboardURLPath, model.Failure(MsgDraftNotFound))
		return
	}
	s.start(w, r, f, d)
}

// start loads f, restores resume when given and sends the browser to the
// session's editor page.
func (s *Server) start(w http.ResponseWriter, r *http.Request, f *authoring.Form, resume *repository.Draft) {
	l := zerolog.Ctx(r.Context())
	m := s.open(r.Context(), f)

	if unauthorized(f) {
		s.close(f.ID())
		auth.RedirectToSignIn(w, r)
		return
	}

	key := repository.DraftKey(f)
	switch {
	case resume != nil:
		if err := f.Restore(resume.Post); err != nil {
			l.Warn().Err(err).Str("draft", resume.Key).Msg("Draft content did not parse")
			break
		}
		if s.Autosave == nil || resume.Key == key {
			break
		}
		// Create drafts are keyed by session, so move it to the new one.
		if err := s.Autosave.Save(r.Context(), f); err != nil {
			l.Error().Err(err).Msg("Error saving resumed draft")
			break
		}
		if err := s.Drafts.DeleteDraft(r.Context(), resume.Key); err != nil {
			l.Warn().Err(err).Str("draft", resume.Key).Msg("Error removing resumed draft")
		}
	case f.Mode() == authoring.ModeUpdate:
		d, err := s.Drafts.GetDraft(r.Context(), key)
		if err != nil {
			break
		}
		if p := f.PostSlot().Value; p == nil || d.UpdatedAt.After(p.UpdatedAt) {
			m.setDraft(d)
		}
	}

	redirect(w, r, routes.Editor(f.ID()), nil)
}

type editorData struct {
	*model.PageData
	Session string
	Mode    authoring.Mode
	Post    *model.Post
	Tab     authoring.Tab
	Saving  bool

	PostLoading bool
	PostError   string

	Surface     surfaceView
	Toolbar     [][]editor.Control
	Tags        comboView
	Authors     comboView
	Picker      pickerView
	PreviewHTML template.HTML
	SourceHTML  template.HTML

	Draft       *repository.Draft
	FormNotice  *model.Notice
	PickerError string
	AutosaveOn  bool

	// Out-of-band htmx swaps riding along with another partial.
	SurfaceOOB  bool
	FeaturedOOB bool
}

func (d *editorData) IsUpdate() bool { return d.Mode == authoring.ModeUpdate }

func (s *Server) editorData(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) *editorData {
	post := f.Post()
	slot := f.PostSlot()
	data := &editorData{
		PageData:    s.pageData(w, r),
		Session:     f.ID(),
		Mode:        f.Mode(),
		Post:        post,
		Tab:         f.Tab(),
		Saving:      f.Saving(),
		PostLoading: slot.Loading,
		Surface:     surfaceOf(f.Editor()),
		Toolbar:     f.Editor().Toolbar().Groups(),
		Tags:        comboOf(f.ID(), ComboTags, "Tags", f.TagBox(), f.TagSlot()),
		Authors:     comboOf(f.ID(), ComboAuthors, "Authors", f.AuthorBox(), f.AuthorSlot()),
		Picker:      pickerOf(f),
		Draft:       m.Draft(),
		AutosaveOn:  s.Autosave != nil,
	}
	if slot.Failed() {
		data.PostError = authoring.MsgNotLoaded
	}
	switch data.Tab {
	case authoring.TabPreview:
		data.PreviewHTML = render.PreviewCached(post.Content, data.SyntaxTheme)
	case authoring.TabSource:
		data.SourceHTML = sourceOf(post.Content, data.SyntaxTheme)
	}
	return data
}

func sourceOf(content, syntax string) template.HTML {
	out, err := render.HighlightSource(content, syntax)
	if err != nil {
		consoleLogger.Warn().Err(err).Msg("Could not highlight post source")
	}
	return template.HTML(out)
}

func (s *Server) serveEditor(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	data := s.editorData(w, r, f, m)
	data.FormNotice = f.TakeNotice()
	s.render(w, r, config.TemplateEditor, data)
}

func (s *Server) partial(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount, name string) {
	s.renderNamed(w, r, config.TemplateEditor, name, s.editorData(w, r, f, m))
}

func (s *Server) serveSurface(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	s.partial(w, r, f, m, config.TemplateNameSurface)
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	data := s.editorData(w, r, f, m)
	data.PreviewHTML = render.PreviewCached(data.Post.Content, theme.FromRequest(r).Syntax)
	s.renderNamed(w, r, config.TemplateEditor, config.TemplateNamePreview, data)
}

func (s *Server) serveSource(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	data := s.editorData(w, r, f, m)
	data.SourceHTML = sourceOf(data.Post.Content, theme.FromRequest(r).Syntax)
	s.renderNamed(w, r, config.TemplateEditor, config.TemplateNameSource, data)
}

func (s *Server) serveSessionClose(w http.ResponseWriter, r *http.Request, f *authoring.Form, _ *mount) {
	s.close(f.ID())
	redirect(w, r, config.PostsURLPath, nil)
}

// serveFields applies the metadata fields that differ from the form. The
// slug input comes back so a title change shows its new slug.
func (s *Server) serveFields(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	p := f.Post()
	values := r.PostForm

	text := []struct {
		name    string
		current string
		set     func(string)
	}{
		{"title", p.Title, f.SetTitle},
		{"slug", p.Slug, f.SetSlug},
		{"description", p.Description, f.SetDescription},
		{"seo_title", p.SEOTitle, f.SetSEOTitle},
		{"seo_description", p.SEODescription, f.SetSEODescription},
	}
	for _, field := range text {
		// A title change rewrites the slug, so a slug sent with it is stale.
		if t, ok := values["title"]; field.name == "slug" && ok && t[0] != p.Title {
			continue
		}
		if v, ok := values[field.name]; ok && v[0] != field.current {
			field.set(v[0])
		}
	}

	if v, ok := lastValue(values, "featured"); ok && (v == "on") != p.IsFeatured {
		f.SetFeatured(v == "on")
	}
	if v, ok := lastValue(values, "published"); ok && f.Mode() == authoring.ModeUpdate && (v == "on") != p.IsPublished() {
		_ = f.SetPublished(v == "on")
	}

	s.partial(w, r, f, m, "slug")
}

// lastValue reads a checkbox sent after its hidden "off" twin.
func lastValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[len(v)-1], true
}

// serveEvent dispatches one browser event on the session bus. Clicks
// outside a combobox collapse it, so the surface and both boxes come back
// out of band.
func (s *Server) serveEvent(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	ev := &event.Event{
		Type:   event.Type(r.FormValue("type")),
		Target: r.FormValue("target"),
		Path:   strings.Fields(r.FormValue("path")),
		Kind:   strings.ToLower(r.FormValue("kind")),
		Key:    r.FormValue("key"),
	}
	if ev.Type != event.Click && ev.Type != event.KeyDown {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	m.bus.Dispatch(ev)
	if ev.DefaultPrevented() {
		w.Header().Set(HDefaultPrevented, "true")
	}
	data := s.editorData(w, r, f, m)
	data.SurfaceOOB = true
	data.Tags.OOB, data.Authors.OOB = true, true
	s.renderNamed(w, r, config.TemplateEditor, "event", data)
}

// serveSelect moves the caret. The browser reports it as a block id and an
// offset inside that block.
func (s *Server) serveSelect(w http.ResponseWriter, r *http.Request, f *authoring.Form, _ *mount) {
	ed := f.Editor()
	if r.FormValue("blur") == "true" {
		ed.Blur()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	doc := ed.Document()
	b, i := doc.Block(r.FormValue("block"))
	if b == nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	offset, _ := strconv.Atoi(r.FormValue("offset"))
	length, _ := strconv.Atoi(r.FormValue("length"))
	offset = min(max(offset, 0), b.Len()-1)

	ed.SetRange(doc.Start(i)+offset, max(length, 0))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveType(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	f.Editor().Type(r.FormValue("text"))
	s.partial(w, r, f, m, config.TemplateNameSurface)
}

// serveContent replaces the whole body, as after a paste.
func (s *Server) serveContent(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	if err := f.SetContent(r.FormValue("content")); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Pasted content did not parse")
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	s.partial(w, r, f, m, config.TemplateNameSurface)
}

// serveToolbar runs a toolbar command. Prompt answers the browser already
// collected come as repeated "answer" values; a missing answer is a
// cancelled prompt.
func (s *Server) serveToolbar(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	cmd := editor.ParseCommand(r.PostForm.Get("command"))
	handled, err := f.Editor().Exec(cmd, editor.NewAnswers(r.PostForm["answer"]...))
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("command", cmd.String()).Msg("Toolbar command rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !handled {
		zerolog.Ctx(r.Context()).Debug().Str("command", cmd.String()).Msg("Toolbar command not applied")
	}
	s.partial(w, r, f, m, config.TemplateNameSurface)
}

func (s *Server) serveTab(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	f.SetTab(authoring.Tab(r.FormValue("tab")))
	s.partial(w, r, f, m, "pane")
}

func (s *Server) servePicker(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	switch mode := r.FormValue("mode"); mode {
	case "close":
		f.CloseMediaPicker()
	case string(authoring.PickerFeatured), string(authoring.PickerContent):
		f.OpenMediaPicker(authoring.PickerMode(mode))
	default:
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	s.partial(w, r, f, m, config.TemplateNamePicker)
}

// servePickerSelect uses a library item for whatever the picker was opened
// for. The featured image and the surface come back out of band.
func (s *Server) servePickerSelect(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	item, err := findMedia(f.MediaSlot().Value, r.FormValue("id"), r.FormValue("url"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !f.SelectMedia(item) {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	data := s.editorData(w, r, f, m)
	data.SurfaceOOB, data.FeaturedOOB = true, true
	s.renderNamed(w, r, config.TemplateEditor, config.TemplateNamePicker, data)
}

func findMedia(items []model.MediaItem, id, url string) (model.MediaItem, error) {
	for _, item := range items {
		if (id != "" && item.ID == id) || (url != "" && item.URL == url) {
			return item, nil
		}
	}
	return model.MediaItem{}, errUnknownMedia
}

func (s *Server) servePickerUpload(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	item, err := s.upload(r)
	if err != nil {
		data := s.editorData(w, r, f, m)
		if msg, ok := uploadMessage(err); ok {
			data.PickerError = msg
		} else {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error uploading media")
			data.PickerError = api.Message(err, config.ErrUploadMedia)
		}
		s.renderNamed(w, r, config.TemplateEditor, config.TemplateNamePicker, data)
		return
	}
	f.AddMedia(*item)
	s.partial(w, r, f, m, config.TemplateNamePicker)
}

func (s *Server) serveFeaturedClear(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	f.RemoveFeaturedImage()
	s.partial(w, r, f, m, "featured")
}

func (s *Server) serveCombobox(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	action, value := r.FormValue("action"), r.FormValue("value")

	var err error
	switch r.PathValue("box") {
	case ComboTags:
		err = comboAction(f.TagBox(), action, value)
	case ComboAuthors:
		err = comboAction(f.AuthorBox(), action, value)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := s.editorData(w, r, f, m)
	view := data.Tags
	if r.PathValue("box") == ComboAuthors {
		view = data.Authors
	}
	s.renderNamed(w, r, config.TemplateEditor, config.TemplateNameCombobox, view)
}

func comboAction[T combobox.Option](c *combobox.Combobox[T], action, value string) error {
	switch action {
	case "toggle":
		c.ToggleOpen()
	case "open":
		c.Open()
	case "close":
		c.Close()
	case "search":
		c.Open()
		c.Search(value)
	case "option":
		if !c.ToggleID(value) {
			return errUnknownOption
		}
	default:
		return errUnknownAction
	}
	return nil
}

// serveSave runs one of the save actions. A successful create ends the
// session and sends the browser to the post list; everything else answers
// with the notice.
func (s *Server) serveSave(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	var err error
	switch r.FormValue("action") {
	case "draft":
		err = f.SaveDraft(r.Context())
	case "publish":
		err = f.Publish(r.Context())
	case "update":
		err = f.Update(r.Context())
	default:
		err = errUnknownAction
	}

	switch {
	case errors.Is(err, errUnknownAction), errors.Is(err, authoring.ErrWrongMode):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, authoring.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, api.ErrUnauthorized):
		auth.RedirectToSignIn(w, r)
		return
	}

	notice := f.TakeNotice()
	if target := f.Redirect(); err == nil && target != "" {
		s.close(f.ID())
		redirect(w, r, target, notice)
		return
	}

	data := s.editorData(w, r, f, m)
	data.FormNotice = notice
	s.renderNamed(w, r, config.TemplateEditor, config.TemplateNameNotice, data)
}

func (s *Server) serveRestore(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	d := m.Draft()
	if d == nil {
		redirect(w, r, routes.Editor(f.ID()), model.Failure(MsgDraftNotFound))
		return
	}
	if err := f.Restore(d.Post); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("draft", d.Key).Msg("Draft content did not parse")
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}
	m.setDraft(nil)
	redirect(w, r, routes.Editor(f.ID()), nil)
}

func (s *Server) serveDiscardDraft(w http.ResponseWriter, r *http.Request, f *authoring.Form, m *mount) {
	if d := m.Draft(); d != nil {
		if err := s.Drafts.DeleteDraft(r.Context(), d.Key); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("draft", d.Key).Msg("Error discarding draft")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}
	}
	m.setDraft(nil)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if _, err := s.Sessions.Get(id); err != nil {
		http.NotFound(w, r)
		return
	}
	s.Clients.Serve(w, r, id)
}
