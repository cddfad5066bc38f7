// Package console serves the admin console: the sign-in page, the post,
// taxonomy and media screens, and the authoring sessions behind the editor.
package console

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/media"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/routes"
	"github.com/debemdeboas/the-press/internal/sse"
	"github.com/debemdeboas/the-press/internal/util"
)

var consoleLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	consoleLogger = l
}

// Backend is everything the console asks of the content API.
type Backend interface {
	authoring.Backend

	ListPosts(ctx context.Context, page int) (*model.PostPage, error)
	DeletePost(ctx context.Context, id model.PostID) error
	RestorePost(ctx context.Context, id model.PostID) error

	CreateTag(ctx context.Context, name, slug string) (*model.Tag, error)
	UpdateTag(ctx context.Context, t model.Tag) (*model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	CreateAuthor(ctx context.Context, a model.NewAuthor) (*model.Author, error)

	Stats(ctx context.Context) (*model.Stats, error)
}

type Deps struct {
	Backend  Backend
	Auth     *auth.Provider
	Media    *media.Service
	Sessions repository.SessionRepository
	Drafts   repository.DraftRepository
	// Autosave is nil when autosave is off.
	Autosave *repository.Autosaver
	Clients  *sse.SSEClients
	Toolbar  *editor.Toolbar
	// Files holds the templates and static directories.
	Files fs.FS
}

type Server struct {
	Deps

	pages   map[string]*template.Template
	limiter *SignInLimiter

	mu     sync.Mutex
	mounts map[string]*mount
}

var pageTemplates = []string{
	config.TemplateSignIn,
	config.TemplateDashboard,
	config.TemplatePosts,
	config.TemplateEditor,
	config.TemplateTags,
	config.TemplateAuthors,
	config.TemplateMedia,
}

func New(deps Deps) (*Server, error) {
	s := &Server{
		Deps:    deps,
		pages:   make(map[string]*template.Template, len(pageTemplates)),
		limiter: NewSignInLimiter(5, time.Minute),
		mounts:  make(map[string]*mount),
	}
	for _, page := range pageTemplates {
		tmpl, err := template.New(config.TemplateLayout).Funcs(funcs).ParseFS(deps.Files,
			config.TemplatesLocalDir+"/"+config.TemplateLayout,
			config.TemplatesLocalDir+"/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		s.pages[page] = tmpl
	}
	return s, nil
}

var funcs = template.FuncMap{
	"path":  routes.Path,
	"url":   routes.SessionURL,
	"combo": routes.Combobox,
	"list":  func(items ...string) []string { return items },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"editPost": func(id model.PostID) string {
		return routes.EditPost(string(id))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan 2, 2006")
	},
	"ago": func(t time.Time) string {
		d := time.Since(t).Round(time.Second)
		switch {
		case d < time.Minute:
			return "just now"
		case d < time.Hour:
			return fmt.Sprintf("%dm ago", int(d.Minutes()))
		case d < 24*time.Hour:
			return fmt.Sprintf("%dh ago", int(d.Hours()))
		}
		return t.Format("Jan 2, 2006")
	},
}

// Handler builds the full middleware chain around the console routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.register(mux)

	var h http.Handler = mux
	h = s.Auth.WithAccount()(h)
	h = secureHeaders(h)
	h = cacheIt(h)
	return requestLogger(h)
}

func (s *Server) register(mux *http.ServeMux) {
	static, err := fs.Sub(s.Files, config.StaticLocalDir)
	if err != nil {
		consoleLogger.Error().Err(err).Msg("No static directory")
	} else {
		mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	}

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow: /"))
	})
	mux.HandleFunc(routes.ThemeToggle, serveThemeToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, serveSyntaxThemeSet)
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGet)

	mux.HandleFunc(routes.SignIn, s.serveSignIn)
	mux.HandleFunc(routes.SignInSubmit, s.serveSignInSubmit)
	mux.HandleFunc(routes.SignOut, s.serveSignOut)

	private := map[string]http.HandlerFunc{
		routes.Dashboard:    s.serveDashboard,
		routes.Posts:        s.servePosts,
		routes.PostDelete:   s.servePostDelete,
		routes.PostRestore:  s.servePostRestore,
		routes.Tags:         s.serveTags,
		routes.TagCreate:    s.serveTagCreate,
		routes.TagUpdate:    s.serveTagUpdate,
		routes.TagDelete:    s.serveTagDelete,
		routes.Authors:      s.serveAuthors,
		routes.AuthorCreate: s.serveAuthorCreate,
		routes.Media:        s.serveMedia,
		routes.MediaUpload:  s.serveMediaUpload,

		routes.EditorNew:     s.serveEditorNew,
		routes.EditorPost:    s.serveEditorPost,
		routes.EditorDraft:   s.serveEditorDraft,
		routes.EditorSession: s.withSession(s.serveEditor),

		routes.SessionClose:         s.withSession(s.serveSessionClose),
		routes.SessionSurface:       s.withSession(s.serveSurface),
		routes.SessionPreview:       s.withSession(s.servePreview),
		routes.SessionSource:        s.withSession(s.serveSource),
		routes.SessionFields:        s.withSession(s.serveFields),
		routes.SessionEvent:         s.withSession(s.serveEvent),
		routes.SessionSelect:        s.withSession(s.serveSelect),
		routes.SessionType:          s.withSession(s.serveType),
		routes.SessionContent:       s.withSession(s.serveContent),
		routes.SessionToolbar:       s.withSession(s.serveToolbar),
		routes.SessionTab:           s.withSession(s.serveTab),
		routes.SessionPicker:        s.withSession(s.servePicker),
		routes.SessionPickerSelect:  s.withSession(s.servePickerSelect),
		routes.SessionPickerUpload:  s.withSession(s.servePickerUpload),
		routes.SessionFeaturedClear: s.withSession(s.serveFeaturedClear),
		routes.SessionCombobox:      s.withSession(s.serveCombobox),
		routes.SessionSave:          s.withSession(s.serveSave),
		routes.SessionRestore:       s.withSession(s.serveRestore),
		routes.SessionDiscardDraft:  s.withSession(s.serveDiscardDraft),

		routes.SSEPath: s.serveEvents,
	}
	for pattern, h := range private {
		mux.Handle(pattern, s.Auth.Require(h))
	}
}

// render executes a full page inside the layout.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	s.renderNamed(w, r, page, config.TemplateLayout, data)
}

// renderNamed executes one named template of page, for full pages and htmx
// partials alike.
func (s *Server) renderNamed(w http.ResponseWriter, r *http.Request, page, name string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Str("template", name).Msg("Error executing template")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
	}
}

// pageData is the layout data of a signed-in page, with the notice left by
// the previous action, if any.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request) *model.PageData {
	pd := model.NewPageData(r)
	if a, ok := auth.AccountFromContext(r.Context()); ok {
		pd.SignedInAs = a.DisplayName()
	}
	pd.Notice = takeNotice(w, r)
	return pd
}

// redirect sends the browser to target, leaving n for the next page. htmx
// requests get an HX-Redirect.
func redirect(w http.ResponseWriter, r *http.Request, target string, n *model.Notice) {
	if n != nil {
		setNotice(w, n)
	}
	if isHtmx(r) {
		w.Header().Set(config.HHxRedirect, target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get(config.HHxRequest) == "true"
}

func setNotice(w http.ResponseWriter, n *model.Notice) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieNotice,
		Value:    url.QueryEscape(string(n.Kind) + ":" + n.Message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeNotice(w http.ResponseWriter, r *http.Request) *model.Notice {
	cookie, err := r.Cookie(config.CookieNotice)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: config.CookieNotice, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, ":")
	if !ok || msg == "" {
		return nil
	}
	if model.NoticeKind(kind) == model.NoticeError {
		return model.Failure(msg)
	}
	return model.Success(msg)
}

// etag marks a page as varying with the display preferences.
func etag(w http.ResponseWriter, pd *model.PageData) {
	w.Header().Set(config.HETag, util.ContentHash([]byte(pd.Theme+pd.SyntaxTheme)))
}
