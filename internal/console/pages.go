package console

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/media"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/slug"
)

const (
	MsgTooManyAttempts = "Too many sign-in attempts, try again in a minute"
	MsgPostDeleted     = "Post moved to trash"
	MsgPostRestored    = "Post restored"
	MsgTagSaved        = "Tag saved"
	MsgTagDeleted      = "Tag deleted"
	MsgAuthorAdded     = "Author added"
	MsgMediaUploaded   = "File uploaded"
)

// apiFailed handles an API error for a page action. A rejected token sends
// the user back to the sign-in page; anything else becomes a notice on
// back.
func apiFailed(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if errors.Is(err, api.ErrUnauthorized) {
		auth.RedirectToSignIn(w, r)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(fallback)
	redirect(w, r, back, model.Failure(api.Message(err, fallback)))
}

type signInData struct {
	*model.PageData
	Next  string
	Email string
	Error string
}

func (s *Server) serveSignIn(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeNext(r.URL.Query().Get("next"))
	if _, ok := auth.AccountFromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	pd := model.NewPageData(r)
	etag(w, pd)
	s.render(w, r, config.TemplateSignIn, signInData{PageData: pd, Next: next})
}

func (s *Server) serveSignInSubmit(w http.ResponseWriter, r *http.Request) {
	addr := clientAddr(r)
	data := signInData{
		PageData: model.NewPageData(r),
		Next:     auth.SafeNext(r.FormValue("next")),
		Email:    strings.TrimSpace(r.FormValue("email")),
	}

	if !s.limiter.Check(addr) {
		data.Error = MsgTooManyAttempts
		w.WriteHeader(http.StatusTooManyRequests)
		s.render(w, r, config.TemplateSignIn, data)
		return
	}

	account, err := s.Auth.SignIn(r.Context(), api.Credentials{
		Email:    data.Email,
		Password: r.FormValue("password"),
	})
	if err != nil {
		s.limiter.Record(addr)
		data.Error = api.Message(err, config.ErrSignIn)
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, config.TemplateSignIn, data)
		return
	}

	s.limiter.Reset(addr)
	zerolog.Ctx(r.Context()).Info().Str("account", account.DisplayName()).Msg("Signed in")
	redirect(w, r, data.Next, nil)
}

func (s *Server) serveSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.SignOut(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error signing out")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	redirect(w, r, config.SignInURLPath, nil)
}

type dashboardData struct {
	*model.PageData
	Stats      *model.Stats
	StatsError string
	Drafts     []repository.Draft
}

// serveDashboard loads the counters and the autosaved drafts side by side.
// A failing counter call leaves the drafts visible.
func (s *Server) serveDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{PageData: s.pageData(w, r)}

	var g errgroup.Group
	var statsErr error
	g.Go(func() error {
		data.Stats, statsErr = s.Backend.Stats(r.Context())
		return nil
	})
	g.Go(func() error {
		drafts, err := s.Drafts.ListDrafts(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error listing drafts")
		}
		data.Drafts = drafts
		return nil
	})
	_ = g.Wait()

	if statsErr != nil {
		if errors.Is(statsErr, api.ErrUnauthorized) {
			auth.RedirectToSignIn(w, r)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(statsErr).Msg("Error loading stats")
		data.StatsError = api.Message(statsErr, config.ErrInternalServerError)
	}
	s.render(w, r, config.TemplateDashboard, data)
}

type postsData struct {
	*model.PageData
	Page     *model.PostPage
	PrevPage int
	NextPage int
	Error    string
}

func (s *Server) servePosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	page = max(page, 1)

	data := postsData{PageData: s.pageData(w, r)}
	posts, err := s.Backend.ListPosts(r.Context(), page)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			auth.RedirectToSignIn(w, r)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error listing posts")
		data.Error = api.Message(err, config.ErrInternalServerError)
		s.render(w, r, config.TemplatePosts, data)
		return
	}

	data.Page = posts
	if page > 1 {
		data.PrevPage = page - 1
	}
	if pageSize := config.AppConfig.API.PageSize; pageSize > 0 && page*pageSize < posts.Total {
		data.NextPage = page + 1
	}
	s.render(w, r, config.TemplatePosts, data)
}

func (s *Server) servePostDelete(w http.ResponseWriter, r *http.Request) {
	s.postAction(w, r, s.Backend.DeletePost, config.ErrDeletePost, MsgPostDeleted)
}

func (s *Server) servePostRestore(w http.ResponseWriter, r *http.Request) {
	s.postAction(w, r, s.Backend.RestorePost, config.ErrRestorePost, MsgPostRestored)
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request, action func(context.Context, model.PostID) error, failMsg, okMsg string) {
	id := model.PostID(r.PathValue("id"))
	if err := action(r.Context(), id); err != nil {
		apiFailed(w, r, err, failMsg, config.PostsURLPath)
		return
	}
	redirect(w, r, config.PostsURLPath, model.Success(okMsg))
}

type tagsData struct {
	*model.PageData
	Tags  []model.Tag
	Error string
}

func (s *Server) serveTags(w http.ResponseWriter, r *http.Request) {
	data := tagsData{PageData: s.pageData(w, r)}
	tags, err := s.Backend.ListTags(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			auth.RedirectToSignIn(w, r)
			return
		}
		data.Error = api.Message(err, config.ErrInternalServerError)
	}
	data.Tags = tags
	s.render(w, r, config.TemplateTags, data)
}

// tagForm reads a tag's name and slug. A blank slug is derived from the
// name.
func tagForm(r *http.Request) (name, tagSlug string, ok bool) {
	name = strings.TrimSpace(r.FormValue("name"))
	tagSlug = strings.TrimSpace(r.FormValue("slug"))
	if tagSlug == "" {
		tagSlug = slug.Slugify(name)
	}
	return name, tagSlug, name != ""
}

func (s *Server) serveTagCreate(w http.ResponseWriter, r *http.Request) {
	name, tagSlug, ok := tagForm(r)
	if !ok {
		redirect(w, r, config.TagsURLPath, model.Failure(config.ErrBadRequest))
		return
	}
	if _, err := s.Backend.CreateTag(r.Context(), name, tagSlug); err != nil {
		apiFailed(w, r, err, config.ErrSaveTag, config.TagsURLPath)
		return
	}
	redirect(w, r, config.TagsURLPath, model.Success(MsgTagSaved))
}

func (s *Server) serveTagUpdate(w http.ResponseWriter, r *http.Request) {
	name, tagSlug, ok := tagForm(r)
	if !ok {
		redirect(w, r, config.TagsURLPath, model.Failure(config.ErrBadRequest))
		return
	}
	tag := model.Tag{
		ID:        r.PathValue("id"),
		Name:      name,
		Slug:      tagSlug,
		IsPrimary: r.FormValue("primary") == "on",
	}
	if _, err := s.Backend.UpdateTag(r.Context(), tag); err != nil {
		apiFailed(w, r, err, config.ErrSaveTag, config.TagsURLPath)
		return
	}
	redirect(w, r, config.TagsURLPath, model.Success(MsgTagSaved))
}

func (s *Server) serveTagDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Backend.DeleteTag(r.Context(), r.PathValue("id")); err != nil {
		apiFailed(w, r, err, config.ErrDeleteTag, config.TagsURLPath)
		return
	}
	redirect(w, r, config.TagsURLPath, model.Success(MsgTagDeleted))
}

type authorsData struct {
	*model.PageData
	Authors []model.Author
	Roles   []model.Role
	Error   string
}

func (s *Server) serveAuthors(w http.ResponseWriter, r *http.Request) {
	data := authorsData{
		PageData: s.pageData(w, r),
		Roles:    []model.Role{model.RoleAuthor, model.RoleEditor, model.RoleAdmin},
	}
	authors, err := s.Backend.ListAuthors(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			auth.RedirectToSignIn(w, r)
			return
		}
		data.Error = api.Message(err, config.ErrInternalServerError)
	}
	data.Authors = authors
	s.render(w, r, config.TemplateAuthors, data)
}

func (s *Server) serveAuthorCreate(w http.ResponseWriter, r *http.Request) {
	a := model.NewAuthor{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Role:     model.Role(r.FormValue("role")),
	}
	if a.Name == "" || a.Email == "" || a.Password == "" {
		redirect(w, r, config.AuthorsURLPath, model.Failure(config.ErrBadRequest))
		return
	}
	if a.Role == "" {
		a.Role = model.RoleAuthor
	}
	if _, err := s.Backend.CreateAuthor(r.Context(), a); err != nil {
		apiFailed(w, r, err, config.ErrAddAuthor, config.AuthorsURLPath)
		return
	}
	redirect(w, r, config.AuthorsURLPath, model.Success(MsgAuthorAdded))
}

type mediaData struct {
	*model.PageData
	Items []model.MediaItem
	Error string
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	data := mediaData{PageData: s.pageData(w, r)}
	items, err := s.Backend.ListMedia(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			auth.RedirectToSignIn(w, r)
			return
		}
		data.Error = api.Message(err, config.ErrInternalServerError)
	}
	data.Items = items
	s.render(w, r, config.TemplateMedia, data)
}

func (s *Server) serveMediaUpload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.upload(r); err != nil {
		if msg, ok := uploadMessage(err); ok {
			redirect(w, r, config.MediaURLPath, model.Failure(msg))
			return
		}
		apiFailed(w, r, err, config.ErrUploadMedia, config.MediaURLPath)
		return
	}
	redirect(w, r, config.MediaURLPath, model.Success(MsgMediaUploaded))
}

// upload reads the media form and hands the file to the media service.
func (s *Server) upload(r *http.Request) (*model.MediaItem, error) {
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		return nil, media.ErrFileRequired
	}
	req := media.Request{
		Title:   r.FormValue("title"),
		AltText: r.FormValue("alt"),
	}
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		req.Filename, req.Body = header.Filename, file
	}
	return s.Media.Upload(r.Context(), req)
}

// uploadMessage maps a form validation failure to its message.
func uploadMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, media.ErrMetadataRequired):
		return config.ErrMediaTitleRequired, true
	case errors.Is(err, media.ErrFileRequired):
		return config.ErrMediaFileRequired, true
	}
	return "", false
}
