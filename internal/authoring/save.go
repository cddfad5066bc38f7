package authoring

import (
	"context"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
)

// SaveDraft creates the post as a draft.
func (f *Form) SaveDraft(ctx context.Context) error {
	return f.create(ctx, model.StatusDraft)
}

// Publish creates the post as published.
func (f *Form) Publish(ctx context.Context) error {
	return f.create(ctx, model.StatusPublished)
}

func (f *Form) begin(mode Mode) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != mode {
		return nil, ErrWrongMode
	}
	if f.saving {
		return nil, ErrBusy
	}
	f.saving = true
	return f.post.Clone(), nil
}

func (f *Form) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
}

// create sends the post without its server-owned fields. On success the
// form points the browser back at the post list.
func (f *Form) create(ctx context.Context, status model.Status) error {
	p, err := f.begin(ModeCreate)
	if err != nil {
		return err
	}
	defer f.end()

	p.Status = status
	created, err := f.backend.CreatePost(ctx, p.Input())
	if err != nil {
		authoringLogger.Error().Err(err).Str("session", f.id).Msg("Error creating post")
		f.setNotice(model.NoticeError, api.Message(err, config.ErrSavePost))
		return err
	}

	msg := MsgSaved
	if status == model.StatusPublished {
		msg = MsgPublished
	}
	authoringLogger.Info().Str("session", f.id).Str("post", string(created.ID)).Str("status", string(status)).Msg("Post created")

	f.mu.Lock()
	f.post.Status = status
	f.redirect = config.PostsURLPath
	f.mu.Unlock()
	f.setNotice(model.NoticeSuccess, msg)
	f.emit(ChangeSaved)
	return nil
}

// Update sends the full post. It never navigates away.
func (f *Form) Update(ctx context.Context) error {
	p, err := f.begin(ModeUpdate)
	if err != nil {
		return err
	}
	defer f.end()

	if p.ID == "" {
		f.setNotice(model.NoticeError, MsgNotLoaded)
		return ErrNotLoaded
	}

	updated, err := f.backend.UpdatePost(ctx, p)
	if err != nil {
		authoringLogger.Error().Err(err).Str("session", f.id).Str("post", string(p.ID)).Msg("Error updating post")
		f.setNotice(model.NoticeError, api.Message(err, config.ErrUpdatePost))
		return err
	}

	f.mu.Lock()
	if updated != nil && updated.ID == p.ID {
		f.post.UpdatedAt = updated.UpdatedAt
	}
	f.mu.Unlock()
	f.setNotice(model.NoticeSuccess, MsgUpdated)
	f.emit(ChangeSaved)
	return nil
}

func (f *Form) setNotice(kind model.NoticeKind, msg string) {
	f.mu.Lock()
	f.notice = &model.Notice{Kind: kind, Message: msg}
	f.mu.Unlock()
	f.emit(ChangeNotice)
}

// TakeNotice returns the pending notice and clears it.
func (f *Form) TakeNotice() *model.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notice
	f.notice = nil
	return n
}

// Redirect is where the browser should go after a successful create, or
// empty to stay on the form.
func (f *Form) Redirect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}

func (f *Form) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}
