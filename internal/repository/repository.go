// Package repository keeps authoring sessions in memory and their autosaved
// drafts in sqlite.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/model"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDraftNotFound   = errors.New("draft not found")
)

type SessionRepository interface {
	Store(f *authoring.Form)
	Get(id string) (*authoring.Form, error)
	Delete(id string)
	Len() int
}

// Draft is an autosaved snapshot of a form's post.
type Draft struct {
	Key       string
	PostID    model.PostID
	Mode      authoring.Mode
	Title     string
	Post      *model.Post
	UpdatedAt time.Time
}

type DraftRepository interface {
	SaveDraft(ctx context.Context, d *Draft) error
	GetDraft(ctx context.Context, key string) (*Draft, error)
	ListDrafts(ctx context.Context) ([]Draft, error)
	DeleteDraft(ctx context.Context, key string) error
}

// DraftKey names the draft of a form: one per post in update mode, one per
// session in create mode.
func DraftKey(f *authoring.Form) string {
	if f.Mode() == authoring.ModeUpdate {
		if id := f.Target(); id != "" {
			return "post-" + string(id)
		}
	}
	return "new-" + f.ID()
}
