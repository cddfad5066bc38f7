// Package authoring holds the state machine of the post authoring form: the
// post being edited, its option lists, the media picker and the save
// actions.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/combobox"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/event"
	"github.com/debemdeboas/the-press/internal/model"
)

var authoringLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authoringLogger = l
}

type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

type Tab string

const (
	TabEditor  Tab = "editor"
	TabPreview Tab = "preview"
	TabSource  Tab = "source"
)

// PickerMode says what a media selection is for. The zero value means the
// picker is closed.
type PickerMode string

const (
	PickerClosed   PickerMode = ""
	PickerFeatured PickerMode = "featured"
	PickerContent  PickerMode = "content"
)

const (
	MsgSaved     = "Post saved successfully"
	MsgPublished = "Post published successfully"
	MsgUpdated   = "Post updated successfully"
	MsgNotLoaded = "The post could not be loaded"
)

var (
	ErrWrongMode = errors.New("action not available in this mode")
	ErrNotLoaded = errors.New("post not loaded")
	ErrBusy      = errors.New("save already in progress")
)

// Backend is the part of the content API the form talks to.
type Backend interface {
	GetPost(ctx context.Context, id model.PostID) (*model.Post, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	ListMedia(ctx context.Context) ([]model.MediaItem, error)
	CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, p *model.Post) (*model.Post, error)
}

type Deps struct {
	Backend Backend
	Toolbar *editor.Toolbar
}

type ChangeKind string

const (
	ChangeFields  ChangeKind = "fields"
	ChangeContent ChangeKind = "content"
	ChangeLoaded  ChangeKind = "loaded"
	ChangeNotice  ChangeKind = "notice"
	ChangeSaved   ChangeKind = "saved"
)

type Change struct {
	Session string
	Kind    ChangeKind
}

type Form struct {
	mu sync.Mutex

	id      string
	mode    Mode
	target  model.PostID
	post    *model.Post
	backend Backend

	postSlot   Slot[*model.Post]
	tagSlot    Slot[[]model.Tag]
	authorSlot Slot[[]model.Author]
	mediaSlot  Slot[[]model.MediaItem]

	tab      Tab
	picker   PickerMode
	notice   *model.Notice
	redirect string
	saving   bool

	editor  *editor.Editor
	tags    *combobox.Combobox[model.Tag]
	authors *combobox.Combobox[model.Author]

	changes  event.Feed[Change]
	disposer event.Disposer
	closed   atomic.Bool
}

// NewCreateForm starts an empty draft.
func NewCreateForm(deps Deps) (*Form, error) {
	return newForm(deps, ModeCreate, "")
}

// NewUpdateForm opens the post with the given id. Its fields stay empty
// until Load fetches it.
func NewUpdateForm(deps Deps, id model.PostID) (*Form, error) {
	if id == "" {
		return nil, fmt.Errorf("update form: %w", api.ErrMissingID)
	}
	return newForm(deps, ModeUpdate, id)
}

func newForm(deps Deps, mode Mode, id model.PostID) (*Form, error) {
	var opts []editor.Option
	if deps.Toolbar != nil {
		opts = append(opts, editor.WithToolbar(deps.Toolbar))
	}
	ed, err := editor.New("", opts...)
	if err != nil {
		return nil, err
	}

	f := &Form{
		id:      uuid.NewString(),
		mode:    mode,
		target:  id,
		post:    model.NewPost(),
		backend: deps.Backend,
		tab:     TabEditor,
		editor:  ed,
	}
	f.tags = combobox.New(nil, nil, f.SetTags).Named("tags-" + f.id)
	f.authors = combobox.New(nil, nil, f.SetAuthors).Named("authors-" + f.id)
	f.disposer.Add(ed.Subscribe(f.contentChanged))
	return f, nil
}

func (f *Form) ID() string { return f.id }

func (f *Form) Mode() Mode { return f.mode }

// Target is the id of the post an update form edits.
func (f *Form) Target() model.PostID { return f.target }

func (f *Form) Editor() *editor.Editor { return f.editor }

func (f *Form) TagBox() *combobox.Combobox[model.Tag] { return f.tags }

func (f *Form) AuthorBox() *combobox.Combobox[model.Author] { return f.authors }

// Post returns a copy of the post as it would be sent now.
func (f *Form) Post() *model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.post.Clone()
}

// Subscribe registers fn for every change to the form.
func (f *Form) Subscribe(fn func(Change)) func() {
	return f.changes.Subscribe(fn)
}

func (f *Form) emit(kind ChangeKind) {
	if f.closed.Load() {
		return
	}
	f.changes.Publish(Change{Session: f.id, Kind: kind})
}

// Mount attaches the editor and both comboboxes to the page bus.
func (f *Form) Mount(bus *event.Bus) func() {
	var d event.Disposer
	d.Add(f.editor.Mount(bus))
	d.Add(f.tags.Mount(bus))
	d.Add(f.authors.Mount(bus))
	return d.Dispose
}

// Close releases the form's own subscriptions. Loader results arriving
// afterwards are dropped and no further changes are published.
func (f *Form) Close() {
	if f.closed.Swap(true) {
		return
	}
	f.disposer.Dispose()
}

// Load runs the loaders as one join. Each loader fills its own slot, so a
// failing one leaves the others usable. The joined error is returned for
// logging only.
func (f *Form) Load(ctx context.Context) error {
	var g errgroup.Group

	if f.mode == ModeUpdate {
		f.mu.Lock()
		f.postSlot.start()
		f.mu.Unlock()
		g.Go(func() error {
			p, err := f.backend.GetPost(ctx, f.target)
			f.postLoaded(p, err)
			return err
		})
	}

	f.mu.Lock()
	f.tagSlot.start()
	f.authorSlot.start()
	f.mediaSlot.start()
	f.mu.Unlock()

	g.Go(func() error {
		tags, err := f.backend.ListTags(ctx)
		f.mu.Lock()
		f.tagSlot.finish(tags, err)
		f.mu.Unlock()
		if err == nil {
			f.tags.SetOptions(tags)
		}
		return err
	})
	g.Go(func() error {
		authors, err := f.backend.ListAuthors(ctx)
		f.mu.Lock()
		f.authorSlot.finish(authors, err)
		f.mu.Unlock()
		if err == nil {
			f.authors.SetOptions(authors)
		}
		return err
	})
	g.Go(func() error {
		media, err := f.backend.ListMedia(ctx)
		f.mu.Lock()
		f.mediaSlot.finish(media, err)
		f.mu.Unlock()
		return err
	})

	_ = g.Wait()

	// errgroup keeps only the first error; the slots keep all of them.
	f.mu.Lock()
	err := errors.Join(
		wrap("post", f.postSlot.Err),
		wrap("tags", f.tagSlot.Err),
		wrap("authors", f.authorSlot.Err),
		wrap("media", f.mediaSlot.Err),
	)
	f.mu.Unlock()
	if err != nil {
		authoringLogger.Error().Err(err).Str("session", f.id).Msg("Error loading authoring form")
	}
	f.emit(ChangeLoaded)
	return err
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func (f *Form) postLoaded(p *model.Post, err error) {
	f.mu.Lock()
	f.postSlot.finish(p, err)
	if err != nil || p == nil || f.closed.Load() {
		f.mu.Unlock()
		return
	}
	f.post = p.Clone()
	if f.post.Tags == nil {
		f.post.Tags = []model.Tag{}
	}
	if f.post.Authors == nil {
		f.post.Authors = []model.Author{}
	}
	content, tags, authors := f.post.Content, f.post.Tags, f.post.Authors
	f.mu.Unlock()

	if err := f.editor.SetContent(content); err != nil {
		authoringLogger.Warn().Err(err).Str("session", f.id).Msg("Stored content did not parse")
	}
	f.tags.SetSelected(tags)
	f.authors.SetSelected(authors)
}
