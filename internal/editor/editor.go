// Package editor wraps a document with a caret, embed selection and a
// toolbar, and reports every content change to its subscribers.
package editor

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/document"
	"github.com/debemdeboas/the-press/internal/event"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

const (
	KeyBackspace  = "Backspace"
	KeyDelete     = "Delete"
	KeyEnter      = "Enter"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"

	DefaultSurfaceID = "editor-surface"
)

// ClickTarget is where a click landed on the editing surface.
type ClickTarget struct {
	ID        string
	Tag       string
	Ancestors []string
}

func TargetOf(e *event.Event) ClickTarget {
	return ClickTarget{ID: e.Target, Tag: e.Kind, Ancestors: e.Path}
}

type Editor struct {
	mu      sync.Mutex
	doc     *document.Document
	sel     document.Range
	focused bool
	// pending marks apply to the next text typed at a caret.
	pending document.Mark

	selectedImage string
	selectedVideo string

	surfaceID string
	toolbar   *Toolbar
	changes   event.Feed[string]
}

type Option func(*Editor)

func WithToolbar(t *Toolbar) Option {
	return func(e *Editor) { e.toolbar = t }
}

func WithSurfaceID(id string) Option {
	return func(e *Editor) { e.surfaceID = id }
}

// New parses content into a fresh editor with no caret.
func New(content string, opts ...Option) (*Editor, error) {
	doc, err := document.Parse(content)
	if err != nil {
		return nil, err
	}
	e := &Editor{doc: doc, surfaceID: DefaultSurfaceID}
	for _, opt := range opts {
		opt(e)
	}
	if e.toolbar == nil {
		e.toolbar = NewToolbar()
	}
	return e, nil
}

func (e *Editor) Toolbar() *Toolbar { return e.toolbar }

func (e *Editor) SurfaceID() string { return e.surfaceID }

func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.HTML()
}

// Document returns a copy of the current document for rendering.
func (e *Editor) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// SetContent replaces the document without notifying subscribers. The caret
// and embed selection are reset.
func (e *Editor) SetContent(content string) error {
	doc, err := document.Parse(content)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
	e.sel, e.focused, e.pending = document.Range{}, false, 0
	e.selectedImage, e.selectedVideo = "", ""
	return nil
}

// Subscribe registers fn to receive the HTML after every change.
func (e *Editor) Subscribe(fn func(content string)) func() {
	return e.changes.Subscribe(fn)
}

// Cursor returns the current selection and whether the surface has one.
func (e *Editor) Cursor() (document.Range, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel, e.focused
}

func (e *Editor) SetCursor(index int) {
	e.SetRange(index, 0)
}

// SetRange selects [index, index+length), clamped to the document.
func (e *Editor) SetRange(index, length int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setRange(index, length)
	e.pending = 0
}

func (e *Editor) setRange(index, length int) {
	n := e.doc.Length()
	index = min(max(index, 0), n)
	length = min(max(length, 0), n-index)
	e.sel, e.focused = document.Range{Index: index, Length: length}, true
}

// Blur drops the selection; later insertions go to the end of the document.
func (e *Editor) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel, e.focused, e.pending = document.Range{}, false, 0
}

func (e *Editor) SelectedImage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedImage
}

func (e *Editor) SelectedVideo() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedVideo
}

// IsSelected reports whether the block with id carries the selected marker.
func (e *Editor) IsSelected(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return id != "" && (id == e.selectedImage || id == e.selectedVideo)
}

// Click updates the embed selection. Every click re-targets the video
// selection to the video containing the target, clearing it when there is
// none. An image click replaces the selected image; a click inside a video
// leaves the image alone. A click on neither clears both.
func (e *Editor) Click(t ClickTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()

	image := ""
	if t.Tag == "img" {
		if b, _ := e.doc.Block(t.ID); b != nil && b.Kind == document.KindImage {
			image = b.ID
		}
	}
	e.selectedVideo = ""
	for _, id := range append([]string{t.ID}, t.Ancestors...) {
		if b, _ := e.doc.Block(id); b != nil && b.Kind == document.KindVideo {
			e.selectedVideo = b.ID
			break
		}
	}
	switch {
	case image != "":
		e.selectedImage = image
	case e.selectedVideo == "":
		e.selectedImage = ""
	}
}

// KeyDown handles a key pressed on the surface. Delete and Backspace remove
// every selected embed and report the key as prevented; with no embed
// selected they delete text like any editor would.
func (e *Editor) KeyDown(key string) bool {
	e.mu.Lock()
	prevented, changed := e.keyDown(key)
	content := e.doc.HTML()
	e.mu.Unlock()

	if changed {
		e.changes.Publish(content)
	}
	return prevented
}

func (e *Editor) keyDown(key string) (prevented, changed bool) {
	switch key {
	case KeyBackspace, KeyDelete:
		var removed []string
		caret := e.sel.Index
		for _, id := range []string{e.selectedImage, e.selectedVideo} {
			if id == "" {
				continue
			}
			b, i := e.doc.Block(id)
			if b == nil {
				continue
			}
			// The caret keeps its place in the text that followed the embed.
			if start := e.doc.Start(i); start < caret {
				caret -= min(b.Len(), caret-start)
			}
			e.doc.RemoveBlock(id)
			removed = append(removed, id)
		}
		e.selectedImage, e.selectedVideo = "", ""
		if len(removed) > 0 {
			editorLogger.Debug().Strs("blocks", removed).Msg("Removed selected embeds")
			e.setRange(caret, 0)
			return true, true
		}
		if !e.focused {
			return false, false
		}
		before := e.doc.Length()
		switch {
		case e.sel.Length > 0:
			e.doc.DeleteRange(e.sel.Index, e.sel.Length)
			e.setRange(e.sel.Index, 0)
		case key == KeyBackspace:
			e.setRange(e.doc.DeleteBackward(e.sel.Index), 0)
		default:
			e.setRange(e.doc.DeleteForward(e.sel.Index), 0)
		}
		return false, e.doc.Length() != before
	case KeyEnter:
		return false, e.insertText("\n")
	case KeyArrowLeft:
		if e.focused && e.sel.Length > 0 {
			e.setRange(e.sel.Index, 0)
		} else if e.focused {
			e.setRange(e.sel.Index-1, 0)
		}
	case KeyArrowRight:
		if e.focused && e.sel.Length > 0 {
			e.setRange(e.sel.End(), 0)
		} else if e.focused {
			e.setRange(e.sel.Index+1, 0)
		}
	}
	return false, false
}

// Type inserts text at the caret, replacing a non-empty selection. Without
// a caret the text is appended.
func (e *Editor) Type(text string) {
	e.mu.Lock()
	changed := e.insertText(text)
	content := e.doc.HTML()
	e.mu.Unlock()

	if changed {
		e.changes.Publish(content)
	}
}

func (e *Editor) insertText(text string) bool {
	if text == "" {
		return false
	}
	at := e.insertionPoint()
	if e.focused && e.sel.Length > 0 {
		e.doc.DeleteRange(e.sel.Index, e.sel.Length)
	}
	end := e.doc.InsertText(at, text)
	for _, m := range []document.Mark{document.Bold, document.Italic, document.Underline, document.Strike} {
		if e.pending.Has(m) {
			e.doc.ToggleMark(at, end-at, m)
		}
	}
	e.setRange(end, 0)
	return true
}

func (e *Editor) insertionPoint() int {
	if e.focused {
		return e.sel.Index
	}
	return e.doc.Length()
}

// InsertImage inserts an image at the caret, or at the end without one, and
// moves the caret past it. It returns the new block id.
func (e *Editor) InsertImage(src, alt string) string {
	return e.insertEmbed(func(d *document.Document) *document.Block {
		return d.NewImage(src, alt)
	})
}

// InsertVideo inserts a video with a caption the same way InsertImage does.
func (e *Editor) InsertVideo(src, caption string) string {
	return e.insertEmbed(func(d *document.Document) *document.Block {
		return d.NewVideo(src, caption)
	})
}

func (e *Editor) insertEmbed(newBlock func(*document.Document) *document.Block) string {
	e.mu.Lock()
	b := newBlock(e.doc)
	e.setRange(e.doc.InsertBlock(e.insertionPoint(), b), 0)
	content := e.doc.HTML()
	e.mu.Unlock()

	e.changes.Publish(content)
	return b.ID
}

// Edit runs fn against the document and the current selection under the
// editor lock. fn may move the selection and reports whether it changed the
// content.
func (e *Editor) Edit(fn func(d *document.Document, sel *document.Range, focused bool) bool) bool {
	e.mu.Lock()
	sel := e.sel
	changed := fn(e.doc, &sel, e.focused)
	if changed {
		if e.focused || sel != e.sel {
			e.setRange(sel.Index, sel.Length)
		}
		e.dropStaleSelection()
	}
	content := e.doc.HTML()
	e.mu.Unlock()

	if changed {
		e.changes.Publish(content)
	}
	return changed
}

// togglePending flips a mark for the next text typed at the caret.
func (e *Editor) togglePending(m document.Mark) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending ^= m
}

func (e *Editor) dropStaleSelection() {
	for _, id := range []*string{&e.selectedImage, &e.selectedVideo} {
		if b, _ := e.doc.Block(*id); b == nil {
			*id = ""
		}
	}
}

// Mount attaches the surface listeners to bus. Only events inside the
// editing surface are handled. The returned func detaches them.
func (e *Editor) Mount(bus *event.Bus) func() {
	var d event.Disposer
	d.Add(bus.On(event.Click, func(ev *event.Event) {
		if !ev.Within(e.surfaceID) {
			return
		}
		e.Click(TargetOf(ev))
	}))
	d.Add(bus.On(event.KeyDown, func(ev *event.Event) {
		if !ev.Within(e.surfaceID) {
			return
		}
		if e.KeyDown(ev.Key) {
			ev.PreventDefault()
		}
	}))
	return d.Dispose
}

// Selected lists the ids of the selected embeds.
func (e *Editor) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []string
	for _, id := range []string{e.selectedImage, e.selectedVideo} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Exec dispatches a toolbar command against the editor.
func (e *Editor) Exec(cmd Command, p Prompter) (bool, error) {
	return e.toolbar.Dispatch(e, cmd, p)
}
