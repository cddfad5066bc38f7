package authoring

import (
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/slug"
)

func (f *Form) update(kind ChangeKind, fn func(p *model.Post)) {
	f.mu.Lock()
	fn(f.post)
	f.mu.Unlock()
	f.emit(kind)
}

// SetTitle also recomputes the slug, replacing any manual edit.
func (f *Form) SetTitle(title string) {
	f.update(ChangeFields, func(p *model.Post) {
		p.Title = title
		p.Slug = slug.Slugify(title)
	})
}

func (f *Form) SetSlug(s string) {
	f.update(ChangeFields, func(p *model.Post) { p.Slug = s })
}

func (f *Form) SetDescription(s string) {
	f.update(ChangeFields, func(p *model.Post) { p.Description = s })
}

func (f *Form) SetSEOTitle(s string) {
	f.update(ChangeFields, func(p *model.Post) { p.SEOTitle = s })
}

func (f *Form) SetSEODescription(s string) {
	f.update(ChangeFields, func(p *model.Post) { p.SEODescription = s })
}

func (f *Form) SetFeatured(featured bool) {
	f.update(ChangeFields, func(p *model.Post) { p.IsFeatured = featured })
}

// SetTags stores the full selection handed over by the tag combobox.
func (f *Form) SetTags(tags []model.Tag) {
	f.update(ChangeFields, func(p *model.Post) {
		p.Tags = append([]model.Tag{}, tags...)
	})
}

func (f *Form) SetAuthors(authors []model.Author) {
	f.update(ChangeFields, func(p *model.Post) {
		p.Authors = append([]model.Author{}, authors...)
	})
}

// SetPublished drives the status switch of an existing post.
func (f *Form) SetPublished(published bool) error {
	if f.mode != ModeUpdate {
		return ErrWrongMode
	}
	f.update(ChangeFields, func(p *model.Post) {
		p.Status = model.StatusDraft
		if published {
			p.Status = model.StatusPublished
		}
	})
	return nil
}

// SetContent replaces the body, editor included.
func (f *Form) SetContent(html string) error {
	if err := f.editor.SetContent(html); err != nil {
		return err
	}
	f.contentChanged(f.editor.Content())
	return nil
}

func (f *Form) contentChanged(html string) {
	f.update(ChangeContent, func(p *model.Post) { p.Content = html })
}

func (f *Form) Tab() Tab {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tab
}

func (f *Form) SetTab(t Tab) {
	if t != TabPreview && t != TabSource {
		t = TabEditor
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tab = t
}

func (f *Form) Picker() PickerMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.picker
}

func (f *Form) OpenMediaPicker(mode PickerMode) {
	if mode != PickerContent {
		mode = PickerFeatured
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.picker = mode
}

func (f *Form) CloseMediaPicker() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.picker = PickerClosed
}

// SelectMedia uses item for whatever the picker was opened for and closes
// it. In content mode the image goes in at the editor caret.
func (f *Form) SelectMedia(item model.MediaItem) bool {
	f.mu.Lock()
	mode := f.picker
	f.picker = PickerClosed
	f.mu.Unlock()

	switch mode {
	case PickerFeatured:
		f.update(ChangeFields, func(p *model.Post) { p.FeaturedImage = item.URL })
	case PickerContent:
		f.editor.InsertImage(item.URL, item.AltText)
	default:
		return false
	}
	return true
}

func (f *Form) RemoveFeaturedImage() {
	f.update(ChangeFields, func(p *model.Post) { p.FeaturedImage = "" })
}

// Restore puts an autosaved post back into the form.
func (f *Form) Restore(p *model.Post) error {
	if err := f.editor.SetContent(p.Content); err != nil {
		return err
	}
	f.mu.Lock()
	restored := p.Clone()
	restored.ID = f.post.ID
	if f.mode == ModeCreate {
		restored.ID = ""
	}
	f.post = restored
	f.mu.Unlock()

	f.tags.SetSelected(restored.Tags)
	f.authors.SetSelected(restored.Authors)
	f.emit(ChangeLoaded)
	return nil
}

func (f *Form) PostSlot() Slot[*model.Post] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postSlot
}

func (f *Form) TagSlot() Slot[[]model.Tag] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tagSlot
}

func (f *Form) AuthorSlot() Slot[[]model.Author] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorSlot
}

func (f *Form) MediaSlot() Slot[[]model.MediaItem] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mediaSlot
}

// AddMedia appends a freshly uploaded item to the picker list.
func (f *Form) AddMedia(item model.MediaItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaSlot.Value = append(f.mediaSlot.Value, item)
}

// LoadErr is the error of a failed post fetch in update mode.
func (f *Form) LoadErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postSlot.Err
}
