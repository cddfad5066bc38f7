package console

import (
	"html/template"
	"strconv"

	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/combobox"
	"github.com/debemdeboas/the-press/internal/document"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/model"
)

// surfaceView is the editing surface as the browser draws it. Every block
// carries its id and flat start index so the page can report clicks and
// carets in document positions.
type surfaceView struct {
	ID          string
	Blocks      []blockView
	Focused     bool
	Caret       int
	CaretLength int
	Selected    []string
}

type blockView struct {
	ID       string
	Kind     document.Kind
	Start    int
	Length   int
	Class    string
	HTML     template.HTML
	Src      string
	Alt      string
	Caption  string
	Selected bool
}

func (b blockView) IsImage() bool { return b.Kind == document.KindImage }

func (b blockView) IsVideo() bool { return b.Kind == document.KindVideo }

func surfaceOf(e *editor.Editor) surfaceView {
	doc := e.Document()
	sel, focused := e.Cursor()
	v := surfaceView{
		ID:          e.SurfaceID(),
		Focused:     focused,
		Caret:       sel.Index,
		CaretLength: sel.Length,
		Selected:    e.Selected(),
		Blocks:      make([]blockView, 0, len(doc.Blocks)),
	}

	start := 0
	for _, b := range doc.Blocks {
		bv := blockView{
			ID:       b.ID,
			Kind:     b.Kind,
			Start:    start,
			Length:   b.Len(),
			Src:      b.Src,
			Alt:      b.Alt,
			Caption:  b.Caption,
			Selected: e.IsSelected(b.ID),
		}
		if b.Kind == document.KindText {
			bv.Class = lineClass(b)
			bv.HTML = template.HTML(b.InlineHTML())
		}
		v.Blocks = append(v.Blocks, bv)
		start += b.Len()
	}
	return v
}

// lineClass names the block format and alignment of a text line.
func lineClass(b *document.Block) string {
	class := "line"
	switch b.Format {
	case document.FormatHeading:
		class += " line-h" + strconv.Itoa(min(max(b.Level, 1), 6))
	case document.FormatParagraph:
	default:
		class += " line-" + string(b.Format)
	}
	if b.Align != document.AlignLeft {
		class += " ql-align-" + string(b.Align)
	}
	return class
}

type optionView struct {
	ID       string
	Name     string
	Selected bool
}

type comboView struct {
	Session  string
	Box      string
	ID       string
	Label    string
	Open     bool
	Term     string
	Selected []optionView
	Options  []optionView
	Loading  bool
	Error    string
	// OOB marks the control for an out-of-band htmx swap.
	OOB bool
}

func comboOf[T combobox.Option](session, box, label string, c *combobox.Combobox[T], slot authoring.Slot[[]T]) comboView {
	v := comboView{
		Session: session,
		Box:     box,
		ID:      c.ID(),
		Label:   label,
		Open:    c.IsOpen(),
		Term:    c.Term(),
		Loading: slot.Loading,
	}
	if slot.Failed() {
		v.Error = "Could not load " + box
	}
	for _, o := range c.Selected() {
		v.Selected = append(v.Selected, optionView{ID: o.OptionID(), Name: o.OptionName(), Selected: true})
	}
	for _, o := range c.Filtered() {
		v.Options = append(v.Options, optionView{ID: o.OptionID(), Name: o.OptionName(), Selected: c.IsSelected(o)})
	}
	return v
}

type pickerView struct {
	Mode    authoring.PickerMode
	Open    bool
	Items   []model.MediaItem
	Loading bool
	Error   string
}

func pickerOf(f *authoring.Form) pickerView {
	slot := f.MediaSlot()
	v := pickerView{
		Mode:    f.Picker(),
		Items:   slot.Value,
		Loading: slot.Loading,
	}
	v.Open = v.Mode != authoring.PickerClosed
	if slot.Failed() {
		v.Error = "Could not load the media library"
	}
	return v
}
