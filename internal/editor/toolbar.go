package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/debemdeboas/the-press/internal/document"
	"github.com/debemdeboas/the-press/internal/embedurl"
)

const (
	PromptImageURL     = "Enter image URL:"
	PromptVideoURL     = "Enter video URL:"
	PromptVideoCaption = "Enter video caption (optional):"
	PromptLinkURL      = "Enter link URL:"

	DefaultVideoCaption = "Video caption..."
)

var (
	ErrUnknownCommand = errors.New("unknown toolbar command")
	ErrInvalidValue   = errors.New("invalid toolbar value")
)

// Command is one toolbar action, optionally with a value such as a heading
// level or an alignment.
type Command struct {
	Name  string
	Value string
}

// ParseCommand reads "name" or "name:value".
func ParseCommand(s string) Command {
	name, value, _ := strings.Cut(strings.TrimSpace(s), ":")
	return Command{Name: name, Value: value}
}

func (c Command) String() string {
	if c.Value == "" {
		return c.Name
	}
	return c.Name + ":" + c.Value
}

// Control is a toolbar entry as rendered on the page. Controls with Values
// are pickers, the others are buttons sending Value.
type Control struct {
	Name    string
	Value   string
	Values  []string
	Prompts []string
}

func (c Control) Command() Command {
	return Command{Name: c.Name, Value: c.Value}
}

type handler func(t *Toolbar, e *Editor, value string, p Prompter) (bool, error)

type Toolbar struct {
	groups         [][]Control
	handlers       map[string]handler
	defaultCaption string
}

type ToolbarOption func(*Toolbar)

// WithDefaultCaption sets the caption used when the caption prompt is left
// blank.
func WithDefaultCaption(caption string) ToolbarOption {
	return func(t *Toolbar) {
		if caption != "" {
			t.defaultCaption = caption
		}
	}
}

func NewToolbar(opts ...ToolbarOption) *Toolbar {
	t := &Toolbar{
		defaultCaption: DefaultVideoCaption,
		groups: [][]Control{
			{{Name: "header", Values: []string{"1", "2", "3", "4", "5", "6", ""}}},
			{{Name: "bold"}, {Name: "italic"}, {Name: "underline"}, {Name: "strike"}},
			{{Name: "list", Value: "ordered"}, {Name: "list", Value: "bullet"}},
			{
				{Name: "image", Prompts: []string{PromptImageURL}},
				{Name: "link", Prompts: []string{PromptLinkURL}},
				{Name: "video", Prompts: []string{PromptVideoURL, PromptVideoCaption}},
			},
			{{Name: "align", Values: []string{"", "center", "right", "justify"}}},
			{{Name: "blockquote"}, {Name: "code-block"}},
		},
		handlers: map[string]handler{
			"header":     headerHandler,
			"bold":       markHandler(document.Bold),
			"italic":     markHandler(document.Italic),
			"underline":  markHandler(document.Underline),
			"strike":     markHandler(document.Strike),
			"list":       listHandler,
			"image":      imageHandler,
			"link":       linkHandler,
			"video":      videoHandler,
			"align":      alignHandler,
			"blockquote": formatHandler(document.FormatQuote),
			"code-block": formatHandler(document.FormatCode),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Groups returns the controls in display order.
func (t *Toolbar) Groups() [][]Control {
	return t.groups
}

// Dispatch runs cmd against e. A declined prompt is not an error: it
// reports false and leaves the document untouched.
func (t *Toolbar) Dispatch(e *Editor, cmd Command, p Prompter) (bool, error) {
	h, ok := t.handlers[cmd.Name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	if p == nil {
		p = NoPrompter{}
	}
	handled, err := h(t, e, cmd.Value, p)
	if err != nil {
		return false, err
	}
	editorLogger.Debug().Str("command", cmd.String()).Bool("handled", handled).Msg("Toolbar command")
	return handled, nil
}

func headerHandler(_ *Toolbar, e *Editor, value string, _ Prompter) (bool, error) {
	format, level := document.FormatParagraph, 0
	if value != "" && value != "false" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 6 {
			return false, fmt.Errorf("%w: header %q", ErrInvalidValue, value)
		}
		format, level = document.FormatHeading, n
	}
	return e.Edit(func(d *document.Document, sel *document.Range, focused bool) bool {
		if !focused {
			return false
		}
		d.SetFormat(sel.Index, sel.Length, format, level)
		return true
	}), nil
}

func markHandler(m document.Mark) handler {
	return func(_ *Toolbar, e *Editor, _ string, _ Prompter) (bool, error) {
		sel, focused := e.Cursor()
		if !focused {
			return false, nil
		}
		if sel.Length == 0 {
			e.togglePending(m)
			return true, nil
		}
		return e.Edit(func(d *document.Document, sel *document.Range, _ bool) bool {
			d.ToggleMark(sel.Index, sel.Length, m)
			return true
		}), nil
	}
}

func listHandler(t *Toolbar, e *Editor, value string, p Prompter) (bool, error) {
	switch value {
	case "ordered":
		return formatHandler(document.FormatOrdered)(t, e, value, p)
	case "bullet":
		return formatHandler(document.FormatBullet)(t, e, value, p)
	}
	return false, fmt.Errorf("%w: list %q", ErrInvalidValue, value)
}

func formatHandler(f document.Format) handler {
	return func(_ *Toolbar, e *Editor, _ string, _ Prompter) (bool, error) {
		return e.Edit(func(d *document.Document, sel *document.Range, focused bool) bool {
			if !focused {
				return false
			}
			d.ToggleFormat(sel.Index, sel.Length, f)
			return true
		}), nil
	}
}

func alignHandler(_ *Toolbar, e *Editor, value string, _ Prompter) (bool, error) {
	a := document.ParseAlign(value)
	if string(a) != value && value != "left" {
		return false, fmt.Errorf("%w: align %q", ErrInvalidValue, value)
	}
	return e.Edit(func(d *document.Document, sel *document.Range, focused bool) bool {
		if !focused {
			return false
		}
		d.SetAlign(sel.Index, sel.Length, a)
		return true
	}), nil
}

func imageHandler(_ *Toolbar, e *Editor, _ string, p Prompter) (bool, error) {
	url, ok := p.Prompt(PromptImageURL)
	url = strings.TrimSpace(url)
	if !ok || url == "" {
		return false, nil
	}
	e.InsertImage(url, "")
	return true, nil
}

func videoHandler(t *Toolbar, e *Editor, _ string, p Prompter) (bool, error) {
	url, ok := p.Prompt(PromptVideoURL)
	url = strings.TrimSpace(url)
	if !ok || url == "" {
		return false, nil
	}
	caption, ok := p.Prompt(PromptVideoCaption)
	if !ok {
		return false, nil
	}
	if strings.TrimSpace(caption) == "" {
		caption = t.defaultCaption
	}
	e.InsertVideo(embedurl.Normalize(url), caption)
	return true, nil
}

// linkHandler links the selected text. A blank answer removes the link and
// a caret inserts the url as linked text.
func linkHandler(_ *Toolbar, e *Editor, _ string, p Prompter) (bool, error) {
	if _, focused := e.Cursor(); !focused {
		return false, nil
	}
	href, ok := p.Prompt(PromptLinkURL)
	if !ok {
		return false, nil
	}
	href = strings.TrimSpace(href)
	return e.Edit(func(d *document.Document, sel *document.Range, _ bool) bool {
		if sel.Length == 0 && href == "" {
			return false
		}
		end := d.SetLink(sel.Index, sel.Length, href)
		if sel.Length == 0 {
			*sel = document.Range{Index: end}
		}
		return true
	}), nil
}
