// Package combobox is a searchable multi-select over named options.
package combobox

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/debemdeboas/the-press/internal/event"
)

// Option is anything with an identity and a display name.
type Option interface {
	OptionID() string
	OptionName() string
}

// Combobox keeps the chosen subset of its options. Options are matched by
// name, so two options sharing a name toggle together.
type Combobox[T Option] struct {
	mu       sync.Mutex
	id       string
	options  []T
	selected []T
	open     bool
	search   string
	onChange func([]T)
}

func New[T Option](options, selected []T, onChange func([]T)) *Combobox[T] {
	return &Combobox[T]{
		id:       "combobox-" + uuid.NewString(),
		options:  options,
		selected: append([]T(nil), selected...),
		onChange: onChange,
	}
}

// Named sets the id of the element the control renders into.
func (c *Combobox[T]) Named(id string) *Combobox[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	return c
}

func (c *Combobox[T]) ID() string {
	return c.id
}

// SetOptions replaces the option list without touching the selection.
func (c *Combobox[T]) SetOptions(options []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = options
}

func (c *Combobox[T]) Options() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.options...)
}

// SetSelected replaces the selection without notifying.
func (c *Combobox[T]) SetSelected(selected []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = append([]T(nil), selected...)
}

func (c *Combobox[T]) Selected() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.selected...)
}

func (c *Combobox[T]) IsSelected(opt T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(opt.OptionName()) >= 0
}

func (c *Combobox[T]) indexOf(name string) int {
	for i, s := range c.selected {
		if s.OptionName() == name {
			return i
		}
	}
	return -1
}

// Toggle adds opt to the selection or removes every selected option with
// the same name, then hands the full selection to the change callback.
func (c *Combobox[T]) Toggle(opt T) {
	c.mu.Lock()
	name := opt.OptionName()
	if c.indexOf(name) >= 0 {
		kept := c.selected[:0:0]
		for _, s := range c.selected {
			if s.OptionName() != name {
				kept = append(kept, s)
			}
		}
		c.selected = kept
	} else {
		c.selected = append(c.selected, opt)
	}
	out := append([]T(nil), c.selected...)
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(out)
	}
}

// ToggleID toggles the option with the given id. It reports false when no
// option has that id.
func (c *Combobox[T]) ToggleID(id string) bool {
	c.mu.Lock()
	var (
		opt   T
		found bool
	)
	for _, o := range c.options {
		if o.OptionID() == id {
			opt, found = o, true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.Toggle(opt)
	}
	return found
}

func (c *Combobox[T]) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
}

// Close collapses the control and forgets the search term.
func (c *Combobox[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open, c.search = false, ""
}

func (c *Combobox[T]) ToggleOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
	if !c.open {
		c.search = ""
	}
}

func (c *Combobox[T]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Combobox[T]) Search(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

func (c *Combobox[T]) Term() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Filtered returns the options whose name contains the search term,
// ignoring case.
func (c *Combobox[T]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	term := strings.ToLower(strings.TrimSpace(c.search))
	if term == "" {
		return append([]T(nil), c.options...)
	}
	var out []T
	for _, o := range c.options {
		if strings.Contains(strings.ToLower(o.OptionName()), term) {
			out = append(out, o)
		}
	}
	return out
}

// Mount collapses the control on any click outside its region. The
// returned func removes the listener.
func (c *Combobox[T]) Mount(bus *event.Bus) func() {
	return bus.On(event.Click, func(e *event.Event) {
		if !e.Within(c.ID()) {
			c.Close()
		}
	})
}
