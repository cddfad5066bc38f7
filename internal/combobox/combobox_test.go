package combobox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/debemdeboas/the-press/internal/event"
)

type opt struct {
	id, name string
}

func (o opt) OptionID() string   { return o.id }
func (o opt) OptionName() string { return o.name }

var (
	goTag   = opt{"1", "Go"}
	rustTag = opt{"2", "Rust"}
	webTag  = opt{"3", "Web Dev"}
)

func TestToggleEmitsFullSelection(t *testing.T) {
	var emitted [][]opt
	c := New([]opt{goTag, rustTag, webTag}, nil, func(s []opt) { emitted = append(emitted, s) })

	c.Toggle(goTag)
	c.Toggle(rustTag)
	c.Toggle(goTag)

	assert.Equal(t, [][]opt{
		{goTag},
		{goTag, rustTag},
		{rustTag},
	}, emitted)
	assert.Equal(t, []opt{rustTag}, c.Selected())
}

func TestToggleByName(t *testing.T) {
	twin := opt{"9", "Go"}
	var last []opt
	c := New([]opt{goTag, twin}, []opt{goTag}, func(s []opt) { last = s })

	assert.True(t, c.IsSelected(twin), "options sharing a name are the same selection")
	c.Toggle(twin)
	assert.Empty(t, last)
	assert.False(t, c.IsSelected(goTag))
}

func TestToggleID(t *testing.T) {
	var last []opt
	c := New([]opt{goTag, rustTag}, nil, func(s []opt) { last = s })

	assert.True(t, c.ToggleID("2"))
	assert.Equal(t, []opt{rustTag}, last)
	assert.False(t, c.ToggleID("404"))
}

func TestInitialSelectionIsCopied(t *testing.T) {
	initial := []opt{goTag}
	c := New([]opt{goTag, rustTag}, initial, nil)
	c.Toggle(rustTag)
	assert.Equal(t, []opt{goTag}, initial)
	assert.Len(t, c.Selected(), 2)
}

func TestFiltered(t *testing.T) {
	c := New([]opt{goTag, rustTag, webTag}, nil, nil)
	assert.Len(t, c.Filtered(), 3)

	c.Search("DEV")
	assert.Equal(t, []opt{webTag}, c.Filtered())

	c.Search("zig")
	assert.Empty(t, c.Filtered())
}

func TestOpenClose(t *testing.T) {
	c := New([]opt{goTag}, nil, nil)
	assert.False(t, c.IsOpen())

	c.ToggleOpen()
	assert.True(t, c.IsOpen())
	c.Search("g")

	c.Close()
	assert.False(t, c.IsOpen())
	assert.Empty(t, c.Term())

	c.Open()
	assert.True(t, c.IsOpen())
}

func TestMountClickOutside(t *testing.T) {
	bus := event.NewBus()
	c := New([]opt{goTag}, nil, nil).Named("tags")
	dispose := c.Mount(bus)

	c.Open()
	bus.Dispatch(&event.Event{Type: event.Click, Target: "tags-search", Path: []string{"tags", "form"}})
	assert.True(t, c.IsOpen(), "clicks inside keep it open")

	bus.Dispatch(&event.Event{Type: event.Click, Target: "title", Path: []string{"form"}})
	assert.False(t, c.IsOpen())

	dispose()
	c.Open()
	bus.Dispatch(&event.Event{Type: event.Click, Target: "title"})
	assert.True(t, c.IsOpen(), "no listener after dispose")
}
