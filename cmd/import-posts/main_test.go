package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/render"
)

func TestConvert(t *testing.T) {
	imp := &importer{
		renderer: render.RendererClassic,
		tags:     map[string]model.Tag{"go": {ID: "t1", Name: "Go"}},
		authors:  map[string]model.Author{"ada": {ID: "a1", Name: "Ada"}},
	}

	t.Run("front matter", func(t *testing.T) {
		src := "%%%\ntitle = \"Hello There\"\ntags = [\"go\", \"unknown\"]\nauthors = [\"Ada\"]\npublished = true\n%%%\n\nSome **bold** text.\n"
		in, err := imp.convert("hello.md", []byte(src))
		require.NoError(t, err)
		assert.Equal(t, "Hello There", in.Title)
		assert.Equal(t, "hello-there", in.Slug)
		assert.Equal(t, model.StatusPublished, in.Status)
		assert.Equal(t, []model.Tag{{ID: "t1", Name: "Go"}}, in.Tags)
		assert.Equal(t, []model.Author{{ID: "a1", Name: "Ada"}}, in.Authors)
		assert.Contains(t, in.Content, "<strong>bold</strong>")
	})

	t.Run("plain markdown", func(t *testing.T) {
		in, err := imp.convert("notes-on-go.md", []byte("Just text.\n"))
		require.NoError(t, err)
		assert.Equal(t, "notes-on-go", in.Title)
		assert.Equal(t, model.StatusDraft, in.Status)
		assert.Contains(t, in.Content, "Just text.")
	})

	t.Run("broken front matter", func(t *testing.T) {
		_, err := imp.convert("bad.md", []byte("%%%\ntitle = \n%%%\nbody"))
		assert.Error(t, err)
	})
}
