// Package render turns post bodies into preview HTML with highlighted code,
// and markdown into post bodies for imports.
package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/util"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// EmptyPreview is shown while the post has no body yet.
const EmptyPreview = `<p class="preview-empty">Start typing in the editor to see a preview here.</p>`

// Preview renders a post body the way readers will see it: code blocks
// highlighted, editing affordances stripped.
func Preview(content, highlightTheme string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return []byte(EmptyPreview), nil
	}

	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := renderNode(&buf, n, highlightTheme); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func renderNode(buf *bytes.Buffer, n *xhtml.Node, highlightTheme string) error {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Pre {
		buf.WriteString(`<div class="highlight">`)
		buf.WriteString(HighlightCode(textOf(n), languageOf(n), highlightTheme))
		buf.WriteString(`</div>`)
		return nil
	}
	if n.Type == xhtml.ElementNode && n.FirstChild != nil && hasDescendant(n, atom.Pre) {
		// Re-emit the element around its rewritten children.
		shallow := &xhtml.Node{Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Attr: stripEditing(n.Attr)}
		var open bytes.Buffer
		if err := xhtml.Render(&open, shallow); err != nil {
			return err
		}
		tag := open.String()
		closing := "</" + n.Data + ">"
		buf.WriteString(strings.TrimSuffix(tag, closing))
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := renderNode(buf, c, highlightTheme); err != nil {
				return err
			}
		}
		buf.WriteString(closing)
		return nil
	}
	strip(n)
	return xhtml.Render(buf, n)
}

func strip(n *xhtml.Node) {
	if n.Type == xhtml.ElementNode {
		n.Attr = stripEditing(n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		strip(c)
	}
}

func stripEditing(attrs []xhtml.Attribute) []xhtml.Attribute {
	out := attrs[:0:0]
	for _, a := range attrs {
		if a.Key == "contenteditable" || a.Key == "spellcheck" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func hasDescendant(n *xhtml.Node, a atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == a || hasDescendant(c, a) {
			return true
		}
	}
	return false
}

func textOf(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch {
		case n.Type == xhtml.TextNode:
			b.WriteString(n.Data)
		case n.DataAtom == atom.Br:
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// languageOf reads a language-* class from the pre or its code child.
func languageOf(n *xhtml.Node) string {
	for _, el := range []*xhtml.Node{n, n.FirstChild} {
		if el == nil || el.Type != xhtml.ElementNode {
			continue
		}
		for _, a := range el.Attr {
			if a.Key == "data-language" {
				return a.Val
			}
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if lang, ok := strings.CutPrefix(c, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

// Mutex to protect the check-render-set operation in PreviewCached
var renderCacheMutex sync.Mutex

// PreviewCached is Preview behind a cache keyed by content hash and theme.
// A body that fails to parse is shown escaped.
func PreviewCached(content, highlightTheme string) template.HTML {
	contentHash := util.ContentHashString(content)

	if cached, found := cache.GetRenderedPreview(contentHash, highlightTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache hit for rendered preview")
		return template.HTML(cached)
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache miss for rendered preview")
	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedPreview(contentHash, highlightTheme); found {
		return template.HTML(cached)
	}

	out, err := Preview(content, highlightTheme)
	if err != nil {
		renderLogger.Error().Err(err).Str("contentHash", contentHash).Msg("Error rendering preview")
		return template.HTML("<pre>" + html.EscapeString(content) + "</pre>")
	}
	cache.SetRenderedPreview(contentHash, highlightTheme, out)
	return template.HTML(out)
}

// WarmCache pre-renders a preview asynchronously to warm the cache
func WarmCache(content, highlightTheme string) {
	go func() {
		PreviewCached(content, highlightTheme)
		renderLogger.Debug().Str("highlightTheme", highlightTheme).Msg("Cache warming completed")
	}()
}
