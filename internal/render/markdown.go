package render

import (
	"fmt"
	"html"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

const (
	RendererClassic = "classic"
	RendererMmark   = "mmark"
)

// codeBlockHook writes fenced code the way the editor stores code lines, so
// imported posts stay editable. Highlighting happens at preview time.
func codeBlockHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	code, ok := node.(*ast.CodeBlock)
	if !ok || !entering {
		return ast.GoToNext, false
	}
	fmt.Fprintf(w, "<pre class=\"ql-syntax\" spellcheck=\"false\">%s</pre>\n", html.EscapeString(string(code.Literal)))
	return ast.GoToNext, true
}

// Markdown converts md to a post body with the named renderer.
func Markdown(md []byte, renderer string) ([]byte, *mast.TitleData) {
	if renderer == RendererMmark {
		return MarkdownMmark(md)
	}
	return MarkdownClassic(md), nil
}

func MarkdownClassic(md []byte) []byte {
	opts := md_html.RendererOptions{
		Flags:          md_html.CommonFlags | md_html.HrefTargetBlank,
		RenderNodeHook: codeBlockHook,
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.BackslashLineBreak | parser.OrderedListStart | parser.NoIntraEmphasis,
	).Parse(markdown.NormalizeNewlines(md))

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// MarkdownMmark renders with the mmark dialect and returns the title block
// when the document has one.
func MarkdownMmark(md []byte) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)

	init := mparser.NewInitial("")
	var info *mast.TitleData

	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		ReadIncludeFn: init.ReadInclude,
		Flags:         parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	language := "en"
	if info != nil && info.Language != "" {
		language = info.Language
	}
	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	opts := md_html.RendererOptions{
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := codeBlockHook(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts)), info
}
