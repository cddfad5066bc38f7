package render

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/the-press/internal/theme"
)

// sourceFormatter numbers lines and wraps them so a long paragraph stays
// inside the pane.
var sourceFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.WithLineNumbers(true),
	chromahtml.WrapLongLines(true),
)

// blockBreaks puts every closed block element of a post body on its own
// line in the source view.
var blockBreaks = strings.NewReplacer(
	"</p>", "</p>\n",
	"</h1>", "</h1>\n",
	"</h2>", "</h2>\n",
	"</h3>", "</h3>\n",
	"</h4>", "</h4>\n",
	"</h5>", "</h5>\n",
	"</h6>", "</h6>\n",
	"</ol>", "</ol>\n",
	"</ul>", "</ul>\n",
	"</pre>", "</pre>\n",
	"</blockquote>", "</blockquote>\n",
	"</div>", "</div>\n",
)

// HighlightCode highlights one code block for the preview. An unknown
// language is guessed from the code.
func HighlightCode(code, language, highlightTheme string) string {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	out, err := highlight(lexer, code, highlightTheme, theme.Formatter())
	if err != nil {
		return html.EscapeString(code)
	}
	return out
}

// HighlightSource renders a post body as highlighted HTML source for the
// editor's source tab. On error the escaped source is returned with it.
func HighlightSource(source string, highlightTheme string) (string, error) {
	source = strings.TrimRight(blockBreaks.Replace(source), "\n")
	out, err := highlight(lexers.Get("html"), source, highlightTheme, sourceFormatter)
	if err != nil {
		return `<div class="source-view"><pre>` + html.EscapeString(source) + `</pre></div>`, err
	}
	return `<div class="source-view">` + out + `</div>`, nil
}

func highlight(lexer chroma.Lexer, code, style string, f *chromahtml.Formatter) (string, error) {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := f.Format(&buf, styles.Get(style), iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}
