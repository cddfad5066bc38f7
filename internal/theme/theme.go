// Package theme resolves the console's light/dark theme and the chroma style
// used to highlight code in post previews.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/config"
)

// Prefs is the pair of display choices carried in cookies.
type Prefs struct {
	Theme  string
	Syntax string

	// True when the syntax style came from a cookie rather than the
	// theme's default.
	syntaxChosen bool
}

// FromRequest reads the cookies, falling back to configured defaults for
// missing or unknown values.
func FromRequest(r *http.Request) Prefs {
	p := Prefs{Theme: config.AppConfig.Theme.Default}
	if cookie, err := r.Cookie(config.CookieTheme); err == nil && IsTheme(cookie.Value) {
		p.Theme = cookie.Value
	}
	if !IsTheme(p.Theme) {
		p.Theme = config.DefaultTheme
	}

	p.Syntax = DefaultSyntax(p.Theme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && IsSyntax(cookie.Value) {
		p.Syntax = cookie.Value
		p.syntaxChosen = true
	}
	return p
}

// Toggled flips light and dark. A syntax style the user picked survives the
// flip; a defaulted one follows the new theme.
func (p Prefs) Toggled() Prefs {
	next := Prefs{Theme: config.LightTheme, Syntax: p.Syntax, syntaxChosen: p.syntaxChosen}
	if p.Theme == config.LightTheme {
		next.Theme = config.DarkTheme
	}
	if !p.syntaxChosen {
		next.Syntax = DefaultSyntax(next.Theme)
	}
	return next
}

// Icon is the icon of the theme a toggle would switch to.
func (p Prefs) Icon() string {
	if p.Theme == config.LightTheme {
		return config.DarkThemeIcon
	}
	return config.LightThemeIcon
}

func SetThemeCookie(w http.ResponseWriter, theme string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieTheme,
		Value:    theme,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func SetSyntaxCookie(w http.ResponseWriter, syntax string) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    syntax,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func IsTheme(name string) bool {
	return name == config.LightTheme || name == config.DarkTheme
}

// IsSyntax reports whether chroma knows a style by that name.
func IsSyntax(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

func DefaultSyntax(theme string) string {
	if theme == config.LightTheme {
		return config.AppConfig.Theme.SyntaxHighlighting.DefaultLight
	}
	return config.AppConfig.Theme.SyntaxHighlighting.DefaultDark
}

func SyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func Formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// SyntaxCSS returns the stylesheet for a chroma style, scoped to the
// preview pane.
func SyntaxCSS(name string) template.CSS {
	if css, ok := cache.SyntaxCSS(name); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(name)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Calculate the color of highlighted text given the background color
		// for when the Chroma theme doesn't supply a default
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := Formatter().WriteCSS(&buf, style); err != nil {
		return ""
	}
	css := template.CSS(buf.String())
	cache.StoreSyntaxCSS(name, css)
	return css
}
