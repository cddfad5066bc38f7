package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/theme"
)

type PageData struct {
	SiteName string

	PageURL string

	Theme     string
	ThemeIcon template.HTML

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string

	// Display name of the signed-in account, empty on the sign-in page.
	SignedInAs string
	Notice     *Notice
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown once after an action.
type Notice struct {
	Kind    NoticeKind
	Message string
}

func Success(msg string) *Notice { return &Notice{Kind: NoticeSuccess, Message: msg} }

func Failure(msg string) *Notice { return &Notice{Kind: NoticeError, Message: msg} }

func NewPageData(r *http.Request) *PageData {
	prefs := theme.FromRequest(r)
	return &PageData{
		SiteName:     config.AppConfig.Site.Name,
		PageURL:      r.URL.Path,
		Theme:        prefs.Theme,
		ThemeIcon:    template.HTML(prefs.Icon()),
		SyntaxTheme:  prefs.Syntax,
		SyntaxThemes: theme.SyntaxThemes(),
		SyntaxCSS:    theme.SyntaxCSS(prefs.Syntax),
	}
}

func (pd *PageData) IsEditor() bool {
	return strings.HasPrefix(pd.PageURL, config.EditorURLPath)
}

// Active reports whether the nav entry for path is the current page.
func (pd *PageData) Active(path string) bool {
	if path == config.DashboardURLPath {
		return pd.PageURL == path
	}
	return strings.HasPrefix(pd.PageURL, path)
}
