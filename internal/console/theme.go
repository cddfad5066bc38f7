package console

import (
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/theme"
	"github.com/debemdeboas/the-press/internal/util"
)

func serveThemeToggle(w http.ResponseWriter, r *http.Request) {
	next := theme.FromRequest(r).Toggled()
	theme.SetThemeCookie(w, next.Theme)

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"value": next.Theme, "syntaxTheme": next.Syntax},
	})
	w.Header().Set(config.HHxTrigger, string(trigger))
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(next.Icon()))
}

func serveSyntaxThemeSet(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("syntax-theme-select")
	if !theme.IsSyntax(name) {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}
	theme.SetSyntaxCookie(w, name)
	writeSyntaxCSS(w, name)
}

func serveSyntaxThemeGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("theme")
	if !theme.IsSyntax(name) {
		http.NotFound(w, r)
		return
	}
	writeSyntaxCSS(w, name)
}

func writeSyntaxCSS(w http.ResponseWriter, name string) {
	css := []byte(theme.SyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(css))
	w.WriteHeader(http.StatusOK)
	w.Write(css)
}
