package cache

import "html/template"

// Static files are served with a strong ETag built from their content hash.
var staticETags = NewCache[string, string]()

// SetStaticHash records the content hash of the static file served at path.
func SetStaticHash(path, hash string) {
	staticETags.Set(path, `"`+hash+`"`)
}

// StaticETag returns the quoted ETag for the static file served at path.
func StaticETag(path string) (string, bool) {
	return staticETags.Get(path)
}

func StaticFiles() int {
	return staticETags.Len()
}

// Generated chroma stylesheets. Style names come from cookies, so the
// cache is bounded.
var syntaxSheets = NewBoundedCache[string, template.CSS](64)

func SyntaxCSS(style string) (template.CSS, bool) {
	return syntaxSheets.Get(style)
}

func StoreSyntaxCSS(style string, css template.CSS) {
	syntaxSheets.Set(style, css)
}
