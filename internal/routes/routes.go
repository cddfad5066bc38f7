// Package routes defines HTTP route constants for the console.
package routes

import "strings"

// Mux patterns
const (
	// Static and assets
	RobotsPath     = "GET /robots.txt"
	ThemeToggle    = "POST /theme/toggle"
	SyntaxThemeSet = "POST /syntax-theme/set"
	SyntaxThemeGet = "GET /syntax-theme/{theme}"

	// Auth
	SignIn       = "GET /signin"
	SignInSubmit = "POST /signin"
	SignOut      = "POST /signout"

	// Root
	Dashboard = "GET /{$}"

	// Posts, taxonomy and media
	Posts        = "GET /posts"
	PostDelete   = "DELETE /posts/{id}"
	PostRestore  = "POST /posts/{id}/restore"
	Tags         = "GET /tags"
	TagCreate    = "POST /tags"
	TagUpdate    = "POST /tags/{id}"
	TagDelete    = "DELETE /tags/{id}"
	Authors      = "GET /authors"
	AuthorCreate = "POST /authors"
	Media        = "GET /media"
	MediaUpload  = "POST /media"

	// Editor pages
	EditorNew     = "GET /editor/new"
	EditorPost    = "GET /editor/post/{id}"
	EditorDraft   = "GET /editor/draft/{key}"
	EditorSession = "GET /editor/{session}"

	// Authoring session actions
	SessionClose         = "DELETE /session/{session}"
	SessionSurface       = "GET /session/{session}/surface"
	SessionPreview       = "GET /session/{session}/preview"
	SessionSource        = "GET /session/{session}/source"
	SessionFields        = "POST /session/{session}/fields"
	SessionEvent         = "POST /session/{session}/event"
	SessionSelect        = "POST /session/{session}/select"
	SessionType          = "POST /session/{session}/type"
	SessionContent       = "POST /session/{session}/content"
	SessionToolbar       = "POST /session/{session}/toolbar"
	SessionTab           = "POST /session/{session}/tab"
	SessionPicker        = "POST /session/{session}/picker"
	SessionPickerSelect  = "POST /session/{session}/picker/select"
	SessionPickerUpload  = "POST /session/{session}/picker/upload"
	SessionFeaturedClear = "DELETE /session/{session}/featured"
	SessionCombobox      = "POST /session/{session}/combobox/{box}"
	SessionSave          = "POST /session/{session}/save"
	SessionRestore       = "POST /session/{session}/restore"
	SessionDiscardDraft  = "DELETE /session/{session}/draft"

	// SSE
	SSEPath = "GET /sse/{session}"
)

// Path strips the method from a mux pattern.
func Path(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

// Session builds the URL of a session action, e.g. Session(SessionSave, id).
func Session(pattern, session string) string {
	return strings.Replace(Path(pattern), "{session}", session, 1)
}

var sessionActions = map[string]string{
	"editor":   EditorSession,
	"close":    SessionClose,
	"surface":  SessionSurface,
	"preview":  SessionPreview,
	"source":   SessionSource,
	"fields":   SessionFields,
	"event":    SessionEvent,
	"select":   SessionSelect,
	"type":     SessionType,
	"content":  SessionContent,
	"toolbar":  SessionToolbar,
	"tab":      SessionTab,
	"picker":   SessionPicker,
	"pick":     SessionPickerSelect,
	"upload":   SessionPickerUpload,
	"featured": SessionFeaturedClear,
	"save":     SessionSave,
	"restore":  SessionRestore,
	"draft":    SessionDiscardDraft,
	"sse":      SSEPath,
}

// SessionURL is the URL of a named session action, or "" for an unknown
// name.
func SessionURL(action, session string) string {
	pattern, ok := sessionActions[action]
	if !ok {
		return ""
	}
	return Session(pattern, session)
}

// Combobox is the URL of one of a session's comboboxes.
func Combobox(session, box string) string {
	return strings.Replace(Session(SessionCombobox, session), "{box}", box, 1)
}

func Editor(session string) string {
	return Session(EditorSession, session)
}

func EditPost(id string) string {
	return strings.Replace(Path(EditorPost), "{id}", id, 1)
}
