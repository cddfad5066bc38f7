package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	SignInURLPath    = "/signin"
	SignOutURLPath   = "/signout"
	DashboardURLPath = "/"
	PostsURLPath     = "/posts"
	TagsURLPath      = "/tags"
	AuthorsURLPath   = "/authors"
	MediaURLPath     = "/media"
	EditorURLPath    = "/editor/"
	SSEURLPath       = "/sse"

	TemplateLayout    = "layout.html"
	TemplateSignIn    = "signin.html"
	TemplateDashboard = "dashboard.html"
	TemplatePosts     = "posts.html"
	TemplateEditor    = "editor.html"
	TemplateTags      = "tags.html"
	TemplateAuthors   = "authors.html"
	TemplateMedia     = "media.html"

	// Partials rendered on their own for htmx swaps.
	TemplateNameSurface  = "surface"
	TemplateNamePreview  = "preview"
	TemplateNameSource   = "source"
	TemplateNameCombobox = "combobox"
	TemplateNamePicker   = "picker"
	TemplateNameNotice   = "notice"
)
