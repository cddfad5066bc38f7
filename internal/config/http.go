package config

const (
	HCType         = "Content-Type"
	HETag          = "ETag"
	HCacheControl  = "Cache-Control"
	HAuthorization = "Authorization"
	HHxRedirect    = "HX-Redirect"
	HHxRequest     = "HX-Request"
	HHxTrigger     = "HX-Trigger"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeJSON = "application/json"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieTheme       = "theme"
	CookieSyntaxTheme = "syntax-theme"
	CookieNotice      = "notice"
)

const (
	EnvConfigPath   = "PRESS_CONFIG"
	EnvAPIBaseURL   = "PRESS_API_URL"
	EnvPort         = "PRESS_PORT"
	EnvDatabasePath = "PRESS_DB"
	EnvS3Bucket     = "PRESS_S3_BUCKET"
	EnvS3Endpoint   = "PRESS_S3_ENDPOINT"
	EnvS3AccessKey  = "PRESS_S3_ACCESS_KEY"
	EnvS3SecretKey  = "PRESS_S3_SECRET_KEY"
)
