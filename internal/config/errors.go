package config

const (
	// Session errors
	ErrSessionNotFound = "Authoring session not found"
	ErrSignInRequired  = "Please sign in first"

	// Save errors, shown when the API gives no message of its own
	ErrSavePost    = "Error while saving post"
	ErrUpdatePost  = "Error while updating post"
	ErrDeletePost  = "Error while deleting blog"
	ErrRestorePost = "Error while restoring blog"
	ErrSaveTag     = "Error while saving tag"
	ErrDeleteTag   = "Error while deleting tag"
	ErrAddAuthor   = "Error while adding new user"
	ErrUploadMedia = "Error while uploading file"
	ErrSignIn      = "Error while logging in"

	// Form validation
	ErrMediaTitleRequired = "Please enter a title and alt text"
	ErrMediaFileRequired  = "Please select a file to upload"

	ErrInternalServerError = "Internal server error"
	ErrBadRequest          = "Bad request"
)
