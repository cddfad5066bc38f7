package media

import (
	"context"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/model"
)

type apiClient interface {
	UploadMedia(ctx context.Context, u api.Upload) (*model.MediaItem, error)
	RegisterMedia(ctx context.Context, item model.MediaItem) (*model.MediaItem, error)
}

// APIUploader sends files to the content API's own storage.
type APIUploader struct {
	client apiClient
}

func NewAPIUploader(client apiClient) *APIUploader {
	return &APIUploader{client: client}
}

func (u *APIUploader) Upload(ctx context.Context, f File) (*model.MediaItem, error) {
	return u.client.UploadMedia(ctx, api.Upload{
		Filename: f.Filename,
		Title:    f.Title,
		AltText:  f.AltText,
		Body:     f.Body,
	})
}
