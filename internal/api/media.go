package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/debemdeboas/the-press/internal/model"
)

type multipartBody struct {
	buf         *bytes.Buffer
	contentType string
}

// Upload is a media file with the metadata the library requires.
type Upload struct {
	Filename string
	Title    string
	AltText  string
	Body     io.Reader
}

func (c *Client) ListMedia(ctx context.Context) ([]model.MediaItem, error) {
	var out response[[]model.MediaItem]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/image", out: &out, auth: true}); err != nil {
		return nil, err
	}
	return out.Response, nil
}

// UploadMedia posts the file as multipart form data to the API's storage.
func (c *Client) UploadMedia(ctx context.Context, u Upload) (*model.MediaItem, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("image", u.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, u.Body); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	for k, v := range map[string]string{"title": u.Title, "altText": u.AltText} {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var out data[model.MediaItem]
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/image/upload",
		body:   &multipartBody{buf: buf, contentType: w.FormDataContentType()},
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// RegisterMedia records a file already stored elsewhere, such as a bucket
// the console uploaded to directly.
func (c *Client) RegisterMedia(ctx context.Context, item model.MediaItem) (*model.MediaItem, error) {
	var out data[model.MediaItem]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/image",
		body: map[string]string{
			"url":     item.URL,
			"title":   item.Title,
			"altText": item.AltText,
		},
		out:  &out,
		auth: true,
	})
	if err != nil {
		return nil, err
	}
	if out.Data.URL == "" {
		return &item, nil
	}
	return &out.Data, nil
}
