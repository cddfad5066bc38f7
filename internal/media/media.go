package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/model"
)

var mediaLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	mediaLogger = l
}

var (
	ErrMetadataRequired = errors.New("title and alt text are required")
	ErrFileRequired     = errors.New("a file is required")
)

// File is a processed image on its way to storage.
type File struct {
	Filename    string
	ContentType string
	Title       string
	AltText     string
	Body        io.Reader
	Size        int
}

// Uploader stores a file and returns the library entry for it.
type Uploader interface {
	Upload(ctx context.Context, f File) (*model.MediaItem, error)
}

// Request is what the media form submits.
type Request struct {
	Filename string
	Title    string
	AltText  string
	Body     io.Reader
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.AltText) == "" {
		return ErrMetadataRequired
	}
	if r.Body == nil || r.Filename == "" {
		return ErrFileRequired
	}
	return nil
}

type Service struct {
	uploader Uploader
	opts     ProcessOptions
}

func NewService(uploader Uploader, opts ProcessOptions) *Service {
	return &Service{uploader: uploader, opts: opts.withDefaults()}
}

// Upload validates r, processes the image and stores it.
func (s *Service) Upload(ctx context.Context, r Request) (*model.MediaItem, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	p, err := Process(r.Body, r.Filename, s.opts)
	if err != nil {
		return nil, err
	}

	item, err := s.uploader.Upload(ctx, File{
		Filename:    p.Filename,
		ContentType: ContentTypeJPEG,
		Title:       strings.TrimSpace(r.Title),
		AltText:     strings.TrimSpace(r.AltText),
		Body:        bytes.NewReader(p.Data),
		Size:        len(p.Data),
	})
	if err != nil {
		mediaLogger.Error().Err(err).Str("file", p.Filename).Msg("Upload failed")
		return nil, err
	}

	if item.Type == "" {
		item.Type = model.MediaImage
	}
	if item.Dimensions == "" {
		item.Dimensions = p.Dimensions()
	}
	if item.Size == "" {
		item.Size = HumanSize(len(p.Data))
	}
	if item.FileType == "" {
		item.FileType = ContentTypeJPEG
	}

	mediaLogger.Info().
		Str("file", p.Filename).
		Str("url", item.URL).
		Bool("resized", p.Resized).
		Msg("Media uploaded")
	return item, nil
}
