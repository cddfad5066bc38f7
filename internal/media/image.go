// Package media prepares uploaded images and hands them to an Uploader.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/debemdeboas/the-press/internal/slug"
)

const (
	DefaultMaxWidth = 1600
	DefaultQuality  = 82
	MaxUploadSize   = 10 << 20 // 10MB

	ContentTypeJPEG = "image/jpeg"
)

type ProcessOptions struct {
	MaxWidth int
	Quality  int
}

func (o ProcessOptions) withDefaults() ProcessOptions {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Processed is an image re-encoded as JPEG.
type Processed struct {
	Filename string
	Width    int
	Height   int
	Resized  bool
	Data     []byte
}

func (p *Processed) Dimensions() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// Process decodes src, scales it down to opts.MaxWidth when wider, and
// encodes it as JPEG.
func Process(src io.Reader, originalName string, opts ProcessOptions) (*Processed, error) {
	opts = opts.withDefaults()

	img, _, err := image.Decode(io.LimitReader(src, MaxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	resized := false

	if w > opts.MaxWidth {
		newH := max(h*opts.MaxWidth/w, 1)
		dst := image.NewRGBA(image.Rect(0, 0, opts.MaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = opts.MaxWidth, newH
		resized = true
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Processed{
		Filename: Filename(originalName),
		Width:    w,
		Height:   h,
		Resized:  resized,
		Data:     buf.Bytes(),
	}, nil
}

// Filename turns an upload's name into a slugged .jpg name.
func Filename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	s := slug.Slugify(base)
	if s == "" {
		s = "image"
	}
	return s + ".jpg"
}

// HumanSize formats n bytes the way the media library lists them.
func HumanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
