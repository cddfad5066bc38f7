// Package compression wraps the codecs used for stored draft payloads.
package compression

import "fmt"

type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	Zstd = "zstd"
	Gzip = "gzip"
	None = "none"
)

// New returns the compressor registered under name. An empty name means zstd.
func New(name string) (Compressor, error) {
	switch name {
	case Zstd, "":
		return ZstdCompressor{}, nil
	case Gzip:
		return GzipCompressor{}, nil
	case None:
		return NoopCompressor{}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}

type NoopCompressor struct{}

func (NoopCompressor) Name() string { return None }

func (NoopCompressor) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
