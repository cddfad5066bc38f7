// Package util provides content hashing and the front matter of imported
// markdown posts.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/mmarkdown/mmark/v2/mast"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// FrontMatter is the TOML block between %%% lines at the top of an
// imported post. The mmark title fields come along for free.
type FrontMatter struct {
	*mast.TitleData

	Slug          string   `toml:"slug"`
	Description   string   `toml:"description"`
	Tags          []string `toml:"tags"`
	Authors       []string `toml:"authors"`
	FeaturedImage string   `toml:"featured_image"`
	Featured      bool     `toml:"featured"`
	Published     bool     `toml:"published"`
	SEOTitle      string   `toml:"seo_title"`
	SEODesc       string   `toml:"seo_description"`
}

// TagNames returns the tags, falling back to the mmark keyword list.
func (f *FrontMatter) TagNames() []string {
	if len(f.Tags) > 0 {
		return f.Tags
	}
	return f.Keyword
}

var ErrNoFrontMatter = errors.New("invalid front matter format")

var delimiter = []byte("%%%")

// SplitFrontMatter decodes the front matter of md and returns it with the
// remaining body.
func SplitFrontMatter(md []byte) (*FrontMatter, []byte, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if !bytes.HasPrefix(md, delimiter) {
		return nil, nil, ErrNoFrontMatter
	}
	rest := md[len(delimiter):]

	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, nil, ErrNoFrontMatter
	}
	block := rest[:end]
	body := bytes.TrimLeft(rest[end+len(delimiter):], " \t")
	body = bytes.TrimPrefix(body, []byte("\n"))

	info := &FrontMatter{TitleData: &mast.TitleData{}}
	if _, err := toml.Decode(string(block), info); err != nil {
		return nil, nil, fmt.Errorf("failed to decode front matter: %w", err)
	}
	if strings.TrimSpace(string(block)) == "" {
		return nil, nil, ErrNoFrontMatter
	}

	if info.Language == "" {
		info.Language = "en"
	}
	return info, body, nil
}
