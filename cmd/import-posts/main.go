// Command import-posts creates posts in the content API from a directory of
// markdown files with optional TOML front matter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/document"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/slug"
	"github.com/debemdeboas/the-press/internal/util"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

type importer struct {
	client   *api.Client
	renderer string
	dryRun   bool
	tags     map[string]model.Tag
	authors  map[string]model.Author
}

func main() {
	path := flag.String("path", "", "Directory containing .md files")
	renderer := flag.String("renderer", render.RendererClassic, "Markdown dialect: classic or mmark")
	dryRun := flag.Bool("dry-run", false, "Convert the files without creating posts")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, errStyle.Render("--path is required"))
		os.Exit(2)
	}

	config.LoadEnv()
	if err := config.LoadConfig(config.Env(config.EnvConfigPath, "config.yaml")); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	sqlite := db.NewSQLite(config.AppConfig.Database.Path)
	if err := sqlite.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error opening database: "+err.Error()))
		os.Exit(1)
	}
	defer sqlite.Close()

	imp := &importer{
		client:   api.New(config.AppConfig.API.BaseURL, auth.NewTokenStore(sqlite), api.WithTimeout(config.AppConfig.API.Timeout)),
		renderer: *renderer,
		dryRun:   *dryRun,
	}
	if !imp.dryRun {
		if err := imp.loadTaxonomy(ctx); err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render("Error loading tags and authors: "+err.Error()))
			if errors.Is(err, api.ErrUnauthorized) {
				fmt.Fprintln(os.Stderr, dimStyle.Render("Run cmd/signin first."))
			}
			os.Exit(1)
		}
	}

	files, err := os.ReadDir(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}

	fmt.Println(headStyle.Render("Importing from " + *path))
	var imported, failed int
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		in, err := imp.importFile(ctx, filepath.Join(*path, file.Name()))
		if err != nil {
			failed++
			fmt.Println(errStyle.Render("✗ "+file.Name()) + " " + dimStyle.Render(err.Error()))
			continue
		}
		imported++
		fmt.Println(okStyle.Render("✓ "+file.Name()) + " " + dimStyle.Render(in.Title+" ("+string(in.Status)+")"))
	}
	fmt.Println(headStyle.Render(fmt.Sprintf("%d imported, %d failed", imported, failed)))
	if failed > 0 {
		os.Exit(1)
	}
}

func (imp *importer) loadTaxonomy(ctx context.Context) error {
	tags, err := imp.client.ListTags(ctx)
	if err != nil {
		return err
	}
	authors, err := imp.client.ListAuthors(ctx)
	if err != nil {
		return err
	}
	imp.tags = make(map[string]model.Tag, len(tags))
	for _, t := range tags {
		imp.tags[strings.ToLower(t.Name)] = t
	}
	imp.authors = make(map[string]model.Author, len(authors))
	for _, a := range authors {
		imp.authors[strings.ToLower(a.OptionName())] = a
	}
	return nil
}

func (imp *importer) importFile(ctx context.Context, path string) (model.PostInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.PostInput{}, err
	}
	in, err := imp.convert(filepath.Base(path), raw)
	if err != nil || imp.dryRun {
		return in, err
	}
	_, err = imp.client.CreatePost(ctx, in)
	return in, err
}

// convert builds the post for one file. Files without front matter become
// drafts titled after the file name.
func (imp *importer) convert(name string, raw []byte) (model.PostInput, error) {
	fm, body, err := util.SplitFrontMatter(raw)
	switch {
	case errors.Is(err, util.ErrNoFrontMatter):
		body = raw
	case err != nil:
		return model.PostInput{}, err
	}

	html, titleData := render.Markdown(body, imp.renderer)
	doc, err := document.Parse(string(html))
	if err != nil {
		return model.PostInput{}, fmt.Errorf("convert body: %w", err)
	}

	in := model.PostInput{
		Title:   strings.TrimSuffix(name, ".md"),
		Content: doc.HTML(),
		Status:  model.StatusDraft,
		Tags:    []model.Tag{},
		Authors: []model.Author{},
	}
	if titleData != nil && titleData.Title != "" {
		in.Title = titleData.Title
	}
	if fm != nil {
		if fm.Title != "" {
			in.Title = fm.Title
		}
		in.Slug = fm.Slug
		in.Description = fm.Description
		in.FeaturedImage = fm.FeaturedImage
		in.IsFeatured = fm.Featured
		in.SEOTitle = fm.SEOTitle
		in.SEODescription = fm.SEODesc
		if fm.Published {
			in.Status = model.StatusPublished
		}
		for _, name := range fm.TagNames() {
			if t, ok := imp.tags[strings.ToLower(name)]; ok {
				in.Tags = append(in.Tags, t)
			}
		}
		for _, name := range fm.Authors {
			if a, ok := imp.authors[strings.ToLower(name)]; ok {
				in.Authors = append(in.Authors, a)
			}
		}
	}
	if in.Slug == "" {
		in.Slug = slug.Slugify(in.Title)
	}
	return in, nil
}
