package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/console"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/logger"
	"github.com/debemdeboas/the-press/internal/media"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/sse"
	"github.com/debemdeboas/the-press/internal/util"
	"github.com/debemdeboas/the-press/internal/util/compression"
)

//go:embed static/* templates/*
var content embed.FS

const (
	sessionIdleTimeout = 2 * time.Hour
	sweepInterval      = 10 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

var mainLogger zerolog.Logger

func main() {
	config.LoadEnv()
	if err := config.LoadConfig(config.Env(config.EnvConfigPath, "config.yaml")); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	mainLogger = logger.New(config.AppConfig.Logging.Level, config.AppConfig.Logging.Format)
	setLoggers(mainLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		mainLogger.Fatal().Err(err).Msg("Console stopped")
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(logger.Component(l, "config"))
	db.SetLogger(logger.Component(l, "db"))
	api.SetLogger(logger.Component(l, "api"))
	auth.SetLogger(logger.Component(l, "auth"))
	media.SetLogger(logger.Component(l, "media"))
	render.SetLogger(logger.Component(l, "render"))
	editor.SetLogger(logger.Component(l, "editor"))
	authoring.SetLogger(logger.Component(l, "authoring"))
	repository.SetLogger(logger.Component(l, "repository"))
	console.SetLogger(logger.Component(l, "console"))
}

func run(ctx context.Context) error {
	cfg := config.AppConfig

	sqlite := db.NewSQLite(cfg.Database.Path)
	if err := sqlite.Init(ctx); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer sqlite.Close()

	tokens := auth.NewTokenStore(sqlite)
	client := api.New(cfg.API.BaseURL, tokens,
		api.WithTimeout(cfg.API.Timeout),
		api.WithDefaultTelemetry(),
	)

	uploader, err := newUploader(ctx, cfg.Media, client)
	if err != nil {
		return err
	}

	compressor, err := compression.New(cfg.Editor.AutosaveCompression)
	if err != nil {
		return err
	}
	drafts := repository.NewDBDraftRepository(sqlite, compressor)

	var autosave *repository.Autosaver
	if cfg.Editor.Autosave {
		autosave = repository.NewAutosaver(drafts, repository.DefaultAutosaveDelay)
	}

	hashStatic(content)

	srv, err := console.New(console.Deps{
		Backend:  client,
		Auth:     auth.NewProvider(tokens, client),
		Media:    media.NewService(uploader, media.ProcessOptions{MaxWidth: cfg.Media.MaxImageWidth, Quality: cfg.Media.JPEGQuality}),
		Sessions: repository.NewMemorySessionRepository(),
		Drafts:   drafts,
		Autosave: autosave,
		Clients:  sse.NewSSEClients(),
		Toolbar:  editor.NewToolbar(editor.WithDefaultCaption(cfg.Editor.DefaultVideoCaption)),
		Files:    content,
	})
	if err != nil {
		return fmt.Errorf("build console: %w", err)
	}

	go sweep(ctx, srv)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		mainLogger.Info().Str("addr", httpServer.Addr).Str("api", client.BaseURL()).Msg("Console listening")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	mainLogger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newUploader picks where media uploads are stored.
func newUploader(ctx context.Context, cfg config.MediaConfig, client *api.Client) (media.Uploader, error) {
	switch cfg.Uploader {
	case "", "api":
		return media.NewAPIUploader(client), nil
	case "s3":
		if cfg.S3.Bucket == "" || cfg.S3.PublicURL == "" {
			return nil, errors.New("s3 uploader needs a bucket and a public url")
		}
		s3Client, err := media.NewS3Client(ctx, cfg.S3,
			config.Env(config.EnvS3AccessKey, ""),
			config.Env(config.EnvS3SecretKey, ""),
		)
		if err != nil {
			return nil, err
		}
		return media.NewS3Uploader(s3Client, cfg.S3.Bucket, cfg.S3.PublicURL, client), nil
	}
	return nil, fmt.Errorf("unknown media uploader %q", cfg.Uploader)
}

// hashStatic records a content hash for every static file so the cache
// middleware can answer conditional requests.
func hashStatic(files fs.FS) int {
	static, err := fs.Sub(files, config.StaticLocalDir)
	if err != nil {
		mainLogger.Error().Err(err).Msg("No static directory")
		return 0
	}

	n := 0
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		n++
		return nil
	})
	return n
}

// sweep closes abandoned authoring sessions until ctx ends.
func sweep(ctx context.Context, srv *console.Server) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := srv.Sweep(sessionIdleTimeout); n > 0 {
				mainLogger.Info().Int("sessions", n).Msg("Closed idle authoring sessions")
			}
		}
	}
}
