// Package db owns the console's local sqlite file: the stored API token and
// autosaved drafts.
package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type DB interface {
	Init(ctx context.Context) error

	Get() *sqlx.DB
	Close() error
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}
