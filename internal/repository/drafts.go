package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/the-press/internal/authoring"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util/compression"
)

type DBDraftRepository struct { // implements DraftRepository
	db         db.DB
	compressor compression.Compressor
}

func NewDBDraftRepository(db db.DB, compressor compression.Compressor) *DBDraftRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &DBDraftRepository{
		db:         db,
		compressor: compressor,
	}
}

type draftRow struct {
	ID          string    `db:"id"`
	PostID      string    `db:"post_id"`
	Mode        string    `db:"mode"`
	Title       string    `db:"title"`
	Payload     []byte    `db:"payload"`
	Compression string    `db:"compression"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *DBDraftRepository) SaveDraft(ctx context.Context, d *Draft) error {
	payload, err := json.Marshal(d.Post)
	if err != nil {
		return fmt.Errorf("error encoding draft: %w", err)
	}
	compressed, err := r.compressor.Compress(payload)
	if err != nil {
		return fmt.Errorf("error compressing draft: %w", err)
	}

	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	_, err = r.db.Get().ExecContext(ctx, `
		INSERT INTO drafts (id, post_id, mode, title, payload, compression, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			post_id = excluded.post_id,
			mode = excluded.mode,
			title = excluded.title,
			payload = excluded.payload,
			compression = excluded.compression,
			updated_at = excluded.updated_at`,
		d.Key, string(d.PostID), string(d.Mode), d.Title, compressed, r.compressor.Name(), updated,
	)
	if err != nil {
		return fmt.Errorf("error saving draft: %w", err)
	}

	repoLogger.Debug().
		Str("draft", d.Key).
		Int("size", len(payload)).
		Int("compressed", len(compressed)).
		Msg("Draft saved")
	return nil
}

func (r *DBDraftRepository) GetDraft(ctx context.Context, key string) (*Draft, error) {
	var row draftRow
	err := r.db.Get().GetContext(ctx, &row,
		`SELECT id, post_id, mode, title, payload, compression, updated_at FROM drafts WHERE id = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying draft: %w", err)
	}
	return r.decode(row)
}

// ListDrafts returns every draft, newest first, without decoding payloads.
func (r *DBDraftRepository) ListDrafts(ctx context.Context) ([]Draft, error) {
	var rows []draftRow
	err := r.db.Get().SelectContext(ctx, &rows,
		`SELECT id, post_id, mode, title, compression, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying drafts: %w", err)
	}

	drafts := make([]Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, Draft{
			Key:       row.ID,
			PostID:    model.PostID(row.PostID),
			Mode:      authoring.Mode(row.Mode),
			Title:     row.Title,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return drafts, nil
}

func (r *DBDraftRepository) DeleteDraft(ctx context.Context, key string) error {
	if _, err := r.db.Get().ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, key); err != nil {
		return fmt.Errorf("error deleting draft: %w", err)
	}
	return nil
}

// decode reads the payload with the codec it was written with, which need
// not be the one currently configured.
func (r *DBDraftRepository) decode(row draftRow) (*Draft, error) {
	codec, err := compression.New(row.Compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(row.Payload)
	if err != nil {
		return nil, fmt.Errorf("error decompressing draft: %w", err)
	}

	post := model.NewPost()
	if err := json.Unmarshal(payload, post); err != nil {
		return nil, fmt.Errorf("error decoding draft: %w", err)
	}

	return &Draft{
		Key:       row.ID,
		PostID:    model.PostID(row.PostID),
		Mode:      authoring.Mode(row.Mode),
		Title:     row.Title,
		Post:      post,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
