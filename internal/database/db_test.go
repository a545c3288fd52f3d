package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakobyan/phrasebook/internal/config"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Open(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "cache.sqlite3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates missing parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "cache.sqlite3")

		db, err := Open(config.DatabaseConfig{Path: path})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()

		require.NoError(t, db.Ping())
	})
}

func TestMigrate(t *testing.T) {
	t.Run("creates schema", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		require.NoError(t, Migrate(ctx, db))

		var count int
		require.NoError(t, db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM translation_cache"))
		assert.Equal(t, 0, count)
		require.NoError(t, db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM translation_history"))
		assert.Equal(t, 0, count)
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		require.NoError(t, Migrate(ctx, db))
		require.NoError(t, Migrate(ctx, db))
	})

	t.Run("adds columns missing from older databases", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		// The first release created the table without annotation and
		// past-form columns.
		_, err := db.ExecContext(ctx, `
			CREATE TABLE translation_cache (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				ru TEXT NOT NULL, en TEXT NOT NULL, de TEXT NOT NULL, hy TEXT NOT NULL,
				ru_norm TEXT NOT NULL, en_norm TEXT NOT NULL,
				de_norm TEXT NOT NULL, hy_norm TEXT NOT NULL,
				de_verb_governance TEXT,
				created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(ru_norm, en_norm, de_norm, hy_norm)
			)`)
		require.NoError(t, err)

		require.NoError(t, Migrate(ctx, db))

		_, err = db.ExecContext(ctx,
			"SELECT verb_past_forms_line, de_perfekt_norm, hy_past_norm FROM translation_cache")
		require.NoError(t, err)
	})
}

func TestRunInTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()
		require.NoError(t, Migrate(ctx, db))

		err := RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO translation_history (user_id, input_snippet, source_language, targets)
				VALUES (1, 'hello', 'en', 'ru,de,hy')`)
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM translation_history"))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()
		require.NoError(t, Migrate(ctx, db))

		wantErr := fmt.Errorf("boom")
		err := RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			_, execErr := tx.ExecContext(ctx, `
				INSERT INTO translation_history (user_id, input_snippet, source_language, targets)
				VALUES (1, 'hello', 'en', 'ru,de,hy')`)
			require.NoError(t, execErr)
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)

		var count int
		require.NoError(t, db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM translation_history"))
		assert.Equal(t, 0, count)
	})
}
