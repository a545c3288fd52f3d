package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS translation_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ru TEXT NOT NULL,
	en TEXT NOT NULL,
	de TEXT NOT NULL,
	hy TEXT NOT NULL,
	ru_norm TEXT NOT NULL,
	en_norm TEXT NOT NULL,
	de_norm TEXT NOT NULL,
	hy_norm TEXT NOT NULL,
	de_verb_governance TEXT,
	de_noun_article_line TEXT,
	verb_past_forms_line TEXT,
	ru_past_norm TEXT,
	en_past_simple_norm TEXT,
	en_past_participle_norm TEXT,
	de_perfekt_norm TEXT,
	de_prateritum_norm TEXT,
	hy_past_norm TEXT,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(ru_norm, en_norm, de_norm, hy_norm)
);

CREATE INDEX IF NOT EXISTS idx_translation_cache_ru_norm
	ON translation_cache(ru_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_en_norm
	ON translation_cache(en_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_de_norm
	ON translation_cache(de_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_hy_norm
	ON translation_cache(hy_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_ru_past_norm
	ON translation_cache(ru_past_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_en_past_simple_norm
	ON translation_cache(en_past_simple_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_en_past_participle_norm
	ON translation_cache(en_past_participle_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_de_perfekt_norm
	ON translation_cache(de_perfekt_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_de_prateritum_norm
	ON translation_cache(de_prateritum_norm);
CREATE INDEX IF NOT EXISTS idx_translation_cache_hy_past_norm
	ON translation_cache(hy_past_norm);

CREATE TABLE IF NOT EXISTS translation_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	input_snippet TEXT NOT NULL,
	source_language TEXT NOT NULL,
	targets TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_translation_history_user_id
	ON translation_history(user_id, id);
`

// Migrate creates the schema when it does not exist and adds columns
// introduced after the initial release to databases created before them.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := addMissingColumns(ctx, db); err != nil {
		return fmt.Errorf("add missing columns: %w", err)
	}
	return nil
}

func addMissingColumns(ctx context.Context, db *sqlx.DB) error {
	rows, err := db.QueryxContext(ctx, "PRAGMA table_info(translation_cache)")
	if err != nil {
		return fmt.Errorf("read table info: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	existing := map[string]bool{}
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			dflt       any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	required := []string{
		"de_noun_article_line",
		"verb_past_forms_line",
		"ru_past_norm",
		"en_past_simple_norm",
		"en_past_participle_norm",
		"de_perfekt_norm",
		"de_prateritum_norm",
		"hy_past_norm",
	}
	for _, column := range required {
		if existing[column] {
			continue
		}
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("ALTER TABLE translation_cache ADD COLUMN %s TEXT", column),
		); err != nil {
			return fmt.Errorf("add column %s: %w", column, err)
		}
	}
	return nil
}
