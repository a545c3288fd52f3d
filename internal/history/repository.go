// Package history records resolved translation requests per user.
package history

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/ahakobyan/phrasebook/internal/language"
)

const (
	maxSnippetLength = 80
	snippetCutLength = 77
)

// Record is one remembered translation request. Targets is stored as a
// comma-joined list of language codes.
type Record struct {
	ID             int64  `db:"id"`
	UserID         int64  `db:"user_id"`
	InputSnippet   string `db:"input_snippet"`
	SourceLanguage string `db:"source_language"`
	Targets        string `db:"targets"`
	CreatedAt      string `db:"created_at"`
}

// TargetList returns the requested target languages of the record.
func (r Record) TargetList() []language.Code {
	if r.Targets == "" {
		return nil
	}
	parts := strings.Split(r.Targets, ",")
	targets := make([]language.Code, 0, len(parts))
	for _, part := range parts {
		targets = append(targets, language.Code(strings.TrimSpace(part)))
	}
	return targets
}

// Repository defines operations for per-user translation history.
type Repository interface {
	Add(ctx context.Context, userID int64, inputText string, source language.Code, targets []language.Code) error
	Latest(ctx context.Context, userID int64, limit int) ([]Record, error)
}

// DBRepository implements Repository on the shared sqlite database.
// When disabled, writes are dropped and reads return nothing.
type DBRepository struct {
	db      *sqlx.DB
	enabled bool
}

func NewDBRepository(db *sqlx.DB, enabled bool) *DBRepository {
	return &DBRepository{db: db, enabled: enabled}
}

func (r *DBRepository) Add(ctx context.Context, userID int64, inputText string, source language.Code, targets []language.Code) error {
	if !r.enabled {
		return nil
	}

	codes := make([]string, 0, len(targets))
	for _, target := range targets {
		codes = append(codes, string(target))
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO translation_history (user_id, input_snippet, source_language, targets)
		VALUES (?, ?, ?, ?)`,
		userID, snippet(inputText), string(source), strings.Join(codes, ","))
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert translation_history) > %w", err)
	}
	return nil
}

func (r *DBRepository) Latest(ctx context.Context, userID int64, limit int) ([]Record, error) {
	if !r.enabled {
		return nil, nil
	}

	var records []Record
	if err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM translation_history WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(translation_history) > %w", err)
	}
	return records, nil
}

func snippet(inputText string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(inputText), "\n", " ")
	if utf8.RuneCountInString(cleaned) <= maxSnippetLength {
		return cleaned
	}
	return string([]rune(cleaned)[:snippetCutLength]) + "..."
}
