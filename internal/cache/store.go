package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ahakobyan/phrasebook/internal/database"
	"github.com/ahakobyan/phrasebook/internal/language"
)

// Store persists cache entries in the translation_cache table. It is the
// sole writer of that table.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a Store on top of an open database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var allSearchColumns = []string{
	"ru_norm", "en_norm", "de_norm", "hy_norm",
	"ru_past_norm", "en_past_simple_norm", "en_past_participle_norm",
	"de_perfekt_norm", "de_prateritum_norm", "hy_past_norm",
}

var languageSearchColumns = map[language.Code][]string{
	language.Russian:  {"ru_norm", "ru_past_norm"},
	language.English:  {"en_norm", "en_past_simple_norm", "en_past_participle_norm"},
	language.German:   {"de_norm", "de_perfekt_norm", "de_prateritum_norm"},
	language.Armenian: {"hy_norm", "hy_past_norm"},
}

type entryRow struct {
	ID int64 `db:"id"`

	RU string `db:"ru"`
	EN string `db:"en"`
	DE string `db:"de"`
	HY string `db:"hy"`

	RUNorm string `db:"ru_norm"`
	ENNorm string `db:"en_norm"`
	DENorm string `db:"de_norm"`
	HYNorm string `db:"hy_norm"`

	VerbGovernance  sql.NullString `db:"de_verb_governance"`
	NounArticleLine sql.NullString `db:"de_noun_article_line"`
	PastFormsLine   sql.NullString `db:"verb_past_forms_line"`

	RUPastNorm           sql.NullString `db:"ru_past_norm"`
	ENPastSimpleNorm     sql.NullString `db:"en_past_simple_norm"`
	ENPastParticipleNorm sql.NullString `db:"en_past_participle_norm"`
	DEPerfektNorm        sql.NullString `db:"de_perfekt_norm"`
	DEPrateritumNorm     sql.NullString `db:"de_prateritum_norm"`
	HYPastNorm           sql.NullString `db:"hy_past_norm"`
}

const entryColumns = `
	id, ru, en, de, hy,
	ru_norm, en_norm, de_norm, hy_norm,
	de_verb_governance, de_noun_article_line, verb_past_forms_line,
	ru_past_norm, en_past_simple_norm, en_past_participle_norm,
	de_perfekt_norm, de_prateritum_norm, hy_past_norm`

func (row entryRow) entry() Entry {
	entry := Entry{
		Translations: map[language.Code]string{
			language.Russian:  strings.TrimSpace(row.RU),
			language.English:  strings.TrimSpace(row.EN),
			language.German:   strings.TrimSpace(row.DE),
			language.Armenian: strings.TrimSpace(row.HY),
		},
		VerbGovernance:  strings.TrimSpace(row.VerbGovernance.String),
		NounArticleLine: strings.TrimSpace(row.NounArticleLine.String),
		PastFormsLine:   strings.TrimSpace(row.PastFormsLine.String),
		PastLookup:      map[PastSlot]string{},
	}
	for slot, value := range map[PastSlot]sql.NullString{
		RussianPast:           row.RUPastNorm,
		EnglishPastSimple:     row.ENPastSimpleNorm,
		EnglishPastParticiple: row.ENPastParticipleNorm,
		GermanPerfekt:         row.DEPerfektNorm,
		GermanPrateritum:      row.DEPrateritumNorm,
		ArmenianPast:          row.HYPastNorm,
	} {
		if v := strings.TrimSpace(value.String); v != "" {
			entry.PastLookup[slot] = v
		}
	}
	return entry
}

// keys returns the normalized lookup keys a row exposes for one language
// in the fixed primary-then-alternate order.
func (row entryRow) keys(code language.Code) []string {
	switch code {
	case language.Russian:
		return []string{row.RUNorm, row.RUPastNorm.String}
	case language.English:
		return []string{row.ENNorm, row.ENPastSimpleNorm.String, row.ENPastParticipleNorm.String}
	case language.German:
		return []string{row.DENorm, row.DEPerfektNorm.String, row.DEPrateritumNorm.String}
	case language.Armenian:
		return []string{row.HYNorm, row.HYPastNorm.String}
	}
	return nil
}

// matchedLanguage determines which language a normalized input matched
// the row under, following the declared precedence order so that
// ambiguous Latin-script forms resolve to German before English.
func (row entryRow) matchedLanguage(normalized string) (language.Code, bool) {
	for _, code := range language.MatchPrecedence {
		for _, key := range row.keys(code) {
			if key != "" && key == normalized {
				return code, true
			}
		}
	}
	return "", false
}

// FindByAnyLanguage looks text up across all ten keys of all entries and
// returns the most recently updated match together with the language the
// key belongs to. The boolean result is false when nothing matches.
func (s *Store) FindByAnyLanguage(ctx context.Context, text string) (Match, bool, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return Match{}, false, nil
	}

	row, found, err := s.findRow(ctx, allSearchColumns, normalized)
	if err != nil {
		return Match{}, false, fmt.Errorf("find cache entry by any language: %w", err)
	}
	if !found {
		return Match{}, false, nil
	}

	matched, ok := row.matchedLanguage(normalized)
	if !ok {
		return Match{}, false, nil
	}
	return Match{Language: matched, Entry: row.entry()}, true, nil
}

// FindByLanguageAndText looks text up restricted to the primary and
// alternate keys belonging to one language. Matches under another
// language's keys are ignored.
func (s *Store) FindByLanguageAndText(ctx context.Context, code language.Code, text string) (Entry, bool, error) {
	columns, ok := languageSearchColumns[code]
	if !ok {
		return Entry{}, false, nil
	}

	normalized := Normalize(text)
	if normalized == "" {
		return Entry{}, false, nil
	}

	row, found, err := s.findRow(ctx, columns, normalized)
	if err != nil {
		return Entry{}, false, fmt.Errorf("find cache entry by language %s: %w", code, err)
	}
	if !found {
		return Entry{}, false, nil
	}
	return row.entry(), true, nil
}

func (s *Store) findRow(ctx context.Context, columns []string, normalized string) (entryRow, bool, error) {
	conditions := make([]string, 0, len(columns))
	params := make([]any, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, column+" = ?")
		params = append(params, normalized)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM translation_cache
		WHERE %s
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`,
		entryColumns, strings.Join(conditions, " OR "))

	var row entryRow
	if err := s.db.GetContext(ctx, &row, query, params...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entryRow{}, false, nil
		}
		return entryRow{}, false, err
	}
	return row, true, nil
}

// Upsert inserts entry keyed by the tuple of its four normalized primary
// translations, or merges it into the existing row with the same tuple.
// The read-merge-write runs in one transaction so concurrent enrichments
// of the same entry cannot lose annotations. Entries with any empty
// translation are rejected as a no-op.
func (s *Store) Upsert(ctx context.Context, entry Entry) error {
	cleaned := Entry{
		Translations:    map[language.Code]string{},
		VerbGovernance:  strings.TrimSpace(entry.VerbGovernance),
		NounArticleLine: strings.TrimSpace(entry.NounArticleLine),
		PastFormsLine:   strings.TrimSpace(entry.PastFormsLine),
		PastLookup:      map[PastSlot]string{},
	}
	normalized := map[language.Code]string{}
	for _, code := range language.Supported {
		cleaned.Translations[code] = strings.TrimSpace(entry.Translations[code])
		normalized[code] = Normalize(entry.Translations[code])
		if cleaned.Translations[code] == "" || normalized[code] == "" {
			return nil
		}
	}
	for _, slot := range PastSlots {
		if v := Normalize(entry.PastLookup[slot]); v != "" {
			cleaned.PastLookup[slot] = v
		}
	}

	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var existing entryRow
		err := tx.GetContext(ctx, &existing, fmt.Sprintf(`
			SELECT %s
			FROM translation_cache
			WHERE ru_norm = ? AND en_norm = ? AND de_norm = ? AND hy_norm = ?`,
			entryColumns),
			normalized[language.Russian], normalized[language.English],
			normalized[language.German], normalized[language.Armenian])
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return insertEntry(ctx, tx, cleaned, normalized)
		case err != nil:
			return fmt.Errorf("load cache entry for merge: %w", err)
		}

		merged := Merge(existing.entry(), cleaned)
		return updateEntry(ctx, tx, existing.ID, merged, normalized)
	})
}

func insertEntry(ctx context.Context, tx *sqlx.Tx, entry Entry, normalized map[language.Code]string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO translation_cache (
			ru, en, de, hy,
			ru_norm, en_norm, de_norm, hy_norm,
			de_verb_governance, de_noun_article_line, verb_past_forms_line,
			ru_past_norm, en_past_simple_norm, en_past_participle_norm,
			de_perfekt_norm, de_prateritum_norm, hy_past_norm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Translations[language.Russian],
		entry.Translations[language.English],
		entry.Translations[language.German],
		entry.Translations[language.Armenian],
		normalized[language.Russian],
		normalized[language.English],
		normalized[language.German],
		normalized[language.Armenian],
		nullable(entry.VerbGovernance),
		nullable(entry.NounArticleLine),
		nullable(entry.PastFormsLine),
		nullable(entry.PastLookup[RussianPast]),
		nullable(entry.PastLookup[EnglishPastSimple]),
		nullable(entry.PastLookup[EnglishPastParticiple]),
		nullable(entry.PastLookup[GermanPerfekt]),
		nullable(entry.PastLookup[GermanPrateritum]),
		nullable(entry.PastLookup[ArmenianPast]))
	if err != nil {
		return fmt.Errorf("insert cache entry: %w", err)
	}
	return nil
}

func updateEntry(ctx context.Context, tx *sqlx.Tx, id int64, entry Entry, normalized map[language.Code]string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE translation_cache
		SET ru = ?, en = ?, de = ?, hy = ?,
			ru_norm = ?, en_norm = ?, de_norm = ?, hy_norm = ?,
			de_verb_governance = ?, de_noun_article_line = ?, verb_past_forms_line = ?,
			ru_past_norm = ?, en_past_simple_norm = ?, en_past_participle_norm = ?,
			de_perfekt_norm = ?, de_prateritum_norm = ?, hy_past_norm = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		entry.Translations[language.Russian],
		entry.Translations[language.English],
		entry.Translations[language.German],
		entry.Translations[language.Armenian],
		normalized[language.Russian],
		normalized[language.English],
		normalized[language.German],
		normalized[language.Armenian],
		nullable(entry.VerbGovernance),
		nullable(entry.NounArticleLine),
		nullable(entry.PastFormsLine),
		nullable(entry.PastLookup[RussianPast]),
		nullable(entry.PastLookup[EnglishPastSimple]),
		nullable(entry.PastLookup[EnglishPastParticiple]),
		nullable(entry.PastLookup[GermanPerfekt]),
		nullable(entry.PastLookup[GermanPrateritum]),
		nullable(entry.PastLookup[ArmenianPast]),
		id)
	if err != nil {
		return fmt.Errorf("update cache entry: %w", err)
	}
	return nil
}

// SetVerbGovernance stores a verb governance annotation on the most
// recently updated entry matching text under any key. No-op when the
// text matches nothing or the value is empty.
func (s *Store) SetVerbGovernance(ctx context.Context, text, value string) error {
	return s.setAnnotation(ctx, "de_verb_governance", text, value)
}

// SetNounArticleLine stores a noun article annotation on the most
// recently updated entry matching text under any key. No-op when the
// text matches nothing or the value is empty.
func (s *Store) SetNounArticleLine(ctx context.Context, text, value string) error {
	return s.setAnnotation(ctx, "de_noun_article_line", text, value)
}

func (s *Store) setAnnotation(ctx context.Context, column, text, value string) error {
	normalized := Normalize(text)
	trimmed := strings.TrimSpace(value)
	if normalized == "" || trimmed == "" {
		return nil
	}

	conditions := make([]string, 0, len(allSearchColumns))
	params := []any{trimmed}
	for _, searchColumn := range allSearchColumns {
		conditions = append(conditions, searchColumn+" = ?")
		params = append(params, normalized)
	}

	query := fmt.Sprintf(`
		UPDATE translation_cache
		SET %s = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = (
			SELECT id
			FROM translation_cache
			WHERE %s
			ORDER BY updated_at DESC, id DESC
			LIMIT 1
		)`, column, strings.Join(conditions, " OR "))

	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

func nullable(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
