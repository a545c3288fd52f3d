package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakobyan/phrasebook/internal/config"
	"github.com/ahakobyan/phrasebook/internal/database"
	"github.com/ahakobyan/phrasebook/internal/language"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "cache.sqlite3"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, database.Migrate(context.Background(), db))
	return NewStore(db)
}

func TestStore_FindByAnyLanguage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("дружба", "friendship", "Freundschaft", "բարեկամություն"),
	}))

	tests := []struct {
		name     string
		text     string
		wantLang language.Code
	}{
		{name: "by russian", text: "дружба", wantLang: language.Russian},
		{name: "by english", text: "friendship", wantLang: language.English},
		{name: "by german", text: "Freundschaft", wantLang: language.German},
		{name: "by armenian", text: "բարեկամություն", wantLang: language.Armenian},
		{name: "case and whitespace insensitive", text: "  FREUNDSCHAFT ", wantLang: language.German},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, found, err := store.FindByAnyLanguage(ctx, tt.text)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.wantLang, match.Language)
			assert.Equal(t, "friendship", match.Entry.Translations[language.English])
			assert.Equal(t, "дружба", match.Entry.Translations[language.Russian])
		})
	}

	t.Run("unknown word", func(t *testing.T) {
		_, found, err := store.FindByAnyLanguage(ctx, "unknown-word")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("empty text", func(t *testing.T) {
		_, found, err := store.FindByAnyLanguage(ctx, "   ")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStore_FindByAnyLanguage_PastForms(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("участвовать", "participate", "teilnehmen", "մասնակցել"),
		PastFormsLine: "DE: Perfekt: hat teilgenommen; Prateritum: nahm teil | " +
			"EN: Past Simple: participated; Past Participle: participated | " +
			"RU: участвовал/участвовала | HY: մասնակցեց",
		PastLookup: map[PastSlot]string{
			RussianPast:           "участвовал",
			EnglishPastSimple:     "participated",
			EnglishPastParticiple: "participated",
			GermanPerfekt:         "hat teilgenommen",
			GermanPrateritum:      "nahm teil",
			ArmenianPast:          "մասնակցեց",
		},
	}))

	tests := []struct {
		name     string
		text     string
		wantLang language.Code
	}{
		{name: "german perfekt", text: "hat teilgenommen", wantLang: language.German},
		{name: "german prateritum", text: "nahm teil", wantLang: language.German},
		{name: "english past", text: "participated", wantLang: language.English},
		{name: "russian past", text: "участвовал", wantLang: language.Russian},
		{name: "armenian past", text: "մասնակցեց", wantLang: language.Armenian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, found, err := store.FindByAnyLanguage(ctx, tt.text)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.wantLang, match.Language)
			assert.NotEmpty(t, match.Entry.PastFormsLine)
		})
	}
}

func TestStore_FindByLanguageAndText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("дружба", "friendship", "Freundschaft", "բարեկամություն"),
	}))

	t.Run("match under requested language", func(t *testing.T) {
		entry, found, err := store.FindByLanguageAndText(ctx, language.German, "freundschaft")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "дружба", entry.Translations[language.Russian])
	})

	t.Run("no match under another language's keys", func(t *testing.T) {
		_, found, err := store.FindByLanguageAndText(ctx, language.English, "Freundschaft")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, found, err := store.FindByLanguageAndText(ctx, language.Code("fr"), "Freundschaft")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestStore_Upsert_MergesAnnotations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	words := translations("участвовать", "participate", "teilnehmen", "մասնակցել")

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations:   words,
		VerbGovernance: "teilnehmen an + D",
	}))
	require.NoError(t, store.Upsert(ctx, Entry{
		Translations:  words,
		PastFormsLine: "DE: Perfekt: hat teilgenommen",
	}))
	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: words,
	}))

	match, found, err := store.FindByAnyLanguage(ctx, "teilnehmen")
	require.NoError(t, err)
	require.True(t, found)

	// Union of all annotations ever supplied; empty values never erase.
	assert.Equal(t, "teilnehmen an + D", match.Entry.VerbGovernance)
	assert.Equal(t, "DE: Perfekt: hat teilgenommen", match.Entry.PastFormsLine)

	var count int
	require.NoError(t, store.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM translation_cache"))
	assert.Equal(t, 1, count)
}

func TestStore_Upsert_RejectsPartialEntries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("дружба", "friendship", "", "բարեկամություն"),
	}))

	var count int
	require.NoError(t, store.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM translation_cache"))
	assert.Equal(t, 0, count)
}

func TestStore_GermanPrecedenceOverEnglish(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// "Test" is spelled the same in German and English. The German key
	// wins by declared precedence.
	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("тест", "test", "Test", "թեստ"),
	}))

	match, found, err := store.FindByAnyLanguage(ctx, "test")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, language.German, match.Language)
}

func TestStore_MostRecentEntryWinsOnSharedKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Two unrelated verbs sharing the same English past spelling.
	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("лежать", "lie", "liegen", "պառկել"),
		PastLookup:   map[PastSlot]string{EnglishPastSimple: "lay"},
	}))
	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("класть", "lay", "legen", "դնել"),
		PastLookup:   map[PastSlot]string{EnglishPastSimple: "laid"},
	}))

	// "lay" matches the first entry's past key and the second entry's
	// primary key; the second entry was inserted later so it wins.
	match, found, err := store.FindByAnyLanguage(ctx, "lay")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "legen", match.Entry.Translations[language.German])
}

func TestStore_SetAnnotationsByText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, Entry{
		Translations: translations("участвовать", "participate", "teilnehmen", "մասնակցել"),
	}))

	t.Run("governance set through any language's key", func(t *testing.T) {
		require.NoError(t, store.SetVerbGovernance(ctx, "участвовать", "teilnehmen an + D"))

		match, found, err := store.FindByAnyLanguage(ctx, "teilnehmen")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "teilnehmen an + D", match.Entry.VerbGovernance)
	})

	t.Run("noun article line", func(t *testing.T) {
		require.NoError(t, store.SetNounArticleLine(ctx, "teilnehmen", "die Teilnahme (f.)"))

		match, found, err := store.FindByAnyLanguage(ctx, "participate")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "die Teilnahme (f.)", match.Entry.NounArticleLine)
	})

	t.Run("no-op for unmatched text", func(t *testing.T) {
		require.NoError(t, store.SetVerbGovernance(ctx, "missing", "value"))
	})

	t.Run("no-op for empty value", func(t *testing.T) {
		require.NoError(t, store.SetVerbGovernance(ctx, "teilnehmen", "  "))

		match, _, err := store.FindByAnyLanguage(ctx, "teilnehmen")
		require.NoError(t, err)
		assert.Equal(t, "teilnehmen an + D", match.Entry.VerbGovernance)
	})
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seeded := translations("дружба", "friendship", "Freundschaft", "բարեկամություն")
	require.NoError(t, store.Upsert(ctx, Entry{Translations: seeded}))

	for _, code := range language.Supported {
		match, found, err := store.FindByAnyLanguage(ctx, seeded[code])
		require.NoError(t, err)
		require.True(t, found, "lookup by %s", code)
		assert.Equal(t, code, match.Language)
		for _, other := range language.Supported {
			assert.Equal(t, seeded[other], match.Entry.Translations[other])
		}
	}
}
