package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahakobyan/phrasebook/internal/cache"
	"github.com/ahakobyan/phrasebook/internal/language"
)

type seedEntry struct {
	Russian         string            `yaml:"ru"`
	English         string            `yaml:"en"`
	German          string            `yaml:"de"`
	Armenian        string            `yaml:"hy"`
	VerbGovernance  string            `yaml:"verb_governance"`
	NounArticleLine string            `yaml:"noun_article_line"`
	PastFormsLine   string            `yaml:"past_forms_line"`
	PastForms       map[string]string `yaml:"past_forms"`
}

func (e seedEntry) cacheEntry() cache.Entry {
	entry := cache.Entry{
		Translations: map[language.Code]string{
			language.Russian:  e.Russian,
			language.English:  e.English,
			language.German:   e.German,
			language.Armenian: e.Armenian,
		},
		VerbGovernance:  e.VerbGovernance,
		NounArticleLine: e.NounArticleLine,
		PastFormsLine:   e.PastFormsLine,
	}
	if len(e.PastForms) > 0 {
		entry.PastLookup = map[cache.PastSlot]string{}
		for _, slot := range cache.PastSlots {
			if value := e.PastForms[string(slot)]; value != "" {
				entry.PastLookup[slot] = value
			}
		}
	}
	return entry
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Import cache entries from a YAML file",
		Long: "Import cache entries from a YAML list. Each item needs all four\n" +
			"languages (ru, en, de, hy); verb_governance, noun_article_line,\n" +
			"past_forms_line and past_forms are optional. Entries with an\n" +
			"existing four-language tuple are merged, annotations never regress.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("os.ReadFile > %w", err)
			}
			var entries []seedEntry
			if err := yaml.Unmarshal(content, &entries); err != nil {
				return fmt.Errorf("yaml.Unmarshal > %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			store := cache.NewStore(db)
			imported := 0
			for index, entry := range entries {
				cacheEntry := entry.cacheEntry()
				if !cacheEntry.Complete() {
					return fmt.Errorf("entry %d: all four languages are required", index+1)
				}
				if err := store.Upsert(ctx, cacheEntry); err != nil {
					return fmt.Errorf("store.Upsert(entry %d) > %w", index+1, err)
				}
				imported++
			}
			cmd.Printf("imported %d entries\n", imported)
			return nil
		},
	}
}
