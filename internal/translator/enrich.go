package translator

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ahakobyan/phrasebook/internal/cache"
	"github.com/ahakobyan/phrasebook/internal/inference"
	"github.com/ahakobyan/phrasebook/internal/language"
)

const (
	maxVerbFormsTextLength = 60
	maxVerbFormsTokens     = 3
	maxGovernanceTokens    = 4
	maxNounArticleTokens   = 3
)

var pastSlotForKey = map[string]cache.PastSlot{
	inference.PastKeyRussian:           cache.RussianPast,
	inference.PastKeyEnglishSimple:     cache.EnglishPastSimple,
	inference.PastKeyEnglishParticiple: cache.EnglishPastParticiple,
	inference.PastKeyGermanPerfekt:     cache.GermanPerfekt,
	inference.PastKeyGermanPrateritum:  cache.GermanPrateritum,
	inference.PastKeyArmenian:          cache.ArmenianPast,
}

// pastFormsDisplayOrder fixes the language order of the composite
// past-forms line.
var pastFormsDisplayOrder = []language.Code{
	language.German,
	language.English,
	language.Russian,
	language.Armenian,
}

// enrichment is the outcome of the best-effort enrichment pipeline.
// sourceText and translations may differ from the input when verb-form
// expansion replaced them with infinitives.
type enrichment struct {
	sourceText      string
	translations    map[language.Code]string
	germanText      string
	verbGovernance  string
	nounArticleLine string
	pastFormsLine   string
	pastLookup      map[cache.PastSlot]string
}

// enrich runs the three enrichment steps over a fresh resolution. Every
// step degrades to no annotation on failure; enrich never errors.
// Annotations already present on existing short-circuit their step.
func (s *Service) enrich(ctx context.Context, source language.Code, sourceText string, translations map[language.Code]string, existing *cache.Entry) enrichment {
	result := enrichment{
		sourceText:   sourceText,
		translations: translations,
	}
	if existing != nil {
		result.verbGovernance = existing.VerbGovernance
		result.nounArticleLine = existing.NounArticleLine
		result.pastFormsLine = existing.PastFormsLine
	}

	if result.pastFormsLine == "" {
		s.expandVerbForms(ctx, source, &result)
	}

	result.germanText = result.sourceText
	if source != language.German {
		result.germanText = result.translations[language.German]
	}
	if result.germanText != "" {
		if result.verbGovernance == "" {
			result.verbGovernance = s.fetchVerbGovernance(ctx, result.germanText)
		}
		if result.nounArticleLine == "" {
			result.nounArticleLine = s.fetchNounArticle(ctx, result.germanText)
		}
	}
	return result
}

// expandVerbForms asks the provider for infinitive and past-tense forms
// and, on a complete answer, replaces the resolution's surface forms
// with the infinitives.
func (s *Service) expandVerbForms(ctx context.Context, source language.Code, result *enrichment) {
	text := result.sourceText
	if utf8.RuneCountInString(text) > maxVerbFormsTextLength || hasPunctuation(text) || tokenCount(text) > maxVerbFormsTokens {
		return
	}

	known := map[language.Code]string{source: text}
	for code, value := range result.translations {
		known[code] = value
	}
	for _, code := range language.Supported {
		if known[code] == "" {
			return
		}
	}

	response, err := s.client.VerbForms(ctx, inference.VerbFormsRequest{
		SourceLanguage:    source,
		SourceText:        text,
		KnownTranslations: known,
	})
	if err != nil {
		s.logger.Debug("verb form expansion skipped", "error", err)
		return
	}
	if !response.IsVerb || !verbFormsComplete(response) {
		return
	}

	result.sourceText = response.Infinitives[source]
	for code := range result.translations {
		result.translations[code] = response.Infinitives[code]
	}
	result.pastFormsLine = pastFormsLine(response.PastDisplay)
	result.pastLookup = map[cache.PastSlot]string{}
	for key, slot := range pastSlotForKey {
		result.pastLookup[slot] = response.PastLookup[key]
	}
}

func verbFormsComplete(response inference.VerbFormsResponse) bool {
	for _, code := range language.Supported {
		if response.Infinitives[code] == "" || response.PastDisplay[code] == "" {
			return false
		}
	}
	for _, key := range inference.PastKeys {
		if response.PastLookup[key] == "" {
			return false
		}
	}
	return true
}

func pastFormsLine(display map[language.Code]string) string {
	parts := make([]string, 0, len(pastFormsDisplayOrder))
	for _, code := range pastFormsDisplayOrder {
		parts = append(parts, strings.ToUpper(string(code))+": "+display[code])
	}
	return strings.Join(parts, " | ")
}

// fetchVerbGovernance asks for preposition government of a likely
// German verb. Capitalized tokens are skipped as likely nouns.
func (s *Service) fetchVerbGovernance(ctx context.Context, germanText string) string {
	if tokenCount(germanText) > maxGovernanceTokens || strings.ContainsAny(germanText, ",;") {
		return ""
	}
	if first, ok := firstRune(germanText); !ok || unicode.IsUpper(first) {
		return ""
	}

	governance, err := s.client.GermanVerbGovernance(ctx, germanText)
	if err != nil {
		s.logger.Debug("verb governance skipped", "error", err)
		return ""
	}
	return governance
}

func (s *Service) fetchNounArticle(ctx context.Context, germanText string) string {
	if tokenCount(germanText) > maxNounArticleTokens || strings.ContainsAny(germanText, ",;") {
		return ""
	}
	lookup := germanText
	if first, ok := firstRune(germanText); ok && tokenCount(germanText) == 1 && unicode.IsLower(first) {
		// Lemma lookup wants the noun capitalized.
		lookup = capitalizeFirst(germanText)
	}

	articleLine, err := s.client.GermanNounArticle(ctx, lookup)
	if err != nil {
		s.logger.Debug("noun article skipped", "error", err)
		return ""
	}
	return articleLine
}

func tokenCount(text string) int {
	return len(strings.Fields(text))
}

func hasPunctuation(text string) bool {
	for _, r := range text {
		if unicode.IsPunct(r) {
			return true
		}
	}
	return false
}

func firstRune(text string) (rune, bool) {
	for _, r := range text {
		return r, true
	}
	return 0, false
}

func capitalizeFirst(text string) string {
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
