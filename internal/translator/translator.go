// Package translator orchestrates translation resolution: cache first,
// then the inference provider, then enrichment and write-back.
package translator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahakobyan/phrasebook/internal/cache"
	"github.com/ahakobyan/phrasebook/internal/inference"
	"github.com/ahakobyan/phrasebook/internal/language"
)

type Mode string

const (
	// ModeExplicitPair translates from an explicit source into an
	// explicit target, nothing else.
	ModeExplicitPair Mode = "explicit_pair"
	// ModeForcedSource translates from an explicit source into the
	// three remaining languages.
	ModeForcedSource Mode = "forced_source"
	// ModeDefaultPair translates between the two languages of a saved
	// pair, detecting which of the two the input belongs to.
	ModeDefaultPair Mode = "default_pair"
	// ModeAuto detects the source language and translates into the
	// three remaining languages.
	ModeAuto Mode = "auto"
)

// Request is one parsed translation request. Source and Target are
// required or ignored depending on Mode.
type Request struct {
	Mode   Mode
	Text   string
	Source language.Code
	Target language.Code
}

type Status string

const (
	StatusOK Status = "ok"
	// StatusNeedsClarification means the source language could not be
	// determined. The caller should ask the user and retry through
	// ResolveForcedSource. It is a terminal outcome, not an error.
	StatusNeedsClarification Status = "needs_clarification"
)

// Result is the outcome of one resolution. Translations is keyed by
// target language and never contains the source. The annotation fields
// are optional and empty when unresolved.
type Result struct {
	Status          Status
	SourceLanguage  language.Code
	SourceText      string
	Translations    map[language.Code]string
	VerbGovernance  string
	NounArticleLine string
	PastFormsLine   string
	FromCache       bool
}

// Service resolves translation requests against the cache store and the
// inference provider. It holds no per-request state.
type Service struct {
	store  *cache.Store
	client inference.Client
	logger *slog.Logger
}

func NewService(store *cache.Store, client inference.Client) *Service {
	return &Service{
		store:  store,
		client: client,
		logger: slog.Default(),
	}
}

// Resolve runs the state machine for the request's mode.
func (s *Service) Resolve(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if cache.Normalize(text) == "" {
		return Result{}, ErrEmptyText
	}

	switch req.Mode {
	case ModeExplicitPair:
		if err := requirePair(req.Source, req.Target); err != nil {
			return Result{}, err
		}
		return s.resolveExplicitPair(ctx, text, req.Source, req.Target)
	case ModeForcedSource:
		if !language.IsSupported(req.Source) {
			return Result{}, fmt.Errorf("forced source: %w", ErrMissingLanguage)
		}
		return s.resolveForcedSource(ctx, text, req.Source)
	case ModeDefaultPair:
		if err := requirePair(req.Source, req.Target); err != nil {
			return Result{}, err
		}
		return s.resolveDefaultPair(ctx, text, req.Source, req.Target)
	case ModeAuto:
		return s.resolveAuto(ctx, text)
	default:
		return Result{}, fmt.Errorf("%q: %w", req.Mode, ErrUnknownMode)
	}
}

// ResolveForcedSource resolves text whose source language is already
// known, for example after the user answered a clarification prompt.
func (s *Service) ResolveForcedSource(ctx context.Context, text string, source language.Code) (Result, error) {
	return s.Resolve(ctx, Request{Mode: ModeForcedSource, Text: text, Source: source})
}

func requirePair(src, dst language.Code) error {
	if !language.IsSupported(src) || !language.IsSupported(dst) {
		return fmt.Errorf("language pair: %w", ErrMissingLanguage)
	}
	if src == dst {
		return fmt.Errorf("language pair %s-%s: %w", src, dst, ErrMissingLanguage)
	}
	return nil
}

func (s *Service) resolveExplicitPair(ctx context.Context, text string, src, dst language.Code) (Result, error) {
	entry, found, err := s.store.FindByLanguageAndText(ctx, src, text)
	if err != nil {
		return Result{}, fmt.Errorf("store.FindByLanguageAndText > %w", err)
	}
	if found && entry.Translations[dst] != "" {
		return cachedResult(src, entry, []language.Code{dst}), nil
	}

	response, err := s.client.Translate(ctx, inference.TranslateRequest{
		Text:             text,
		RequestedTargets: []language.Code{dst},
		ForcedSource:     src,
		AllowedLanguages: []language.Code{src, dst},
	})
	if err != nil {
		return Result{}, fmt.Errorf("client.Translate > %w", err)
	}
	translated := strings.TrimSpace(response.Translations[dst])
	if translated == "" {
		return Result{}, fmt.Errorf("%s to %s: %w", src, dst, ErrNoTranslations)
	}

	var existing *cache.Entry
	if found {
		existing = &entry
	}
	return s.finishMiss(ctx, src, text, map[language.Code]string{dst: translated}, existing)
}

func (s *Service) resolveForcedSource(ctx context.Context, text string, src language.Code) (Result, error) {
	entry, found, err := s.store.FindByLanguageAndText(ctx, src, text)
	if err != nil {
		return Result{}, fmt.Errorf("store.FindByLanguageAndText > %w", err)
	}
	if found && hasAllTargets(entry, src) {
		return cachedResult(src, entry, language.Targets(src)), nil
	}

	targets := language.Targets(src)
	response, err := s.client.Translate(ctx, inference.TranslateRequest{
		Text:             text,
		RequestedTargets: targets,
		ForcedSource:     src,
	})
	if err != nil {
		return Result{}, fmt.Errorf("client.Translate > %w", err)
	}

	translations := nonEmptySubset(response.Translations, targets)
	if len(translations) == 0 {
		return Result{}, fmt.Errorf("from %s: %w", src, ErrNoTranslations)
	}
	return s.finishMiss(ctx, src, text, translations, nil)
}

func (s *Service) resolveDefaultPair(ctx context.Context, text string, src, dst language.Code) (Result, error) {
	// Target-first cache policy: when a phrase could belong to either
	// saved language, the configured target is preferred as the source.
	entry, found, err := s.store.FindByLanguageAndText(ctx, dst, text)
	if err != nil {
		return Result{}, fmt.Errorf("store.FindByLanguageAndText > %w", err)
	}
	if found && entry.Translations[src] != "" {
		return cachedResult(dst, entry, []language.Code{src}), nil
	}
	entry, found, err = s.store.FindByLanguageAndText(ctx, src, text)
	if err != nil {
		return Result{}, fmt.Errorf("store.FindByLanguageAndText > %w", err)
	}
	if found && entry.Translations[dst] != "" {
		return cachedResult(src, entry, []language.Code{dst}), nil
	}

	response, err := s.client.Translate(ctx, inference.TranslateRequest{
		Text:             text,
		RequestedTargets: []language.Code{src, dst},
		AllowedLanguages: []language.Code{src, dst},
	})
	if err != nil {
		return Result{}, fmt.Errorf("client.Translate > %w", err)
	}

	source := response.DetectedLanguage
	switch {
	case source != src && source != dst:
		source = dst
	case source == src && cache.Normalize(response.Translations[dst]) == cache.Normalize(text):
		// The phrase is spelled identically on the target side, so the
		// detection is not trustworthy. Prefer the configured target.
		source = dst
	}
	target := src
	if source == src {
		target = dst
	}
	s.logger.Debug("default pair resolved",
		"detected", response.DetectedLanguage,
		"source", source,
		"target", target,
	)

	translated := strings.TrimSpace(response.Translations[target])
	if translated == "" {
		refill, err := s.client.Translate(ctx, inference.TranslateRequest{
			Text:             text,
			RequestedTargets: []language.Code{target},
			ForcedSource:     source,
		})
		if err != nil {
			return Result{}, fmt.Errorf("client.Translate refill > %w", err)
		}
		translated = strings.TrimSpace(refill.Translations[target])
	}
	if translated == "" {
		return Result{}, fmt.Errorf("%s to %s: %w", source, target, ErrNoTranslations)
	}

	return s.finishMiss(ctx, source, text, map[language.Code]string{target: translated}, nil)
}

func (s *Service) resolveAuto(ctx context.Context, text string) (Result, error) {
	match, found, err := s.store.FindByAnyLanguage(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("store.FindByAnyLanguage > %w", err)
	}
	if found {
		return cachedResult(match.Language, match.Entry, language.Targets(match.Language)), nil
	}

	response, err := s.client.Translate(ctx, inference.TranslateRequest{
		Text:             text,
		RequestedTargets: language.Supported,
	})
	if err != nil {
		return Result{}, fmt.Errorf("client.Translate > %w", err)
	}

	source := response.DetectedLanguage
	translations := response.Translations
	refillAllowed := true
	if !language.IsSupported(source) {
		fallback, ok := language.DetectByScript(text)
		if !ok {
			s.logger.Debug("detection failed with no script fallback", "detected", source)
			return Result{Status: StatusNeedsClarification}, nil
		}
		s.logger.Debug("retrying with script fallback", "detected", source, "fallback", fallback)
		retry, err := s.client.Translate(ctx, inference.TranslateRequest{
			Text:             text,
			RequestedTargets: language.Targets(fallback),
			ForcedSource:     fallback,
		})
		if err != nil {
			return Result{}, fmt.Errorf("client.Translate fallback > %w", err)
		}
		if len(nonEmptySubset(retry.Translations, language.Targets(fallback))) == 0 {
			return Result{Status: StatusNeedsClarification}, nil
		}
		source = fallback
		translations = retry.Translations
		// The retry was itself a forced-source call; whatever it left
		// empty stays empty rather than making a third provider call.
		refillAllowed = false
	} else if source == language.English && isASCIISingleWord(text) &&
		cache.Normalize(translations[language.German]) == cache.Normalize(text) {
		// An ASCII single word whose German translation is the input
		// itself is treated as German. Documented bias, not detection.
		source = language.German
	}

	targets := language.Targets(source)
	resolved := nonEmptySubset(translations, targets)
	if missing := missingTargets(resolved, targets); refillAllowed && len(missing) > 0 {
		refill, err := s.client.Translate(ctx, inference.TranslateRequest{
			Text:             text,
			RequestedTargets: missing,
			ForcedSource:     source,
		})
		if err != nil {
			return Result{}, fmt.Errorf("client.Translate refill > %w", err)
		}
		for code, value := range nonEmptySubset(refill.Translations, missing) {
			resolved[code] = value
		}
	}
	if len(resolved) == 0 {
		return Result{}, fmt.Errorf("from %s: %w", source, ErrNoTranslations)
	}

	return s.finishMiss(ctx, source, text, resolved, nil)
}

// finishMiss runs enrichment over a provider-sourced resolution and
// writes the outcome back to the store.
func (s *Service) finishMiss(ctx context.Context, source language.Code, sourceText string, translations map[language.Code]string, existing *cache.Entry) (Result, error) {
	enriched := s.enrich(ctx, source, sourceText, translations, existing)

	full := map[language.Code]string{source: enriched.sourceText}
	for code, value := range enriched.translations {
		full[code] = value
	}
	entry := cache.Entry{
		Translations:    full,
		VerbGovernance:  enriched.verbGovernance,
		NounArticleLine: enriched.nounArticleLine,
		PastFormsLine:   enriched.pastFormsLine,
		PastLookup:      enriched.pastLookup,
	}
	if entry.Complete() {
		if err := s.store.Upsert(ctx, entry); err != nil {
			return Result{}, fmt.Errorf("store.Upsert > %w", err)
		}
	} else {
		// A partial translation set is never persisted as a row;
		// annotations still attach to an existing entry when one
		// matches the German text.
		if enriched.germanText != "" {
			if enriched.verbGovernance != "" {
				if err := s.store.SetVerbGovernance(ctx, enriched.germanText, enriched.verbGovernance); err != nil {
					return Result{}, fmt.Errorf("store.SetVerbGovernance > %w", err)
				}
			}
			if enriched.nounArticleLine != "" {
				if err := s.store.SetNounArticleLine(ctx, enriched.germanText, enriched.nounArticleLine); err != nil {
					return Result{}, fmt.Errorf("store.SetNounArticleLine > %w", err)
				}
			}
		}
	}

	return Result{
		Status:          StatusOK,
		SourceLanguage:  source,
		SourceText:      enriched.sourceText,
		Translations:    enriched.translations,
		VerbGovernance:  enriched.verbGovernance,
		NounArticleLine: enriched.nounArticleLine,
		PastFormsLine:   enriched.pastFormsLine,
	}, nil
}

func cachedResult(source language.Code, entry cache.Entry, targets []language.Code) Result {
	translations := map[language.Code]string{}
	for _, code := range targets {
		if value := entry.Translations[code]; value != "" {
			translations[code] = value
		}
	}
	sourceText := entry.Translations[source]
	return Result{
		Status:          StatusOK,
		SourceLanguage:  source,
		SourceText:      sourceText,
		Translations:    translations,
		VerbGovernance:  entry.VerbGovernance,
		NounArticleLine: entry.NounArticleLine,
		PastFormsLine:   entry.PastFormsLine,
		FromCache:       true,
	}
}

func hasAllTargets(entry cache.Entry, source language.Code) bool {
	for _, code := range language.Targets(source) {
		if entry.Translations[code] == "" {
			return false
		}
	}
	return true
}

func nonEmptySubset(translations map[language.Code]string, targets []language.Code) map[language.Code]string {
	subset := map[language.Code]string{}
	for _, code := range targets {
		if value := strings.TrimSpace(translations[code]); value != "" {
			subset[code] = value
		}
	}
	return subset
}

func missingTargets(resolved map[language.Code]string, targets []language.Code) []language.Code {
	var missing []language.Code
	for _, code := range targets {
		if resolved[code] == "" {
			missing = append(missing, code)
		}
	}
	return missing
}

func isASCIISingleWord(text string) bool {
	if len(strings.Fields(text)) != 1 {
		return false
	}
	for _, r := range text {
		if r > 127 {
			return false
		}
	}
	return true
}
