// Package inference defines the provider gateway the resolution engine
// calls for translations and grammar enrichment.
package inference

import (
	"context"

	"github.com/ahakobyan/phrasebook/internal/language"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client is the gateway to the external language model. Every call is
// schema-validated and retried internally by the implementation; a
// returned error means retries were already exhausted.
type Client interface {
	Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error)
	VerbForms(ctx context.Context, req VerbFormsRequest) (VerbFormsResponse, error)
	GermanVerbGovernance(ctx context.Context, germanText string) (string, error)
	GermanNounArticle(ctx context.Context, germanText string) (string, error)
}

// TranslateRequest asks for translations of Text into RequestedTargets.
// When ForcedSource is empty the model detects the source language,
// restricted to AllowedLanguages.
type TranslateRequest struct {
	Text             string
	RequestedTargets []language.Code
	ForcedSource     language.Code
	AllowedLanguages []language.Code
}

// TranslateResponse carries the detected source language (possibly
// language.Unknown) and the non-empty translations, keyed by target.
type TranslateResponse struct {
	DetectedLanguage language.Code
	Translations     map[language.Code]string
}

// VerbFormsRequest asks for the infinitive and past-tense forms of a
// verb whose translations into all four languages are already known.
type VerbFormsRequest struct {
	SourceLanguage    language.Code
	SourceText        string
	KnownTranslations map[language.Code]string
}

// Past-form slot names used as PastLookup keys.
const (
	PastKeyRussian           = "ru_past"
	PastKeyEnglishSimple     = "en_past_simple"
	PastKeyEnglishParticiple = "en_past_participle"
	PastKeyGermanPerfekt     = "de_perfekt"
	PastKeyGermanPrateritum  = "de_prateritum"
	PastKeyArmenian          = "hy_past"
)

// PastKeys lists all six past-form slot names.
var PastKeys = []string{
	PastKeyRussian,
	PastKeyEnglishSimple,
	PastKeyEnglishParticiple,
	PastKeyGermanPerfekt,
	PastKeyGermanPrateritum,
	PastKeyArmenian,
}

// VerbFormsResponse describes a verb across all four languages.
// Infinitives and PastDisplay are keyed by language; PastLookup is keyed
// by the six past-form slot names.
type VerbFormsResponse struct {
	IsVerb      bool
	Infinitives map[language.Code]string
	PastLookup  map[string]string
	PastDisplay map[language.Code]string
}

const (
	DefaultMaxRetryAttempts = 2
)
