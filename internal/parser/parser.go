// Package parser turns raw message text into a translation request,
// recognizing optional language prefixes such as "de-ru: Hallo" or
// "de Hallo".
package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ahakobyan/phrasebook/internal/language"
	"github.com/ahakobyan/phrasebook/internal/translator"
)

// MaxInputLength caps the phrase length in runes after any prefix has
// been stripped.
const MaxInputLength = 500

type ErrorCode string

const (
	ErrorEmpty       ErrorCode = "empty"
	ErrorTooLong     ErrorCode = "too_long"
	ErrorInvalidPair ErrorCode = "invalid_pair"
)

// Error is a validation failure of the raw input, reported before any
// external call is made.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Code)
}

// DefaultPair is the caller's saved bidirectional language preference,
// applied when the text carries no explicit prefix.
type DefaultPair struct {
	Source language.Code
	Target language.Code
}

// Parse classifies the raw text into one of the four request modes.
// A "de-ru" or "de ru" prefix selects the explicit pair mode, a single
// language prefix forces the source, otherwise the default pair applies
// when one is given and auto detection when not. Prefixes are accepted
// with or without a colon.
func Parse(rawText string, defaultPair *DefaultPair) (translator.Request, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return translator.Request{}, &Error{Code: ErrorEmpty}
	}

	var (
		pairSource, pairTarget language.Code
		hasPair                bool
		forcedSource           language.Code
		hasForcedSource        bool
	)
	candidate := text

	if !strings.Contains(text, ":") {
		if prefix, remainder, found := cutOnWhitespace(text); found {
			if src, dst, ok := language.NormalizePair(prefix); ok {
				pairSource, pairTarget, hasPair = src, dst, true
				candidate = strings.TrimSpace(remainder)
			} else if source, ok := language.NormalizeCode(prefix); ok {
				forcedSource, hasForcedSource = source, true
				candidate = strings.TrimSpace(remainder)
			}
		}
	} else {
		prefix, remainder, _ := strings.Cut(text, ":")
		if src, dst, ok := language.NormalizePair(prefix); ok {
			pairSource, pairTarget, hasPair = src, dst, true
			candidate = strings.TrimSpace(remainder)
		} else if source, ok := language.NormalizeCode(prefix); ok {
			forcedSource, hasForcedSource = source, true
			candidate = strings.TrimSpace(remainder)
		} else if looksLikePairPrefix(prefix) {
			return translator.Request{}, &Error{Code: ErrorInvalidPair}
		}
	}

	if candidate == "" {
		return translator.Request{}, &Error{Code: ErrorEmpty}
	}
	if utf8.RuneCountInString(candidate) > MaxInputLength {
		return translator.Request{}, &Error{Code: ErrorTooLong}
	}

	switch {
	case hasPair:
		return translator.Request{
			Mode:   translator.ModeExplicitPair,
			Text:   candidate,
			Source: pairSource,
			Target: pairTarget,
		}, nil
	case hasForcedSource:
		return translator.Request{
			Mode:   translator.ModeForcedSource,
			Text:   candidate,
			Source: forcedSource,
		}, nil
	case defaultPair != nil:
		return translator.Request{
			Mode:   translator.ModeDefaultPair,
			Text:   candidate,
			Source: defaultPair.Source,
			Target: defaultPair.Target,
		}, nil
	default:
		return translator.Request{Mode: translator.ModeAuto, Text: candidate}, nil
	}
}

func cutOnWhitespace(text string) (prefix, remainder string, found bool) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return text, "", false
	}
	return text[:idx], text[idx:], true
}

// looksLikePairPrefix reports whether an unrecognized colon prefix was
// probably meant as a language pair, so the input is rejected instead
// of being translated with the colon text included.
func looksLikePairPrefix(prefix string) bool {
	compact := strings.TrimSpace(prefix)
	if compact == "" {
		return false
	}
	for _, delimiter := range []string{"-", "_", "→"} {
		if strings.Contains(compact, delimiter) {
			return true
		}
	}
	return len(strings.Fields(compact)) == 2
}
