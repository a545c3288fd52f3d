// Package language defines the closed set of supported languages and
// helpers for normalizing user-provided language codes and pairs.
package language

import (
	"regexp"
	"strings"
)

// Code identifies one of the four supported languages.
type Code string

const (
	Russian  Code = "ru"
	English  Code = "en"
	German   Code = "de"
	Armenian Code = "hy"

	// Unknown is the synthetic value the provider reports when it
	// cannot detect the language of an input.
	Unknown Code = "unknown"
)

// Supported lists the supported languages in their declared order.
var Supported = []Code{Russian, English, German, Armenian}

// MatchPrecedence is the fixed order in which a cache row's per-language
// keys are checked when an input could match more than one language.
// German is deliberately checked before English so that Latin-script
// spellings shared by both resolve to German. This is a language
// preference policy, not ambiguity resolution.
var MatchPrecedence = []Code{Russian, Armenian, German, English}

var labels = map[Code]string{
	Russian:  "Русский",
	English:  "English",
	German:   "Deutsch",
	Armenian: "Հայերեն",
}

// Aliases in Latin, Cyrillic and Armenian scripts accepted as language codes.
var aliases = map[string]Code{
	"ru": Russian, "rus": Russian, "russian": Russian,
	"рус": Russian, "русский": Russian, "русском": Russian,
	"ռուս": Russian, "ռուսերեն": Russian,

	"en": English, "eng": English, "english": English,
	"анг": English, "англ": English, "английский": English,
	"անգլ": English, "անգլերեն": English,

	"de": German, "deu": German, "ger": German, "german": German,
	"deutsch": German, "нем": German, "немецкий": German,
	"գերմ": German, "գերմաներեն": German,

	"hy": Armenian, "hye": Armenian, "arm": Armenian, "armenian": Armenian,
	"арм": Armenian, "армянский": Armenian,
	"հայ": Armenian, "հայերեն": Armenian,
}

var (
	pairPattern       = regexp.MustCompile(`^(.+?)\s*(?:-|_|→|\s)\s*(.+?)$`)
	aliasCleanPattern = regexp.MustCompile(`[^0-9a-zа-яա-ֆ]+`)
)

// IsSupported reports whether code is one of the four supported languages.
func IsSupported(code Code) bool {
	for _, supported := range Supported {
		if code == supported {
			return true
		}
	}
	return false
}

// Label returns the human-readable label of a language in its own script.
func Label(code Code) string {
	if label, ok := labels[code]; ok {
		return label
	}
	return string(code)
}

// Targets returns the supported languages except source, in declared order.
func Targets(source Code) []Code {
	targets := make([]Code, 0, len(Supported)-1)
	for _, code := range Supported {
		if code != source {
			targets = append(targets, code)
		}
	}
	return targets
}

func cleanAliasToken(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.ReplaceAll(token, "ё", "е")
	return aliasCleanPattern.ReplaceAllString(token, "")
}

// NormalizeCode resolves a user-provided language alias to its canonical
// code. It returns false when the alias is empty or unrecognized.
func NormalizeCode(raw string) (Code, bool) {
	cleaned := cleanAliasToken(raw)
	if cleaned == "" {
		return "", false
	}
	if IsSupported(Code(cleaned)) {
		return Code(cleaned), true
	}
	code, ok := aliases[cleaned]
	return code, ok
}

// NormalizePair resolves a raw pair such as "ru-en", "ru→en" or "ru en"
// into two distinct supported languages.
func NormalizePair(raw string) (src, dst Code, ok bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", "", false
	}

	match := pairPattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}

	src, srcOK := NormalizeCode(match[1])
	dst, dstOK := NormalizeCode(match[2])
	if !srcOK || !dstOK || src == dst {
		return "", "", false
	}
	return src, dst, true
}

// DetectByScript guesses the language of text from its script alone:
// any Cyrillic rune means Russian and any Armenian rune means Armenian.
// Purely ASCII-alphabetic text is biased towards German, since German is
// preferred over English for ambiguous Latin-script input. It returns
// false for everything else.
func DetectByScript(text string) (Code, bool) {
	hasASCIIAlpha := false
	for _, r := range text {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			return Russian, true
		case r >= 0x0530 && r <= 0x058F:
			return Armenian, true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasASCIIAlpha = true
		}
	}
	if hasASCIIAlpha {
		return German, true
	}
	return "", false
}
