// Package cache implements the normalized translation lookup store: one
// row per unique four-language translation tuple, addressable by any of
// its ten normalized surface forms (four primary translations plus up to
// six past-tense forms).
package cache

import (
	"strings"

	"github.com/ahakobyan/phrasebook/internal/language"
)

// PastSlot names one of the six fixed alternate-form lookup slots.
type PastSlot string

const (
	RussianPast           PastSlot = "ru_past"
	EnglishPastSimple     PastSlot = "en_past_simple"
	EnglishPastParticiple PastSlot = "en_past_participle"
	GermanPerfekt         PastSlot = "de_perfekt"
	GermanPrateritum      PastSlot = "de_prateritum"
	ArmenianPast          PastSlot = "hy_past"
)

// PastSlots lists all alternate-form slots.
var PastSlots = []PastSlot{
	RussianPast,
	EnglishPastSimple,
	EnglishPastParticiple,
	GermanPerfekt,
	GermanPrateritum,
	ArmenianPast,
}

// Entry is the unit of persistence. Translations must carry a non-empty
// surface form for every supported language before the entry can be
// stored. Annotation fields and past-form lookup keys are optional;
// the empty string means absent.
type Entry struct {
	Translations    map[language.Code]string
	VerbGovernance  string
	NounArticleLine string
	PastFormsLine   string
	PastLookup      map[PastSlot]string
}

// Match is an entry found by text together with the language the
// matching key belongs to.
type Match struct {
	Language language.Code
	Entry    Entry
}

// Complete reports whether the entry carries a non-empty translation
// for every supported language.
func (e Entry) Complete() bool {
	for _, code := range language.Supported {
		if Normalize(e.Translations[code]) == "" {
			return false
		}
	}
	return true
}

// Merge combines an incoming entry into an existing one. The four
// primary translations are always overwritten with the incoming surface
// forms (a cosmetic refresh). Each annotation field and each past-form
// lookup slot follows a coalesce-if-absent rule: an incoming non-empty
// value overwrites, an incoming empty value never erases a stored one.
// Annotations only ever grow.
func Merge(existing, incoming Entry) Entry {
	merged := Entry{
		Translations: make(map[language.Code]string, len(language.Supported)),
		PastLookup:   make(map[PastSlot]string, len(PastSlots)),
	}
	for _, code := range language.Supported {
		merged.Translations[code] = incoming.Translations[code]
	}

	merged.VerbGovernance = coalesce(incoming.VerbGovernance, existing.VerbGovernance)
	merged.NounArticleLine = coalesce(incoming.NounArticleLine, existing.NounArticleLine)
	merged.PastFormsLine = coalesce(incoming.PastFormsLine, existing.PastFormsLine)

	for _, slot := range PastSlots {
		value := coalesce(incoming.PastLookup[slot], existing.PastLookup[slot])
		if value != "" {
			merged.PastLookup[slot] = value
		}
	}
	return merged
}

func coalesce(incoming, existing string) string {
	if strings.TrimSpace(incoming) != "" {
		return incoming
	}
	return existing
}
