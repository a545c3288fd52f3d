// Package render formats resolution results and history listings as
// reply text.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ahakobyan/phrasebook/internal/history"
	"github.com/ahakobyan/phrasebook/internal/language"
	"github.com/ahakobyan/phrasebook/internal/translator"
)

var (
	labelColor      = color.New(color.Bold)
	annotationColor = color.New(color.FgYellow)
)

// ClarificationMessage is shown when the source language could not be
// detected and the caller has to pick one.
const ClarificationMessage = "Не удалось определить язык. Укажите исходный язык: ru, en, de, hy."

// Result renders one resolution as the reply text. The source language
// line is shown only in auto mode, where the caller did not name it.
func Result(result translator.Result, mode translator.Mode) string {
	if result.Status == translator.StatusNeedsClarification {
		return ClarificationMessage
	}

	var lines []string
	if mode == translator.ModeAuto && result.SourceLanguage != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			labelColor.Sprint("Исходный язык:"),
			language.Label(result.SourceLanguage)))
	}

	for _, code := range language.Supported {
		translation, ok := result.Translations[code]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s %s",
			labelColor.Sprint(language.Label(code)+":"),
			translation))
	}

	if result.PastFormsLine != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			annotationColor.Sprint("Прошедшие формы:"),
			result.PastFormsLine))
	}
	if result.NounArticleLine != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			annotationColor.Sprint("Артикль/род (de):"),
			result.NounArticleLine))
	}
	if result.VerbGovernance != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			annotationColor.Sprint("Управление (de):"),
			result.VerbGovernance))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// History renders the latest history records, newest first.
func History(records []history.Record) string {
	if len(records) == 0 {
		return "История пока пуста."
	}

	lines := make([]string, 0, len(records))
	for index, record := range records {
		codes := make([]string, 0, len(record.TargetList()))
		for _, target := range record.TargetList() {
			codes = append(codes, string(target))
		}
		lines = append(lines, fmt.Sprintf("%d. %s | %s -> %s | %s",
			index+1,
			record.CreatedAt,
			record.SourceLanguage,
			strings.Join(codes, ", "),
			record.InputSnippet))
	}
	return strings.Join(lines, "\n")
}
