package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahakobyan/phrasebook/internal/cache"
	"github.com/ahakobyan/phrasebook/internal/history"
	"github.com/ahakobyan/phrasebook/internal/language"
	"github.com/ahakobyan/phrasebook/internal/parser"
	"github.com/ahakobyan/phrasebook/internal/render"
	"github.com/ahakobyan/phrasebook/internal/translator"
)

func newTranslateCommand() *cobra.Command {
	var (
		pairFlag string
		fromFlag string
		userID   int64
	)
	command := &cobra.Command{
		Use:   "translate [text]",
		Short: "Resolve a phrase from the cache or the model",
		Long: "Resolve a phrase from the local cache, falling back to the model.\n" +
			"The text itself may carry a prefix: \"de-ru: Hallo\" translates an\n" +
			"explicit pair, \"de: Hallo\" or \"de Hallo\" forces the source language.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")

			request, err := buildRequest(text, pairFlag, fromFlag)
			if err != nil {
				return err
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

			client := newOpenAIClient(cfg)
			defer func() {
				_ = client.Close()
			}()

			service := translator.NewService(cache.NewStore(db), client)
			result, err := service.Resolve(ctx, request)
			if err != nil {
				return fmt.Errorf("service.Resolve > %w", err)
			}

			cmd.Println(render.Result(result, request.Mode))

			if result.Status == translator.StatusOK && len(result.Translations) > 0 {
				targets := make([]language.Code, 0, len(result.Translations))
				for _, code := range language.Supported {
					if _, ok := result.Translations[code]; ok {
						targets = append(targets, code)
					}
				}
				repo := history.NewDBRepository(db, cfg.History.Enabled)
				if err := repo.Add(ctx, userID, request.Text, result.SourceLanguage, targets); err != nil {
					return fmt.Errorf("repo.Add > %w", err)
				}
			}
			return nil
		},
	}
	command.Flags().StringVar(&pairFlag, "pair", "", "default language pair, for example ru-en")
	command.Flags().StringVar(&fromFlag, "from", "", "force the source language, for example de")
	command.Flags().Int64Var(&userID, "user", 1, "history user id")
	return command
}

// buildRequest maps the flags onto the request modes: --from forces the
// source, --pair sets the default pair the text falls back to, and the
// parser handles in-text prefixes either way.
func buildRequest(text, pairFlag, fromFlag string) (translator.Request, error) {
	if fromFlag != "" {
		source, ok := language.NormalizeCode(fromFlag)
		if !ok {
			return translator.Request{}, fmt.Errorf("unsupported source language %q", fromFlag)
		}
		return translator.Request{
			Mode:   translator.ModeForcedSource,
			Text:   text,
			Source: source,
		}, nil
	}

	var defaultPair *parser.DefaultPair
	if pairFlag != "" {
		src, dst, ok := language.NormalizePair(pairFlag)
		if !ok {
			return translator.Request{}, fmt.Errorf("unsupported language pair %q", pairFlag)
		}
		defaultPair = &parser.DefaultPair{Source: src, Target: dst}
	}

	request, err := parser.Parse(text, defaultPair)
	if err != nil {
		var parseErr *parser.Error
		if errors.As(err, &parseErr) {
			return translator.Request{}, fmt.Errorf("%s", parseErrorMessage(parseErr.Code))
		}
		return translator.Request{}, err
	}
	return request, nil
}

func parseErrorMessage(code parser.ErrorCode) string {
	switch code {
	case parser.ErrorTooLong:
		return fmt.Sprintf("Текст слишком длинный. Отправьте до %d символов.", parser.MaxInputLength)
	case parser.ErrorInvalidPair:
		return "Не распознал пару языков. Формат: ru-en, de-hy и т.д."
	default:
		return "Отправьте непустой текст."
	}
}

func newClarifyCommand() *cobra.Command {
	var userID int64
	command := &cobra.Command{
		Use:   "clarify <language> [text]",
		Short: "Retry a phrase whose language could not be detected",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, ok := language.NormalizeCode(args[0])
			if !ok {
				return fmt.Errorf("unsupported source language %q", args[0])
			}
			text := strings.Join(args[1:], " ")

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

			client := newOpenAIClient(cfg)
			defer func() {
				_ = client.Close()
			}()

			service := translator.NewService(cache.NewStore(db), client)
			result, err := service.ResolveForcedSource(ctx, text, source)
			if err != nil {
				return fmt.Errorf("service.ResolveForcedSource > %w", err)
			}
			cmd.Println(render.Result(result, translator.ModeForcedSource))

			if result.Status == translator.StatusOK && len(result.Translations) > 0 {
				repo := history.NewDBRepository(db, cfg.History.Enabled)
				if err := repo.Add(ctx, userID, text, result.SourceLanguage, language.Targets(source)); err != nil {
					return fmt.Errorf("repo.Add > %w", err)
				}
			}
			return nil
		},
	}
	command.Flags().Int64Var(&userID, "user", 1, "history user id")
	return command
}
