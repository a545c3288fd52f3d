package main

import (
	"github.com/spf13/cobra"

	"github.com/ahakobyan/phrasebook/internal/history"
	"github.com/ahakobyan/phrasebook/internal/render"
)

func newHistoryCommand() *cobra.Command {
	var (
		userID int64
		limit  int
	)
	command := &cobra.Command{
		Use:   "history",
		Short: "Show the latest translation requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				cmd.Println("История переводов отключена.")
				return nil
			}
			if limit <= 0 {
				limit = cfg.History.Limit
			}

			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := history.NewDBRepository(db, cfg.History.Enabled)
			records, err := repo.Latest(ctx, userID, limit)
			if err != nil {
				return err
			}
			cmd.Println(render.History(records))
			return nil
		},
	}
	command.Flags().Int64Var(&userID, "user", 1, "history user id")
	command.Flags().IntVar(&limit, "limit", 0, "number of records to show, defaults to the configured limit")
	return command
}
