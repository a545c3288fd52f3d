package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahakobyan/phrasebook/internal/config"
	"github.com/ahakobyan/phrasebook/internal/database"
	"github.com/ahakobyan/phrasebook/internal/inference/openai"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loader.Load > %w", err)
	}
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open > %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.Migrate > %w", err)
	}
	return db, nil
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds * float64(time.Second))
	return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, timeout, cfg.OpenAI.MaxRetries)
}
