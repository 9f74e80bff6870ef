package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/tierzen/internal/config"
	"github.com/meur/tierzen/internal/logging"
	"github.com/meur/tierzen/internal/models"
	"github.com/meur/tierzen/internal/storage"
)

func main() {
	var (
		configPath string
		dbPath     string
		seedsDir   string
	)

	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load the built-in template and every template file in the seeds directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty, os.Stderr)

			store, err := storage.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			return seed(cmd.Context(), store, seedsDir)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ./tierzen.toml)")
	rootCmd.Flags().StringVar(&dbPath, "db", "./tierzen.db", "SQLite database path")
	rootCmd.Flags().StringVar(&seedsDir, "seeds", "./seeds", "directory of template JSON files")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(ctx context.Context, store *storage.Store, dir string) error {
	def := models.DefaultTemplate()
	if err := store.SaveTemplate(ctx, &def); err != nil {
		return fmt.Errorf("seed default template: %w", err)
	}
	log.Info().Str("template_id", def.ID).Msg("Seeded built-in template")

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := seedTemplate(ctx, store, path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to seed template")
			continue
		}
		log.Info().Str("file", path).Msg("Seeded template")
	}

	log.Info().Int("files", len(files)).Msg("Seeding complete")
	return nil
}

func seedTemplate(ctx context.Context, store *storage.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmpl models.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return err
	}
	if tmpl.ID == "" {
		return fmt.Errorf("template in %s has no id", filepath.Base(path))
	}

	return store.SaveTemplate(ctx, &tmpl)
}
