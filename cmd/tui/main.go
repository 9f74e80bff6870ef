package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/tierzen/internal/config"
	"github.com/meur/tierzen/internal/editor"
	"github.com/meur/tierzen/internal/logging"
	"github.com/meur/tierzen/internal/models"
	"github.com/meur/tierzen/internal/storage"
	"github.com/meur/tierzen/internal/tui"
)

func main() {
	var (
		configPath string
		dbPath     string
		boardID    string
		logFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "tui",
		Short: "Rank a board in the terminal",
		Long: `Opens a board in the terminal. Without --board the most recently
updated board is opened, or a new one is created from the built-in template.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}

			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			logging.Setup(cfg.Log.Level, false, out)

			store, err := storage.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			id, err := resolveBoard(cmd.Context(), store, boardID)
			if err != nil {
				return err
			}

			ed, err := editor.NewRegistry(store, editor.Options{Deadband: cfg.Drag.Deadband}).Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), ed)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ./tierzen.toml)")
	rootCmd.Flags().StringVar(&dbPath, "db", "./tierzen.db", "SQLite database path")
	rootCmd.Flags().StringVar(&boardID, "board", "", "board id to open")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// resolveBoard picks the board to open
func resolveBoard(ctx context.Context, store *storage.Store, id string) (string, error) {
	if id != "" {
		return id, nil
	}

	boards, err := store.ListBoards(ctx)
	if err != nil {
		return "", err
	}
	if len(boards) > 0 {
		return boards[0].ID, nil
	}

	tmpl, err := store.GetTemplate(ctx, models.DefaultTemplateID)
	if err != nil {
		return "", err
	}
	if tmpl == nil {
		def := models.DefaultTemplate()
		tmpl = &def
	}

	b, err := store.CreateBoard(ctx, "My Tier List", *tmpl)
	if err != nil {
		return "", err
	}
	log.Info().Str("board_id", b.ID).Msg("Created board")
	return b.ID, nil
}
