package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/tierzen/internal/config"
	"github.com/meur/tierzen/internal/editor"
	"github.com/meur/tierzen/internal/logging"
	"github.com/meur/tierzen/internal/models"
	"github.com/meur/tierzen/internal/storage"
)

// ItemData is one entry of the import file
type ItemData struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

var slugRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func main() {
	var (
		configPath string
		dbPath     string
		itemsPath  string
		boardID    string
		templateID string
	)

	rootCmd := &cobra.Command{
		Use:   "import_items",
		Short: "Append items from a JSON file to a board's unranked pool or to a template",
		Long: `Reads a JSON array of {"name", "image_url"} objects.

With --board the items are added to the board's unranked pool. With
--template they become template items with ids derived from their names.
Items whose name matches one already present are skipped.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (boardID == "") == (templateID == "") {
				return fmt.Errorf("exactly one of --board or --template is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty, os.Stderr)

			items, err := readItems(itemsPath)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			if boardID != "" {
				return importToBoard(cmd.Context(), store, boardID, items)
			}
			return importToTemplate(cmd.Context(), store, templateID, items)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ./tierzen.toml)")
	rootCmd.Flags().StringVar(&dbPath, "db", "./tierzen.db", "SQLite database path")
	rootCmd.Flags().StringVar(&itemsPath, "items", "data/items.json", "items JSON path")
	rootCmd.Flags().StringVar(&boardID, "board", "", "board to add the items to")
	rootCmd.Flags().StringVar(&templateID, "template", "", "template to add the items to")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readItems(path string) ([]ItemData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	var items []ItemData
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	return items, nil
}

func importToBoard(ctx context.Context, store *storage.Store, boardID string, items []ItemData) error {
	ed, err := editor.NewRegistry(store, editor.Options{}).Get(ctx, boardID)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	st := ed.State()
	for _, t := range st.Tiers {
		for _, it := range t.Items {
			seen[slugify(it.Name)] = true
		}
	}
	for _, it := range st.Unranked {
		seen[slugify(it.Name)] = true
	}

	added := 0
	for _, in := range items {
		slug := slugify(in.Name)
		if slug == "" || seen[slug] {
			log.Debug().Str("name", in.Name).Msg("Skipping item")
			continue
		}
		seen[slug] = true

		if _, err := ed.AddItem(ctx, models.ItemInput{Name: in.Name, ImageURL: in.ImageURL}); err != nil {
			return fmt.Errorf("add %q: %w", in.Name, err)
		}
		added++
	}

	log.Info().Str("board_id", boardID).Int("added", added).Int("skipped", len(items)-added).Msg("Import complete")
	return nil
}

func importToTemplate(ctx context.Context, store *storage.Store, templateID string, items []ItemData) error {
	tmpl, err := store.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if tmpl == nil {
		if templateID != models.DefaultTemplateID {
			return fmt.Errorf("template %s not found", templateID)
		}
		def := models.DefaultTemplate()
		tmpl = &def
	}

	seen := make(map[string]bool)
	for _, it := range tmpl.Items {
		seen[it.ID] = true
	}

	added := 0
	for _, in := range items {
		slug := slugify(in.Name)
		if slug == "" {
			continue
		}
		// Stable ids so re-importing the same file is a no-op
		id := tmpl.ID + "-" + slug
		if seen[id] {
			continue
		}
		seen[id] = true

		tmpl.Items = append(tmpl.Items, models.Item{ID: id, Name: in.Name, ImageURL: in.ImageURL})
		added++
	}

	if err := store.SaveTemplate(ctx, tmpl); err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	log.Info().Str("template_id", tmpl.ID).Int("added", added).Msg("Import complete")
	return nil
}
