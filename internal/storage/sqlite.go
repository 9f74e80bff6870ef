package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/models"
)

// ErrNotFound is returned by mutating calls that address a missing board
var ErrNotFound = errors.New("not found")

// Fixed keys of the per-board state rows
const (
	KeyTiers         = "tiers"
	KeyUnrankedItems = "unranked_items"
	KeyEditMode      = "edit_mode"
	KeyDarkMode      = "dark_mode"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Templates ---

// GetTemplates returns all stored templates
func (s *Store) GetTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, icon_url, default_tiers, items, created_at
		FROM templates ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// GetTemplate returns a template by ID, or nil when there is none
func (s *Store) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, icon_url, default_tiers, items, created_at
		FROM templates WHERE id = ?
	`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// SaveTemplate creates or replaces a template
func (s *Store) SaveTemplate(ctx context.Context, t *models.Template) error {
	defaultTiers, err := json.Marshal(t.DefaultTiers)
	if err != nil {
		return fmt.Errorf("encode default tiers: %w", err)
	}
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO templates (id, name, description, icon_url, default_tiers, items)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Description, t.IconURL, defaultTiers, items)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*models.Template, error) {
	var t models.Template
	var description, iconURL sql.NullString
	var defaultTiers, items string
	if err := row.Scan(&t.ID, &t.Name, &description, &iconURL, &defaultTiers, &items, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.IconURL = iconURL.String
	if err := json.Unmarshal([]byte(defaultTiers), &t.DefaultTiers); err != nil {
		return nil, fmt.Errorf("decode default tiers of %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(items), &t.Items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", t.ID, err)
	}
	return &t, nil
}

// --- Boards ---

// generateShareCode creates a short unique share code
func generateShareCode() string {
	u := uuid.New()
	return u.String()[:8]
}

// CreateBoard creates a new board whose initial state comes from the template.
// New boards start in edit mode so the user can set up tiers first.
func (s *Store) CreateBoard(ctx context.Context, name string, tmpl models.Template) (*models.Board, error) {
	now := time.Now()
	b := &models.Board{
		ID:         uuid.New().String(),
		Name:       name,
		TemplateID: tmpl.ID,
		ShareCode:  generateShareCode(),
		EditMode:   true,
		DarkMode:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	st := board.FromTemplate(tmpl)
	b.Tiers, b.Unranked = st.Tiers, st.Unranked

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards (id, name, template_id, share_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.TemplateID, b.ShareCode, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert board: %w", err)
	}

	if err := putState(ctx, tx, b.ID, st); err != nil {
		return nil, err
	}
	if err := putMode(ctx, tx, b.ID, b.EditMode, b.DarkMode); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBoard returns a board with its state, or nil when there is none
func (s *Store) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	return s.getBoard(ctx, "id", id)
}

// GetBoardByShareCode returns a board by share code, or nil when there is none
func (s *Store) GetBoardByShareCode(ctx context.Context, code string) (*models.Board, error) {
	return s.getBoard(ctx, "share_code", code)
}

func (s *Store) getBoard(ctx context.Context, column, value string) (*models.Board, error) {
	var b models.Board
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, template_id, share_code, created_at, updated_at
		FROM boards WHERE `+column+` = ?
	`, value).Scan(&b.ID, &b.Name, &b.TemplateID, &b.ShareCode, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st, err := s.LoadState(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Tiers, b.Unranked = st.Tiers, st.Unranked

	b.EditMode, b.DarkMode, err = s.loadMode(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBoards returns summaries of all boards, most recently updated first
func (s *Store) ListBoards(ctx context.Context) ([]models.BoardSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, template_id, share_code, updated_at
		FROM boards ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.BoardSummary{}
	for rows.Next() {
		var b models.BoardSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.TemplateID, &b.ShareCode, &b.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, b)
	}
	return summaries, rows.Err()
}

// DeleteBoard deletes a board and its state
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete board %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- State ---

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveState writes the tiers and unranked items of a board
func (s *Store) SaveState(ctx context.Context, boardID string, st board.State) error {
	return s.inBoardTx(ctx, boardID, func(tx *sql.Tx) error {
		return putState(ctx, tx, boardID, st)
	})
}

// SaveMode writes the edit-mode and dark-mode flags of a board
func (s *Store) SaveMode(ctx context.Context, boardID string, editMode, darkMode bool) error {
	return s.inBoardTx(ctx, boardID, func(tx *sql.Tx) error {
		return putMode(ctx, tx, boardID, editMode, darkMode)
	})
}

// SaveBoard writes state and mode flags together
func (s *Store) SaveBoard(ctx context.Context, boardID string, st board.State, editMode, darkMode bool) error {
	return s.inBoardTx(ctx, boardID, func(tx *sql.Tx) error {
		if err := putState(ctx, tx, boardID, st); err != nil {
			return err
		}
		return putMode(ctx, tx, boardID, editMode, darkMode)
	})
}

func (s *Store) inBoardTx(ctx context.Context, boardID string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE boards SET updated_at = ? WHERE id = ?`, time.Now(), boardID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("board %s: %w", boardID, ErrNotFound)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func putState(ctx context.Context, db execer, boardID string, st board.State) error {
	tiers, err := json.Marshal(st.Tiers)
	if err != nil {
		return fmt.Errorf("encode tiers: %w", err)
	}
	unranked, err := json.Marshal(st.Unranked)
	if err != nil {
		return fmt.Errorf("encode unranked items: %w", err)
	}
	if err := putValue(ctx, db, boardID, KeyTiers, string(tiers)); err != nil {
		return err
	}
	return putValue(ctx, db, boardID, KeyUnrankedItems, string(unranked))
}

func putMode(ctx context.Context, db execer, boardID string, editMode, darkMode bool) error {
	if err := putValue(ctx, db, boardID, KeyEditMode, strconv.FormatBool(editMode)); err != nil {
		return err
	}
	return putValue(ctx, db, boardID, KeyDarkMode, strconv.FormatBool(darkMode))
}

func putValue(ctx context.Context, db execer, boardID, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO board_state (board_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(board_id, key) DO UPDATE SET value = excluded.value
	`, boardID, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) getValue(ctx context.Context, boardID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM board_state WHERE board_id = ? AND key = ?
	`, boardID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// LoadState reads the tiers and unranked items of a board. Each collection
// that is missing or cannot be decoded falls back to the default dataset, and
// state whose items are not owned exactly once is replaced by the defaults
// entirely. Tier text colors are recomputed from tier colors.
func (s *Store) LoadState(ctx context.Context, boardID string) (board.State, error) {
	defaults := board.Default()
	st := defaults

	raw, ok, err := s.getValue(ctx, boardID, KeyTiers)
	if err != nil {
		return board.State{}, err
	}
	if ok {
		var tiers []models.Tier
		if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
			log.Warn().Err(err).Str("board_id", boardID).Msg("Stored tiers unreadable, using defaults")
		} else {
			st.Tiers = tiers
		}
	}

	raw, ok, err = s.getValue(ctx, boardID, KeyUnrankedItems)
	if err != nil {
		return board.State{}, err
	}
	if ok {
		var unranked []models.Item
		if err := json.Unmarshal([]byte(raw), &unranked); err != nil {
			log.Warn().Err(err).Str("board_id", boardID).Msg("Stored unranked items unreadable, using defaults")
		} else {
			st.Unranked = unranked
		}
	}

	if err := st.CheckOwnership(); err != nil {
		log.Warn().Err(err).Str("board_id", boardID).Msg("Stored board state inconsistent, using defaults")
		return defaults, nil
	}

	for i := range st.Tiers {
		st.Tiers[i].TextColor = models.Contrast(st.Tiers[i].Color)
		if st.Tiers[i].Items == nil {
			st.Tiers[i].Items = []models.Item{}
		}
	}
	if st.Unranked == nil {
		st.Unranked = []models.Item{}
	}
	return st, nil
}

func (s *Store) loadMode(ctx context.Context, boardID string) (editMode, darkMode bool, err error) {
	editMode, err = s.loadFlag(ctx, boardID, KeyEditMode, false)
	if err != nil {
		return false, false, err
	}
	darkMode, err = s.loadFlag(ctx, boardID, KeyDarkMode, true)
	return editMode, darkMode, err
}

func (s *Store) loadFlag(ctx context.Context, boardID, key string, fallback bool) (bool, error) {
	raw, ok, err := s.getValue(ctx, boardID, key)
	if err != nil || !ok {
		return fallback, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Err(err).Str("board_id", boardID).Str("key", key).Msg("Stored flag unreadable, using default")
		return fallback, nil
	}
	return v, nil
}
