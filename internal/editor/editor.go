// Package editor owns the live state of boards being edited. An Editor is the
// single controller of one board: it holds the canonical collections, the drag
// tracker and the edit-mode flag, applies every change atomically and hands
// the result to the persistence layer.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/board"
	"github.com/meur/tierzen/internal/drag"
	"github.com/meur/tierzen/internal/models"
)

// ErrNotFound is returned when a board does not exist
var ErrNotFound = errors.New("board not found")

// Persister stores board state after each change
type Persister interface {
	SaveState(ctx context.Context, boardID string, st board.State) error
	SaveMode(ctx context.Context, boardID string, editMode, darkMode bool) error
	// SaveBoard writes state and mode flags in one transaction
	SaveBoard(ctx context.Context, boardID string, st board.State, editMode, darkMode bool) error
}

// Options tune drag behaviour
type Options struct {
	// Deadband keeps the current preview while the pointer stays within this
	// many units of the point it was computed at and over the same region.
	// Zero recomputes on every move.
	Deadband float64
}

// Snapshot is what renderers read: the board and the drag in progress
type Snapshot struct {
	Board models.Board `json:"board"`
	Drag  drag.State   `json:"drag"`
}

// Editor serializes all operations on one board
type Editor struct {
	mu       sync.Mutex
	meta     models.Board
	state    board.State
	tracker  *drag.Tracker
	anchor   *drag.Point
	store    Persister
	deadband float64
}

// New creates an editor for b. The board's tiers and unranked items become the
// editor's state.
func New(b models.Board, store Persister, opts Options) *Editor {
	e := &Editor{
		meta:     b,
		state:    board.State{Tiers: b.Tiers, Unranked: b.Unranked},
		store:    store,
		deadband: opts.Deadband,
	}
	e.meta.Tiers, e.meta.Unranked = nil, nil
	e.tracker = drag.NewTracker(func() bool { return e.meta.EditMode })
	return e
}

// ID returns the board id
func (e *Editor) ID() string {
	return e.meta.ID
}

// Snapshot returns the current board and drag state
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	b := e.meta
	b.Tiers, b.Unranked = e.state.Tiers, e.state.Unranked
	return Snapshot{Board: b, Drag: e.tracker.State()}
}

// State returns the current collections
func (e *Editor) State() board.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// --- Drag ---

// BeginDrag starts dragging the item with the given id from wherever it
// currently is. It reports false when the drag was rejected: unknown item,
// edit mode, or another drag in progress.
func (e *Editor) BeginDrag(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	origin, index, item, ok := e.state.Locate(itemID)
	if !ok {
		log.Debug().Str("board_id", e.meta.ID).Str("item_id", itemID).Msg("Drag of unknown item ignored")
		return false
	}
	if !e.tracker.BeginDrag(item, origin, index) {
		return false
	}
	e.anchor = nil
	return true
}

// Move feeds a pointer position and the current geometry to the resolver and
// records the result as the drop preview.
func (e *Editor) Move(p drag.Point, regions []drag.Region) drag.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.tracker.State()
	if !current.Dragging() {
		return current
	}

	next := e.bound(drag.Resolve(p, regions, current.Session.Item.ID), current.Session.Item.ID)
	if e.withinDeadband(p, current.Preview, next) {
		return current
	}

	e.tracker.UpdateTarget(next)
	anchor := p
	e.anchor = &anchor
	return e.tracker.State()
}

// bound checks a resolved preview against the board. Geometry comes from the
// client, so a region may name a collection that does not exist (no preview)
// or list more boxes than items (index clamped to the sequence length, not
// counting the dragged item when it lives there).
func (e *Editor) bound(p *drag.Preview, itemID string) *drag.Preview {
	if p == nil {
		return nil
	}
	seq, ok := e.state.Sequence(p.Target)
	if !ok {
		log.Debug().
			Str("board_id", e.meta.ID).
			Str("collection", string(p.Target)).
			Msg("Preview over unknown collection ignored")
		return nil
	}

	n := len(seq)
	if c, _, _, found := e.state.Locate(itemID); found && c == p.Target {
		n--
	}
	return &drag.Preview{Target: p.Target, Index: board.Clamp(p.Index, n)}
}

func (e *Editor) withinDeadband(p drag.Point, prev, next *drag.Preview) bool {
	if e.deadband <= 0 || e.anchor == nil || prev == nil || next == nil {
		return false
	}
	if prev.Target != next.Target {
		return false
	}
	return math.Abs(p.X-e.anchor.X) < e.deadband && math.Abs(p.Y-e.anchor.Y) < e.deadband
}

// Drop ends the drag and commits it. The new state is persisted when the
// item moved.
func (e *Editor) Drop(ctx context.Context) (drag.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ended, ok := e.tracker.EndDrag()
	e.anchor = nil
	if !ok {
		return drag.Cancelled, nil
	}

	next, outcome := drag.Commit(e.state, *ended.Session, ended.Preview)
	log.Debug().
		Str("board_id", e.meta.ID).
		Str("item_id", ended.Session.Item.ID).
		Stringer("outcome", outcome).
		Msg("Drop committed")
	if outcome != drag.Moved {
		return outcome, nil
	}

	if err := e.persistLocked(ctx, next); err != nil {
		return outcome, err
	}
	e.state = next
	return outcome, nil
}

// Cancel abandons the drag in progress, if any
func (e *Editor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.tracker.EndDrag()
	e.anchor = nil
	return ok
}

// --- Mode ---

// SetMode switches between edit and rank mode and optionally the theme.
// Entering edit mode abandons a drag in progress.
func (e *Editor) SetMode(ctx context.Context, editMode bool, darkMode *bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if editMode {
		if _, ok := e.tracker.EndDrag(); ok {
			log.Debug().Str("board_id", e.meta.ID).Msg("Edit mode entered, drag abandoned")
		}
		e.anchor = nil
	}
	dark := e.meta.DarkMode
	if darkMode != nil {
		dark = *darkMode
	}

	if err := e.store.SaveMode(ctx, e.meta.ID, editMode, dark); err != nil {
		return fmt.Errorf("save mode: %w", err)
	}
	e.meta.EditMode, e.meta.DarkMode = editMode, dark
	return nil
}

// --- Tiers and items ---

// AddTier appends a tier
func (e *Editor) AddTier(ctx context.Context, name, color string) (models.Tier, error) {
	var tier models.Tier
	err := e.apply(ctx, func(s board.State) (board.State, error) {
		next, t := s.AddTier(name, color)
		tier = t
		return next, nil
	})
	return tier, err
}

// UpdateTier edits tier metadata
func (e *Editor) UpdateTier(ctx context.Context, id string, patch models.TierPatch) error {
	return e.apply(ctx, func(s board.State) (board.State, error) {
		return s.UpdateTier(id, patch)
	})
}

// DeleteTier removes a tier, moving its items to the unranked pool
func (e *Editor) DeleteTier(ctx context.Context, id string) error {
	return e.apply(ctx, func(s board.State) (board.State, error) {
		return s.DeleteTier(id)
	})
}

// MoveTier reorders a tier
func (e *Editor) MoveTier(ctx context.Context, id string, index int) error {
	return e.apply(ctx, func(s board.State) (board.State, error) {
		return s.MoveTier(id, index)
	})
}

// AddItem adds an item to the unranked pool
func (e *Editor) AddItem(ctx context.Context, in models.ItemInput) (models.Item, error) {
	if err := in.Validate(); err != nil {
		return models.Item{}, err
	}
	var item models.Item
	err := e.apply(ctx, func(s board.State) (board.State, error) {
		next, it := s.AddItem(in)
		item = it
		return next, nil
	})
	return item, err
}

// UpdateItem edits an item wherever it lives
func (e *Editor) UpdateItem(ctx context.Context, id string, in models.ItemInput) (models.Item, error) {
	if err := in.Validate(); err != nil {
		return models.Item{}, err
	}
	var item models.Item
	err := e.apply(ctx, func(s board.State) (board.State, error) {
		next, it, err := s.UpdateItem(id, in)
		item = it
		return next, err
	})
	return item, err
}

// DeleteItem removes an item
func (e *Editor) DeleteItem(ctx context.Context, id string) error {
	return e.apply(ctx, func(s board.State) (board.State, error) {
		return s.DeleteItem(id)
	})
}

// SetItemError records an image load failure (or recovery) for an item
func (e *Editor) SetItemError(ctx context.Context, id string, hasError bool) error {
	return e.apply(ctx, func(s board.State) (board.State, error) {
		return s.SetItemError(id, hasError)
	})
}

// Reset restores the template's tiers and items and switches to edit mode
func (e *Editor) Reset(ctx context.Context, tmpl models.Template) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := board.FromTemplate(tmpl)
	if err := e.store.SaveBoard(ctx, e.meta.ID, next, true, e.meta.DarkMode); err != nil {
		log.Error().Err(err).Str("board_id", e.meta.ID).Msg("Failed to persist board reset")
		return fmt.Errorf("save board: %w", err)
	}

	e.tracker.EndDrag()
	e.anchor = nil
	e.state = next
	e.meta.EditMode = true
	return nil
}

func (e *Editor) apply(ctx context.Context, fn func(board.State) (board.State, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.state)
	if err != nil {
		return err
	}
	if err := e.persistLocked(ctx, next); err != nil {
		return err
	}
	e.state = next
	return nil
}

// persistLocked saves st; callers adopt st only when this succeeds
func (e *Editor) persistLocked(ctx context.Context, st board.State) error {
	if err := e.store.SaveState(ctx, e.meta.ID, st); err != nil {
		log.Error().Err(err).Str("board_id", e.meta.ID).Msg("Failed to persist board state")
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
