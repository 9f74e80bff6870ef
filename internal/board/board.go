// Package board holds the canonical tiers and unranked pool of a tier list and
// the ordered-sequence operations used to edit them.
//
// A State is a value. Every operation returns a new State and never writes
// through slices that a previous State exposed, so callers can keep an old
// State around (or hand it to a renderer) while newer ones are produced.
// Collections an operation does not touch keep their backing arrays.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meur/tierzen/internal/models"
)

var (
	ErrTierNotFound = errors.New("tier not found")
	ErrItemNotFound = errors.New("item not found")
)

const defaultTierColor = "#cccccc"

// State is the set of ordered collections of one board
type State struct {
	Tiers    []models.Tier `json:"tiers"`
	Unranked []models.Item `json:"unranked_items"`
}

// FromTemplate builds the initial state of a board created from tmpl
func FromTemplate(tmpl models.Template) State {
	return State{
		Tiers:    tmpl.Tiers(),
		Unranked: tmpl.UnrankedItems(),
	}
}

// Default returns the built-in default dataset
func Default() State {
	return FromTemplate(models.DefaultTemplate())
}

// NewID generates an id for a tier or item
func NewID() string {
	return "id_" + uuid.New().String()
}

// --- Sequence primitives ---

// RemoveByID returns seq without the first item whose id matches, along with
// the removed item. When no item matches, seq itself is returned.
func RemoveByID(seq []models.Item, id string) ([]models.Item, models.Item, bool) {
	for i, it := range seq {
		if it.ID != id {
			continue
		}
		out := make([]models.Item, 0, len(seq)-1)
		out = append(out, seq[:i]...)
		out = append(out, seq[i+1:]...)
		return out, it, true
	}
	return seq, models.Item{}, false
}

// InsertAt returns a new sequence with item inserted before position index.
// Index is clamped into [0, len(seq)].
func InsertAt(seq []models.Item, index int, item models.Item) []models.Item {
	index = Clamp(index, len(seq))
	out := make([]models.Item, 0, len(seq)+1)
	out = append(out, seq[:index]...)
	out = append(out, item)
	out = append(out, seq[index:]...)
	return out
}

// Clamp bounds an insertion index to [0, n]
func Clamp(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// --- Collection addressing ---

// TierIndex returns the position of the tier with the given id, or -1
func (s State) TierIndex(id string) int {
	for i, t := range s.Tiers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether the collection exists
func (s State) Has(c models.CollectionID) bool {
	return c.IsUnranked() || s.TierIndex(string(c)) >= 0
}

// Sequence returns the item sequence of a collection
func (s State) Sequence(c models.CollectionID) ([]models.Item, bool) {
	if c.IsUnranked() {
		return s.Unranked, true
	}
	i := s.TierIndex(string(c))
	if i < 0 {
		return nil, false
	}
	return s.Tiers[i].Items, true
}

// WithSequence returns a state where collection c holds seq. The tiers slice
// is copied when a tier changes; the state is returned as-is for an unknown c.
func (s State) WithSequence(c models.CollectionID, seq []models.Item) State {
	if c.IsUnranked() {
		s.Unranked = seq
		return s
	}
	i := s.TierIndex(string(c))
	if i < 0 {
		return s
	}
	s.Tiers = cloneTiers(s.Tiers)
	s.Tiers[i].Items = seq
	return s
}

// Locate finds the collection and index currently holding the item
func (s State) Locate(id string) (models.CollectionID, int, models.Item, bool) {
	for _, t := range s.Tiers {
		for j, it := range t.Items {
			if it.ID == id {
				return models.CollectionID(t.ID), j, it, true
			}
		}
	}
	for j, it := range s.Unranked {
		if it.ID == id {
			return models.Unranked, j, it, true
		}
	}
	return "", -1, models.Item{}, false
}

// Count returns the number of items across all collections
func (s State) Count() int {
	n := len(s.Unranked)
	for _, t := range s.Tiers {
		n += len(t.Items)
	}
	return n
}

// CheckOwnership verifies that every item id appears exactly once across all
// collections and that tier ids are unique and never collide with the
// unranked sentinel.
func (s State) CheckOwnership() error {
	seen := make(map[string]models.CollectionID, s.Count())
	tierIDs := make(map[string]bool, len(s.Tiers))

	visit := func(c models.CollectionID, items []models.Item) error {
		for _, it := range items {
			if it.ID == "" {
				return fmt.Errorf("item with empty id in %s", c)
			}
			if prev, dup := seen[it.ID]; dup {
				return fmt.Errorf("item %s owned by both %s and %s", it.ID, prev, c)
			}
			seen[it.ID] = c
		}
		return nil
	}

	for _, t := range s.Tiers {
		if t.ID == "" || models.CollectionID(t.ID).IsUnranked() {
			return fmt.Errorf("invalid tier id %q", t.ID)
		}
		if tierIDs[t.ID] {
			return fmt.Errorf("duplicate tier id %s", t.ID)
		}
		tierIDs[t.ID] = true
		if err := visit(models.CollectionID(t.ID), t.Items); err != nil {
			return err
		}
	}
	return visit(models.Unranked, s.Unranked)
}

// --- Tier operations ---

// AddTier appends a new tier. An empty name becomes "New Tier N" and an empty
// color becomes light grey.
func (s State) AddTier(name, color string) (State, models.Tier) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("New Tier %d", len(s.Tiers)+1)
	}
	if color == "" {
		color = defaultTierColor
	}

	tier := models.NewTier(NewID(), name, color)
	tiers := make([]models.Tier, 0, len(s.Tiers)+1)
	tiers = append(tiers, s.Tiers...)
	s.Tiers = append(tiers, tier)
	return s, tier
}

// UpdateTier applies a metadata patch. A blank name leaves the name unchanged.
// The text color is always recomputed from the resulting color.
func (s State) UpdateTier(id string, patch models.TierPatch) (State, error) {
	i := s.TierIndex(id)
	if i < 0 {
		return s, fmt.Errorf("update tier %s: %w", id, ErrTierNotFound)
	}

	s.Tiers = cloneTiers(s.Tiers)
	t := &s.Tiers[i]
	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			t.Name = name
		}
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	t.TextColor = models.Contrast(t.Color)
	return s, nil
}

// DeleteTier removes a tier and appends its items to the unranked pool with
// their error flags reset.
func (s State) DeleteTier(id string) (State, error) {
	i := s.TierIndex(id)
	if i < 0 {
		return s, fmt.Errorf("delete tier %s: %w", id, ErrTierNotFound)
	}

	removed := s.Tiers[i]
	tiers := make([]models.Tier, 0, len(s.Tiers)-1)
	tiers = append(tiers, s.Tiers[:i]...)
	s.Tiers = append(tiers, s.Tiers[i+1:]...)

	if len(removed.Items) > 0 {
		unranked := make([]models.Item, 0, len(s.Unranked)+len(removed.Items))
		unranked = append(unranked, s.Unranked...)
		for _, it := range removed.Items {
			unranked = append(unranked, it.WithError(false))
		}
		s.Unranked = unranked
	}
	return s, nil
}

// MoveTier moves a tier to a new position, clamped to the tier list bounds
func (s State) MoveTier(id string, index int) (State, error) {
	i := s.TierIndex(id)
	if i < 0 {
		return s, fmt.Errorf("move tier %s: %w", id, ErrTierNotFound)
	}

	tier := s.Tiers[i]
	rest := make([]models.Tier, 0, len(s.Tiers))
	rest = append(rest, s.Tiers[:i]...)
	rest = append(rest, s.Tiers[i+1:]...)

	index = Clamp(index, len(rest))
	tiers := make([]models.Tier, 0, len(s.Tiers))
	tiers = append(tiers, rest[:index]...)
	tiers = append(tiers, tier)
	s.Tiers = append(tiers, rest[index:]...)
	return s, nil
}

// --- Item operations ---

// AddItem appends a new item to the unranked pool
func (s State) AddItem(in models.ItemInput) (State, models.Item) {
	item := models.Item{
		ID:       NewID(),
		Name:     strings.TrimSpace(in.Name),
		ImageURL: strings.TrimSpace(in.ImageURL),
	}
	s.Unranked = InsertAt(s.Unranked, len(s.Unranked), item)
	return s, item
}

// UpdateItem replaces an item's name and image in place, wherever it lives,
// and gives the new image a fresh chance to load.
func (s State) UpdateItem(id string, in models.ItemInput) (State, models.Item, error) {
	var updated models.Item
	next, err := s.mapItem(id, func(it models.Item) models.Item {
		it.Name = strings.TrimSpace(in.Name)
		it.ImageURL = strings.TrimSpace(in.ImageURL)
		it.HasError = false
		updated = it
		return it
	})
	if err != nil {
		return s, models.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	return next, updated, nil
}

// DeleteItem removes an item from whichever collection holds it
func (s State) DeleteItem(id string) (State, error) {
	c, _, _, ok := s.Locate(id)
	if !ok {
		return s, fmt.Errorf("delete item %s: %w", id, ErrItemNotFound)
	}
	seq, _ := s.Sequence(c)
	seq, _, _ = RemoveByID(seq, id)
	return s.WithSequence(c, seq), nil
}

// SetItemError records whether the item's image failed to load
func (s State) SetItemError(id string, hasError bool) (State, error) {
	next, err := s.mapItem(id, func(it models.Item) models.Item {
		return it.WithError(hasError)
	})
	if err != nil {
		return s, fmt.Errorf("set item error %s: %w", id, err)
	}
	return next, nil
}

func (s State) mapItem(id string, fn func(models.Item) models.Item) (State, error) {
	c, j, it, ok := s.Locate(id)
	if !ok {
		return s, ErrItemNotFound
	}
	seq, _ := s.Sequence(c)
	out := make([]models.Item, len(seq))
	copy(out, seq)
	out[j] = fn(it)
	return s.WithSequence(c, out), nil
}

func cloneTiers(tiers []models.Tier) []models.Tier {
	out := make([]models.Tier, len(tiers))
	copy(out, tiers)
	return out
}
