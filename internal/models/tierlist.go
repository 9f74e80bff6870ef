package models

import (
	"time"
)

// CollectionID addresses one ordered item sequence: a tier id or Unranked
type CollectionID string

// Unranked is the collection id of the pool of items not placed in any tier
const Unranked CollectionID = "unranked"

// IsUnranked reports whether the id names the unranked pool
func (c CollectionID) IsUnranked() bool {
	return c == Unranked
}

// Board represents a user's tier list
type Board struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TemplateID string    `json:"template_id"`
	ShareCode  string    `json:"share_code"`
	Tiers      []Tier    `json:"tiers"`
	Unranked   []Item    `json:"unranked_items"`
	EditMode   bool      `json:"edit_mode"`
	DarkMode   bool      `json:"dark_mode"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tier represents a single tier in a tier list
type Tier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"` // Always Contrast(Color)
	Items     []Item `json:"items"`
}

// NewTier builds a tier with its text color derived from color
func NewTier(id, name, color string) Tier {
	return Tier{
		ID:        id,
		Name:      name,
		Color:     color,
		TextColor: Contrast(color),
		Items:     []Item{},
	}
}

// BoardCreate is the request body for creating a board
type BoardCreate struct {
	Name       string `json:"name"`
	TemplateID string `json:"template_id"`
}

// TierCreate is the request body for adding a tier
type TierCreate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TierMove is the request body for reordering a tier
type TierMove struct {
	Index int `json:"index"`
}

// TierPatch is the request body for editing tier metadata.
// Text color is never accepted from clients.
type TierPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// ModeUpdate is the request body for switching between edit and rank mode
type ModeUpdate struct {
	EditMode bool  `json:"edit_mode"`
	DarkMode *bool `json:"dark_mode,omitempty"`
}

// ItemErrorUpdate is the request body for reporting an image load result
type ItemErrorUpdate struct {
	HasError bool `json:"has_error"`
}

// BoardSummary is a lightweight version for listings
type BoardSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TemplateID string    `json:"template_id"`
	ShareCode  string    `json:"share_code"`
	UpdatedAt  time.Time `json:"updated_at"`
}
