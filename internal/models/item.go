package models

import (
	"errors"
	"strings"
)

// ErrNameRequired is returned for an item without a name
var ErrNameRequired = errors.New("item name is required")

// Item represents a rankable entry on a board
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	HasError bool   `json:"has_error,omitempty"` // Image failed to load; cleared when the item moves
}

// ItemInput is the request body for creating or editing an item
type ItemInput struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Validate checks that the input names the item
func (in ItemInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// WithError returns a copy of the item with the error flag set to v
func (i Item) WithError(v bool) Item {
	i.HasError = v
	return i
}
