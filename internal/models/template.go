package models

import (
	"sort"
	"time"
)

// DefaultTemplateID names the built-in template used when a board is created
// without one and when persisted state cannot be read.
const DefaultTemplateID = "tierzen"

// Template is a preset a board is created from
type Template struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	IconURL      string       `json:"icon_url"`
	DefaultTiers []TierConfig `json:"default_tiers"`
	Items        []Item       `json:"items"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TierConfig defines default tier setup
type TierConfig struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// DefaultTiers returns the starter S-B tier configuration
func DefaultTiers() []TierConfig {
	return []TierConfig{
		{ID: "tier-s-initial", Name: "S Tier", Color: "#ff7f7f", Order: 0},
		{ID: "tier-a-initial", Name: "A Tier", Color: "#ffbf7f", Order: 1},
		{ID: "tier-b-initial", Name: "B Tier", Color: "#ffff7f", Order: 2},
	}
}

// DefaultItems returns the starter unranked items
func DefaultItems() []Item {
	return []Item{
		{ID: "item-alpha-initial", Name: "Item Alpha", ImageURL: "https://placehold.co/200x200/7F7F7F/FFFFFF?text=Alpha"},
		{ID: "item-beta-initial", Name: "Item Beta", ImageURL: "https://placehold.co/200x200/6A6A6A/FFFFFF?text=Beta"},
	}
}

// DefaultTemplate returns the built-in template holding the default dataset
func DefaultTemplate() Template {
	return Template{
		ID:           DefaultTemplateID,
		Name:         "TierZen",
		Description:  "Three starter tiers and two sample items",
		DefaultTiers: DefaultTiers(),
		Items:        DefaultItems(),
	}
}

// Tiers builds fresh tiers from the template's tier configuration, in order
func (t Template) Tiers() []Tier {
	configs := make([]TierConfig, len(t.DefaultTiers))
	copy(configs, t.DefaultTiers)
	sort.SliceStable(configs, func(i, j int) bool {
		return configs[i].Order < configs[j].Order
	})

	tiers := make([]Tier, 0, len(configs))
	for _, c := range configs {
		tiers = append(tiers, NewTier(c.ID, c.Name, c.Color))
	}
	return tiers
}

// UnrankedItems returns a copy of the template items with error flags cleared
func (t Template) UnrankedItems() []Item {
	items := make([]Item, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, it.WithError(false))
	}
	return items
}
