package tui

import (
	"github.com/meur/tierzen/internal/drag"
	"github.com/meur/tierzen/internal/models"
)

// Screen geometry in terminal cells. Every tier row, and the unranked row
// below them, is one tile high; a one-cell gap precedes each tile and is
// where the insertion marker is drawn.
const (
	headerHeight = 2
	labelWidth   = 12
	tileWidth    = 14
	tileHeight   = 3
	moreWidth    = 5
	defaultWidth = 80
)

// visibleTiles is how many tiles fit in one row of the given width
func visibleTiles(width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	n := (width - labelWidth - moreWidth) / tileWidth
	if n < 0 {
		return 0
	}
	return n
}

// Layout computes the droppable regions of b as drawn by View for a terminal
// of the given width. Items that do not fit get zero-width boxes centered on
// the trailing gap, so the gap inserts before them and the "+N" area after
// them.
func Layout(b models.Board, width int) []drag.Region {
	if width <= 0 {
		width = defaultWidth
	}
	n := visibleTiles(width)

	regions := make([]drag.Region, 0, len(b.Tiers)+1)
	y := headerHeight
	row := func(c models.CollectionID, items []models.Item) {
		r := drag.Region{
			Collection: c,
			Bounds: drag.Rect{
				X:      0,
				Y:      float64(y),
				Width:  float64(width - 1),
				Height: tileHeight - 1,
			},
			Items: make([]drag.ItemBox, 0, len(items)),
		}
		for j, it := range items {
			rect := tileRect(j, y)
			if j >= n {
				rect = drag.Rect{X: float64(labelWidth + n*tileWidth), Y: float64(y), Height: tileHeight - 1}
			}
			r.Items = append(r.Items, drag.ItemBox{ItemID: it.ID, Rect: rect})
		}
		regions = append(regions, r)
		y += tileHeight
	}

	for _, t := range b.Tiers {
		row(models.CollectionID(t.ID), t.Items)
	}
	row(models.Unranked, b.Unranked)

	return regions
}

func tileRect(j, y int) drag.Rect {
	return drag.Rect{
		X:      float64(labelWidth + j*tileWidth + 1),
		Y:      float64(y),
		Width:  tileWidth - 2,
		Height: tileHeight - 1,
	}
}

// ItemAt returns the item whose tile contains p
func ItemAt(regions []drag.Region, p drag.Point) (string, bool) {
	for _, r := range regions {
		if !r.Bounds.Contains(p) {
			continue
		}
		for _, box := range r.Items {
			if box.Rect.Width > 0 && box.Rect.Contains(p) {
				return box.ItemID, true
			}
		}
	}
	return "", false
}

// markerGap maps a preview index, which counts items other than the dragged
// one, to the gap it is drawn in. Gap j precedes tile j; gap len(visible)
// trails the row.
func markerGap(visible []models.Item, draggedID string, index int) int {
	k := 0
	for j, it := range visible {
		if it.ID == draggedID {
			continue
		}
		if k == index {
			return j
		}
		k++
	}
	return len(visible)
}

func countOthers(items []models.Item, draggedID string) int {
	n := 0
	for _, it := range items {
		if it.ID != draggedID {
			n++
		}
	}
	return n
}
