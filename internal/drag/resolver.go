package drag

import (
	"github.com/meur/tierzen/internal/models"
)

// Point is a pointer position in viewport coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box in viewport coordinates
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// CenterX is the horizontal center of r
func (r Rect) CenterX() float64 {
	return r.X + r.Width/2
}

// ItemBox is the rendered box of one item inside a region
type ItemBox struct {
	ItemID string `json:"item_id"`
	Rect   Rect   `json:"rect"`
}

// Region is a droppable area: a tier row or the unranked pool, with the
// current layout of its items in sequence order.
type Region struct {
	Collection models.CollectionID `json:"collection"`
	Bounds     Rect                `json:"bounds"`
	Items      []ItemBox           `json:"items"`
}

// Resolve determines where an item being dragged would land for a pointer at p.
//
// The first region containing p wins. Inside it, the item lands before the
// first box whose horizontal center is at or right of p.X, or at the end when
// there is none. The dragged item's own box is skipped, so indices count only
// the other items of the region. Resolve keeps no state.
func Resolve(p Point, regions []Region, draggedID string) *Preview {
	for _, region := range regions {
		if !region.Bounds.Contains(p) {
			continue
		}

		index := 0
		for _, box := range region.Items {
			if box.ItemID == draggedID {
				continue
			}
			if p.X <= box.Rect.CenterX() {
				return &Preview{Target: region.Collection, Index: index}
			}
			index++
		}
		return &Preview{Target: region.Collection, Index: index}
	}
	return nil
}
