// Package drag implements the drag-and-drop reordering engine: a tracker for
// the single in-flight drag, a resolver that turns pointer geometry into an
// insertion point, and the commit step that moves an item between ordered
// collections on release.
//
// Nothing in this package knows how items are drawn. Renderers hand in a
// geometry snapshot (regions and item boxes) and read back a State to place
// their placeholder.
package drag

import (
	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/models"
)

// Session describes the item being dragged and where it came from
type Session struct {
	Item        models.Item         `json:"item"`
	Origin      models.CollectionID `json:"origin"`
	OriginIndex int                 `json:"origin_index"`
}

// Preview is the insertion point a drop would use right now
type Preview struct {
	Target models.CollectionID `json:"target"`
	Index  int                 `json:"index"`
}

// State is the read-only view renderers use to draw the placeholder.
// Preview is nil whenever Session is nil.
type State struct {
	Session *Session `json:"session"`
	Preview *Preview `json:"preview"`
}

// Dragging reports whether a drag is in progress
func (s State) Dragging() bool {
	return s.Session != nil
}

// Tracker owns the transient state of at most one drag. It is not safe for
// concurrent use; the owner serializes calls.
type Tracker struct {
	locked  func() bool
	session *Session
	preview *Preview
}

// NewTracker creates an idle tracker. While locked reports true, no drag can
// start; a nil locked never locks.
func NewTracker(locked func() bool) *Tracker {
	if locked == nil {
		locked = func() bool { return false }
	}
	return &Tracker{locked: locked}
}

// BeginDrag opens a session. It is rejected while another session is open or
// while the tracker is locked.
func (t *Tracker) BeginDrag(item models.Item, origin models.CollectionID, originIndex int) bool {
	if t.session != nil {
		log.Debug().
			Str("item_id", item.ID).
			Str("active_item_id", t.session.Item.ID).
			Msg("Drag already in progress, ignoring begin")
		return false
	}
	if t.locked() {
		log.Debug().Str("item_id", item.ID).Msg("Dragging disabled in edit mode, ignoring begin")
		return false
	}

	t.session = &Session{Item: item, Origin: origin, OriginIndex: originIndex}
	t.preview = nil
	return true
}

// UpdateTarget replaces the current preview. Calls made while idle are ignored.
func (t *Tracker) UpdateTarget(p *Preview) {
	if t.session == nil {
		return
	}
	if p == nil {
		t.preview = nil
		return
	}
	cp := *p
	t.preview = &cp
}

// EndDrag returns the session and its last preview, then clears both. It
// reports false when no drag was in progress.
func (t *Tracker) EndDrag() (State, bool) {
	if t.session == nil {
		return State{}, false
	}
	st := State{Session: t.session, Preview: t.preview}
	t.session = nil
	t.preview = nil
	return st, true
}

// State returns a copy of the current session and preview
func (t *Tracker) State() State {
	var st State
	if t.session != nil {
		s := *t.session
		st.Session = &s
	}
	if t.preview != nil {
		p := *t.preview
		st.Preview = &p
	}
	return st
}
