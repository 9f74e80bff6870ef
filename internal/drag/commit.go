package drag

import (
	"github.com/rs/zerolog/log"

	"github.com/meur/tierzen/internal/board"
)

// Outcome tells what a commit did
type Outcome int

const (
	// Cancelled means the drop happened outside every region
	Cancelled Outcome = iota
	// Moved means the item changed position
	Moved
	// Unchanged means the item was dropped back into its own slot
	Unchanged
	// Stale means the item or the target collection disappeared mid-drag
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Cancelled:
		return "cancelled"
	case Moved:
		return "moved"
	case Unchanged:
		return "unchanged"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Commit applies a finished drag to s. The item is removed from its origin
// and then inserted at the preview index of the resulting target sequence;
// for a move within one collection the index therefore counts positions after
// the removal. A moved item has its error flag cleared.
//
// Whenever the outcome is not Moved, s is returned untouched.
func Commit(s board.State, session Session, preview *Preview) (board.State, Outcome) {
	if preview == nil {
		return s, Cancelled
	}

	originSeq, ok := s.Sequence(session.Origin)
	if !ok {
		log.Warn().
			Str("item_id", session.Item.ID).
			Str("origin", string(session.Origin)).
			Msg("Drag origin no longer exists, discarding drop")
		return s, Stale
	}
	targetSeq, ok := s.Sequence(preview.Target)
	if !ok {
		log.Warn().
			Str("item_id", session.Item.ID).
			Str("target", string(preview.Target)).
			Msg("Drop target no longer exists, discarding drop")
		return s, Stale
	}

	remaining, item, ok := board.RemoveByID(originSeq, session.Item.ID)
	if !ok {
		log.Warn().
			Str("item_id", session.Item.ID).
			Str("origin", string(session.Origin)).
			Msg("Dragged item no longer in its origin, discarding drop")
		return s, Stale
	}

	moved := item.WithError(false)
	if preview.Target == session.Origin {
		index := board.Clamp(preview.Index, len(remaining))
		if index < len(originSeq) && originSeq[index].ID == item.ID && item == moved {
			return s, Unchanged
		}
		return s.WithSequence(session.Origin, board.InsertAt(remaining, index, moved)), Moved
	}

	next := s.WithSequence(session.Origin, remaining)
	next = next.WithSequence(preview.Target, board.InsertAt(targetSeq, preview.Index, moved))
	return next, Moved
}
