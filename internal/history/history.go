package history

import (
	"fmt"

	"github.com/aretw0/heimer/internal/document"
)

// DefaultLimit is the number of undo steps kept when no limit is configured.
const DefaultLimit = 50

// Command is one reversible edit of a document.
type Command interface {
	// Do applies the edit. It is also used to redo it.
	Do(doc *document.Document) error
	// Undo reverts exactly what Do applied.
	Undo(doc *document.Document) error
	String() string
}

// History is a linear undo/redo history. Executing a new command drops
// everything that was undone before it.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// New creates a history keeping at most limit undo steps. A limit <= 0 means DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Execute applies cmd and records it. Nothing is recorded when cmd fails.
func (h *History) Execute(doc *document.Document, cmd Command) error {
	if err := cmd.Do(doc); err != nil {
		return err
	}
	h.undo = append(h.undo, cmd)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	return nil
}

// Undo reverts the latest command. It reports false when there is nothing to undo.
func (h *History) Undo(doc *document.Document) (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(doc); err != nil {
		return false, fmt.Errorf("undo %s: %w", cmd, err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	return true, nil
}

// Redo re-applies the latest undone command. It reports false when there is nothing to redo.
func (h *History) Redo(doc *document.Document) (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Do(doc); err != nil {
		return false, fmt.Errorf("redo %s: %w", cmd, err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	return true, nil
}

// CanUndo reports whether Undo would do something.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do something.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen returns the number of undoable steps.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redoable steps.
func (h *History) RedoLen() int { return len(h.redo) }

// Limit returns the maximum number of undo steps.
func (h *History) Limit() int { return h.limit }

// Reset forgets both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
