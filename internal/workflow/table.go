package workflow

import (
	"fmt"

	"github.com/aretw0/heimer/pkg/domain"
)

// Rule computes the next snapshot for one action.
// Rules must be pure: they only read their arguments.
type Rule func(current domain.Snapshot, guards domain.Guards) domain.Snapshot

// Table maps every action to its rule.
type Table map[domain.Action]Rule

var defaultTable = mustBuild(buildTable())

func buildTable() Table {
	return Table{
		domain.ActionRequestNew:   confirmIfModified(domain.OperationNew),
		domain.ActionRequestOpen:  confirmIfModified(domain.OperationOpen),
		domain.ActionRequestClose: confirmIfModified(domain.OperationClose),

		domain.ActionRequestSave:            save,
		domain.ActionRequestSaveAs:          keepPending(domain.StateShowSaveAsDialog),
		domain.ActionRequestExport:          keepPending(domain.StateShowExportToPNGDialog),
		domain.ActionRequestBackgroundColor: keepPending(domain.StateShowBackgroundColorDialog),

		// Accepting keeps the pending operation so a successful save can resume it.
		domain.ActionNotSavedDialogAccepted:  save,
		domain.ActionNotSavedDialogDiscarded: resume,
		domain.ActionNotSavedDialogCanceled:  toEdit,

		domain.ActionMindMapSaved:         resume,
		domain.ActionMindMapSavedAs:       resume,
		domain.ActionMindMapSaveFailed:    toEdit,
		domain.ActionMindMapSaveAsFailed:  toEdit,
		domain.ActionSaveAsDialogCanceled: toEdit,

		domain.ActionNewMindMap:         toEdit,
		domain.ActionMindMapOpened:      toEdit,
		domain.ActionMindMapOpenFailed:  toEdit,
		domain.ActionOpenDialogCanceled: toEdit,

		domain.ActionBackgroundColorChanged: keepPending(domain.StateEdit),
		domain.ActionExportedToPNG:          keepPending(domain.StateEdit),

		domain.ActionWindowClosed: func(domain.Snapshot, domain.Guards) domain.Snapshot {
			return domain.Snapshot{State: domain.StateExit, Pending: domain.OperationNone}
		},
	}
}

func confirmIfModified(op domain.Operation) Rule {
	return func(_ domain.Snapshot, g domain.Guards) domain.Snapshot {
		if g.IsModified {
			return domain.Snapshot{State: domain.StateShowNotSavedDialog, Pending: op}
		}
		return domain.Snapshot{State: entryState(op), Pending: domain.OperationNone}
	}
}

func keepPending(next domain.State) Rule {
	return func(s domain.Snapshot, _ domain.Guards) domain.Snapshot {
		return domain.Snapshot{State: next, Pending: s.Pending}
	}
}

func save(s domain.Snapshot, g domain.Guards) domain.Snapshot {
	if g.HasFile {
		return domain.Snapshot{State: domain.StateSaveMindMap, Pending: s.Pending}
	}
	return domain.Snapshot{State: domain.StateShowSaveAsDialog, Pending: s.Pending}
}

func resume(s domain.Snapshot, _ domain.Guards) domain.Snapshot {
	return domain.Snapshot{State: entryState(s.Pending), Pending: domain.OperationNone}
}

func toEdit(domain.Snapshot, domain.Guards) domain.Snapshot {
	return domain.InitialSnapshot()
}

// entryState is the state that starts a deferred operation.
func entryState(op domain.Operation) domain.State {
	switch op {
	case domain.OperationNew:
		return domain.StateInitializeNewMindMap
	case domain.OperationOpen:
		return domain.StateShowOpenDialog
	case domain.OperationClose:
		return domain.StateTryCloseWindow
	default:
		return domain.StateEdit
	}
}

// Validate checks that the table has exactly one rule for every known action.
func Validate(t Table) error {
	for _, a := range domain.AllActions() {
		if r, ok := t[a]; !ok || r == nil {
			return fmt.Errorf("workflow table has no rule for action %q", a)
		}
	}
	if len(t) != len(domain.AllActions()) {
		return fmt.Errorf("workflow table has %d rules for %d actions", len(t), len(domain.AllActions()))
	}
	return nil
}

func mustBuild(t Table) Table {
	if err := Validate(t); err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns a copy of the built-in transition table.
func DefaultTable() Table {
	out := make(Table, len(defaultTable))
	for k, v := range defaultTable {
		out[k] = v
	}
	return out
}

// Transition computes the next snapshot. It is pure and total over the known actions.
// Exit absorbs every action. An action outside the closed set leaves the snapshot untouched.
func Transition(current domain.Snapshot, action domain.Action, guards domain.Guards) domain.Snapshot {
	return transition(defaultTable, current, action, guards)
}

func transition(t Table, current domain.Snapshot, action domain.Action, guards domain.Guards) domain.Snapshot {
	if current.State.IsTerminal() {
		return current
	}
	rule, ok := t[action]
	if !ok {
		return current
	}
	next := rule(current, guards)
	if next.Pending == "" {
		next.Pending = domain.OperationNone
	}
	return next
}
