package domain

import "fmt"

// Action is an event fed to the workflow state machine.
// The set is closed: every value listed in AllActions has exactly one transition rule.
type Action string

const (
	// Outcomes of effects.
	ActionNewMindMap             Action = "NewMindMap"
	ActionMindMapOpened          Action = "MindMapOpened"
	ActionMindMapOpenFailed      Action = "MindMapOpenFailed"
	ActionOpenDialogCanceled     Action = "OpenDialogCanceled"
	ActionMindMapSaved           Action = "MindMapSaved"
	ActionMindMapSaveFailed      Action = "MindMapSaveFailed"
	ActionMindMapSavedAs         Action = "MindMapSavedAs"
	ActionMindMapSaveAsFailed    Action = "MindMapSaveAsFailed"
	ActionSaveAsDialogCanceled   Action = "SaveAsDialogCanceled"
	ActionBackgroundColorChanged Action = "BackgroundColorChanged"
	ActionExportedToPNG          Action = "ExportedToPNG"
	ActionWindowClosed           Action = "WindowClosed"

	// Answers of the unsaved-changes dialog.
	ActionNotSavedDialogAccepted  Action = "NotSavedDialogAccepted"
	ActionNotSavedDialogDiscarded Action = "NotSavedDialogDiscarded"
	ActionNotSavedDialogCanceled  Action = "NotSavedDialogCanceled"

	// User requests.
	ActionRequestNew             Action = "RequestNew"
	ActionRequestOpen            Action = "RequestOpen"
	ActionRequestSave            Action = "RequestSave"
	ActionRequestSaveAs          Action = "RequestSaveAs"
	ActionRequestExport          Action = "RequestExport"
	ActionRequestBackgroundColor Action = "RequestBackgroundColor"
	ActionRequestClose           Action = "RequestClose"
)

var allActions = []Action{
	ActionNewMindMap,
	ActionMindMapOpened,
	ActionMindMapOpenFailed,
	ActionOpenDialogCanceled,
	ActionMindMapSaved,
	ActionMindMapSaveFailed,
	ActionMindMapSavedAs,
	ActionMindMapSaveAsFailed,
	ActionSaveAsDialogCanceled,
	ActionBackgroundColorChanged,
	ActionExportedToPNG,
	ActionWindowClosed,
	ActionNotSavedDialogAccepted,
	ActionNotSavedDialogDiscarded,
	ActionNotSavedDialogCanceled,
	ActionRequestNew,
	ActionRequestOpen,
	ActionRequestSave,
	ActionRequestSaveAs,
	ActionRequestExport,
	ActionRequestBackgroundColor,
	ActionRequestClose,
}

// AllActions returns every known action in declaration order.
func AllActions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// IsRequest reports whether the action originates from the user rather than from an effect.
func (a Action) IsRequest() bool {
	switch a {
	case ActionRequestNew, ActionRequestOpen, ActionRequestSave, ActionRequestSaveAs,
		ActionRequestExport, ActionRequestBackgroundColor, ActionRequestClose:
		return true
	}
	return false
}

// ParseAction resolves an action by its name.
func ParseAction(name string) (Action, error) {
	for _, a := range allActions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrNotFound, name)
}
