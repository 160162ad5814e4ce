package domain

// State is the current phase of the application workflow.
type State string

const (
	StateEdit                      State = "Edit"
	StateInitializeNewMindMap      State = "InitializeNewMindMap"
	StateSaveMindMap               State = "SaveMindMap"
	StateShowOpenDialog            State = "ShowOpenDialog"
	StateShowSaveAsDialog          State = "ShowSaveAsDialog"
	StateShowBackgroundColorDialog State = "ShowBackgroundColorDialog"
	StateShowExportToPNGDialog     State = "ShowExportToPNGDialog"
	StateShowNotSavedDialog        State = "ShowNotSavedDialog"
	StateTryCloseWindow            State = "TryCloseWindow"
	StateExit                      State = "Exit" // Absorbing
)

// AllStates returns every known state.
func AllStates() []State {
	return []State{
		StateEdit,
		StateInitializeNewMindMap,
		StateSaveMindMap,
		StateShowOpenDialog,
		StateShowSaveAsDialog,
		StateShowBackgroundColorDialog,
		StateShowExportToPNGDialog,
		StateShowNotSavedDialog,
		StateTryCloseWindow,
		StateExit,
	}
}

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// IsDialog reports whether the state waits on a user dialog.
func (s State) IsDialog() bool {
	switch s {
	case StateShowOpenDialog, StateShowSaveAsDialog, StateShowBackgroundColorDialog,
		StateShowExportToPNGDialog, StateShowNotSavedDialog:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave the state.
func (s State) IsTerminal() bool {
	return s == StateExit
}

// Operation is the user request deferred while the unsaved-changes dialog is open.
type Operation string

const (
	OperationNone  Operation = "none"
	OperationNew   Operation = "new"
	OperationOpen  Operation = "open"
	OperationClose Operation = "close"
)

// String implements fmt.Stringer.
func (o Operation) String() string {
	if o == "" {
		return string(OperationNone)
	}
	return string(o)
}

// Snapshot is the full value owned by the workflow state machine.
type Snapshot struct {
	State   State     `json:"state"`
	Pending Operation `json:"pending"`
}

// InitialSnapshot is where every workflow starts.
func InitialSnapshot() Snapshot {
	return Snapshot{State: StateEdit, Pending: OperationNone}
}

// Guards is a read-only view of the document consulted by the transition rules.
type Guards struct {
	IsModified bool `json:"is_modified"`
	HasNodes   bool `json:"has_nodes"`
	HasFile    bool `json:"has_file"`
}

// UnsavedChoice is the answer to the unsaved-changes dialog.
type UnsavedChoice int

const (
	ChoiceCancel UnsavedChoice = iota
	ChoiceSave
	ChoiceDiscard
)

// String implements fmt.Stringer.
func (c UnsavedChoice) String() string {
	switch c {
	case ChoiceSave:
		return "save"
	case ChoiceDiscard:
		return "discard"
	default:
		return "cancel"
	}
}

// Action maps the dialog answer onto the workflow action it resolves to.
func (c UnsavedChoice) Action() Action {
	switch c {
	case ChoiceSave:
		return ActionNotSavedDialogAccepted
	case ChoiceDiscard:
		return ActionNotSavedDialogDiscarded
	default:
		return ActionNotSavedDialogCanceled
	}
}
