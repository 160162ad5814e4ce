/*
Package heimer is the core of a mind-map editor: a document of nodes and edges,
undoable edits, and the workflow that guards the document against losing
unsaved changes.

# Concept

Heimer separates the editor into layers. The document holds the graph, the
undo engine records every edit as a reversible command, and the mediator is
the single entry point for both. On top sits a deterministic workflow state
machine: every user request (new, open, save, save as, export, change the
background color, close) is an action, and each state runs exactly one effect
that may talk to the user through the Dialogs and Window ports.

When a request would discard unsaved changes, the workflow remembers it as the
pending operation, asks the user, and resumes it after a successful save.

# Packages

  - pkg/domain: value types, workflow states and actions, sentinel errors.
  - pkg/mediator: the editing facade over the document and its history.
  - pkg/runner: the driver that runs workflow effects against the mediator.
  - pkg/ports: Dialogs, Window, Codec, Exporter and SettingsStore.
  - pkg/adapters: the .alz codec, PNG export, the terminal dialogs,
    settings stores and the read-only HTTP observer.
  - cmd/heimer: the interactive command line editor.

# Usage

	m := mediator.New(mediator.WithCodec(alz.New()), mediator.WithExporter(png.New()))
	r, err := runner.New(m, runner.WithDialogs(dialogs), runner.WithWindow(window))
	if err != nil {
		log.Fatal(err)
	}
	if err := r.Start(ctx, ""); err != nil {
		log.Fatal(err)
	}

	root, _ := m.GetNodeByIndex(0)
	child, _ := m.CreateAndAddTextNode(&root.ID, domain.Point{X: 250}, "First idea")
	_ = child

	// Asks to save, then closes.
	_ = r.Dispatch(ctx, domain.ActionRequestClose)
*/
package heimer
