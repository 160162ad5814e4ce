/*
Package ports defines the collaborators the editor core talks to.

The core never touches files, widgets or settings directly. The driver and the
mediator receive these interfaces and the adapters packages implement them.

# Key Interfaces

  - Codec: Loads and saves a mind map in the native file format.
  - Exporter: Renders a read-only snapshot of the mind map to an image.
  - Dialogs: File pickers, the unsaved-changes prompt, the color and export pickers.
  - Window: Title, user-facing messages and closing.
  - SettingsStore: Keyed values persisted across runs (e.g. the recent path).
*/
package ports
