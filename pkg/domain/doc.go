/*
Package domain contains the core domain models of the Heimer editor core.

It defines the closed vocabularies of the application workflow (Actions, States and
pending Operations), the mind-map graph entities and the sentinel errors shared by
every other package. This package is kept pure: no I/O, no persistence, no UI.

# Key Entities

  - Action: A named event fed to the workflow state machine.
  - State: The current phase of the application workflow.
  - Snapshot: The state plus the pending operation deferred by the unsaved-changes dialog.
  - Guards: A read-only view of the document used to resolve transitions.
  - Node, Edge, MindMap: The mind-map graph and its serializable snapshot.
*/
package domain
