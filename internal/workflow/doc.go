/*
Package workflow implements the application workflow state machine.

Transition is a pure function of (snapshot, action, guards). The table behind it has one
rule per action and is checked for exhaustiveness when the package loads, so a missing
rule is a start-up failure rather than a runtime surprise. Machine wraps the function
with the single piece of mutable data it needs: the current snapshot.
*/
package workflow
