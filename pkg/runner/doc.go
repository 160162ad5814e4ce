/*
Package runner drives the editor workflow.

It is the bridge between the pure workflow state machine and the outside world: every
action goes into a FIFO queue, is transitioned by the machine, and the effect of the
resulting state runs exactly once. An effect may show a dialog, call the mediator and
produce one follow-up action, which is queued in turn. Draining stops when the machine
settles in Edit or reaches Exit.

# Usage

	r, err := runner.New(med,
		runner.WithDialogs(term),
		runner.WithWindow(term),
		runner.WithSettings(file.NewSettings("")),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := r.Start(ctx, "notes.alz"); err != nil {
		log.Fatal(err)
	}
	r.Dispatch(ctx, domain.ActionRequestSave)
*/
package runner
