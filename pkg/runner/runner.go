package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/heimer/internal/logging"
	"github.com/aretw0/heimer/internal/workflow"
	"github.com/aretw0/heimer/pkg/adapters/memory"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/mediator"
	"github.com/aretw0/heimer/pkg/ports"
)

const (
	// RecentPathKey is the settings key remembering the last opened or saved file.
	RecentPathKey = "Application/recentPath"

	DefaultAppName = "Heimer"

	msgNotSaved     = "The mind map has been modified."
	msgNotSavedInfo = "Do you want to save your changes?"
	msgSaveFailed   = "Failed to save file."
	msgEmptyExport  = "Nothing to export."
)

// Runner executes the effect of each workflow state and feeds the resulting
// actions back into the state machine.
type Runner struct {
	Mediator *mediator.Mediator
	Dialogs  ports.Dialogs
	Window   ports.Window
	Settings ports.SettingsStore
	Logger   *slog.Logger
	AppName  string

	machine    *workflow.Machine
	hooks      domain.LifecycleHooks
	extension  string
	exportSize domain.Size

	mu       sync.Mutex
	queue    []domain.Action
	draining bool
}

// New creates a runner around a mediator.
func New(m *mediator.Mediator, opts ...Option) (*Runner, error) {
	if m == nil {
		return nil, errors.New("runner requires a mediator")
	}
	r := &Runner{
		Mediator:  m,
		Dialogs:   cancelDialogs{},
		Window:    nopWindow{},
		Settings:  memory.NewSettings(),
		Logger:    logging.NewNop(),
		AppName:   DefaultAppName,
		extension: m.FileExtension(),
	}
	for _, opt := range opts {
		opt(r)
	}

	machine, err := workflow.New(
		workflow.WithLogger(r.Logger),
		workflow.WithLifecycleHooks(r.hooks),
	)
	if err != nil {
		return nil, err
	}
	r.machine = machine
	return r, nil
}

// State returns the current workflow snapshot.
func (r *Runner) State() domain.Snapshot {
	return r.machine.Current()
}

// Done reports whether the workflow reached Exit.
func (r *Runner) Done() bool {
	return r.machine.Current().State.IsTerminal()
}

// Start performs the one-time initialization of a new mind map and then
// opens file, when given. A file that cannot be opened is reported to the user
// and the editor keeps the new mind map.
func (r *Runner) Start(ctx context.Context, file string) error {
	r.Mediator.InitializeNewMindMap()
	r.Logger.Debug("new mind map initialized")

	if file == "" {
		return r.Dispatch(ctx, domain.ActionNewMindMap)
	}
	if err := r.Mediator.OpenMindMap(ctx, file); err != nil {
		r.Logger.Warn("failed to open mind map given on the command line", "path", file, "error", err)
		r.Window.ShowMessage(ctx, r.AppName, fmt.Sprintf("Failed to open file '%s'.", file))
		return r.Dispatch(ctx, domain.ActionMindMapOpenFailed)
	}
	r.rememberPath(ctx, file)
	return r.Dispatch(ctx, domain.ActionMindMapOpened)
}

// Dispatch submits an action and processes it, plus every follow-up action
// it causes, before returning. Actions submitted while the queue is being
// drained are appended to it. When ctx is canceled mid-way the remaining
// actions are dropped and the workflow goes back to Edit.
func (r *Runner) Dispatch(ctx context.Context, action domain.Action) error {
	r.mu.Lock()
	r.queue = append(r.queue, action)
	if r.draining {
		r.mu.Unlock()
		return nil
	}
	r.draining = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.draining = false
		r.queue = nil
		r.mu.Unlock()
	}()

	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return nil
		}
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		if err := ctx.Err(); err != nil {
			r.abandon(ctx, next)
			return err
		}

		snapshot := r.machine.Fire(ctx, next, r.Mediator.Guards())
		followUp, err := r.effect(ctx, snapshot.State)
		if err != nil {
			return fmt.Errorf("effect of %s: %w", snapshot.State, err)
		}
		if followUp != "" {
			r.mu.Lock()
			r.queue = append(r.queue, followUp)
			r.mu.Unlock()
		}
	}
}

// abandon settles a workflow interrupted before dropped could be processed.
// An effect outcome is still recorded, since the effect already happened;
// a request is discarded. Any state left without its effect goes back to Edit,
// dropping the pending operation so a later request cannot resume it.
func (r *Runner) abandon(ctx context.Context, dropped domain.Action) {
	ctx = context.WithoutCancel(ctx)
	if !dropped.IsRequest() {
		r.machine.Fire(ctx, dropped, r.Mediator.Guards())
	}

	snap := r.machine.Current()
	switch {
	case snap.State.IsTerminal():
		return
	case snap != domain.InitialSnapshot():
		r.Logger.Warn("workflow interrupted, back to edit",
			"state", snap.State,
			"pending", snap.Pending,
			"dropped", dropped,
		)
		r.machine.Reset()
	}
	r.refreshTitle()
}

// effect runs the side effect owned by state and returns the action it resolves to.
func (r *Runner) effect(ctx context.Context, state domain.State) (domain.Action, error) {
	switch state {
	case domain.StateEdit:
		r.refreshTitle()
		return "", nil
	case domain.StateInitializeNewMindMap:
		r.Mediator.InitializeNewMindMap()
		return domain.ActionNewMindMap, nil
	case domain.StateSaveMindMap:
		return r.saveMindMap(ctx), nil
	case domain.StateShowSaveAsDialog:
		return r.showSaveAsDialog(ctx), nil
	case domain.StateShowOpenDialog:
		return r.showOpenDialog(ctx), nil
	case domain.StateShowBackgroundColorDialog:
		return r.showBackgroundColorDialog(ctx), nil
	case domain.StateShowExportToPNGDialog:
		return r.showExportDialog(ctx), nil
	case domain.StateShowNotSavedDialog:
		return r.showNotSavedDialog(ctx), nil
	case domain.StateTryCloseWindow:
		if err := r.Window.Close(ctx); err != nil {
			r.Logger.Warn("window close failed", "error", err)
		}
		return domain.ActionWindowClosed, nil
	case domain.StateExit:
		return "", nil
	}
	return "", fmt.Errorf("no effect for state %q", state)
}

func (r *Runner) saveMindMap(ctx context.Context) domain.Action {
	if err := r.Mediator.SaveMindMap(ctx); err != nil {
		r.Logger.Error("save failed", "path", r.Mediator.FilePath(), "error", err)
		r.Window.ShowMessage(ctx, r.AppName, msgSaveFailed)
		return domain.ActionMindMapSaveFailed
	}
	return domain.ActionMindMapSaved
}

func (r *Runner) showSaveAsDialog(ctx context.Context) domain.Action {
	path, ok, err := r.Dialogs.SaveFile(ctx, "Save File As", r.recentPath(ctx), r.filter())
	if err != nil {
		r.Logger.Warn("save dialog failed", "error", err)
	}
	if err != nil || !ok {
		return domain.ActionSaveAsDialogCanceled
	}

	path = r.withExtension(path)
	if err := r.Mediator.SaveMindMapAs(ctx, path); err != nil {
		r.Logger.Error("save as failed", "path", path, "error", err)
		r.Window.ShowMessage(ctx, r.AppName, fmt.Sprintf("Failed to save file as '%s'.", path))
		return domain.ActionMindMapSaveAsFailed
	}
	r.rememberPath(ctx, path)
	return domain.ActionMindMapSavedAs
}

func (r *Runner) showOpenDialog(ctx context.Context) domain.Action {
	path, ok, err := r.Dialogs.OpenFile(ctx, "Open File", r.recentPath(ctx), r.filter())
	if err != nil {
		r.Logger.Warn("open dialog failed", "error", err)
	}
	if err != nil || !ok {
		return domain.ActionOpenDialogCanceled
	}

	if err := r.Mediator.OpenMindMap(ctx, path); err != nil {
		r.Logger.Error("open failed", "path", path, "error", err)
		r.Window.ShowMessage(ctx, r.AppName, fmt.Sprintf("Failed to open file '%s'.", path))
		return domain.ActionMindMapOpenFailed
	}
	r.rememberPath(ctx, path)
	return domain.ActionMindMapOpened
}

// showBackgroundColorDialog resolves to BackgroundColorChanged whether or not a color was picked.
func (r *Runner) showBackgroundColorDialog(ctx context.Context) domain.Action {
	c, ok, err := r.Dialogs.PickColor(ctx, domain.White)
	if err != nil {
		r.Logger.Warn("color dialog failed", "error", err)
		return domain.ActionBackgroundColorChanged
	}
	if ok {
		if err := r.Mediator.SetBackgroundColor(c); err != nil {
			r.Logger.Error("set background failed", "error", err)
		}
	}
	return domain.ActionBackgroundColorChanged
}

// showExportDialog resolves to ExportedToPNG whether the export happened, failed or was canceled.
func (r *Runner) showExportDialog(ctx context.Context) domain.Action {
	if !r.Mediator.HasNodes() {
		r.Window.ShowMessage(ctx, r.AppName, msgEmptyExport)
		return domain.ActionExportedToPNG
	}

	def := r.exportSize
	if def.IsEmpty() {
		def = r.Mediator.SceneSize()
	}
	req, ok, err := r.Dialogs.ExportSettings(ctx, def)
	if err != nil {
		r.Logger.Warn("export dialog failed", "error", err)
	}
	if err != nil || !ok {
		return domain.ActionExportedToPNG
	}

	if err := r.Mediator.ExportToPNG(ctx, req.Path, req.Size, req.Transparent); err != nil {
		r.Logger.Error("export failed", "path", req.Path, "error", err)
		r.Window.ShowMessage(ctx, r.AppName, fmt.Sprintf("Failed to export '%s'.", req.Path))
	} else {
		r.Logger.Info("exported", "path", req.Path, "width", req.Size.Width, "height", req.Size.Height)
	}
	return domain.ActionExportedToPNG
}

func (r *Runner) showNotSavedDialog(ctx context.Context) domain.Action {
	choice, err := r.Dialogs.ConfirmUnsaved(ctx, msgNotSaved, msgNotSavedInfo)
	if err != nil {
		r.Logger.Warn("unsaved changes dialog failed", "error", err)
		return domain.ActionNotSavedDialogCanceled
	}
	return choice.Action()
}

func (r *Runner) filter() string {
	return fmt.Sprintf("%s Files (*%s)", r.AppName, r.extension)
}

func (r *Runner) withExtension(path string) string {
	if r.extension == "" || strings.HasSuffix(strings.ToLower(path), strings.ToLower(r.extension)) {
		return path
	}
	return path + r.extension
}

// recentPath returns the last used file, or the home directory on first use.
func (r *Runner) recentPath(ctx context.Context) string {
	path, err := r.Settings.Get(ctx, RecentPathKey)
	if err == nil && path != "" {
		return path
	}
	if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
		r.Logger.Warn("failed to read recent path", "error", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func (r *Runner) rememberPath(ctx context.Context, path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := r.Settings.Set(ctx, RecentPathKey, path); err != nil {
		r.Logger.Warn("failed to store recent path", "error", err)
	}
}

func (r *Runner) refreshTitle() {
	name := r.Mediator.FileName()
	if name == "" {
		name = "New File"
	}
	if r.Mediator.IsModified() {
		name += "*"
	}
	r.Window.SetTitle(fmt.Sprintf("%s - %s", name, r.AppName))
}

// cancelDialogs cancels every prompt. It is the default for headless runners.
type cancelDialogs struct{}

func (cancelDialogs) OpenFile(context.Context, string, string, string) (string, bool, error) {
	return "", false, nil
}

func (cancelDialogs) SaveFile(context.Context, string, string, string) (string, bool, error) {
	return "", false, nil
}

func (cancelDialogs) ConfirmUnsaved(context.Context, string, string) (domain.UnsavedChoice, error) {
	return domain.ChoiceCancel, nil
}

func (cancelDialogs) PickColor(context.Context, domain.Color) (domain.Color, bool, error) {
	return domain.Color{}, false, nil
}

func (cancelDialogs) ExportSettings(context.Context, domain.Size) (ports.ExportRequest, bool, error) {
	return ports.ExportRequest{}, false, nil
}

type nopWindow struct{}

func (nopWindow) SetTitle(string)                             {}
func (nopWindow) ShowMessage(context.Context, string, string) {}
func (nopWindow) Close(context.Context) error                 { return nil }
