package cli_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/heimer/internal/cli"
	"github.com/aretw0/heimer/internal/config"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays lines (or errors), then reports end of input.
type scriptedReader struct {
	lines   []any
	prompts []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	next := r.lines[0]
	r.lines = r.lines[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (r *scriptedReader) SetPrompt(p string) {
	r.prompts = append(r.prompts, p)
}

type harness struct {
	app    *cli.App
	repl   *cli.REPL
	reader *scriptedReader
	out    *bytes.Buffer
}

func newHarness(t *testing.T, lines ...any) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Settings.Backend = config.BackendMemory

	h := &harness{reader: &scriptedReader{lines: lines}, out: &bytes.Buffer{}}
	app, err := cli.NewApp(cfg, h.reader, h.out, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	require.NoError(t, app.Runner.Start(context.Background(), ""))

	h.app = app
	h.repl = cli.NewREPL(app, h.out)
	return h
}

func (h *harness) exec(t *testing.T, line string) {
	t.Helper()
	require.NoError(t, h.repl.Execute(context.Background(), line))
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"undo", []string{"undo"}},
		{"add 0  idea", []string{"add", "0", "idea"}},
		{`add 0 "big idea" 10 20`, []string{"add", "0", "big idea", "10", "20"}},
		{`text 1 ""`, []string{"text", "1", ""}},
		{"move\t1\t5 5", []string{"move", "1", "5", "5"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cli.SplitLine(tt.in), tt.in)
	}
}

func TestREPL_EditCommands(t *testing.T) {
	h := newHarness(t)
	m := h.app.Mediator

	h.exec(t, `add 0 "First idea"`)
	assert.Contains(t, h.out.String(), "Added node #1")
	h.exec(t, `add 0 second`)
	h.exec(t, `add - floating 500 500`)
	assert.Equal(t, 4, m.NodeCount())

	first, err := m.GetNodeByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, "First idea", first.Text)
	assert.Equal(t, domain.Point{X: 250, Y: 0}, first.Location)
	second, err := m.GetNodeByIndex(2)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 250, Y: 100}, second.Location)

	h.exec(t, "connect 3 1")
	assert.Contains(t, m.Snapshot().Edges, domain.Edge{Source: 3, Target: 1})
	h.exec(t, "disconnect 3 1")
	assert.NotContains(t, m.Snapshot().Edges, domain.Edge{Source: 3, Target: 1})

	h.exec(t, "move 3 1 2")
	h.exec(t, "text 3 renamed node")
	floating, err := m.GetNodeByIndex(3)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 1, Y: 2}, floating.Location)
	assert.Equal(t, "renamed node", floating.Text)

	h.exec(t, "del 2")
	assert.Equal(t, 3, m.NodeCount())
	h.exec(t, "undo")
	assert.Equal(t, 4, m.NodeCount())
	h.exec(t, "redo")
	assert.Equal(t, 3, m.NodeCount())
	assert.True(t, m.IsModified())
}

func TestREPL_Selection(t *testing.T) {
	h := newHarness(t)

	h.exec(t, "select 0")
	n, ok := h.app.Mediator.SelectedNode()
	require.True(t, ok)
	assert.Equal(t, domain.NodeID(0), n.ID)

	h.exec(t, "mermaid")
	assert.Contains(t, h.out.String(), "class n0 selected;")

	h.exec(t, "select")
	_, ok = h.app.Mediator.SelectedNode()
	assert.False(t, ok)
}

func TestREPL_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorContains(t, h.repl.Execute(ctx, "frobnicate"), "unknown command")
	assert.ErrorContains(t, h.repl.Execute(ctx, "add 0"), "usage: add")
	assert.ErrorContains(t, h.repl.Execute(ctx, "del x"), "invalid node id")
	assert.ErrorIs(t, h.repl.Execute(ctx, "del 99"), domain.ErrNotFound)
	assert.ErrorIs(t, h.repl.Execute(ctx, "connect 0 0"), domain.ErrInvalidReference)
	assert.ErrorContains(t, h.repl.Execute(ctx, "move 0 a b"), "invalid position")
	assert.False(t, h.app.Mediator.IsModified())
}

func TestREPL_UndoNothing(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "undo")
	h.exec(t, "redo")
	assert.Contains(t, h.out.String(), "Nothing to undo.")
	assert.Contains(t, h.out.String(), "Nothing to redo.")
}

func TestREPL_ShowAndStatus(t *testing.T) {
	h := newHarness(t)
	h.exec(t, `text 0 "Root"`)
	h.exec(t, `add 0 Leaf`)

	h.exec(t, "show")
	assert.Contains(t, h.out.String(), "# New mind map")
	assert.Contains(t, h.out.String(), "- Root `#0`\n  - Leaf `#1`\n")

	h.exec(t, "status")
	assert.Contains(t, h.out.String(), "File:       (not saved)")
	assert.Contains(t, h.out.String(), "Modified:   true")
	assert.Contains(t, h.out.String(), "History:    2 undo, 0 redo")
	assert.Contains(t, h.out.String(), "Workflow:   Edit (pending none)")
}

func TestREPL_Help(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "help")
	assert.Contains(t, h.out.String(), "Available commands:")
	assert.Contains(t, h.out.String(), "saveas")

	h.exec(t, "help add")
	assert.Contains(t, h.out.String(), "Syntax: add <parent|-> <text> [x y]")
}

func TestREPL_Prompt(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "heimer[new]> ", h.repl.Prompt())
	h.exec(t, "add 0 x")
	assert.Equal(t, "heimer[new*]> ", h.repl.Prompt())
}

func TestLoop_SaveAsThenQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas")
	h := newHarness(t,
		`add 0 "an idea"`,
		"saveas",
		path,
		"quit",
	)

	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.True(t, h.app.Runner.Done())
	assert.FileExists(t, path+".alz")
	assert.False(t, h.app.Mediator.IsModified())
	assert.Contains(t, h.reader.prompts, "heimer[new*]> ")
	assert.Contains(t, h.reader.prompts, "heimer[ideas.alz]> ")

	recent, err := h.app.Settings.Get(context.Background(), "Application/recentPath")
	require.NoError(t, err)
	assert.Equal(t, path+".alz", recent)
}

func TestLoop_QuitDiscardingChanges(t *testing.T) {
	h := newHarness(t, "add 0 x", "quit", "d")

	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.True(t, h.app.Runner.Done())
	assert.True(t, h.app.Terminal.Closed())
	assert.Contains(t, h.out.String(), "The mind map has been modified.")
}

func TestLoop_QuitCanceledKeepsEditing(t *testing.T) {
	h := newHarness(t, "add 0 x", "quit", "c", "undo", "quit", "d")

	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.True(t, h.app.Runner.Done())
	assert.Equal(t, 1, h.app.Mediator.NodeCount())
}

func TestLoop_EndOfInputWithUnsavedChanges(t *testing.T) {
	h := newHarness(t, "add 0 x")

	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.False(t, h.app.Runner.Done(), "the unsaved prompt is canceled by the end of input")
	assert.True(t, h.app.Mediator.IsModified())
}

func TestLoop_InterruptAndErrors(t *testing.T) {
	h := newHarness(t, readline.ErrInterrupt, "bogus", "exit")

	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.Contains(t, h.out.String(), "Use 'quit' to exit.")
	assert.Contains(t, h.out.String(), "Error: unknown command: bogus")
	assert.True(t, h.app.Runner.Done())
}

func TestLoop_CanceledContext(t *testing.T) {
	h := newHarness(t, "add 0 x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.repl.Loop(ctx, h.reader)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.app.Mediator.NodeCount())
}

func TestLoop_OpenExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.alz")
	seed := newHarness(t, `add 0 "from disk"`, "saveas", path, "quit")
	require.NoError(t, seed.repl.Loop(context.Background(), seed.reader))
	_, err := os.Stat(path)
	require.NoError(t, err)

	h := newHarness(t, "open", path, "quit")
	require.NoError(t, h.repl.Loop(context.Background(), h.reader))

	assert.Equal(t, path, h.app.Mediator.FilePath())
	assert.Equal(t, 2, h.app.Mediator.NodeCount())
}
