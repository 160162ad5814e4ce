package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/heimer/internal/presentation/graph"
	"github.com/aretw0/heimer/internal/presentation/tui"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/runner"
)

// Offsets of a new child relative to its parent.
const (
	childOffsetX = 250
	childOffsetY = 100
)

var errQuit = errors.New("quit requested")

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// REPL maps text commands onto mediator edits and workflow actions.
type REPL struct {
	app      *App
	out      io.Writer
	commands map[string]command
	signals  *runner.SignalManager
}

// NewREPL creates the command interpreter for app, printing to out.
func NewREPL(app *App, out io.Writer) *REPL {
	r := &REPL{app: app, out: out}
	r.commands = map[string]command{
		"add":        {"add <parent|-> <text> [x y]", "Add a node under parent, or a floating node with -.", r.add},
		"del":        {"del <id>", "Delete a node and its edges.", r.del},
		"connect":    {"connect <source> <target>", "Connect two nodes.", r.connect},
		"disconnect": {"disconnect <source> <target>", "Remove the edge between two nodes.", r.disconnect},
		"move":       {"move <id> <x> <y>", "Move a node.", r.move},
		"text":       {"text <id> <text>", "Change the text of a node.", r.text},
		"select":     {"select [id]", "Select a node, or clear the selection.", r.selectNode},
		"undo":       {"undo", "Undo the last edit.", r.undo},
		"redo":       {"redo", "Redo the last undone edit.", r.redo},
		"show":       {"show", "Show the mind map as an outline.", r.show},
		"mermaid":    {"mermaid", "Print the mind map as a Mermaid flowchart.", r.mermaid},
		"status":     {"status", "Show file, workflow and history status.", r.status},
		"new":        {"new", "Start a new mind map.", r.action(domain.ActionRequestNew)},
		"open":       {"open", "Open a mind map file.", r.action(domain.ActionRequestOpen)},
		"save":       {"save", "Save the mind map.", r.action(domain.ActionRequestSave)},
		"saveas":     {"saveas", "Save the mind map under a new name.", r.action(domain.ActionRequestSaveAs)},
		"export":     {"export", "Export the mind map to PNG.", r.action(domain.ActionRequestExport)},
		"bg":         {"bg", "Change the background color.", r.action(domain.ActionRequestBackgroundColor)},
		"quit":       {"quit", "Close the editor.", r.quit},
		"help":       {"help [command]", "Show help.", r.help},
	}
	r.commands["exit"] = r.commands["quit"]
	return r
}

// SplitLine splits a command line on spaces, keeping double-quoted runs together.
func SplitLine(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}
	return args
}

// Execute runs one command line. It returns errQuit once the editor closed.
func (r *REPL) Execute(ctx context.Context, line string) error {
	args := SplitLine(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	cmd, ok := r.commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
	if err := cmd.run(ctx, args[1:]); err != nil {
		return err
	}
	if r.app.Runner.Done() {
		return errQuit
	}
	return nil
}

// Prompt reflects the file name and the modified flag.
func (r *REPL) Prompt() string {
	name := r.app.Mediator.FileName()
	if name == "" {
		name = "new"
	}
	if r.app.Mediator.IsModified() {
		name += "*"
	}
	return fmt.Sprintf("heimer[%s]> ", name)
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func parseID(s string) (domain.NodeID, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	return domain.NodeID(id), nil
}

func parseIDs(args []string, n int, usage string) ([]domain.NodeID, error) {
	if len(args) != n {
		return nil, fmt.Errorf("usage: %s", usage)
	}
	ids := make([]domain.NodeID, n)
	for i, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func parsePoint(x, y string) (domain.Point, error) {
	px, errX := strconv.ParseFloat(x, 64)
	py, errY := strconv.ParseFloat(y, 64)
	if errX != nil || errY != nil {
		return domain.Point{}, fmt.Errorf("invalid position %q %q", x, y)
	}
	return domain.Point{X: px, Y: py}, nil
}

// childPosition places a new child to the right of parent, below its existing children.
func (r *REPL) childPosition(parent domain.NodeID) (domain.Point, error) {
	p, err := r.app.Mediator.GetNodeByIndex(parent)
	if err != nil {
		return domain.Point{}, err
	}
	children := 0
	for _, e := range r.app.Mediator.Snapshot().Edges {
		if e.Source == parent {
			children++
		}
	}
	return domain.Point{X: p.Location.X + childOffsetX, Y: p.Location.Y + float64(children*childOffsetY)}, nil
}

func (r *REPL) add(_ context.Context, args []string) error {
	usage := r.commands["add"].usage
	if len(args) != 2 && len(args) != 4 {
		return fmt.Errorf("usage: %s", usage)
	}

	var parent *domain.NodeID
	if args[0] != "-" {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		parent = &id
	}

	var pos domain.Point
	var err error
	switch {
	case len(args) == 4:
		pos, err = parsePoint(args[2], args[3])
	case parent != nil:
		pos, err = r.childPosition(*parent)
	}
	if err != nil {
		return err
	}

	id, err := r.app.Mediator.CreateAndAddTextNode(parent, pos, args[1])
	if err != nil {
		return err
	}
	r.printf("Added node #%d\n", id)
	return nil
}

func (r *REPL) del(_ context.Context, args []string) error {
	ids, err := parseIDs(args, 1, r.commands["del"].usage)
	if err != nil {
		return err
	}
	return r.app.Mediator.DeleteNode(ids[0])
}

func (r *REPL) connect(_ context.Context, args []string) error {
	ids, err := parseIDs(args, 2, r.commands["connect"].usage)
	if err != nil {
		return err
	}
	return r.app.Mediator.ConnectNodes(ids[0], ids[1])
}

func (r *REPL) disconnect(_ context.Context, args []string) error {
	ids, err := parseIDs(args, 2, r.commands["disconnect"].usage)
	if err != nil {
		return err
	}
	return r.app.Mediator.DisconnectNodes(ids[0], ids[1])
}

func (r *REPL) move(_ context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: %s", r.commands["move"].usage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	pos, err := parsePoint(args[1], args[2])
	if err != nil {
		return err
	}
	return r.app.Mediator.MoveNode(id, pos)
}

func (r *REPL) text(_ context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", r.commands["text"].usage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return r.app.Mediator.SetNodeText(id, strings.Join(args[1:], " "))
}

func (r *REPL) selectNode(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		r.app.Mediator.ClearSelection()
		return nil
	case 1:
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return r.app.Mediator.SetSelectedNode(id)
	}
	return fmt.Errorf("usage: %s", r.commands["select"].usage)
}

func (r *REPL) undo(context.Context, []string) error {
	done, err := r.app.Mediator.Undo()
	if err == nil && !done {
		r.printf("Nothing to undo.\n")
	}
	return err
}

func (r *REPL) redo(context.Context, []string) error {
	done, err := r.app.Mediator.Redo()
	if err == nil && !done {
		r.printf("Nothing to redo.\n")
	}
	return err
}

func (r *REPL) title() string {
	if name := r.app.Mediator.FileName(); name != "" {
		return name
	}
	return "New mind map"
}

func (r *REPL) show(context.Context, []string) error {
	out, err := r.app.render(tui.Outline(r.app.Mediator.Snapshot(), r.title()))
	if err != nil {
		return err
	}
	r.printf("%s", out)
	return nil
}

func (r *REPL) mermaid(context.Context, []string) error {
	overlay := &graph.Overlay{}
	if n, ok := r.app.Mediator.SelectedNode(); ok {
		overlay.Selected, overlay.HasSelected = n.ID, true
	}
	r.printf("%s", graph.GenerateMermaid(r.app.Mediator.Snapshot(), overlay))
	return nil
}

func (r *REPL) status(context.Context, []string) error {
	m := r.app.Mediator
	file := m.FilePath()
	if file == "" {
		file = "(not saved)"
	}
	undo, redo := m.HistoryDepth()
	snap := r.app.Runner.State()

	r.printf("File:       %s\n", file)
	r.printf("Modified:   %t\n", m.IsModified())
	r.printf("Nodes:      %d\n", m.NodeCount())
	r.printf("Background: %s\n", m.BackgroundColor().Hex())
	r.printf("History:    %d undo, %d redo\n", undo, redo)
	r.printf("Workflow:   %s (pending %s)\n", snap.State, snap.Pending)
	if n, ok := m.SelectedNode(); ok {
		r.printf("Selected:   #%d %q\n", n.ID, n.Text)
	}
	return nil
}

func (r *REPL) action(a domain.Action) func(context.Context, []string) error {
	return func(ctx context.Context, _ []string) error {
		return r.app.Runner.Dispatch(ctx, a)
	}
}

func (r *REPL) quit(ctx context.Context, _ []string) error {
	return r.app.Runner.Dispatch(ctx, domain.ActionRequestClose)
}

func (r *REPL) help(_ context.Context, args []string) error {
	if len(args) > 0 {
		cmd, ok := r.commands[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		r.printf("Syntax: %s\n%s\n", cmd.usage, cmd.help)
		return nil
	}

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	r.printf("Available commands:\n")
	for _, name := range names {
		cmd := r.commands[name]
		r.printf("  %-30s %s\n", cmd.usage, cmd.help)
	}
	return nil
}
