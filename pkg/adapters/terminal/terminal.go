package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/ports"
	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
)

// LineReader is the part of *readline.Instance the prompts need.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Terminal implements ports.Dialogs and ports.Window on a line-oriented terminal.
// Interrupts (Ctrl+C) and end of input cancel the current prompt.
type Terminal struct {
	rl          LineReader
	out         *termenv.Output
	prompt      string
	transparent bool

	mu     sync.Mutex
	title  string
	closed bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithTransparentByDefault makes an empty answer to the transparency question mean yes.
func WithTransparentByDefault(v bool) Option {
	return func(t *Terminal) {
		t.transparent = v
	}
}

// New creates a terminal on top of a line reader, writing to out.
func New(rl LineReader, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		rl:     rl,
		out:    termenv.NewOutput(out),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var (
	_ ports.Dialogs = (*Terminal)(nil)
	_ ports.Window  = (*Terminal)(nil)
)

// ask shows a one-off prompt and restores the REPL prompt afterwards.
// ok is false when the user interrupted or input ended.
func (t *Terminal) ask(ctx context.Context, prompt string) (answer string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.rl.SetPrompt(prompt)
	defer t.rl.SetPrompt(t.prompt)

	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(line), true, nil
}

// SetPrompt changes the prompt restored after each dialog.
func (t *Terminal) SetPrompt(prompt string) {
	t.prompt = prompt
	t.rl.SetPrompt(prompt)
}

func hint(title, def string) string {
	if def == "" {
		return title + ": "
	}
	return fmt.Sprintf("%s [%s]: ", title, def)
}

// OpenFile implements ports.Dialogs. An empty answer cancels.
func (t *Terminal) OpenFile(ctx context.Context, title, start, filter string) (string, bool, error) {
	return t.pickFile(ctx, title, start, filter)
}

// SaveFile implements ports.Dialogs. An empty answer cancels.
func (t *Terminal) SaveFile(ctx context.Context, title, start, filter string) (string, bool, error) {
	return t.pickFile(ctx, title, start, filter)
}

func (t *Terminal) pickFile(ctx context.Context, title, start, filter string) (string, bool, error) {
	if filter != "" {
		t.printf("%s\n", t.out.String(filter).Faint())
	}
	if start != "" {
		t.printf("%s\n", t.out.String("in "+start).Faint())
	}
	answer, ok, err := t.ask(ctx, hint(title, ""))
	if err != nil || !ok || answer == "" {
		return "", false, err
	}
	return answer, true, nil
}

// ConfirmUnsaved implements ports.Dialogs. An empty answer picks Save.
func (t *Terminal) ConfirmUnsaved(ctx context.Context, text, info string) (domain.UnsavedChoice, error) {
	t.printf("%s\n%s\n", t.out.String(text).Bold(), info)
	for {
		answer, ok, err := t.ask(ctx, "[S]ave, [d]iscard, [c]ancel: ")
		if err != nil {
			return domain.ChoiceCancel, err
		}
		if !ok {
			return domain.ChoiceCancel, nil
		}
		switch strings.ToLower(answer) {
		case "", "s", "save":
			return domain.ChoiceSave, nil
		case "d", "discard":
			return domain.ChoiceDiscard, nil
		case "c", "cancel":
			return domain.ChoiceCancel, nil
		}
		t.printf("Please answer save, discard or cancel.\n")
	}
}

// PickColor implements ports.Dialogs. An empty answer picks def.
func (t *Terminal) PickColor(ctx context.Context, def domain.Color) (domain.Color, bool, error) {
	for {
		answer, ok, err := t.ask(ctx, hint("Color", def.Hex()))
		if err != nil || !ok {
			return domain.Color{}, false, err
		}
		if answer == "" {
			return def, true, nil
		}
		c, err := domain.ParseColor(answer)
		if err == nil {
			return c, true, nil
		}
		t.printf("%s\n", t.out.String(err.Error()).Foreground(t.out.Color("#fb7185")))
	}
}

// ExportSettings implements ports.Dialogs.
// The file name is required, size defaults to def and transparency to no
// unless WithTransparentByDefault was given.
func (t *Terminal) ExportSettings(ctx context.Context, def domain.Size) (ports.ExportRequest, bool, error) {
	path, ok, err := t.ask(ctx, hint("Export to PNG file", ""))
	if err != nil || !ok || path == "" {
		return ports.ExportRequest{}, false, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		path += ".png"
	}

	req := ports.ExportRequest{Path: path, Size: def}
	for {
		answer, ok, err := t.ask(ctx, hint("Size", fmt.Sprintf("%dx%d", def.Width, def.Height)))
		if err != nil || !ok {
			return ports.ExportRequest{}, false, err
		}
		if answer == "" {
			break
		}
		size, err := ParseSize(answer)
		if err == nil {
			req.Size = size
			break
		}
		t.printf("%v\n", err)
	}

	question := "Transparent background? [y/N]: "
	if t.transparent {
		question = "Transparent background? [Y/n]: "
	}
	answer, ok, err := t.ask(ctx, question)
	if err != nil || !ok {
		return ports.ExportRequest{}, false, err
	}
	answer = strings.ToLower(answer)
	if answer == "" {
		req.Transparent = t.transparent
	} else {
		req.Transparent = strings.HasPrefix(answer, "y")
	}
	return req, true, nil
}

// ParseSize parses "WIDTHxHEIGHT" within the export limits.
func ParseSize(s string) (domain.Size, error) {
	w, h, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !found {
		return domain.Size{}, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(h))
	size := domain.Size{Width: width, Height: height}
	if errW != nil || errH != nil || size.IsEmpty() {
		return domain.Size{}, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}
	if err := size.ValidateExport(); err != nil {
		return domain.Size{}, err
	}
	return size, nil
}

// SetTitle implements ports.Window.
func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	changed := title != t.title
	t.title = title
	t.mu.Unlock()

	if changed {
		t.out.SetWindowTitle(title)
	}
}

// Title returns the last title set.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// ShowMessage implements ports.Window.
func (t *Terminal) ShowMessage(ctx context.Context, title, text string) {
	label := t.out.String(title + ":").Bold().Foreground(t.out.Color("#a78bfa"))
	t.printf("%s %s\n", label, text)
}

// Close implements ports.Window.
func (t *Terminal) Close(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.printf("Bye!\n")
	return nil
}

// Closed reports whether Close was called.
func (t *Terminal) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}
