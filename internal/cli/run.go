package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/heimer"
	"github.com/aretw0/heimer/internal/logging"
	"github.com/aretw0/heimer/internal/presentation/tui"
	"github.com/aretw0/heimer/pkg/adapters/terminal"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/runner"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Run starts the interactive editor and blocks until it is closed,
// input ends or the process is terminated.
func Run(ctx context.Context, opts Options, stdout io.Writer) error {
	cfg, err := ResolveConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel)

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "heimer> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          stdout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	// Readline does not watch the context; closing it unblocks a pending read.
	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	out := rl.Stdout()
	app, err := NewApp(cfg, rl, out, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	fd := int(os.Stdout.Fd())
	interactive := term.IsTerminal(fd)
	if interactive {
		width, _, _ := term.GetSize(fd)
		if render, err := tui.NewRenderer(width); err == nil {
			app.SetRenderer(render)
		} else {
			logger.Warn("markdown renderer unavailable", "error", err)
		}
		if !opts.NoBanner {
			tui.PrintBanner(out, heimer.Version)
		}
	}
	if opts.Lang != "" {
		logger.Info("UI language forced", "lang", cfg.Lang)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := app.Server.ListenAndServe(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("observability server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	if err := app.Runner.Start(ctx, opts.File); err != nil {
		return handleExecutionError(err)
	}

	repl := NewREPL(app, out)
	repl.signals = signals
	printSystemMessage(out, "Type 'help' for the list of commands.")

	err = repl.Loop(ctx, rl)
	if signals.Interrupted() {
		if app.Mediator.IsModified() {
			logger.Warn("terminated with unsaved changes", "file", app.Mediator.FilePath())
		}
		printSystemMessage(out, "Terminated.")
	}
	return handleExecutionError(err)
}

// Loop reads commands until the editor closes, input ends or ctx is canceled.
// Ending the input requests a close; if the user keeps unsaved changes the loop ends anyway.
func (r *REPL) Loop(ctx context.Context, rl terminal.LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.app.Terminal.SetPrompt(r.Prompt())

		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			r.printf("Use 'quit' to exit.\n")
			continue
		case errors.Is(err, io.EOF):
			if r.signals != nil {
				r.signals.CheckRace()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.app.Runner.Dispatch(ctx, domain.ActionRequestClose); err != nil {
				return err
			}
			if !r.app.Runner.Done() {
				r.app.Logger.Warn("input ended before the editor was closed", "modified", r.app.Mediator.IsModified())
			}
			return nil
		case err != nil:
			return err
		}

		if err := r.Execute(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.printf("Error: %v\n", err)
		}
	}
}

// createLogger logs to stderr so it stays apart from the editor output.
func createLogger(level string) *slog.Logger {
	return logging.New(logging.ParseLevel(level))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// handleExecutionError treats cancellation as a normal exit.
func handleExecutionError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// historyFile lives in the user cache dir; an empty result disables history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "heimer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}
