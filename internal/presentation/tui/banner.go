package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Heimer banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Blue to teal, the default edge color fading into the default node color.
	lines := []struct {
		text  string
		color string
	}{
		{" _   _      _                     ", "#3b82f6"},
		{"| | | | ___(_)_ __ ___   ___ _ __ ", "#38bdf8"},
		{"| |_| |/ _ \\ | '_ ` _ \\ / _ \\ '__|", "#22d3ee"},
		{"|  _  |  __/ | | | | | |  __/ |   ", "#2dd4bf"},
		{"|_| |_|\\___|_|_| |_| |_|\\___|_|   ", "#34d399"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  mind maps in the terminal "+version).Faint())
	fmt.Fprintln(w)
}
