package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/heimer"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/spf13/cobra"
)

// Options holds everything given on the command line.
// Empty values mean "not given" and leave the configuration untouched.
type Options struct {
	File        string
	Lang        string
	ConfigPath  string
	Debug       bool
	NoBanner    bool
	MetricsAddr string
	Settings    string
	RedisURL    string
}

// NewCommand builds the command tree. run is called with the parsed options
// when the editor should start.
func NewCommand(opts *Options, run func(cmd *cobra.Command, opts Options) error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "heimer [options] [mindMapFile]",
		Short: "Heimer is a mind map editor for the terminal",
		Long: `Heimer edits mind maps: nodes with text, connected by edges.
A file given as argument is opened at startup.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.File = args[0]
			}
			return run(cmd, *opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.Lang, "lang", "", "Force the UI language, e.g. \"fi\"")
	flags.StringVar(&opts.ConfigPath, "config", "", "Configuration file (default: user config dir)")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging on stderr")
	flags.BoolVar(&opts.NoBanner, "no-banner", false, "Do not print the banner")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve /metrics, /state and /events on this address")
	flags.StringVar(&opts.Settings, "settings", "", "Settings backend: file, redis or memory")
	flags.StringVar(&opts.RedisURL, "redis-url", "", "Redis URL for the redis settings backend")

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of heimer",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "heimer version %s\n", heimer.Version)
		},
	}
}

// ParseArgs parses the command line. Help and version output go to out and
// yield domain.ErrExitRequested: the caller should exit successfully.
func ParseArgs(args []string, out io.Writer) (Options, error) {
	var opts Options
	var parsed *Options
	cmd := NewCommand(&opts, func(_ *cobra.Command, o Options) error {
		parsed = &o
		return nil
	})
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)

	if err := cmd.Execute(); err != nil {
		return Options{}, err
	}
	if parsed == nil {
		return Options{}, domain.ErrExitRequested
	}
	return *parsed, nil
}
