package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/heimer"
	"github.com/aretw0/heimer/internal/adapters/file"
	"github.com/aretw0/heimer/internal/adapters/redis"
	"github.com/aretw0/heimer/internal/config"
	"github.com/aretw0/heimer/internal/logging"
	"github.com/aretw0/heimer/internal/metrics"
	"github.com/aretw0/heimer/internal/presentation/tui"
	"github.com/aretw0/heimer/pkg/adapters/alz"
	heimerhttp "github.com/aretw0/heimer/pkg/adapters/http"
	"github.com/aretw0/heimer/pkg/adapters/memory"
	"github.com/aretw0/heimer/pkg/adapters/png"
	"github.com/aretw0/heimer/pkg/adapters/terminal"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/aretw0/heimer/pkg/mediator"
	"github.com/aretw0/heimer/pkg/ports"
	"github.com/aretw0/heimer/pkg/runner"
)

// App is a fully wired editor.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Mediator *mediator.Mediator
	Runner   *runner.Runner
	Terminal *terminal.Terminal
	Metrics  *metrics.Metrics
	Server   *heimerhttp.Server
	Settings ports.SettingsStore

	render  func(string) (string, error)
	closers []func() error
}

// ResolveConfig loads the configuration file and applies the command line on top.
func ResolveConfig(opts Options) (config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if opts.Lang != "" {
		cfg.Lang = opts.Lang
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if opts.Settings != "" {
		cfg.Settings.Backend = opts.Settings
	}
	if opts.RedisURL != "" {
		cfg.Settings.RedisURL = opts.RedisURL
	}
	return cfg, cfg.Validate()
}

// NewApp wires the editor around a line reader. Prompts and messages go to out.
func NewApp(cfg config.Config, rl terminal.LineReader, out io.Writer, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &App{
		Config: cfg,
		Logger: logger,
		render: tui.PlainRenderer(),
	}

	settings, closeSettings, err := openSettings(cfg.Settings)
	if err != nil {
		return nil, err
	}
	a.Settings = settings
	if closeSettings != nil {
		a.closers = append(a.closers, closeSettings)
	}

	a.Metrics = metrics.New()
	a.Terminal = terminal.New(rl, out, terminal.WithTransparentByDefault(cfg.Export.Transparent))

	a.Mediator = mediator.New(
		mediator.WithCodec(alz.New()),
		mediator.WithExporter(png.New()),
		mediator.WithLogger(logger),
		mediator.WithUndoLimit(cfg.UndoLimit),
		mediator.WithLifecycleHooks(a.Metrics.Hooks()),
	)

	a.Server = heimerhttp.NewServer(nil, a.Mediator,
		heimerhttp.WithMetrics(a.Metrics.Handler()),
		heimerhttp.WithVersion(heimer.Version),
		heimerhttp.WithLogger(logger),
	)

	a.Runner, err = runner.New(a.Mediator,
		runner.WithDialogs(a.Terminal),
		runner.WithWindow(a.Terminal),
		runner.WithSettings(settings),
		runner.WithLogger(logger),
		runner.WithExportSize(domain.Size{Width: cfg.Export.Width, Height: cfg.Export.Height}),
		runner.WithLifecycleHooks(domain.ComposeHooks(a.Metrics.Hooks(), a.Server.Hooks())),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Server.State = a.Runner

	logger.Debug("editor wired",
		"lang", cfg.Lang,
		"settings", cfg.Settings.Backend,
		"undo_limit", cfg.UndoLimit,
	)
	return a, nil
}

// SetRenderer replaces the markdown renderer used by the outline view.
func (a *App) SetRenderer(render func(string) (string, error)) {
	a.render = render
}

// Close releases the settings backend.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openSettings(cfg config.Settings) (ports.SettingsStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewSettings(), nil, nil
	case config.BackendFile, "":
		return file.NewSettings(cfg.Path), nil, nil
	case config.BackendRedis:
		opts := []redis.Option{}
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		store, err := redis.NewFromURL(cfg.RedisURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.Backend)
}
