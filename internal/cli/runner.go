package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todolist/internal/config"
	"github.com/idilsaglam/todolist/internal/logging"
	"github.com/idilsaglam/todolist/internal/store"
	"github.com/idilsaglam/todolist/internal/todolist"
	"github.com/idilsaglam/todolist/internal/tui"
	"github.com/idilsaglam/todolist/internal/ui"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// App carries the process edges so commands can be driven from tests.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string

	// AuthDir defaults to ~/.todo.
	AuthDir string
	// RunTUI and Serve default to the real terminal program and HTTP server.
	RunTUI func(ctx context.Context, vm *todolist.ViewModel) error
	Serve  func(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// rootFlags apply to every subcommand.
type rootFlags struct {
	configPath string
	backend    string
	logLevel   string
}

// session is what a command works against once config and store are open.
type session struct {
	cfg    config.Config
	logger *log.Logger
	vm     *todolist.ViewModel
	close  func() error
}

// Run executes args and returns an exit code.
func (a App) Run(ctx context.Context, args []string) int {
	a = a.withDefaults()
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.SetIn(a.Stdin)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(a.Stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitError
}

func (a App) withDefaults() App {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.Stdin == nil {
		a.Stdin = os.Stdin
	}
	if a.Getenv == nil {
		a.Getenv = os.Getenv
	}
	if a.RunTUI == nil {
		a.RunTUI = tui.Run
	}
	if a.Serve == nil {
		a.Serve = serveHTTP
	}
	return a
}

func (a App) newRootCommand() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a tiny list keeper",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return usagef("missing subcommand")
			}
			return usagef("unknown subcommand: %s", args[0])
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})
	pf := root.PersistentFlags()
	pf.StringVar(&rf.configPath, "config", "", "config file (default $TODO_CONFIG or <user config dir>/todo/config.toml)")
	pf.StringVar(&rf.backend, "backend", "", "store backend: json | sqlite | neo4j")
	pf.StringVar(&rf.logLevel, "log-level", "", "log level: debug | info | warn | error")

	root.AddCommand(
		a.newAddCommand(&rf),
		a.newListCommand(&rf),
		a.newToggleCommand(&rf),
		a.newRemoveCommand(&rf),
		a.newServeCommand(&rf),
		a.newAuthCommand(),
	)
	return root
}

// open resolves config, logger and store, then builds the view-model.
func (a App) open(ctx context.Context, rf *rootFlags) (*session, error) {
	cfg, err := a.loadConfig(rf)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(a.Stderr, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "backend", cfg.Store.Backend, "log_level", cfg.Logging.Level)

	repo, closeRepo, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("store open failed", "backend", cfg.Store.Backend, "err", err)
		return nil, fmt.Errorf("open store: %w", err)
	}
	vm, err := todolist.New(ctx, repo, todolist.WithLogger(logger))
	if err != nil {
		_ = closeRepo()
		return nil, err
	}
	f, _ := todolist.ParseFilter(cfg.UI.DefaultFilter)
	vm.ApplyFilter(int(f))
	ui.SetTheme(cfg.UI.Theme)
	return &session{cfg: cfg, logger: logger, vm: vm, close: closeRepo}, nil
}

func (a App) loadConfig(rf *rootFlags) (config.Config, error) {
	path := rf.configPath
	if path == "" {
		path = a.Getenv("TODO_CONFIG")
	}
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "todo", "config.toml")
		}
	}
	cfg, err := config.Load(path, config.Default())
	if err != nil {
		return config.Config{}, err
	}
	if rf.backend != "" {
		cfg.Store.Backend = config.Backend(rf.backend)
	}
	if rf.logLevel != "" {
		cfg.Logging.Level = rf.logLevel
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, usageError{msg: err.Error()}
	}
	return cfg, nil
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		s.logger.Warn("store close failed", "err", err)
	}
}
