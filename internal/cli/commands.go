package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todolist/internal/auth"
	"github.com/idilsaglam/todolist/internal/httpapi"
	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/todolist"
	"github.com/idilsaglam/todolist/internal/ui"
)

func (a App) newAddCommand(rf *rootFlags) *cobra.Command {
	var priority, category string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <title...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(priority)
			if err != nil {
				return usagef("add: %v", err)
			}
			it, err := model.NewItem(strings.Join(args, " "), p, category)
			if err != nil {
				return usagef("add: %v", err)
			}
			s, err := a.open(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.vm.Add(cmd.Context(), it); err != nil {
				return err
			}
			ui.OK(a.Stdout, "added")
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low | medium | high")
	cmd.Flags().StringVarP(&category, "category", "c", "", "free-form category")
	return cmd
}

func (a App) newListCommand(rf *rootFlags) *cobra.Command {
	var (
		filter      string
		group       bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    noArgs("usage: todo ls [--filter all|done|pending] [--group] [-i]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := applyFilterFlag(cmd, s.vm, filter); err != nil {
				return err
			}
			if interactive {
				return a.RunTUI(cmd.Context(), s.vm)
			}
			if !cmd.Flags().Changed("group") {
				group = s.cfg.UI.Group
			}
			a.printList(s.vm, group)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all | done | pending (default from config)")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group output by pending/done")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open the interactive list")
	return cmd
}

func (a App) printList(vm *todolist.ViewModel, group bool) {
	t := ui.Current()
	done, pending := vm.Stats()
	lines := []string{
		ui.Header(done, pending, todolist.Filter(vm.FilterIndex()).String()),
		t.Muted.Render(ui.ProgressBar(done, done+pending, 28)),
		"",
	}
	if group {
		lines = append(lines, ui.GroupLines(vm.Filtered())...)
	} else {
		lines = append(lines, ui.ItemLines(vm.Filtered())...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	fmt.Fprintln(a.Stdout, ui.Panel(lines))
}

func (a App) newToggleCommand(rf *rootFlags) *cobra.Command {
	return a.indexCommand(rf, "done", "Toggle done for the item at a 1-based index of the listing", "toggled",
		func(ctx context.Context, vm *todolist.ViewModel, it model.Item) error {
			return vm.ToggleCompletion(ctx, it)
		})
}

func (a App) newRemoveCommand(rf *rootFlags) *cobra.Command {
	return a.indexCommand(rf, "rm", "Remove the item at a 1-based index of the listing", "removed",
		func(ctx context.Context, vm *todolist.ViewModel, it model.Item) error {
			return vm.Remove(ctx, it)
		})
}

// indexCommand resolves <index> against the filtered listing, as `ls` with the
// same --filter prints it, then applies op to that item.
func (a App) indexCommand(rf *rootFlags, name, short, okMsg string, op func(context.Context, *todolist.ViewModel, model.Item) error) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   name + " <index>",
		Short: short,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("usage: todo %s <index>", name)
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return usagef("%s: not a number: %s", name, args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := strconv.Atoi(args[0])
			s, err := a.open(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := applyFilterFlag(cmd, s.vm, filter); err != nil {
				return err
			}
			items := s.vm.Filtered()
			if n < 1 || n > len(items) {
				fmt.Fprintln(a.Stderr, ui.Current().Muted.Render("Hint: run `todo ls` to see valid indexes"))
				return usagef("index out of range: have %d, got %d", len(items), n)
			}
			if err := op(cmd.Context(), s.vm, items[n-1]); err != nil {
				return err
			}
			ui.OK(a.Stdout, okMsg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all | done | pending (default from config)")
	return cmd
}

func (a App) newServeCommand(rf *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the list over HTTP",
		Args:  noArgs("usage: todo serve [--addr host:port]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context(), rf)
			if err != nil {
				return err
			}
			defer s.Close()
			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			opts := []httpapi.Option{httpapi.WithLogger(s.logger)}
			if s.cfg.Server.RequireToken {
				ti, err := a.authStore().Get()
				if err != nil {
					return err
				}
				if ti == nil || ti.Token == "" {
					return errors.New("server.require_token is set but no token is configured. Set TODO_TOKEN or run `todo auth login`")
				}
				if ti.Expired(time.Now()) {
					return errors.New("configured token has expired")
				}
				opts = append(opts, httpapi.WithToken(ti.Token))
			}
			s.logger.Info("serving", "addr", addr, "token_required", s.cfg.Server.RequireToken)
			return a.Serve(cmd.Context(), addr, httpapi.NewHandler(s.vm, opts...).Router(), s.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (a App) newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication for `todo serve`",
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return usagef("usage: todo auth <login|logout|status>")
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Store a token read from stdin",
			RunE: func(*cobra.Command, []string) error {
				fmt.Fprint(a.Stdout, "Paste your token: ")
				token, err := bufio.NewReader(a.Stdin).ReadString('\n')
				if err != nil && strings.TrimSpace(token) == "" {
					return fmt.Errorf("read token: %w", err)
				}
				if err := a.authStore().Set(token, nil); err != nil {
					return fmt.Errorf("save token: %w", err)
				}
				ui.OK(a.Stdout, "logged in")
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the stored token",
			RunE: func(*cobra.Command, []string) error {
				st := a.authStore()
				if ti, _ := st.Get(); ti != nil && ti.Source == auth.SourceEnv {
					ui.OK(a.Stdout, "token is provided by "+auth.EnvToken+" env var (nothing to delete)")
					return nil
				}
				if err := st.Delete(); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				ui.OK(a.Stdout, "logged out")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from",
			RunE: func(*cobra.Command, []string) error {
				ti, err := a.authStore().Get()
				if err != nil {
					return err
				}
				if ti == nil {
					fmt.Fprintln(a.Stdout, ui.Current().Muted.Render("not logged in"))
					fmt.Fprintln(a.Stdout, "Run: todo auth login")
					return nil
				}
				fmt.Fprintf(a.Stdout, "source: %s\n", ti.Source)
				if ti.ExpiresAt != nil {
					fmt.Fprintf(a.Stdout, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
				} else {
					fmt.Fprintln(a.Stdout, "expires: (unknown)")
				}
				fmt.Fprintln(a.Stdout, "env override: "+auth.EnvToken)
				return nil
			},
		},
	)
	return cmd
}

func (a App) authStore() auth.Store {
	dir := a.AuthDir
	if dir == "" {
		if d, err := auth.DefaultDir(); err == nil {
			dir = d
		}
	}
	return auth.Store{Dir: dir, Getenv: a.Getenv}
}

func applyFilterFlag(cmd *cobra.Command, vm *todolist.ViewModel, filter string) error {
	if !cmd.Flags().Changed("filter") {
		return nil
	}
	f, err := todolist.ParseFilter(filter)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	vm.ApplyFilter(int(f))
	return nil
}

func noArgs(usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usagef("%s", usage)
		}
		return nil
	}
}

// serveHTTP runs until ctx is canceled, then shuts down gracefully.
func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down", "addr", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
