package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todolist/internal/todolist"
)

type harness struct {
	t       *testing.T
	dir     string
	config  string
	env     map[string]string
	stdin   string
	tuiSeen *todolist.ViewModel
	served  http.Handler
	addr    string
}

func newHarness(t *testing.T, extraConfig string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("[store]\njson_path = %q\nsqlite_path = %q\n%s",
		filepath.Join(dir, "todos.json"), filepath.Join(dir, "todos.db"), extraConfig)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &harness{t: t, dir: dir, config: path, env: map[string]string{}}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errb bytes.Buffer
	app := App{
		Stdout:  &out,
		Stderr:  &errb,
		Stdin:   strings.NewReader(h.stdin),
		Getenv:  func(k string) string { return h.env[k] },
		AuthDir: filepath.Join(h.dir, ".todo"),
		RunTUI: func(_ context.Context, vm *todolist.ViewModel) error {
			h.tuiSeen = vm
			return nil
		},
		Serve: func(_ context.Context, addr string, handler http.Handler, _ *log.Logger) error {
			h.addr = addr
			h.served = handler
			return nil
		},
	}
	code = app.Run(context.Background(), append([]string{"--config", h.config}, args...))
	return code, out.String(), errb.String()
}

func TestAddListToggleRemove(t *testing.T) {
	h := newHarness(t, "")

	code, out, _ := h.run("add", "Buy", "milk", "--priority", "high", "--category", "home")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "added")

	code, _, _ = h.run("add", "Walk dog")
	require.Equal(t, ExitOK, code)

	code, out, _ = h.run("ls")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "[high · home]")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "0/2")

	code, out, _ = h.run("done", "2")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "toggled")

	code, out, _ = h.run("ls", "--filter", "done")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Walk dog")
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "filter: done")

	// index 1 of the done listing is "Walk dog"
	code, _, _ = h.run("done", "1", "--filter", "done")
	require.Equal(t, ExitOK, code)
	code, out, _ = h.run("ls", "--filter", "done")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "no items")

	code, out, _ = h.run("rm", "1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "removed")

	code, out, _ = h.run("ls", "--group")
	require.Equal(t, ExitOK, code)
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Walk dog")
}

func TestSQLiteBackendFlag(t *testing.T) {
	h := newHarness(t, "")

	code, _, _ := h.run("--backend", "sqlite", "add", "stored in sqlite")
	require.Equal(t, ExitOK, code)
	_, err := os.Stat(filepath.Join(h.dir, "todos.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(h.dir, "todos.json"))
	assert.True(t, os.IsNotExist(err))

	_, out, _ := h.run("--backend", "sqlite", "ls")
	assert.Contains(t, out, "stored in sqlite")
	_, out, _ = h.run("ls")
	assert.NotContains(t, out, "stored in sqlite")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t, "")
	code, _, _ := h.run("add", "only")
	require.Equal(t, ExitOK, code)

	cases := []struct {
		args []string
		msg  string
	}{
		{nil, "missing subcommand"},
		{[]string{"frobnicate"}, "unknown subcommand: frobnicate"},
		{[]string{"add"}, "usage: todo add"},
		{[]string{"add", "   "}, "empty title"},
		{[]string{"add", "x", "--priority", "urgent"}, "invalid priority"},
		{[]string{"done"}, "usage: todo done <index>"},
		{[]string{"done", "abc"}, "done: not a number: abc"},
		{[]string{"rm", "5"}, "index out of range: have 1, got 5"},
		{[]string{"rm", "0"}, "index out of range: have 1, got 0"},
		{[]string{"ls", "--filter", "someday"}, "unknown filter"},
		{[]string{"ls", "--nope"}, "unknown flag"},
		{[]string{"--backend", "redis", "ls"}, "store.backend"},
		{[]string{"auth"}, "usage: todo auth"},
	}
	for _, tc := range cases {
		code, _, stderr := h.run(tc.args...)
		assert.Equal(t, ExitUsage, code, "%v", tc.args)
		assert.Contains(t, stderr, tc.msg, "%v", tc.args)
	}

	_, out, _ := h.run("ls")
	assert.Contains(t, out, "only", "failed commands leave the list alone")
}

func TestIndexOutOfRangeHint(t *testing.T) {
	h := newHarness(t, "")
	_, _, stderr := h.run("done", "1")
	assert.Contains(t, stderr, "Hint: run `todo ls`")
}

func TestLoadFailureIsRuntimeError(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "todos.json"), []byte(`{"not":"a list"}`), 0o644))

	code, _, stderr := h.run("ls")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "invalid todo document")
}

func TestConfigDefaults(t *testing.T) {
	h := newHarness(t, "[ui]\ndefault_filter = \"pending\"\ngroup = true\ntheme = \"mono\"\n")
	h.run("add", "a")
	h.run("add", "b")
	h.run("done", "1")

	_, out, _ := h.run("ls")
	assert.Contains(t, out, "filter: pending")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "[ ] b")
	assert.NotContains(t, out, "[x] a")

	_, out, _ = h.run("ls", "--filter", "all", "--group=false")
	assert.Contains(t, out, "[x] a")
	assert.NotContains(t, out, "Pending")
}

func TestInteractiveList(t *testing.T) {
	h := newHarness(t, "")
	h.run("add", "a")

	code, _, _ := h.run("ls", "-i", "--filter", "pending")
	require.Equal(t, ExitOK, code)
	require.NotNil(t, h.tuiSeen)
	assert.Equal(t, int(todolist.FilterPending), h.tuiSeen.FilterIndex())
	assert.Len(t, h.tuiSeen.Filtered(), 1)
}

func TestServe(t *testing.T) {
	h := newHarness(t, "[server]\naddr = \"127.0.0.1:9999\"\n")
	h.run("add", "served")

	code, _, _ := h.run("serve")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "127.0.0.1:9999", h.addr)
	require.NotNil(t, h.served)

	rec := httptest.NewRecorder()
	h.served.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "served")

	code, _, _ = h.run("serve", "--addr", ":7000")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, ":7000", h.addr)
}

func TestServeRequiresToken(t *testing.T) {
	h := newHarness(t, "[server]\nrequire_token = true\n")

	code, _, stderr := h.run("serve")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "no token is configured")

	h.env["TODO_TOKEN"] = "abc"
	code, _, _ = h.run("serve")
	require.Equal(t, ExitOK, code)

	rec := httptest.NewRecorder()
	h.served.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	h.served.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthCommands(t *testing.T) {
	h := newHarness(t, "")

	_, out, _ := h.run("auth", "status")
	assert.Contains(t, out, "not logged in")

	h.stdin = "tok123\n"
	code, out, _ := h.run("auth", "login")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "logged in")

	_, out, _ = h.run("auth", "status")
	assert.Contains(t, out, "source: file")

	code, out, _ = h.run("auth", "logout")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "logged out")

	h.env["TODO_TOKEN"] = "from-env"
	_, out, _ = h.run("auth", "logout")
	assert.Contains(t, out, "nothing to delete")

	h.env = map[string]string{}
	h.stdin = ""
	code, _, _ = h.run("auth", "login")
	assert.Equal(t, ExitError, code)
}
