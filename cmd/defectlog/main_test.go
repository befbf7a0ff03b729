package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rpggio/defectlog/internal/config"
	"github.com/rpggio/defectlog/internal/jsonfile"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	storePath string
	exportDir string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := cliEnv{
		storePath: filepath.Join(dir, "registros_defeitos.json"),
		exportDir: filepath.Join(dir, "Relatorios_Defeitos"),
	}
	t.Setenv("DEFECTLOG_CONFIG_PATH", "")
	t.Setenv("DEFECTLOG_STORE_PATH", env.storePath)
	t.Setenv("DEFECTLOG_EXPORT_DIR", env.exportDir)
	t.Setenv("DEFECTLOG_LOG_LEVEL", "error")
	return env
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func listJSON(t *testing.T) []map[string]any {
	t.Helper()
	out, err := run(t, "list", "--json")
	require.NoError(t, err)
	var views []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	return views
}

func TestCLI_AddListEdit(t *testing.T) {
	env := newCLIEnv(t)

	out, err := run(t, "add", "94,5", "risco", "na", "lateral")
	require.NoError(t, err)
	require.Contains(t, out, "94,5%  risco na lateral")

	_, err = run(t, "add", "94.5", "x")
	require.Error(t, err)

	_, err = run(t, "add", "100")
	require.Error(t, err)

	views := listJSON(t)
	require.Len(t, views, 1)
	require.Equal(t, true, views[0]["low"])

	out, err = run(t, "edit", "--index", "0", "97", "retrabalhado")
	require.NoError(t, err)
	require.Contains(t, out, "97,0%")

	_, err = run(t, "edit", "--id", views[0]["id"].(string), "98,1", "ok")
	require.NoError(t, err)

	_, err = run(t, "edit", "98", "ok")
	require.ErrorContains(t, err, "--id or --index")

	out, err = run(t, "edit", "--index", "0", "-", "mantido")
	require.NoError(t, err)
	require.Contains(t, out, "98,1%  mantido")

	out, err = run(t, "add", "--keys", "9x75", "bolha")
	require.NoError(t, err)
	require.Contains(t, out, "97,5%  bolha")

	out, err = run(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "98,1%")
	require.NotContains(t, out, "LOW")
	require.Len(t, listJSON(t), 2)

	data, err := os.ReadFile(env.storePath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"qualidade": "98,1%"`)
}

func TestCLI_ExportAndClear(t *testing.T) {
	env := newCLIEnv(t)

	out, err := run(t, "export")
	require.NoError(t, err)
	require.Contains(t, out, "no records")
	_, err = os.Stat(env.exportDir)
	require.True(t, os.IsNotExist(err))

	_, err = run(t, "add", "94,0", "a")
	require.NoError(t, err)
	_, err = run(t, "add", "99", "b")
	require.NoError(t, err)

	out, err = run(t, "export")
	require.NoError(t, err)
	require.Contains(t, out, "exported 2 records (1 low quality)")
	require.Len(t, listJSON(t), 2)

	out, err = run(t, "export", "--trigger", "18:10")
	require.NoError(t, err)
	require.Contains(t, out, "removed 2 records")
	require.Contains(t, out, "_1810.csv")
	require.Empty(t, listJSON(t))

	_, err = run(t, "export", "--trigger", "1810")
	require.Error(t, err)

	_, err = run(t, "add", "99", "c")
	require.NoError(t, err)
	_, err = run(t, "clear")
	require.ErrorContains(t, err, "--yes")
	out, err = run(t, "clear", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "deleted 1 records")
	require.Empty(t, listJSON(t))
}

func TestCLI_Next(t *testing.T) {
	newCLIEnv(t)
	t.Setenv("DEFECTLOG_TRIGGERS", "06:00")

	out, err := run(t, "next")
	require.NoError(t, err)
	require.Regexp(t, `^Next export: \d{2}/\d{2}/\d{4} 06:00\n$`, out)
}

func TestCLI_ConfigFlag(t *testing.T) {
	newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "defectlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  triggers: [\"07:15\"]\n"), 0o644))

	out, err := run(t, "--config", path, "next")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "07:15"))

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "next")
	require.ErrorContains(t, err, "config error")
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "defectlog.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer w.Close()
	w.max, w.keep = 100, 40

	_, err = w.Write([]byte(strings.Repeat("a", 90)))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("b", 30)))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", 10)+strings.Repeat("b", 30), string(data))
}

func TestCLI_MutationsRefusedWhileServing(t *testing.T) {
	env := newCLIEnv(t)

	_, err := run(t, "add", "99", "antes do servidor")
	require.NoError(t, err)

	// a running "defectlog serve" holds this lock
	held, err := jsonfile.TryLock(env.storePath)
	require.NoError(t, err)

	for _, args := range [][]string{
		{"add", "94,0", "perdido"},
		{"edit", "--index", "0", "50", "x"},
		{"clear", "--yes"},
		{"export"},
		{"export", "--trigger", "18:10"},
		{"serve", "--transport", "http"},
	} {
		_, err := run(t, args...)
		require.ErrorIs(t, err, jsonfile.ErrLocked, args)
		require.ErrorContains(t, err, "defectlog serve", args)
	}

	views := listJSON(t)
	require.Len(t, views, 1)
	require.Equal(t, "antes do servidor", views[0]["occurrence"])

	require.NoError(t, held.Unlock())
	_, err = run(t, "add", "94,0", "depois")
	require.NoError(t, err)
	require.Len(t, listJSON(t), 2)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServe_LogsSchedulerStartOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "registros_defeitos.json")
	cfg.Export.Dir = filepath.Join(dir, "Relatorios_Defeitos")
	cfg.Transport.Mode = "http"
	cfg.Server.Port = 0

	logs := &syncBuffer{}
	a, err := newApp(context.Background(), cfg, logs)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.serve(ctx))

	require.Equal(t, 1, strings.Count(logs.String(), "scheduler started"))
}

func TestNewLogger_FallbackNamesConsole(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var out bytes.Buffer
	logger, closeLog, err := newLogger(config.LogConfig{Level: "info", Path: filepath.Join(blocker, "defectlog.log")}, &out)
	require.NoError(t, err)
	defer closeLog()
	logger.Info("hello")

	require.Contains(t, out.String(), "logging to console")
	require.NotContains(t, out.String(), "stderr")
	require.Contains(t, out.String(), "hello")
}
