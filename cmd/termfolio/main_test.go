package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noahjenkins/termfolio/internal/config"
	"github.com/noahjenkins/termfolio/internal/logging"
	"github.com/noahjenkins/termfolio/internal/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandVersionFlag(t *testing.T) {
	originalVersion := Version
	defer func() {
		Version = originalVersion
	}()
	Version = "v0.1.0-test"
	cmd := newRootCommand(context.Background(), defaultConfig(), testLogger(t))

	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	output := strings.TrimSpace(stdout.String())
	if output != "v0.1.0-test" {
		t.Fatalf("version output = %q, want %q", output, "v0.1.0-test")
	}
}

func TestRootCommandHelpListsExpectedSubcommands(t *testing.T) {
	cmd := newRootCommand(context.Background(), defaultConfig(), testLogger(t))
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	output := stdout.String()
	for _, name := range []string{"window", "overlay", "exec", "bugreport", "--char-interval", "--line-pause"} {
		if !strings.Contains(output, name) {
			t.Fatalf("help output missing %q: %s", name, output)
		}
	}
}

func TestExecPrintsCommandOutput(t *testing.T) {
	stdout := executeForTest(t, defaultConfig(), "exec", "whoami")
	assert.Contains(t, stdout, "Noah Jenkins\n")
	assert.Contains(t, stdout, "Shell: /bin/zsh\n")
}

func TestExecJoinsArgumentsLikeTypedInput(t *testing.T) {
	stdout := executeForTest(t, defaultConfig(), "exec", "cat", "about.txt")
	assert.Contains(t, stdout, "Always learning, always building, always creating.")

	stdout = executeForTest(t, defaultConfig(), "exec", "frobnicate", "now")
	assert.Equal(t, "Command not found: frobnicate\nType 'help' for available commands.\n", stdout)
}

func TestExecClearPrintsNothing(t *testing.T) {
	stdout := executeForTest(t, defaultConfig(), "exec", "clear")
	assert.Equal(t, "", stdout)
}

func TestExecRequiresCommand(t *testing.T) {
	cmd := newRootCommand(context.Background(), defaultConfig(), testLogger(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"exec"})
	assert.Error(t, cmd.Execute())
}

func TestTerminalCommandsRunProgramWithVariant(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		variant     string
		wantVisible bool
	}{
		{name: "root defaults to config variant", args: []string{}, variant: config.VariantWindow, wantVisible: true},
		{name: "window subcommand", args: []string{"window"}, wantVisible: true},
		{name: "overlay subcommand", args: []string{"overlay"}, wantVisible: false},
		{name: "config overlay at root", args: []string{}, variant: config.VariantOverlay, wantVisible: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured *tui.Model
			restore := stubRunProgram(func(model tea.Model, _ ...tea.ProgramOption) error {
				typed, ok := model.(*tui.Model)
				require.True(t, ok, "model type = %T", model)
				captured = typed
				return nil
			})
			defer restore()

			cfg := config.Defaults()
			if tc.variant != "" {
				cfg.Variant = tc.variant
			}
			executeForTest(t, &cfg, tc.args...)

			require.NotNil(t, captured)
			captured.Init()
			view := captured.View()
			if tc.wantVisible {
				assert.Contains(t, view, "[x]")
			} else {
				assert.Contains(t, view, "to open the terminal")
			}
		})
	}
}

func TestDurationFlagsOverrideConfig(t *testing.T) {
	restore := stubRunProgram(func(tea.Model, ...tea.ProgramOption) error { return nil })
	defer restore()

	cfg := config.Defaults()
	executeForTest(t, &cfg, "window", "--char-interval", "0s", "--line-pause", "15ms")
	assert.Equal(t, time.Duration(0), cfg.CharInterval)
	assert.Equal(t, 15*time.Millisecond, cfg.LinePause)

	cmd := newRootCommand(context.Background(), defaultConfig(), testLogger(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"window", "--line-pause=-1s"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line-pause")
}

func executeForTest(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(context.Background(), cfg, testLogger(t))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), stderr.String())
	return stdout.String()
}

func stubRunProgram(fn func(tea.Model, ...tea.ProgramOption) error) func() {
	previous := runProgram
	runProgram = fn
	return func() {
		runProgram = previous
	}
}

func testLogger(t *testing.T) *logging.RuntimeLogger {
	t.Helper()

	logger, err := logging.New(context.Background(), logging.WithDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = logger.Close()
	})
	return logger
}

func defaultConfig() *config.Config {
	cfg := config.Defaults()
	return &cfg
}
