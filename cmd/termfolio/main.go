package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noahjenkins/termfolio/internal/commands"
	"github.com/noahjenkins/termfolio/internal/config"
	"github.com/noahjenkins/termfolio/internal/events"
	"github.com/noahjenkins/termfolio/internal/logging"
	"github.com/noahjenkins/termfolio/internal/processor"
	"github.com/noahjenkins/termfolio/internal/render"
	"github.com/noahjenkins/termfolio/internal/session"
	"github.com/noahjenkins/termfolio/internal/telemetry"
	"github.com/noahjenkins/termfolio/internal/tui"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var runProgram = func(model tea.Model, options ...tea.ProgramOption) error {
	_, err := tea.NewProgram(model, options...).Run()
	return err
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(ctx, logging.WithLevel(cfg.Level()), logging.WithMaxFiles(cfg.LogMaxFiles))
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", closeErr)
		}
	}()

	cmd := newRootCommand(ctx, cfg, logger)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return err
	}

	return nil
}

type rootFlags struct {
	charInterval string
	linePause    string
	otelEndpoint string
}

func newRootCommand(ctx context.Context, cfg *config.Config, logger *logging.RuntimeLogger) *cobra.Command {
	flags := &rootFlags{}
	shutdownTelemetry := func() {}

	root := &cobra.Command{
		Use:           "termfolio",
		Short:         "Interactive resume terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerminal(cmd, cfg, logger, cfg.Variant)
		},
	}

	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	root.PersistentFlags().StringVar(&flags.charInterval, "char-interval", "", "delay between typed characters (overrides config)")
	root.PersistentFlags().StringVar(&flags.linePause, "line-pause", "", "pause after each typed line (overrides config)")
	root.PersistentFlags().StringVar(&flags.otelEndpoint, "otel-endpoint", "", "OTLP/HTTP collector URL (overrides config and environment)")

	root.AddCommand(
		newTerminalCommand(config.VariantWindow, "Open the terminal window", cfg, logger),
		newTerminalCommand(config.VariantOverlay, "Start hidden and toggle the terminal with ctrl+`", cfg, logger),
		newExecCommand(logger),
		newBugreportCommand(logger),
	)

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if logger == nil {
			return errors.New("logger is required")
		}
		if cfg == nil {
			return errors.New("config is required")
		}
		if err := flags.apply(cfg); err != nil {
			return err
		}
		if flags.otelEndpoint != "" {
			telemetry.SetEndpointOverride(flags.otelEndpoint)
		}

		telemetry.ServiceVersion = Version
		shutdown, err := telemetry.Init(cmd.Context(), telemetry.Options{
			Endpoint: cfg.OTel.Endpoint,
			SpanDir:  logger.Dir(),
			Warn: func(msg string, keyvals ...any) {
				logger.Logger.Warn(msg, keyvals...)
			},
		})
		if err != nil {
			return fmt.Errorf("initialize telemetry: %w", err)
		}
		shutdownTelemetry = shutdown

		logger.Logger.With("command", cmd.Name()).Debug("command invocation")
		return nil
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		shutdownTelemetry()
	}

	root.SetContext(ctx)
	return root
}

// apply parses duration flags over the loaded config.
func (f *rootFlags) apply(cfg *config.Config) error {
	if f.charInterval != "" {
		value, err := config.ParseDuration(f.charInterval, "char-interval")
		if err != nil {
			return err
		}
		cfg.CharInterval = value
	}
	if f.linePause != "" {
		value, err := config.ParseDuration(f.linePause, "line-pause")
		if err != nil {
			return err
		}
		cfg.LinePause = value
	}
	return nil
}

func newTerminalCommand(variant, short string, cfg *config.Config, logger *logging.RuntimeLogger) *cobra.Command {
	return &cobra.Command{
		Use:   variant,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerminal(cmd, cfg, logger, variant)
		},
	}
}

func newExecCommand(logger *logging.RuntimeLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run one terminal command and print its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := processor.New(commands.Builtin())
			if err != nil {
				return fmt.Errorf("create processor: %w", err)
			}

			input := strings.Join(args, " ")
			result := proc.Process(cmd.Context(), input)
			if logger != nil {
				logger.Logger.Info("exec command", "command", result.Command, "lines", len(result.Output))
			}
			if commands.IsClearSignal(result.Output) {
				return nil
			}
			return printLines(cmd.OutOrStdout(), result.Output)
		},
	}
}

func runTerminal(cmd *cobra.Command, cfg *config.Config, logger *logging.RuntimeLogger, variant string) error {
	ctx := cmd.Context()
	bus := events.New(events.WithLogger(logger.Logger))
	defer bus.Close()

	proc, err := processor.New(commands.Builtin())
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}
	controller := session.New(
		proc,
		session.WithTiming(render.Timing{CharInterval: cfg.CharInterval, LinePause: cfg.LinePause}),
		session.WithWelcome(commands.Welcome(variant == config.VariantOverlay)),
		session.WithGeometry(session.Geometry{Size: session.Size{Width: cfg.Window.Width, Height: cfg.Window.Height}}),
		session.WithMinSize(session.Size{Width: cfg.Window.MinWidth, Height: cfg.Window.MinHeight}),
		session.WithBus(bus),
		session.WithLogger(logger.Logger),
		session.WithContext(ctx),
	)

	bus.SubscribeAll(func(event events.Event) {
		logger.Logger.Debug("session event", "type", event.Type, "session_id", event.SessionID, "payload", event.Payload)
	})
	bus.Subscribe(events.EventTypeSessionOpened, func(event events.Event) {
		logger.Logger.Info("session mounted", "session_id", event.SessionID, "variant", variant)
	})

	model := tui.NewModel(controller, tui.Options{Variant: variant, Prompt: cfg.Prompt, Title: cfg.Title})
	logger.Logger.Info("starting terminal", "variant", variant)
	if err := runProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithOutput(cmd.OutOrStdout()),
	); err != nil {
		return fmt.Errorf("run terminal: %w", err)
	}
	return nil
}

func printLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
