// Package main provides the CLI entrypoint for screenplan.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/config"
	"github.com/jmylchreest/screenplan/internal/dbus"
	"github.com/jmylchreest/screenplan/internal/display"
	"github.com/jmylchreest/screenplan/internal/engine"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	settings   *config.Settings
	format     codec.Format
	logger     *slog.Logger
	globalOpts struct {
		verbosity  int
		quiet      bool
		format     string
		inputPath  string
		outputPath string
		configPath string
		fake       bool
	}
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand screenplan runs the pipeline: read the desired
// configuration, resolve it against the attached displays, apply it, and
// print the resulting state.
var rootCmd = &cobra.Command{
	Use:   "screenplan",
	Short: "Tool for configuring and arranging displays",
	Long: `screenplan resolves a desired multi-display arrangement against the
displays currently attached, picks an unambiguous mode for each display, and
applies the change in one transaction.

Running screenplan without a subcommand reads the desired configuration from
standard input (or --input), applies it, and prints the resulting state.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		settings, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		name := globalOpts.format
		if name == "" {
			name = settings.Format
		}
		format, err = codec.ParseFormat(name)
		if err != nil {
			return err
		}

		if globalOpts.inputPath == "" {
			globalOpts.inputPath = settings.Input
		}
		return nil
	},
	RunE: runPipeline,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&globalOpts.verbosity, "verbose", "v",
		"Increase verbosity of information emitted to stderr")
	rootCmd.PersistentFlags().StringVar(&globalOpts.format, "format", "",
		"Serialization format: json or yaml (default from settings, json)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.inputPath, "input", "i", "",
		"File to read the desired configuration from instead of standard input")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to settings file (default: ~/.config/screenplan/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.fake, "fake", false,
		"Use an in-memory fake display backend instead of the compositor")
	_ = rootCmd.PersistentFlags().MarkHidden("fake")

	rootCmd.Flags().BoolVarP(&globalOpts.quiet, "quiet", "q", false,
		"Do not write the resulting state, just provide an exit code")
	rootCmd.Flags().StringVarP(&globalOpts.outputPath, "output", "o", "",
		"File to write to instead of standard output")
}

// setupLogger configures the global slog logger. Logs go to stderr so
// stdout stays clean for state output.
func setupLogger() {
	level := slog.LevelWarn
	switch {
	case globalOpts.verbosity == 1:
		level = slog.LevelInfo
	case globalOpts.verbosity >= 2:
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newBackend returns the display backend selected by the flags.
func newBackend() (display.Backend, error) {
	if globalOpts.fake {
		return display.NewFake(), nil
	}
	return dbus.NewBackend(logger)
}

// newSource builds the desired-configuration source from --input or stdin.
func newSource() (*engine.Source, error) {
	return engine.NewSource(format, os.Stdin, stdinIsTerminal(), globalOpts.inputPath)
}

// stdinIsTerminal reports whether stdin is an interactive terminal rather
// than a pipe or redirect. Reading from a terminal would block forever.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// openOutput returns the writer selected by --output, defaulting to stdout.
// The returned closer is a no-op for stdout.
func openOutput() (io.Writer, func() error, error) {
	if globalOpts.outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(globalOpts.outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening output file: %w", err)
	}
	return f, f.Close, nil
}

// runPipeline is the default one-shot mode: apply the desired configuration
// if one was provided, then print the resulting display state.
func runPipeline(cmd *cobra.Command, args []string) error {
	backend, err := newBackend()
	if err != nil {
		return err
	}
	eng := engine.New(backend, format, logger)

	source, err := newSource()
	if err != nil {
		return err
	}
	groups, err := source.Groups()
	if err != nil {
		return err
	}

	// Empty input is not an error here; the pipeline degrades to printing
	// the current state.
	if len(groups) > 0 {
		if err := eng.Reconfigure(groups); err != nil {
			return err
		}
	}

	if globalOpts.quiet {
		return nil
	}

	snap, err := backend.Snapshot()
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOut()
	return codec.Encode(format, out, engine.SnapshotGroups(snap))
}
