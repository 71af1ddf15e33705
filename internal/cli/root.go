// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Command tree and the chat entry point.
//
// Usage:
//   rigchat                          Chat with the default server
//   rigchat --url ws://host:8000/ws  Chat with another server
//   rigchat --plain                  Use the line-mode shell
//   rigchat config init              Write a default config file
//   rigchat config show              Print the effective config
//   rigchat version                  Print version information

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/logging"
	"github.com/jeranaias/rigchat/internal/transport"
	"github.com/jeranaias/rigchat/internal/ui/chat"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Flags holds the global command-line overrides.
type Flags struct {
	ConfigPath string
	URL        string
	EndMarker  string
	LogFile    string
	LogLevel   string
	Theme      string
	Plain      bool
	Timestamps bool
}

// NewRootCommand builds the rigchat command tree.
func NewRootCommand() *cobra.Command {
	flags := &Flags{}

	root := &cobra.Command{
		Use:   "rigchat",
		Short: "Terminal chat client for a streaming WebSocket server",
		Long: `rigchat connects to a chat server over a WebSocket, sends what you type
and shows the reply as it streams in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "config file (default ~/.rigchat/config.toml)")
	pf.StringVarP(&flags.URL, "url", "u", "", "WebSocket endpoint, e.g. ws://localhost:8000/ws")
	pf.StringVar(&flags.EndMarker, "end-marker", "", "frame that ends a reply; empty disables detection")
	pf.StringVar(&flags.LogFile, "log-file", "", "log file path")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	pf.StringVar(&flags.Theme, "theme", "", "color theme (auto, dark, light)")
	pf.BoolVar(&flags.Plain, "plain", false, "use the line-mode shell instead of the full-screen view")
	pf.BoolVar(&flags.Timestamps, "timestamps", false, "show turn timestamps")

	root.AddCommand(newConfigCommand(flags))
	root.AddCommand(newVersionCommand())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(os.Stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

// loadConfig loads the config file and applies flags that were set on the
// command line. Flags win over environment variables and the file.
func loadConfig(cmd *cobra.Command, flags *Flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFromPath(flags.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &configError{err: err}
	}

	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.Server.URL = flags.URL
	}
	if changed("end-marker") {
		cfg.Server.EndOfTurnMarker = flags.EndMarker
	}
	if changed("log-file") {
		cfg.Logging.File = flags.LogFile
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.LogLevel
	}
	if changed("theme") {
		cfg.UI.Theme = flags.Theme
	}
	if changed("plain") {
		cfg.UI.Plain = flags.Plain
	}
	if changed("timestamps") {
		cfg.UI.ShowTimestamps = flags.Timestamps
	}

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: fmt.Errorf("invalid flags: %w", err)}
	}
	return cfg, nil
}

// =============================================================================
// CHAT
// =============================================================================

// runChat opens one session and runs the full-screen view or the line-mode
// shell over it. The session is closed on every exit path.
func runChat(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger, closer, err := logging.Setup(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return &configError{err: err}
	}
	defer closer.Close()

	session := transport.New(cfg.SessionOptions(logger))
	defer session.Close()

	log := logger.With().
		Str("component", "cli").
		Str("session_id", session.ID()).
		Logger()
	log.Info().Str("url", session.URL()).Bool("plain", cfg.UI.Plain).Msg("starting chat")

	if cfg.UI.Plain || !CanUseFullScreen() {
		return runShell(ctx, cfg, session, out, logger)
	}
	return runFullScreen(ctx, cfg, session, logger)
}

func runFullScreen(ctx context.Context, cfg *config.Config, session *transport.Session, logger zerolog.Logger) error {
	m := chat.New(ctx, chat.Options{
		Theme:          styles.NewTheme(cfg.UI.Theme),
		Session:        session,
		Logger:         logger,
		ShowTimestamps: cfg.UI.ShowTimestamps,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat view: %w", err)
	}
	return nil
}

func runShell(ctx context.Context, cfg *config.Config, session *transport.Session, out io.Writer, logger zerolog.Logger) error {
	w := &lockedWriter{w: out}

	var in LineReader
	if IsTTY() {
		line := NewChatCLI()
		defer line.Close()
		in = line
	} else {
		in = newScannerReader(os.Stdin, w)
	}

	return NewShell(session, in, w, logger, ShellOptions{
		EndOfTurn: cfg.Server.EndOfTurnMarker != "",
		Width:     GetTerminalWidth(),
	}).Run(ctx)
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rigchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
