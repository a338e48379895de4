package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/DonovanMods/modlist-installer/internal/core"
	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/tui/theme"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user interrupts an operation.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.1.0"

	// Global flags
	configDir   string
	dataDir     string
	modsDir     string
	parallelism int
	verbose     bool
	jsonOutput  bool
	noColor     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modlist",
	Short: "Starsector Modlist Installer",
	Long: `modlist downloads and installs every mod of a Starsector modlist into
the game's mods directory. Download links are checked first; mods that are
already installed are skipped.

Use subcommands for operations. Run 'modlist --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			diag.SetLevel(log.DebugLevel)
		}
	},
}

// diag carries diagnostics to stderr, apart from the installer's own log
var diag = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "modlist",
	Level:  log.WarnLevel,
})

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/modlist)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/modlist)")
	rootCmd.PersistentFlags().StringVarP(&modsDir, "mods-dir", "m", "", "Starsector mods directory (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&parallelism, "parallel", "p", 0, "concurrent downloads (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, validate, scan, history)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService creates the core service; logger receives installer progress
func initService(logger domain.Logger) (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	diag.Debug("starting service", "config", cfg.ConfigDir, "data", cfg.DataDir)
	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir:   configDir,
		DataDir:     dataDir,
		ModsDir:     modsDir,
		Parallelism: parallelism,
	}

	if cfg.ConfigDir != "" && cfg.DataDir != "" {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
	}

	// Apply defaults
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = filepath.Join(homeDir, ".config", "modlist")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "modlist")
	}

	return cfg, nil
}

// consoleLogger prints installer log lines, styled by severity when color is on
type consoleLogger struct {
	mu    sync.Mutex
	out   io.Writer
	theme *theme.Theme // nil prints plain text
}

func newConsoleLogger(out io.Writer) *consoleLogger {
	return &consoleLogger{out: out}
}

// setTheme switches styling on; nil or disabled color keeps plain text
func (l *consoleLogger) setTheme(th *theme.Theme) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if colorEnabled() {
		l.theme = th
	}
}

// Log implements domain.Logger
func (l *consoleLogger) Log(msg string, sev domain.Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme != nil {
		msg = l.theme.Render(msg, sev)
	}
	fmt.Fprintln(l.out, msg)
}
