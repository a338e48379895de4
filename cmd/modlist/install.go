package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DonovanMods/modlist-installer/internal/core"
	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/storage/config"
	"github.com/DonovanMods/modlist-installer/internal/tui"
	"github.com/DonovanMods/modlist-installer/internal/tui/theme"

	"github.com/spf13/cobra"
)

var installTUI bool

var installCmd = &cobra.Command{
	Use:   "install [mod names...]",
	Short: "Download and install mods from the modlist",
	Long: `Validate the download links of the modlist and install every mod that
passed into the mods directory. Name mods to install only those.

Mods whose folder already exists are skipped. Ctrl-C cancels the run and
removes partial downloads.

Examples:
  modlist install --mods-dir ~/starsector/mods
  modlist install LazyLib "GraphicsLib"
  modlist install --tui`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installTUI, "tui", false, "pick mods and follow progress in the terminal UI")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	if installTUI {
		if len(args) > 0 {
			return fmt.Errorf("mod names cannot be combined with --tui; mark mods in the UI instead")
		}
		return runInstallTUI(cmd)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newConsoleLogger(cmd.OutOrStdout())
	service, err := initService(logger)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	logger.setTheme(preferredTheme(service))

	outcomes, err := service.Install(ctx, args, core.BatchProgress{
		OnOutcome: func(done, total int, o domain.InstallOutcome) {
			diag.Debug("mod finished", "mod", o.Mod.Name, "status", o.Status, "done", done, "total", total)
		},
	})
	if ctx.Err() != nil {
		return ErrCancelled
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Status == domain.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d mods failed to install", failed, len(outcomes))
	}
	return nil
}

func runInstallTUI(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	bus := tui.NewBus()
	service, err := initService(bus)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	list, err := service.Store().LoadModlist()
	if err != nil {
		return err
	}
	categories, err := service.Store().LoadCategories()
	if err != nil {
		diag.Warn("using default categories", "err", err)
		categories = config.DefaultCategories
	}

	prefs := service.Store().LoadPreferences()
	err = tui.Run(ctx, tui.Config{
		Modlist:    list,
		Categories: categories,
		Runner:     service.Install,
		Bus:        bus,
		Theme:      theme.New(prefs.Theme),
	})
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}

// preferredTheme returns the theme saved in preferences
func preferredTheme(service *core.Service) *theme.Theme {
	th := theme.New(service.Store().LoadPreferences().Theme)
	return &th
}
