package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every download link of the modlist is reachable",
	Long: `Probe the download URL of every mod without downloading it, and group the
results by host. Mods that fail are listed with the reason.

Examples:
  modlist validate
  modlist validate --json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateJSON is the --json shape of a validation run
type validateJSON struct {
	Categories map[string][]string `json:"categories"`
	Other      map[string][]string `json:"other"`
	Failed     []validateFailJSON  `json:"failed"`
}

type validateFailJSON struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := initService(nil)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	result, err := service.Validate(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ErrCancelled
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(toValidateJSON(result))
	}

	for _, category := range []string{domain.CategoryGitHub, domain.CategoryGoogleDrive} {
		printGroup(cmd, category, result.ByCategory[category])
	}
	for _, host := range result.Hosts() {
		printGroup(cmd, host, result.Other[host])
	}

	if len(result.Failed) == 0 {
		fmt.Fprintf(out, "\nAll %d download links are reachable.\n", len(result.Valid))
		return nil
	}

	fmt.Fprintf(out, "\nFailed (%d):\n", len(result.Failed))
	for _, f := range result.Failed {
		fmt.Fprintf(out, "  %s: %s\n", f.Mod.Name, f.Reason)
	}
	return fmt.Errorf("%d of %d download links failed validation", len(result.Failed), len(result.Valid)+len(result.Failed))
}

func printGroup(cmd *cobra.Command, title string, mods []domain.ModDescriptor) {
	if len(mods) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d):\n", title, len(mods))
	for _, m := range mods {
		fmt.Fprintf(out, "  %s\n", m.Name)
	}
}

func toValidateJSON(result *domain.ValidationResult) validateJSON {
	names := func(mods []domain.ModDescriptor) []string {
		out := make([]string, len(mods))
		for i, m := range mods {
			out[i] = m.Name
		}
		return out
	}

	v := validateJSON{
		Categories: make(map[string][]string),
		Other:      make(map[string][]string),
		Failed:     []validateFailJSON{},
	}
	for category, mods := range result.ByCategory {
		v.Categories[category] = names(mods)
	}
	for host, mods := range result.Other {
		v.Other[host] = names(mods)
	}
	for _, f := range result.Failed {
		v.Failed = append(v.Failed, validateFailJSON{Name: f.Mod.Name, URL: f.Mod.DownloadURL, Reason: f.Reason})
	}
	return v
}
