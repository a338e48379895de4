package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent install attempts",
	Long: `Show recorded install attempts, newest first.

Examples:
  modlist history
  modlist history --limit 50`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	service, err := initService(nil)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	entries, err := service.History(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No installs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tMOD\tVERSION\tSTATUS\tREASON")
	fmt.Fprintln(w, "----\t---\t-------\t------\t------")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.InstalledAt.Local().Format(time.DateTime),
			truncate(e.ModName, 40),
			version,
			e.Status,
			truncate(e.Reason, 60),
		)
	}
	w.Flush()
	return nil
}
