package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Show the mods found in the mods directory",
	Long: `Read mod_info.json from every folder of the mods directory and report
the mod id and version. Folders without one are ignored.

Examples:
  modlist scan --mods-dir ~/starsector/mods`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	service, err := initService(nil)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	mods, err := service.ScanInstalled()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		type scanJSON struct {
			Dir     string `json:"dir"`
			ID      string `json:"id,omitempty"`
			Version string `json:"version"`
		}
		rows := make([]scanJSON, len(mods))
		for i, m := range mods {
			rows[i] = scanJSON{Dir: m.Dir, ID: m.ID, Version: m.Version}
		}
		return json.NewEncoder(out).Encode(rows)
	}

	if len(mods) == 0 {
		fmt.Fprintln(out, "No mods found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FOLDER\tID\tVERSION")
	fmt.Fprintln(w, "------\t--\t-------")
	for _, m := range mods {
		id := m.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(m.Dir, 40), id, m.Version)
	}
	w.Flush()

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s)\n", len(mods))
	}
	return nil
}
