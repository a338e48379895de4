package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the mods of the modlist",
	Long: `List every mod of the modlist grouped by category, with the version
recorded at the last successful install.

Examples:
  modlist list
  modlist list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	service, err := initService(nil)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	list, err := service.Store().LoadModlist()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(list)
	}

	categories, err := service.Store().LoadCategories()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(out, "%s v%s (Starsector %s)\n\n", list.Name, list.Version, list.GameVersion)
	}

	if len(list.Mods) == 0 {
		fmt.Fprintln(out, "The modlist is empty.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tNAME\tVERSION\tINSTALLED\tURL")
	fmt.Fprintln(w, "--------\t----\t-------\t---------\t---")

	for _, group := range groupByCategory(list.Mods, categories) {
		for _, mod := range group.mods {
			version := mod.Version
			if version == "" {
				version = "-"
			}
			installed := "-"
			if last, err := service.LastInstalled(mod.Name); err != nil {
				diag.Debug("reading history", "mod", mod.Name, "err", err)
			} else if last != nil {
				installed = last.InstalledAt.Local().Format(time.DateOnly)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", group.name, truncate(mod.Name, 40), version, installed, mod.DownloadURL)
		}
	}
	w.Flush()

	if verbose {
		fmt.Fprintf(out, "\nTotal: %d mod(s)\n", len(list.Mods))
	}

	return nil
}

type categoryGroup struct {
	name string
	mods []domain.ModDescriptor
}

// groupByCategory orders mods by the category list; unknown categories
// follow in first-seen order and mods without one go last.
func groupByCategory(mods []domain.ModDescriptor, categories []string) []categoryGroup {
	index := make(map[string]int)
	var groups []categoryGroup
	add := func(name string) {
		if _, ok := index[name]; !ok {
			index[name] = len(groups)
			groups = append(groups, categoryGroup{name: name})
		}
	}

	for _, c := range categories {
		add(c)
	}
	for _, m := range mods {
		if m.Category != "" {
			add(m.Category)
		}
	}
	add("")

	for _, m := range mods {
		i := index[m.Category]
		groups[i].mods = append(groups[i].mods, m)
	}

	nonEmpty := groups[:0]
	for _, g := range groups {
		if len(g.mods) == 0 {
			continue
		}
		if g.name == "" {
			g.name = "(none)"
		}
		nonEmpty = append(nonEmpty, g)
	}
	return nonEmpty
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
