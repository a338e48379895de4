package main

import (
	"fmt"

	"github.com/DonovanMods/modlist-installer/internal/source/googledrive"

	"github.com/spf13/cobra"
)

var fixURLModlist bool

var fixURLCmd = &cobra.Command{
	Use:   "fix-url [url...]",
	Short: "Convert Google Drive share links into direct download links",
	Long: `Print the direct download form of each Google Drive share link given.
Other links are printed unchanged.

With --modlist, every Drive link in the modlist is rewritten and saved.

Examples:
  modlist fix-url "https://drive.google.com/file/d/abc123/view?usp=sharing"
  modlist fix-url --modlist`,
	RunE: runFixURL,
}

func init() {
	fixURLCmd.Flags().BoolVar(&fixURLModlist, "modlist", false, "rewrite the links stored in the modlist")

	rootCmd.AddCommand(fixURLCmd)
}

func runFixURL(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if !fixURLModlist {
		if len(args) == 0 {
			return fmt.Errorf("no URL given; pass one or more URLs, or use --modlist")
		}
		for _, raw := range args {
			fmt.Fprintln(out, googledrive.FixURL(raw))
		}
		return nil
	}

	service, err := initService(nil)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	list, err := service.Store().LoadModlist()
	if err != nil {
		return err
	}

	changed := 0
	for i, mod := range list.Mods {
		fixed := googledrive.FixURL(mod.DownloadURL)
		if fixed == mod.DownloadURL {
			continue
		}
		list.Mods[i].DownloadURL = fixed
		changed++
		fmt.Fprintf(out, "%s: %s\n", mod.Name, fixed)
	}

	if changed == 0 {
		fmt.Fprintln(out, "No links needed fixing.")
		return nil
	}
	if err := service.Store().SaveModlist(list); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %d link(s).\n", changed)
	return nil
}
