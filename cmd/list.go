package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/storage"
)

// listCmd prints the teams listing next to what the artifact holds.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List listed teams and whether the artifact covers them",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	listing, err := loadListing()
	if err != nil {
		return err
	}
	if len(listing.Teams) == 0 {
		fmt.Fprintln(os.Stdout, "No teams listed.")
		return nil
	}

	var a *model.Artifact
	if loaded, err := storage.LoadArtifact(cfg.ArtifactPath); err == nil {
		a = loaded
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-28s  %7s  %8s\n", "SLUG", "NAME", "ROSTER", "ARTIFACT")
	fmt.Fprintf(os.Stdout, "%-24s  %-28s  %7s  %8s\n",
		"────────────────────────", "────────────────────────────", "───────", "────────")
	for _, t := range listing.Teams {
		covered := "no"
		if a != nil {
			if _, ok := a.Teams[t.Slug]; ok {
				covered = "yes"
			}
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-28s  %7d  %8s\n", t.Slug, t.Name, len(listing.Roster(t)), covered)
	}
	if a != nil {
		fmt.Fprintf(os.Stdout, "\nArtifact generated %s\n", a.GeneratedAt.Format("2006-01-02 15:04:05Z07:00"))
	}
	return nil
}
