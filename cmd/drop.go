package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/storage"
)

var dropForce bool

// dropCmd deletes the leaders artifact.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the leaders artifact",
	Long:  "Delete the leaders artifact. Readers fall back to live computation until 'hoopstats build' is run again.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete: %s\n", cfg.ArtifactPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := storage.RemoveArtifact(cfg.ArtifactPath); err != nil {
		if errors.Is(err, storage.ErrArtifactNotFound) {
			fmt.Fprintln(os.Stdout, "Artifact does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove artifact: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.ArtifactPath)
	return nil
}
