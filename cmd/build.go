package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/storage"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch every roster sheet and write the leaders artifact",
	Long: `Read the players and teams listings, fetch each rostered player's CSV
(concurrently, one retry per failed fetch), aggregate per team and write
the ranked leaders artifact.

A player whose sheet cannot be fetched is kept with empty stats. A missing
or invalid listing, or two teams sharing a normalized name, aborts the build.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	start := time.Now()

	listing, err := loadListing()
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "build started", "players", len(listing.Players), "teams", len(listing.Teams))

	rec := metrics.New()
	artifact, err := newBuilder(newSheetsClient(rec), rec).Build(ctx, listing)
	if err != nil {
		return fmt.Errorf("build leaders: %w", err)
	}
	if err := storage.SaveArtifact(cfg.ArtifactPath, artifact); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	elapsed := time.Since(start)
	rec.BuildFinished(elapsed, len(artifact.Teams))
	if cfg.MetricsPath != "" {
		if err := rec.WriteTextfile(cfg.MetricsPath); err != nil {
			logger.WarnContext(ctx, "write metrics failed", "path", cfg.MetricsPath, "error", err)
		}
	}

	logger.InfoContext(ctx, "build finished", "teams", len(artifact.Teams), "elapsed", elapsed)
	fmt.Fprintf(os.Stderr, "Wrote %s with %d teams.\n", cfg.ArtifactPath, len(artifact.Teams))
	return nil
}
