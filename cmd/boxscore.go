package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/aggregator"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/report"
)

var boxscoreCmd = &cobra.Command{
	Use:   "boxscore <sheet>",
	Short: "Print a single-game box score with team totals",
	Long: `Read a game sheet (URL, local path, .gz or .zst) in the ingest layout,
optionally headed by a META row, and print every player's line plus a
team totals row.`,
	Args: cobra.ExactArgs(1),
	RunE: runBoxscore,
}

func runBoxscore(cmd *cobra.Command, args []string) error {
	tbl, err := newSheetsClient(metrics.New()).Table(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if len(tbl.Records) == 0 {
		fmt.Fprintln(os.Stderr, "No player rows found.")
		return nil
	}
	report.PrintBoxScore(os.Stdout, aggregator.Box(tbl))
	return nil
}
