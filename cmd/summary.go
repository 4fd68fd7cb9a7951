package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/report"
)

var (
	summaryStat  string
	summaryMode  string
	summaryLimit int
)

// summaryCmd is the cobra command for a league-wide overview of the artifact.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a league overview of the leaders artifact",
	Long: `Display when the artifact was generated, one line per team with its top
scorer, and a cross-team ranking for one stat.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryStat, "stat", string(model.StatPTS), "stat for the league ranking (ranked stats or fgPct, tpPct, ftPct)")
	summaryCmd.Flags().StringVar(&summaryMode, "mode", string(model.ModeAvg), "avg or tot")
	summaryCmd.Flags().IntVarP(&summaryLimit, "limit", "n", 10, "league ranking size")
}

func runSummary(cmd *cobra.Command, args []string) error {
	mode, ok := model.ParseMode(summaryMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (want avg or tot)", summaryMode)
	}
	db, a, err := openArtifactDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(a.Teams) == 0 {
		fmt.Fprintln(os.Stdout, "Artifact has no teams. Check the teams listing and run 'hoopstats build'.")
		return nil
	}
	report.PrintArtifactSummary(os.Stdout, a)

	rows, err := db.LeagueLeaders(mode, summaryStat, summaryLimit)
	if err != nil {
		return fmt.Errorf("league leaders: %w", err)
	}
	report.PrintLeagueLeaders(os.Stdout, mode, summaryStat, rows)
	return nil
}
