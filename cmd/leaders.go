package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/leaders"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/report"
)

var (
	leadersStat  string
	leadersMode  string
	leadersLimit int
)

var leadersCmd = &cobra.Command{
	Use:   "leaders <team>",
	Short: "Show a team's ranked leaders for one stat",
	Long: `Print the ranked leaders of a team for one stat, read from the artifact.
The team may be given as a slug or a free-text name. When the artifact is
missing, stale or lacks the team or stat, the list is recomputed live from
the team's sheets.

Stats: pts trb ast stl blk tov fgm fga 3pm 3pa oreb dreb.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeaders,
}

func init() {
	leadersCmd.Flags().StringVar(&leadersStat, "stat", string(model.StatPTS), "stat to rank by")
	leadersCmd.Flags().StringVar(&leadersMode, "mode", string(model.ModeAvg), "avg or tot")
	leadersCmd.Flags().IntVarP(&leadersLimit, "limit", "n", 0, "show at most n players (0 = all)")
}

func runLeaders(cmd *cobra.Command, args []string) error {
	stat, ok := model.ParseStat(leadersStat)
	if !ok {
		return fmt.Errorf("unknown stat %q", leadersStat)
	}
	mode, ok := model.ParseMode(leadersMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (want avg or tot)", leadersMode)
	}

	list, res, err := newReader().Leaders(cmd.Context(), args[0], mode, stat)
	if err != nil {
		return fmt.Errorf("leaders: %w", err)
	}
	if res.Origin == leaders.OriginLive {
		fmt.Fprintf(os.Stderr, "Computed live (%s).\n", res.Reason)
	}
	report.PrintLeaders(os.Stdout, res.Team.Name, mode, stat, list, leadersLimit)
	return nil
}
