package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/leaders"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/report"
)

var teamMode string

var teamCmd = &cobra.Command{
	Use:   "team <team>",
	Short: "Show every player's stat line for a team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeam,
}

func init() {
	teamCmd.Flags().StringVar(&teamMode, "mode", string(model.ModeAvg), "avg or tot")
}

func runTeam(cmd *cobra.Command, args []string) error {
	mode, ok := model.ParseMode(teamMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (want avg or tot)", teamMode)
	}
	res, err := newReader().Team(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("team: %w", err)
	}
	origin := string(res.Origin)
	if res.Origin == leaders.OriginLive {
		origin += " (" + res.Reason + ")"
	}
	report.PrintTeam(os.Stdout, res.Slug, res.Team, mode, origin)
	return nil
}
