package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/aggregator"
	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/leaders"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/report"
)

var (
	playerTeam string
	playerCSV  string
)

// playerCmd prints a career view for one listed player.
var playerCmd = &cobra.Command{
	Use:   "player <player>",
	Short: "Career averages, game highs and season split for one player",
	Long: `Fetch a listed player's sheet, found by slug or name, and print career
averages and totals, single-game highs and a per-season split. With --team
only rows whose team column matches that team are counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().StringVar(&playerTeam, "team", "", "only count rows for this team")
	playerCmd.Flags().StringVar(&playerCSV, "csv", "", "read this sheet instead of the listed one")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	slug := args[0]
	name, src := slug, playerCSV

	var teams *identity.Resolver
	if listing, err := loadListing(); err == nil {
		p, ok := listing.Player(slug)
		if !ok {
			// Free-text lookup: "Ana Ruiz" or "ruiz".
			if players, perr := identity.NewResolver(listing.PlayerEntities()); perr == nil {
				if res := players.Resolve(slug); res.Found {
					p, ok = listing.Player(res.Entity.Slug)
				}
			}
		}
		if ok {
			name = p.Name
			if src == "" {
				src = p.CSVURL
			}
		}
		if playerTeam != "" {
			if teams, err = identity.NewResolver(listing.TeamEntities()); err != nil {
				return fmt.Errorf("team resolver: %w", err)
			}
		}
	} else if src == "" {
		return err
	}
	if src == "" {
		return fmt.Errorf("no sheet for player %q", slug)
	}

	recs, err := newSheetsClient(metrics.New()).Records(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", slug, err)
	}
	if playerTeam != "" {
		if recs, _, err = leaders.FilterTeam(recs, teams, playerTeam); err != nil {
			return err
		}
	}
	if len(recs) == 0 {
		fmt.Fprintf(os.Stderr, "No games found for %s\n", slug)
		return nil
	}

	report.PrintPlayer(os.Stdout, name, aggregator.Aggregate(recs), aggregator.GameHighs(recs), aggregator.BySeason(recs))
	return nil
}
