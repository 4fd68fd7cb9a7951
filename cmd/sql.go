package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/report"
	"github.com/pable/hoopstats/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the leaders artifact",
	Long: `Load the artifact into an in-memory SQLite database and run an arbitrary
query against it, printing the results as a table.

Schema overview:
  artifact(generated_at, version)
  teams(slug, name)
  players(team_slug, player_id, name, games)
  player_stats(team_slug, player_id, mode, stat, value)
    mode is avg or tot; stat is a ranked stat or fgPct, tpPct, ftPct
  leaders(team_slug, mode, stat, rank, player_id, name, value)

Example: SELECT name, value FROM player_stats JOIN players USING (team_slug, player_id)
         WHERE mode = 'avg' AND stat = 'pts' ORDER BY value DESC LIMIT 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, _, err := openArtifactDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	report.PrintRaw(os.Stdout, cols, rows)
	return nil
}

// openArtifactDB loads the artifact into a fresh in-memory database.
func openArtifactDB() (*storage.DB, *model.Artifact, error) {
	db, a, err := storage.OpenArtifact(cfg.ArtifactPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load artifact: %w (run 'hoopstats build' first)", err)
	}
	return db, a, nil
}
