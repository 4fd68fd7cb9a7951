package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/ingest"
)

var (
	ingestOut    string
	ingestOutDir string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <export.html>",
	Short: "Convert an EasyStats HTML export into a game sheet CSV",
	Long: `Parse an EasyStats box score export, map abbreviated player cells
("#12 J. Smith") onto listed players and write the game as CSV with a
leading META row. Players that cannot be mapped are reported and skipped.

Output goes to stdout unless --out or --out-dir is given; --out-dir names
the file after the game (date_team1_vs_team2.csv).`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "output file")
	ingestCmd.Flags().StringVar(&ingestOutDir, "out-dir", "", "output directory")
}

func runIngest(cmd *cobra.Command, args []string) error {
	listing, err := loadListing()
	if err != nil {
		return err
	}
	teams, err := identity.NewResolver(listing.TeamEntities())
	if err != nil {
		return fmt.Errorf("team resolver: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	game, err := ingest.Parse(f, ingest.Options{
		Players: ingest.PlayerMapFromListing(listing.Players),
		Teams:   teams,
	})
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	for _, cell := range game.Unmapped {
		logger.Warn("unmapped player", "cell", cell, "file", args[0])
	}

	var w io.Writer = os.Stdout
	path := ingestOut
	if path == "" && ingestOutDir != "" {
		path = filepath.Join(ingestOutDir, game.SheetName()+".csv")
	}
	if path != "" {
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer out.Close()
		w = out
	}
	if err := game.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d players, %d unmapped).\n", path, len(game.Lines), len(game.Unmapped))
	}
	return nil
}
