package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/leaders"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/report"
	"github.com/pable/hoopstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the leaders artifact. Live recomputations are kept for the whole session. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// session holds what the REPL keeps between commands.
type session struct {
	ctx    context.Context
	reader *leaders.Reader
	db     *storage.DB
}

func (s *session) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	s := &session{ctx: cmd.Context(), reader: newReader()}
	defer s.close()

	cGreeting.Println("hoopstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("hoopstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			s.list()
		case "leaders":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: leaders <team> [stat] [avg|tot] [limit]")
				continue
			}
			s.leaders(args)
		case "team":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: team <team> [avg|tot]")
				continue
			}
			s.team(args)
		case "summary":
			s.summary()
		case "sql":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			s.sql(strings.Join(args, " "))
		case "reload":
			s.close()
			*s = session{ctx: s.ctx, reader: newReader()}
			cMuted.Println("artifact reloaded")
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list teams in the artifact"},
		{"leaders <team> [stat] [avg|tot] [n]", "ranked leaders for one stat (default pts avg)"},
		{"team <team> [avg|tot]", "every player's line for a team"},
		{"summary", "league overview and top scorers"},
		{"sql <query>", "raw SQL against the artifact tables"},
		{"reload", "re-read the artifact and drop live results"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (s *session) list() {
	a, ok := s.reader.Artifact()
	if !ok {
		cMuted.Println("No fresh artifact. Teams are computed live on request.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-24s  %-28s  %7s\n", "SLUG", "NAME", "PLAYERS")
	cMuted.Fprintf(os.Stdout, "%-24s  %-28s  %7s\n",
		"────────────────────────", "────────────────────────────", "───────")
	for _, slug := range a.TeamSlugs() {
		t := a.Teams[slug]
		fmt.Fprintf(os.Stdout, "%-24s  %-28s  %7d\n", slug, t.Name, len(t.Players))
	}
}

func (s *session) leaders(args []string) {
	stat, mode, limit := model.StatPTS, model.ModeAvg, 0
	for _, a := range args[1:] {
		if st, ok := model.ParseStat(a); ok {
			stat = st
		} else if m, ok := model.ParseMode(a); ok {
			mode = m
		} else if n, err := strconv.Atoi(a); err == nil {
			limit = n
		} else {
			cError.Fprintf(os.Stderr, "unknown argument %q\n", a)
			return
		}
	}
	list, res, err := s.reader.Leaders(s.ctx, args[0], mode, stat)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if res.Origin == leaders.OriginLive {
		cWarn.Fprintf(os.Stderr, "computed live (%s)\n", res.Reason)
	}
	report.PrintLeaders(os.Stdout, res.Team.Name, mode, stat, list, limit)
}

func (s *session) team(args []string) {
	mode := model.ModeAvg
	if len(args) > 1 {
		m, ok := model.ParseMode(args[1])
		if !ok {
			cError.Fprintf(os.Stderr, "unknown mode %q\n", args[1])
			return
		}
		mode = m
	}
	res, err := s.reader.Team(s.ctx, args[0])
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	origin := string(res.Origin)
	if res.Origin == leaders.OriginLive {
		origin += " (" + res.Reason + ")"
	}
	report.PrintTeam(os.Stdout, res.Slug, res.Team, mode, origin)
}

func (s *session) summary() {
	a, ok := s.reader.Artifact()
	if !ok {
		cMuted.Println("No fresh artifact. Run 'hoopstats build' first.")
		return
	}
	report.PrintArtifactSummary(os.Stdout, a)
}

func (s *session) sql(query string) {
	if s.db == nil {
		db, _, err := openArtifactDB()
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		s.db = db
	}
	cols, rows, err := s.db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintRaw(os.Stdout, cols, rows)
}
