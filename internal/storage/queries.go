package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pable/hoopstats/internal/model"
)

// Import replaces the database contents with the artifact.
func (db *DB) Import(a *model.Artifact) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"leaders", "player_stats", "players", "teams", "artifact"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO artifact(generated_at, version) VALUES (?, ?)`,
		a.GeneratedAt.UTC().Format(time.RFC3339), a.Version); err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}

	teamStmt, err := tx.Prepare(`INSERT INTO teams(slug, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer teamStmt.Close()
	playerStmt, err := tx.Prepare(`INSERT OR REPLACE INTO players(team_slug, player_id, name, games) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer playerStmt.Close()
	statStmt, err := tx.Prepare(`INSERT OR REPLACE INTO player_stats(team_slug, player_id, mode, stat, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer statStmt.Close()
	leaderStmt, err := tx.Prepare(`INSERT INTO leaders(team_slug, mode, stat, rank, player_id, name, value) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer leaderStmt.Close()

	slugs := make([]string, 0, len(a.Teams))
	for slug := range a.Teams {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		team := a.Teams[slug]
		if _, err := teamStmt.Exec(slug, team.Name); err != nil {
			return fmt.Errorf("insert team %s: %w", slug, err)
		}
		for _, p := range team.Players {
			if _, err := playerStmt.Exec(slug, p.PlayerID, p.Name, p.Games); err != nil {
				return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
			}
			for _, mode := range model.Modes {
				vec := p.Vector(mode)
				for _, st := range model.RankedStats {
					v, _ := vec.Value(st)
					if _, err := statStmt.Exec(slug, p.PlayerID, string(mode), string(st), v); err != nil {
						return err
					}
				}
				for st, v := range map[string]float64{"fgPct": vec.FGPct, "tpPct": vec.TPPct, "ftPct": vec.FTPct} {
					if _, err := statStmt.Exec(slug, p.PlayerID, string(mode), st, v); err != nil {
						return err
					}
				}
			}
		}
		for mode, byStat := range team.Leaders {
			for st, list := range byStat {
				for i, e := range list {
					if _, err := leaderStmt.Exec(slug, string(mode), string(st), i+1, e.PlayerID, e.Name, e.Value); err != nil {
						return fmt.Errorf("insert leader %s/%s/%s: %w", slug, mode, st, err)
					}
				}
			}
		}
	}
	return tx.Commit()
}

// LeagueLeader is one row of a cross-team ranking.
type LeagueLeader struct {
	TeamSlug string
	PlayerID string
	Name     string
	Value    float64
}

// LeagueLeaders ranks every player of every team for one (mode, stat).
func (db *DB) LeagueLeaders(mode model.Mode, stat string, limit int) ([]LeagueLeader, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT s.team_slug, s.player_id, p.name, s.value
		FROM player_stats s
		JOIN players p ON p.team_slug = s.team_slug AND p.player_id = s.player_id
		WHERE s.mode = ? AND s.stat = ?
		ORDER BY s.value DESC, s.team_slug, s.player_id
		LIMIT ?`, string(mode), stat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeagueLeader
	for rows.Next() {
		var l LeagueLeader
		if err := rows.Scan(&l.TeamSlug, &l.PlayerID, &l.Name, &l.Value); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and renders every cell as text.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case sql.RawBytes:
		return string(x)
	}
	return fmt.Sprint(v)
}
