package leaders

import (
	"sort"

	"github.com/pable/hoopstats/internal/model"
)

// Rank orders entries by their (mode, stat) value, highest first. Ties keep
// roster order.
func Rank(entries []model.PlayerEntry, mode model.Mode, stat model.Stat) []model.LeaderEntry {
	out := make([]model.LeaderEntry, len(entries))
	for i, e := range entries {
		v, _ := e.Vector(mode).Value(stat)
		out[i] = model.LeaderEntry{PlayerID: e.PlayerID, Name: e.Name, Value: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// RankAll ranks entries for every mode and every stat of the vocabulary.
func RankAll(entries []model.PlayerEntry) model.Leaders {
	l := make(model.Leaders, len(model.Modes))
	for _, mode := range model.Modes {
		byStat := make(map[model.Stat][]model.LeaderEntry, len(model.RankedStats))
		for _, st := range model.RankedStats {
			byStat[st] = Rank(entries, mode, st)
		}
		l[mode] = byStat
	}
	return l
}
