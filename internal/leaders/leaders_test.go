package leaders

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/parser"
	"github.com/pable/hoopstats/internal/roster"
	"github.com/pable/hoopstats/internal/storage"
)

// fakeSource serves canned CSV text per source and counts calls.
type fakeSource struct {
	mu    sync.Mutex
	csv   map[string]string
	fail  map[string]bool
	calls atomic.Int32
}

func (f *fakeSource) Records(ctx context.Context, src string) ([]parser.Record, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[src] {
		return nil, fmt.Errorf("fetch %s: HTTP 502", src)
	}
	text, ok := f.csv[src]
	if !ok {
		return nil, fmt.Errorf("fetch %s: HTTP 404", src)
	}
	return parser.Parse(text).Records, nil
}

const (
	annCSV = "date,team,fg,fga,pts\n" +
		"2025-09-01,Pretty Good Basketball Team,5,10,12\n" +
		"2025-09-08,pretty-good,5,10,12\n" +
		"2025-09-15,Duncles,9,9,30\n"
	boCSV = "date,team,fg,fga,pts\n" +
		"2025-09-01,Pretty Good,3,8,9\n" +
		"2025-09-08,Pretty Good,3,8,9\n"
	cyCSV = "META,2025-09-01,duncles,pretty-good,60,75\n" +
		"date,team_slug,fg,fga,pts,or,dr\n" +
		"2025-09-01,duncles,4,6,10,2,3\n"
)

const playersJSON = `[
  {"slug": "ann-lee", "name": "Ann Lee", "csvUrl": "file:///ann"},
  {"slug": "bo-park", "name": "Bo Park", "csvUrl": "file:///bo"},
  {"slug": "cy-dunn", "name": "Cy Dunn", "csvUrl": "file:///cy"},
  {"slug": "dee-no-sheet", "name": "Dee NoSheet"}
]`

const teamsJSON = `[
  {"slug": "pretty-good", "name": "Pretty Good", "roster": ["bo-park", "ann-lee", "dee-no-sheet", "ghost"]},
  {"slug": "duncles", "name": "Duncles", "roster": ["cy-dunn", "ann-lee"]}
]`

func newFixture(t *testing.T) (*roster.Listing, *fakeSource) {
	t.Helper()
	l, err := roster.Decode([]byte(playersJSON), []byte(teamsJSON))
	require.NoError(t, err)
	src := &fakeSource{
		csv:  map[string]string{"file:///ann": annCSV, "file:///bo": boCSV, "file:///cy": cyCSV},
		fail: map[string]bool{},
	}
	return l, src
}

var buildTime = time.Date(2025, 9, 23, 12, 0, 0, 0, time.UTC)

func newBuilder(src Source) *Builder {
	return NewBuilder(src, BuilderOptions{Workers: 2, Now: func() time.Time { return buildTime }})
}

func TestBuildScenario(t *testing.T) {
	l, src := newFixture(t)
	a, err := newBuilder(src).Build(context.Background(), l)
	require.NoError(t, err)

	assert.Equal(t, model.ArtifactVersion, a.Version)
	assert.Equal(t, buildTime, a.GeneratedAt)
	// Ann is on two rosters but fetched once.
	assert.Equal(t, int32(3), src.calls.Load())

	team, ok := a.Teams["pretty-good"]
	require.True(t, ok)
	assert.Equal(t, "Pretty Good", team.Name)
	require.Len(t, team.Players, 3)

	avg, ok := team.Leaders.Lookup(model.ModeAvg, model.StatPTS)
	require.True(t, ok)
	require.Len(t, avg, 3)
	assert.Equal(t, "ann-lee", avg[0].PlayerID)
	assert.Equal(t, 12.0, avg[0].Value)
	assert.Equal(t, "bo-park", avg[1].PlayerID)
	assert.Equal(t, 9.0, avg[1].Value)
	assert.Equal(t, "dee-no-sheet", avg[2].PlayerID)
	assert.Equal(t, 0.0, avg[2].Value)

	tot, _ := team.Leaders.Lookup(model.ModeTot, model.StatPTS)
	assert.Equal(t, 24.0, tot[0].Value)
	assert.Equal(t, 18.0, tot[1].Value)

	var ann model.PlayerEntry
	for _, p := range team.Players {
		if p.PlayerID == "ann-lee" {
			ann = p
		}
	}
	assert.Equal(t, 2, ann.Games)
	assert.Equal(t, 0.5, ann.Avg.FGPct)

	dun := a.Teams["duncles"]
	require.Len(t, dun.Players, 2)
	assert.Equal(t, "cy-dunn", dun.Players[0].PlayerID)
	assert.Equal(t, 5.0, dun.Players[0].Tot.TRB)
	assert.Equal(t, 30.0, dun.Players[1].Tot.PTS)

	for _, mode := range model.Modes {
		for _, st := range model.RankedStats {
			_, ok := team.Leaders.Lookup(mode, st)
			assert.True(t, ok, "%s/%s missing", mode, st)
		}
	}
}

func TestBuildDegradesFailedPlayer(t *testing.T) {
	l, src := newFixture(t)
	src.fail["file:///bo"] = true

	a, err := newBuilder(src).Build(context.Background(), l)
	require.NoError(t, err)

	team := a.Teams["pretty-good"]
	require.Len(t, team.Players, 3)
	assert.Equal(t, "bo-park", team.Players[0].PlayerID)
	assert.Equal(t, 0, team.Players[0].Games)
	assert.Equal(t, model.StatVector{}, team.Players[0].Tot)

	avg, _ := team.Leaders.Lookup(model.ModeAvg, model.StatPTS)
	assert.Equal(t, "ann-lee", avg[0].PlayerID)
}

func TestBuildRejectsTeamCollision(t *testing.T) {
	l, err := roster.Decode([]byte(`[]`), []byte(`[
	  {"slug": "reds", "name": "Reds"},
	  {"slug": "the-reds", "name": "Reds"}
	]`))
	require.NoError(t, err)

	_, err = newBuilder(&fakeSource{}).Build(context.Background(), l)
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrCollision))
}

func TestBuildCancelled(t *testing.T) {
	l, src := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(src).Build(ctx, l)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankIsStableOnTies(t *testing.T) {
	entries := []model.PlayerEntry{
		{PlayerID: "a", Tot: model.StatVector{PTS: 10}},
		{PlayerID: "b", Tot: model.StatVector{PTS: 20}},
		{PlayerID: "c", Tot: model.StatVector{PTS: 10}},
		{PlayerID: "d", Tot: model.StatVector{PTS: 20}},
	}
	got := Rank(entries, model.ModeTot, model.StatPTS)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.PlayerID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestFilterTeamByFreeText(t *testing.T) {
	l, _ := newFixture(t)
	teams, err := identity.NewResolver(l.TeamEntities())
	require.NoError(t, err)
	recs := parser.Parse(annCSV).Records

	for _, query := range []string{"pretty-good", "Pretty Good", "pretty good"} {
		got, slug, err := FilterTeam(recs, teams, query)
		require.NoError(t, err, query)
		assert.Equal(t, "pretty-good", slug, query)
		assert.Len(t, got, 2, query)
	}

	got, slug, err := FilterTeam(recs, teams, "Duncles")
	require.NoError(t, err)
	assert.Equal(t, "duncles", slug)
	require.Len(t, got, 1)
	assert.Equal(t, "30", got[0].Get("pts"))

	_, _, err = FilterTeam(recs, teams, "Nobody FC")
	assert.True(t, errors.Is(err, ErrUnknownTeam))

	got, slug, err = FilterTeam(recs, nil, "Pretty Good")
	require.NoError(t, err)
	assert.Equal(t, "pretty-good", slug)
	assert.Len(t, got, 2)
}

// ---- Reader ----

func newReader(t *testing.T, path string, l *roster.Listing, src Source, opts ReaderOptions) *Reader {
	t.Helper()
	return NewReader(path, l, newBuilder(src), opts)
}

func TestReaderServesArtifact(t *testing.T) {
	l, src := newFixture(t)
	a, err := newBuilder(src).Build(context.Background(), l)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "leaders.json")
	require.NoError(t, storage.SaveArtifact(path, a))

	src.calls.Store(0)
	r := newReader(t, path, l, src, ReaderOptions{})
	list, res, err := r.Leaders(context.Background(), "pretty-good", model.ModeAvg, model.StatPTS)
	require.NoError(t, err)
	assert.Equal(t, OriginArtifact, res.Origin)
	assert.Equal(t, "ann-lee", list[0].PlayerID)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestReaderLiveMatchesBatch(t *testing.T) {
	l, src := newFixture(t)
	batch, err := newBuilder(src).Build(context.Background(), l)
	require.NoError(t, err)

	r := newReader(t, filepath.Join(t.TempDir(), "absent.json"), l, src, ReaderOptions{})
	for _, slug := range []string{"pretty-good", "duncles"} {
		for _, mode := range model.Modes {
			for _, st := range model.RankedStats {
				live, res, err := r.Leaders(context.Background(), slug, mode, st)
				require.NoError(t, err)
				assert.Equal(t, OriginLive, res.Origin)
				assert.Equal(t, ReasonMissingArtifact, res.Reason)
				want, _ := batch.Teams[slug].Leaders.Lookup(mode, st)
				assert.Equal(t, want, live, "%s %s/%s", slug, mode, st)
			}
		}
	}
}

func TestReaderLiveIsMemoised(t *testing.T) {
	l, src := newFixture(t)
	r := newReader(t, filepath.Join(t.TempDir(), "absent.json"), l, src, ReaderOptions{})

	_, err := r.Team(context.Background(), "pretty-good")
	require.NoError(t, err)
	first := src.calls.Load()
	_, err = r.Team(context.Background(), "Pretty Good")
	require.NoError(t, err)
	assert.Equal(t, first, src.calls.Load())
}

func TestReaderFallbackReasons(t *testing.T) {
	l, src := newFixture(t)
	a, err := newBuilder(src).Build(context.Background(), l)
	require.NoError(t, err)

	t.Run("stale version", func(t *testing.T) {
		stale := *a
		stale.Version = 0
		path := filepath.Join(t.TempDir(), "leaders.json")
		require.NoError(t, storage.SaveArtifact(path, &stale))

		res, err := newReader(t, path, l, src, ReaderOptions{}).Team(context.Background(), "pretty-good")
		require.NoError(t, err)
		assert.Equal(t, OriginLive, res.Origin)
		assert.Equal(t, ReasonStaleVersion, res.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "leaders.json")
		require.NoError(t, storage.SaveArtifact(path, a))
		now := func() time.Time { return buildTime.Add(48 * time.Hour) }

		res, err := newReader(t, path, l, src, ReaderOptions{MaxAge: 24 * time.Hour, Now: now}).Team(context.Background(), "pretty-good")
		require.NoError(t, err)
		assert.Equal(t, ReasonExpired, res.Reason)
	})

	t.Run("missing team", func(t *testing.T) {
		partial := *a
		partial.Teams = map[string]model.TeamEntry{"duncles": a.Teams["duncles"]}
		path := filepath.Join(t.TempDir(), "leaders.json")
		require.NoError(t, storage.SaveArtifact(path, &partial))

		res, err := newReader(t, path, l, src, ReaderOptions{}).Team(context.Background(), "Pretty Good Basketball Team")
		require.NoError(t, err)
		assert.Equal(t, "pretty-good", res.Slug)
		assert.Equal(t, ReasonMissingTeam, res.Reason)
	})

	t.Run("missing stat", func(t *testing.T) {
		entry := a.Teams["pretty-good"]
		trimmed := model.TeamEntry{Name: entry.Name, Players: entry.Players, Leaders: model.Leaders{
			model.ModeAvg: {model.StatPTS: entry.Leaders[model.ModeAvg][model.StatPTS]},
		}}
		partial := &model.Artifact{GeneratedAt: a.GeneratedAt, Version: a.Version, Teams: map[string]model.TeamEntry{"pretty-good": trimmed}}
		path := filepath.Join(t.TempDir(), "leaders.json")
		require.NoError(t, storage.SaveArtifact(path, partial))

		list, res, err := newReader(t, path, l, src, ReaderOptions{}).Leaders(context.Background(), "pretty-good", model.ModeTot, model.StatPTS)
		require.NoError(t, err)
		assert.Equal(t, ReasonMissingStat, res.Reason)
		want, _ := a.Teams["pretty-good"].Leaders.Lookup(model.ModeTot, model.StatPTS)
		assert.Equal(t, want, list)
	})
}

func TestReaderErrors(t *testing.T) {
	l, src := newFixture(t)
	r := newReader(t, filepath.Join(t.TempDir(), "absent.json"), l, src, ReaderOptions{})

	_, err := r.Team(context.Background(), "Nobody FC")
	assert.True(t, errors.Is(err, ErrUnknownTeam))

	_, _, err = r.Leaders(context.Background(), "pretty-good", model.ModeAvg, "dunks")
	assert.True(t, errors.Is(err, ErrUnknownStat))

	artifactOnly := NewReader(filepath.Join(t.TempDir(), "absent.json"), nil, nil, ReaderOptions{})
	_, err = artifactOnly.Team(context.Background(), "pretty-good")
	assert.True(t, errors.Is(err, ErrUnknownTeam))
}
