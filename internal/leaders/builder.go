// Package leaders builds the ranked leaderboard artifact and serves it back
// with a live recomputation fallback.
package leaders

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/pable/hoopstats/internal/aggregator"
	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/parser"
	"github.com/pable/hoopstats/internal/roster"
)

// Source yields the per-game records behind a player's CSV reference.
type Source interface {
	Records(ctx context.Context, src string) ([]parser.Record, error)
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Workers caps concurrent fetches; 0 runs one worker per source.
	Workers int
	Logger  *logging.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Builder fetches roster CSVs and aggregates them into team entries.
type Builder struct {
	source  Source
	workers int
	logger  *logging.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

func NewBuilder(source Source, opts BuilderOptions) *Builder {
	b := &Builder{
		source:  source,
		workers: opts.Workers,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if b.logger == nil {
		b.logger = logging.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Build fetches every rostered player once and assembles the artifact.
// Per-player fetch failures degrade that player to no rows; only a team
// identity collision or a cancelled context fails the build.
func (b *Builder) Build(ctx context.Context, listing *roster.Listing) (*model.Artifact, error) {
	resolver, err := identity.NewResolver(listing.TeamEntities())
	if err != nil {
		return nil, errors.Wrap(err, "index teams")
	}

	var players []model.Player
	seen := make(map[string]bool)
	for _, t := range listing.Teams {
		for _, p := range listing.Roster(t) {
			if !seen[p.Slug] {
				seen[p.Slug] = true
				players = append(players, p)
			}
		}
	}

	rows, err := b.fetchAll(ctx, players)
	if err != nil {
		return nil, err
	}

	f := newTeamFilter(resolver, b.logger, b.metrics)
	a := &model.Artifact{
		GeneratedAt: b.now().UTC(),
		Version:     model.ArtifactVersion,
		Teams:       make(map[string]model.TeamEntry, len(listing.Teams)),
	}
	for _, t := range listing.Teams {
		a.Teams[t.Slug] = teamEntry(t, listing.Roster(t), rows, f)
	}
	return a, nil
}

// BuildTeam recomputes one team from its roster's sources. It runs the same
// aggregation as Build, so for the same inputs both produce identical numbers.
func (b *Builder) BuildTeam(ctx context.Context, listing *roster.Listing, slug string) (model.TeamEntry, error) {
	team, ok := listing.Team(slug)
	if !ok {
		return model.TeamEntry{}, errors.Wrapf(ErrUnknownTeam, "%q", slug)
	}
	resolver, err := identity.NewResolver(listing.TeamEntities())
	if err != nil {
		return model.TeamEntry{}, errors.Wrap(err, "index teams")
	}
	members := listing.Roster(team)
	rows, err := b.fetchAll(ctx, members)
	if err != nil {
		return model.TeamEntry{}, err
	}
	return teamEntry(team, members, rows, newTeamFilter(resolver, b.logger, b.metrics)), nil
}

// fetchAll returns each player's records keyed by slug. Players without a
// source, or whose fetch failed, map to nil.
func (b *Builder) fetchAll(ctx context.Context, players []model.Player) (map[string][]parser.Record, error) {
	var tasks []model.Player
	for _, p := range players {
		if p.CSVURL != "" {
			tasks = append(tasks, p)
		}
	}
	out := make(map[string][]parser.Record, len(players))
	if len(tasks) == 0 {
		return out, nil
	}

	workerCount := b.workers
	if workerCount <= 0 || workerCount > len(tasks) {
		workerCount = len(tasks)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	// Each task writes only its own slot.
	results := make([][]parser.Record, len(tasks))
	var workers sync.WaitGroup
	for i, p := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = b.fetchPlayer(ctx, p)
		}); err != nil {
			workers.Done()
			b.logger.WarnContext(ctx, "submit fetch task failed", "player", p.Slug, "error", err)
			b.metrics.PlayerDegraded()
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, p := range tasks {
		out[p.Slug] = results[i]
	}
	return out, nil
}

func (b *Builder) fetchPlayer(ctx context.Context, p model.Player) []parser.Record {
	recs, err := b.source.Records(ctx, p.CSVURL)
	if err != nil {
		if ctx.Err() == nil {
			b.logger.WarnContext(ctx, "player csv unavailable, using no rows", "player", p.Slug, "error", err)
			b.metrics.PlayerDegraded()
		}
		return nil
	}
	b.logger.DebugContext(ctx, "player csv fetched", "player", p.Slug, "rows", len(recs))
	return recs
}

func teamEntry(t model.Team, members []model.Player, rows map[string][]parser.Record, f *teamFilter) model.TeamEntry {
	entries := make([]model.PlayerEntry, 0, len(members))
	for _, p := range members {
		sum := aggregator.Aggregate(f.keep(rows[p.Slug], t.Slug))
		entries = append(entries, model.PlayerEntry{
			PlayerID: p.Slug,
			Name:     p.Name,
			Games:    sum.Games,
			Avg:      sum.Average,
			Tot:      sum.Total,
		})
	}
	return model.TeamEntry{
		Name:    t.Name,
		Players: entries,
		Leaders: RankAll(entries),
	}
}

// teamFilter keeps the rows whose team cell resolves to a given team.
type teamFilter struct {
	resolver *identity.Resolver
	logger   *logging.Logger
	metrics  *metrics.Recorder
	cache    map[string]identity.Resolution
}

func newTeamFilter(r *identity.Resolver, logger *logging.Logger, m *metrics.Recorder) *teamFilter {
	return &teamFilter{resolver: r, logger: logger, metrics: m, cache: make(map[string]identity.Resolution)}
}

func (f *teamFilter) keep(recs []parser.Record, slug string) []parser.Record {
	var out []parser.Record
	for _, rec := range recs {
		if res := f.resolve(aggregator.TeamOf(rec)); res.Found && res.Entity.Slug == slug {
			out = append(out, rec)
		}
	}
	return out
}

func (f *teamFilter) resolve(cell string) identity.Resolution {
	if res, ok := f.cache[cell]; ok {
		return res
	}
	res := f.resolver.Resolve(cell)
	if res.Ambiguous() {
		slugs := make([]string, len(res.Candidates))
		for i, c := range res.Candidates {
			slugs[i] = c.Slug
		}
		f.logger.Warn("team cell matches several teams, fix the sheet", "cell", cell, "candidates", slugs, "chosen", res.Entity.Slug)
		f.metrics.IdentityAmbiguous()
	}
	f.cache[cell] = res
	return res
}

// FilterTeam keeps the records whose team cell resolves to the team named by
// query, a slug or free text. It returns the resolved slug. With a nil
// resolver, cells are matched against query itself.
func FilterTeam(recs []parser.Record, teams *identity.Resolver, query string) ([]parser.Record, string, error) {
	if teams == nil {
		slug := identity.Slug(query)
		var out []parser.Record
		for _, rec := range recs {
			if identity.Matches(aggregator.TeamOf(rec), slug, query) {
				out = append(out, rec)
			}
		}
		return out, slug, nil
	}
	res := teams.Resolve(query)
	if !res.Found {
		return nil, "", errors.Wrapf(ErrUnknownTeam, "%q", query)
	}
	f := newTeamFilter(teams, logging.Default(), nil)
	return f.keep(recs, res.Entity.Slug), res.Entity.Slug, nil
}
