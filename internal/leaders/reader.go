package leaders

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/model"
	"github.com/pable/hoopstats/internal/roster"
	"github.com/pable/hoopstats/internal/storage"
)

var (
	ErrUnknownTeam = errors.New("unknown team")
	ErrUnknownStat = errors.New("unknown stat")
)

// Origin tells where a result came from.
type Origin string

const (
	OriginArtifact Origin = "artifact"
	OriginLive     Origin = "live"
)

// Fallback reasons.
const (
	ReasonMissingArtifact    = "missing_artifact"
	ReasonUnreadableArtifact = "unreadable_artifact"
	ReasonStaleVersion       = "stale_version"
	ReasonExpired            = "expired"
	ReasonMissingTeam        = "missing_team"
	ReasonMissingStat        = "missing_stat"
)

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// MaxAge marks an artifact stale once it is older; 0 disables the check.
	MaxAge  time.Duration
	Logger  *logging.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Reader serves team entries from the artifact and recomputes them live
// when the artifact is absent, stale or lacks what was asked for.
type Reader struct {
	path    string
	listing *roster.Listing
	builder *Builder
	maxAge  time.Duration
	logger  *logging.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	loadOnce sync.Once
	artifact *model.Artifact
	stale    string

	group singleflight.Group
	mu    sync.Mutex
	live  map[string]model.TeamEntry
}

// NewReader returns a Reader over the artifact at path. listing and builder
// back the live path and may be nil when only the artifact should be used.
func NewReader(path string, listing *roster.Listing, builder *Builder, opts ReaderOptions) *Reader {
	r := &Reader{
		path:    path,
		listing: listing,
		builder: builder,
		maxAge:  opts.MaxAge,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		live:    make(map[string]model.TeamEntry),
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Result is a team entry plus where it came from.
type Result struct {
	Slug   string
	Team   model.TeamEntry
	Origin Origin
	// Reason is set when Origin is live.
	Reason string
}

// Artifact returns the artifact when it is present and fresh.
func (r *Reader) Artifact() (*model.Artifact, bool) {
	r.load()
	return r.artifact, r.artifact != nil && r.stale == ""
}

func (r *Reader) load() {
	r.loadOnce.Do(func() {
		a, err := storage.LoadArtifact(r.path)
		switch {
		case errors.Is(err, storage.ErrArtifactNotFound):
			r.stale = ReasonMissingArtifact
			return
		case err != nil:
			r.logger.Warn("artifact unreadable, serving live", "path", r.path, "error", err)
			r.stale = ReasonUnreadableArtifact
			return
		}
		r.artifact = a
		switch {
		case a.Version != model.ArtifactVersion:
			r.logger.Warn("artifact version mismatch, serving live", "path", r.path, "version", a.Version, "want", model.ArtifactVersion)
			r.stale = ReasonStaleVersion
		case r.maxAge > 0 && r.now().Sub(a.GeneratedAt) > r.maxAge:
			r.logger.Warn("artifact expired, serving live", "path", r.path, "generated_at", a.GeneratedAt)
			r.stale = ReasonExpired
		}
	})
}

// Resolve maps a slug or free-text team label to a team slug.
func (r *Reader) Resolve(query string) (string, error) {
	r.load()
	if r.artifact != nil && r.stale == "" {
		if _, ok := r.artifact.Teams[query]; ok {
			return query, nil
		}
	}
	if r.listing == nil {
		return "", errors.Wrapf(ErrUnknownTeam, "%q", query)
	}
	if _, ok := r.listing.Team(query); ok {
		return query, nil
	}
	resolver, err := identity.NewResolver(r.listing.TeamEntities())
	if err != nil {
		return "", err
	}
	res := resolver.Resolve(query)
	if !res.Found {
		return "", errors.Wrapf(ErrUnknownTeam, "%q", query)
	}
	if res.Ambiguous() {
		r.logger.Warn("team query matches several teams", "query", query, "chosen", res.Entity.Slug)
	}
	return res.Entity.Slug, nil
}

// Team returns the entry for a team.
func (r *Reader) Team(ctx context.Context, query string) (Result, error) {
	slug, err := r.Resolve(query)
	if err != nil {
		return Result{}, err
	}
	if a, ok := r.Artifact(); ok {
		if entry, ok := a.Teams[slug]; ok {
			return Result{Slug: slug, Team: entry, Origin: OriginArtifact}, nil
		}
		return r.liveTeam(ctx, slug, ReasonMissingTeam)
	}
	return r.liveTeam(ctx, slug, r.stale)
}

// Leaders returns the ranked list for (mode, stat) of a team.
func (r *Reader) Leaders(ctx context.Context, query string, mode model.Mode, stat model.Stat) ([]model.LeaderEntry, Result, error) {
	if _, ok := model.ParseMode(string(mode)); !ok {
		return nil, Result{}, errors.Wrapf(ErrUnknownStat, "mode %q", mode)
	}
	if _, ok := model.ParseStat(string(stat)); !ok {
		return nil, Result{}, errors.Wrapf(ErrUnknownStat, "%q", stat)
	}
	res, err := r.Team(ctx, query)
	if err != nil {
		return nil, Result{}, err
	}
	if list, ok := res.Team.Leaders.Lookup(mode, stat); ok {
		return list, res, nil
	}
	if res.Origin == OriginArtifact {
		res, err = r.liveTeam(ctx, res.Slug, ReasonMissingStat)
		if err != nil {
			return nil, Result{}, err
		}
		if list, ok := res.Team.Leaders.Lookup(mode, stat); ok {
			return list, res, nil
		}
	}
	return Rank(res.Team.Players, mode, stat), res, nil
}

func (r *Reader) liveTeam(ctx context.Context, slug, reason string) (Result, error) {
	if r.listing == nil || r.builder == nil {
		return Result{}, errors.Wrapf(ErrUnknownTeam, "%q not in artifact and no live source", slug)
	}
	r.mu.Lock()
	entry, ok := r.live[slug]
	r.mu.Unlock()
	if ok {
		return Result{Slug: slug, Team: entry, Origin: OriginLive, Reason: reason}, nil
	}

	r.metrics.LiveFallback(reason)
	r.logger.InfoContext(ctx, "recomputing team live", "team", slug, "reason", reason)
	v, err, _ := r.group.Do(slug, func() (any, error) {
		entry, err := r.builder.BuildTeam(ctx, r.listing, slug)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.live[slug] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Slug: slug, Team: v.(model.TeamEntry), Origin: OriginLive, Reason: reason}, nil
}
