package identity

import (
	"github.com/cockroachdb/errors"
)

// Entity is a canonical team or player.
type Entity struct {
	Slug string
	Name string
}

// Resolver picks a single canonical entity for a free-text cell.
type Resolver struct {
	entities []Entity
}

// NewResolver indexes entities in listing order. Two entities whose slug
// forms or name word forms coincide are a collision.
func NewResolver(entities []Entity) (*Resolver, error) {
	slugs := make(map[string]string, len(entities))
	words := make(map[string]string, len(entities))
	for _, e := range entities {
		s := Slug(e.Slug)
		if prev, ok := slugs[s]; ok {
			return nil, errors.Wrapf(ErrCollision, "%q and %q share slug %q", prev, e.Slug, s)
		}
		slugs[s] = e.Slug
		if w := Words(e.Name); w != "" {
			if prev, ok := words[w]; ok && prev != e.Slug {
				return nil, errors.Wrapf(ErrCollision, "%q and %q share name %q", prev, e.Slug, w)
			}
			words[w] = e.Slug
		}
	}
	return &Resolver{entities: append([]Entity(nil), entities...)}, nil
}

// Entities returns the indexed entities in listing order.
func (r *Resolver) Entities() []Entity {
	return r.entities
}

// Resolution is the outcome of resolving one cell.
type Resolution struct {
	Entity     Entity
	Found      bool
	Candidates []Entity // all matching entities, listing order
}

// Ambiguous reports whether more than one entity matched.
func (r Resolution) Ambiguous() bool { return len(r.Candidates) > 1 }

// Resolve returns the best entity for cell. An exact slug or word-form
// match wins outright; otherwise the longest canonical slug among the
// containment matches wins, ties going to listing order.
func (r *Resolver) Resolve(cell string) Resolution {
	var res Resolution
	cSlug, cWords := Slug(cell), Words(cell)
	best := -1
	exact := false
	for _, e := range r.entities {
		if !Matches(cell, e.Slug, e.Name) {
			continue
		}
		res.Candidates = append(res.Candidates, e)
		isExact := cSlug == Slug(e.Slug) || cWords == Words(e.Name)
		switch {
		case exact && !isExact:
		case isExact && !exact:
			res.Entity, best, exact = e, len(Slug(e.Slug)), true
		case len(Slug(e.Slug)) > best:
			res.Entity, best = e, len(Slug(e.Slug))
		}
	}
	res.Found = best >= 0
	return res
}

// Is reports whether cell resolves to the entity with the given slug.
func (r *Resolver) Is(cell, slug string) bool {
	res := r.Resolve(cell)
	return res.Found && res.Entity.Slug == slug
}
