// Package roster loads the players and teams listings.
package roster

import (
	"net/url"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/pable/hoopstats/internal/identity"
	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/model"
)

// ErrInvalidListing wraps every validation failure of players.json or teams.json.
var ErrInvalidListing = errors.New("invalid listing")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && identity.Slug(s) == s
	})
	// source: an http(s) or file URL, or a local path.
	_ = v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" || strings.TrimSpace(s) != s {
			return false
		}
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		switch u.Scheme {
		case "", "http", "https", "file":
			return true
		}
		return false
	})
	return v
}

// Listing is the validated roster input of a build.
type Listing struct {
	Players []model.Player
	Teams   []model.Team

	players map[string]model.Player
}

// Load reads and validates both listing files.
func Load(playersPath, teamsPath string) (*Listing, error) {
	players, err := os.ReadFile(playersPath)
	if err != nil {
		return nil, errors.Wrap(err, "read players")
	}
	teams, err := os.ReadFile(teamsPath)
	if err != nil {
		return nil, errors.Wrap(err, "read teams")
	}
	return Decode(players, teams)
}

// Decode parses and validates listing JSON documents.
func Decode(playersJSON, teamsJSON []byte) (*Listing, error) {
	l := &Listing{}
	if err := sonic.Unmarshal(playersJSON, &l.Players); err != nil {
		return nil, errors.Wrapf(ErrInvalidListing, "decode players: %v", err)
	}
	if err := sonic.Unmarshal(teamsJSON, &l.Teams); err != nil {
		return nil, errors.Wrapf(ErrInvalidListing, "decode teams: %v", err)
	}

	l.players = make(map[string]model.Player, len(l.Players))
	for i, p := range l.Players {
		if err := validate.Struct(p); err != nil {
			return nil, errors.Wrapf(ErrInvalidListing, "player #%d (%q): %v", i+1, p.Slug, err)
		}
		if _, dup := l.players[p.Slug]; dup {
			return nil, errors.Wrapf(ErrInvalidListing, "duplicate player slug %q", p.Slug)
		}
		l.players[p.Slug] = p
	}
	seen := make(map[string]bool, len(l.Teams))
	for i, t := range l.Teams {
		if err := validate.Struct(t); err != nil {
			return nil, errors.Wrapf(ErrInvalidListing, "team #%d (%q): %v", i+1, t.Slug, err)
		}
		if seen[t.Slug] {
			return nil, errors.Wrapf(ErrInvalidListing, "duplicate team slug %q", t.Slug)
		}
		seen[t.Slug] = true
		listed := make(map[string]bool, len(t.Roster))
		for _, slug := range t.Roster {
			if listed[slug] {
				return nil, errors.Wrapf(ErrInvalidListing, "team %q lists player %q twice", t.Slug, slug)
			}
			listed[slug] = true
			if _, ok := l.players[slug]; !ok {
				logging.Default().Debug("roster slug has no player entry, skipping", "team", t.Slug, "player", slug)
			}
		}
	}
	return l, nil
}

// Player looks a player up by slug.
func (l *Listing) Player(slug string) (model.Player, bool) {
	p, ok := l.players[slug]
	return p, ok
}

// Team looks a team up by slug.
func (l *Listing) Team(slug string) (model.Team, bool) {
	for _, t := range l.Teams {
		if t.Slug == slug {
			return t, true
		}
	}
	return model.Team{}, false
}

// Roster returns the listed players of team in roster order. Roster slugs
// with no player entry are skipped.
func (l *Listing) Roster(team model.Team) []model.Player {
	out := make([]model.Player, 0, len(team.Roster))
	for _, slug := range team.Roster {
		if p, ok := l.players[slug]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TeamEntities returns the teams as identity entities, listing order.
func (l *Listing) TeamEntities() []identity.Entity {
	out := make([]identity.Entity, len(l.Teams))
	for i, t := range l.Teams {
		out[i] = identity.Entity{Slug: t.Slug, Name: t.Name}
	}
	return out
}

// PlayerEntities returns the players as identity entities, listing order.
func (l *Listing) PlayerEntities() []identity.Entity {
	out := make([]identity.Entity, len(l.Players))
	for i, p := range l.Players {
		out[i] = identity.Entity{Slug: p.Slug, Name: p.Name}
	}
	return out
}
