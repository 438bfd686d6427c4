package tasks

import (
	"context"

	"github.com/desertthunder/holocron/internal/models"
)

type factField struct {
	label string
	field string
}

// facts lists displayed attributes per kind from the raw record.
var facts = map[models.Kind][]factField{
	models.KindFilm: {
		{"Episode", "episode_id"},
		{"Director", "director"},
		{"Producer", "producer"},
		{"Released", "release_date"},
	},
	models.KindCharacter: {
		{"Height", "height"},
		{"Mass", "mass"},
		{"Hair color", "hair_color"},
		{"Skin color", "skin_color"},
		{"Eye color", "eye_color"},
		{"Birth year", "birth_year"},
		{"Gender", "gender"},
	},
	models.KindPlanet: {
		{"Climate", "climate"},
		{"Terrain", "terrain"},
		{"Population", "population"},
		{"Diameter", "diameter"},
		{"Gravity", "gravity"},
		{"Rotation period", "rotation_period"},
		{"Orbital period", "orbital_period"},
	},
	models.KindSpecies: {
		{"Classification", "classification"},
		{"Designation", "designation"},
		{"Average height", "average_height"},
		{"Average lifespan", "average_lifespan"},
		{"Language", "language"},
	},
	models.KindStarship: {
		{"Model", "model"},
		{"Manufacturer", "manufacturer"},
		{"Class", "starship_class"},
		{"Cost in credits", "cost_in_credits"},
		{"Crew", "crew"},
		{"Passengers", "passengers"},
		{"Hyperdrive rating", "hyperdrive_rating"},
	},
}

// detailFacts are shown only on the detail view.
var detailFacts = map[models.Kind][]factField{
	models.KindFilm: {{"Opening crawl", "opening_crawl"}},
}

type relationField struct {
	label  string
	field  string
	inList bool // also resolved on browse pages
}

// relations lists resolved cross-reference fields per kind.
var relations = map[models.Kind][]relationField{
	models.KindFilm: {
		{"Characters", "characters", false},
		{"Planets", "planets", false},
		{"Starships", "starships", false},
		{"Species", "species", false},
	},
	models.KindCharacter: {
		{"Films", "films", false},
	},
	models.KindPlanet: {
		{"Residents", "residents", true},
		{"Films", "films", true},
	},
	models.KindSpecies: {
		{"People", "people", false},
		{"Films", "films", false},
	},
	models.KindStarship: {
		{"Pilots", "pilots", false},
		{"Films", "films", false},
	},
}

const unknownSpecies = "Unknown"

// enrich resolves every cross-reference of records in one batch, then builds the items.
// Lookup failures are logged and leave the raw URL in place of the name.
func (c *Catalog) enrich(ctx context.Context, records []models.Record, detail bool, progress chan<- ProgressUpdate) []Item {
	var urls []string
	for _, r := range records {
		kind := r.Kind()
		switch kind {
		case models.KindCharacter:
			urls = append(urls, r.Strings("homeworld")...)
			if species := r.Strings("species"); len(species) > 0 {
				urls = append(urls, species[0])
			}
		case models.KindSpecies:
			urls = append(urls, r.Strings("homeworld")...)
		}
		for _, rel := range relations[kind] {
			if detail || rel.inList {
				urls = append(urls, r.Strings(rel.field)...)
			}
		}
	}

	names := map[string]string{}
	if len(urls) > 0 {
		sendProgress(progress, resolveReferencesUpdate(len(urls)))
		resolved, err := c.ref.ResolveNames(ctx, urls)
		if err != nil {
			c.logger.Warn("some cross-references could not be resolved", "err", err)
		}
		if resolved != nil {
			names = resolved
		}
	}

	name := func(u string) string {
		if n, ok := names[u]; ok && n != "" {
			return n
		}
		return u
	}

	items := make([]Item, len(records))
	for i, r := range records {
		kind := r.Kind()
		item := Item{Entity: r.Entity()}

		for _, f := range facts[kind] {
			if v := r.String(f.field); v != "" {
				item.Facts = append(item.Facts, Fact{Label: f.label, Value: v})
			}
		}
		if detail {
			for _, f := range detailFacts[kind] {
				if v := r.String(f.field); v != "" {
					item.Facts = append(item.Facts, Fact{Label: f.label, Value: v})
				}
			}
		}

		switch kind {
		case models.KindCharacter:
			if hw := r.Strings("homeworld"); len(hw) > 0 {
				item.Facts = append(item.Facts, Fact{Label: "Homeworld", Value: name(hw[0])})
			}
			species := unknownSpecies
			if s := r.Strings("species"); len(s) > 0 {
				species = name(s[0])
			}
			item.Facts = append(item.Facts, Fact{Label: "Species", Value: species})
		case models.KindSpecies:
			if hw := r.Strings("homeworld"); len(hw) > 0 {
				item.Facts = append(item.Facts, Fact{Label: "Homeworld", Value: name(hw[0])})
			}
		}

		for _, rel := range relations[kind] {
			if !detail && !rel.inList {
				continue
			}
			refs := r.Strings(rel.field)
			resolved := make([]string, len(refs))
			for j, u := range refs {
				resolved[j] = name(u)
			}
			item.Related = append(item.Related, Relation{Label: rel.label, Names: resolved})
		}

		items[i] = item
	}

	c.addArtwork(ctx, items, progress)
	return items
}

// addArtwork attaches character images and film posters when the lookups are configured.
func (c *Catalog) addArtwork(ctx context.Context, items []Item, progress chan<- ProgressUpdate) {
	for i := range items {
		item := &items[i]
		switch item.Entity.Kind {
		case models.KindCharacter:
			if c.images == nil {
				continue
			}
			image, err := c.images.ImageFor(ctx, item.Entity.Label)
			if err != nil {
				c.logger.Debug("image lookup failed", "name", item.Entity.Label, "err", err)
				continue
			}
			item.Image = image
		case models.KindFilm:
			if c.artwork == nil {
				continue
			}
			sendProgress(progress, fetchArtworkUpdate(i+1, len(items), item.Entity.Label))
			art, err := c.artwork.Artwork(ctx, item.Entity.Label)
			if err != nil {
				c.logger.Debug("artwork lookup failed", "title", item.Entity.Label, "err", err)
				continue
			}
			item.Poster = art.PosterURL
			item.Rating = art.Rating
		}
	}
}
