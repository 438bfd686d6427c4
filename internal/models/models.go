// package models defines the data model for the holocron reference browser
package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/holocron/internal/shared"
)

// Kind is the category of a reference entity.
type Kind string

const (
	KindFilm      Kind = "film"
	KindCharacter Kind = "character"
	KindPlanet    Kind = "planet"
	KindSpecies   Kind = "species"
	KindStarship  Kind = "starship"
	KindUnknown   Kind = "unknown"
)

// Kinds lists the browsable kinds in display order.
var Kinds = []Kind{KindFilm, KindCharacter, KindPlanet, KindSpecies, KindStarship}

var resources = map[Kind]string{
	KindFilm:      "films",
	KindCharacter: "people",
	KindPlanet:    "planets",
	KindSpecies:   "species",
	KindStarship:  "starships",
}

// Resource returns the SWAPI path segment for k ("people" for characters).
func (k Kind) Resource() string {
	return resources[k]
}

// LabelField returns the record field holding the display label: "title" for films, "name" otherwise.
func (k Kind) LabelField() string {
	if k == KindFilm {
		return "title"
	}
	return "name"
}

// Plural returns a human-readable plural for headings.
func (k Kind) Plural() string {
	switch k {
	case KindSpecies:
		return "species"
	case KindUnknown:
		return "other"
	default:
		return string(k) + "s"
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts kind names, plurals and SWAPI resource names (e.g. "people").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "film", "films", "movie", "movies":
		return KindFilm, nil
	case "character", "characters", "people", "person":
		return KindCharacter, nil
	case "planet", "planets":
		return KindPlanet, nil
	case "species":
		return KindSpecies, nil
	case "starship", "starships", "ship", "ships":
		return KindStarship, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", shared.ErrUnknownKind, s)
}

// KindFromURL derives a kind from the resource segment of a SWAPI URL such as ".../api/people/1/".
func KindFromURL(raw string) Kind {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		for kind, resource := range resources {
			if segments[i] == resource {
				return kind
			}
		}
	}
	return KindUnknown
}

// IDFromURL returns the trailing numeric id of a SWAPI URL, or "" when there is none.
func IDFromURL(raw string) string {
	segments := strings.Split(strings.Trim(raw, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	for _, r := range last {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return last
}

// kindFromFields mirrors how records are told apart when no URL is available.
func kindFromFields(fields map[string]any) Kind {
	has := func(key string) bool {
		_, ok := fields[key]
		return ok
	}

	switch {
	case has("title"):
		return KindFilm
	case has("population"):
		return KindPlanet
	case has("designation"):
		return KindSpecies
	case has("model"):
		return KindStarship
	case has("name"):
		return KindCharacter
	}
	return KindUnknown
}
