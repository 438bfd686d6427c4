package models

import (
	"encoding/json"
	"strings"
)

// Record is a raw SWAPI object.
type Record map[string]any

// Page is one page of a SWAPI collection response.
type Page struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// URL returns the record's canonical reference URL.
func (r Record) URL() string {
	return r.String("url")
}

// Kind classifies the record by URL, falling back to its fields.
func (r Record) Kind() Kind {
	if k := KindFromURL(r.URL()); k != KindUnknown {
		return k
	}
	return kindFromFields(r)
}

// Label returns the title for films and the name for everything else.
func (r Record) Label() string {
	if title := r.String("title"); title != "" {
		return title
	}
	return r.String("name")
}

// String returns field as a string. Numbers are formatted without loss.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Strings returns field as a string list, used for SWAPI cross-reference arrays.
// A single string value (e.g. "homeworld") yields a one-element list.
func (r Record) Strings(field string) []string {
	switch v := r[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Matches reports whether the label contains query, case-insensitively.
func (r Record) Matches(query string) bool {
	return strings.Contains(strings.ToLower(r.Label()), strings.ToLower(query))
}

// Entity converts the record into a favorite. Every field except the identity and label becomes payload.
func (r Record) Entity() Entity {
	e := Entity{Identity: r.URL(), Label: r.Label(), Kind: r.Kind()}
	for k, v := range r {
		switch k {
		case "url", "name", "title":
			continue
		}
		if e.Payload == nil {
			e.Payload = make(map[string]any, len(r))
		}
		e.Payload[k] = v
	}
	return e
}
