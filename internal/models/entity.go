package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/desertthunder/holocron/internal/shared"
)

// Entity is a bookmarked reference record.
//
// Identity is the only field used for equality. Label is presentation only and Payload holds
// every other field of the source record, passed through unmodified.
type Entity struct {
	Identity string
	Label    string
	Kind     Kind
	Payload  map[string]any
}

// Validate reports [shared.ErrInvalidEntity] when the entity has no identity.
func (e Entity) Validate() error {
	if e.Identity == "" {
		return fmt.Errorf("%w: missing identity (label %q)", shared.ErrInvalidEntity, e.Label)
	}
	return nil
}

// Clone returns a copy whose payload map can be modified independently.
func (e Entity) Clone() Entity {
	e.Payload = maps.Clone(e.Payload)
	return e
}

// ID returns the trailing SWAPI id of the identity URL.
func (e Entity) ID() string {
	return IDFromURL(e.Identity)
}

// MarshalJSON writes the flat storage shape: payload fields plus "url" and "title" or "name".
func (e Entity) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Payload)+2)
	maps.Copy(flat, e.Payload)
	flat["url"] = e.Identity

	kind := e.Kind
	if kind == "" {
		kind = KindFromURL(e.Identity)
	}
	flat[kind.LabelField()] = e.Label
	return json.Marshal(flat)
}

// UnmarshalJSON reads a flat record. Identity comes from "url" or "identity", the label from the
// kind's label field, then "title", "name" or "displayLabel".
//
// Only the keys that supplied the identity and label are consumed; any other spelling stays in
// Payload. Numbers are kept as [json.Number] so integers survive a reload exactly.
func (e *Entity) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var flat map[string]any
	if err := dec.Decode(&flat); err != nil {
		return err
	}

	idKey := firstKey(flat, "url", "identity")
	identity, _ := flat[idKey].(string)

	kind := KindFromURL(identity)
	if kind == KindUnknown {
		kind = kindFromFields(flat)
	}

	labelKey := labelKey(flat, kind)
	label, _ := flat[labelKey].(string)

	*e = Entity{Identity: identity, Label: label, Kind: kind}

	for k, v := range flat {
		if k == idKey || k == labelKey {
			continue
		}
		if e.Payload == nil {
			e.Payload = make(map[string]any, len(flat))
		}
		e.Payload[k] = v
	}
	return nil
}

// labelKey picks the label field for kind. The kind's own field wins even when empty, since that is
// where [Entity.MarshalJSON] writes the label.
func labelKey(flat map[string]any, kind Kind) string {
	if _, ok := flat[kind.LabelField()].(string); ok && kind != KindUnknown {
		return kind.LabelField()
	}
	return firstKey(flat, "title", "name", "displayLabel")
}

// firstKey returns the first key holding a non-empty string, or "".
func firstKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return k
		}
	}
	return ""
}

// Collection is an ordered list of entities with unique identities.
type Collection []Entity

// Index returns the position of identity, or -1.
func (c Collection) Index(identity string) int {
	for i, e := range c {
		if e.Identity == identity {
			return i
		}
	}
	return -1
}

// Contains reports whether an entity with identity is present.
func (c Collection) Contains(identity string) bool {
	return c.Index(identity) >= 0
}

// Clone deep-copies the collection, payload maps included. The result is never nil.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, e := range c {
		out[i] = e.Clone()
	}
	return out
}

// ByKind groups entities preserving order within each group.
func (c Collection) ByKind() map[Kind]Collection {
	groups := make(map[Kind]Collection)
	for _, e := range c {
		groups[e.Kind] = append(groups[e.Kind], e)
	}
	return groups
}

// MarshalJSON always writes an array, "[]" for an empty collection.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Entity(c))
}

// DecodeCollection parses a serialized favorites array.
//
// Empty input and "null" decode to an empty collection. Records without an identity are
// dropped and later duplicates of an identity are ignored. Anything that is not a JSON array
// of objects returns [shared.ErrStorageRead].
func DecodeCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Collection{}, nil
	}

	var raw []Entity
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Collection{}, fmt.Errorf("%w: %v", shared.ErrStorageRead, err)
	}

	out := make(Collection, 0, len(raw))
	for _, e := range raw {
		if e.Identity == "" || out.Contains(e.Identity) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
