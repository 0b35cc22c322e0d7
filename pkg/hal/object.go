package hal

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Object represents a HAL resource: a property bag plus the reserved
// _links, _embedded, and _templates members. Objects are constructed fresh
// per response (server side) or per fetch (client side) and are not mutated
// after construction, so the affordances stay consistent with the
// properties they describe.
type Object struct {
	properties map[string]any
	links      map[string]*LinkSet
	embedded   map[string]*EmbeddedSet
	templates  map[string]Template
}

// LinkSet holds the links of one relation. HAL allows a relation to carry a
// single link object or an array of them; Multi records which wire form the
// relation uses so the distinction survives a round-trip.
type LinkSet struct {
	Links []Link
	Multi bool
}

// EmbeddedSet holds the embedded resources of one relation, with the same
// single-or-array distinction as LinkSet. Collection relations are always
// arrays, even when one or zero items are embedded.
type EmbeddedSet struct {
	Objects []*Object
	Multi   bool
}

// NewObject creates an empty HAL object.
func NewObject() *Object {
	return &Object{
		properties: make(map[string]any),
		links:      make(map[string]*LinkSet),
		embedded:   make(map[string]*EmbeddedSet),
		templates:  make(map[string]Template),
	}
}

// Set stores a domain property. Reserved member names are rejected so the
// property bag can never shadow _links, _embedded, or _templates.
func (o *Object) Set(name string, value any) *Object {
	if name == ReservedLinks || name == ReservedEmbedded || name == ReservedTemplates {
		return o
	}
	o.properties[name] = value
	return o
}

// Property returns a domain property and whether it is present.
func (o *Object) Property(name string) (any, bool) {
	v, ok := o.properties[name]
	return v, ok
}

// Properties returns the domain property bag. Callers must not mutate it.
func (o *Object) Properties() map[string]any {
	return o.properties
}

// PropertyNames returns the sorted domain property names.
func (o *Object) PropertyNames() []string {
	names := make([]string, 0, len(o.properties))
	for name := range o.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddLink adds a single-valued link relation.
func (o *Object) AddLink(rel string, link Link) *Object {
	set := o.links[rel]
	if set == nil {
		set = &LinkSet{}
		o.links[rel] = set
	}
	set.Links = append(set.Links, link)
	if len(set.Links) > 1 {
		set.Multi = true
	}
	return o
}

// AddLinks adds a multi-valued link relation. The relation marshals as an
// array even with a single element.
func (o *Object) AddLinks(rel string, links ...Link) *Object {
	set := o.links[rel]
	if set == nil {
		set = &LinkSet{Multi: true}
		o.links[rel] = set
	}
	set.Multi = true
	set.Links = append(set.Links, links...)
	return o
}

// Link returns the first link of a relation.
func (o *Object) Link(rel string) (Link, bool) {
	set := o.links[rel]
	if set == nil || len(set.Links) == 0 {
		return Link{}, false
	}
	return set.Links[0], true
}

// Links returns the full link set of a relation.
func (o *Object) Links(rel string) []Link {
	set := o.links[rel]
	if set == nil {
		return nil
	}
	return set.Links
}

// Embed embeds a single sub-resource under a relation.
func (o *Object) Embed(rel string, obj *Object) *Object {
	set := o.embedded[rel]
	if set == nil {
		set = &EmbeddedSet{}
		o.embedded[rel] = set
	}
	set.Objects = append(set.Objects, obj)
	if len(set.Objects) > 1 {
		set.Multi = true
	}
	return o
}

// EmbedAll embeds a collection of sub-resources under a relation. The
// relation marshals as an array even when empty.
func (o *Object) EmbedAll(rel string, objs []*Object) *Object {
	set := o.embedded[rel]
	if set == nil {
		set = &EmbeddedSet{Multi: true}
		o.embedded[rel] = set
	}
	set.Multi = true
	set.Objects = append(set.Objects, objs...)
	return o
}

// Embedded returns the embedded resources of a relation.
func (o *Object) Embedded(rel string) []*Object {
	set := o.embedded[rel]
	if set == nil {
		return nil
	}
	return set.Objects
}

// AddTemplate registers a template under a key.
func (o *Object) AddTemplate(key string, t Template) *Object {
	o.templates[key] = t
	return o
}

// Template returns the template registered under a key.
func (o *Object) Template(key string) (Template, bool) {
	t, ok := o.templates[key]
	return t, ok
}

// Templates returns all templates keyed by template key. Callers must not
// mutate the returned map.
func (o *Object) Templates() map[string]Template {
	return o.templates
}

// TemplateKeys returns the sorted template keys.
func (o *Object) TemplateKeys() []string {
	keys := make([]string, 0, len(o.templates))
	for key := range o.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes the property bag at the top level with the reserved
// members alongside it.
func (o *Object) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.properties)+3)
	for name, value := range o.properties {
		out[name] = value
	}
	if len(o.links) > 0 {
		links := make(map[string]json.RawMessage, len(o.links))
		for rel, set := range o.links {
			raw, err := marshalLinkSet(set)
			if err != nil {
				return nil, fmt.Errorf("marshal links %q: %w", rel, err)
			}
			links[rel] = raw
		}
		out[ReservedLinks] = links
	}
	if len(o.embedded) > 0 {
		embedded := make(map[string]json.RawMessage, len(o.embedded))
		for rel, set := range o.embedded {
			raw, err := marshalEmbeddedSet(set)
			if err != nil {
				return nil, fmt.Errorf("marshal embedded %q: %w", rel, err)
			}
			embedded[rel] = raw
		}
		out[ReservedEmbedded] = embedded
	}
	if len(o.templates) > 0 {
		out[ReservedTemplates] = o.templates
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the reserved members from the property bag, accepting
// both the single-object and array wire forms for links and embeds.
func (o *Object) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.properties = make(map[string]any)
	o.links = make(map[string]*LinkSet)
	o.embedded = make(map[string]*EmbeddedSet)
	o.templates = make(map[string]Template)

	for name, value := range raw {
		switch name {
		case ReservedLinks:
			var rels map[string]json.RawMessage
			if err := json.Unmarshal(value, &rels); err != nil {
				return fmt.Errorf("unmarshal _links: %w", err)
			}
			for rel, linkRaw := range rels {
				set, err := unmarshalLinkSet(linkRaw)
				if err != nil {
					return fmt.Errorf("unmarshal _links %q: %w", rel, err)
				}
				o.links[rel] = set
			}
		case ReservedEmbedded:
			var rels map[string]json.RawMessage
			if err := json.Unmarshal(value, &rels); err != nil {
				return fmt.Errorf("unmarshal _embedded: %w", err)
			}
			for rel, objRaw := range rels {
				set, err := unmarshalEmbeddedSet(objRaw)
				if err != nil {
					return fmt.Errorf("unmarshal _embedded %q: %w", rel, err)
				}
				o.embedded[rel] = set
			}
		case ReservedTemplates:
			if err := json.Unmarshal(value, &o.templates); err != nil {
				return fmt.Errorf("unmarshal _templates: %w", err)
			}
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("unmarshal property %q: %w", name, err)
			}
			o.properties[name] = v
		}
	}
	return nil
}

func marshalLinkSet(set *LinkSet) (json.RawMessage, error) {
	if set.Multi || len(set.Links) != 1 {
		links := set.Links
		if links == nil {
			links = []Link{}
		}
		return json.Marshal(links)
	}
	return json.Marshal(set.Links[0])
}

func unmarshalLinkSet(data json.RawMessage) (*LinkSet, error) {
	if isJSONArray(data) {
		set := &LinkSet{Multi: true}
		if err := json.Unmarshal(data, &set.Links); err != nil {
			return nil, err
		}
		return set, nil
	}
	var link Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	return &LinkSet{Links: []Link{link}}, nil
}

func marshalEmbeddedSet(set *EmbeddedSet) (json.RawMessage, error) {
	if set.Multi || len(set.Objects) != 1 {
		objs := set.Objects
		if objs == nil {
			objs = []*Object{}
		}
		return json.Marshal(objs)
	}
	return json.Marshal(set.Objects[0])
}

func unmarshalEmbeddedSet(data json.RawMessage) (*EmbeddedSet, error) {
	if isJSONArray(data) {
		set := &EmbeddedSet{Multi: true}
		if err := json.Unmarshal(data, &set.Objects); err != nil {
			return nil, err
		}
		return set, nil
	}
	obj := NewObject()
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, err
	}
	return &EmbeddedSet{Objects: []*Object{obj}}, nil
}

func isJSONArray(data json.RawMessage) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
