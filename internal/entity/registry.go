// ABOUTME: Registry of entity descriptors keyed by name, slug and resource
// ABOUTME: Keeps registration order and hub groups for pages and the CLI

package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is returned when no descriptor matches a lookup.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrDuplicateEntity is returned when a name or slug is registered twice.
	ErrDuplicateEntity = errors.New("duplicate entity")
)

// Group is a titled set of entities, as shown on the hub page.
type Group struct {
	Title    string
	Entities []Descriptor
}

// Registry holds entity descriptors. It is not safe for concurrent
// registration; populate it at start-up and only read afterwards.
type Registry struct {
	byName     map[string]int
	bySlug     map[string]int
	byResource map[string]int
	entries    []Descriptor
	groupOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]int),
		bySlug:     make(map[string]int),
		byResource: make(map[string]int),
	}
}

// Register adds d. Names, slugs and resources must be unique.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Resource == "" || d.Slug == "" {
		return fmt.Errorf("registering entity %q: name, resource and slug are required", d.Name)
	}
	if _, ok := r.byName[d.Name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicateEntity, d.Name)
	}
	if _, ok := r.bySlug[d.Slug]; ok {
		return fmt.Errorf("%w: slug %q", ErrDuplicateEntity, d.Slug)
	}
	if _, ok := r.byResource[d.Resource]; ok {
		return fmt.Errorf("%w: resource %q", ErrDuplicateEntity, d.Resource)
	}

	idx := len(r.entries)
	r.entries = append(r.entries, d)
	r.byName[d.Name] = idx
	r.bySlug[d.Slug] = idx
	r.byResource[d.Resource] = idx

	if d.Group != "" && !contains(r.groupOrder, d.Group) {
		r.groupOrder = append(r.groupOrder, d.Group)
	}
	return nil
}

// Lookup finds a descriptor by logical name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	return r.find(r.byName, name)
}

// BySlug finds a descriptor by its console path segment.
func (r *Registry) BySlug(slug string) (Descriptor, error) {
	return r.find(r.bySlug, slug)
}

// ByResource finds a descriptor by its REST path segment.
func (r *Registry) ByResource(resource string) (Descriptor, error) {
	return r.find(r.byResource, resource)
}

// Resolve accepts a name, slug or resource, in that order.
func (r *Registry) Resolve(key string) (Descriptor, error) {
	for _, m := range []map[string]int{r.byName, r.bySlug, r.byResource} {
		if idx, ok := m[key]; ok {
			return r.entries[idx], nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownEntity, key)
}

// All returns descriptors in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// Groups returns descriptors grouped for the hub page, groups and members
// in registration order. Ungrouped entities are left out.
func (r *Registry) Groups() []Group {
	groups := make([]Group, len(r.groupOrder))
	index := make(map[string]int, len(r.groupOrder))
	for i, title := range r.groupOrder {
		groups[i].Title = title
		index[title] = i
	}
	for _, d := range r.entries {
		if i, ok := index[d.Group]; ok {
			groups[i].Entities = append(groups[i].Entities, d)
		}
	}
	return groups
}

func (r *Registry) find(m map[string]int, key string) (Descriptor, error) {
	idx, ok := m[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownEntity, key)
	}
	return r.entries[idx], nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
