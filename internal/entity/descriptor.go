// ABOUTME: Capability-tagged entity descriptors validated against typed schemas
// ABOUTME: Maps a logical entity to its REST resource, console slug, columns and form fields

package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Oleksiak-Inc/FileManagementTool/internal/view"
)

// Capability is a set of CRUD verbs an entity supports.
type Capability uint8

const (
	CapList Capability = 1 << iota
	CapGet
	CapCreate
	CapUpdate
	CapDelete
)

const (
	// CapRead is list and get.
	CapRead = CapList | CapGet
	// CapCreatable adds create to CapRead.
	CapCreatable = CapRead | CapCreate
	// CapAll is every verb.
	CapAll = CapCreatable | CapUpdate | CapDelete
)

var capNames = []struct {
	cap  Capability
	name string
}{
	{CapList, "list"},
	{CapGet, "get"},
	{CapCreate, "create"},
	{CapUpdate, "update"},
	{CapDelete, "delete"},
}

// Has reports whether every verb in x is in c.
func (c Capability) Has(x Capability) bool {
	return c&x == x
}

func (c Capability) String() string {
	var names []string
	for _, cn := range capNames {
		if c.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Filter is a named boolean expression over a record, evaluated by
// pages that offer filter tabs.
type Filter struct {
	Key   string
	Label string
	Expr  string
}

// Descriptor describes one entity of the API.
type Descriptor struct {
	Name        string // logical name, e.g. "statusSets"
	Resource    string // REST path segment, e.g. "status_sets"
	Slug        string // console path segment, e.g. "status-sets"
	Title       string
	Singular    string
	Group       string
	Description string
	Caps        Capability
	Columns     []view.Column
	Fields      []view.Field
	Filters     []Filter

	schema reflect.Type
}

// Can reports whether the entity supports the verbs in c.
func (d Descriptor) Can(c Capability) bool {
	return d.Caps.Has(c)
}

// Schema is the Go type records of this entity decode into, if known.
func (d Descriptor) Schema() reflect.Type {
	return d.schema
}

// Define binds d to the record type T and checks that every column and
// field key names a JSON field of T.
func Define[T any](d Descriptor) (Descriptor, error) {
	if d.Name == "" || d.Resource == "" {
		return Descriptor{}, fmt.Errorf("entity descriptor needs a name and a resource")
	}
	if d.Slug == "" {
		d.Slug = strings.ReplaceAll(d.Resource, "_", "-")
	}
	if d.Title == "" {
		d.Title = d.Name
	}
	if d.Singular == "" {
		d.Singular = d.Title
	}

	typ := reflect.TypeFor[T]()
	keys := jsonKeys(typ)

	for _, col := range d.Columns {
		if _, ok := keys[rootKey(col.Key)]; !ok {
			return Descriptor{}, fmt.Errorf("entity %s: column %q is not a field of %s", d.Name, col.Key, typ.Name())
		}
	}
	for _, f := range d.Fields {
		if _, ok := keys[f.Name]; !ok {
			return Descriptor{}, fmt.Errorf("entity %s: form field %q is not a field of %s", d.Name, f.Name, typ.Name())
		}
		if f.Kind == view.KindSelect && f.OptionsFrom == nil && len(f.Options) == 0 {
			return Descriptor{}, fmt.Errorf("entity %s: select field %q has no options", d.Name, f.Name)
		}
	}
	if len(d.Fields) > 0 && !d.Can(CapCreate) && !d.Can(CapUpdate) {
		return Descriptor{}, fmt.Errorf("entity %s: form fields without create or update capability", d.Name)
	}

	d.schema = typ
	return d, nil
}

// MustDefine is Define for the built-in registry; it panics on error.
func MustDefine[T any](d Descriptor) Descriptor {
	def, err := Define[T](d)
	if err != nil {
		panic(err)
	}
	return def
}

func rootKey(path string) string {
	if i := strings.IndexAny(path, ".|#"); i >= 0 {
		return path[:i]
	}
	return path
}

// jsonKeys collects the JSON names of a struct's fields, following
// embedded structs.
func jsonKeys(typ reflect.Type) map[string]struct{} {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	keys := make(map[string]struct{})
	if typ.Kind() != reflect.Struct {
		return keys
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			for k := range jsonKeys(f.Type) {
				keys[k] = struct{}{}
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	return keys
}
