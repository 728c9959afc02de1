package registry

import (
	"fmt"

	"github.com/hauldesk/hauldesk/internal/core/crud"
	"github.com/hauldesk/hauldesk/internal/core/form"
	"github.com/hauldesk/hauldesk/internal/storage/postgres"
)

// ListField is one column of a collection's list view.
type ListField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Filter is one select control above a collection's list view. The client
// adds an "all" sentinel option; only the constraining options live here.
type Filter struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Options []form.Option `json:"options"`
}

// Summary names a numeric field eligible for sum/avg aggregation, with the
// date key month filters apply to.
type Summary struct {
	Field   string `json:"field"`
	DateKey string `json:"date_key,omitempty"`
}

// Collection is the declarative configuration of one business entity:
// the form, its validation schema, the list view, and storage behavior.
// Built once at startup, never mutated.
type Collection struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Form        *form.Config       `json:"form"`
	Schema      map[string]any     `json:"-"`
	ListFields  []ListField        `json:"list_fields"`
	Filters     []Filter           `json:"filters,omitempty"`
	SearchKeys  []string           `json:"search_keys,omitempty"`
	Summaries   map[string]Summary `json:"summaries,omitempty"`
	SoftDelete  bool               `json:"-"`
	DefaultOrder crud.Order        `json:"-"`
}

func (c *Collection) FilterNames() []string {
	names := make([]string, 0, len(c.Filters))
	for _, f := range c.Filters {
		names = append(names, f.Name)
	}
	return names
}

// Orderable reports whether a list request may order by the given key: the
// fixed record columns plus the collection's list-view fields.
func (c *Collection) Orderable(key string) bool {
	switch key {
	case "created_at", "updated_at", "id":
		return true
	}
	for _, f := range c.ListFields {
		if f.Name == key {
			return true
		}
	}
	return false
}

// Registry holds every collection and a store bound to each. All record
// collections are owner-scoped: rows belong to the user who created them.
type Registry struct {
	collections []*Collection
	byName      map[string]*Collection
	stores      map[string]*crud.Store
}

func New(db *postgres.Client) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Collection),
		stores: make(map[string]*crud.Store),
	}

	for _, c := range Collections() {
		if err := c.Form.Validate(); err != nil {
			return nil, fmt.Errorf("collection %q: %w", c.Name, err)
		}
		if _, exists := r.byName[c.Name]; exists {
			return nil, fmt.Errorf("duplicate collection %q", c.Name)
		}

		r.collections = append(r.collections, c)
		r.byName[c.Name] = c
		r.stores[c.Name] = crud.NewStore(db, crud.Options{
			Collection:   c.Name,
			SearchKeys:   c.SearchKeys,
			DefaultOrder: c.DefaultOrder,
			SoftDelete:   c.SoftDelete,
			Scoped:       true,
			AttachOwner:  true,
		})
	}

	return r, nil
}

func (r *Registry) Get(name string) (*Collection, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *Registry) Store(name string) (*crud.Store, bool) {
	s, ok := r.stores[name]
	return s, ok
}

func (r *Registry) All() []*Collection {
	return r.collections
}
