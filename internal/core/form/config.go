package form

import (
	"fmt"

	"github.com/hauldesk/hauldesk/internal/core/coerce"
	"github.com/hauldesk/hauldesk/internal/core/lookup"
)

// FieldKind is the closed set of input kinds a field can render as.
type FieldKind int

const (
	KindText FieldKind = iota
	KindEmail
	KindNumber
	KindDate
	KindTextArea
	KindSelect
	KindHidden
	KindRemoteSelect
)

func (k FieldKind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindTextArea:
		return "textarea"
	case KindSelect:
		return "select"
	case KindHidden:
		return "hidden"
	case KindRemoteSelect:
		return "remote-select"
	default:
		return "text"
	}
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one form input. Kind-specific payload: Options for
// KindSelect, Source for KindRemoteSelect. Hint overrides the coercion
// derived from Kind when set.
type Field struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Kind     FieldKind      `json:"-"`
	Required bool           `json:"required,omitempty"`
	Disabled bool           `json:"disabled,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
	Options  []Option       `json:"options,omitempty"`
	Source   *lookup.Source `json:"source,omitempty"`
	Hint     *coerce.Hint   `json:"-"`
}

func (f Field) hint() coerce.Hint {
	if f.Hint != nil {
		return *f.Hint
	}
	switch f.Kind {
	case KindNumber:
		return coerce.HintNumber
	case KindDate:
		return coerce.HintDate
	case KindRemoteSelect:
		return coerce.HintUUID
	default:
		return coerce.HintString
	}
}

type Group struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Config is the full declarative shape of one entity's create/edit form.
// Configs are built once at startup and never mutated.
type Config struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Groups      []Group `json:"groups"`
}

// Validate checks the per-kind payload invariants.
func (c *Config) Validate() error {
	for _, g := range c.Groups {
		for _, f := range g.Fields {
			if f.Name == "" {
				return fmt.Errorf("form %q: field with empty name in group %q", c.Title, g.Title)
			}
			if f.Kind == KindRemoteSelect && f.Source == nil {
				return fmt.Errorf("form %q: remote-select field %q has no source", c.Title, f.Name)
			}
			if f.Kind == KindSelect && len(f.Options) == 0 {
				return fmt.Errorf("form %q: select field %q has no options", c.Title, f.Name)
			}
		}
	}
	return nil
}

// Fields flattens the groups in declaration order.
func (c *Config) Fields() []Field {
	var fields []Field
	for _, g := range c.Groups {
		fields = append(fields, g.Fields...)
	}
	return fields
}

// Hints returns the coercion hint map the submit pipeline applies.
func (c *Config) Hints() map[string]coerce.Hint {
	hints := make(map[string]coerce.Hint)
	for _, f := range c.Fields() {
		hints[f.Name] = f.hint()
	}
	return hints
}

// RenderPlan is what a client needs to draw the form: groups with their
// visible fields and per-field default values.
type RenderPlan struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Groups      []RenderGroup `json:"groups"`
}

type RenderGroup struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Fields      []RenderField `json:"fields"`
}

type RenderField struct {
	Field
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Describe produces the render plan for the given initial values. A group
// whose every field is hidden contributes nothing, title and description
// included. Hidden fields with an empty default are omitted entirely so the
// submitted form data keeps "absent" distinct from "empty".
func (c *Config) Describe(initial map[string]any, fieldErrors map[string]string) *RenderPlan {
	plan := &RenderPlan{Title: c.Title, Description: c.Description}
	for _, g := range c.Groups {
		if allHidden(g) {
			continue
		}
		var fields []RenderField
		for _, f := range g.Fields {
			def := initial[f.Name]
			if f.Hidden && (def == nil || def == "") {
				continue
			}
			fields = append(fields, RenderField{
				Field:   f,
				Type:    f.Kind.String(),
				Default: def,
				Error:   fieldErrors[f.Name],
			})
		}
		plan.Groups = append(plan.Groups, RenderGroup{Title: g.Title, Description: g.Description, Fields: fields})
	}
	return plan
}

func allHidden(g Group) bool {
	for _, f := range g.Fields {
		if !f.Hidden {
			return false
		}
	}
	return true
}
