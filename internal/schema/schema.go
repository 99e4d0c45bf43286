// Package schema defines the typed project schema the mutation planner
// operates on: models, scalar and relation fields, and per-side relation
// delete policies. Schemas are built once and treated as read-only for
// the lifetime of a planner invocation.
package schema

import "fmt"

// ScalarType enumerates the scalar field types supported by the data layer.
type ScalarType string

const (
	TypeID       ScalarType = "ID"
	TypeString   ScalarType = "String"
	TypeInt      ScalarType = "Int"
	TypeFloat    ScalarType = "Float"
	TypeBoolean  ScalarType = "Boolean"
	TypeDateTime ScalarType = "DateTime"
	TypeJSON     ScalarType = "Json"
	TypeEnum     ScalarType = "Enum"
)

// OnDelete is the delete policy declared on one side of a relation.
type OnDelete string

const (
	// OnDeleteSetNull leaves the far node in place and clears the link.
	OnDeleteSetNull OnDelete = "SET_NULL"
	// OnDeleteCascade deletes the far node when the near node is deleted.
	OnDeleteCascade OnDelete = "CASCADE"
)

// Relation describes a named relation between two models. Side policies are
// keyed by field: FieldA/FieldB name the relation fields on ModelA/ModelB
// respectively. Either field name may be empty for one-sided relations.
type Relation struct {
	Name string

	ModelA string
	FieldA string
	// OnDeleteA applies when a ModelA node is deleted: it governs whether
	// related ModelB nodes cascade.
	OnDeleteA OnDelete

	ModelB string
	FieldB string
	OnDeleteB OnDelete
}

// Field is a single model field, either scalar or relation.
type Field struct {
	Name       string
	IsRequired bool
	IsList     bool
	IsUnique   bool

	// Scalar fields only.
	Type         ScalarType
	EnumValues   []string
	DefaultValue interface{}
	HasDefault   bool

	// Relation fields only.
	RelatedModel string
	Relation     *Relation
}

// IsRelation reports whether the field traverses to another model.
func (f *Field) IsRelation() bool {
	return f.Relation != nil
}

// IsScalar reports whether the field holds a scalar value.
func (f *Field) IsScalar() bool {
	return f.Relation == nil
}

// CascadesDelete reports whether deleting the node on this side of the
// relation deletes the related node.
func (f *Field) CascadesDelete(model *Model) bool {
	if f.Relation == nil || model == nil {
		return false
	}
	if f.Relation.ModelA == model.Name && f.Relation.FieldA == f.Name {
		return f.Relation.OnDeleteA == OnDeleteCascade
	}
	if f.Relation.ModelB == model.Name && f.Relation.FieldB == f.Name {
		return f.Relation.OnDeleteB == OnDeleteCascade
	}
	return false
}

// Model is a named collection of fields. Field order is declaration order
// and is load-bearing: planner output enumerates relation fields in this
// order, which keeps plans deterministic.
type Model struct {
	Name   string
	Fields []*Field
}

// FieldByName returns the named field, or nil.
func (m *Model) FieldByName(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ScalarFields returns the scalar fields in declaration order.
func (m *Model) ScalarFields() []*Field {
	fields := make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.IsScalar() {
			fields = append(fields, f)
		}
	}
	return fields
}

// RelationFields returns the relation fields in declaration order.
func (m *Model) RelationFields() []*Field {
	fields := make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.IsRelation() {
			fields = append(fields, f)
		}
	}
	return fields
}

// IDField returns the model's ID field, or nil when the model has none.
func (m *Model) IDField() *Field {
	for _, f := range m.Fields {
		if f.Type == TypeID {
			return f
		}
	}
	return nil
}

// Schema is the set of models of one project.
type Schema struct {
	Models []*Model
}

// ModelByName returns the named model, or nil.
func (s *Schema) ModelByName(name string) *Model {
	for _, m := range s.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Project couples a stable identifier with its schema. The identifier tags
// planner metrics and every emitted mutaction.
type Project struct {
	ID     string
	Schema *Schema
}

// RelatedModel resolves the model a relation field points at.
func (p *Project) RelatedModel(f *Field) (*Model, error) {
	if f == nil || !f.IsRelation() {
		return nil, fmt.Errorf("field is not a relation")
	}
	m := p.Schema.ModelByName(f.RelatedModel)
	if m == nil {
		return nil, fmt.Errorf("related model %q not found", f.RelatedModel)
	}
	return m, nil
}

// RelatedField resolves the inverse relation field on the far model, or nil
// when the relation is one-sided.
func (p *Project) RelatedField(model *Model, f *Field) *Field {
	if f == nil || f.Relation == nil {
		return nil
	}
	rel := f.Relation
	var farModel, farField string
	switch {
	case rel.ModelA == model.Name && rel.FieldA == f.Name:
		farModel, farField = rel.ModelB, rel.FieldB
	case rel.ModelB == model.Name && rel.FieldB == f.Name:
		farModel, farField = rel.ModelA, rel.FieldA
	default:
		return nil
	}
	if farField == "" {
		return nil
	}
	far := p.Schema.ModelByName(farModel)
	if far == nil {
		return nil
	}
	return far.FieldByName(farField)
}

// Validate checks structural integrity: every relation field resolves to an
// existing model, field names are unique per model, and every model has an
// ID field.
func (s *Schema) Validate() error {
	for _, m := range s.Models {
		seen := make(map[string]bool, len(m.Fields))
		for _, f := range m.Fields {
			if seen[f.Name] {
				return fmt.Errorf("model %s: duplicate field %q", m.Name, f.Name)
			}
			seen[f.Name] = true
			if f.IsRelation() && s.ModelByName(f.RelatedModel) == nil {
				return fmt.Errorf("model %s: field %q references unknown model %q", m.Name, f.Name, f.RelatedModel)
			}
		}
		if m.IDField() == nil {
			return fmt.Errorf("model %s: missing ID field", m.Name)
		}
	}
	return nil
}
