package resolver

import (
	"github.com/graphql-go/graphql"

	"graphql-datalayer/internal/naming"
	"graphql-datalayer/internal/schema"
)

func scalarType(f *schema.Field) *graphql.Scalar {
	switch f.Type {
	case schema.TypeID:
		return graphql.ID
	case schema.TypeInt:
		return graphql.Int
	case schema.TypeFloat:
		return graphql.Float
	case schema.TypeBoolean:
		return graphql.Boolean
	case schema.TypeDateTime:
		return graphql.DateTime
	default:
		// String, Json, and Enum all travel as strings on this surface.
		return graphql.String
	}
}

// outputType returns the object type for a model: its scalar fields (list
// fields as GraphQL lists) resolved straight out of the written arg map.
func (r *Resolver) outputType(model *schema.Model) *graphql.Object {
	if t, ok := r.outputTypes[model.Name]; ok {
		return t
	}
	fields := graphql.Fields{}
	for _, f := range model.ScalarFields() {
		field := f
		fieldType := graphql.Output(scalarType(field))
		if field.IsList {
			fieldType = graphql.NewList(fieldType)
		}
		fields[field.Name] = &graphql.Field{
			Type: fieldType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if source, ok := p.Source.(map[string]interface{}); ok {
					return source[field.Name], nil
				}
				return nil, nil
			},
		}
	}
	t := graphql.NewObject(graphql.ObjectConfig{
		Name:   model.Name,
		Fields: fields,
	})
	r.outputTypes[model.Name] = t
	return t
}

// whereUniqueInput selects one node by a unique field.
func (r *Resolver) whereUniqueInput(model *schema.Model) *graphql.InputObject {
	if t, ok := r.whereInputTypes[model.Name]; ok {
		return t
	}
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range model.ScalarFields() {
		if f.Type != schema.TypeID && !f.IsUnique {
			continue
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: scalarType(f)}
	}
	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   naming.InputTypeName(model.Name, "WhereUnique"),
		Fields: fields,
	})
	r.whereInputTypes[model.Name] = t
	return t
}

// createInput covers the scalar fields plus one nested-mutation input per
// relation field. Relation inputs are built lazily through thunks because
// models recurse.
func (r *Resolver) createInput(model *schema.Model) *graphql.InputObject {
	if t, ok := r.createInputTypes[model.Name]; ok {
		return t
	}
	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: naming.InputTypeName(model.Name, "Create"),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range model.ScalarFields() {
				if f.Type == schema.TypeID {
					continue
				}
				fieldType := graphql.Input(scalarType(f))
				if f.IsList {
					fieldType = graphql.NewList(fieldType)
				} else if f.IsRequired && !f.HasDefault {
					fieldType = graphql.NewNonNull(fieldType)
				}
				fields[f.Name] = &graphql.InputObjectFieldConfig{Type: fieldType}
			}
			for _, f := range model.RelationFields() {
				related := r.project.Schema.ModelByName(f.RelatedModel)
				if related == nil {
					continue
				}
				fields[f.Name] = &graphql.InputObjectFieldConfig{
					Type: r.nestedMutationInput(model, f, related),
				}
			}
			return fields
		}),
	})
	r.createInputTypes[model.Name] = t
	return t
}

// updateInput mirrors createInput with every scalar optional.
func (r *Resolver) updateInput(model *schema.Model) *graphql.InputObject {
	if t, ok := r.updateInputTypes[model.Name]; ok {
		return t
	}
	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: naming.InputTypeName(model.Name, "Update"),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			fields := graphql.InputObjectConfigFieldMap{}
			for _, f := range model.ScalarFields() {
				fieldType := graphql.Input(scalarType(f))
				if f.IsList {
					fieldType = graphql.NewList(fieldType)
				}
				fields[f.Name] = &graphql.InputObjectFieldConfig{Type: fieldType}
			}
			for _, f := range model.RelationFields() {
				related := r.project.Schema.ModelByName(f.RelatedModel)
				if related == nil {
					continue
				}
				fields[f.Name] = &graphql.InputObjectFieldConfig{
					Type: r.nestedMutationInput(model, f, related),
				}
			}
			return fields
		}),
	})
	r.updateInputTypes[model.Name] = t
	return t
}

// nestedMutationInput is the per-relation-field grouping: create, connect,
// disconnect, delete, update, upsert. To-many relation fields accept lists
// of fragments, to-one fields single fragments.
func (r *Resolver) nestedMutationInput(model *schema.Model, f *schema.Field, related *schema.Model) *graphql.InputObject {
	name := naming.NestedInputTypeName(model.Name, f.Name, "Mutation")
	if t, ok := r.nestedInputTypes[name]; ok {
		return t
	}
	many := f.IsList
	wrap := func(t graphql.Input) graphql.Input {
		if many {
			return graphql.NewList(t)
		}
		return t
	}

	fields := graphql.InputObjectConfigFieldMap{
		"create":  &graphql.InputObjectFieldConfig{Type: wrap(r.createInput(related))},
		"connect": &graphql.InputObjectFieldConfig{Type: wrap(r.whereUniqueInput(related))},
		"update":  &graphql.InputObjectFieldConfig{Type: wrap(r.nestedUpdateInput(model, f, related, many))},
		"upsert":  &graphql.InputObjectFieldConfig{Type: wrap(r.nestedUpsertInput(model, f, related, many))},
	}
	if many {
		fields["disconnect"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(r.whereUniqueInput(related))}
		fields["delete"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(r.whereUniqueInput(related))}
	} else {
		fields["disconnect"] = &graphql.InputObjectFieldConfig{Type: graphql.Boolean}
		fields["delete"] = &graphql.InputObjectFieldConfig{Type: graphql.Boolean}
	}

	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})
	r.nestedInputTypes[name] = t
	return t
}

func (r *Resolver) nestedUpdateInput(model *schema.Model, f *schema.Field, related *schema.Model, many bool) *graphql.InputObject {
	name := naming.NestedInputTypeName(model.Name, f.Name, "Update")
	if t, ok := r.nestedInputTypes[name]; ok {
		return t
	}
	fields := graphql.InputObjectConfigFieldMap{
		"data": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.updateInput(related))},
	}
	if many {
		fields["where"] = &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.whereUniqueInput(related))}
	}
	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})
	r.nestedInputTypes[name] = t
	return t
}

func (r *Resolver) nestedUpsertInput(model *schema.Model, f *schema.Field, related *schema.Model, many bool) *graphql.InputObject {
	name := naming.NestedInputTypeName(model.Name, f.Name, "Upsert")
	if t, ok := r.nestedInputTypes[name]; ok {
		return t
	}
	fields := graphql.InputObjectConfigFieldMap{
		"create": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.createInput(related))},
		"update": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.updateInput(related))},
	}
	if many {
		fields["where"] = &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.whereUniqueInput(related))}
	}
	t := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})
	r.nestedInputTypes[name] = t
	return t
}
