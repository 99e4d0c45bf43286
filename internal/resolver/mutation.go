package resolver

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/naming"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

func (r *Resolver) addModelMutations(fields graphql.Fields, model *schema.Model) {
	outputType := r.outputType(model)
	whereInput := r.whereUniqueInput(model)

	fields[naming.CreateFieldName(model.Name)] = &graphql.Field{
		Type: outputType,
		Args: graphql.FieldConfigArgument{
			"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.createInput(model))},
		},
		Resolve: r.resolveCreate(model),
	}

	fields[naming.UpdateFieldName(model.Name)] = &graphql.Field{
		Type: outputType,
		Args: graphql.FieldConfigArgument{
			"where": &graphql.ArgumentConfig{Type: graphql.NewNonNull(whereInput)},
			"data":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.updateInput(model))},
		},
		Resolve: r.resolveUpdate(model),
	}

	fields[naming.UpsertFieldName(model.Name)] = &graphql.Field{
		Type: outputType,
		Args: graphql.FieldConfigArgument{
			"where":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(whereInput)},
			"create": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.createInput(model))},
			"update": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.updateInput(model))},
		},
		Resolve: r.resolveUpsert(model),
	}

	fields[naming.DeleteFieldName(model.Name)] = &graphql.Field{
		Type: outputType,
		Args: graphql.FieldConfigArgument{
			"where": &graphql.ArgumentConfig{Type: graphql.NewNonNull(whereInput)},
		},
		Resolve: r.resolveDelete(model),
	}
}

// rootSelector coerces a where argument into the root NodeSelector.
func rootSelector(model *schema.Model, raw interface{}) (path.NodeSelector, error) {
	where, ok := raw.(map[string]interface{})
	if !ok || len(where) != 1 {
		return path.NodeSelector{}, fmt.Errorf("where must select exactly one unique field of %s", model.Name)
	}
	for name, value := range where {
		field := model.FieldByName(name)
		if field == nil {
			return path.NodeSelector{}, fmt.Errorf("unknown field %q on model %s", name, model.Name)
		}
		return path.NodeSelector{Model: model, Field: field, Value: value}, nil
	}
	return path.NodeSelector{}, fmt.Errorf("empty where")
}

func (r *Resolver) resolveCreate(model *schema.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		data, _ := p.Args["data"].(map[string]interface{})
		if data == nil {
			data = map[string]interface{}{}
		}

		// The new node's identity is minted here so the planner can thread
		// it through nested mutactions and the row carries it.
		newID := r.ids.New()
		data[model.IDField().Name] = newID
		root := path.New(path.ForID(model, newID))

		plan, err := r.plan(p, model, "create", func() ([]mutaction.Mutaction, error) {
			return r.planner.ForCreate(root, arguments.New(data))
		})
		if err != nil {
			return nil, err
		}
		if err := r.execute(p, plan); err != nil {
			return nil, err
		}
		return data, nil
	}
}

func (r *Resolver) resolveUpdate(model *schema.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		where, err := rootSelector(model, p.Args["where"])
		if err != nil {
			return nil, err
		}
		data, _ := p.Args["data"].(map[string]interface{})
		root := path.New(where)

		plan, err := r.plan(p, model, "update", func() ([]mutaction.Mutaction, error) {
			return r.planner.ForUpdate(root, arguments.New(data), nil)
		})
		if err != nil {
			return nil, err
		}
		if err := r.execute(p, plan); err != nil {
			return nil, err
		}

		result := map[string]interface{}{where.FieldName(): where.Value}
		for k, v := range data {
			result[k] = v
		}
		return result, nil
	}
}

func (r *Resolver) resolveUpsert(model *schema.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		updatedWhere, err := rootSelector(model, p.Args["where"])
		if err != nil {
			return nil, err
		}
		create, _ := p.Args["create"].(map[string]interface{})
		update, _ := p.Args["update"].(map[string]interface{})
		if create == nil {
			create = map[string]interface{}{}
		}

		newID := r.ids.New()
		create[model.IDField().Name] = newID
		createWhere := path.ForID(model, newID)
		root := path.New(updatedWhere)

		plan, err := r.plan(p, model, "upsert", func() ([]mutaction.Mutaction, error) {
			return r.planner.ForUpsert(root, createWhere, updatedWhere, arguments.New(create), arguments.New(update))
		})
		if err != nil {
			return nil, err
		}
		if err := r.execute(p, plan); err != nil {
			return nil, err
		}

		result := map[string]interface{}{updatedWhere.FieldName(): updatedWhere.Value}
		for k, v := range update {
			result[k] = v
		}
		return result, nil
	}
}

func (r *Resolver) resolveDelete(model *schema.Model) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		where, err := rootSelector(model, p.Args["where"])
		if err != nil {
			return nil, err
		}
		root := path.New(where)

		plan, err := r.plan(p, model, "delete", func() ([]mutaction.Mutaction, error) {
			return r.planner.ForDelete(root, nil)
		})
		if err != nil {
			return nil, err
		}
		if err := r.execute(p, plan); err != nil {
			return nil, err
		}
		return map[string]interface{}{where.FieldName(): where.Value}, nil
	}
}

// plan invokes the planner and records the invocation.
func (r *Resolver) plan(p graphql.ResolveParams, model *schema.Model, operation string, invoke func() ([]mutaction.Mutaction, error)) ([]mutaction.Mutaction, error) {
	start := time.Now()
	plan, err := invoke()
	if r.metrics != nil {
		r.metrics.RecordPlan(p.Context, r.project.ID, operation, time.Since(start), err)
	}
	if err != nil {
		r.logger.Error("planning failed",
			"model", model.Name,
			"operation", operation,
			"error", err.Error(),
		)
		return nil, err
	}
	r.logger.Debug("planned write",
		"model", model.Name,
		"operation", operation,
		"mutactions", len(plan),
	)
	return plan, nil
}

func (r *Resolver) execute(p graphql.ResolveParams, plan []mutaction.Mutaction) error {
	if r.run == nil {
		return nil
	}
	return r.run(p.Context, plan)
}
