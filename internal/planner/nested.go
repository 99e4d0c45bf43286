package planner

import (
	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

// nested expands the nested mutation payloads of every relation field
// reachable from p. Emission order per field is normative: where-probes,
// connection-probes, creates, connects, disconnects, deletes, updates,
// upserts. Each child's recursion is appended directly after its own
// primitive mutactions.
func (pl *Planner) nested(args arguments.CoolArgs, p path.Path, triggeredFromCreate bool) ([]mutaction.Mutaction, error) {
	var result []mutaction.Mutaction

	for _, f := range p.RelationFieldsNotOnPath(pl.project) {
		related, err := pl.project.RelatedModel(f)
		if err != nil {
			return nil, err
		}
		sub, err := args.SubNestedMutation(f, related)
		if err != nil {
			return nil, err
		}

		// A fresh node must satisfy every required outbound relation with a
		// create or a connect; nothing else can, since the node did not
		// exist before this request.
		if triggeredFromCreate && f.IsRequired && !sub.HasCreateLike() {
			return nil, &RelationRequiredError{FieldName: f.Name, ModelName: p.LastModel().Name}
		}
		if sub.IsEmpty() {
			continue
		}

		result = append(result, pl.whereProbes(p, sub)...)
		result = append(result, pl.connectionProbes(p, related, f, sub)...)

		created, err := pl.nestedCreates(p, related, f, sub.Creates, triggeredFromCreate)
		if err != nil {
			return nil, err
		}
		result = append(result, created...)
		result = append(result, pl.nestedConnects(p, related, f, sub.Connects, triggeredFromCreate)...)
		result = append(result, pl.nestedDisconnects(p, related, f, sub.Disconnects)...)
		result = append(result, pl.nestedDeletes(p, related, f, sub.Deletes)...)

		updated, err := pl.nestedUpdates(p, related, f, sub.Updates)
		if err != nil {
			return nil, err
		}
		result = append(result, updated...)
		result = append(result, pl.nestedUpserts(p, related, f, sub.Upserts)...)
	}
	return result, nil
}

// whereProbes emits a VerifyWhere for every by-where child. Duplicate
// selectors across groups probe more than once; deduplication belongs to a
// later pass downstream.
func (pl *Planner) whereProbes(p path.Path, sub arguments.NestedMutations) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, u := range sub.Updates {
		if u.Where != nil {
			out = append(out, mutaction.NewVerifyWhere(pl.project, p, *u.Where))
		}
	}
	for _, d := range sub.Deletes {
		if d.Where != nil {
			out = append(out, mutaction.NewVerifyWhere(pl.project, p, *d.Where))
		}
	}
	for _, c := range sub.Connects {
		out = append(out, mutaction.NewVerifyWhere(pl.project, p, c.Where))
	}
	for _, d := range sub.Disconnects {
		if d.Where != nil {
			out = append(out, mutaction.NewVerifyWhere(pl.project, p, *d.Where))
		}
	}
	return out
}

// connectionProbes emits a VerifyConnection for every child that operates
// on a node which must already be linked: updates, deletes, disconnects.
func (pl *Planner) connectionProbes(p path.Path, related *schema.Model, f *schema.Field, sub arguments.NestedMutations) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, u := range sub.Updates {
		out = append(out, mutaction.NewVerifyConnection(pl.project, p.Extend(related, f, u.Where)))
	}
	for _, d := range sub.Deletes {
		out = append(out, mutaction.NewVerifyConnection(pl.project, p.Extend(related, f, d.Where)))
	}
	for _, d := range sub.Disconnects {
		out = append(out, mutaction.NewVerifyConnection(pl.project, p.Extend(related, f, d.Where)))
	}
	return out
}

// nestedCreates mints an ID per child, binds the trailing edge to it, and
// inserts the row before linking it to the parent.
func (pl *Planner) nestedCreates(p path.Path, related *schema.Model, f *schema.Field, creates []arguments.NestedCreate, triggeredFromCreate bool) ([]mutaction.Mutaction, error) {
	var out []mutaction.Mutaction
	for _, c := range creates {
		createWhere := path.ForID(related, pl.ids.New())
		extended := p.Extend(related, f, nil).LastEdgeToNodeEdge(createWhere)

		nonList := c.Data.GenerateNonListCreateArgs(related, createWhere)
		converted, err := arguments.Convert(related, nonList)
		if err != nil {
			return nil, err
		}
		out = append(out,
			mutaction.NewCreateDataItem(pl.project, extended, converted, c.Data.ScalarListArgs(related)),
			mutaction.NewNestedCreateRelation(pl.project, extended, triggeredFromCreate),
		)

		rec, err := pl.nested(c.Data, extended, true)
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)
	}
	return out, nil
}

func (pl *Planner) nestedConnects(p path.Path, related *schema.Model, f *schema.Field, connects []arguments.NestedConnect, triggeredFromCreate bool) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, c := range connects {
		where := c.Where
		out = append(out, mutaction.NewNestedConnectRelation(pl.project, p.Extend(related, f, &where), triggeredFromCreate))
	}
	return out
}

func (pl *Planner) nestedDisconnects(p path.Path, related *schema.Model, f *schema.Field, disconnects []arguments.NestedDisconnect) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, d := range disconnects {
		out = append(out, mutaction.NewNestedDisconnectRelation(pl.project, p.Extend(related, f, d.Where)))
	}
	return out
}

// nestedDeletes cleans cascading relations reachable from the deleted node
// first, then guards against dangling required relations, then deletes.
func (pl *Planner) nestedDeletes(p path.Path, related *schema.Model, f *schema.Field, deletes []arguments.NestedDelete) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, d := range deletes {
		extended := p.Extend(related, f, d.Where)
		out = append(out, pl.cascadingDeleteMutactions(extended)...)
		out = append(out,
			mutaction.NewDeleteRelationCheck(pl.project, extended),
			mutaction.NewDeleteDataItemNested(pl.project, extended),
		)
	}
	return out
}

func (pl *Planner) nestedUpdates(p path.Path, related *schema.Model, f *schema.Field, updates []arguments.NestedUpdate) ([]mutaction.Mutaction, error) {
	var out []mutaction.Mutaction
	for _, u := range updates {
		extended := p.Extend(related, f, u.Where)

		// A by-where update can change the very field its selector keys on;
		// the recursion descends through the post-update identity.
		updatedPath := extended
		if u.Where != nil {
			updatedPath = extended.LastEdgeToNodeEdge(currentWhere(*u.Where, u.Data))
		}

		nonList, list := u.Data.SplitUpdate(related)
		out = append(out, mutaction.NewNestedUpdateDataItem(pl.project, extended, nonList, list))

		rec, err := pl.nested(u.Data, updatedPath, false)
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)
	}
	return out, nil
}

// nestedUpserts emits a single two-branch mutaction per child. As at top
// level, neither branch's nested payload is expanded.
func (pl *Planner) nestedUpserts(p path.Path, related *schema.Model, f *schema.Field, upserts []arguments.NestedUpsert) []mutaction.Mutaction {
	var out []mutaction.Mutaction
	for _, u := range upserts {
		extended := p.Extend(related, f, u.Where)
		createWhere := path.ForID(related, pl.ids.New())

		finalPath := extended
		if u.Where != nil {
			finalPath = extended.LastEdgeToNodeEdge(currentWhere(*u.Where, u.Update))
		}

		createNonList := u.Create.GenerateNonListCreateArgs(related, createWhere)
		updateNonList, updateList := u.Update.SplitUpdate(related)

		out = append(out, mutaction.NewUpsertDataItemIfInRelationWith(
			pl.project, extended, createWhere,
			createNonList, u.Create.ScalarListArgs(related),
			updateNonList, updateList,
			finalPath,
		))
	}
	return out
}
