// Package planner compiles one top-level write request against a typed
// schema into an ordered, flat sequence of mutactions for the transactional
// executor. The planner is pure: it performs no I/O, talks to no storage,
// and defers every live-data check to verification mutactions the executor
// runs inside the transaction.
package planner

import (
	"fmt"

	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/cuid"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

// Metrics receives planner observations. Implementations must be safe for
// concurrent use; the planner calls them once per top-level expansion.
type Metrics interface {
	MutactionsPlanned(projectID string, count int)
}

type nopMetrics struct{}

func (nopMetrics) MutactionsPlanned(string, int) {}

// RelationRequiredError is returned when a nested create leaves a required
// outbound relation unsatisfied.
type RelationRequiredError struct {
	FieldName string
	ModelName string
}

func (e *RelationRequiredError) Error() string {
	return fmt.Sprintf("the relation field %q on model %q is required and must be satisfied by a nested create or connect", e.FieldName, e.ModelName)
}

// Planner plans writes for one project. It holds only read-only
// collaborators, so a single Planner may serve concurrent requests.
type Planner struct {
	project *schema.Project
	ids     cuid.Generator
	metrics Metrics
}

// New returns a planner for the project. A nil metrics sink disables
// observation; a nil generator defaults to UUID-derived IDs.
func New(project *schema.Project, ids cuid.Generator, metrics Metrics) *Planner {
	if ids == nil {
		ids = cuid.UUIDGenerator{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Planner{project: project, ids: ids, metrics: metrics}
}

func (pl *Planner) count(result []mutaction.Mutaction) []mutaction.Mutaction {
	pl.metrics.MutactionsPlanned(pl.project.ID, len(result))
	return result
}

// ForCreate plans a top-level create: the row insert followed by the
// nested expansion of every relation payload.
func (pl *Planner) ForCreate(root path.Path, args arguments.CoolArgs) ([]mutaction.Mutaction, error) {
	nonList, list := args.SplitCreate(root.LastModel())
	result := []mutaction.Mutaction{mutaction.NewCreateDataItem(pl.project, root, nonList, list)}

	nested, err := pl.nested(args, root, true)
	if err != nil {
		return nil, err
	}
	return pl.count(append(result, nested...)), nil
}

// ForUpdate plans a top-level update. When the update changes the value of
// the field its own root selector keys on, the nested expansion runs
// against the post-update identity.
func (pl *Planner) ForUpdate(root path.Path, args arguments.CoolArgs, previousValues map[string]interface{}) ([]mutaction.Mutaction, error) {
	nonList, list := args.SplitUpdate(root.LastModel())
	result := []mutaction.Mutaction{mutaction.NewUpdateDataItem(pl.project, root, nonList, list, previousValues)}

	nested, err := pl.nested(args, pl.updatedRoot(root, args), false)
	if err != nil {
		return nil, err
	}
	return pl.count(append(result, nested...)), nil
}

// updatedRoot re-points the root selector at the new value when args assign
// one to the selector's field.
func (pl *Planner) updatedRoot(root path.Path, args arguments.CoolArgs) path.Path {
	if v, ok := args.Get(root.Root().FieldName()); ok {
		return root.WithRootValue(v)
	}
	return root
}

// ForUpsert plans a top-level upsert as exactly one mutaction carrying both
// branches. Nested payloads under either branch are not expanded: running
// both branches' nested mutations would double-apply them, and suppressing
// exactly one would require the executor's branch decision at plan time.
// Known limitation.
func (pl *Planner) ForUpsert(root path.Path, createWhere, updatedWhere path.NodeSelector, createArgs, updateArgs arguments.CoolArgs) ([]mutaction.Mutaction, error) {
	model := root.LastModel()
	createNonList, createList := createArgs.SplitCreate(model)
	updateNonList, updateList := updateArgs.SplitUpdate(model)

	result := []mutaction.Mutaction{mutaction.NewUpsertDataItem(
		pl.project, root, createWhere, updatedWhere,
		createNonList, createList, updateNonList, updateList,
	)}
	return pl.count(result), nil
}

// ForDelete plans a top-level delete: verify the target exists, clean up
// every cascading relation deepest-first, check no required relation is
// left dangling, then delete the row.
func (pl *Planner) ForDelete(root path.Path, previousValues map[string]interface{}) ([]mutaction.Mutaction, error) {
	result := []mutaction.Mutaction{mutaction.NewVerifyWhere(pl.project, root, root.Root())}
	result = append(result, pl.cascadingDeleteMutactions(root)...)
	result = append(result,
		mutaction.NewDeleteRelationCheck(pl.project, root),
		mutaction.NewDeleteDataItem(pl.project, root, previousValues),
	)
	return pl.count(result), nil
}

// currentWhere reflects an identity change the same update performs: when
// args assign a new value to the selector's field, later path references
// must use the post-update value.
func currentWhere(where path.NodeSelector, args arguments.CoolArgs) path.NodeSelector {
	if v, ok := args.Get(where.FieldName()); ok {
		return where.WithValue(v)
	}
	return where
}
