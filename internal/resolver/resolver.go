// Package resolver builds the GraphQL mutation surface for a project and
// bridges it to the mutation planner: incoming argument maps are coerced
// into the typed input tree, planned into mutactions, rendered to SQL, and
// handed to the executor.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"graphql-datalayer/internal/cuid"
	"graphql-datalayer/internal/logging"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/observability"
	"graphql-datalayer/internal/planner"
	"graphql-datalayer/internal/schema"
)

// RunFunc executes a planned write. Tests swap in a capture function; the
// server wires sqlgen rendering plus the transactional executor.
type RunFunc func(ctx context.Context, plan []mutaction.Mutaction) error

// Resolver owns the generated schema and the write pipeline for one
// project.
type Resolver struct {
	project *schema.Project
	planner *planner.Planner
	ids     cuid.Generator
	run     RunFunc
	metrics *observability.PlannerMetrics
	logger  *logging.Logger

	outputTypes      map[string]*graphql.Object
	createInputTypes map[string]*graphql.InputObject
	updateInputTypes map[string]*graphql.InputObject
	whereInputTypes  map[string]*graphql.InputObject
	nestedInputTypes map[string]*graphql.InputObject
}

// Options configures a Resolver.
type Options struct {
	Project *schema.Project
	IDs     cuid.Generator
	Metrics *observability.PlannerMetrics
	Logger  *logging.Logger
	// Run executes a planned write. A nil Run plans without executing,
	// which keeps schema-only tests free of database plumbing.
	Run RunFunc
}

// New creates a resolver for the project.
func New(opts Options) (*Resolver, error) {
	if opts.Project == nil {
		return nil, fmt.Errorf("resolver requires a project")
	}
	if opts.IDs == nil {
		opts.IDs = cuid.UUIDGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = &logging.Logger{Logger: slog.Default()}
	}
	// A typed nil must not reach the planner's interface field.
	var plannerMetrics planner.Metrics
	if opts.Metrics != nil {
		plannerMetrics = opts.Metrics
	}
	return &Resolver{
		project:          opts.Project,
		planner:          planner.New(opts.Project, opts.IDs, plannerMetrics),
		ids:              opts.IDs,
		run:              opts.Run,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
		outputTypes:      map[string]*graphql.Object{},
		createInputTypes: map[string]*graphql.InputObject{},
		updateInputTypes: map[string]*graphql.InputObject{},
		whereInputTypes:  map[string]*graphql.InputObject{},
		nestedInputTypes: map[string]*graphql.InputObject{},
	}, nil
}

// BuildSchema assembles the executable GraphQL schema: one create, update,
// upsert, and delete field per model, plus a minimal query root (GraphQL
// requires one).
func (r *Resolver) BuildSchema() (graphql.Schema, error) {
	mutationFields := graphql.Fields{}
	for _, model := range r.project.Schema.Models {
		r.addModelMutations(mutationFields, model)
	}

	queryFields := graphql.Fields{
		"projectId": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return r.project.ID, nil
			},
		},
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: mutationFields,
		}),
	})
}
