// Package sqlgen renders planned mutactions into parameterized SQL
// statements for the transactional executor. Each model maps to a table of
// its non-list scalar fields, each scalar list field to a side table, and
// each relation to a two-column link table.
package sqlgen

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
	"graphql-datalayer/internal/sqlutil"
)

// Kind classifies how the executor treats a statement's result.
type Kind int

const (
	// KindWrite is a plain data modification.
	KindWrite Kind = iota
	// KindProbeExists aborts the transaction when the query returns no row.
	KindProbeExists
	// KindProbeAbsent aborts the transaction when the query returns a row.
	KindProbeAbsent
)

// Statement is one renderable SQL step of a plan.
type Statement struct {
	SQL  string
	Args []interface{}
	Kind Kind
}

// TableName maps a model to its table.
func TableName(m *schema.Model) string { return m.Name }

// ListTableName maps a scalar list field to its side table.
func ListTableName(m *schema.Model, f *schema.Field) string {
	return fmt.Sprintf("%s_%s", m.Name, f.Name)
}

// RelationTableName maps a relation to its link table.
func RelationTableName(r *schema.Relation) string { return "_" + r.Name }

// relationSides returns the link-table columns for the near and far side of
// the relation as seen from (model, field).
func relationSides(model *schema.Model, f *schema.Field) (near, far string) {
	rel := f.Relation
	if rel.ModelA == model.Name && rel.FieldA == f.Name {
		return "A", "B"
	}
	return "B", "A"
}

// selectorSubquery builds a scalar subquery resolving a selector to the
// node's id.
func selectorSubquery(sel path.NodeSelector) sq.Sqlizer {
	return sq.Expr(
		fmt.Sprintf("(SELECT %s FROM %s WHERE %s = ?)",
			sqlutil.QuoteIdentifier(sel.Model.IDField().Name),
			sqlutil.QuoteIdentifier(TableName(sel.Model)),
			sqlutil.QuoteIdentifier(sel.FieldName())),
		sel.Value,
	)
}

// parentSelector returns the selector of the node one hop above the last
// edge of p: the previous edge's pinned child, or the root for single-edge
// paths. Nil when the previous hop is an unpinned ModelEdge.
func parentSelector(p path.Path) *path.NodeSelector {
	edges := p.Edges()
	if len(edges) == 0 {
		return nil
	}
	if len(edges) == 1 {
		root := p.Root()
		return &root
	}
	if prev, ok := edges[len(edges)-2].(path.NodeEdge); ok {
		where := prev.ChildWhere()
		return &where
	}
	return nil
}

// lastSelector returns the pinned child selector of the last edge, nil for
// a trailing ModelEdge or an empty path.
func lastSelector(p path.Path) *path.NodeSelector {
	if edge, ok := p.LastEdge().(path.NodeEdge); ok {
		where := edge.ChildWhere()
		return &where
	}
	return nil
}

// Render translates one mutaction into its SQL statements.
func Render(m mutaction.Mutaction) ([]Statement, error) {
	switch mut := m.(type) {
	case mutaction.VerifyWhere:
		return renderVerifyWhere(mut)
	case mutaction.VerifyConnection:
		return renderVerifyConnection(mut)
	case mutaction.CreateDataItem:
		return renderCreate(mut.Path(), mut.NonListArgs, mut.ListArgs)
	case mutaction.UpdateDataItem:
		return renderUpdate(mut.Path(), mut.Path().Root(), mut.NonListArgs, mut.ListArgs)
	case mutaction.NestedUpdateDataItem:
		return renderNestedUpdate(mut)
	case mutaction.UpsertDataItem:
		return renderUpsert(mut.Path().LastModel(), mut.CreateNonList, mut.UpdateNonList)
	case mutaction.UpsertDataItemIfInRelationWith:
		return renderUpsert(mut.Path().LastModel(), mut.CreateNonList, mut.UpdateNonList)
	case mutaction.DeleteDataItem:
		return renderDelete(mut.Path().Root())
	case mutaction.DeleteDataItemNested:
		return renderNestedDelete(mut)
	case mutaction.DeleteRelationCheck:
		return renderDeleteRelationCheck(mut)
	case mutaction.NestedCreateRelation:
		return renderLinkRelation(mut.Path())
	case mutaction.NestedConnectRelation:
		return renderLinkRelation(mut.Path())
	case mutaction.NestedDisconnectRelation:
		return renderUnlinkRelation(mut.Path())
	case mutaction.CascadingDeleteRelationMutactions:
		return renderCascadeCleanup(mut.Path())
	default:
		return nil, fmt.Errorf("unknown mutaction kind %q", m.Kind())
	}
}

// RenderPlan renders a whole plan in order.
func RenderPlan(plan []mutaction.Mutaction) ([]Statement, error) {
	var out []Statement
	for _, m := range plan {
		stmts, err := Render(m)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func renderVerifyWhere(m mutaction.VerifyWhere) ([]Statement, error) {
	sel := m.Where
	query, args, err := sq.Select(sqlutil.QuoteIdentifier(sel.Model.IDField().Name)).
		From(sqlutil.QuoteIdentifier(TableName(sel.Model))).
		Where(sq.Eq{sqlutil.QuoteIdentifier(sel.FieldName()): sel.Value}).
		Limit(1).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindProbeExists}}, nil
}

// renderVerifyConnection probes the link table of the last edge. When the
// parent hop is not pinned, the probe only checks that some link row of the
// relation touches the child.
func renderVerifyConnection(m mutaction.VerifyConnection) ([]Statement, error) {
	p := m.Path()
	edge := p.LastEdge()
	if edge == nil {
		return nil, fmt.Errorf("VerifyConnection on empty path")
	}
	child := lastSelector(p)
	parent := parentSelector(p)
	if child == nil && parent == nil {
		return nil, fmt.Errorf("VerifyConnection with neither side pinned: %s", p.String())
	}
	// With only one side pinned, any link touching that side satisfies the
	// probe; the other side is addressed by relation.
	return probeLink(edge, parent, child)
}

// probeLink emits an existence probe over the edge's link table.
func probeLink(edge path.Edge, parent, child *path.NodeSelector) ([]Statement, error) {
	near, far := relationSides(edge.Parent(), edge.Field())
	builder := sq.Select(sqlutil.QuoteIdentifier(near)).
		From(sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation)))
	if parent != nil {
		sub, args, err := selectorSubquery(*parent).ToSql()
		if err != nil {
			return nil, err
		}
		builder = builder.Where(sq.Expr(sqlutil.QuoteIdentifier(near)+" = "+sub, args...))
	}
	if child != nil {
		sub, args, err := selectorSubquery(*child).ToSql()
		if err != nil {
			return nil, err
		}
		builder = builder.Where(sq.Expr(sqlutil.QuoteIdentifier(far)+" = "+sub, args...))
	}
	query, args, err := builder.Limit(1).PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindProbeExists}}, nil
}
