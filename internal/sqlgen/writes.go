package sqlgen

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
	"graphql-datalayer/internal/sqlutil"
)

// renderCreate inserts the row plus one row per scalar-list value.
func renderCreate(p path.Path, nonList map[string]interface{}, list []arguments.ListArg) ([]Statement, error) {
	model := p.LastModel()

	columns, values := orderedColumns(model, nonList)
	builder := sq.Insert(sqlutil.QuoteIdentifier(TableName(model)))
	if len(columns) == 0 {
		return nil, fmt.Errorf("create on %s with no columns", model.Name)
	}
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = sqlutil.QuoteIdentifier(col)
	}
	query, args, err := builder.Columns(quoted...).Values(values...).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	out := []Statement{{SQL: query, Args: args, Kind: KindWrite}}

	nodeID := nonList[model.IDField().Name]
	listStmts, err := listInserts(model, nodeID, list)
	if err != nil {
		return nil, err
	}
	return append(out, listStmts...), nil
}

// orderedColumns walks the model's field declaration order so generated SQL
// is stable for equal inputs.
func orderedColumns(model *schema.Model, nonList map[string]interface{}) ([]string, []interface{}) {
	var columns []string
	var values []interface{}
	for _, f := range model.ScalarFields() {
		if f.IsList {
			continue
		}
		if v, ok := nonList[f.Name]; ok {
			columns = append(columns, f.Name)
			values = append(values, v)
		}
	}
	return columns, values
}

func listInserts(model *schema.Model, nodeID interface{}, list []arguments.ListArg) ([]Statement, error) {
	var out []Statement
	for _, arg := range list {
		builder := sq.Insert(sqlutil.QuoteIdentifier(ListTableName(model, arg.Field))).
			Columns(sqlutil.QuoteIdentifier("nodeId"), sqlutil.QuoteIdentifier("position"), sqlutil.QuoteIdentifier("value"))
		for i, v := range arg.Values {
			builder = builder.Values(nodeID, (i+1)*1000, v)
		}
		query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{SQL: query, Args: args, Kind: KindWrite})
	}
	return out, nil
}

// listReplacements clears and rewrites a node's scalar-list side tables.
func listReplacements(model *schema.Model, sel path.NodeSelector, list []arguments.ListArg) ([]Statement, error) {
	var out []Statement
	for _, arg := range list {
		sub, subArgs, err := selectorSubquery(sel).ToSql()
		if err != nil {
			return nil, err
		}
		del, delArgs, err := sq.Delete(sqlutil.QuoteIdentifier(ListTableName(model, arg.Field))).
			Where(sq.Expr(sqlutil.QuoteIdentifier("nodeId")+" = "+sub, subArgs...)).
			PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{SQL: del, Args: delArgs, Kind: KindWrite})

		builder := sq.Insert(sqlutil.QuoteIdentifier(ListTableName(model, arg.Field))).
			Columns(sqlutil.QuoteIdentifier("nodeId"), sqlutil.QuoteIdentifier("position"), sqlutil.QuoteIdentifier("value"))
		for i, v := range arg.Values {
			builder = builder.Values(sq.Expr(sub, subArgs...), (i+1)*1000, v)
		}
		if len(arg.Values) > 0 {
			query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
			if err != nil {
				return nil, err
			}
			out = append(out, Statement{SQL: query, Args: args, Kind: KindWrite})
		}
	}
	return out, nil
}

// childWhere resolves the where clause addressing the node at the end of
// p: the last edge's pinned selector, or a link-table lookup from the
// parent for by-relation addressing.
func childWhere(p path.Path) (sq.Sqlizer, error) {
	if sel := lastSelector(p); sel != nil {
		return sq.Eq{sqlutil.QuoteIdentifier(sel.FieldName()): sel.Value}, nil
	}
	edge := p.LastEdge()
	parent := parentSelector(p)
	if edge == nil || parent == nil {
		return nil, fmt.Errorf("cannot resolve by-relation child on path %s", p.String())
	}
	near, far := relationSides(edge.Parent(), edge.Field())
	parentSub, parentArgs, err := selectorSubquery(*parent).ToSql()
	if err != nil {
		return nil, err
	}
	child := edge.Child()
	return sq.Expr(
		fmt.Sprintf("%s = (SELECT %s FROM %s WHERE %s = %s)",
			sqlutil.QuoteIdentifier(child.IDField().Name),
			sqlutil.QuoteIdentifier(far),
			sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation)),
			sqlutil.QuoteIdentifier(near),
			parentSub),
		parentArgs...), nil
}

func renderUpdate(p path.Path, sel path.NodeSelector, nonList map[string]interface{}, list []arguments.ListArg) ([]Statement, error) {
	where := sq.Sqlizer(sq.Eq{sqlutil.QuoteIdentifier(sel.FieldName()): sel.Value})
	return renderUpdateWhere(sel.Model, where, sel, nonList, list)
}

func renderUpdateWhere(model *schema.Model, where sq.Sqlizer, listSel path.NodeSelector, nonList map[string]interface{}, list []arguments.ListArg) ([]Statement, error) {
	var out []Statement
	if len(nonList) > 0 {
		setMap := make(map[string]interface{}, len(nonList))
		columns, values := orderedColumns(model, nonList)
		for i, col := range columns {
			setMap[sqlutil.QuoteIdentifier(col)] = values[i]
		}
		query, args, err := sq.Update(sqlutil.QuoteIdentifier(TableName(model))).
			SetMap(setMap).
			Where(where).
			PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{SQL: query, Args: args, Kind: KindWrite})
	}
	listStmts, err := listReplacements(model, listSel, list)
	if err != nil {
		return nil, err
	}
	return append(out, listStmts...), nil
}

func renderNestedUpdate(m mutaction.NestedUpdateDataItem) ([]Statement, error) {
	p := m.Path()
	if sel := lastSelector(p); sel != nil {
		return renderUpdate(p, *sel, m.NonListArgs, m.ListArgs)
	}
	where, err := childWhere(p)
	if err != nil {
		return nil, err
	}
	// By-relation addressing has no selector to key list replacement on, so
	// a by-relation update that carries list args is rejected.
	model := p.LastModel()
	if len(m.ListArgs) > 0 {
		return nil, fmt.Errorf("list update on by-relation addressed %s is not supported", model.Name)
	}
	return renderUpdateWhere(model, where, path.NodeSelector{}, m.NonListArgs, nil)
}

func renderDelete(sel path.NodeSelector) ([]Statement, error) {
	return renderDeleteWhere(sel.Model, sq.Eq{sqlutil.QuoteIdentifier(sel.FieldName()): sel.Value})
}

func renderDeleteWhere(model *schema.Model, where sq.Sqlizer) ([]Statement, error) {
	query, args, err := sq.Delete(sqlutil.QuoteIdentifier(TableName(model))).
		Where(where).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindWrite}}, nil
}

func renderNestedDelete(m mutaction.DeleteDataItemNested) ([]Statement, error) {
	p := m.Path()
	if sel := lastSelector(p); sel != nil {
		return renderDelete(*sel)
	}
	where, err := childWhere(p)
	if err != nil {
		return nil, err
	}
	return renderDeleteWhere(p.LastModel(), where)
}

// renderDeleteRelationCheck probes every required inverse relation of the
// node about to be deleted; a surviving link aborts the transaction.
func renderDeleteRelationCheck(m mutaction.DeleteRelationCheck) ([]Statement, error) {
	p := m.Path()
	model := p.LastModel()
	// idQuery selects the id of the node being deleted: through its pinned
	// selector, or through the parent's link row when addressed by relation.
	var idQuery sq.Sqlizer
	if sel := lastSelector(p); sel != nil {
		idQuery = selectorSubquery(*sel)
	} else if p.Len() == 0 {
		idQuery = selectorSubquery(p.Root())
	} else {
		where, err := childWhere(p)
		if err != nil {
			return nil, err
		}
		whereSQL, whereArgs, err := where.ToSql()
		if err != nil {
			return nil, err
		}
		idQuery = sq.Expr(fmt.Sprintf("(SELECT %s FROM %s WHERE %s)",
			sqlutil.QuoteIdentifier(model.IDField().Name),
			sqlutil.QuoteIdentifier(TableName(model)), whereSQL), whereArgs...)
	}

	var out []Statement
	project := m.Project()
	for _, other := range project.Schema.Models {
		for _, g := range other.RelationFields() {
			if g.RelatedModel != model.Name || !g.IsRequired {
				continue
			}
			// From the far model's perspective this node sits on the far side.
			_, far := relationSides(other, g)
			sub, args, err := idQuery.ToSql()
			if err != nil {
				return nil, err
			}
			query, qargs, err := sq.Select(sqlutil.QuoteIdentifier(far)).
				From(sqlutil.QuoteIdentifier(RelationTableName(g.Relation))).
				Where(sq.Expr(sqlutil.QuoteIdentifier(far)+" = "+sub, args...)).
				Limit(1).
				PlaceholderFormat(sq.Question).ToSql()
			if err != nil {
				return nil, err
			}
			out = append(out, Statement{SQL: query, Args: qargs, Kind: KindProbeAbsent})
		}
	}
	return out, nil
}

// renderLinkRelation inserts the link row for the last edge. Serves both
// NestedCreateRelation and NestedConnectRelation.
func renderLinkRelation(p path.Path) ([]Statement, error) {
	edge := p.LastEdge()
	child := lastSelector(p)
	parent := parentSelector(p)
	if edge == nil || child == nil || parent == nil {
		return nil, fmt.Errorf("cannot link relation on path %s", p.String())
	}
	near, far := relationSides(edge.Parent(), edge.Field())

	parentSub, parentArgs, err := selectorSubquery(*parent).ToSql()
	if err != nil {
		return nil, err
	}
	childSub, childArgs, err := selectorSubquery(*child).ToSql()
	if err != nil {
		return nil, err
	}

	columns := []string{sqlutil.QuoteIdentifier(near), sqlutil.QuoteIdentifier(far)}
	if near == "B" {
		columns = []string{sqlutil.QuoteIdentifier(far), sqlutil.QuoteIdentifier(near)}
		parentSub, childSub = childSub, parentSub
		parentArgs, childArgs = childArgs, parentArgs
	}
	query, args, err := sq.Insert(sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation))).
		Columns(columns...).
		Values(sq.Expr(parentSub, parentArgs...), sq.Expr(childSub, childArgs...)).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindWrite}}, nil
}

func renderUnlinkRelation(p path.Path) ([]Statement, error) {
	edge := p.LastEdge()
	parent := parentSelector(p)
	child := lastSelector(p)
	if edge == nil || (parent == nil && child == nil) {
		return nil, fmt.Errorf("cannot unlink relation on path %s", p.String())
	}
	near, far := relationSides(edge.Parent(), edge.Field())

	builder := sq.Delete(sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation)))
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
	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindWrite}}, nil
}

// renderCascadeCleanup deletes the link rows and far rows of the last edge
// for every node reachable along the path. The id set is built by chaining
// link-table subqueries from the root selector outward.
func renderCascadeCleanup(p path.Path) ([]Statement, error) {
	edge := p.LastEdge()
	if edge == nil {
		return nil, fmt.Errorf("cascade cleanup on empty path")
	}
	nearSet, nearArgs, err := idSetAlong(p.RemoveLastEdge())
	if err != nil {
		return nil, err
	}
	near, far := relationSides(edge.Parent(), edge.Field())
	relTable := sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation))

	farSet := fmt.Sprintf("(SELECT %s FROM %s WHERE %s IN %s)",
		sqlutil.QuoteIdentifier(far), relTable, sqlutil.QuoteIdentifier(near), nearSet)

	child := edge.Child()
	delRows, delRowArgs, err := sq.Delete(sqlutil.QuoteIdentifier(TableName(child))).
		Where(sq.Expr(sqlutil.QuoteIdentifier(child.IDField().Name)+" IN "+farSet, nearArgs...)).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	delLinks, delLinkArgs, err := sq.Delete(relTable).
		Where(sq.Expr(sqlutil.QuoteIdentifier(near)+" IN "+nearSet, nearArgs...)).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	// Far rows go first while the link rows still enumerate them.
	return []Statement{
		{SQL: delRows, Args: delRowArgs, Kind: KindWrite},
		{SQL: delLinks, Args: delLinkArgs, Kind: KindWrite},
	}, nil
}

// idSetAlong builds a subquery enumerating the ids of every node at the end
// of p, chaining one link-table hop per edge.
func idSetAlong(p path.Path) (string, []interface{}, error) {
	root := p.Root()
	set := fmt.Sprintf("(SELECT %s FROM %s WHERE %s = ?)",
		sqlutil.QuoteIdentifier(root.Model.IDField().Name),
		sqlutil.QuoteIdentifier(TableName(root.Model)),
		sqlutil.QuoteIdentifier(root.FieldName()))
	args := []interface{}{root.Value}

	for _, edge := range p.Edges() {
		near, far := relationSides(edge.Parent(), edge.Field())
		hop := fmt.Sprintf("%s IN %s",
			sqlutil.QuoteIdentifier(near),
			set)
		if nodeEdge, ok := edge.(path.NodeEdge); ok {
			// A pinned hop narrows the far set to the single selected node.
			sub, subArgs, err := selectorSubquery(nodeEdge.ChildWhere()).ToSql()
			if err != nil {
				return "", nil, err
			}
			hop += fmt.Sprintf(" AND %s = %s", sqlutil.QuoteIdentifier(far), sub)
			set = fmt.Sprintf("(SELECT %s FROM %s WHERE %s)",
				sqlutil.QuoteIdentifier(far),
				sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation)),
				hop)
			args = append(args, subArgs...)
			continue
		}
		set = fmt.Sprintf("(SELECT %s FROM %s WHERE %s)",
			sqlutil.QuoteIdentifier(far),
			sqlutil.QuoteIdentifier(RelationTableName(edge.Field().Relation)),
			hop)
	}
	return set, args, nil
}

// renderUpsert renders both branches as one INSERT .. ON DUPLICATE KEY
// UPDATE. The relation-conditional variant shares this shape: its update
// branch is not restricted to nodes linked to the parent, and no link row is
// written for its create branch.
func renderUpsert(model *schema.Model, createNonList, updateNonList map[string]interface{}) ([]Statement, error) {
	columns, values := orderedColumns(model, createNonList)
	if len(columns) == 0 {
		return nil, fmt.Errorf("upsert on %s with no create columns", model.Name)
	}
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = sqlutil.QuoteIdentifier(col)
	}

	updateCols, updateVals := orderedColumns(model, updateNonList)
	suffix := "ON DUPLICATE KEY UPDATE "
	var suffixArgs []interface{}
	if len(updateCols) == 0 {
		// Touch the id so the statement stays valid when the update branch
		// assigns nothing.
		idCol := sqlutil.QuoteIdentifier(model.IDField().Name)
		suffix += idCol + " = " + idCol
	} else {
		for i, col := range updateCols {
			if i > 0 {
				suffix += ", "
			}
			suffix += sqlutil.QuoteIdentifier(col) + " = ?"
			suffixArgs = append(suffixArgs, updateVals[i])
		}
	}

	query, args, err := sq.Insert(sqlutil.QuoteIdentifier(TableName(model))).
		Columns(quoted...).
		Values(values...).
		Suffix(suffix, suffixArgs...).
		PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}
	return []Statement{{SQL: query, Args: args, Kind: KindWrite}}, nil
}
