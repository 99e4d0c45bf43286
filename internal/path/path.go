// Package path implements the traversal algebra the mutation planner walks:
// a Path is an immutable sequence of relation edges rooted at a selected
// node. Edges either pin the far end to a specific node (NodeEdge) or leave
// it unidentified (ModelEdge).
package path

import (
	"fmt"
	"strings"

	"graphql-datalayer/internal/schema"
)

// NodeSelector identifies at most one node of a model by a unique field
// value.
type NodeSelector struct {
	Model *schema.Model
	Field *schema.Field
	Value interface{}
}

// ForID returns the canonical ID selector for a model.
func ForID(model *schema.Model, id interface{}) NodeSelector {
	return NodeSelector{Model: model, Field: model.IDField(), Value: id}
}

// FieldName returns the selector's field name, or "" for a zero selector.
func (s NodeSelector) FieldName() string {
	if s.Field == nil {
		return ""
	}
	return s.Field.Name
}

func (s NodeSelector) String() string {
	if s.Model == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s=%v)", s.Model.Name, s.FieldName(), s.Value)
}

// WithValue returns a copy of the selector pointing at a different value.
func (s NodeSelector) WithValue(value interface{}) NodeSelector {
	s.Value = value
	return s
}

// Edge is one relation hop. Exactly two implementations exist: ModelEdge
// and NodeEdge. The set is closed; consumers switch exhaustively.
type Edge interface {
	// Field is the relation field traversed, as declared on Parent.
	Field() *schema.Field
	// Parent is the model the edge leaves from.
	Parent() *schema.Model
	// Child is the model the edge arrives at.
	Child() *schema.Model

	sealed()
}

// ModelEdge traverses to some not-yet-identified node of the child model.
type ModelEdge struct {
	field  *schema.Field
	parent *schema.Model
	child  *schema.Model
}

func (e ModelEdge) Field() *schema.Field  { return e.field }
func (e ModelEdge) Parent() *schema.Model { return e.parent }
func (e ModelEdge) Child() *schema.Model  { return e.child }
func (e ModelEdge) sealed()               {}

// NodeEdge traverses to one specific node of the child model.
type NodeEdge struct {
	field     *schema.Field
	parent    *schema.Model
	child     *schema.Model
	childWhere NodeSelector
}

func (e NodeEdge) Field() *schema.Field     { return e.field }
func (e NodeEdge) Parent() *schema.Model    { return e.parent }
func (e NodeEdge) Child() *schema.Model     { return e.child }
func (e NodeEdge) ChildWhere() NodeSelector { return e.childWhere }
func (e NodeEdge) sealed()                  {}

// Path is a traversal from a root node through zero or more relation edges.
// Paths are values: every operation returns a new Path and never mutates
// the receiver.
type Path struct {
	root  NodeSelector
	edges []Edge
}

// New returns the empty path anchored at root.
func New(root NodeSelector) Path {
	return Path{root: root}
}

// Root returns the root selector.
func (p Path) Root() NodeSelector { return p.root }

// Edges returns the edge sequence. Callers must not modify the result.
func (p Path) Edges() []Edge { return p.edges }

// Len returns the number of edges.
func (p Path) Len() int { return len(p.edges) }

// LastEdge returns the final edge, or nil for the empty path.
func (p Path) LastEdge() Edge {
	if len(p.edges) == 0 {
		return nil
	}
	return p.edges[len(p.edges)-1]
}

// LastModel returns the model the path currently stands on: the child of
// the last edge, or the root model for the empty path.
func (p Path) LastModel() *schema.Model {
	if last := p.LastEdge(); last != nil {
		return last.Child()
	}
	return p.root.Model
}

// appendEdge clones the edge slice so extensions never alias.
func (p Path) appendEdge(e Edge) Path {
	edges := make([]Edge, len(p.edges), len(p.edges)+1)
	copy(edges, p.edges)
	return Path{root: p.root, edges: append(edges, e)}
}

// Extend appends one hop along field towards related. A non-nil where pins
// the far end and yields a NodeEdge; nil yields a ModelEdge.
func (p Path) Extend(related *schema.Model, field *schema.Field, where *NodeSelector) Path {
	parent := p.LastModel()
	if where != nil {
		return p.appendEdge(NodeEdge{field: field, parent: parent, child: related, childWhere: *where})
	}
	return p.appendEdge(ModelEdge{field: field, parent: parent, child: related})
}

// RemoveLastEdge returns the path without its final edge. Removing from the
// empty path returns the empty path.
func (p Path) RemoveLastEdge() Path {
	if len(p.edges) == 0 {
		return p
	}
	edges := make([]Edge, len(p.edges)-1)
	copy(edges, p.edges[:len(p.edges)-1])
	return Path{root: p.root, edges: edges}
}

// LastEdgeToNodeEdge replaces a trailing ModelEdge with a NodeEdge pinned to
// where. A trailing NodeEdge is re-pinned to the new selector.
func (p Path) LastEdgeToNodeEdge(where NodeSelector) Path {
	last := p.LastEdge()
	if last == nil {
		return p
	}
	edges := make([]Edge, len(p.edges))
	copy(edges, p.edges)
	edges[len(edges)-1] = NodeEdge{
		field:      last.Field(),
		parent:     last.Parent(),
		child:      last.Child(),
		childWhere: where,
	}
	return Path{root: p.root, edges: edges}
}

// WithRootValue returns the path with the root selector re-pointed at a new
// value. Used when a top-level update changes the field its own selector
// keys on, so nested edges reference the post-update identity.
func (p Path) WithRootValue(value interface{}) Path {
	return Path{root: p.root.WithValue(value), edges: p.edges}
}

// RelationFieldsNotOnPath returns the relation fields of LastModel excluding
// the inverse of the last traversed edge, in declaration order. Walking back
// through the edge just arrived on would re-visit the parent.
func (p Path) RelationFieldsNotOnPath(project *schema.Project) []*schema.Field {
	last := p.LastModel()
	fields := last.RelationFields()
	edge := p.LastEdge()
	if edge == nil {
		return fields
	}
	inverse := project.RelatedField(edge.Parent(), edge.Field())
	if inverse == nil {
		return fields
	}
	out := make([]*schema.Field, 0, len(fields))
	for _, f := range fields {
		if f == inverse {
			continue
		}
		out = append(out, f)
	}
	return out
}

// HasPrefix reports whether other is a prefix of p (same root, and p's edge
// sequence starts with other's).
func (p Path) HasPrefix(other Path) bool {
	if p.root != other.root || len(other.edges) > len(p.edges) {
		return false
	}
	for i, e := range other.edges {
		if !edgeEqual(p.edges[i], e) {
			return false
		}
	}
	return true
}

func edgeEqual(a, b Edge) bool {
	if a.Field() != b.Field() || a.Parent() != b.Parent() || a.Child() != b.Child() {
		return false
	}
	an, aOK := a.(NodeEdge)
	bn, bOK := b.(NodeEdge)
	if aOK != bOK {
		return false
	}
	return !aOK || an.childWhere == bn.childWhere
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.root.String())
	for _, e := range p.edges {
		switch edge := e.(type) {
		case NodeEdge:
			fmt.Fprintf(&b, " -%s-> %s", edge.Field().Name, edge.childWhere.String())
		case ModelEdge:
			fmt.Fprintf(&b, " -%s-> %s", edge.Field().Name, edge.Child().Name)
		}
	}
	return b.String()
}
