// Package mutaction defines the planner's output alphabet: the primitive,
// executor-level writes and checks a plan is made of. The variant set is
// closed; the executor and the SQL renderer switch over it exhaustively.
package mutaction

import (
	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

// Mutaction is one primitive step of a plan. Every variant carries the
// project it belongs to and the path that locates it in the relation graph.
type Mutaction interface {
	// Kind is a stable label for logs and metrics.
	Kind() string
	// Project returns the owning project.
	Project() *schema.Project
	// Path locates the mutaction in the relation graph.
	Path() path.Path

	sealed()
}

type base struct {
	project *schema.Project
	path    path.Path
}

func (b base) Project() *schema.Project { return b.project }
func (b base) Path() path.Path          { return b.path }
func (b base) sealed()                  {}

// VerifyWhere probes that a selector resolves to an existing node. The
// executor aborts the transaction when it does not.
type VerifyWhere struct {
	base
	Where path.NodeSelector
}

// VerifyConnection probes that the node at the end of the path is actually
// linked along the path's last edge.
type VerifyConnection struct {
	base
}

// CreateDataItem inserts one row.
type CreateDataItem struct {
	base
	NonListArgs map[string]interface{}
	ListArgs    []arguments.ListArg
}

// UpdateDataItem patches the row the path root selects.
type UpdateDataItem struct {
	base
	NonListArgs    map[string]interface{}
	ListArgs       []arguments.ListArg
	PreviousValues map[string]interface{}
}

// UpsertDataItem updates the row selected by UpdatedWhere when it exists,
// otherwise inserts a row identified by CreateWhere.
type UpsertDataItem struct {
	base
	CreateWhere   path.NodeSelector
	UpdatedWhere  path.NodeSelector
	CreateNonList map[string]interface{}
	CreateList    []arguments.ListArg
	UpdateNonList map[string]interface{}
	UpdateList    []arguments.ListArg
}

// UpsertDataItemIfInRelationWith is the nested upsert: the update branch
// applies only when the candidate node is already linked along the path;
// otherwise the create branch runs under CreateWhere.
type UpsertDataItemIfInRelationWith struct {
	base
	CreateWhere         path.NodeSelector
	CreateNonList       map[string]interface{}
	CreateList          []arguments.ListArg
	UpdateNonList       map[string]interface{}
	UpdateList          []arguments.ListArg
	PathForUpdateBranch path.Path
}

// DeleteDataItem deletes the row the path root selects.
type DeleteDataItem struct {
	base
	PreviousValues map[string]interface{}
}

// DeleteDataItemNested deletes the row at the end of the path.
type DeleteDataItemNested struct {
	base
}

// DeleteRelationCheck verifies that no required relation still points at
// the node about to be deleted.
type DeleteRelationCheck struct {
	base
}

// NestedCreateRelation links a freshly created child to its parent.
type NestedCreateRelation struct {
	base
	TopIsCreate bool
}

// NestedConnectRelation links an existing node to the parent.
type NestedConnectRelation struct {
	base
	TopIsCreate bool
}

// NestedDisconnectRelation removes the link at the path's last edge.
type NestedDisconnectRelation struct {
	base
}

// NestedUpdateDataItem patches the node at the end of the path.
type NestedUpdateDataItem struct {
	base
	NonListArgs map[string]interface{}
	ListArgs    []arguments.ListArg
}

// CascadingDeleteRelationMutactions cleans up the relation rows along one
// cascading path segment.
type CascadingDeleteRelationMutactions struct {
	base
}

func (VerifyWhere) Kind() string                       { return "VerifyWhere" }
func (VerifyConnection) Kind() string                  { return "VerifyConnection" }
func (CreateDataItem) Kind() string                    { return "CreateDataItem" }
func (UpdateDataItem) Kind() string                    { return "UpdateDataItem" }
func (UpsertDataItem) Kind() string                    { return "UpsertDataItem" }
func (UpsertDataItemIfInRelationWith) Kind() string    { return "UpsertDataItemIfInRelationWith" }
func (DeleteDataItem) Kind() string                    { return "DeleteDataItem" }
func (DeleteDataItemNested) Kind() string              { return "DeleteDataItemNested" }
func (DeleteRelationCheck) Kind() string               { return "DeleteRelationCheck" }
func (NestedCreateRelation) Kind() string              { return "NestedCreateRelation" }
func (NestedConnectRelation) Kind() string             { return "NestedConnectRelation" }
func (NestedDisconnectRelation) Kind() string          { return "NestedDisconnectRelation" }
func (NestedUpdateDataItem) Kind() string              { return "NestedUpdateDataItem" }
func (CascadingDeleteRelationMutactions) Kind() string { return "CascadingDeleteRelationMutactions" }

// at builds the embedded base; the constructors below keep call sites terse.
func at(project *schema.Project, p path.Path) base {
	return base{project: project, path: p}
}

// NewVerifyWhere probes sel for existence.
func NewVerifyWhere(project *schema.Project, p path.Path, sel path.NodeSelector) VerifyWhere {
	return VerifyWhere{base: at(project, p), Where: sel}
}

// NewVerifyConnection probes the link at the end of p.
func NewVerifyConnection(project *schema.Project, p path.Path) VerifyConnection {
	return VerifyConnection{base: at(project, p)}
}

// NewCreateDataItem inserts a row at the end of p.
func NewCreateDataItem(project *schema.Project, p path.Path, nonList map[string]interface{}, list []arguments.ListArg) CreateDataItem {
	return CreateDataItem{base: at(project, p), NonListArgs: nonList, ListArgs: list}
}

// NewUpdateDataItem patches the root row of p.
func NewUpdateDataItem(project *schema.Project, p path.Path, nonList map[string]interface{}, list []arguments.ListArg, prev map[string]interface{}) UpdateDataItem {
	return UpdateDataItem{base: at(project, p), NonListArgs: nonList, ListArgs: list, PreviousValues: prev}
}

// NewUpsertDataItem is the top-level upsert.
func NewUpsertDataItem(project *schema.Project, p path.Path, createWhere, updatedWhere path.NodeSelector,
	createNonList map[string]interface{}, createList []arguments.ListArg,
	updateNonList map[string]interface{}, updateList []arguments.ListArg) UpsertDataItem {
	return UpsertDataItem{
		base:          at(project, p),
		CreateWhere:   createWhere,
		UpdatedWhere:  updatedWhere,
		CreateNonList: createNonList,
		CreateList:    createList,
		UpdateNonList: updateNonList,
		UpdateList:    updateList,
	}
}

// NewUpsertDataItemIfInRelationWith is the nested upsert.
func NewUpsertDataItemIfInRelationWith(project *schema.Project, p path.Path, createWhere path.NodeSelector,
	createNonList map[string]interface{}, createList []arguments.ListArg,
	updateNonList map[string]interface{}, updateList []arguments.ListArg,
	pathForUpdateBranch path.Path) UpsertDataItemIfInRelationWith {
	return UpsertDataItemIfInRelationWith{
		base:                at(project, p),
		CreateWhere:         createWhere,
		CreateNonList:       createNonList,
		CreateList:          createList,
		UpdateNonList:       updateNonList,
		UpdateList:          updateList,
		PathForUpdateBranch: pathForUpdateBranch,
	}
}

// NewDeleteDataItem deletes the root row of p.
func NewDeleteDataItem(project *schema.Project, p path.Path, prev map[string]interface{}) DeleteDataItem {
	return DeleteDataItem{base: at(project, p), PreviousValues: prev}
}

// NewDeleteDataItemNested deletes the row at the end of p.
func NewDeleteDataItemNested(project *schema.Project, p path.Path) DeleteDataItemNested {
	return DeleteDataItemNested{base: at(project, p)}
}

// NewDeleteRelationCheck guards a delete against dangling required
// relations.
func NewDeleteRelationCheck(project *schema.Project, p path.Path) DeleteRelationCheck {
	return DeleteRelationCheck{base: at(project, p)}
}

// NewNestedCreateRelation links the freshly created node at the end of p.
func NewNestedCreateRelation(project *schema.Project, p path.Path, topIsCreate bool) NestedCreateRelation {
	return NestedCreateRelation{base: at(project, p), TopIsCreate: topIsCreate}
}

// NewNestedConnectRelation links the existing node at the end of p.
func NewNestedConnectRelation(project *schema.Project, p path.Path, topIsCreate bool) NestedConnectRelation {
	return NestedConnectRelation{base: at(project, p), TopIsCreate: topIsCreate}
}

// NewNestedDisconnectRelation unlinks the node at the end of p.
func NewNestedDisconnectRelation(project *schema.Project, p path.Path) NestedDisconnectRelation {
	return NestedDisconnectRelation{base: at(project, p)}
}

// NewNestedUpdateDataItem patches the node at the end of p.
func NewNestedUpdateDataItem(project *schema.Project, p path.Path, nonList map[string]interface{}, list []arguments.ListArg) NestedUpdateDataItem {
	return NestedUpdateDataItem{base: at(project, p), NonListArgs: nonList, ListArgs: list}
}

// NewCascadingDeleteRelationMutactions cleans up relations along p.
func NewCascadingDeleteRelationMutactions(project *schema.Project, p path.Path) CascadingDeleteRelationMutactions {
	return CascadingDeleteRelationMutactions{base: at(project, p)}
}
