package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphql-datalayer/internal/arguments"
	"graphql-datalayer/internal/mutaction"
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

func blogProject() *schema.Project {
	postToUser := &schema.Relation{
		Name:   "PostToUser",
		ModelA: "User", FieldA: "posts",
		ModelB: "Post", FieldB: "author",
	}
	user := &schema.Model{
		Name: "User",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "name", Type: schema.TypeString},
			{Name: "tags", Type: schema.TypeString, IsList: true},
			{Name: "posts", IsList: true, RelatedModel: "Post", Relation: postToUser},
		},
	}
	post := &schema.Model{
		Name: "Post",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "title", Type: schema.TypeString},
			{Name: "author", IsRequired: true, RelatedModel: "User", Relation: postToUser},
		},
	}
	return &schema.Project{ID: "blog", Schema: &schema.Schema{Models: []*schema.Model{user, post}}}
}

func userPath(project *schema.Project, id string) path.Path {
	return path.New(path.ForID(project.Schema.ModelByName("User"), id))
}

func postEdge(project *schema.Project, root path.Path, postID string) path.Path {
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	where := path.ForID(post, postID)
	return root.Extend(post, user.FieldByName("posts"), &where)
}

func TestRender_VerifyWhere(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	m := mutaction.NewVerifyWhere(project, root, root.Root())

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, KindProbeExists, stmts[0].Kind)
	assert.Contains(t, stmts[0].SQL, "SELECT `id` FROM `User`")
	assert.Contains(t, stmts[0].SQL, "`id` = ?")
	assert.Contains(t, stmts[0].SQL, "LIMIT 1")
	assert.Equal(t, []interface{}{"u1"}, stmts[0].Args)
}

func TestRender_VerifyConnection(t *testing.T) {
	project := blogProject()
	p := postEdge(project, userPath(project, "u1"), "p1")
	m := mutaction.NewVerifyConnection(project, p)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, KindProbeExists, stmts[0].Kind)
	assert.Contains(t, stmts[0].SQL, "FROM `_PostToUser`")
	assert.Contains(t, stmts[0].SQL, "`A` = (SELECT `id` FROM `User` WHERE `id` = ?)")
	assert.Contains(t, stmts[0].SQL, "`B` = (SELECT `id` FROM `Post` WHERE `id` = ?)")
	assert.Equal(t, []interface{}{"u1", "p1"}, stmts[0].Args)
}

func TestRender_CreateDataItem(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	m := mutaction.NewCreateDataItem(project, root,
		map[string]interface{}{"id": "u1", "name": "Alice"},
		[]arguments.ListArg{{
			Field:  project.Schema.ModelByName("User").FieldByName("tags"),
			Values: []interface{}{"a", "b"},
		}},
	)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Equal(t, KindWrite, stmts[0].Kind)
	assert.Contains(t, stmts[0].SQL, "INSERT INTO `User`")
	assert.Contains(t, stmts[0].SQL, "`id`")
	assert.Contains(t, stmts[0].SQL, "`name`")
	// Columns follow field declaration order, so args are deterministic.
	assert.Equal(t, []interface{}{"u1", "Alice"}, stmts[0].Args)

	assert.Contains(t, stmts[1].SQL, "INSERT INTO `User_tags`")
	assert.Contains(t, stmts[1].SQL, "`nodeId`")
	assert.Contains(t, stmts[1].SQL, "`position`")
	assert.Contains(t, stmts[1].SQL, "`value`")
	assert.Equal(t, []interface{}{"u1", 1000, "a", "u1", 2000, "b"}, stmts[1].Args)
}

func TestRender_UpdateDataItem(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	m := mutaction.NewUpdateDataItem(project, root,
		map[string]interface{}{"name": "Bob"}, nil, nil)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, "UPDATE `User` SET `name` = ?")
	assert.Contains(t, stmts[0].SQL, "`id` = ?")
	assert.Equal(t, []interface{}{"Bob", "u1"}, stmts[0].Args)
}

func TestRender_NestedUpdateDataItem(t *testing.T) {
	project := blogProject()
	p := postEdge(project, userPath(project, "u1"), "p1")
	m := mutaction.NewNestedUpdateDataItem(project, p, map[string]interface{}{"title": "T"}, nil)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, "UPDATE `Post` SET `title` = ?")
	assert.Equal(t, []interface{}{"T", "p1"}, stmts[0].Args)
}

func TestRender_DeleteDataItem(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	m := mutaction.NewDeleteDataItem(project, root, nil)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "DELETE FROM `User` WHERE `id` = ?", stmts[0].SQL)
	assert.Equal(t, []interface{}{"u1"}, stmts[0].Args)
}

func TestRender_DeleteDataItemNested(t *testing.T) {
	project := blogProject()
	p := postEdge(project, userPath(project, "u1"), "p1")
	m := mutaction.NewDeleteDataItemNested(project, p)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "DELETE FROM `Post` WHERE `id` = ?", stmts[0].SQL)
	assert.Equal(t, []interface{}{"p1"}, stmts[0].Args)
}

func TestRender_DeleteRelationCheck(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	m := mutaction.NewDeleteRelationCheck(project, root)

	stmts, err := Render(m)
	require.NoError(t, err)
	// Post.author is required and points at User, so one guard probe.
	require.Len(t, stmts, 1)
	assert.Equal(t, KindProbeAbsent, stmts[0].Kind)
	assert.Contains(t, stmts[0].SQL, "FROM `_PostToUser`")
	assert.Contains(t, stmts[0].SQL, "`A` = (SELECT `id` FROM `User` WHERE `id` = ?)")
	assert.Equal(t, []interface{}{"u1"}, stmts[0].Args)
}

func TestRender_LinkRelation(t *testing.T) {
	project := blogProject()
	p := postEdge(project, userPath(project, "u1"), "p1")

	for _, m := range []mutaction.Mutaction{
		mutaction.NewNestedCreateRelation(project, p, true),
		mutaction.NewNestedConnectRelation(project, p, false),
	} {
		stmts, err := Render(m)
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		assert.Equal(t, KindWrite, stmts[0].Kind)
		assert.Contains(t, stmts[0].SQL, "INSERT INTO `_PostToUser` (`A`,`B`)")
		assert.Contains(t, stmts[0].SQL, "(SELECT `id` FROM `User` WHERE `id` = ?)")
		assert.Contains(t, stmts[0].SQL, "(SELECT `id` FROM `Post` WHERE `id` = ?)")
		assert.Equal(t, []interface{}{"u1", "p1"}, stmts[0].Args)
	}
}

func TestRender_UnlinkRelation(t *testing.T) {
	project := blogProject()
	p := postEdge(project, userPath(project, "u1"), "p1")
	m := mutaction.NewNestedDisconnectRelation(project, p)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, "DELETE FROM `_PostToUser`")
	assert.Contains(t, stmts[0].SQL, "`A` = (SELECT `id` FROM `User` WHERE `id` = ?)")
	assert.Contains(t, stmts[0].SQL, "`B` = (SELECT `id` FROM `Post` WHERE `id` = ?)")
}

func TestRender_CascadeCleanup(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	p := userPath(project, "u1").Extend(post, user.FieldByName("posts"), nil)
	m := mutaction.NewCascadingDeleteRelationMutactions(project, p)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	// Far rows first, then their link rows.
	assert.Contains(t, stmts[0].SQL, "DELETE FROM `Post`")
	assert.Contains(t, stmts[0].SQL, "`id` IN (SELECT `B` FROM `_PostToUser`")
	assert.Contains(t, stmts[1].SQL, "DELETE FROM `_PostToUser`")
	assert.Contains(t, stmts[1].SQL, "`A` IN (SELECT `id` FROM `User` WHERE `id` = ?)")
}

func TestRender_Upsert(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")
	user := project.Schema.ModelByName("User")
	m := mutaction.NewUpsertDataItem(project, root,
		path.ForID(user, "new1"), root.Root(),
		map[string]interface{}{"id": "new1", "name": "A"}, nil,
		map[string]interface{}{"name": "B"}, nil,
	)

	stmts, err := Render(m)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, "INSERT INTO `User`")
	assert.Contains(t, stmts[0].SQL, "ON DUPLICATE KEY UPDATE `name` = ?")
	assert.Equal(t, []interface{}{"new1", "A", "B"}, stmts[0].Args)
}

func TestRenderPlan_PreservesOrder(t *testing.T) {
	project := blogProject()
	root := userPath(project, "u1")

	plan := []mutaction.Mutaction{
		mutaction.NewVerifyWhere(project, root, root.Root()),
		mutaction.NewDeleteRelationCheck(project, root),
		mutaction.NewDeleteDataItem(project, root, nil),
	}
	stmts, err := RenderPlan(plan)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, KindProbeExists, stmts[0].Kind)
	assert.Equal(t, KindProbeAbsent, stmts[1].Kind)
	assert.Equal(t, KindWrite, stmts[2].Kind)
}
