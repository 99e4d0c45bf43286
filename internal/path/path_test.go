package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphql-datalayer/internal/schema"
)

func blogProject() *schema.Project {
	userPosts := &schema.Relation{
		Name:   "PostToUser",
		ModelA: "User", FieldA: "posts",
		ModelB: "Post", FieldB: "author",
	}
	userProfile := &schema.Relation{
		Name:   "ProfileToUser",
		ModelA: "User", FieldA: "profile",
		ModelB: "Profile", FieldB: "user",
	}
	user := &schema.Model{
		Name: "User",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "name", Type: schema.TypeString},
			{Name: "posts", IsList: true, RelatedModel: "Post", Relation: userPosts},
			{Name: "profile", RelatedModel: "Profile", Relation: userProfile},
		},
	}
	post := &schema.Model{
		Name: "Post",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "title", Type: schema.TypeString},
			{Name: "author", IsRequired: true, RelatedModel: "User", Relation: userPosts},
		},
	}
	profile := &schema.Model{
		Name: "Profile",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "user", IsRequired: true, RelatedModel: "User", Relation: userProfile},
		},
	}
	return &schema.Project{ID: "blog", Schema: &schema.Schema{Models: []*schema.Model{user, post, profile}}}
}

func TestEmptyPath(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	p := New(ForID(user, "u1"))

	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.LastEdge())
	assert.Equal(t, user, p.LastModel())
	assert.Equal(t, "u1", p.Root().Value)
	assert.Equal(t, "id", p.Root().FieldName())
}

func TestExtend_ModelEdgeAndNodeEdge(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	base := New(ForID(user, "u1"))

	open := base.Extend(post, posts, nil)
	require.Equal(t, 1, open.Len())
	assert.IsType(t, ModelEdge{}, open.LastEdge())
	assert.Equal(t, post, open.LastModel())

	where := ForID(post, "p1")
	pinned := base.Extend(post, posts, &where)
	nodeEdge, ok := pinned.LastEdge().(NodeEdge)
	require.True(t, ok)
	assert.Equal(t, "p1", nodeEdge.ChildWhere().Value)

	// The original path is untouched.
	assert.Equal(t, 0, base.Len())
}

func TestLastEdgeToNodeEdge(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	open := New(ForID(user, "u1")).Extend(post, posts, nil)
	pinned := open.LastEdgeToNodeEdge(ForID(post, "p9"))

	nodeEdge, ok := pinned.LastEdge().(NodeEdge)
	require.True(t, ok)
	assert.Equal(t, "p9", nodeEdge.ChildWhere().Value)

	// The source path keeps its ModelEdge.
	assert.IsType(t, ModelEdge{}, open.LastEdge())
}

func TestRemoveLastEdge(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	p := New(ForID(user, "u1")).Extend(post, posts, nil)
	popped := p.RemoveLastEdge()

	assert.Equal(t, 0, popped.Len())
	assert.Equal(t, user, popped.LastModel())
	// Removing from the empty path is a no-op.
	assert.Equal(t, 0, popped.RemoveLastEdge().Len())
}

func TestWithRootValue(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")

	p := New(ForID(user, "u1"))
	moved := p.WithRootValue("u2")

	assert.Equal(t, "u2", moved.Root().Value)
	assert.Equal(t, "u1", p.Root().Value)
}

func TestRelationFieldsNotOnPath(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	root := New(ForID(user, "u1"))
	rootFields := root.RelationFieldsNotOnPath(project)
	require.Len(t, rootFields, 2)
	assert.Equal(t, "posts", rootFields[0].Name)
	assert.Equal(t, "profile", rootFields[1].Name)

	// After walking User -> posts, the Post.author inverse is excluded.
	extended := root.Extend(post, posts, nil)
	assert.Empty(t, extended.RelationFieldsNotOnPath(project))
}

func TestHasPrefix(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	root := New(ForID(user, "u1"))
	extended := root.Extend(post, posts, nil)

	assert.True(t, extended.HasPrefix(root))
	assert.True(t, extended.HasPrefix(extended))
	assert.False(t, root.HasPrefix(extended))

	otherRoot := New(ForID(user, "u2"))
	assert.False(t, extended.HasPrefix(otherRoot))
}

func TestString(t *testing.T) {
	project := blogProject()
	user := project.Schema.ModelByName("User")
	post := project.Schema.ModelByName("Post")
	posts := user.FieldByName("posts")

	where := ForID(post, "p1")
	p := New(ForID(user, "u1")).Extend(post, posts, &where)
	assert.Equal(t, "User(id=u1) -posts-> Post(id=p1)", p.String())
}
