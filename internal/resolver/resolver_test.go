package resolver

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphql-datalayer/internal/cuid"
	"graphql-datalayer/internal/mutaction"
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
			{Name: "name", Type: schema.TypeString, IsRequired: true},
			{Name: "email", Type: schema.TypeString, IsUnique: true},
			{Name: "posts", IsList: true, RelatedModel: "Post", Relation: postToUser},
		},
	}
	post := &schema.Model{
		Name: "Post",
		Fields: []*schema.Field{
			{Name: "id", Type: schema.TypeID},
			{Name: "title", Type: schema.TypeString, IsRequired: true},
			{Name: "author", IsRequired: true, RelatedModel: "User", Relation: postToUser},
		},
	}
	return &schema.Project{ID: "blog", Schema: &schema.Schema{Models: []*schema.Model{user, post}}}
}

type planCapture struct {
	plans [][]mutaction.Mutaction
}

func (c *planCapture) run(_ context.Context, plan []mutaction.Mutaction) error {
	c.plans = append(c.plans, plan)
	return nil
}

func buildTestSchema(t *testing.T) (graphql.Schema, *planCapture) {
	t.Helper()
	capture := &planCapture{}
	res, err := New(Options{
		Project: blogProject(),
		IDs:     cuid.NewSequence("n"),
		Run:     capture.run,
	})
	require.NoError(t, err)
	gqlSchema, err := res.BuildSchema()
	require.NoError(t, err)
	return gqlSchema, capture
}

func kinds(plan []mutaction.Mutaction) []string {
	out := make([]string, len(plan))
	for i, m := range plan {
		out[i] = m.Kind()
	}
	return out
}

func TestBuildSchema_MutationSurface(t *testing.T) {
	gqlSchema, _ := buildTestSchema(t)

	mutation := gqlSchema.MutationType()
	require.NotNil(t, mutation)
	fields := mutation.Fields()

	for _, name := range []string{
		"createUser", "updateUser", "upsertUser", "deleteUser",
		"createPost", "updatePost", "upsertPost", "deletePost",
	} {
		assert.Contains(t, fields, name)
	}
}

func TestCreateMutation_PlansAndReturnsNode(t *testing.T) {
	gqlSchema, capture := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: gqlSchema,
		RequestString: `mutation {
			createUser(data: {name: "Alice", posts: {create: [{title: "T"}]}}) {
				id
				name
			}
		}`,
	})
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	node := data["createUser"].(map[string]interface{})
	assert.Equal(t, "n1", node["id"])
	assert.Equal(t, "Alice", node["name"])

	require.Len(t, capture.plans, 1)
	assert.Equal(t, []string{"CreateDataItem", "CreateDataItem", "NestedCreateRelation"}, kinds(capture.plans[0]))
}

func TestCreateMutation_RequiredRelationError(t *testing.T) {
	gqlSchema, capture := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: gqlSchema,
		RequestString: `mutation {
			createPost(data: {title: "T"}) { id }
		}`,
	})
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, `relation field "author"`)
	assert.Empty(t, capture.plans, "no plan reaches the executor on planning failure")
}

func TestUpdateMutation_NestedDelete(t *testing.T) {
	gqlSchema, capture := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: gqlSchema,
		RequestString: `mutation {
			updateUser(
				where: {id: "u1"}
				data: {name: "Bob", posts: {delete: [{id: "p1"}]}}
			) {
				id
				name
			}
		}`,
	})
	require.Empty(t, result.Errors)

	require.Len(t, capture.plans, 1)
	assert.Equal(t, []string{
		"UpdateDataItem",
		"VerifyWhere",
		"VerifyConnection",
		"DeleteRelationCheck",
		"DeleteDataItemNested",
	}, kinds(capture.plans[0]))

	node := result.Data.(map[string]interface{})["updateUser"].(map[string]interface{})
	assert.Equal(t, "u1", node["id"])
	assert.Equal(t, "Bob", node["name"])
}

func TestUpsertMutation_SingleMutaction(t *testing.T) {
	gqlSchema, capture := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: gqlSchema,
		RequestString: `mutation {
			upsertUser(
				where: {email: "a@example.com"}
				create: {name: "Alice"}
				update: {name: "Alice Updated"}
			) {
				name
			}
		}`,
	})
	require.Empty(t, result.Errors)

	require.Len(t, capture.plans, 1)
	require.Equal(t, []string{"UpsertDataItem"}, kinds(capture.plans[0]))

	upsert := capture.plans[0][0].(mutaction.UpsertDataItem)
	assert.Equal(t, "a@example.com", upsert.UpdatedWhere.Value)
	assert.Equal(t, "n1", upsert.CreateWhere.Value)
}

func TestDeleteMutation(t *testing.T) {
	gqlSchema, capture := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema: gqlSchema,
		RequestString: `mutation {
			deleteUser(where: {id: "u9"}) { id }
		}`,
	})
	require.Empty(t, result.Errors)

	require.Len(t, capture.plans, 1)
	assert.Equal(t, []string{"VerifyWhere", "DeleteRelationCheck", "DeleteDataItem"}, kinds(capture.plans[0]))

	node := result.Data.(map[string]interface{})["deleteUser"].(map[string]interface{})
	assert.Equal(t, "u9", node["id"])
}

func TestQueryRoot_ProjectID(t *testing.T) {
	gqlSchema, _ := buildTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        gqlSchema,
		RequestString: `{ projectId }`,
	})
	require.Empty(t, result.Errors)
	assert.Equal(t, "blog", result.Data.(map[string]interface{})["projectId"])
}
