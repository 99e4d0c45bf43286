// Package arguments models the typed input tree of one write request: the
// per-model argument map (CoolArgs), its create/update scalar splits, and
// the per-relation-field nested mutation groupings the planner expands.
package arguments

import (
	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

// CoolArgs is the typed argument map for one model. Values are already
// coerced scalars; relation field keys hold nested mutation payloads.
type CoolArgs struct {
	raw map[string]interface{}
}

// New wraps a coerced argument map. The map is not copied; callers hand
// over ownership.
func New(raw map[string]interface{}) CoolArgs {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return CoolArgs{raw: raw}
}

// Raw exposes the underlying map for read-only iteration.
func (c CoolArgs) Raw() map[string]interface{} { return c.raw }

// Get returns the value for name and whether it is present.
func (c CoolArgs) Get(name string) (interface{}, bool) {
	v, ok := c.raw[name]
	return v, ok
}

// ListArg is one scalar-list assignment: the field and its full new value
// set. List columns are replaced wholesale, never patched.
type ListArg struct {
	Field  *schema.Field
	Values []interface{}
}

// NonListScalarArgs returns the non-list scalar assignments present in the
// map, keyed by field name. Relation fields and list fields are skipped.
func (c CoolArgs) NonListScalarArgs(model *schema.Model) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range model.ScalarFields() {
		if f.IsList {
			continue
		}
		if v, ok := c.raw[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

// ScalarListArgs returns the scalar-list assignments present in the map, in
// field declaration order.
func (c CoolArgs) ScalarListArgs(model *schema.Model) []ListArg {
	var out []ListArg
	for _, f := range model.ScalarFields() {
		if !f.IsList {
			continue
		}
		v, ok := c.raw[f.Name]
		if !ok {
			continue
		}
		values, ok := v.([]interface{})
		if !ok {
			values = []interface{}{v}
		}
		out = append(out, ListArg{Field: f, Values: values})
	}
	return out
}

// SplitCreate splits the map into (non-list scalar args, scalar-list args)
// for a create write.
func (c CoolArgs) SplitCreate(model *schema.Model) (map[string]interface{}, []ListArg) {
	return c.NonListScalarArgs(model), c.ScalarListArgs(model)
}

// SplitUpdate splits the map for an update write. The split is shape-wise
// identical to SplitCreate; absent fields mean "leave untouched" rather
// than "unset", which the executor distinguishes by operation kind.
func (c CoolArgs) SplitUpdate(model *schema.Model) (map[string]interface{}, []ListArg) {
	return c.NonListScalarArgs(model), c.ScalarListArgs(model)
}

// GenerateNonListCreateArgs returns the non-list scalar args with the
// selector's key merged in. This is how plan-time minted IDs become part of
// the persisted row.
func (c CoolArgs) GenerateNonListCreateArgs(model *schema.Model, sel path.NodeSelector) map[string]interface{} {
	out := c.NonListScalarArgs(model)
	if name := sel.FieldName(); name != "" {
		if _, ok := out[name]; !ok {
			out[name] = sel.Value
		}
	}
	return out
}
