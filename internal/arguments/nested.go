package arguments

import (
	"fmt"

	"graphql-datalayer/internal/path"
	"graphql-datalayer/internal/schema"
)

// NestedMutations groups the nested write fragments found under one
// relation field, one slice per operation kind. Slice order is input order
// and is preserved through planning.
type NestedMutations struct {
	Creates     []NestedCreate
	Connects    []NestedConnect
	Disconnects []NestedDisconnect
	Deletes     []NestedDelete
	Updates     []NestedUpdate
	Upserts     []NestedUpsert
}

// IsEmpty reports whether no fragment of any kind is present.
func (n NestedMutations) IsEmpty() bool {
	return len(n.Creates) == 0 && len(n.Connects) == 0 && len(n.Disconnects) == 0 &&
		len(n.Deletes) == 0 && len(n.Updates) == 0 && len(n.Upserts) == 0
}

// HasCreateLike reports whether a fragment exists that can satisfy a
// required relation from a parent create: a nested create or a connect.
func (n NestedMutations) HasCreateLike() bool {
	return len(n.Creates) > 0 || len(n.Connects) > 0
}

// NestedCreate is one nested create fragment with its payload.
type NestedCreate struct {
	Data CoolArgs
}

// NestedConnect links an existing node, always addressed by where.
type NestedConnect struct {
	Where path.NodeSelector
}

// NestedDisconnect unlinks a related node. Where is nil when the fragment
// addresses the node through the relation itself (to-one `disconnect: true`).
type NestedDisconnect struct {
	Where *path.NodeSelector
}

// NestedDelete deletes a related node, addressed like NestedDisconnect.
type NestedDelete struct {
	Where *path.NodeSelector
}

// NestedUpdate patches a related node. A nil Where addresses it by
// relation.
type NestedUpdate struct {
	Where *path.NodeSelector
	Data  CoolArgs
}

// NestedUpsert updates a related node when it exists, creates it otherwise.
type NestedUpsert struct {
	Where  *path.NodeSelector
	Create CoolArgs
	Update CoolArgs
}

// SubNestedMutation extracts and types the nested payload under one
// relation field. An absent or empty payload yields the zero value.
func (c CoolArgs) SubNestedMutation(f *schema.Field, related *schema.Model) (NestedMutations, error) {
	var out NestedMutations
	v, ok := c.raw[f.Name]
	if !ok || v == nil {
		return out, nil
	}
	payload, ok := v.(map[string]interface{})
	if !ok {
		return out, fmt.Errorf("relation field %s: expected nested mutation object, got %T", f.Name, v)
	}

	for _, raw := range asFragmentList(payload["create"]) {
		data, ok := raw.(map[string]interface{})
		if !ok {
			return out, fmt.Errorf("relation field %s: create fragment must be an object, got %T", f.Name, raw)
		}
		out.Creates = append(out.Creates, NestedCreate{Data: New(data)})
	}

	for _, raw := range asFragmentList(payload["connect"]) {
		where, err := selectorFromWhere(related, raw)
		if err != nil {
			return out, fmt.Errorf("relation field %s: connect: %w", f.Name, err)
		}
		out.Connects = append(out.Connects, NestedConnect{Where: *where})
	}

	for _, raw := range asFragmentList(payload["disconnect"]) {
		where, err := optionalSelector(related, raw)
		if err != nil {
			return out, fmt.Errorf("relation field %s: disconnect: %w", f.Name, err)
		}
		out.Disconnects = append(out.Disconnects, NestedDisconnect{Where: where})
	}

	for _, raw := range asFragmentList(payload["delete"]) {
		where, err := optionalSelector(related, raw)
		if err != nil {
			return out, fmt.Errorf("relation field %s: delete: %w", f.Name, err)
		}
		out.Deletes = append(out.Deletes, NestedDelete{Where: where})
	}

	for _, raw := range asFragmentList(payload["update"]) {
		frag, ok := raw.(map[string]interface{})
		if !ok {
			return out, fmt.Errorf("relation field %s: update fragment must be an object, got %T", f.Name, raw)
		}
		update, err := updateFromFragment(related, frag)
		if err != nil {
			return out, fmt.Errorf("relation field %s: update: %w", f.Name, err)
		}
		out.Updates = append(out.Updates, update)
	}

	for _, raw := range asFragmentList(payload["upsert"]) {
		frag, ok := raw.(map[string]interface{})
		if !ok {
			return out, fmt.Errorf("relation field %s: upsert fragment must be an object, got %T", f.Name, raw)
		}
		upsert, err := upsertFromFragment(related, frag)
		if err != nil {
			return out, fmt.Errorf("relation field %s: upsert: %w", f.Name, err)
		}
		out.Upserts = append(out.Upserts, upsert)
	}

	return out, nil
}

// asFragmentList normalizes a payload entry into a list of fragments: a
// list stays a list, a single object or `true` becomes a one-element list,
// absent becomes empty.
func asFragmentList(v interface{}) []interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return val
	default:
		return []interface{}{val}
	}
}

// selectorFromWhere types a where object ({uniqueField: value}) as a
// NodeSelector on the related model.
func selectorFromWhere(related *schema.Model, raw interface{}) (*path.NodeSelector, error) {
	where, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("where must be an object, got %T", raw)
	}
	if len(where) != 1 {
		return nil, fmt.Errorf("where must select exactly one unique field, got %d", len(where))
	}
	for name, value := range where {
		field := related.FieldByName(name)
		if field == nil {
			return nil, fmt.Errorf("unknown field %q on model %s", name, related.Name)
		}
		sel := path.NodeSelector{Model: related, Field: field, Value: value}
		return &sel, nil
	}
	return nil, fmt.Errorf("empty where")
}

// optionalSelector handles the to-one `true` form (addressing by relation,
// no selector) alongside the to-many where form.
func optionalSelector(related *schema.Model, raw interface{}) (*path.NodeSelector, error) {
	if b, ok := raw.(bool); ok {
		if !b {
			return nil, fmt.Errorf("expected true or a where object, got false")
		}
		return nil, nil
	}
	return selectorFromWhere(related, raw)
}

func updateFromFragment(related *schema.Model, frag map[string]interface{}) (NestedUpdate, error) {
	// To-many updates arrive as {where, data}; to-one updates are the bare
	// data object addressed by relation.
	if rawWhere, ok := frag["where"]; ok {
		where, err := selectorFromWhere(related, rawWhere)
		if err != nil {
			return NestedUpdate{}, err
		}
		data, ok := frag["data"].(map[string]interface{})
		if !ok {
			return NestedUpdate{}, fmt.Errorf("update by where requires a data object")
		}
		return NestedUpdate{Where: where, Data: New(data)}, nil
	}
	if data, ok := frag["data"].(map[string]interface{}); ok {
		return NestedUpdate{Data: New(data)}, nil
	}
	return NestedUpdate{Data: New(frag)}, nil
}

func upsertFromFragment(related *schema.Model, frag map[string]interface{}) (NestedUpsert, error) {
	create, ok := frag["create"].(map[string]interface{})
	if !ok {
		return NestedUpsert{}, fmt.Errorf("upsert requires a create object")
	}
	update, ok := frag["update"].(map[string]interface{})
	if !ok {
		return NestedUpsert{}, fmt.Errorf("upsert requires an update object")
	}
	out := NestedUpsert{Create: New(create), Update: New(update)}
	if rawWhere, ok := frag["where"]; ok {
		where, err := selectorFromWhere(related, rawWhere)
		if err != nil {
			return NestedUpsert{}, err
		}
		out.Where = where
	}
	return out, nil
}
