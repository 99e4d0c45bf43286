package arguments

import (
	"fmt"

	"graphql-datalayer/internal/schema"
)

// Convert normalizes a non-list create arg map into the executor's
// canonical form: default values are materialized for absent fields, enum
// values are validated against the schema, and accidental single-element
// list wrappers around non-list values are flattened.
func Convert(model *schema.Model, nonList map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(nonList))
	for name, value := range nonList {
		out[name] = value
	}

	for _, f := range model.ScalarFields() {
		if f.IsList {
			continue
		}
		value, ok := out[f.Name]
		if !ok {
			if f.HasDefault {
				out[f.Name] = f.DefaultValue
			}
			continue
		}
		if wrapped, isList := value.([]interface{}); isList {
			if len(wrapped) != 1 {
				return nil, fmt.Errorf("field %s.%s: expected a single value, got a list of %d", model.Name, f.Name, len(wrapped))
			}
			value = wrapped[0]
			out[f.Name] = value
		}
		if f.Type == schema.TypeEnum && value != nil {
			str, isStr := value.(string)
			if !isStr {
				return nil, fmt.Errorf("field %s.%s: enum value must be a string, got %T", model.Name, f.Name, value)
			}
			if !containsString(f.EnumValues, str) {
				return nil, fmt.Errorf("field %s.%s: %q is not a value of the enum", model.Name, f.Name, str)
			}
		}
	}
	return out, nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
