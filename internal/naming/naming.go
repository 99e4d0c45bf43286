// Package naming derives the GraphQL mutation surface names from model
// names. It handles casing and pluralization.
package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// CreateFieldName returns the top-level create mutation field for a model.
// Example: "User" -> "createUser".
func CreateFieldName(model string) string { return "create" + toPascalCase(model) }

// UpdateFieldName returns the top-level update mutation field for a model.
func UpdateFieldName(model string) string { return "update" + toPascalCase(model) }

// UpsertFieldName returns the top-level upsert mutation field for a model.
func UpsertFieldName(model string) string { return "upsert" + toPascalCase(model) }

// DeleteFieldName returns the top-level delete mutation field for a model.
func DeleteFieldName(model string) string { return "delete" + toPascalCase(model) }

// EntityFieldName returns the payload field holding the written node.
// Example: "User" -> "user".
func EntityFieldName(model string) string { return toCamelCase(model) }

// ListFieldName returns the field name for a list of nodes.
// Example: "Post" -> "posts".
func ListFieldName(model string) string {
	return Pluralize(toCamelCase(model))
}

// Pluralize converts a singular word to its plural form.
func Pluralize(word string) string { return inflection.Plural(word) }

// Singularize converts a plural word to its singular form.
func Singularize(word string) string { return inflection.Singular(word) }

// InputTypeName returns the input object type name for one operation on a
// model. Example: ("Post", "WhereUnique") -> "PostWhereUniqueInput".
func InputTypeName(model, operation string) string {
	return toPascalCase(model) + operation + "Input"
}

// NestedInputTypeName returns the input object type name for a nested
// operation under one relation field.
// Example: ("User", "posts", "Update") -> "UserPostsNestedUpdateInput".
func NestedInputTypeName(model, field, operation string) string {
	return toPascalCase(model) + toPascalCase(field) + "Nested" + operation + "Input"
}

func toPascalCase(name string) string {
	parts := splitWords(name)
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func toCamelCase(name string) string {
	pascal := toPascalCase(name)
	if pascal == "" {
		return pascal
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// splitWords splits snake_case, kebab-case, and camelCase names into words.
func splitWords(name string) []string {
	var words []string
	var current strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		case unicode.IsUpper(r) && i > 0 && current.Len() > 0:
			words = append(words, current.String())
			current.Reset()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
