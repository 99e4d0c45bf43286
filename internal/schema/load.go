package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileSchema is the on-disk schema document shape.
type fileSchema struct {
	Models    []fileModel    `json:"models"`
	Relations []fileRelation `json:"relations"`
}

type fileModel struct {
	Name   string      `json:"name"`
	Fields []fileField `json:"fields"`
}

type fileField struct {
	Name         string      `json:"name"`
	Type         string      `json:"type,omitempty"`
	IsRequired   bool        `json:"isRequired,omitempty"`
	IsList       bool        `json:"isList,omitempty"`
	IsUnique     bool        `json:"isUnique,omitempty"`
	EnumValues   []string    `json:"enumValues,omitempty"`
	Default      interface{} `json:"default,omitempty"`
	HasDefault   bool        `json:"hasDefault,omitempty"`
	RelatedModel string      `json:"relatedModel,omitempty"`
	Relation     string      `json:"relation,omitempty"`
}

type fileRelation struct {
	Name      string `json:"name"`
	ModelA    string `json:"modelA"`
	FieldA    string `json:"fieldA,omitempty"`
	OnDeleteA string `json:"onDeleteA,omitempty"`
	ModelB    string `json:"modelB"`
	FieldB    string `json:"fieldB,omitempty"`
	OnDeleteB string `json:"onDeleteB,omitempty"`
}

// LoadProjectFile reads a project schema document from disk, resolves its
// relation references, and validates the result.
func LoadProjectFile(projectID, path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseProject(projectID, data)
}

// ParseProject builds a validated Project from a schema document.
func ParseProject(projectID string, data []byte) (*Project, error) {
	var doc fileSchema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	relations := make(map[string]*Relation, len(doc.Relations))
	for _, r := range doc.Relations {
		if _, exists := relations[r.Name]; exists {
			return nil, fmt.Errorf("duplicate relation %q", r.Name)
		}
		relations[r.Name] = &Relation{
			Name:      r.Name,
			ModelA:    r.ModelA,
			FieldA:    r.FieldA,
			OnDeleteA: parseOnDelete(r.OnDeleteA),
			ModelB:    r.ModelB,
			FieldB:    r.FieldB,
			OnDeleteB: parseOnDelete(r.OnDeleteB),
		}
	}

	s := &Schema{}
	for _, fm := range doc.Models {
		model := &Model{Name: fm.Name}
		for _, ff := range fm.Fields {
			field := &Field{
				Name:         ff.Name,
				IsRequired:   ff.IsRequired,
				IsList:       ff.IsList,
				IsUnique:     ff.IsUnique,
				EnumValues:   ff.EnumValues,
				DefaultValue: ff.Default,
				HasDefault:   ff.HasDefault,
			}
			if ff.Relation != "" {
				rel, ok := relations[ff.Relation]
				if !ok {
					return nil, fmt.Errorf("model %s: field %q references unknown relation %q", fm.Name, ff.Name, ff.Relation)
				}
				field.Relation = rel
				field.RelatedModel = ff.RelatedModel
			} else {
				field.Type = ScalarType(ff.Type)
			}
			model.Fields = append(model.Fields, field)
		}
		s.Models = append(s.Models, model)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Project{ID: projectID, Schema: s}, nil
}

func parseOnDelete(value string) OnDelete {
	if value == string(OnDeleteCascade) {
		return OnDeleteCascade
	}
	return OnDeleteSetNull
}
