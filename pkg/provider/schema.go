package provider

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

type Schema struct {
	Name        string
	Description string

	Schema map[string]any
}

// SchemaFor derives a response schema from the Go type T.
func SchemaFor[T any](name, description string) (*Schema, error) {
	s, err := jsonschema.For[T](nil)

	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(s)

	if err != nil {
		return nil, err
	}

	var schema map[string]any

	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}

	return &Schema{
		Name:        name,
		Description: description,

		Schema: schema,
	}, nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any](name, description string) *Schema {
	s, err := SchemaFor[T](name, description)

	if err != nil {
		panic(err)
	}

	return s
}
