package v1

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON schema of a profile file.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			// free-form assertion payloads
			if t == reflect.TypeOf(map[string]any{}) {
				return &jsonschema.Schema{Type: "object"}
			}
			return nil
		},
	}
	schema, err := r.ReflectFromType(reflect.TypeOf(Profile{})).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to create json schema for profile: %w", err)
	}
	return schema, nil
}
