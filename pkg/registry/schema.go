package registry

import (
	"context"
	"encoding/json"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/invopop/jsonschema"
)

// Keys emitted by JSON schema generators that are not part of a parameter schema.
var schemaMetaKeys = []string{"$schema", "$id", "$defs", "definitions"}

// SchemaFor derives a parameter schema from the exported fields of T.
// Field names follow `json` tags; `jsonschema:"required"` and `jsonschema:"description=..."`
// tags are honoured.
func SchemaFor[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var zero T
	data, err := json.Marshal(reflector.Reflect(zero))
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	for _, k := range schemaMetaKeys {
		delete(out, k)
	}
	return out
}

// Object builds an object schema from property schemas and the required names.
func Object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// String returns a string property schema.
func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func compileSchema(params map[string]any) (*openapi3.Schema, error) {
	if len(params) == 0 {
		return nil, nil
	}
	cleaned := make(map[string]any, len(params))
	for k, v := range params {
		cleaned[k] = v
	}
	for _, k := range schemaMetaKeys {
		delete(cleaned, k)
	}

	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	schema := openapi3.NewSchema()
	if err := schema.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if err := schema.Validate(context.Background()); err != nil {
		return nil, err
	}
	return schema, nil
}
