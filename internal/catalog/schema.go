package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	schemaFile = "schemas/catalog.schema.json"
	schemaURL  = "mem://schemas/catalog.schema.json"
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := schemaFS.ReadFile(schemaFile)
		if err != nil {
			schemaErr = fmt.Errorf("read catalog schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			schemaErr = fmt.Errorf("decode catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("register catalog schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile catalog schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// SchemaJSON returns the raw catalog JSON schema.
func SchemaJSON() ([]byte, error) {
	return schemaFS.ReadFile(schemaFile)
}

// validateSchema checks a decoded document against the catalog schema.
// Every leaf error becomes one Problem.
func validateSchema(jsonDoc []byte) ([]Problem, error) {
	s, err := catalogSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonDoc))
	if err != nil {
		return nil, fmt.Errorf("decode catalog for schema check: %w", err)
	}
	err = s.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	var problems []Problem
	collectLeaves(verr, &problems)
	if len(problems) == 0 {
		problems = append(problems, Problem{Field: "schema", Message: verr.Error()})
	}
	return problems, nil
}

func collectLeaves(verr *jsonschema.ValidationError, out *[]Problem) {
	if len(verr.Causes) == 0 {
		field := "/" + joinLocation(verr.InstanceLocation)
		*out = append(*out, Problem{Field: "schema " + field, Message: verr.Error()})
		return
	}
	for _, c := range verr.Causes {
		collectLeaves(c, out)
	}
}

func joinLocation(loc []string) string {
	var buf bytes.Buffer
	for i, p := range loc {
		if i > 0 {
			buf.WriteByte('/')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// yamlToJSON re-encodes a YAML-decoded value as JSON for schema validation.
func yamlToJSON(v interface{}) ([]byte, error) {
	return json.Marshal(normalizeYAML(v))
}

// normalizeYAML turns map[interface{}]interface{} nodes (possible with
// non-string keys) into map[string]interface{} so encoding/json accepts them.
func normalizeYAML(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
