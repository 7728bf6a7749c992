package dashboard

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadValidator validates widget payloads against their category schema.
type PayloadValidator interface {
	Validate(def CategoryDefinition, payload WidgetEntry) error
}

// JSONSchemaValidator compiles category schemas and validates payload maps.
// Compiled schemas are cached per category and recompiled when the
// category's schema changes.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[CategoryKey]compiledSchema
}

type compiledSchema struct {
	hash   string
	schema *jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[CategoryKey]compiledSchema),
	}
}

// Validate ensures the payload satisfies the category schema.
func (v *JSONSchemaValidator) Validate(def CategoryDefinition, payload WidgetEntry) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	// round-trip so Go ints become json numbers the validator understands
	var doc any = map[string]any{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("dashboard: marshal payload for %s: %w", def.Key, err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("dashboard: normalize payload for %s: %w", def.Key, err)
		}
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, def.Key, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def CategoryDefinition) (*jsonschema.Schema, error) {
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Key, err)
	}
	sum := sha1.Sum(data)
	hash := hex.EncodeToString(sum[:])

	v.mu.RLock()
	cached, ok := v.compiled[def.Key]
	v.mu.RUnlock()
	if ok && cached.hash == hash {
		return cached.schema, nil
	}

	compiler := jsonschema.NewCompiler()
	name := schemaURL(def.Key)
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Key, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Key, err)
	}
	v.mu.Lock()
	v.compiled[def.Key] = compiledSchema{hash: hash, schema: compiled}
	v.mu.Unlock()
	return compiled, nil
}

// schemaURL names the in-memory resource; an absolute URL keeps the
// compiler from resolving it against the working directory.
func schemaURL(key CategoryKey) string {
	return "mem://dashboard/" + url.PathEscape(string(key)) + ".json"
}

type noopPayloadValidator struct{}

func (noopPayloadValidator) Validate(CategoryDefinition, WidgetEntry) error { return nil }
