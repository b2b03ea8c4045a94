package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Request is a single chat completion. When Schema is set the provider is
// asked for a JSON object matching it.
type Request struct {
	System            string
	User              string
	Temperature       float64
	SchemaName        string
	SchemaDescription string
	Schema            any
}

func (r Request) WantsJSON() bool {
	return r.Schema != nil
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// GenerateSchema reflects a strict JSON schema for T.
func GenerateSchema[T any]() any {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// DecodeJSON unmarshals model output, tolerating a surrounding code fence.
func DecodeJSON(content string, v any) error {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
