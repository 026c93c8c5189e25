package thinker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// structuredMessages prefixes the conversation with a system instruction
// constraining the model to schema-conforming JSON output.
func structuredMessages(schema string, messages []Message) []Message {
	instruction := Message{
		Role: "system",
		Content: fmt.Sprintf(
			"Respond with a single JSON value conforming to this JSON schema, with no surrounding prose:\n%s",
			schema,
		),
	}
	return append([]Message{instruction}, messages...)
}

// decodeStructured decodes a model response into out, tolerating markdown
// code fences around the JSON body.
func decodeStructured(text string, out any) error {
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		body = strings.TrimSpace(body)
	}

	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode structured response: %w", err)
	}
	return nil
}
