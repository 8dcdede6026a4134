package foodapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RenderErrors turns a collaborator error payload into human-readable
// lines. Payloads come in three shapes: a field map with message lists
// ({"name": ["required"], "non_field_errors": [...]}), a flat list, or a
// raw string. All three must render without panicking.
func RenderErrors(body []byte) string {
	if len(body) == 0 {
		return "unknown server error"
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		lines := make([]string, 0, len(fields))
		for field, messages := range fields {
			lines = append(lines, field+": "+joinMessages(messages))
		}
		if len(lines) == 0 {
			return "validation error"
		}
		sort.Strings(lines)
		return strings.Join(lines, "\n")
	}

	var list []any
	if err := json.Unmarshal(body, &list); err == nil {
		lines := make([]string, 0, len(list))
		for _, item := range list {
			lines = append(lines, fmt.Sprint(item))
		}
		return strings.Join(lines, "\n")
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	return string(body)
}

func joinMessages(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
