package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseModelJSON extracts the JSON object from a model response, tolerating
// markdown code fences and prose around the payload.
func ParseModelJSON(text string) (map[string]interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = strings.TrimPrefix(strings.TrimSpace(parts[1]), "json")
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return out, nil
}
