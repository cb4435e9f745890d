package translate

import (
	"encoding/json"
	"strings"
)

// flattenContentParts concatenates the text of input_text and output_text
// parts (non-empty only), joined by newline. Other part types, such as
// images, are ignored.
func flattenContentParts(items []any) string {
	var parts []string
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := item["type"].(string)
		if typ != "input_text" && typ != "output_text" {
			continue
		}
		if text, _ := item["text"].(string); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// functionOutputToText renders a tool output value as plain text: strings
// pass through, content-part arrays are flattened, anything else is
// serialized as JSON.
func functionOutputToText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		return flattenContentParts(val)
	default:
		return jsonString(val)
	}
}

// functionArgumentsToText coerces a tool-call arguments value to a string:
// a JSON string passes through, any other value is serialized.
func functionArgumentsToText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return jsonString(v)
}

// chatContentToInputParts derives Responses input-text parts from a Chat
// message content value. Strings become a single part (dropped if blank),
// arrays contribute one part per element carrying a `text` or `content`
// string, and any other value is serialized (dropped if blank).
func chatContentToInputParts(content any) []any {
	switch val := content.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []any{textPart("input_text", val)}
	case []any:
		var parts []any
		for _, raw := range val {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := item["text"].(string); ok {
				parts = append(parts, textPart("input_text", text))
				continue
			}
			if text, ok := item["content"].(string); ok {
				parts = append(parts, textPart("input_text", text))
			}
		}
		return parts
	default:
		text := jsonString(val)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []any{textPart("input_text", text)}
	}
}

func textPart(typ, text string) map[string]any {
	return map[string]any{"type": typ, "text": text}
}

// jsonString serializes a JSON tree compactly. Values decoded from JSON
// always re-serialize; anything else falls back to the empty string.
func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
