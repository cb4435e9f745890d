package translate

import (
	"strings"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
)

// ChatResponseToResponses converts a unary Chat Completions response
// document into the Responses envelope. The first choice's message yields
// at most one assistant message item (when its content flattens to
// non-blank text) followed by one function_call item per tool call.
func ChatResponseToResponses(chat map[string]any, responseID string) map[string]any {
	output := []any{}

	if message := firstChoiceMessage(chat); message != nil {
		text := ""
		if v := message["content"]; v != nil {
			text = functionOutputToText(v)
		}
		if strings.TrimSpace(text) != "" {
			output = append(output, map[string]any{
				"type":    "message",
				"role":    "assistant",
				"content": []any{textPart("output_text", text)},
			})
		}

		if toolCalls, ok := message["tool_calls"].([]any); ok {
			for _, raw := range toolCalls {
				tc, _ := raw.(map[string]any)
				callID, _ := tc["id"].(string)
				if callID == "" {
					callID = api.NewCallID()
				}
				fn, _ := tc["function"].(map[string]any)
				name, _ := fn["name"].(string)
				if name == "" {
					name = "unknown_function"
				}
				arguments := "{}"
				if v := fn["arguments"]; v != nil {
					arguments = functionArgumentsToText(v)
				}
				output = append(output, map[string]any{
					"type":      "function_call",
					"name":      name,
					"arguments": arguments,
					"call_id":   callID,
				})
			}
		}
	}

	return map[string]any{
		"id":     responseID,
		"object": "response",
		"status": "completed",
		"output": output,
		"usage":  UsageToResponses(chat["usage"]),
	}
}

// UsageToResponses maps Chat usage counters onto the Responses usage shape.
// A missing or malformed usage value maps to null.
func UsageToResponses(v any) any {
	usage, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return map[string]any{
		"input_tokens":          intField(usage, "prompt_tokens"),
		"input_tokens_details":  nil,
		"output_tokens":         intField(usage, "completion_tokens"),
		"output_tokens_details": nil,
		"total_tokens":          intField(usage, "total_tokens"),
	}
}

func firstChoiceMessage(chat map[string]any) map[string]any {
	choices, ok := chat["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return nil
	}
	message, _ := choice["message"].(map[string]any)
	return message
}

func intField(obj map[string]any, key string) int64 {
	if f, ok := obj[key].(float64); ok {
		return int64(f)
	}
	return 0
}
